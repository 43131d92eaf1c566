// Package backend is the JSON-over-HTTP client for the storefront
// backend, which hosts the booking and payment services.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"flight-booking-storefront/internal/models"
	"flight-booking-storefront/internal/wizarderr"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// BookFlight creates a booking for the customer. Non-2xx responses and
// bodies without a booking id are returned as wizarderr errors.
func (c *Client) BookFlight(ctx context.Context, customerID string, req *models.BookFlightRequest) (*models.BookingRecord, error) {
	var resp models.BookFlightResponse
	path := fmt.Sprintf("/customer/%s/bookFlight", url.PathEscape(customerID))
	if err := c.post(ctx, path, req, &resp); err != nil {
		return nil, err
	}

	if resp.Booking == nil {
		return nil, wizarderr.MalformedResponseError{Field: "booking"}
	}
	if resp.Booking.BookingID == "" {
		return nil, wizarderr.MalformedResponseError{Field: "booking.bookingId"}
	}

	return resp.Booking, nil
}

// SubmitPayment charges the customer for an existing booking.
func (c *Client) SubmitPayment(ctx context.Context, customerID string, req *models.PaymentRequest) (*models.PaymentRecord, error) {
	var resp models.PaymentResponse
	path := fmt.Sprintf("/customer/%s/payment", url.PathEscape(customerID))
	if err := c.post(ctx, path, req, &resp); err != nil {
		return nil, err
	}

	if resp.TransactionID == "" {
		return nil, wizarderr.MalformedResponseError{Field: "transactionID"}
	}

	return &models.PaymentRecord{
		TransactionID:  resp.TransactionID,
		PaymentDetails: resp.PaymentDetails,
	}, nil
}

// GetFlights retrieves the flight catalog.
func (c *Client) GetFlights(ctx context.Context) ([]models.Flight, error) {
	var flights []models.Flight
	if err := c.get(ctx, "/flights", &flights); err != nil {
		return nil, err
	}
	return flights, nil
}

// GetFlight resolves a single flight from the catalog by flight number.
func (c *Client) GetFlight(ctx context.Context, flightNumber string) (*models.Flight, error) {
	flights, err := c.GetFlights(ctx)
	if err != nil {
		return nil, err
	}
	for i := range flights {
		if flights[i].FlightNumber == flightNumber {
			return &flights[i], nil
		}
	}
	return nil, fmt.Errorf("flight %s not found", flightNumber)
}

// GetBookings retrieves the customer's booking history.
func (c *Client) GetBookings(ctx context.Context, customerID string) ([]models.BookingRecord, error) {
	var bookings []models.BookingRecord
	path := fmt.Sprintf("/%s/bookings", url.PathEscape(customerID))
	if err := c.get(ctx, path, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	return c.do(httpReq, out)
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	return c.do(httpReq, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return wizarderr.TransportError{Msg: "backend unreachable", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return wizarderr.TransportError{
			StatusCode: resp.StatusCode,
			Msg:        errorMessage(resp.Body),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return wizarderr.MalformedResponseError{Msg: fmt.Sprintf("invalid JSON body: %v", err)}
	}

	return nil
}

// errorMessage pulls the backend's {"message": ...} out of an error
// body, falling back to a generic description.
func errorMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(data) == 0 {
		return "request failed"
	}

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}

	return "request failed"
}
