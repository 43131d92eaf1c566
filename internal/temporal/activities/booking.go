package activities

import (
	"context"
	"fmt"

	"flight-booking-storefront/internal/backend"
	"flight-booking-storefront/internal/models"
	"flight-booking-storefront/internal/wizarderr"

	"go.temporal.io/sdk/temporal"
)

type BookingActivities struct {
	Backend *backend.Client
}

func NewBookingActivities(client *backend.Client) *BookingActivities {
	return &BookingActivities{Backend: client}
}

// BookFlight sends the booking request to the booking service.
// Collaborator failures are non-retryable here: the spec's retries are
// user-initiated re-submissions, never automatic.
func (a *BookingActivities) BookFlight(ctx context.Context, customerID string, req *models.BookFlightRequest) (*models.BookingRecord, error) {
	booking, err := a.Backend.BookFlight(ctx, customerID, req)
	if err != nil {
		if wizarderr.IsTransport(err) || wizarderr.IsMalformedResponse(err) {
			return nil, temporal.NewNonRetryableApplicationError(err.Error(), "BookingFailed", err)
		}
		return nil, fmt.Errorf("failed to book flight: %w", err)
	}
	return booking, nil
}
