package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"flight-booking-storefront/internal/backend"
	"flight-booking-storefront/internal/database"
	"flight-booking-storefront/internal/models"
	"flight-booking-storefront/internal/session"
	"flight-booking-storefront/internal/temporal/workflows"
	"flight-booking-storefront/internal/wizarderr"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.temporal.io/sdk/client"
)

const sessionHeader = "X-Session-Token"

type Handler struct {
	DB             *database.DB
	TemporalClient client.Client
	Backend        *backend.Client
	Sessions       *session.Store
}

func NewHandler(db *database.DB, temporalClient client.Client, backendClient *backend.Client, sessions *session.Store) *Handler {
	return &Handler{
		DB:             db,
		TemporalClient: temporalClient,
		Backend:        backendClient,
		Sessions:       sessions,
	}
}

// Health check endpoint
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}

// customer resolves the acting customer from the session header.
// There is deliberately no fallback id: an absent session is a 401.
func (h *Handler) customer(w http.ResponseWriter, r *http.Request) (string, bool) {
	customerID, err := h.Sessions.CustomerID(r.Context(), r.Header.Get(sessionHeader))
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			http.Error(w, "not logged in", http.StatusUnauthorized)
		} else {
			http.Error(w, fmt.Sprintf("failed to resolve session: %v", err), http.StatusInternalServerError)
		}
		return "", false
	}
	return customerID, true
}

// OpenWizard starts a new flow instance for a flight
func (h *Handler) OpenWizard(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	flightNumber := vars["flightNumber"]

	customerID, ok := h.customer(w, r)
	if !ok {
		return
	}

	// Resolve the base fare from the flight catalog
	flight, err := h.Backend.GetFlight(r.Context(), flightNumber)
	if err != nil {
		http.Error(w, fmt.Sprintf("unknown flight: %v", err), http.StatusNotFound)
		return
	}

	flowID := uuid.New().String()

	// Start Temporal workflow
	workflowOptions := client.StartWorkflowOptions{
		ID:        flowID,
		TaskQueue: "wizard-task-queue",
	}

	input := models.WizardInput{
		FlowID:       flowID,
		CustomerID:   customerID,
		FlightNumber: flightNumber,
		BasePrice:    flight.BasePrice,
	}

	we, err := h.TemporalClient.ExecuteWorkflow(context.Background(), workflowOptions,
		workflows.BookingWizardWorkflow, input)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to start workflow: %v", err), http.StatusInternalServerError)
		return
	}

	// Store flow instance in database
	flow := &models.WizardFlow{
		FlowID:       flowID,
		CustomerID:   customerID,
		FlightNumber: flightNumber,
		Status:       models.StatusSelecting,
		WorkflowID:   we.GetID(),
		RunID:        we.GetRunID(),
	}
	if err := h.DB.CreateFlow(flow); err != nil {
		http.Error(w, fmt.Sprintf("failed to create flow: %v", err), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(models.OpenWizardResponse{
		FlowID:       flowID,
		FlightNumber: flightNumber,
		BasePrice:    flight.BasePrice,
		Status:       models.StatusSelecting,
		WorkflowID:   we.GetID(),
	})
}

// GetWizardState queries the live state of a flow instance
func (h *Handler) GetWizardState(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	flowID := vars["flowId"]

	flow, err := h.DB.GetFlow(flowID)
	if err != nil {
		http.Error(w, fmt.Sprintf("flow not found: %v", err), http.StatusNotFound)
		return
	}

	state, err := h.queryState(flow)
	if err != nil {
		// Workflow already completed; serve the persisted record
		json.NewEncoder(w).Encode(flow)
		return
	}

	json.NewEncoder(w).Encode(state)
}

func (h *Handler) queryState(flow *models.WizardFlow) (*models.WizardState, error) {
	resp, err := h.TemporalClient.QueryWorkflow(context.Background(), flow.WorkflowID, flow.RunID,
		workflows.QueryGetState)
	if err != nil {
		return nil, err
	}

	var state *models.WizardState
	if err := resp.Get(&state); err != nil {
		return nil, err
	}
	return state, nil
}

func (h *Handler) signalFlow(w http.ResponseWriter, r *http.Request, flowID, signalName string, payload interface{}) {
	flow, err := h.DB.GetFlow(flowID)
	if err != nil {
		http.Error(w, fmt.Sprintf("flow not found: %v", err), http.StatusNotFound)
		return
	}

	err = h.TemporalClient.SignalWorkflow(context.Background(), flow.WorkflowID, flow.RunID,
		signalName, payload)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to send signal: %v", err), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"message": "accepted"})
}

// SelectSeat records the chosen seat
func (h *Handler) SelectSeat(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req models.SeatSignal
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if req.SeatNumber == "" {
		http.Error(w, wizarderr.ValidationError{Field: "seatNumber", Msg: "required"}.Error(), http.StatusBadRequest)
		return
	}

	h.signalFlow(w, r, vars["flowId"], workflows.SignalSelectSeat, req)
}

// SetMeal records the meal preference
func (h *Handler) SetMeal(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req models.MealSignal
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if !models.IsValidMeal(req.MealType) {
		http.Error(w, wizarderr.ValidationError{Field: "mealType", Msg: fmt.Sprintf("unknown meal type %q", req.MealType)}.Error(), http.StatusBadRequest)
		return
	}

	h.signalFlow(w, r, vars["flowId"], workflows.SignalSetMeal, req)
}

// ToggleBaggage toggles a baggage addon
func (h *Handler) ToggleBaggage(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req models.BaggageSignal
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if !models.IsValidBaggage(req.Option) {
		http.Error(w, wizarderr.ValidationError{Field: "option", Msg: fmt.Sprintf("unknown baggage option %q", req.Option)}.Error(), http.StatusBadRequest)
		return
	}

	h.signalFlow(w, r, vars["flowId"], workflows.SignalToggleBaggage, req)
}

// SetSpecialRequest records the free-text special request note
func (h *Handler) SetSpecialRequest(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req models.SpecialRequestSignal
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	h.signalFlow(w, r, vars["flowId"], workflows.SignalSetSpecialRequest, req)
}

// SubmitBooking submits the booking stage. The seat guard runs here as
// well as in the workflow so an incomplete selection is rejected before
// anything is signalled.
func (h *Handler) SubmitBooking(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	flowID := vars["flowId"]

	flow, err := h.DB.GetFlow(flowID)
	if err != nil {
		http.Error(w, fmt.Sprintf("flow not found: %v", err), http.StatusNotFound)
		return
	}

	state, err := h.queryState(flow)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to query flow state: %v", err), http.StatusInternalServerError)
		return
	}
	if state.Status != models.StatusSelecting {
		http.Error(w, fmt.Sprintf("cannot submit booking while %s", state.Status), http.StatusConflict)
		return
	}
	if state.Selection.SeatNumber == "" {
		http.Error(w, wizarderr.ValidationError{Field: "seat", Msg: "a seat must be selected first"}.Error(), http.StatusBadRequest)
		return
	}

	err = h.TemporalClient.SignalWorkflow(context.Background(), flow.WorkflowID, flow.RunID,
		workflows.SignalSubmitBooking, nil)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to send signal: %v", err), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"message": "booking submitted"})
}

// SubmitPayment submits the payment stage
func (h *Handler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req models.PaymentSignal
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if req.CreditCardNumber == "" || req.CVV == "" || req.ExpiryDate == "" {
		http.Error(w, wizarderr.ValidationError{Msg: "creditCardNumber, cvv and expiryDate required"}.Error(), http.StatusBadRequest)
		return
	}

	h.signalFlow(w, r, vars["flowId"], workflows.SignalSubmitPayment, req)
}

// ResetWizard clears all selections and returns the flow to SELECTING
func (h *Handler) ResetWizard(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	h.signalFlow(w, r, vars["flowId"], workflows.SignalReset, nil)
}

// DismissWizard ends a flow instance
func (h *Handler) DismissWizard(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	h.signalFlow(w, r, vars["flowId"], workflows.SignalDismiss, nil)
}

// GetFlights proxies the backend's flight catalog
func (h *Handler) GetFlights(w http.ResponseWriter, r *http.Request) {
	flights, err := h.Backend.GetFlights(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to get flights: %v", err), http.StatusBadGateway)
		return
	}

	json.NewEncoder(w).Encode(flights)
}

// GetFlowHistory lists the customer's wizard flows, including confirmed
// bookings whose payment never completed
func (h *Handler) GetFlowHistory(w http.ResponseWriter, r *http.Request) {
	customerID, ok := h.customer(w, r)
	if !ok {
		return
	}

	flows, err := h.DB.GetFlowsByCustomer(customerID)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to get flows: %v", err), http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(flows)
}

// GetBookings proxies the customer's booking history
func (h *Handler) GetBookings(w http.ResponseWriter, r *http.Request) {
	customerID, ok := h.customer(w, r)
	if !ok {
		return
	}

	bookings, err := h.Backend.GetBookings(r.Context(), customerID)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to get bookings: %v", err), http.StatusBadGateway)
		return
	}

	json.NewEncoder(w).Encode(bookings)
}
