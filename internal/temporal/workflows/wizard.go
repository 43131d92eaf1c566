package workflows

import (
	"errors"
	"time"

	"flight-booking-storefront/internal/models"
	"flight-booking-storefront/internal/temporal/activities"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const (
	SignalSelectSeat        = "selectSeat"
	SignalSetMeal           = "setMeal"
	SignalToggleBaggage     = "toggleBaggage"
	SignalSetSpecialRequest = "setSpecialRequest"
	SignalSubmitBooking     = "submitBooking"
	SignalSubmitPayment     = "submitPayment"
	SignalReset             = "reset"
	SignalDismiss           = "dismiss"
	QueryGetState           = "getState"
)

// BookingWizardWorkflow drives one booking flow instance from selection
// through booking creation and payment. Selection mutations only apply
// while the flow is in SELECTING; each collaborator call runs at most
// once per submit, and a failed stage returns control to the prior
// interactive state so the user can retry it.
func BookingWizardWorkflow(ctx workflow.Context, input models.WizardInput) (*models.WizardResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("BookingWizardWorkflow started", "flowID", input.FlowID, "flightNumber", input.FlightNumber)

	// Initialize workflow state
	state := &models.WizardState{
		FlowID:       input.FlowID,
		CustomerID:   input.CustomerID,
		FlightNumber: input.FlightNumber,
		BasePrice:    input.BasePrice,
		Selection:    models.NewSelection(),
		TotalPrice:   input.BasePrice,
		Status:       models.StatusSelecting,
	}

	// Backend calls get one attempt each; retries are user resubmissions
	backendCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	})

	// Flow bookkeeping may retry normally
	recordCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Second,
	})

	// Set up query handler for the wizard state
	err := workflow.SetQueryHandler(ctx, QueryGetState, func() (*models.WizardState, error) {
		return state, nil
	})
	if err != nil {
		return nil, err
	}

	// Set up signal channels
	seatChan := workflow.GetSignalChannel(ctx, SignalSelectSeat)
	mealChan := workflow.GetSignalChannel(ctx, SignalSetMeal)
	baggageChan := workflow.GetSignalChannel(ctx, SignalToggleBaggage)
	requestChan := workflow.GetSignalChannel(ctx, SignalSetSpecialRequest)
	bookingChan := workflow.GetSignalChannel(ctx, SignalSubmitBooking)
	paymentChan := workflow.GetSignalChannel(ctx, SignalSubmitPayment)
	resetChan := workflow.GetSignalChannel(ctx, SignalReset)
	dismissChan := workflow.GetSignalChannel(ctx, SignalDismiss)

	var bookingActivities *activities.BookingActivities
	var paymentActivities *activities.PaymentActivities
	var flowActivities *activities.FlowActivities

	// Main event loop
	for {
		selector := workflow.NewSelector(ctx)

		// Handle seat selection
		selector.AddReceive(seatChan, func(c workflow.ReceiveChannel, more bool) {
			var sig models.SeatSignal
			c.Receive(ctx, &sig)

			if state.Status != models.StatusSelecting {
				logger.Info("Ignoring seat selection", "status", state.Status)
				return
			}

			state.Selection.SelectSeat(sig.SeatNumber, sig.SeatClass)
			logger.Info("Seat selected", "seatNumber", sig.SeatNumber, "seatClass", sig.SeatClass)
		})

		// Handle meal preference
		selector.AddReceive(mealChan, func(c workflow.ReceiveChannel, more bool) {
			var sig models.MealSignal
			c.Receive(ctx, &sig)

			if state.Status != models.StatusSelecting {
				logger.Info("Ignoring meal change", "status", state.Status)
				return
			}
			if !models.IsValidMeal(sig.MealType) {
				logger.Info("Ignoring unknown meal type", "mealType", sig.MealType)
				return
			}

			state.Selection.SetMeal(sig.MealType)
		})

		// Handle baggage toggles; the live total follows the selection
		selector.AddReceive(baggageChan, func(c workflow.ReceiveChannel, more bool) {
			var sig models.BaggageSignal
			c.Receive(ctx, &sig)

			if state.Status != models.StatusSelecting {
				logger.Info("Ignoring baggage change", "status", state.Status)
				return
			}
			if !models.IsValidBaggage(sig.Option) {
				logger.Info("Ignoring unknown baggage option", "option", sig.Option)
				return
			}

			state.Selection.ToggleBaggage(sig.Option)
			state.TotalPrice = state.Selection.TotalPrice(state.BasePrice)
		})

		// Handle special request note
		selector.AddReceive(requestChan, func(c workflow.ReceiveChannel, more bool) {
			var sig models.SpecialRequestSignal
			c.Receive(ctx, &sig)

			if state.Status != models.StatusSelecting {
				logger.Info("Ignoring special request change", "status", state.Status)
				return
			}

			state.Selection.SetSpecialRequest(sig.Note)
		})

		// Handle booking submission
		selector.AddReceive(bookingChan, func(c workflow.ReceiveChannel, more bool) {
			c.Receive(ctx, nil)

			if state.Status != models.StatusSelecting {
				logger.Info("Ignoring booking submit", "status", state.Status)
				return
			}
			if state.Selection.SeatNumber == "" {
				logger.Info("Ignoring booking submit without a seat")
				return
			}

			// Snapshot the price now; payment charges this amount even if
			// the live total were to move afterwards
			state.LastError = nil
			state.QuotedPrice = state.Selection.TotalPrice(state.BasePrice)
			state.Status = models.StatusBookingInFlight

			req := buildBookingRequest(state)

			var booking *models.BookingRecord
			err := workflow.ExecuteActivity(backendCtx, bookingActivities.BookFlight,
				state.CustomerID, req).Get(ctx, &booking)
			if err != nil {
				logger.Error("Booking failed", "error", err)
				state.Status = models.StatusSelecting
				state.LastError = &models.StageError{
					Stage:   models.StageBooking,
					Message: failureMessage(err),
				}
				return
			}

			state.Booking = booking
			state.Status = models.StatusBookingConfirmed

			workflow.ExecuteActivity(recordCtx, flowActivities.RecordBooking,
				state.FlowID, booking.BookingID).Get(ctx, nil)

			logger.Info("Booking confirmed", "bookingID", booking.BookingID)
		})

		// Handle payment submission
		selector.AddReceive(paymentChan, func(c workflow.ReceiveChannel, more bool) {
			var sig models.PaymentSignal
			c.Receive(ctx, &sig)

			if state.Status != models.StatusBookingConfirmed {
				logger.Info("Ignoring payment submit", "status", state.Status)
				return
			}
			if sig.CreditCardNumber == "" || sig.CVV == "" || sig.ExpiryDate == "" {
				logger.Info("Ignoring payment submit with incomplete card fields")
				return
			}

			state.LastError = nil
			state.Status = models.StatusPaymentInFlight

			req := &models.PaymentRequest{
				FlightNumber:     state.FlightNumber,
				PaymentAmount:    state.QuotedPrice,
				CreditCardNumber: sig.CreditCardNumber,
				CVV:              sig.CVV,
				BookingID:        state.Booking.BookingID,
			}

			var payment *models.PaymentRecord
			err := workflow.ExecuteActivity(backendCtx, paymentActivities.ChargePayment,
				state.CustomerID, req).Get(ctx, &payment)
			if err != nil {
				// Booking stays valid; the user retries payment with the same bookingId
				logger.Error("Payment failed", "error", err)
				state.Status = models.StatusBookingConfirmed
				state.LastError = &models.StageError{
					Stage:   models.StagePayment,
					Message: failureMessage(err),
				}
				return
			}

			state.Payment = payment
			state.Status = models.StatusPaymentSucceeded

			workflow.ExecuteActivity(recordCtx, flowActivities.RecordPayment,
				state.FlowID, payment.TransactionID).Get(ctx, nil)
			workflow.ExecuteActivity(recordCtx, flowActivities.SendConfirmation,
				state.FlowID).Get(ctx, nil)

			logger.Info("Payment succeeded", "transactionID", payment.TransactionID)
		})

		// Handle reset: discard every choice and confirmed record and
		// start the selection over. A booking abandoned this way stays
		// valid server-side as a pending booking.
		selector.AddReceive(resetChan, func(c workflow.ReceiveChannel, more bool) {
			c.Receive(ctx, nil)

			logger.Info("Wizard reset", "flowID", state.FlowID, "status", state.Status)

			state.Selection = models.NewSelection()
			state.TotalPrice = state.BasePrice
			state.QuotedPrice = 0
			state.Booking = nil
			state.Payment = nil
			state.LastError = nil
			state.Status = models.StatusSelecting

			workflow.ExecuteActivity(recordCtx, flowActivities.UpdateFlowStatus,
				state.FlowID, models.StatusSelecting).Get(ctx, nil)
		})

		// Handle dismissal. Signals are drained one at a time by this
		// loop, so a dismiss sent while a collaborator call is in flight
		// is only consumed after that call settles.
		selector.AddReceive(dismissChan, func(c workflow.ReceiveChannel, more bool) {
			c.Receive(ctx, nil)

			logger.Info("Wizard dismissed", "flowID", state.FlowID, "status", state.Status)
			state.Status = models.StatusDismissed

			workflow.ExecuteActivity(recordCtx, flowActivities.UpdateFlowStatus,
				state.FlowID, models.StatusDismissed).Get(ctx, nil)
		})

		selector.Select(ctx)

		// Exit conditions
		if state.Status == models.StatusPaymentSucceeded ||
			state.Status == models.StatusDismissed {
			break
		}
	}

	logger.Info("BookingWizardWorkflow completed", "flowID", input.FlowID, "status", state.Status)
	return &models.WizardResult{
		Status:  state.Status,
		Booking: state.Booking,
		Payment: state.Payment,
	}, nil
}

// buildBookingRequest maps the current selection onto the booking
// service's wire contract. The special request block is emitted only
// when the note is non-empty.
func buildBookingRequest(state *models.WizardState) *models.BookFlightRequest {
	req := &models.BookFlightRequest{
		FlightNumber: state.FlightNumber,
		SeatNumber:   state.Selection.SeatNumber,
		SeatClass:    state.Selection.SeatClass,
		MealType:     state.Selection.MealType,
		Baggage:      state.Selection.BaggagePayload(),
	}

	if state.Selection.SpecialRequest != "" {
		req.SpecialRequestType = "Other"
		req.SpecialRequestNote = state.Selection.SpecialRequest
	}

	return req
}

// failureMessage extracts the human-readable message from an activity error
func failureMessage(err error) string {
	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) {
		return appErr.Message()
	}
	var timeoutErr *temporal.TimeoutError
	if errors.As(err, &timeoutErr) {
		return "the request timed out, please try again"
	}
	return err.Error()
}
