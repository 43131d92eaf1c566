package workflows

import (
	"testing"
	"time"

	"flight-booking-storefront/internal/models"
	"flight-booking-storefront/internal/temporal/activities"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"
)

type WizardWorkflowTestSuite struct {
	suite.Suite
	testsuite.WorkflowTestSuite

	env *testsuite.TestWorkflowEnvironment
}

func TestWizardWorkflowTestSuite(t *testing.T) {
	suite.Run(t, new(WizardWorkflowTestSuite))
}

func (s *WizardWorkflowTestSuite) SetupTest() {
	s.env = s.NewTestWorkflowEnvironment()
	s.env.RegisterWorkflow(BookingWizardWorkflow)
}

func (s *WizardWorkflowTestSuite) TearDownTest() {
	s.env.AssertExpectations(s.T())
}

var (
	bookingActs *activities.BookingActivities
	paymentActs *activities.PaymentActivities
	flowActs    *activities.FlowActivities
)

func testInput() models.WizardInput {
	return models.WizardInput{
		FlowID:       "flow-1",
		CustomerID:   "cust-1",
		FlightNumber: "AA123",
		BasePrice:    500.00,
	}
}

func (s *WizardWorkflowTestSuite) signalAt(d time.Duration, name string, payload interface{}) {
	s.env.RegisterDelayedCallback(func() {
		s.env.SignalWorkflow(name, payload)
	}, d)
}

func (s *WizardWorkflowTestSuite) queryStateAt(d time.Duration, capture **models.WizardState) {
	s.env.RegisterDelayedCallback(func() {
		v, err := s.env.QueryWorkflow(QueryGetState)
		s.NoError(err)
		var state *models.WizardState
		s.NoError(v.Get(&state))
		*capture = state
	}, d)
}

func (s *WizardWorkflowTestSuite) mockFlowRecords() {
	s.env.OnActivity(flowActs.RecordBooking, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	s.env.OnActivity(flowActs.RecordPayment, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	s.env.OnActivity(flowActs.SendConfirmation, mock.Anything, mock.Anything).Return(nil).Maybe()
	s.env.OnActivity(flowActs.UpdateFlowStatus, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
}

func (s *WizardWorkflowTestSuite) TestBookingAndPaymentEndToEnd() {
	s.mockFlowRecords()

	s.env.OnActivity(bookingActs.BookFlight, mock.Anything, "cust-1",
		mock.MatchedBy(func(req *models.BookFlightRequest) bool {
			return req.FlightNumber == "AA123" &&
				req.SeatNumber == "3A" &&
				req.SeatClass == "economy" &&
				req.MealType == models.MealVegetarian &&
				len(req.Baggage) == 1 &&
				req.Baggage[0] == models.BaggageItem{Type: "Carry-on", Weight: 7}
		})).Return(&models.BookingRecord{
		BookingID:    "BK-1",
		FlightNumber: "AA123",
		Seat:         models.Seat{SeatNumber: "3A", Class: "economy"},
		Meal:         models.Meal{MealType: models.MealVegetarian},
	}, nil).Once()

	s.env.OnActivity(paymentActs.ChargePayment, mock.Anything, "cust-1",
		mock.MatchedBy(func(req *models.PaymentRequest) bool {
			return req.BookingID == "BK-1" &&
				req.FlightNumber == "AA123" &&
				req.PaymentAmount == 550.00 &&
				req.CreditCardNumber == "4111111111111111" &&
				req.CVV == "123"
		})).Return(&models.PaymentRecord{
		TransactionID:  "TX-1",
		PaymentDetails: &models.PaymentDetails{PaymentAmount: 550.00, Date: "2025-04-14"},
	}, nil).Once()

	var selecting, confirmed *models.WizardState
	s.signalAt(1*time.Millisecond, SignalSelectSeat, models.SeatSignal{SeatNumber: "3A", SeatClass: "economy"})
	s.signalAt(2*time.Millisecond, SignalSetMeal, models.MealSignal{MealType: models.MealVegetarian})
	s.signalAt(3*time.Millisecond, SignalToggleBaggage, models.BaggageSignal{Option: models.BaggageExtra7kg})
	s.queryStateAt(4*time.Millisecond, &selecting)
	s.signalAt(5*time.Millisecond, SignalSubmitBooking, nil)
	s.queryStateAt(6*time.Millisecond, &confirmed)
	s.signalAt(7*time.Millisecond, SignalSubmitPayment, models.PaymentSignal{
		CreditCardNumber: "4111111111111111",
		CVV:              "123",
		ExpiryDate:       "12/26",
	})

	s.env.ExecuteWorkflow(BookingWizardWorkflow, testInput())

	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())

	s.Require().NotNil(selecting)
	s.Equal(models.StatusSelecting, selecting.Status)
	s.Equal(550.00, selecting.TotalPrice)

	s.Require().NotNil(confirmed)
	s.Equal(models.StatusBookingConfirmed, confirmed.Status)
	s.Equal(550.00, confirmed.QuotedPrice)
	s.Require().NotNil(confirmed.Booking)
	s.Equal("BK-1", confirmed.Booking.BookingID)

	var result models.WizardResult
	s.NoError(s.env.GetWorkflowResult(&result))
	s.Equal(models.StatusPaymentSucceeded, result.Status)
	s.Require().NotNil(result.Booking)
	s.Equal("BK-1", result.Booking.BookingID)
	s.Require().NotNil(result.Payment)
	s.Equal("TX-1", result.Payment.TransactionID)
}

func (s *WizardWorkflowTestSuite) TestSubmitBookingWithoutSeatIsNoOp() {
	s.mockFlowRecords()
	s.env.OnActivity(bookingActs.BookFlight, mock.Anything, mock.Anything, mock.Anything).
		Return(&models.BookingRecord{BookingID: "BK-never"}, nil).Maybe()

	var state *models.WizardState
	s.signalAt(1*time.Millisecond, SignalSubmitBooking, nil)
	s.queryStateAt(2*time.Millisecond, &state)
	s.signalAt(3*time.Millisecond, SignalDismiss, nil)

	s.env.ExecuteWorkflow(BookingWizardWorkflow, testInput())

	s.True(s.env.IsWorkflowCompleted())
	s.env.AssertNumberOfCalls(s.T(), "BookFlight", 0)

	s.Require().NotNil(state)
	s.Equal(models.StatusSelecting, state.Status)
	s.Nil(state.Booking)

	var result models.WizardResult
	s.NoError(s.env.GetWorkflowResult(&result))
	s.Equal(models.StatusDismissed, result.Status)
}

func (s *WizardWorkflowTestSuite) TestBookingFailureReturnsToSelecting() {
	s.mockFlowRecords()

	s.env.OnActivity(bookingActs.BookFlight, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, temporal.NewNonRetryableApplicationError("seat already occupied", "BookingFailed", nil)).Once()

	var state *models.WizardState
	s.signalAt(1*time.Millisecond, SignalSelectSeat, models.SeatSignal{SeatNumber: "3A", SeatClass: "economy"})
	s.signalAt(2*time.Millisecond, SignalToggleBaggage, models.BaggageSignal{Option: models.BaggageExtra23kg})
	s.signalAt(3*time.Millisecond, SignalSubmitBooking, nil)
	s.queryStateAt(4*time.Millisecond, &state)
	s.signalAt(5*time.Millisecond, SignalDismiss, nil)

	s.env.ExecuteWorkflow(BookingWizardWorkflow, testInput())

	s.True(s.env.IsWorkflowCompleted())

	// Back in SELECTING with every selection preserved and the failure surfaced
	s.Require().NotNil(state)
	s.Equal(models.StatusSelecting, state.Status)
	s.Equal("3A", state.Selection.SeatNumber)
	s.True(state.Selection.HasBaggage(models.BaggageExtra23kg))
	s.Equal(600.00, state.TotalPrice)
	s.Nil(state.Booking)
	s.Require().NotNil(state.LastError)
	s.Equal(models.StageBooking, state.LastError.Stage)
	s.Contains(state.LastError.Message, "seat already occupied")
}

func (s *WizardWorkflowTestSuite) TestPaymentFailureKeepsBookingForRetry() {
	s.mockFlowRecords()

	s.env.OnActivity(bookingActs.BookFlight, mock.Anything, mock.Anything, mock.Anything).
		Return(&models.BookingRecord{BookingID: "BK-9", FlightNumber: "AA123"}, nil).Once()

	s.env.OnActivity(paymentActs.ChargePayment, mock.Anything, mock.Anything,
		mock.MatchedBy(func(req *models.PaymentRequest) bool { return req.BookingID == "BK-9" })).
		Return(nil, temporal.NewNonRetryableApplicationError("card declined", "PaymentFailed", nil)).Once()
	s.env.OnActivity(paymentActs.ChargePayment, mock.Anything, mock.Anything,
		mock.MatchedBy(func(req *models.PaymentRequest) bool { return req.BookingID == "BK-9" })).
		Return(&models.PaymentRecord{TransactionID: "TX-2"}, nil).Once()

	payment := models.PaymentSignal{CreditCardNumber: "4111111111111111", CVV: "123", ExpiryDate: "12/26"}

	var afterFailure *models.WizardState
	s.signalAt(1*time.Millisecond, SignalSelectSeat, models.SeatSignal{SeatNumber: "5C", SeatClass: "business"})
	s.signalAt(2*time.Millisecond, SignalSubmitBooking, nil)
	s.signalAt(3*time.Millisecond, SignalSubmitPayment, payment)
	s.queryStateAt(4*time.Millisecond, &afterFailure)
	s.signalAt(5*time.Millisecond, SignalSubmitPayment, payment)

	s.env.ExecuteWorkflow(BookingWizardWorkflow, testInput())

	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())

	// No duplicate booking request: one booking call, two payment calls
	s.env.AssertNumberOfCalls(s.T(), "BookFlight", 1)
	s.env.AssertNumberOfCalls(s.T(), "ChargePayment", 2)

	s.Require().NotNil(afterFailure)
	s.Equal(models.StatusBookingConfirmed, afterFailure.Status)
	s.Require().NotNil(afterFailure.Booking)
	s.Equal("BK-9", afterFailure.Booking.BookingID)
	s.Require().NotNil(afterFailure.LastError)
	s.Equal(models.StagePayment, afterFailure.LastError.Stage)
	s.Contains(afterFailure.LastError.Message, "card declined")

	var result models.WizardResult
	s.NoError(s.env.GetWorkflowResult(&result))
	s.Equal(models.StatusPaymentSucceeded, result.Status)
	s.Equal("TX-2", result.Payment.TransactionID)
}

func (s *WizardWorkflowTestSuite) TestPaymentChargesSnapshottedPrice() {
	s.mockFlowRecords()

	s.env.OnActivity(bookingActs.BookFlight, mock.Anything, mock.Anything, mock.Anything).
		Return(&models.BookingRecord{BookingID: "BK-3", FlightNumber: "AA123"}, nil).Once()

	// Charge must use the price snapshotted at booking submit (550.00),
	// not anything recomputed afterwards
	s.env.OnActivity(paymentActs.ChargePayment, mock.Anything, mock.Anything,
		mock.MatchedBy(func(req *models.PaymentRequest) bool { return req.PaymentAmount == 550.00 })).
		Return(&models.PaymentRecord{TransactionID: "TX-3"}, nil).Once()

	s.signalAt(1*time.Millisecond, SignalSelectSeat, models.SeatSignal{SeatNumber: "3A", SeatClass: "economy"})
	s.signalAt(2*time.Millisecond, SignalToggleBaggage, models.BaggageSignal{Option: models.BaggageExtra7kg})
	s.signalAt(3*time.Millisecond, SignalSubmitBooking, nil)
	// Ignored: selection is frozen once the booking stage has run
	s.signalAt(4*time.Millisecond, SignalToggleBaggage, models.BaggageSignal{Option: models.BaggageExtra23kg})
	s.signalAt(5*time.Millisecond, SignalSubmitPayment, models.PaymentSignal{
		CreditCardNumber: "4111111111111111", CVV: "123", ExpiryDate: "12/26",
	})

	s.env.ExecuteWorkflow(BookingWizardWorkflow, testInput())

	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())

	var result models.WizardResult
	s.NoError(s.env.GetWorkflowResult(&result))
	s.Equal(models.StatusPaymentSucceeded, result.Status)
}

func (s *WizardWorkflowTestSuite) TestPaymentWithIncompleteCardFieldsIsNoOp() {
	s.mockFlowRecords()

	s.env.OnActivity(bookingActs.BookFlight, mock.Anything, mock.Anything, mock.Anything).
		Return(&models.BookingRecord{BookingID: "BK-4"}, nil).Once()
	s.env.OnActivity(paymentActs.ChargePayment, mock.Anything, mock.Anything, mock.Anything).
		Return(&models.PaymentRecord{TransactionID: "TX-never"}, nil).Maybe()

	var state *models.WizardState
	s.signalAt(1*time.Millisecond, SignalSelectSeat, models.SeatSignal{SeatNumber: "3A", SeatClass: "economy"})
	s.signalAt(2*time.Millisecond, SignalSubmitBooking, nil)
	s.signalAt(3*time.Millisecond, SignalSubmitPayment, models.PaymentSignal{CreditCardNumber: "4111111111111111"})
	s.queryStateAt(4*time.Millisecond, &state)
	s.signalAt(5*time.Millisecond, SignalDismiss, nil)

	s.env.ExecuteWorkflow(BookingWizardWorkflow, testInput())

	s.True(s.env.IsWorkflowCompleted())
	s.env.AssertNumberOfCalls(s.T(), "ChargePayment", 0)

	s.Require().NotNil(state)
	s.Equal(models.StatusBookingConfirmed, state.Status)
}

func (s *WizardWorkflowTestSuite) TestResetClearsSelectionAndReturnsToSelecting() {
	s.mockFlowRecords()

	s.env.OnActivity(bookingActs.BookFlight, mock.Anything, mock.Anything, mock.Anything).
		Return(&models.BookingRecord{BookingID: "BK-5"}, nil).Once()

	var afterReset *models.WizardState
	s.signalAt(1*time.Millisecond, SignalSelectSeat, models.SeatSignal{SeatNumber: "3A", SeatClass: "economy"})
	s.signalAt(2*time.Millisecond, SignalToggleBaggage, models.BaggageSignal{Option: models.BaggageExtra7kg})
	s.signalAt(3*time.Millisecond, SignalSubmitBooking, nil)
	s.signalAt(4*time.Millisecond, SignalReset, nil)
	s.queryStateAt(5*time.Millisecond, &afterReset)
	s.signalAt(6*time.Millisecond, SignalDismiss, nil)

	s.env.ExecuteWorkflow(BookingWizardWorkflow, testInput())

	s.True(s.env.IsWorkflowCompleted())

	s.Require().NotNil(afterReset)
	s.Equal(models.StatusSelecting, afterReset.Status)
	s.Equal("", afterReset.Selection.SeatNumber)
	s.Equal(models.MealRegular, afterReset.Selection.MealType)
	s.Equal(500.00, afterReset.TotalPrice)
	s.Equal(0.00, afterReset.QuotedPrice)
	s.Nil(afterReset.Booking)
	s.Nil(afterReset.LastError)
}

func (s *WizardWorkflowTestSuite) TestDismissDuringSelectionHasNoSideEffects() {
	s.env.OnActivity(flowActs.UpdateFlowStatus, mock.Anything, "flow-1", models.StatusDismissed).
		Return(nil).Once()

	s.signalAt(1*time.Millisecond, SignalSelectSeat, models.SeatSignal{SeatNumber: "7F", SeatClass: "economy"})
	s.signalAt(2*time.Millisecond, SignalDismiss, nil)

	s.env.ExecuteWorkflow(BookingWizardWorkflow, testInput())

	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())

	var result models.WizardResult
	s.NoError(s.env.GetWorkflowResult(&result))
	s.Equal(models.StatusDismissed, result.Status)
	s.Nil(result.Booking)
	s.Nil(result.Payment)
}

func TestBuildBookingRequest(t *testing.T) {
	state := &models.WizardState{
		FlightNumber: "AA123",
		Selection: models.Selection{
			SeatNumber: "3A",
			SeatClass:  "economy",
			MealType:   models.MealVegetarian,
			Baggage:    []string{models.BaggageExtra7kg},
		},
	}

	req := buildBookingRequest(state)

	if req.SpecialRequestType != "" || req.SpecialRequestNote != "" {
		t.Errorf("special request emitted for empty note: %+v", req)
	}
	if len(req.Baggage) != 1 || req.Baggage[0] != (models.BaggageItem{Type: "Carry-on", Weight: 7}) {
		t.Errorf("unexpected baggage payload: %v", req.Baggage)
	}

	state.Selection.SetSpecialRequest("wheelchair assistance")
	req = buildBookingRequest(state)

	if req.SpecialRequestType != "Other" {
		t.Errorf("SpecialRequestType = %q, want %q", req.SpecialRequestType, "Other")
	}
	if req.SpecialRequestNote != "wheelchair assistance" {
		t.Errorf("SpecialRequestNote = %q, want the note", req.SpecialRequestNote)
	}
}
