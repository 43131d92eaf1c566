package models

import "time"

// Wizard statuses
const (
	StatusSelecting        = "SELECTING"
	StatusBookingInFlight  = "BOOKING_IN_FLIGHT"
	StatusBookingConfirmed = "BOOKING_CONFIRMED"
	StatusPaymentInFlight  = "PAYMENT_IN_FLIGHT"
	StatusPaymentSucceeded = "PAYMENT_SUCCEEDED"
	StatusDismissed        = "DISMISSED"
)

// Failure stages
const (
	StageBooking = "BOOKING"
	StagePayment = "PAYMENT"
)

// Meal types
const (
	MealRegular    = "regular"
	MealVegetarian = "vegetarian"
	MealVegan      = "vegan"
	MealKosher     = "kosher"
	MealHalal      = "halal"
)

// Baggage addon options and their prices (same currency as the flight's base price)
const (
	BaggageExtra7kg  = "extra-bag-7kg"
	BaggageExtra23kg = "extra-bag-23kg"

	Extra7kgPrice  = 50.00
	Extra23kgPrice = 100.00
)

func IsValidMeal(mealType string) bool {
	switch mealType {
	case MealRegular, MealVegetarian, MealVegan, MealKosher, MealHalal:
		return true
	}
	return false
}

func IsValidBaggage(option string) bool {
	return option == BaggageExtra7kg || option == BaggageExtra23kg
}

// BaggageItem is the wire form of a baggage addon
type BaggageItem struct {
	Type   string `json:"type"`
	Weight int    `json:"weight"`
}

// Selection holds the user's choices while the wizard is in SELECTING
type Selection struct {
	SeatNumber     string   `json:"seatNumber"`
	SeatClass      string   `json:"seatClass"`
	MealType       string   `json:"mealType"`
	Baggage        []string `json:"baggage"`
	SpecialRequest string   `json:"specialRequest"`
}

func NewSelection() Selection {
	return Selection{MealType: MealRegular}
}

func (s *Selection) SelectSeat(seatNumber, seatClass string) {
	s.SeatNumber = seatNumber
	s.SeatClass = seatClass
}

func (s *Selection) SetMeal(mealType string) {
	s.MealType = mealType
}

// ToggleBaggage adds the option if absent, removes it if present
func (s *Selection) ToggleBaggage(option string) {
	for i, opt := range s.Baggage {
		if opt == option {
			s.Baggage = append(s.Baggage[:i], s.Baggage[i+1:]...)
			return
		}
	}
	s.Baggage = append(s.Baggage, option)
}

func (s *Selection) HasBaggage(option string) bool {
	for _, opt := range s.Baggage {
		if opt == option {
			return true
		}
	}
	return false
}

func (s *Selection) SetSpecialRequest(note string) {
	s.SpecialRequest = note
}

// TotalPrice is the base fare plus the price of each selected baggage addon
func (s *Selection) TotalPrice(basePrice float64) float64 {
	total := basePrice
	for _, opt := range s.Baggage {
		switch opt {
		case BaggageExtra7kg:
			total += Extra7kgPrice
		case BaggageExtra23kg:
			total += Extra23kgPrice
		}
	}
	return total
}

// BaggagePayload maps selected addons to their wire form:
// extra-bag-7kg -> {Carry-on, 7}, extra-bag-23kg -> {Suitcase, 23}
func (s *Selection) BaggagePayload() []BaggageItem {
	items := make([]BaggageItem, 0, len(s.Baggage))
	for _, opt := range s.Baggage {
		switch opt {
		case BaggageExtra7kg:
			items = append(items, BaggageItem{Type: "Carry-on", Weight: 7})
		case BaggageExtra23kg:
			items = append(items, BaggageItem{Type: "Suitcase", Weight: 23})
		}
	}
	return items
}

// Seat is the seat block of a booking record
type Seat struct {
	SeatNumber string `json:"seatNumber"`
	Class      string `json:"class"`
	IsOccupied bool   `json:"isOccupied"`
}

type Meal struct {
	MealType string `json:"mealType"`
}

type SpecialRequest struct {
	RequestType string `json:"requestType"`
	Note        string `json:"note"`
	Status      string `json:"status"`
}

type Ticket struct {
	TicketID        string `json:"ticketId"`
	BoardingPassURL string `json:"boardingPassUrl"`
	BookingRef      string `json:"bookingRef"`
}

// BookingRecord is issued by the booking service and immutable afterwards
type BookingRecord struct {
	BookingID      string          `json:"bookingId"`
	FlightNumber   string          `json:"flightNumber"`
	Seat           Seat            `json:"seat"`
	Meal           Meal            `json:"meal"`
	SpecialRequest *SpecialRequest `json:"specialRequest"`
	Ticket         Ticket          `json:"ticket"`
	Status         string          `json:"status,omitempty"`
	BookingDate    string          `json:"bookingDate"`
	Baggage        []BaggageItem   `json:"baggage,omitempty"`
}

type PaymentDetails struct {
	PaymentAmount float64 `json:"paymentAmount"`
	Date          string  `json:"date"`
}

// PaymentRecord is issued by the payment service
type PaymentRecord struct {
	TransactionID  string          `json:"transactionId"`
	PaymentDetails *PaymentDetails `json:"paymentDetails,omitempty"`
}

// Flight is an entry of the backend's flight catalog
type Flight struct {
	FlightNumber string  `json:"flightNumber"`
	Airline      string  `json:"airline"`
	Origin       string  `json:"origin"`
	Destination  string  `json:"destination"`
	BasePrice    float64 `json:"basePrice"`
}

// Backend wire contracts

type BookFlightRequest struct {
	FlightNumber       string        `json:"flightNumber"`
	SeatNumber         string        `json:"seatNumber"`
	SeatClass          string        `json:"seatClass"`
	MealType           string        `json:"mealType"`
	SpecialRequestType string        `json:"specialRequestType,omitempty"`
	SpecialRequestNote string        `json:"specialRequestNote,omitempty"`
	Baggage            []BaggageItem `json:"baggage"`
}

type BookFlightResponse struct {
	Message string         `json:"message"`
	Booking *BookingRecord `json:"booking"`
}

type PaymentRequest struct {
	FlightNumber     string  `json:"flightNumber"`
	PaymentAmount    float64 `json:"paymentAmount"`
	CreditCardNumber string  `json:"creditCardNumber"`
	CVV              string  `json:"cvv"`
	BookingID        string  `json:"bookingId"`
}

type PaymentResponse struct {
	TransactionID  string          `json:"transactionID"`
	Message        string          `json:"message"`
	PaymentDetails *PaymentDetails `json:"paymentDetails,omitempty"`
}

// WizardInput starts one flow instance
type WizardInput struct {
	FlowID       string  `json:"flowId"`
	CustomerID   string  `json:"customerId"`
	FlightNumber string  `json:"flightNumber"`
	BasePrice    float64 `json:"basePrice"`
}

// StageError is the last failure surfaced to the user, cleared on the next submit
type StageError struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

// WizardState is the queryable state of a flow instance
type WizardState struct {
	FlowID       string         `json:"flowId"`
	CustomerID   string         `json:"customerId"`
	FlightNumber string         `json:"flightNumber"`
	BasePrice    float64        `json:"basePrice"`
	Selection    Selection      `json:"selection"`
	TotalPrice   float64        `json:"totalPrice"`
	QuotedPrice  float64        `json:"quotedPrice"`
	Status       string         `json:"status"`
	Booking      *BookingRecord `json:"booking,omitempty"`
	Payment      *PaymentRecord `json:"payment,omitempty"`
	LastError    *StageError    `json:"lastError,omitempty"`
}

// WizardResult is handed back to the caller when the flow ends
type WizardResult struct {
	Status  string         `json:"status"`
	Booking *BookingRecord `json:"booking,omitempty"`
	Payment *PaymentRecord `json:"payment,omitempty"`
}

// Signal payloads

type SeatSignal struct {
	SeatNumber string `json:"seatNumber"`
	SeatClass  string `json:"seatClass"`
}

type MealSignal struct {
	MealType string `json:"mealType"`
}

type BaggageSignal struct {
	Option string `json:"option"`
}

type SpecialRequestSignal struct {
	Note string `json:"note"`
}

type PaymentSignal struct {
	CreditCardNumber string `json:"creditCardNumber"`
	CVV              string `json:"cvv"`
	ExpiryDate       string `json:"expiryDate"`
}

// WizardFlow is the persisted record of a flow instance
type WizardFlow struct {
	FlowID        string    `json:"flowId" db:"flow_id"`
	CustomerID    string    `json:"customerId" db:"customer_id"`
	FlightNumber  string    `json:"flightNumber" db:"flight_number"`
	Status        string    `json:"status" db:"status"`
	WorkflowID    string    `json:"workflowId" db:"workflow_id"`
	RunID         string    `json:"runId" db:"run_id"`
	BookingID     *string   `json:"bookingId,omitempty" db:"booking_id"`
	TransactionID *string   `json:"transactionId,omitempty" db:"transaction_id"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

// API request/response models

type OpenWizardResponse struct {
	FlowID       string  `json:"flowId"`
	FlightNumber string  `json:"flightNumber"`
	BasePrice    float64 `json:"basePrice"`
	Status       string  `json:"status"`
	WorkflowID   string  `json:"workflowId"`
}
