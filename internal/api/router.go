package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()

	// Apply middleware
	r.Use(CORSMiddleware)
	r.Use(LoggingMiddleware)

	// API routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(JSONMiddleware)

	// Health check
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")

	// Flight routes
	api.HandleFunc("/flights", h.GetFlights).Methods("GET")
	api.HandleFunc("/flights/{flightNumber}/wizard", h.OpenWizard).Methods("POST")

	// Wizard routes
	api.HandleFunc("/wizard/{flowId}", h.GetWizardState).Methods("GET")
	api.HandleFunc("/wizard/{flowId}/seat", h.SelectSeat).Methods("POST")
	api.HandleFunc("/wizard/{flowId}/meal", h.SetMeal).Methods("POST")
	api.HandleFunc("/wizard/{flowId}/baggage", h.ToggleBaggage).Methods("POST")
	api.HandleFunc("/wizard/{flowId}/special-request", h.SetSpecialRequest).Methods("POST")
	api.HandleFunc("/wizard/{flowId}/booking", h.SubmitBooking).Methods("POST")
	api.HandleFunc("/wizard/{flowId}/payment", h.SubmitPayment).Methods("POST")
	api.HandleFunc("/wizard/{flowId}/reset", h.ResetWizard).Methods("POST")
	api.HandleFunc("/wizard/{flowId}", h.DismissWizard).Methods("DELETE")

	// Booking history
	api.HandleFunc("/bookings", h.GetBookings).Methods("GET")
	api.HandleFunc("/flows", h.GetFlowHistory).Methods("GET")

	// Serve static files
	r.PathPrefix("/").Handler(http.FileServer(http.Dir("./static")))

	return r
}
