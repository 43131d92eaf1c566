package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"flight-booking-storefront/internal/backend"
	"flight-booking-storefront/internal/config"
	"flight-booking-storefront/internal/database"
	"flight-booking-storefront/internal/temporal/activities"
	"flight-booking-storefront/internal/temporal/workflows"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Connect to database
	db, err := database.NewDB(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Println("Connected to database")

	// Connect to Temporal
	temporalClient, err := client.Dial(client.Options{
		HostPort: cfg.TemporalAddress,
	})
	if err != nil {
		log.Fatalf("Failed to create Temporal client: %v", err)
	}
	defer temporalClient.Close()

	log.Println("Connected to Temporal")

	// Backend collaborator client shared by the activities
	backendClient := backend.NewClient(cfg.BackendBaseURL, cfg.BackendTimeout)

	// Create worker
	w := worker.New(temporalClient, "wizard-task-queue", worker.Options{})

	// Register workflows
	w.RegisterWorkflow(workflows.BookingWizardWorkflow)

	// Register activities
	bookingActivities := activities.NewBookingActivities(backendClient)
	w.RegisterActivity(bookingActivities.BookFlight)

	paymentActivities := activities.NewPaymentActivities(backendClient)
	w.RegisterActivity(paymentActivities.ChargePayment)

	flowActivities := activities.NewFlowActivities(db)
	w.RegisterActivity(flowActivities.UpdateFlowStatus)
	w.RegisterActivity(flowActivities.RecordBooking)
	w.RegisterActivity(flowActivities.RecordPayment)
	w.RegisterActivity(flowActivities.SendConfirmation)

	// Start worker
	err = w.Start()
	if err != nil {
		log.Fatalf("Failed to start worker: %v", err)
	}

	log.Println("Worker started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down worker...")
	w.Stop()
	log.Println("Worker stopped")
}
