package activities

import (
	"context"
	"errors"
	"fmt"
	"log"

	"flight-booking-storefront/internal/database"

	"go.temporal.io/sdk/temporal"
)

type FlowActivities struct {
	DB *database.DB
}

func NewFlowActivities(db *database.DB) *FlowActivities {
	return &FlowActivities{DB: db}
}

// UpdateFlowStatus updates the persisted status of a flow instance
func (a *FlowActivities) UpdateFlowStatus(ctx context.Context, flowID, status string) error {
	err := a.DB.UpdateFlowStatus(flowID, status)
	if err != nil {
		// Flow not found is a permanent error - don't retry
		if errors.Is(err, database.ErrFlowNotFound) {
			return temporal.NewNonRetryableApplicationError(
				err.Error(),
				"FlowNotFound",
				err,
			)
		}
		return fmt.Errorf("failed to update flow status: %w", err)
	}
	return nil
}

// RecordBooking stores the booking id on the flow row
func (a *FlowActivities) RecordBooking(ctx context.Context, flowID, bookingID string) error {
	err := a.DB.RecordBooking(flowID, bookingID)
	if err != nil {
		if errors.Is(err, database.ErrFlowNotFound) {
			return temporal.NewNonRetryableApplicationError(err.Error(), "FlowNotFound", err)
		}
		return fmt.Errorf("failed to record booking: %w", err)
	}
	return nil
}

// RecordPayment stores the transaction id on the flow row
func (a *FlowActivities) RecordPayment(ctx context.Context, flowID, transactionID string) error {
	err := a.DB.RecordPayment(flowID, transactionID)
	if err != nil {
		if errors.Is(err, database.ErrFlowNotFound) {
			return temporal.NewNonRetryableApplicationError(err.Error(), "FlowNotFound", err)
		}
		return fmt.Errorf("failed to record payment: %w", err)
	}
	return nil
}

// SendConfirmation sends a booking confirmation (simulated)
func (a *FlowActivities) SendConfirmation(ctx context.Context, flowID string) error {
	// In production, this would send an email/SMS
	log.Printf("Sending confirmation for flow %s", flowID)
	return nil
}
