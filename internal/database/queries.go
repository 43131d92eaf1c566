package database

import (
	"database/sql"
	"fmt"

	"flight-booking-storefront/internal/models"
)

// CreateFlow inserts a new wizard flow instance
func (db *DB) CreateFlow(flow *models.WizardFlow) error {
	query := `
		INSERT INTO wizard_flows (flow_id, customer_id, flight_number, status, workflow_id, run_id)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, flow.FlowID, flow.CustomerID, flow.FlightNumber,
		flow.Status, flow.WorkflowID, flow.RunID)
	if err != nil {
		return fmt.Errorf("failed to create flow: %w", err)
	}

	return nil
}

// GetFlow retrieves a wizard flow by ID
func (db *DB) GetFlow(flowID string) (*models.WizardFlow, error) {
	query := `
		SELECT flow_id, customer_id, flight_number, status, workflow_id, run_id,
		       booking_id, transaction_id, created_at, updated_at
		FROM wizard_flows
		WHERE flow_id = ?
	`

	var flow models.WizardFlow
	var bookingID, transactionID sql.NullString
	err := db.QueryRow(query, flowID).Scan(
		&flow.FlowID, &flow.CustomerID, &flow.FlightNumber, &flow.Status,
		&flow.WorkflowID, &flow.RunID, &bookingID, &transactionID,
		&flow.CreatedAt, &flow.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrFlowNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get flow: %w", err)
	}

	if bookingID.Valid {
		flow.BookingID = &bookingID.String
	}
	if transactionID.Valid {
		flow.TransactionID = &transactionID.String
	}

	return &flow, nil
}

// UpdateFlowStatus updates a flow's status
func (db *DB) UpdateFlowStatus(flowID, status string) error {
	query := `
		UPDATE wizard_flows
		SET status = ?, updated_at = NOW()
		WHERE flow_id = ?
	`

	result, err := db.Exec(query, status, flowID)
	if err != nil {
		return fmt.Errorf("failed to update flow status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrFlowNotFound
	}

	return nil
}

// RecordBooking stores the booking id issued by the booking service
func (db *DB) RecordBooking(flowID, bookingID string) error {
	query := `
		UPDATE wizard_flows
		SET booking_id = ?, status = ?, updated_at = NOW()
		WHERE flow_id = ?
	`

	result, err := db.Exec(query, bookingID, models.StatusBookingConfirmed, flowID)
	if err != nil {
		return fmt.Errorf("failed to record booking: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrFlowNotFound
	}

	return nil
}

// RecordPayment stores the transaction id issued by the payment service
func (db *DB) RecordPayment(flowID, transactionID string) error {
	query := `
		UPDATE wizard_flows
		SET transaction_id = ?, status = ?, updated_at = NOW()
		WHERE flow_id = ?
	`

	result, err := db.Exec(query, transactionID, models.StatusPaymentSucceeded, flowID)
	if err != nil {
		return fmt.Errorf("failed to record payment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrFlowNotFound
	}

	return nil
}

// GetFlowsByCustomer retrieves all wizard flows for a customer, newest first
func (db *DB) GetFlowsByCustomer(customerID string) ([]models.WizardFlow, error) {
	query := `
		SELECT flow_id, customer_id, flight_number, status, workflow_id, run_id,
		       booking_id, transaction_id, created_at, updated_at
		FROM wizard_flows
		WHERE customer_id = ?
		ORDER BY created_at DESC
	`

	rows, err := db.Query(query, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query flows: %w", err)
	}
	defer rows.Close()

	var flows []models.WizardFlow
	for rows.Next() {
		var flow models.WizardFlow
		var bookingID, transactionID sql.NullString

		err := rows.Scan(&flow.FlowID, &flow.CustomerID, &flow.FlightNumber, &flow.Status,
			&flow.WorkflowID, &flow.RunID, &bookingID, &transactionID,
			&flow.CreatedAt, &flow.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan flow: %w", err)
		}

		if bookingID.Valid {
			flow.BookingID = &bookingID.String
		}
		if transactionID.Valid {
			flow.TransactionID = &transactionID.String
		}

		flows = append(flows, flow)
	}

	return flows, nil
}
