package activities

import (
	"context"
	"fmt"

	"flight-booking-storefront/internal/backend"
	"flight-booking-storefront/internal/models"
	"flight-booking-storefront/internal/wizarderr"

	"go.temporal.io/sdk/temporal"
)

type PaymentActivities struct {
	Backend *backend.Client
}

func NewPaymentActivities(client *backend.Client) *PaymentActivities {
	return &PaymentActivities{Backend: client}
}

// ChargePayment sends the payment request for a confirmed booking.
func (a *PaymentActivities) ChargePayment(ctx context.Context, customerID string, req *models.PaymentRequest) (*models.PaymentRecord, error) {
	payment, err := a.Backend.SubmitPayment(ctx, customerID, req)
	if err != nil {
		if wizarderr.IsTransport(err) || wizarderr.IsMalformedResponse(err) {
			return nil, temporal.NewNonRetryableApplicationError(err.Error(), "PaymentFailed", err)
		}
		return nil, fmt.Errorf("failed to submit payment: %w", err)
	}
	return payment, nil
}
