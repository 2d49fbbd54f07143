package storage

import (
	"context"

	"github.com/iudanet/thoughtbook/internal/models"
)

// PaymentStorage defines interface for payment persistence
type PaymentStorage interface {
	// CreatePayment stores a new pending payment.
	// Returns ErrPaymentAlreadyExists if reference is taken.
	CreatePayment(ctx context.Context, payment *models.Payment) error

	// GetPayment retrieves payment by reference.
	// Returns ErrPaymentNotFound if payment doesn't exist.
	GetPayment(ctx context.Context, reference string) (*models.Payment, error)

	// MarkPaid switches payment status to paid. Repeated calls are no-op.
	// Returns ErrPaymentNotFound if payment doesn't exist.
	MarkPaid(ctx context.Context, reference string) error
}
