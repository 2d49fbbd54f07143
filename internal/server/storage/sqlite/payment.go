package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iudanet/thoughtbook/internal/models"
	"github.com/iudanet/thoughtbook/internal/server/storage"
)

// CreatePayment stores a new payment
func (s *Storage) CreatePayment(ctx context.Context, payment *models.Payment) error {
	query := `
		INSERT INTO payments (reference, email, amount, status, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	status := payment.Status
	if status == "" {
		status = models.PaymentPending
	}

	_, err := s.db.ExecContext(ctx, query,
		payment.Reference,
		payment.Email,
		payment.Amount,
		status,
		payment.CreatedAt,
	)
	if err != nil {
		// Проверяем на duplicate reference
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return storage.ErrPaymentAlreadyExists
		}
		return fmt.Errorf("failed to insert payment: %w", err)
	}

	return nil
}

// GetPayment retrieves payment by reference
func (s *Storage) GetPayment(ctx context.Context, reference string) (*models.Payment, error) {
	query := `
		SELECT reference, email, amount, status, created_at
		FROM payments
		WHERE reference = ?
	`

	payment := &models.Payment{}
	err := s.db.QueryRowContext(ctx, query, reference).Scan(
		&payment.Reference,
		&payment.Email,
		&payment.Amount,
		&payment.Status,
		&payment.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	return payment, nil
}

// MarkPaid switches payment status to paid
func (s *Storage) MarkPaid(ctx context.Context, reference string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE payments SET status = ? WHERE reference = ?`,
		models.PaymentPaid, reference,
	)
	if err != nil {
		return fmt.Errorf("failed to mark payment paid: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return storage.ErrPaymentNotFound
	}

	return nil
}
