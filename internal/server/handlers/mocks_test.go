package handlers

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/iudanet/thoughtbook/internal/models"
	"github.com/iudanet/thoughtbook/internal/server/storage"
)

// setupTestLogger creates a logger for testing
func setupTestLogger() *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelError,
	}
	handler := slog.NewTextHandler(os.Stdout, opts)
	return slog.New(handler)
}

// mockPaymentStorage is an in-memory PaymentStorage
type mockPaymentStorage struct {
	payments map[string]*models.Payment
	err      error
	mu       sync.Mutex
}

func newMockPaymentStorage() *mockPaymentStorage {
	return &mockPaymentStorage{payments: make(map[string]*models.Payment)}
}

func (m *mockPaymentStorage) CreatePayment(ctx context.Context, payment *models.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.payments[payment.Reference]; ok {
		return storage.ErrPaymentAlreadyExists
	}
	p := *payment
	m.payments[payment.Reference] = &p
	return nil
}

func (m *mockPaymentStorage) GetPayment(ctx context.Context, reference string) (*models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[reference]
	if !ok {
		return nil, storage.ErrPaymentNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockPaymentStorage) MarkPaid(ctx context.Context, reference string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[reference]
	if !ok {
		return storage.ErrPaymentNotFound
	}
	p.Status = models.PaymentPaid
	return nil
}

// mockLicenseStorage is an in-memory LicenseStorage
type mockLicenseStorage struct {
	licenses map[string]*models.IssuedLicense
	mu       sync.Mutex
}

func newMockLicenseStorage() *mockLicenseStorage {
	return &mockLicenseStorage{licenses: make(map[string]*models.IssuedLicense)}
}

func (m *mockLicenseStorage) SaveLicense(ctx context.Context, lic *models.IssuedLicense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.licenses[lic.Reference+"/"+lic.DeviceID] = lic
	return nil
}

func (m *mockLicenseStorage) GetLicense(ctx context.Context, reference, deviceID string) (*models.IssuedLicense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lic, ok := m.licenses[reference+"/"+deviceID]
	if !ok {
		return nil, storage.ErrLicenseNotFound
	}
	return lic, nil
}

// mockIssuer counts issued licenses
type mockIssuer struct {
	issued int
}

func (m *mockIssuer) Issue(payment *models.Payment, deviceID string) (*models.IssuedLicense, error) {
	m.issued++
	return &models.IssuedLicense{
		Reference:   payment.Reference,
		DeviceID:    deviceID,
		LicenseData: `{"email":"` + payment.Email + `"}`,
		LicenseKey:  "signature",
	}, nil
}

// mockFeedbackStorage is an in-memory FeedbackStorage
type mockFeedbackStorage struct {
	items []*models.StoredFeedback
	err   error
}

func (m *mockFeedbackStorage) SaveFeedback(ctx context.Context, fb *models.StoredFeedback) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.items = append(m.items, fb)
	fb.ID = int64(len(m.items))
	return fb.ID, nil
}

func (m *mockFeedbackStorage) ListFeedback(ctx context.Context, limit int) ([]*models.StoredFeedback, error) {
	return m.items, nil
}
