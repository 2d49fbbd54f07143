package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/thoughtbook/internal/models"
	"github.com/iudanet/thoughtbook/internal/server/storage"
)

var (
	_ storage.PaymentStorage  = (*Storage)(nil)
	_ storage.FeedbackStorage = (*Storage)(nil)
	_ storage.LicenseStorage  = (*Storage)(nil)
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testPayment(ref string) *models.Payment {
	return &models.Payment{
		Reference: ref,
		Email:     "buyer@example.com",
		Amount:    5000,
		CreatedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestNew_ReopenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.db")

	s, err := New(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = New(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestNew_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(ctx, filepath.Join(t.TempDir(), "server.db"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPayments(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.CreatePayment(ctx, testPayment("p-1")))

	got, err := s.GetPayment(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, "buyer@example.com", got.Email)
	assert.Equal(t, int64(5000), got.Amount)
	assert.Equal(t, models.PaymentPending, got.Status)
	assert.True(t, got.CreatedAt.Equal(testPayment("p-1").CreatedAt))

	t.Run("duplicate reference", func(t *testing.T) {
		err := s.CreatePayment(ctx, testPayment("p-1"))
		assert.ErrorIs(t, err, storage.ErrPaymentAlreadyExists)
	})

	t.Run("mark paid twice", func(t *testing.T) {
		require.NoError(t, s.MarkPaid(ctx, "p-1"))
		require.NoError(t, s.MarkPaid(ctx, "p-1"))

		got, err := s.GetPayment(ctx, "p-1")
		require.NoError(t, err)
		assert.Equal(t, models.PaymentPaid, got.Status)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := s.GetPayment(ctx, "nope")
		assert.ErrorIs(t, err, storage.ErrPaymentNotFound)
		assert.ErrorIs(t, s.MarkPaid(ctx, "nope"), storage.ErrPaymentNotFound)
	})
}

func TestFeedback(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	for i, body := range []string{"first", "second", "third"} {
		id, err := s.SaveFeedback(ctx, &models.StoredFeedback{
			Feedback: models.Feedback{
				AppName:      "Thought Book",
				FollowUp:     "user@example.com",
				UserFeedback: body,
				Timestamp:    "01-05-2024, 10:00:00",
			},
			ReceivedAt: time.Now().UTC(),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), id)
	}

	items, err := s.ListFeedback(ctx, 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "third", items[0].UserFeedback)
	assert.Equal(t, "second", items[1].UserFeedback)
	assert.Equal(t, "user@example.com", items[0].FollowUp)
}

func TestLicenses(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	require.NoError(t, s.CreatePayment(ctx, testPayment("p-1")))

	_, err := s.GetLicense(ctx, "p-1", "dev-1")
	assert.ErrorIs(t, err, storage.ErrLicenseNotFound)

	lic := &models.IssuedLicense{
		Reference:   "p-1",
		DeviceID:    "dev-1",
		LicenseData: `{"email":"buyer@example.com"}`,
		LicenseKey:  "c2ln",
		IssuedAt:    time.Date(2024, 5, 1, 11, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.SaveLicense(ctx, lic))

	got, err := s.GetLicense(ctx, "p-1", "dev-1")
	require.NoError(t, err)
	assert.Equal(t, lic.LicenseData, got.LicenseData)
	assert.Equal(t, lic.LicenseKey, got.LicenseKey)

	// другое устройство получает отдельную запись
	_, err = s.GetLicense(ctx, "p-1", "dev-2")
	assert.ErrorIs(t, err, storage.ErrLicenseNotFound)

	lic.LicenseKey = "bmV3"
	require.NoError(t, s.SaveLicense(ctx, lic))
	got, err = s.GetLicense(ctx, "p-1", "dev-1")
	require.NoError(t, err)
	assert.Equal(t, "bmV3", got.LicenseKey)
}

func TestLicenses_UnknownPayment(t *testing.T) {
	s := newTestStorage(t)

	err := s.SaveLicense(context.Background(), &models.IssuedLicense{
		Reference:   "missing",
		LicenseData: "{}",
		LicenseKey:  "x",
		IssuedAt:    time.Now(),
	})
	assert.Error(t, err)
}
