package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/thoughtbook/internal/models"
	"github.com/iudanet/thoughtbook/pkg/api"
)

type licenseEnv struct {
	handler  *LicenseHandler
	payments *mockPaymentStorage
	licenses *mockLicenseStorage
	issuer   *mockIssuer
}

func newLicenseEnv(t *testing.T, status string) *licenseEnv {
	t.Helper()
	env := &licenseEnv{
		payments: newMockPaymentStorage(),
		licenses: newMockLicenseStorage(),
		issuer:   &mockIssuer{},
	}
	require.NoError(t, env.payments.CreatePayment(context.Background(), &models.Payment{
		Reference: "pay-1", Email: "buyer@example.com", Amount: 5000, Status: status,
	}))
	env.handler = NewLicenseHandler(setupTestLogger(), env.payments, env.licenses, env.issuer)
	return env
}

func licenseRequest(paymentID, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/license", strings.NewReader(body))
	if paymentID != "" {
		ctx := context.WithValue(req.Context(), PaymentIDKey, paymentID)
		req = req.WithContext(ctx)
	}
	return req
}

func TestLicenseHandler_Issue(t *testing.T) {
	env := newLicenseEnv(t, models.PaymentPaid)

	w := httptest.NewRecorder()
	env.handler.Issue(w, licenseRequest("pay-1", `{"device_id":"dev-1"}`))

	require.Equal(t, http.StatusOK, w.Code)
	var resp api.LicenseResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, `{"email":"buyer@example.com"}`, resp.LicenseData)
	assert.Equal(t, "signature", resp.LicenseKey)
	assert.Equal(t, 1, env.issuer.issued)

	// повторный запрос отдает ту же лицензию без повторной подписи
	w = httptest.NewRecorder()
	env.handler.Issue(w, licenseRequest("pay-1", `{"device_id":"dev-1"}`))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, env.issuer.issued)

	// пустое тело допустимо
	w = httptest.NewRecorder()
	env.handler.Issue(w, licenseRequest("pay-1", ``))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, env.issuer.issued)
}

func TestLicenseHandler_Errors(t *testing.T) {
	tests := []struct {
		name      string
		status    string
		paymentID string
		body      string
		want      int
	}{
		{name: "unpaid", status: models.PaymentPending, paymentID: "pay-1", body: `{}`, want: http.StatusPaymentRequired},
		{name: "no token", status: models.PaymentPaid, paymentID: "", body: `{}`, want: http.StatusUnauthorized},
		{name: "unknown payment", status: models.PaymentPaid, paymentID: "pay-2", body: `{}`, want: http.StatusNotFound},
		{name: "bad body", status: models.PaymentPaid, paymentID: "pay-1", body: `{`, want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newLicenseEnv(t, tt.status)

			w := httptest.NewRecorder()
			env.handler.Issue(w, licenseRequest(tt.paymentID, tt.body))

			assert.Equal(t, tt.want, w.Code)
			assert.Zero(t, env.issuer.issued)
		})
	}
}
