package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/thoughtbook/pkg/api"
)

// TestNewClient проверяет создание нового клиента
func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080/")

	assert.NotNil(t, client)
	assert.Equal(t, "http://localhost:8080", client.baseURL)
	assert.Equal(t, DefaultTimeout, client.httpClient.Timeout)
}

func TestClient_CreatePayment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/payment", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req api.PaymentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(5000), req.Amount)
		assert.Equal(t, "user@example.com", req.Email)

		_ = json.NewEncoder(w).Encode(api.PaymentResponse{Data: api.PaymentData{
			Reference:        "ref-1",
			AuthorizationURL: "http://pay/ref-1",
		}})
	}))
	defer server.Close()

	resp, err := NewClient(server.URL).CreatePayment(context.Background(), api.PaymentRequest{
		Email:  "user@example.com",
		Amount: 5000,
	})
	require.NoError(t, err)
	assert.Equal(t, "ref-1", resp.Data.Reference)
	assert.Equal(t, "http://pay/ref-1", resp.Data.AuthorizationURL)
}

func TestClient_CreatePayment_EmptyReference(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{}}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL).CreatePayment(context.Background(), api.PaymentRequest{})
	assert.Error(t, err)
}

func TestClient_IssueLicense(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/license", r.URL.Path)
		if r.Header.Get("Authorization") != "Bearer ref-1" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(api.ErrorResponse{Error: "unauthorized", Message: "invalid token"})
			return
		}
		_ = json.NewEncoder(w).Encode(api.LicenseResponse{LicenseData: "data", LicenseKey: "key"})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	resp, err := client.IssueLicense(context.Background(), "ref-1", api.LicenseRequest{DeviceID: "d"})
	require.NoError(t, err)
	assert.Equal(t, "data", resp.LicenseData)
	assert.Equal(t, "key", resp.LicenseKey)

	_, err = client.IssueLicense(context.Background(), "bad", api.LicenseRequest{})
	require.Error(t, err)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	assert.Equal(t, "invalid token", statusErr.Message)
}

func TestClient_SendFeedback(t *testing.T) {
	tests := []struct {
		name            string
		status          int
		wantErr         bool
		wantUnavailable bool
	}{
		{name: "accepted", status: http.StatusOK},
		{name: "maintenance", status: http.StatusServiceUnavailable, wantErr: true, wantUnavailable: true},
		{name: "rejected", status: http.StatusBadRequest, wantErr: true},
		{name: "server error", status: http.StatusInternalServerError, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/feedback", r.URL.Path)
				var req api.FeedbackRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(t, "hello", req.UserFeedback)
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			err := NewClient(server.URL).SendFeedback(context.Background(), api.FeedbackRequest{UserFeedback: "hello"})
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantUnavailable, errors.Is(err, ErrUnavailable))
		})
	}
}

func TestClient_SendFeedback_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	err := NewClientWithTimeout(url, time.Second).SendFeedback(context.Background(), api.FeedbackRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClient_FetchManifest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/update.json", r.URL.Path)
		_ = json.NewEncoder(w).Encode(api.UpdateManifest{LatestVersion: "1.2.0", URL: "http://dl", Notes: "fixes"})
	}))
	defer server.Close()

	// адрес манифеста абсолютный и не зависит от baseURL
	m, err := NewClient("http://unused").FetchManifest(context.Background(), server.URL+"/update.json")
	require.NoError(t, err)
	assert.Equal(t, "1.2.0", m.LatestVersion)
	assert.Equal(t, "fixes", m.Notes)
}

func TestClient_Health(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(api.HealthResponse{Status: "ok"})
	}))
	defer server.Close()

	resp, err := NewClient(server.URL).Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
}

func TestClient_InvalidJSONResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	_, err := NewClient(server.URL).Health(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode response")
}
