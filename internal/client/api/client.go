package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/iudanet/thoughtbook/pkg/api"
)

// DefaultTimeout таймаут HTTP клиента по умолчанию
const DefaultTimeout = 30 * time.Second

// ErrUnavailable сервер ответил 503 или недоступен по сети
var ErrUnavailable = errors.New("server unavailable")

// StatusError ответ сервера с неуспешным статусом
type StatusError struct {
	Message    string
	StatusCode int
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// Is позволяет проверять 503 через errors.Is(err, ErrUnavailable)
func (e *StatusError) Is(target error) bool {
	return target == ErrUnavailable && e.StatusCode == http.StatusServiceUnavailable
}

// Client представляет HTTP клиент для взаимодействия с сервером лицензий и отзывов
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient создает новый API клиент
func NewClient(baseURL string) *Client {
	return NewClientWithTimeout(baseURL, DefaultTimeout)
}

// NewClientWithTimeout создает клиент с заданным таймаутом запроса
func NewClientWithTimeout(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Копируем заголовок Authorization при редиректе
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
}

// CreatePayment инициирует оплату премиум лицензии
func (c *Client) CreatePayment(ctx context.Context, req api.PaymentRequest) (*api.PaymentResponse, error) {
	var resp api.PaymentResponse
	if err := c.doRequest(ctx, http.MethodPost, "/payment", "", req, &resp); err != nil {
		return nil, fmt.Errorf("payment request failed: %w", err)
	}
	if resp.Data.Reference == "" {
		return nil, fmt.Errorf("payment request failed: empty reference")
	}
	return &resp, nil
}

// IssueLicense запрашивает лицензию по ссылке оплаты
func (c *Client) IssueLicense(ctx context.Context, reference string, req api.LicenseRequest) (*api.LicenseResponse, error) {
	var resp api.LicenseResponse
	if err := c.doRequest(ctx, http.MethodPost, "/license", reference, req, &resp); err != nil {
		return nil, fmt.Errorf("license request failed: %w", err)
	}
	return &resp, nil
}

// SendFeedback отправляет отзыв. 503 и сетевые ошибки возвращаются
// как ErrUnavailable, чтобы вызывающий мог поставить отзыв в очередь.
func (c *Client) SendFeedback(ctx context.Context, req api.FeedbackRequest) error {
	err := c.doRequest(ctx, http.MethodPost, "/feedback", "", req, nil)
	if err == nil {
		return nil
	}

	var netErr *transportError
	if errors.As(err, &netErr) {
		return fmt.Errorf("send feedback: %w: %v", ErrUnavailable, netErr.err)
	}
	return fmt.Errorf("send feedback: %w", err)
}

// FetchManifest загружает описание последней версии по абсолютному url
func (c *Client) FetchManifest(ctx context.Context, url string) (*api.UpdateManifest, error) {
	var resp api.UpdateManifest
	if err := c.do(ctx, http.MethodGet, url, "", nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch manifest failed: %w", err)
	}
	return &resp, nil
}

// Health проверяет доступность сервера
func (c *Client) Health(ctx context.Context) (*api.HealthResponse, error) {
	var resp api.HealthResponse
	if err := c.doRequest(ctx, http.MethodGet, "/health", "", nil, &resp); err != nil {
		return nil, fmt.Errorf("health request failed: %w", err)
	}
	return &resp, nil
}

// transportError ошибка на уровне сети, ответа от сервера нет
type transportError struct {
	err error
}

func (e *transportError) Error() string { return "request failed: " + e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

func (c *Client) doRequest(ctx context.Context, method, path, bearer string, body, result any) error {
	return c.do(ctx, method, c.baseURL+path, bearer, body, result)
}

// do выполняет HTTP запрос
func (c *Client) do(ctx context.Context, method, url, bearer string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &transportError{err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &StatusError{StatusCode: resp.StatusCode}
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil {
			statusErr.Message = errResp.Message
			if statusErr.Message == "" {
				statusErr.Message = errResp.Error
			}
		}
		return statusErr
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
