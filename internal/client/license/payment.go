package license

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/iudanet/thoughtbook/internal/config"
	"github.com/iudanet/thoughtbook/pkg/api"
)

// PaymentAPI часть HTTP клиента, нужная для покупки лицензии
type PaymentAPI interface {
	CreatePayment(ctx context.Context, req api.PaymentRequest) (*api.PaymentResponse, error)
	IssueLicense(ctx context.Context, reference string, req api.LicenseRequest) (*api.LicenseResponse, error)
}

// Purchaser проводит покупку: создает оплату и после нее получает
// подписанную лицензию с сервера.
type Purchaser struct {
	client  PaymentAPI
	manager *Manager
	emails  *EmailStore
	logger  *slog.Logger
}

// NewPurchaser creates Purchaser.
func NewPurchaser(client PaymentAPI, manager *Manager, emails *EmailStore, logger *slog.Logger) *Purchaser {
	return &Purchaser{
		client:  client,
		manager: manager,
		emails:  emails,
		logger:  logger,
	}
}

// Start сохраняет email и создает оплату. Возвращает ссылку на оплату
// и адрес страницы, которую пользователь должен открыть.
func (p *Purchaser) Start(ctx context.Context, email string) (*api.PaymentData, error) {
	if err := p.emails.Set(ctx, email); err != nil {
		return nil, err
	}

	stored, err := p.emails.Get(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.CreatePayment(ctx, api.PaymentRequest{
		Email:  stored,
		Amount: config.PremiumPrice,
	})
	if err != nil {
		p.logger.Error("payment initiation failed", "error", err)
		return nil, err
	}

	p.logger.Info("payment initiated", "email", stored)
	return &resp.Data, nil
}

// Complete получает лицензию по reference и активирует ее.
// Лицензия с сервера проверяется так же, как введенная вручную.
func (p *Purchaser) Complete(ctx context.Context, reference, deviceID string) error {
	if reference == "" {
		return fmt.Errorf("payment reference is empty")
	}

	lic, err := p.client.IssueLicense(ctx, reference, api.LicenseRequest{DeviceID: deviceID})
	if err != nil {
		p.logger.Error("license request failed", "error", err)
		return err
	}

	return p.manager.Activate(ctx, lic.LicenseData, lic.LicenseKey)
}
