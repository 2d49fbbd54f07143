package handlers

import "context"

// contextKey тип для ключей контекста
type contextKey string

const (
	// PaymentIDKey ключ для хранения id оплаты в контексте
	PaymentIDKey contextKey = "payment_id"
	// EmailKey ключ для хранения email покупателя в контексте
	EmailKey contextKey = "email"
)

// GetPaymentID извлекает id оплаты из контекста запроса
func GetPaymentID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(PaymentIDKey).(string)
	return id, ok && id != ""
}

// GetEmail извлекает email покупателя из контекста запроса
func GetEmail(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(EmailKey).(string)
	return email, ok
}
