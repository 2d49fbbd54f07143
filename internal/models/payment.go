package models

import "time"

// Payment статусы
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
)

// Payment представляет инициированную оплату премиум лицензии
type Payment struct {
	CreatedAt time.Time `json:"created_at"`
	Reference string    `json:"reference"` // UUID ссылки на оплату
	Email     string    `json:"email"`
	Status    string    `json:"status"`
	Amount    int64     `json:"amount"`
}
