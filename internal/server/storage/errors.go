package storage

import "errors"

// Common storage errors
var (
	// ErrPaymentNotFound indicates that payment was not found in storage
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrPaymentAlreadyExists indicates that payment with this id already exists
	ErrPaymentAlreadyExists = errors.New("payment already exists")

	// ErrLicenseNotFound indicates that no license was issued for the payment
	ErrLicenseNotFound = errors.New("license not found")
)
