package domain

import "errors"

// Sentinel errors for domain-level error handling.
// The handler layer maps these to HTTP status codes.
var (
	ErrBrokerAlreadyExists      = errors.New("broker_already_exists")
	ErrBrokerNotFound           = errors.New("broker_not_found")
	ErrShareholderAlreadyExists = errors.New("shareholder_already_exists")
	ErrShareholderNotFound      = errors.New("shareholder_not_found")
	ErrSecurityAlreadyExists    = errors.New("security_already_exists")
	ErrSecurityNotFound         = errors.New("security_not_found")
	ErrOrderNotFound            = errors.New("order_not_found")
	ErrDuplicateOrderID         = errors.New("duplicate_order_id")
	ErrInvalidStopPrice         = errors.New("invalid_stop_price")
)

// ValidationError represents a request validation failure.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
