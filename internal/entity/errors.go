package entity

import "errors"

// Named conditions raised by the aggregate, the repositories and the
// service. Callers match them with errors.Is; the HTTP layer maps each
// one to a structured error response.
var (
	ErrAlreadyCancelled   = errors.New("order is already cancelled")
	ErrAlreadyPaid        = errors.New("order is already paid")
	ErrPaymentNotVerified = errors.New("payment not verified")
	ErrEntityOutdated     = errors.New("entity version is outdated")
	ErrEntityNotFound     = errors.New("entity not found")
	ErrPersistence        = errors.New("persistence error")
	ErrBlankIdentifier    = errors.New("identifier cannot be blank")
	ErrNegativeAmount     = errors.New("amount must not be negative")
	ErrInvalidStatus      = errors.New("invalid status value")
)
