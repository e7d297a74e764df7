package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness conflict.
	ErrAlreadyExists = errors.New("already exists")
	// ErrForbidden indicates the caller is not allowed to act on the entity.
	ErrForbidden = errors.New("forbidden")
)

// ValidationError reports bad caller input. Non-retryable without correction.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// StockError reports a quantity exceeding the product's available stock.
type StockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("requested quantity %d exceeds available stock %d for product %s",
		e.Requested, e.Available, e.ProductID)
}
