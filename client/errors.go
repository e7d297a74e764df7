package client

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAuthenticated means no session token is held or the server
	// rejected the one presented.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrSettlementTimeout means the payment never reached a terminal
	// status within the polling deadline. The charge may still settle
	// later; poll the transaction status to find out.
	ErrSettlementTimeout = errors.New("payment confirmation timed out")
)

// RequestError is a non-2xx response from the API that does not map to
// a more specific error. Validation failures come back as
// *domain.ValidationError and stock conflicts as *domain.StockError,
// whether they were caught locally or by the server.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// NetworkError wraps a transport failure. The request may or may not
// have reached the server.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return "network error: " + e.Err.Error() }
func (e *NetworkError) Unwrap() error { return e.Err }
