package webapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Kinds of API failures. Every *Error unwraps to one of them.
var (
	ErrRateLimited = errors.New("rate limit reached")
	ErrInvalidKey  = errors.New("invalid or missing api key")
	ErrTimeout     = errors.New("request timed out")
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("service unavailable")
)

// Error is a failed call to a remote API.
type Error struct {
	Service string // "alphavantage", "newsapi"
	Kind    error  // one of the Err* kinds
	Status  int    // HTTP status, 0 when the failure is reported in a 200 body
	Message string // as reported by the service
	Body    []byte // raw response body, for services that report errors in it
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Service, e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (HTTP %d)", e.Status)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Kind }

// KindOf maps an HTTP status to an error kind.
func KindOf(status int) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrInvalidKey
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusTooManyRequests:
		return ErrRateLimited
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return ErrTimeout
	default:
		return ErrUnavailable
	}
}

// transportError classifies an error returned by http.Client.Do.
func transportError(service string, err error) error {
	var nerr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &nerr) && nerr.Timeout()) {
		return &Error{Service: service, Kind: ErrTimeout, Message: err.Error()}
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return &Error{Service: service, Kind: ErrUnavailable, Message: err.Error()}
}

// IsTransient reports whether retrying the same request may succeed.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrUnavailable)
}
