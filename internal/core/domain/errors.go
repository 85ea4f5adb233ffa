package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotAdmin           = errors.New("admin role required")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrListingNotFound    = errors.New("listing not found")
)

// ValidationError describes one rejected form field. Field is the wire name.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is returned when a form is rejected before reaching the
// data gateway.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, v := range e {
		parts = append(parts, v.Error())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether field was rejected.
func (e ValidationErrors) Has(field string) bool {
	for _, v := range e {
		if v.Field == field {
			return true
		}
	}
	return false
}

// GatewayError is a failure reported by the data platform or the transport
// to it. Code carries the backend's own code (a SQLSTATE for Postgres) when
// there is one.
type GatewayError struct {
	Op      string
	Table   string
	Code    string
	Message string
	Err     error
}

func (e *GatewayError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Code != "" {
		return fmt.Sprintf("gateway %s %s failed (%s): %s", e.Op, e.Table, e.Code, msg)
	}
	return fmt.Sprintf("gateway %s %s failed: %s", e.Op, e.Table, msg)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// NewGatewayError wraps err unless it already is a GatewayError.
func NewGatewayError(op, table string, err error) error {
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return err
	}
	return &GatewayError{Op: op, Table: table, Err: err}
}

// IsGatewayError reports whether err, or anything it wraps, is a GatewayError.
func IsGatewayError(err error) bool {
	var gwErr *GatewayError
	return errors.As(err, &gwErr)
}
