// Package wizarderr defines the error taxonomy of the booking wizard.
// Every error here is recoverable: validation errors never reach the
// network, and transport/malformed-response errors return the flow to
// its prior interactive state for a user-initiated retry.
package wizarderr

import (
	"errors"
	"fmt"
)

// ValidationError reports a locally rejected input (missing seat,
// incomplete payment fields, unknown meal type).
type ValidationError struct {
	Field string
	Msg   string
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	return e.Msg
}

// TransportError reports a network failure or a non-2xx response from
// a collaborator.
type TransportError struct {
	StatusCode int // 0 when the request never got a response
	Msg        string
	Err        error
}

func (e TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	return "request failed"
}

func (e TransportError) Unwrap() error { return e.Err }

// MalformedResponseError reports a 2xx response whose body is missing
// required fields. Treated like a transport failure rather than an
// attempt to re-map the payload.
type MalformedResponseError struct {
	Field string
	Msg   string
}

func (e MalformedResponseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("malformed response: missing %s", e.Field)
	}
	return fmt.Sprintf("malformed response: %s", e.Msg)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsTransport(err error) bool {
	var target TransportError
	return errors.As(err, &target)
}

func IsMalformedResponse(err error) bool {
	var target MalformedResponseError
	return errors.As(err, &target)
}
