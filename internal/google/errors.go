package google

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorKind classifies OAuth and calendar flow failures.
type ErrorKind string

const (
	KindMissingCredentials     ErrorKind = "missing_credentials"
	KindMissingParameters      ErrorKind = "missing_parameters"
	KindAuthorizationDenied    ErrorKind = "authorization_denied"
	KindInvalidState           ErrorKind = "invalid_state"
	KindTokenExchangeFailed    ErrorKind = "token_exchange_failed"
	KindNoTokensReturned       ErrorKind = "no_tokens_returned"
	KindSaveFailed             ErrorKind = "save_failed"
	KindMissingRefreshInputs   ErrorKind = "missing_refresh_inputs"
	KindRefreshFailed          ErrorKind = "refresh_failed"
	KindMissingRequiredFields  ErrorKind = "missing_required_fields"
	KindAuthenticationRequired ErrorKind = "authentication_required"
	KindAuthenticationFailed   ErrorKind = "authentication_failed"
	KindEventCreationFailed    ErrorKind = "event_creation_failed"
	KindEventListFailed        ErrorKind = "event_list_failed"
	KindNetworkTimeout         ErrorKind = "network_timeout"
)

// FlowError is a classified failure from the OAuth/calendar flows.
// Detail carries the provider's raw error body when one was received;
// it is never discarded.
type FlowError struct {
	Kind    ErrorKind
	Message string
	Detail  string
	// Remedy describes recovery steps for the operator.
	Remedy string
	Err    error
}

func (e *FlowError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FlowError) Unwrap() error {
	return e.Err
}

// Kind extracts the ErrorKind from err, or "" when err is not a FlowError.
func Kind(err error) ErrorKind {
	var fe *FlowError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// Detail extracts the provider error body from err, if any.
func Detail(err error) string {
	var fe *FlowError
	if errors.As(err, &fe) {
		return fe.Detail
	}
	return ""
}

func newError(kind ErrorKind, message string) *FlowError {
	return &FlowError{Kind: kind, Message: message}
}

// isTimeout reports whether err is a transport timeout. Timeouts are a
// network failure class, never an authentication failure.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
