package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// ErrorCode identifies the kind of provider failure. Codes are assigned at
// the adapter boundary, where the underlying failure is known, so callers
// never re-infer retryability from message text.
type ErrorCode string

const (
	CodeRateLimit   ErrorCode = "rate_limit"
	CodeTimeout     ErrorCode = "timeout"
	CodeNetwork     ErrorCode = "network"
	CodeUnavailable ErrorCode = "unavailable"
	CodeServer      ErrorCode = "server"
	CodeAuth        ErrorCode = "auth"
	CodeBadRequest  ErrorCode = "bad_request"
	CodeUnknown     ErrorCode = "unknown"
)

// Retryable reports whether failures of this kind are safe to retry on
// another provider.
func (c ErrorCode) Retryable() bool {
	switch c {
	case CodeRateLimit, CodeTimeout, CodeNetwork, CodeUnavailable, CodeServer:
		return true
	}
	return false
}

// Error wraps a provider failure with its origin and classification.
type Error struct {
	Provider  string
	Code      ErrorCode
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	if e == nil {
		return "provider error"
	}
	return fmt.Sprintf("%s API Error: %v", e.Provider, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// WrapErr classifies err and wraps it as a provider Error. Adapters call
// this on every generation failure so no raw transport error escapes.
func WrapErr(provider string, err error) *Error {
	code := classify(err)
	return &Error{
		Provider:  provider,
		Code:      code,
		Retryable: code.Retryable(),
		Err:       err,
	}
}

// statusErr lets adapters attach an HTTP status when the SDK exposes one.
type statusErr struct {
	status int
	err    error
}

func (e *statusErr) Error() string { return e.err.Error() }
func (e *statusErr) Unwrap() error { return e.err }

// withStatus annotates err with an HTTP status for classification.
func withStatus(status int, err error) error {
	if status == 0 {
		return err
	}
	return &statusErr{status: status, err: err}
}

// transientPhrases are the message fragments that mark a failure as
// transient when no structured signal is available.
var transientPhrases = map[string]ErrorCode{
	"rate limit":            CodeRateLimit,
	"timeout":               CodeTimeout,
	"network":               CodeNetwork,
	"connection":            CodeNetwork,
	"service unavailable":   CodeUnavailable,
	"internal server error": CodeServer,
}

func classify(err error) ErrorCode {
	if err == nil {
		return CodeUnknown
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return CodeTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return CodeTimeout
		}
		return CodeNetwork
	}
	var se *statusErr
	if errors.As(err, &se) {
		switch {
		case se.status == 429:
			return CodeRateLimit
		case se.status == 401 || se.status == 403:
			return CodeAuth
		case se.status == 503:
			return CodeUnavailable
		case se.status >= 500 && se.status <= 599:
			return CodeServer
		case se.status >= 400 && se.status <= 499:
			return CodeBadRequest
		}
	}
	msg := strings.ToLower(err.Error())
	for phrase, code := range transientPhrases {
		if strings.Contains(msg, phrase) {
			return code
		}
	}
	return CodeUnknown
}

// IsRetryable reports whether err is a provider failure that is safe to
// retry elsewhere.
func IsRetryable(err error) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	return false
}
