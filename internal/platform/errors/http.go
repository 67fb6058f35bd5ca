package errors

// HTTP and transport helpers for mapping remote API responses and network
// faults to project ErrorCodes and retry semantics

import (
	"context"
	stderrs "errors"
	"net"
	"net/http"
	"strings"
)

// StatusCode maps an HTTP response status from the remote API to an ErrorCode.
// 2xx maps to Unknown; callers should not consult it for successful responses
func StatusCode(status int) ErrorCode {
	switch {
	case status == http.StatusTooManyRequests:
		return ErrorCodeTooManyRequests
	case status >= 500:
		return ErrorCodeUnavailable
	case status == http.StatusBadRequest:
		return ErrorCodeValidation
	case status == http.StatusUnauthorized:
		return ErrorCodeUnauthorized
	case status == http.StatusForbidden:
		return ErrorCodeForbidden
	case status == http.StatusNotFound:
		return ErrorCodeNotFound
	case status > 400:
		return ErrorCodeAPI
	default:
		return ErrorCodeUnknown
	}
}

// FromStatus wraps a remote API status into a coded error.
// msg should carry the server-provided message when one is available
func FromStatus(status int, msg string) error {
	return Newf(StatusCode(status), "remote api status %d: %s", status, msg)
}

// FromTransport classifies a client-side transport fault (connection refused,
// reset, timeout, DNS) as Unavailable so the caller's retry loop picks it up.
// Context cancellation is passed through unwrapped: local cancellations are
// not retryable and the caller decides what to do with them
func FromTransport(err error, msg string) error {
	if err == nil {
		return nil
	}
	if stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return err
	}
	return Wrap(err, ErrorCodeUnavailable, msg)
}

// IsRetryable reports whether an error represents a transient condition worth
// retrying: rate limiting, remote 5xx, or a network fault. Local
// cancellations/timeouts are never retryable; the caller owns those
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return false
	}

	switch CodeOf(err) {
	case ErrorCodeUnavailable, ErrorCodeTooManyRequests:
		return true
	}

	root := Root(err)

	// Network-level faults surface as net.Error or as well-known text from
	// the http transport
	var netErr net.Error
	if stderrs.As(root, &netErr) {
		return true
	}

	s := strings.ToLower(root.Error())
	switch {
	case strings.Contains(s, "connection reset"),
		strings.Contains(s, "connection refused"),
		strings.Contains(s, "broken pipe"),
		strings.Contains(s, "i/o timeout"),
		strings.Contains(s, "unexpected eof"),
		strings.Contains(s, "no such host"):
		return true
	default:
		return false
	}
}
