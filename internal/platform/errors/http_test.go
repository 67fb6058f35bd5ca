package errors

import (
	"context"
	stderrs "errors"
	"net"
	"net/http"
	"strings"
	"testing"
)

func TestStatusCodeMapping(t *testing.T) {
	cases := []struct {
		status int
		want   ErrorCode
	}{
		{http.StatusTooManyRequests, ErrorCodeTooManyRequests},
		{http.StatusInternalServerError, ErrorCodeUnavailable},
		{http.StatusBadGateway, ErrorCodeUnavailable},
		{http.StatusServiceUnavailable, ErrorCodeUnavailable},
		{http.StatusGatewayTimeout, ErrorCodeUnavailable},
		{http.StatusBadRequest, ErrorCodeValidation},
		{http.StatusUnauthorized, ErrorCodeUnauthorized},
		{http.StatusForbidden, ErrorCodeForbidden},
		{http.StatusNotFound, ErrorCodeNotFound},
		{http.StatusRequestEntityTooLarge, ErrorCodeAPI},
		{http.StatusOK, ErrorCodeUnknown},
	}
	for _, c := range cases {
		if got := StatusCode(c.status); got != c.want {
			t.Fatalf("StatusCode(%d) = %v, want %v", c.status, got, c.want)
		}
	}
}

func TestFromStatus(t *testing.T) {
	err := FromStatus(503, "overloaded")
	if CodeOf(err) != ErrorCodeUnavailable {
		t.Fatalf("FromStatus(503) code = %v", CodeOf(err))
	}
	if !strings.Contains(err.Error(), "503") || !strings.Contains(err.Error(), "overloaded") {
		t.Fatalf("FromStatus message = %q, want status and body", err.Error())
	}
}

func TestFromTransport(t *testing.T) {
	if FromTransport(nil, "x") != nil {
		t.Fatalf("FromTransport(nil) != nil")
	}

	// context errors pass through unwrapped
	if got := FromTransport(context.Canceled, "x"); got != context.Canceled {
		t.Fatalf("FromTransport(Canceled) = %v, want passthrough", got)
	}
	if got := FromTransport(context.DeadlineExceeded, "x"); got != context.DeadlineExceeded {
		t.Fatalf("FromTransport(DeadlineExceeded) = %v, want passthrough", got)
	}

	// everything else wraps as Unavailable
	err := FromTransport(stderrs.New("connection refused"), "dial")
	if CodeOf(err) != ErrorCodeUnavailable {
		t.Fatalf("FromTransport code = %v, want Unavailable", CodeOf(err))
	}
}

// fakeNetErr satisfies net.Error
type fakeNetErr struct{}

func (fakeNetErr) Error() string   { return "fake net fault" }
func (fakeNetErr) Timeout() bool   { return true }
func (fakeNetErr) Temporary() bool { return true }

var _ net.Error = fakeNetErr{}

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, false},
		{"wrapped canceled", Wrap(context.Canceled, ErrorCodeUnavailable, "call"), false},
		{"unavailable code", Unavailablef("down"), true},
		{"too many requests", New(ErrorCodeTooManyRequests, "slow down"), true},
		{"validation", New(ErrorCodeValidation, "bad payload"), false},
		{"not found", NotFoundf("missing"), false},
		{"net.Error root", Wrap(fakeNetErr{}, ErrorCodeUnknown, "call"), true},
		{"connection reset text", stderrs.New("read tcp: connection reset by peer"), true},
		{"connection refused text", stderrs.New("dial tcp: connection refused"), true},
		{"broken pipe text", stderrs.New("write: broken pipe"), true},
		{"io timeout text", stderrs.New("read: i/o timeout"), true},
		{"unexpected eof text", stderrs.New("unexpected EOF"), true},
		{"no such host text", stderrs.New("lookup api: no such host"), true},
		{"plain error", stderrs.New("something else"), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := IsRetryable(c.err); got != c.want {
				t.Fatalf("IsRetryable(%v) = %v, want %v", c.err, got, c.want)
			}
		})
	}
}

func TestRetryableDelegates(t *testing.T) {
	if !Retryable(FromStatus(429, "limit")) {
		t.Fatalf("Retryable(429) = false")
	}
	if Retryable(FromStatus(400, "bad")) {
		t.Fatalf("Retryable(400) = true")
	}
}
