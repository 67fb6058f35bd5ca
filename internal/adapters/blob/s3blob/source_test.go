package s3blob

import (
	"context"
	stderrs "errors"
	"fmt"
	"testing"

	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

func apiErr(code string) error {
	return &smithy.GenericAPIError{Code: code, Message: code}
}

func TestIsTransient(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, false},
		{"throttling", apiErr("Throttling"), true},
		{"throttling exception", apiErr("ThrottlingException"), true},
		{"request throttled", apiErr("RequestThrottled"), true},
		{"slow down", apiErr("SlowDown"), true},
		{"internal error", apiErr("InternalError"), true},
		{"service unavailable", apiErr("ServiceUnavailable"), true},
		{"access denied", apiErr("AccessDenied"), false},
		{"wrapped throttling", fmt.Errorf("get object: %w", apiErr("SlowDown")), true},
		{"plain error", stderrs.New("boom"), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := isTransient(c.err); got != c.want {
				t.Fatalf("isTransient(%v) = %v, want %v", c.err, got, c.want)
			}
		})
	}
}

func TestIsNotFound(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"NoSuchKey type", &s3types.NoSuchKey{}, true},
		{"NotFound type", &s3types.NotFound{}, true},
		{"NoSuchBucket type", &s3types.NoSuchBucket{}, true},
		{"NoSuchKey code", apiErr("NoSuchKey"), true},
		{"NoSuchBucket code", apiErr("NoSuchBucket"), true},
		{"NotFound code", apiErr("NotFound"), true},
		{"wrapped NoSuchKey", fmt.Errorf("head: %w", &s3types.NoSuchKey{}), true},
		{"access denied", apiErr("AccessDenied"), false},
		{"plain error", stderrs.New("boom"), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := isNotFound(c.err); got != c.want {
				t.Fatalf("isNotFound(%v) = %v, want %v", c.err, got, c.want)
			}
		})
	}
}
