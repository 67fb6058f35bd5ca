// Package s3blob reads the source blob from S3 with byte-range requests
package s3blob

import (
	"context"
	stderrs "errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	perr "brazebulk/internal/platform/errors"
	"brazebulk/internal/platform/logger"
	"brazebulk/internal/services/importer/domain"
)

const (
	openRetries  = 3
	retryBackoff = 500 * time.Millisecond
)

// Source implements domain.ByteSource over an S3 client
type Source struct {
	client *s3.Client
}

// New wraps an existing S3 client
func New(client *s3.Client) *Source { return &Source{client: client} }

// NewFromEnv builds a Source from the ambient AWS configuration. endpoint
// overrides the S3 endpoint when non-empty (localstack, MinIO)
func NewFromEnv(ctx context.Context, endpoint string) (*Source, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnknown, "load aws config")
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true // required for localstack/MinIO
		}
	})
	return New(client), nil
}

// Open returns a streaming ranged read of the blob starting at offset.
// Transient S3 faults are retried a few times before the error escalates;
// a missing object is reported as not found without retry
func (s *Source) Open(ctx context.Context, ref domain.BlobRef, offset int64) (io.ReadCloser, error) {
	rangeStr := fmt.Sprintf("bytes=%d-", offset)

	var out *s3.GetObjectOutput
	var lastErr error

	for attempt := 0; attempt <= openRetries; attempt++ {
		if attempt > 0 {
			logger.C(ctx).Debug().
				Int("attempt", attempt).
				Str("range", rangeStr).
				Msg("s3blob: retrying ranged read")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryBackoff << (attempt - 1)):
			}
		}

		out, lastErr = s.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(ref.Bucket),
			Key:    aws.String(ref.Key),
			Range:  aws.String(rangeStr),
		})
		if lastErr == nil {
			return out.Body, nil
		}

		if isNotFound(lastErr) {
			return nil, perr.Wrapf(lastErr, perr.ErrorCodeNotFound, "object %s not found", ref)
		}
		if !isTransient(lastErr) {
			break
		}
	}
	return nil, perr.Wrapf(lastErr, perr.ErrorCodeUnavailable, "ranged read of %s failed", ref)
}

// Length returns the blob's total byte length via HeadObject
func (s *Source) Length(ctx context.Context, ref domain.BlobRef) (int64, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(ref.Bucket),
		Key:    aws.String(ref.Key),
	})
	if err != nil {
		if isNotFound(err) {
			return 0, perr.Wrapf(err, perr.ErrorCodeNotFound, "object %s not found", ref)
		}
		return 0, perr.Wrapf(err, perr.ErrorCodeUnavailable, "head of %s failed", ref)
	}
	if out.ContentLength == nil {
		return 0, perr.Internalf("content length not available for %s", ref)
	}
	return *out.ContentLength, nil
}

// isTransient reports whether an S3 error is worth retrying
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if stderrs.As(err, &netErr) {
		return true
	}

	var apiErr smithy.APIError
	if stderrs.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "Throttling", "ThrottlingException", "RequestThrottled", "SlowDown":
			return true
		case "InternalError", "ServiceUnavailable":
			return true
		}
	}
	return false
}

// isNotFound reports whether the error indicates a missing object or bucket
func isNotFound(err error) bool {
	var noSuchKey *s3types.NoSuchKey
	var notFound *s3types.NotFound
	var noBucket *s3types.NoSuchBucket
	if stderrs.As(err, &noSuchKey) || stderrs.As(err, &notFound) || stderrs.As(err, &noBucket) {
		return true
	}

	var apiErr smithy.APIError
	if stderrs.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NoSuchKey" || code == "NoSuchBucket" || code == "NotFound"
	}
	return false
}
