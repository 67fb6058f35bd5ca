package domain

import (
	"context"
	"io"
)

// RunnerPort is the public port exposed by the importer module
type RunnerPort interface {
	// Run performs one bounded invocation: read from the input offset, batch
	// and dispatch until the source is exhausted or the time budget runs out,
	// then schedule the continuation if work remains
	Run(ctx context.Context, in Input) (Report, error)
}

// ByteSource opens ranged reads of the source blob
type ByteSource interface {
	// Open returns a stream of the blob's bytes starting at offset
	Open(ctx context.Context, ref BlobRef, offset int64) (io.ReadCloser, error)

	// Length returns the blob's total byte length from its metadata
	Length(ctx context.Context, ref BlobRef) (int64, error)
}

// Sender performs one bulk track call for a batch.
// It partitions the batch into events and purchases, returns the number of
// objects the remote API reports as processed, and classifies failures with
// platform error codes so callers can retry transient ones
type Sender interface {
	Send(ctx context.Context, batch Batch) (int, error)
}

// Continuer asynchronously re-invokes the pipeline with an updated offset
type Continuer interface {
	Continue(ctx context.Context, in Input) error
}
