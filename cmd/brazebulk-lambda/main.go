package main

import (
	"context"
	"net/url"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"brazebulk/internal/modkit"
	"brazebulk/internal/platform/config"
	perr "brazebulk/internal/platform/errors"
	"brazebulk/internal/platform/logger"
	"brazebulk/internal/services/importer/domain"
	importermod "brazebulk/internal/services/importer/module"
)

// trigger is the invocation payload: an S3 put notification on the first
// invocation of a file, or a continuation payload carrying bucket and key
// directly plus the resume offset
type trigger struct {
	Records    []events.S3EventRecord `json:"Records,omitempty"`
	Bucket     string                 `json:"bucket,omitempty"`
	Key        string                 `json:"key,omitempty"`
	ByteOffset int64                  `json:"byte_offset,omitempty"`
	RunID      string                 `json:"run_id,omitempty"`
}

func (t trigger) input() (domain.Input, error) {
	in := domain.Input{
		Bucket:     t.Bucket,
		Key:        t.Key,
		ByteOffset: t.ByteOffset,
		RunID:      t.RunID,
	}
	if len(t.Records) > 0 {
		in.Bucket = t.Records[0].S3.Bucket.Name
		// notification keys arrive URL-encoded with + for spaces
		key, err := url.QueryUnescape(t.Records[0].S3.Object.Key)
		if err != nil {
			return in, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "decode object key")
		}
		in.Key = key
	}
	return in, nil
}

func main() {
	l := logger.Get()

	deps := modkit.Deps{
		Cfg: config.New(),
		Log: *l,
	}

	m := importermod.New(context.Background(), deps)
	runner := m.Ports().(importermod.Ports).Runner

	lambda.Start(func(ctx context.Context, t trigger) (domain.Report, error) {
		in, err := t.input()
		if err != nil {
			return domain.Report{}, err
		}
		return runner.Run(ctx, in)
	})
}
