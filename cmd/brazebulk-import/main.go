package main

import (
	"context"
	"flag"
	"time"

	"github.com/google/uuid"

	"brazebulk/internal/modkit"
	"brazebulk/internal/platform/config"
	"brazebulk/internal/platform/logger"
	"brazebulk/internal/services/importer/domain"
	importermod "brazebulk/internal/services/importer/module"
)

// Operator CLI: runs the same pipeline as the Lambda entrypoint, but drives
// resumption with an in-process loop instead of async self-invocation
func main() {
	l := logger.Get()

	var (
		fBucket = flag.String("bucket", "", "source S3 bucket")
		fKey    = flag.String("key", "", "source object key")
		fOffset = flag.Int64("offset", 0, "byte offset to resume from")
		fBudget = flag.Duration("budget", 0, "wall-clock budget per pass (0 = unbounded)")
		fOnce   = flag.Bool("once", false, "run a single pass instead of looping to completion")
	)
	flag.Parse()

	if *fBucket == "" || *fKey == "" {
		l.Panic().Msg("must provide -bucket and -key")
	}

	deps := modkit.Deps{
		Cfg: config.New(),
		Log: *l,
	}

	m := importermod.New(context.Background(), deps)
	runner := m.Ports().(importermod.Ports).Runner

	in := domain.Input{
		Bucket:     *fBucket,
		Key:        *fKey,
		ByteOffset: *fOffset,
		RunID:      uuid.NewString(),
	}

	for {
		rep, err := runPass(runner, *fBudget, in)
		if err != nil {
			l.Fatal().Err(err).Int64("byte_offset", in.ByteOffset).Msg("import pass failed")
		}
		if rep.IsFinished || *fOnce {
			l.Info().
				Int("objects_sent", rep.ObjectsSent).
				Int64("bytes_read", rep.BytesRead).
				Bool("is_finished", rep.IsFinished).
				Msg("import pass complete")
			return
		}
		in.ByteOffset = rep.BytesRead
	}
}

// runPass runs one import pass under an optional wall-clock budget, mirroring
// the bounded invocation the pipeline sees in Lambda
func runPass(runner domain.RunnerPort, budget time.Duration, in domain.Input) (domain.Report, error) {
	ctx := context.Background()
	if budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, budget)
		defer cancel()
	}
	return runner.Run(ctx, in)
}
