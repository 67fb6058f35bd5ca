// Package service provides the importer service implementation
package service

import (
	"context"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	perr "brazebulk/internal/platform/errors"
	"brazebulk/internal/platform/logger"
	"brazebulk/internal/services/importer/domain"
	"brazebulk/internal/services/importer/extract"
)

// Config holds configuration options for the importer service
type Config struct {
	Workers     int           // batches sent concurrently per round; <=0 -> 15
	BatchSize   int           // objects per API call; <=0 -> 75
	ChunkBytes  int           // ranged-read chunk size; <=0 -> 1 MiB
	TimeReserve time.Duration // margin kept before the invocation deadline; <=0 -> 3m
	MaxAttempts int           // attempts per batch; <=0 -> 5
	RetryBase   time.Duration // first backoff wait, doubled per attempt; <=0 -> 5s
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = 15
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 75
	}
	if c.ChunkBytes <= 0 {
		c.ChunkBytes = 1 << 20
	}
	if c.TimeReserve <= 0 {
		c.TimeReserve = 3 * time.Minute
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 5
	}
	if c.RetryBase <= 0 {
		c.RetryBase = 5 * time.Second
	}
	return c
}

// Service implements the importer: it streams the source blob from the
// resume offset, extracts whole objects, batches them into dispatch rounds,
// and yields to a continuation once the time budget is nearly spent.
//
// Delivery is at-least-once: the resume offset only advances after a whole
// round joins cleanly, so a fatal failure mid-round re-delivers that round's
// source bytes on the next invocation
type Service struct {
	Source domain.ByteSource
	Sender domain.Sender
	Cont   domain.Continuer // optional; nil when an outer loop drives resumption
	Cfg    Config

	// Remaining reports time left before the hard invocation deadline.
	// The default reads the ctx deadline and is effectively infinite when
	// the ctx carries none
	Remaining func(ctx context.Context) time.Duration
}

var validate = validator.New()

// New constructs the importer service
func New(src domain.ByteSource, snd domain.Sender, cont domain.Continuer, cfg Config) *Service {
	if src == nil {
		panic("importer.Service requires a non nil ByteSource")
	}
	if snd == nil {
		panic("importer.Service requires a non nil Sender")
	}
	return &Service{
		Source:    src,
		Sender:    snd,
		Cont:      cont,
		Cfg:       cfg.withDefaults(),
		Remaining: deadlineRemaining,
	}
}

// Run implements domain.RunnerPort
func (s *Service) Run(ctx context.Context, in domain.Input) (domain.Report, error) {
	if err := validate.Struct(in); err != nil {
		return domain.Report{}, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "invalid trigger input")
	}
	if in.RunID == "" {
		in.RunID = uuid.NewString()
	}
	ctx = logger.WithRun(ctx, in.RunID, in.Ref().String())
	log := logger.C(ctx)
	log.Info().Int64("byte_offset", in.ByteOffset).Msg("new object import invocation")

	length, err := s.Source.Length(ctx, in.Ref())
	if err != nil {
		return domain.Report{}, err
	}

	rc, err := s.Source.Open(ctx, in.Ref(), in.ByteOffset)
	if err != nil {
		return domain.Report{}, err
	}
	defer func() { _ = rc.Close() }()

	sc := extract.NewScanner(rc, s.Cfg.ChunkBytes)

	// confirmedOffset: advanced only after a whole round joins
	total := in.ByteOffset
	sent := 0
	stopped := false

	var batch domain.Batch
	round := make([]domain.Batch, 0, s.Cfg.Workers)

	for {
		obj, rerr := sc.Next()
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return domain.Report{ObjectsSent: sent, BytesRead: total},
				perr.Wrap(rerr, perr.ErrorCodeUnavailable, "source stream read failed")
		}

		batch = append(batch, obj)
		if len(batch) == s.Cfg.BatchSize {
			round = append(round, batch)
			batch = nil
		}
		if len(round) == s.Cfg.Workers {
			n, derr := s.dispatchRound(ctx, round)
			if derr != nil {
				return domain.Report{ObjectsSent: sent, BytesRead: total}, derr
			}
			sent += n
			total += sc.SafeBytes()
			round = round[:0]

			if s.remaining(ctx) < s.Cfg.TimeReserve {
				log.Info().Dur("remaining", s.remaining(ctx)).Msg("time budget nearly exhausted, stopping")
				stopped = true
				break
			}
		}
	}

	// The final partial round is small and already in memory: dispatch it
	// regardless of remaining time. A guard stop skips it; its bytes were
	// never confirmed and the continuation re-reads them
	if !stopped {
		if len(batch) > 0 {
			round = append(round, batch)
		}
		n, derr := s.dispatchRound(ctx, round)
		if derr != nil {
			return domain.Report{ObjectsSent: sent, BytesRead: total}, derr
		}
		sent += n
		total += sc.SafeBytes()
	}

	rep := domain.Report{
		ObjectsSent: sent,
		BytesRead:   total,
		IsFinished:  isFinished(sent, total, length),
	}

	log.Info().Str("bytes_read", formatBytes(total)).Msg("processed source bytes")
	log.Info().Int("objects", sent).Msg("imported objects")

	if rep.IsFinished {
		if sent == 0 && total < length {
			// a zero-object invocation reports finished even with bytes left
			log.Warn().Int64("bytes_read", total).Int64("length", length).
				Msg("finishing with unread bytes because no objects were processed")
		}
		log.Info().Msg("file imported successfully")
		return rep, nil
	}

	if s.Cont != nil {
		next := in
		next.ByteOffset = total
		if err := s.Cont.Continue(ctx, next); err != nil {
			return rep, err
		}
	}
	return rep, nil
}

// dispatchRound sends each batch of the round on its own worker and joins.
// The result is the sum of processed counts; the first batch failure aborts
// the round and, by propagation, the invocation. Counts already sent in a
// failed round are deliberately dropped: the offset has not advanced, so the
// next invocation re-reads and re-sends the round's bytes
func (s *Service) dispatchRound(ctx context.Context, round []domain.Batch) (int, error) {
	if len(round) == 0 {
		return 0, nil
	}

	counts := make([]int, len(round))
	errs := make([]error, len(round))
	var wg sync.WaitGroup
	for i, b := range round {
		wg.Add(1)
		go func(i int, b domain.Batch) {
			defer wg.Done()
			counts[i], errs[i] = s.sendWithRetry(ctx, b)
		}(i, b)
	}
	wg.Wait()

	sent := 0
	for i := range round {
		if errs[i] != nil {
			return 0, errs[i]
		}
		sent += counts[i]
	}
	if sent > 0 {
		logger.C(ctx).Info().Int("objects", sent).Msg("successfully sent objects to braze")
	}
	return sent, nil
}

// sendWithRetry retries a single batch on transient failures with
// exponential backoff; fatal failures and exhausted retries escalate
func (s *Service) sendWithRetry(ctx context.Context, b domain.Batch) (int, error) {
	var last error
	for attempt := 1; attempt <= s.Cfg.MaxAttempts; attempt++ {
		n, err := s.Sender.Send(ctx, b)
		if err == nil {
			return n, nil
		}
		last = err

		if !perr.Retryable(err) {
			return 0, err
		}
		if attempt == s.Cfg.MaxAttempts {
			break
		}

		wait := s.Cfg.RetryBase << (attempt - 1)
		logger.C(ctx).Warn().Err(err).
			Int("attempt", attempt).
			Int("max_attempts", s.Cfg.MaxAttempts).
			Dur("wait", wait).
			Msg("transient batch failure, retrying")
		if serr := sleepCtx(ctx, wait); serr != nil {
			return 0, serr
		}
	}
	return 0, last
}

func (s *Service) remaining(ctx context.Context) time.Duration {
	if s.Remaining != nil {
		return s.Remaining(ctx)
	}
	return deadlineRemaining(ctx)
}

// isFinished preserves the source semantics: a run with zero processed
// objects or a zero offset is treated as done even when bytes remain
func isFinished(sent int, total, length int64) bool {
	return sent == 0 || total == 0 || total >= length
}

func deadlineRemaining(ctx context.Context) time.Duration {
	if d, ok := ctx.Deadline(); ok {
		return time.Until(d)
	}
	return time.Duration(math.MaxInt64)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func formatBytes(n int64) string {
	switch {
	case n >= 1_000_000_000:
		return fmt.Sprintf("%.1f GB", float64(n)/1_000_000_000)
	case n >= 1_000_000:
		return fmt.Sprintf("%.1f MB", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1f KB", float64(n)/1_000)
	default:
		return fmt.Sprintf("%d B", n)
	}
}
