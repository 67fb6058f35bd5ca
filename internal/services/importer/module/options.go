package module

import (
	"time"

	"brazebulk/internal/platform/config"
)

// Options holds configuration options for the importer service
type Options struct {
	BrazeURL    string
	BrazeAPIKey string
	HTTPTimeout time.Duration

	Workers     int
	BatchSize   int
	ChunkBytes  int
	TimeReserve time.Duration
	MaxAttempts int
	RetryBase   time.Duration

	S3Endpoint string
	// ContinuationFn is the Lambda function to self-invoke for resumption;
	// empty disables the continuation trigger (an outer loop drives instead)
	ContinuationFn string
}

// FromConfig reads the importer options from config.
// BRAZE_API_URL and BRAZE_API_KEY are required; startup fails hard without them.
// THREADS is honored as a legacy alias for CORE_IMPORT_WORKERS
func FromConfig(cfg config.Conf) Options {
	braze := cfg.Prefix("BRAZE_")
	imp := cfg.Prefix("CORE_IMPORT_")

	workers := imp.MayInt("WORKERS", cfg.MayInt("THREADS", 15))

	return Options{
		BrazeURL:    braze.MustString("API_URL"),
		BrazeAPIKey: braze.MustString("API_KEY"),
		HTTPTimeout: braze.MayDuration("HTTP_TIMEOUT", 0),

		Workers:     workers,
		BatchSize:   imp.MayInt("BATCH_SIZE", 75),
		ChunkBytes:  imp.MayInt("CHUNK_BYTES", 1<<20),
		TimeReserve: imp.MayDuration("TIME_RESERVE", 3*time.Minute),
		MaxAttempts: imp.MayInt("RETRIES", 5),
		RetryBase:   imp.MayDuration("RETRY_BASE", 5*time.Second),

		S3Endpoint: cfg.MayString("S3_ENDPOINT", ""),
		// set automatically by the Lambda runtime; empty outside Lambda
		ContinuationFn: cfg.MayString("AWS_LAMBDA_FUNCTION_NAME", ""),
	}
}
