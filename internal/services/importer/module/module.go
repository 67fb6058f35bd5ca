// Package module provides the importer module implementation
package module

import (
	"context"

	"brazebulk/internal/adapters/blob/s3blob"
	"brazebulk/internal/adapters/braze"
	"brazebulk/internal/adapters/continuation/lambdainvoke"
	"brazebulk/internal/modkit"
	"brazebulk/internal/services/importer/domain"
	"brazebulk/internal/services/importer/service"
)

// Ports defines the importer module ports
type Ports struct {
	Runner domain.RunnerPort
}

// Module implements the importer module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

var _ modkit.Module = (*Module)(nil)

// New constructs the importer module, wiring the S3 source, the Braze
// client, and (inside Lambda) the continuation trigger from deps.Cfg
func New(ctx context.Context, deps modkit.Deps) *Module {
	opts := FromConfig(deps.Cfg)

	src, err := s3blob.NewFromEnv(ctx, opts.S3Endpoint)
	if err != nil {
		deps.Log.Panic().Err(err).Msg("importer: s3 source init failed")
	}

	sender := braze.New(opts.BrazeURL, opts.BrazeAPIKey, opts.HTTPTimeout)

	var cont domain.Continuer
	if opts.ContinuationFn != "" {
		inv, err := lambdainvoke.NewFromEnv(ctx, opts.ContinuationFn)
		if err != nil {
			deps.Log.Panic().Err(err).Msg("importer: continuation invoker init failed")
		}
		cont = inv
	}

	svc := service.New(src, sender, cont, service.Config{
		Workers:     opts.Workers,
		BatchSize:   opts.BatchSize,
		ChunkBytes:  opts.ChunkBytes,
		TimeReserve: opts.TimeReserve,
		MaxAttempts: opts.MaxAttempts,
		RetryBase:   opts.RetryBase,
	})

	m := &Module{deps: deps}
	m.ports = Ports{Runner: svc}
	return m
}

// Name returns the module name
func (m *Module) Name() string { return "importer" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
