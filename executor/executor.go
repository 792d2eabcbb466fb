//
// Tencent is pleased to support the open source community by making trpc-agent-hub available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-hub is licensed under the Apache License Version 2.0.
//
//

// Package executor runs batches of agents and tracks their outcomes.
package executor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"trpc.group/trpc-go/trpc-agent-hub/agent"
	"trpc.group/trpc-go/trpc-agent-hub/event"
	"trpc.group/trpc-go/trpc-agent-hub/hub"
	"trpc.group/trpc-go/trpc-agent-hub/log"
	"trpc.group/trpc-go/trpc-agent-hub/registry"
	tmetric "trpc.group/trpc-go/trpc-agent-hub/telemetry/metric"
)

// defaultRunTimeout bounds a single run when the batch does not specify
// a timeout.
const defaultRunTimeout = 60 * time.Second

// Engine executes batches of agents against the catalog, captures
// per-run outcomes, updates per-agent statistics and publishes lifecycle
// events through the hub.
type Engine struct {
	registry *registry.Registry
	hub      *hub.Hub

	maxConcurrency int

	batchCounter metric.Int64Counter
	runCounter   metric.Int64Counter
	runDuration  metric.Float64Histogram
}

// Option is a function that configures the Engine.
type Option func(*Engine)

// WithMaxConcurrency bounds how many runs a parallel batch executes at
// once. By default the pool is sized to the batch, so every run starts
// immediately.
func WithMaxConcurrency(n int) Option {
	return func(e *Engine) {
		e.maxConcurrency = n
	}
}

// New creates an Engine operating on the given catalog and hub.
func New(reg *registry.Registry, h *hub.Hub, opts ...Option) *Engine {
	e := &Engine{
		registry: reg,
		hub:      h,
	}
	for _, opt := range opts {
		opt(e)
	}

	var err error
	if e.batchCounter, err = tmetric.Meter.Int64Counter("execution.batches",
		metric.WithDescription("Number of executed batches")); err != nil {
		log.Warnf("executor: batch counter unavailable: %v", err)
	}
	if e.runCounter, err = tmetric.Meter.Int64Counter("execution.runs",
		metric.WithDescription("Number of agent runs by outcome status")); err != nil {
		log.Warnf("executor: run counter unavailable: %v", err)
	}
	if e.runDuration, err = tmetric.Meter.Float64Histogram("execution.run.duration",
		metric.WithDescription("Agent run duration"), metric.WithUnit("s")); err != nil {
		log.Warnf("executor: run duration histogram unavailable: %v", err)
	}

	return e
}

// NewBatch creates a batch over the requested names. The names are
// resolved against the catalog when the batch runs.
func NewBatch(names []string, policy Policy, timeout time.Duration) *Batch {
	if timeout <= 0 {
		timeout = defaultRunTimeout
	}
	return &Batch{
		ID:        uuid.New().String(),
		Names:     names,
		Policy:    policy,
		Timeout:   timeout,
		CreatedAt: time.Now().UTC(),
	}
}

// RunBatch creates a batch over names and runs it to completion. See Run.
func (e *Engine) RunBatch(ctx context.Context, names []string, policy Policy, timeout time.Duration) (*Summary, error) {
	return e.Run(ctx, NewBatch(names, policy, timeout))
}

// Run resolves the batch names against the current catalog snapshot and
// runs every resolved agent under the batch policy. Names missing from
// the catalog are logged and skipped; a batch that resolves zero agents
// is rejected with ErrNoAgentsAvailable before any event is emitted.
//
// Agent-level failures are captured as outcomes and never fail the
// batch. Only a fault in the engine's own bookkeeping aborts the batch,
// in which case an execution_failed event is published, partial outcomes
// are discarded and ErrBatchFatal is returned. Per-agent statistics
// applied before such an abort are not rolled back.
func (e *Engine) Run(ctx context.Context, batch *Batch) (*Summary, error) {
	entries := e.resolve(batch.Names)
	if len(entries) == 0 {
		return nil, ErrNoAgentsAvailable
	}

	resolved := make([]string, len(entries))
	for i, entry := range entries {
		resolved[i] = entry.Info().Name
	}
	batch.Names = resolved

	policy := batch.Policy
	log.Infof("executor: batch %s starting, %d agents, policy %s", batch.ID, len(entries), policy)
	e.hub.Publish(event.NewExecutionStarted(batch.ID, len(entries), string(policy)))

	summary, err := e.execute(ctx, batch, entries)
	if err != nil {
		log.Errorf("executor: batch %s aborted: %v", batch.ID, err)
		e.hub.Publish(event.NewExecutionFailed(batch.ID, err))
		e.countBatch(ctx, policy, false)
		return nil, fmt.Errorf("%w: %v", ErrBatchFatal, err)
	}

	e.hub.Publish(event.NewExecutionCompleted(
		batch.ID, summary.Total, summary.Succeeded, summary.Failed, summary.SuccessRate))
	e.countBatch(ctx, policy, true)
	log.Infof("executor: batch %s completed, %d/%d succeeded", batch.ID, summary.Succeeded, summary.Total)
	return summary, nil
}

// resolve maps names onto a snapshot of catalog entries, skipping names
// that are not registered.
func (e *Engine) resolve(names []string) []*registry.Entry {
	entries := make([]*registry.Entry, 0, len(names))
	for _, name := range names {
		entry, ok := e.registry.Get(name)
		if !ok {
			log.Warnf("executor: agent %q not in catalog, skipping", name)
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

// execute runs the batch under its policy and applies statistics. Panics
// in the engine's bookkeeping surface as errors; panics inside an
// agent's Run are handled per run and become "error" outcomes.
func (e *Engine) execute(ctx context.Context, batch *Batch, entries []*registry.Entry) (summary *Summary, err error) {
	defer func() {
		if r := recover(); r != nil {
			summary = nil
			err = fmt.Errorf("engine panic: %v", r)
		}
	}()

	var outcomes []Outcome
	switch batch.Policy {
	case PolicySequential:
		outcomes = e.runSequential(ctx, batch, entries)
	case PolicyParallel:
		outcomes, err = e.runParallel(ctx, batch, entries)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported execution policy %q", batch.Policy)
	}

	// Outcomes are collected first, then statistics are applied. The
	// per-agent tracker serializes increments, so concurrent batches
	// touching the same agent never lose updates.
	for i, o := range outcomes {
		entries[i].Stats().RecordRun(o.Status == StatusSuccess, o.EndedAt)
	}

	return newSummary(batch.ID, outcomes), nil
}

// runSequential executes the batch one agent at a time in resolved
// order, continuing past individual failures.
func (e *Engine) runSequential(ctx context.Context, batch *Batch, entries []*registry.Entry) []Outcome {
	outcomes := make([]Outcome, len(entries))
	for i, entry := range entries {
		outcomes[i] = e.runOne(ctx, batch, entry)
	}
	return outcomes
}

// runParallel fans the batch out on a goroutine pool and waits for every
// run to finish; there is no short-circuit on first failure.
func (e *Engine) runParallel(ctx context.Context, batch *Batch, entries []*registry.Entry) ([]Outcome, error) {
	size := e.maxConcurrency
	if size <= 0 {
		size = len(entries)
	}

	pool, err := ants.NewPool(size)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	outcomes := make([]Outcome, len(entries))
	var wg sync.WaitGroup
	for i, entry := range entries {
		wg.Add(1)
		idx, target := i, entry
		if err := pool.Submit(func() {
			defer wg.Done()
			outcomes[idx] = e.runOne(ctx, batch, target)
		}); err != nil {
			wg.Done()
			return nil, fmt.Errorf("submit run for %q: %w", target.Info().Name, err)
		}
	}
	wg.Wait()

	return outcomes, nil
}

type runResult struct {
	res *agent.Result
	err error
}

// runOne invokes a single agent, bounded by the batch timeout. A run
// that exceeds the timeout is recorded as an "error" outcome; the run
// context is cancelled so cooperative agents stop, but the engine only
// detaches from agents that ignore cancellation — it cannot stop them.
func (e *Engine) runOne(ctx context.Context, batch *Batch, entry *registry.Entry) Outcome {
	a := entry.Agent()
	name := a.Info().Name
	started := time.Now().UTC()

	runCtx, cancel := context.WithTimeout(ctx, batch.Timeout)
	defer cancel()

	done := make(chan runResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- runResult{err: fmt.Errorf("agent panic: %v", r)}
			}
		}()
		res, err := a.Run(runCtx)
		done <- runResult{res: res, err: err}
	}()

	out := Outcome{Name: name, StartedAt: started}
	select {
	case r := <-done:
		switch {
		case r.err != nil:
			out.Status = StatusError
			out.Error = r.err.Error()
		case r.res == nil:
			out.Status = StatusError
			out.Error = "agent returned no result"
		case r.res.Status == agent.ResultSuccess:
			out.Status = StatusSuccess
			out.Payload = r.res.Payload
		default:
			out.Status = StatusFailed
			out.Payload = r.res.Payload
		}
	case <-runCtx.Done():
		out.Status = StatusError
		out.Error = fmt.Sprintf("run exceeded timeout of %s", batch.Timeout)
	}

	out.EndedAt = time.Now().UTC()
	out.Duration = out.EndedAt.Sub(out.StartedAt)

	log.Debugf("executor: batch %s agent %s finished with status %s in %s",
		batch.ID, name, out.Status, out.Duration)
	e.hub.Publish(event.NewAgentCompleted(batch.ID, name, string(out.Status), out.Duration.Milliseconds()))
	e.countRun(ctx, out)

	return out
}

func (e *Engine) countBatch(ctx context.Context, policy Policy, ok bool) {
	if e.batchCounter == nil {
		return
	}
	e.batchCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("policy", string(policy)),
		attribute.Bool("completed", ok),
	))
}

func (e *Engine) countRun(ctx context.Context, out Outcome) {
	attrs := metric.WithAttributes(attribute.String("status", string(out.Status)))
	if e.runCounter != nil {
		e.runCounter.Add(ctx, 1, attrs)
	}
	if e.runDuration != nil {
		e.runDuration.Record(ctx, out.Duration.Seconds(), attrs)
	}
}
