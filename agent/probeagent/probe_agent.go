//
// Tencent is pleased to support the open source community by making trpc-agent-hub available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-hub is licensed under the Apache License Version 2.0.
//
//

// Package probeagent provides a scripted agent implementation.
//
// A probe runs with a fixed latency and a fixed outcome. It is the
// built-in agent kind used by manifest discovery, examples and smoke
// checks of the execution pipeline.
package probeagent

import (
	"context"
	"sync/atomic"
	"time"

	"trpc.group/trpc-go/trpc-agent-hub/agent"
)

// ProbeAgent is an agent with a scripted outcome.
type ProbeAgent struct {
	name        string
	role        string
	description string
	latency     time.Duration
	outcome     agent.ResultStatus
	runErr      error
	payload     any

	invocations atomic.Int64
	cancelled   atomic.Int64
}

// Options contains configuration options for creating a ProbeAgent.
type Options struct {
	// Name is the unique name of the agent.
	Name string
	// Role classifies the agent (e.g. "security").
	Role string
	// Description explains what the probe simulates.
	Description string
	// Latency is how long a run takes before reporting its outcome.
	Latency time.Duration
	// Outcome is the self-reported status of every run (default: success).
	Outcome agent.ResultStatus
	// RunErr, when set, is returned from every run instead of a result.
	RunErr error
	// Payload is attached to successful results.
	Payload any
}

// New creates a new ProbeAgent with the given options.
func New(opts Options) *ProbeAgent {
	outcome := opts.Outcome
	if outcome == "" {
		outcome = agent.ResultSuccess
	}

	return &ProbeAgent{
		name:        opts.Name,
		role:        opts.Role,
		description: opts.Description,
		latency:     opts.Latency,
		outcome:     outcome,
		runErr:      opts.RunErr,
		payload:     opts.Payload,
	}
}

// Info implements the agent.Agent interface.
func (p *ProbeAgent) Info() agent.Info {
	return agent.Info{
		Name:        p.name,
		Role:        p.role,
		Description: p.description,
	}
}

// Run implements the agent.Agent interface. It waits for the configured
// latency, honoring ctx cancellation, then reports the scripted outcome.
func (p *ProbeAgent) Run(ctx context.Context) (*agent.Result, error) {
	p.invocations.Add(1)

	if p.latency > 0 {
		select {
		case <-time.After(p.latency):
		case <-ctx.Done():
			p.cancelled.Add(1)
			return nil, ctx.Err()
		}
	}

	if p.runErr != nil {
		return nil, p.runErr
	}

	return &agent.Result{Status: p.outcome, Payload: p.payload}, nil
}

// Metrics implements the agent.Agent interface.
func (p *ProbeAgent) Metrics() map[string]int64 {
	return map[string]int64{
		"invocations": p.invocations.Load(),
		"cancelled":   p.cancelled.Load(),
	}
}
