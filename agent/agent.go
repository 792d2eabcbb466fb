//
// Tencent is pleased to support the open source community by making trpc-agent-hub available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-hub is licensed under the Apache License Version 2.0.
//
//

// Package agent defines the contract every executable agent must satisfy.
package agent

import "context"

// Info contains the identifying details of an agent.
type Info struct {
	// Name is the stable unique identifier of the agent.
	Name string `json:"name"`

	// Role is a free-text classification used for display and grouping.
	Role string `json:"role"`

	// Description explains what the agent does.
	Description string `json:"description"`
}

// LifecycleStatus is the catalog lifecycle state of an agent.
type LifecycleStatus string

// Lifecycle states. Only active agents are picked up by default batch runs.
const (
	StatusInactive LifecycleStatus = "inactive"
	StatusActive   LifecycleStatus = "active"
)

// ResultStatus classifies the self-reported outcome of a completed run.
type ResultStatus string

// Self-reported run statuses. A run that returns an error (or panics) is
// classified by the engine independently of these.
const (
	ResultSuccess ResultStatus = "success"
	ResultFailed  ResultStatus = "failed"
)

// Result is the value produced by a completed agent run.
type Result struct {
	// Status is the agent's own classification of the run.
	Status ResultStatus `json:"status"`

	// Payload carries the agent-specific output. The engine treats it as
	// opaque data and only forwards it in outcomes.
	Payload any `json:"payload,omitempty"`
}

// Agent is the interface all executable agents implement. Implementations
// must be safe for concurrent Run calls: the same agent may appear in
// several batches at once.
//
// Run should honor ctx cancellation where possible. The engine bounds how
// long it waits on a run, but it cannot forcibly stop an implementation
// that ignores ctx.
type Agent interface {
	// Info returns the identifying details of the agent.
	Info() Info

	// Run executes the agent's capability once and reports the result.
	Run(ctx context.Context) (*Result, error)

	// Metrics returns agent-internal counters for external reporting.
	Metrics() map[string]int64
}
