//
// Tencent is pleased to support the open source community by making trpc-agent-hub available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-hub is licensed under the Apache License Version 2.0.
//
//

package orchestrator

import (
	"context"
	"time"

	"trpc.group/trpc-go/trpc-agent-hub/executor"
	"trpc.group/trpc-go/trpc-agent-hub/log"
)

// BatchRunState is the observable lifecycle of a detached batch.
type BatchRunState string

// Detached batch states.
const (
	BatchRunning   BatchRunState = "running"
	BatchCompleted BatchRunState = "completed"
	BatchFailed    BatchRunState = "failed"
)

// BatchState tracks one detached batch. Polling it and subscribing to
// the hub are the only ways to observe a detached batch; there is no
// cancellation API, and an abandoned batch still runs to completion and
// updates agent statistics.
type BatchState struct {
	ID        string            `json:"batchId"`
	Names     []string          `json:"names"`
	Policy    executor.Policy   `json:"policy"`
	State     BatchRunState     `json:"state"`
	StartedAt time.Time         `json:"startedAt"`
	Summary   *executor.Summary `json:"summary,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// Receipt is the immediate response to a detached batch request.
type Receipt struct {
	BatchID string `json:"batchId"`

	// Status is always "started"; final outcomes are only observable
	// via polling or the event stream.
	Status string `json:"status"`

	UnitCount int `json:"unitCount"`

	// EstimatedDuration is a coarse upper bound in seconds, derived from
	// the batch timeout and policy.
	EstimatedDuration float64 `json:"estimatedDuration"`
}

// StartBatch launches a batch in the background and returns a receipt
// immediately. The batch runs detached from the caller's context: the
// caller always gets a batch id synchronously, and a request that would
// resolve zero agents is the only way to fail here.
func (o *Orchestrator) StartBatch(names []string, policy executor.Policy, timeout time.Duration) (*Receipt, error) {
	if len(names) == 0 {
		names = o.activeNames()
	}
	resolvable := o.registeredNames(names)
	if len(resolvable) == 0 {
		return nil, executor.ErrNoAgentsAvailable
	}

	batch := executor.NewBatch(names, policy, timeout)

	state := &BatchState{
		ID:        batch.ID,
		Names:     resolvable,
		Policy:    policy,
		State:     BatchRunning,
		StartedAt: time.Now().UTC(),
	}
	o.mu.Lock()
	o.batches[batch.ID] = state
	o.mu.Unlock()

	go func() {
		// Detached on purpose; the engine outlives the request context.
		summary, err := o.engine.Run(context.Background(), batch)

		o.mu.Lock()
		defer o.mu.Unlock()
		o.batchesRun++
		if err != nil {
			state.State = BatchFailed
			state.Error = err.Error()
			log.Errorf("orchestrator: detached batch %s failed: %v", batch.ID, err)
			return
		}
		state.State = BatchCompleted
		state.Summary = summary
	}()

	estimated := batch.Timeout.Seconds()
	if policy == executor.PolicySequential {
		estimated *= float64(len(resolvable))
	}

	return &Receipt{
		BatchID:           batch.ID,
		Status:            "started",
		UnitCount:         len(resolvable),
		EstimatedDuration: estimated,
	}, nil
}

// BatchStatus returns a copy of the state of a detached batch.
func (o *Orchestrator) BatchStatus(id string) (BatchState, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	state, ok := o.batches[id]
	if !ok {
		return BatchState{}, false
	}
	return *state, true
}
