//
// Tencent is pleased to support the open source community by making trpc-agent-hub available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-hub is licensed under the Apache License Version 2.0.
//
//

package executor

import "time"

// Policy selects how a batch schedules its agent runs.
type Policy string

// Supported execution policies.
const (
	// PolicyParallel launches all runs concurrently and waits for every
	// one of them, regardless of individual failures.
	PolicyParallel Policy = "parallel"

	// PolicySequential runs agents one at a time in resolved order,
	// continuing past individual failures.
	PolicySequential Policy = "sequential"
)

// Batch is one invocation of the engine over a resolved set of agents.
// The set is resolved once at batch start; later catalog changes do not
// affect an in-flight batch.
type Batch struct {
	// ID is the unique batch identifier.
	ID string `json:"batchId"`

	// Names is the ordered list of resolved agent names.
	Names []string `json:"names"`

	// Policy is the scheduling policy for this batch.
	Policy Policy `json:"policy"`

	// Timeout bounds how long the engine waits on any single run.
	Timeout time.Duration `json:"timeout"`

	// CreatedAt is the batch creation timestamp.
	CreatedAt time.Time `json:"createdAt"`
}

// OutcomeStatus classifies the result of one agent run within a batch.
type OutcomeStatus string

// Outcome statuses. "success" and "failed" reflect the agent's own
// report; "error" marks a run that returned an error, panicked or
// exceeded the batch timeout.
const (
	StatusSuccess OutcomeStatus = "success"
	StatusFailed  OutcomeStatus = "failed"
	StatusError   OutcomeStatus = "error"
)

// Outcome is the per-agent result record of one run. It doubles as the
// execution record handed to external log stores.
type Outcome struct {
	// Name is the agent that produced this outcome.
	Name string `json:"unitName"`

	// Status classifies the run.
	Status OutcomeStatus `json:"status"`

	// StartedAt and EndedAt bound the run.
	StartedAt time.Time `json:"startedAt"`
	EndedAt   time.Time `json:"endedAt"`

	// Duration is EndedAt minus StartedAt.
	Duration time.Duration `json:"duration"`

	// Payload is the agent's result payload, if any.
	Payload any `json:"payload,omitempty"`

	// Error holds the failure detail for "error" outcomes.
	Error string `json:"error,omitempty"`
}

// Summary is the aggregate result of a completed batch. Failed counts
// every non-success outcome, so Succeeded+Failed always equals Total.
type Summary struct {
	// BatchID identifies the batch this summary belongs to.
	BatchID string `json:"batchId"`

	// Total is the number of resolved agents in the batch.
	Total int `json:"total"`

	// Succeeded is the number of "success" outcomes.
	Succeeded int `json:"succeeded"`

	// Failed is the number of "failed" and "error" outcomes.
	Failed int `json:"failed"`

	// SuccessRate is Succeeded/Total, 0 for an empty summary.
	SuccessRate float64 `json:"successRate"`

	// Outcomes lists the per-agent results. For sequential batches the
	// order matches resolved-name order; for parallel batches the order
	// carries no meaning.
	Outcomes []Outcome `json:"outcomes"`
}

// newSummary aggregates the collected outcomes of one batch.
func newSummary(batchID string, outcomes []Outcome) *Summary {
	s := &Summary{
		BatchID:  batchID,
		Total:    len(outcomes),
		Outcomes: outcomes,
	}
	for _, o := range outcomes {
		if o.Status == StatusSuccess {
			s.Succeeded++
		}
	}
	s.Failed = s.Total - s.Succeeded
	if s.Total > 0 {
		s.SuccessRate = float64(s.Succeeded) / float64(s.Total)
	}
	return s
}

// EmptySummary is the summary of a batch that resolved zero agents
// without being executed (e.g. a suite group with no registered agents).
func EmptySummary(batchID string) *Summary {
	return &Summary{BatchID: batchID, Outcomes: []Outcome{}}
}
