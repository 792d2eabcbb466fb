//
// Tencent is pleased to support the open source community by making trpc-agent-hub available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-hub is licensed under the Apache License Version 2.0.
//
//

package agent

import (
	"sync"
	"time"
)

// Stats tracks rolling execution statistics for one agent. Mutation is
// serialized internally so concurrent batches touching the same agent
// never lose increments.
type Stats struct {
	mu             sync.Mutex
	totalRuns      int64
	successfulRuns int64
	lastRunAt      time.Time
}

// StatsSnapshot is a point-in-time copy of an agent's statistics.
type StatsSnapshot struct {
	TotalRuns      int64     `json:"totalRuns"`
	SuccessfulRuns int64     `json:"successfulRuns"`
	SuccessRate    float64   `json:"successRate"`
	LastRunAt      time.Time `json:"lastRunAt"`
}

// NewStats creates an empty statistics tracker.
func NewStats() *Stats {
	return &Stats{}
}

// RecordRun applies the outcome of one run.
func (s *Stats) RecordRun(success bool, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.totalRuns++
	if success {
		s.successfulRuns++
	}
	s.lastRunAt = at
}

// Snapshot returns a consistent copy of the current statistics. The
// success rate is 0 when no runs have been recorded.
func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := StatsSnapshot{
		TotalRuns:      s.totalRuns,
		SuccessfulRuns: s.successfulRuns,
		LastRunAt:      s.lastRunAt,
	}
	if s.totalRuns > 0 {
		snap.SuccessRate = float64(s.successfulRuns) / float64(s.totalRuns)
	}
	return snap
}
