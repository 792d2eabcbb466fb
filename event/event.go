//
// Tencent is pleased to support the open source community by making trpc-agent-hub available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-hub is licensed under the Apache License Version 2.0.
//
//

// Package event provides the lifecycle event system for execution observers.
package event

import (
	"time"

	"github.com/google/uuid"
)

// Type discriminates lifecycle events on the wire.
type Type string

// Lifecycle event types published during batch execution and on catalog
// changes.
const (
	TypeExecutionStarted   Type = "execution_started"
	TypeAgentCompleted     Type = "agent_completed"
	TypeExecutionCompleted Type = "execution_completed"
	TypeExecutionFailed    Type = "execution_failed"
	TypeAgentCreated       Type = "agent_created"
	TypeAgentUpdated       Type = "agent_updated"
	TypeAgentDeleted       Type = "agent_deleted"
)

// Event is the unit of communication between the execution engine and
// external observers. After emission it must be treated as immutable.
type Event struct {
	// ID is the unique identifier of the event.
	ID string `json:"id"`

	// Type is the event type discriminator.
	Type Type `json:"type"`

	// Timestamp is the UTC emission time of the event.
	Timestamp time.Time `json:"timestamp"`

	// Data carries the type-specific payload.
	Data map[string]any `json:"data"`
}

// New creates an Event with a generated ID and timestamp.
func New(t Type, data map[string]any) *Event {
	return &Event{
		ID:        uuid.New().String(),
		Type:      t,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// NewExecutionStarted announces that a batch began executing.
func NewExecutionStarted(batchID string, unitCount int, policy string) *Event {
	return New(TypeExecutionStarted, map[string]any{
		"batchId":   batchID,
		"unitCount": unitCount,
		"policy":    policy,
	})
}

// NewAgentCompleted reports the outcome of a single agent run within a batch.
func NewAgentCompleted(batchID, agentName, status string, durationMs int64) *Event {
	return New(TypeAgentCompleted, map[string]any{
		"batchId":    batchID,
		"unitName":   agentName,
		"status":     status,
		"durationMs": durationMs,
	})
}

// NewExecutionCompleted reports the aggregate result of a finished batch.
func NewExecutionCompleted(batchID string, total, succeeded, failed int, successRate float64) *Event {
	return New(TypeExecutionCompleted, map[string]any{
		"batchId":     batchID,
		"total":       total,
		"succeeded":   succeeded,
		"failed":      failed,
		"successRate": successRate,
	})
}

// NewExecutionFailed reports that a batch aborted due to an engine fault.
// Individual agent failures never produce this event.
func NewExecutionFailed(batchID string, err error) *Event {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return New(TypeExecutionFailed, map[string]any{
		"batchId": batchID,
		"error":   msg,
	})
}

// NewCatalogChanged reports a catalog mutation made outside of execution.
// The type must be one of TypeAgentCreated, TypeAgentUpdated or
// TypeAgentDeleted.
func NewCatalogChanged(t Type, name, role, description string) *Event {
	return New(t, map[string]any{
		"name":        name,
		"role":        role,
		"description": description,
	})
}
