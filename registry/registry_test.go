//
// Tencent is pleased to support the open source community by making trpc-agent-hub available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-hub is licensed under the Apache License Version 2.0.
//
//

package registry

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-agent-hub/agent"
)

// stubAgent is a minimal agent.Agent implementation for registry tests.
type stubAgent struct {
	name string
	role string
}

func (s *stubAgent) Info() agent.Info {
	return agent.Info{Name: s.name, Role: s.role, Description: "stub"}
}

func (s *stubAgent) Run(ctx context.Context) (*agent.Result, error) {
	return &agent.Result{Status: agent.ResultSuccess}, nil
}

func (s *stubAgent) Metrics() map[string]int64 {
	return map[string]int64{}
}

func TestRegisterAndGet(t *testing.T) {
	r := New()

	entry, replaced := r.Register(&stubAgent{name: "alpha"})
	require.NotNil(t, entry)
	assert.False(t, replaced)
	assert.Equal(t, agent.StatusActive, entry.Status())

	got, ok := r.Get("alpha")
	require.True(t, ok)
	assert.Same(t, entry, got)
	assert.Equal(t, 1, r.Len())
}

func TestRegistrationOrderPreserved(t *testing.T) {
	r := New()
	names := []string{"gamma", "alpha", "beta"}
	for _, n := range names {
		r.Register(&stubAgent{name: n})
	}

	assert.Equal(t, names, r.Names())

	entries := r.List()
	require.Len(t, entries, 3)
	for i, n := range names {
		assert.Equal(t, n, entries[i].Info().Name)
	}
}

func TestDuplicateRegistrationLastWriterWins(t *testing.T) {
	r := New()

	first := &stubAgent{name: "dup", role: "old"}
	second := &stubAgent{name: "dup", role: "new"}

	r.Register(first)
	_, replaced := r.Register(second)
	assert.True(t, replaced)

	entry, ok := r.Get("dup")
	require.True(t, ok)
	assert.Equal(t, "new", entry.Info().Role)
	assert.Equal(t, 1, r.Len())
}

func TestDeregister(t *testing.T) {
	r := New()
	r.Register(&stubAgent{name: "gone"})

	assert.True(t, r.Deregister("gone"))
	assert.False(t, r.Deregister("gone"))
	assert.Equal(t, 0, r.Len())
}

func TestEntryStatusTransitions(t *testing.T) {
	r := New()
	entry, _ := r.Register(&stubAgent{name: "toggle"})

	entry.SetStatus(agent.StatusInactive)
	assert.Equal(t, agent.StatusInactive, entry.Status())
}

func TestConcurrentReadsDuringRegistration(t *testing.T) {
	r := New()

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			r.Register(&stubAgent{name: fmt.Sprintf("agent-%d", i)})
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_ = r.Names()
			_ = r.List()
			_ = r.Len()
		}
	}()

	wg.Wait()
	assert.Equal(t, 200, r.Len())
}
