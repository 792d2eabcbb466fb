//
// Tencent is pleased to support the open source community by making trpc-agent-hub available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-hub is licensed under the Apache License Version 2.0.
//
//

// Package registry manages the catalog of executable agents.
package registry

import (
	"sync"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"trpc.group/trpc-go/trpc-agent-hub/agent"
	"trpc.group/trpc-go/trpc-agent-hub/log"
)

// Entry is one catalog slot: an agent together with its lifecycle state
// and rolling execution statistics. Entries are long-lived; the execution
// engine mutates their statistics after each run.
type Entry struct {
	agent        agent.Agent
	stats        *agent.Stats
	registeredAt time.Time

	mu     sync.RWMutex
	status agent.LifecycleStatus
}

// Agent returns the registered agent.
func (e *Entry) Agent() agent.Agent { return e.agent }

// Info returns the agent's identifying details.
func (e *Entry) Info() agent.Info { return e.agent.Info() }

// Stats returns the entry's statistics tracker.
func (e *Entry) Stats() *agent.Stats { return e.stats }

// RegisteredAt returns when the entry was added to the catalog.
func (e *Entry) RegisteredAt() time.Time { return e.registeredAt }

// Status returns the lifecycle status of the entry.
func (e *Entry) Status() agent.LifecycleStatus {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.status
}

// SetStatus updates the lifecycle status of the entry.
func (e *Entry) SetStatus(s agent.LifecycleStatus) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.status = s
}

// Registry is the catalog of registered agents, keyed by name and ordered
// by registration. Reads are safe while discovery or registration runs on
// another goroutine.
type Registry struct {
	mu      sync.RWMutex
	catalog *orderedmap.OrderedMap[string, *Entry]
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		catalog: orderedmap.New[string, *Entry](),
	}
}

// Register adds an agent to the catalog in active state and returns its
// entry. On a name collision the newer registration replaces the older
// one; the replacement is logged because it can hide a discovery bug.
// The second return value reports whether an existing entry was replaced.
func (r *Registry) Register(a agent.Agent) (*Entry, bool) {
	entry := &Entry{
		agent:        a,
		stats:        agent.NewStats(),
		registeredAt: time.Now().UTC(),
		status:       agent.StatusActive,
	}

	name := a.Info().Name

	r.mu.Lock()
	defer r.mu.Unlock()

	_, replaced := r.catalog.Get(name)
	if replaced {
		log.Warnf("registry: agent %q already registered, replacing previous entry", name)
	}
	r.catalog.Set(name, entry)
	return entry, replaced
}

// Deregister removes an agent from the catalog. It reports whether an
// entry was actually removed.
func (r *Registry) Deregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, present := r.catalog.Delete(name)
	return present
}

// Get retrieves a catalog entry by name.
func (r *Registry) Get(name string) (*Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.catalog.Get(name)
}

// List returns all catalog entries in registration order.
func (r *Registry) List() []*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]*Entry, 0, r.catalog.Len())
	for pair := r.catalog.Oldest(); pair != nil; pair = pair.Next() {
		entries = append(entries, pair.Value)
	}
	return entries
}

// Names returns all registered agent names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, r.catalog.Len())
	for pair := r.catalog.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// Len returns the number of registered agents.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.catalog.Len()
}
