//
// Tencent is pleased to support the open source community by making trpc-agent-hub available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-hub is licensed under the Apache License Version 2.0.
//
//

// Package orchestrator composes the registry, execution engine and
// subscriber hub into the top-level execution service.
package orchestrator

import (
	"context"
	"errors"
	"sync"
	"time"

	"trpc.group/trpc-go/trpc-agent-hub/agent"
	"trpc.group/trpc-go/trpc-agent-hub/event"
	"trpc.group/trpc-go/trpc-agent-hub/executor"
	"trpc.group/trpc-go/trpc-agent-hub/hub"
	"trpc.group/trpc-go/trpc-agent-hub/log"
	"trpc.group/trpc-go/trpc-agent-hub/registry"
)

// Orchestrator owns the agent catalog and drives batch execution. It is
// safe for concurrent use.
type Orchestrator struct {
	registry *registry.Registry
	hub      *hub.Hub
	engine   *executor.Engine
	sources  []registry.Source
	suites   map[string][]string

	mu          sync.Mutex
	initialized bool
	batches     map[string]*BatchState
	batchesRun  int
}

// Option is a function that configures the Orchestrator.
type Option func(*options)

type options struct {
	hub        *hub.Hub
	sources    []registry.Source
	suites     map[string][]string
	engineOpts []executor.Option
}

// WithHub sets the subscriber hub. By default a fresh hub is created.
func WithHub(h *hub.Hub) Option {
	return func(o *options) { o.hub = h }
}

// WithSources sets the discovery sources consumed by Initialize.
func WithSources(sources ...registry.Source) Option {
	return func(o *options) { o.sources = append(o.sources, sources...) }
}

// WithSuites sets the named suite groups available to RunSuite. Each
// group maps a label to a fixed set of agent names.
func WithSuites(suites map[string][]string) Option {
	return func(o *options) { o.suites = suites }
}

// WithEngineOptions forwards options to the execution engine.
func WithEngineOptions(opts ...executor.Option) Option {
	return func(o *options) { o.engineOpts = append(o.engineOpts, opts...) }
}

// New creates an Orchestrator with an empty catalog.
func New(opts ...Option) *Orchestrator {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.hub == nil {
		o.hub = hub.New()
	}

	reg := registry.New()
	return &Orchestrator{
		registry: reg,
		hub:      o.hub,
		engine:   executor.New(reg, o.hub, o.engineOpts...),
		sources:  o.sources,
		suites:   o.suites,
		batches:  make(map[string]*BatchState),
	}
}

// Registry returns the agent catalog.
func (o *Orchestrator) Registry() *registry.Registry { return o.registry }

// Hub returns the subscriber hub.
func (o *Orchestrator) Hub() *hub.Hub { return o.hub }

// Initialize runs discovery on every configured source and registers the
// resolved agents. It is idempotent; only the first call discovers.
// Per-candidate failures are logged and skipped by discovery itself; an
// unreachable source is reported but does not block the others.
func (o *Orchestrator) Initialize(ctx context.Context) error {
	o.mu.Lock()
	if o.initialized {
		o.mu.Unlock()
		return nil
	}
	o.initialized = true
	o.mu.Unlock()

	var errs []error
	for _, src := range o.sources {
		if _, err := o.registry.Discover(ctx, src); err != nil {
			log.Errorf("orchestrator: discovery source failed: %v", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Register adds an agent to the catalog and notifies subscribers of the
// catalog change.
func (o *Orchestrator) Register(a agent.Agent) *registry.Entry {
	entry, replaced := o.registry.Register(a)

	info := a.Info()
	t := event.TypeAgentCreated
	if replaced {
		t = event.TypeAgentUpdated
	}
	o.hub.Publish(event.NewCatalogChanged(t, info.Name, info.Role, info.Description))
	return entry
}

// Deregister removes an agent from the catalog and notifies subscribers.
// Removing an unknown agent is a no-op.
func (o *Orchestrator) Deregister(name string) bool {
	entry, ok := o.registry.Get(name)
	if !ok {
		return false
	}
	info := entry.Info()

	if !o.registry.Deregister(name) {
		return false
	}
	o.hub.Publish(event.NewCatalogChanged(event.TypeAgentDeleted, info.Name, info.Role, info.Description))
	return true
}

// SetAgentStatus updates an agent's lifecycle status and notifies
// subscribers of the catalog change.
func (o *Orchestrator) SetAgentStatus(name string, status agent.LifecycleStatus) bool {
	entry, ok := o.registry.Get(name)
	if !ok {
		return false
	}
	entry.SetStatus(status)

	info := entry.Info()
	o.hub.Publish(event.NewCatalogChanged(event.TypeAgentUpdated, info.Name, info.Role, info.Description))
	return true
}

// RunBatch executes a batch synchronously and returns its summary. When
// names is empty, every agent currently in active status is included.
func (o *Orchestrator) RunBatch(ctx context.Context, names []string, policy executor.Policy, timeout time.Duration) (*executor.Summary, error) {
	if len(names) == 0 {
		names = o.activeNames()
	}

	summary, err := o.engine.RunBatch(ctx, names, policy, timeout)
	if err == nil || errors.Is(err, executor.ErrBatchFatal) {
		o.countBatch()
	}
	return summary, err
}

// RunSuite executes the given suite groups, one batch per group, and
// returns the summary of each. A group with no registered agents yields
// an empty summary rather than an error; unknown group labels do too.
func (o *Orchestrator) RunSuite(ctx context.Context, groups []string, policy executor.Policy, timeout time.Duration) (map[string]*executor.Summary, error) {
	summaries := make(map[string]*executor.Summary, len(groups))
	for _, group := range groups {
		names := o.registeredNames(o.suites[group])
		if len(names) == 0 {
			log.Infof("orchestrator: suite group %q has no registered agents", group)
			summaries[group] = executor.EmptySummary(executor.NewBatch(nil, policy, timeout).ID)
			continue
		}

		summary, err := o.RunBatch(ctx, names, policy, timeout)
		if err != nil {
			return nil, err
		}
		summaries[group] = summary
	}
	return summaries, nil
}

// activeNames returns the names of all agents in active status, in
// registration order.
func (o *Orchestrator) activeNames() []string {
	var names []string
	for _, entry := range o.registry.List() {
		if entry.Status() == agent.StatusActive {
			names = append(names, entry.Info().Name)
		}
	}
	return names
}

// registeredNames filters names down to those present in the catalog.
func (o *Orchestrator) registeredNames(names []string) []string {
	var out []string
	for _, name := range names {
		if _, ok := o.registry.Get(name); ok {
			out = append(out, name)
		}
	}
	return out
}

func (o *Orchestrator) countBatch() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.batchesRun++
}

// AgentHealth is the per-agent line of a status report.
type AgentHealth struct {
	Name        string                `json:"name"`
	Role        string                `json:"role"`
	Description string                `json:"description"`
	Status      agent.LifecycleStatus `json:"status"`
	Healthy     bool                  `json:"healthy"`
	Stats       agent.StatsSnapshot   `json:"stats"`
}

// StatusReport is a point-in-time view of the orchestrator for external
// reporting. Building it has no side effects.
type StatusReport struct {
	AgentCount int           `json:"agentCount"`
	BatchesRun int           `json:"batchesRun"`
	Agents     []AgentHealth `json:"agents"`
}

// Status reports the catalog size, per-agent health and the number of
// batches run so far.
func (o *Orchestrator) Status() StatusReport {
	entries := o.registry.List()

	report := StatusReport{
		AgentCount: len(entries),
		Agents:     make([]AgentHealth, 0, len(entries)),
	}

	o.mu.Lock()
	report.BatchesRun = o.batchesRun
	o.mu.Unlock()

	for _, entry := range entries {
		info := entry.Info()
		report.Agents = append(report.Agents, AgentHealth{
			Name:        info.Name,
			Role:        info.Role,
			Description: info.Description,
			Status:      entry.Status(),
			Healthy:     info.Name != "" && entry.Agent().Metrics() != nil,
			Stats:       entry.Stats().Snapshot(),
		})
	}
	return report
}
