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
	"io/fs"
	"os"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"trpc.group/trpc-go/trpc-agent-hub/agent"
	"trpc.group/trpc-go/trpc-agent-hub/log"
)

// Manifest describes one installable agent declared by a discovery source.
type Manifest struct {
	// Name is the unique agent name.
	Name string `yaml:"name"`

	// Kind selects the builder used to construct the agent.
	Kind string `yaml:"kind"`

	// Role classifies the agent.
	Role string `yaml:"role"`

	// Description explains what the agent does.
	Description string `yaml:"description"`

	// Params carries kind-specific construction parameters.
	Params map[string]any `yaml:"params"`
}

// Builder constructs an agent from a manifest.
type Builder func(m Manifest) (agent.Agent, error)

var (
	buildersMu sync.RWMutex
	builders   = make(map[string]Builder)
)

// RegisterKind registers a builder for a manifest kind. Later
// registrations for the same kind replace earlier ones.
func RegisterKind(kind string, b Builder) {
	buildersMu.Lock()
	defer buildersMu.Unlock()
	builders[kind] = b
}

// builderFor looks up the builder for a manifest kind.
func builderFor(kind string) (Builder, bool) {
	buildersMu.RLock()
	defer buildersMu.RUnlock()
	b, ok := builders[kind]
	return b, ok
}

// Candidate is one discoverable agent that has not been constructed yet.
type Candidate struct {
	// Name identifies the candidate in discovery logs.
	Name string

	// Build attempts the typed construction of the agent.
	Build func() (agent.Agent, error)
}

// Source enumerates discoverable agent candidates.
type Source interface {
	// Candidates returns the candidates the source currently exposes.
	Candidates(ctx context.Context) ([]Candidate, error)
}

// Discover enumerates the source and registers every candidate that
// resolves to a working agent. A candidate that fails to build is logged
// and skipped; it never aborts discovery of the remaining candidates.
// It returns the number of agents registered.
func (r *Registry) Discover(ctx context.Context, src Source) (int, error) {
	candidates, err := src.Candidates(ctx)
	if err != nil {
		return 0, fmt.Errorf("enumerate candidates: %w", err)
	}

	registered := 0
	for _, c := range candidates {
		a, err := c.Build()
		if err != nil {
			log.Warnf("registry: skipping candidate %q: %v", c.Name, err)
			continue
		}
		r.Register(a)
		registered++
	}

	log.Infof("registry: discovery registered %d of %d candidates", registered, len(candidates))
	return registered, nil
}

// DirSource discovers agents from YAML manifests under a directory tree.
// Manifests are matched with a doublestar pattern and resolved against
// the builders registered via RegisterKind.
type DirSource struct {
	root    string
	pattern string
	fsys    fs.FS
}

// DirOption configures a DirSource.
type DirOption func(*DirSource)

// WithPattern overrides the manifest glob pattern
// (default: "**/*.agent.yaml").
func WithPattern(pattern string) DirOption {
	return func(s *DirSource) { s.pattern = pattern }
}

// WithFS overrides the filesystem the source reads from. Intended for
// tests; by default the source reads from the root directory on disk.
func WithFS(fsys fs.FS) DirOption {
	return func(s *DirSource) { s.fsys = fsys }
}

// NewDirSource creates a manifest discovery source rooted at dir.
func NewDirSource(dir string, opts ...DirOption) *DirSource {
	s := &DirSource{
		root:    dir,
		pattern: "**/*.agent.yaml",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.fsys == nil {
		s.fsys = os.DirFS(dir)
	}
	return s
}

// Candidates implements the Source interface. A manifest that cannot be
// read or parsed is logged and skipped so one broken file does not hide
// the rest of the directory.
func (s *DirSource) Candidates(ctx context.Context) ([]Candidate, error) {
	matches, err := doublestar.Glob(s.fsys, s.pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %q under %s: %w", s.pattern, s.root, err)
	}

	var candidates []Candidate
	for _, path := range matches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, err := fs.ReadFile(s.fsys, path)
		if err != nil {
			log.Warnf("registry: skipping manifest %s: %v", path, err)
			continue
		}

		var m Manifest
		if err := yaml.Unmarshal(raw, &m); err != nil {
			log.Warnf("registry: skipping manifest %s: %v", path, err)
			continue
		}

		candidates = append(candidates, Candidate{
			Name:  m.Name,
			Build: buildFromManifest(m),
		})
	}
	return candidates, nil
}

// buildFromManifest returns the typed construction step for a manifest.
func buildFromManifest(m Manifest) func() (agent.Agent, error) {
	return func() (agent.Agent, error) {
		if m.Name == "" {
			return nil, fmt.Errorf("manifest has no name")
		}
		b, ok := builderFor(m.Kind)
		if !ok {
			return nil, fmt.Errorf("unknown agent kind %q", m.Kind)
		}
		a, err := b(m)
		if err != nil {
			return nil, fmt.Errorf("build agent %q: %w", m.Name, err)
		}
		return a, nil
	}
}
