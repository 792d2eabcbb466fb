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
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-agent-hub/agent"
)

func registerStubKind(t *testing.T, kind string) {
	t.Helper()
	RegisterKind(kind, func(m Manifest) (agent.Agent, error) {
		if m.Params["broken"] == true {
			return nil, errors.New("scripted build failure")
		}
		return &stubAgent{name: m.Name, role: m.Role}, nil
	})
}

func TestDirSourceCandidates(t *testing.T) {
	registerStubKind(t, "stub")

	fsys := fstest.MapFS{
		"scan.agent.yaml": &fstest.MapFile{Data: []byte(
			"name: port-scan\nkind: stub\nrole: security\n",
		)},
		"nested/audit.agent.yaml": &fstest.MapFile{Data: []byte(
			"name: audit\nkind: stub\nrole: compliance\n",
		)},
		"notes.txt": &fstest.MapFile{Data: []byte("not a manifest")},
	}

	src := NewDirSource("plugins", WithFS(fsys))
	candidates, err := src.Candidates(context.Background())
	require.NoError(t, err)
	require.Len(t, candidates, 2)
}

func TestDirSourceSkipsBrokenManifests(t *testing.T) {
	registerStubKind(t, "stub")

	fsys := fstest.MapFS{
		"good.agent.yaml": &fstest.MapFile{Data: []byte(
			"name: good\nkind: stub\n",
		)},
		"bad.agent.yaml": &fstest.MapFile{Data: []byte(
			"{not yaml: [",
		)},
	}

	src := NewDirSource("plugins", WithFS(fsys))
	candidates, err := src.Candidates(context.Background())
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "good", candidates[0].Name)
}

func TestDiscoverSkipsFailingCandidates(t *testing.T) {
	registerStubKind(t, "stub")

	fsys := fstest.MapFS{
		"ok.agent.yaml": &fstest.MapFile{Data: []byte(
			"name: ok\nkind: stub\n",
		)},
		"buildfail.agent.yaml": &fstest.MapFile{Data: []byte(
			"name: buildfail\nkind: stub\nparams:\n  broken: true\n",
		)},
		"unknown.agent.yaml": &fstest.MapFile{Data: []byte(
			"name: mystery\nkind: no-such-kind\n",
		)},
	}

	r := New()
	registered, err := r.Discover(context.Background(), NewDirSource("plugins", WithFS(fsys)))
	require.NoError(t, err)
	assert.Equal(t, 1, registered)
	assert.Equal(t, []string{"ok"}, r.Names())
}

func TestDiscoverPropagatesEnumerationFailure(t *testing.T) {
	r := New()
	_, err := r.Discover(context.Background(), failingSource{})
	assert.Error(t, err)
	assert.Equal(t, 0, r.Len())
}

type failingSource struct{}

func (failingSource) Candidates(ctx context.Context) ([]Candidate, error) {
	return nil, errors.New("source unavailable")
}

func TestDiscoverRespectsContext(t *testing.T) {
	registerStubKind(t, "stub")

	fsys := fstest.MapFS{
		"a.agent.yaml": &fstest.MapFile{Data: []byte("name: a\nkind: stub\n")},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := NewDirSource("plugins", WithFS(fsys))
	_, err := src.Candidates(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
