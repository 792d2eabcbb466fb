//
// Tencent is pleased to support the open source community by making trpc-agent-hub available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-hub is licensed under the Apache License Version 2.0.
//
//

package probeagent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-agent-hub/agent"
)

func TestProbeDefaults(t *testing.T) {
	p := New(Options{Name: "ping", Role: "network"})

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, agent.ResultSuccess, res.Status)
	assert.Equal(t, "ping", p.Info().Name)
	assert.Equal(t, int64(1), p.Metrics()["invocations"])
}

func TestProbeScriptedFailure(t *testing.T) {
	p := New(Options{Name: "flaky", Outcome: agent.ResultFailed})

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, agent.ResultFailed, res.Status)
}

func TestProbeRunError(t *testing.T) {
	boom := errors.New("probe blew up")
	p := New(Options{Name: "broken", RunErr: boom})

	res, err := p.Run(context.Background())
	assert.Nil(t, res)
	assert.ErrorIs(t, err, boom)
}

func TestProbeHonorsCancellation(t *testing.T) {
	p := New(Options{Name: "slow", Latency: time.Minute})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := p.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, int64(1), p.Metrics()["cancelled"])
}
