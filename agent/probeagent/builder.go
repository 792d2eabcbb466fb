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
	"fmt"
	"time"

	"trpc.group/trpc-go/trpc-agent-hub/agent"
	"trpc.group/trpc-go/trpc-agent-hub/registry"
)

// Kind is the manifest kind resolved by Build.
const Kind = "probe"

// Build constructs a ProbeAgent from a discovery manifest. Supported
// params: latency_ms (int), outcome ("success" or "failed") and payload.
func Build(m registry.Manifest) (agent.Agent, error) {
	opts := Options{
		Name:        m.Name,
		Role:        m.Role,
		Description: m.Description,
	}

	if v, ok := m.Params["latency_ms"]; ok {
		ms, ok := toInt64(v)
		if !ok || ms < 0 {
			return nil, fmt.Errorf("invalid latency_ms %v", v)
		}
		opts.Latency = time.Duration(ms) * time.Millisecond
	}

	if v, ok := m.Params["outcome"]; ok {
		s, _ := v.(string)
		switch agent.ResultStatus(s) {
		case agent.ResultSuccess, agent.ResultFailed:
			opts.Outcome = agent.ResultStatus(s)
		default:
			return nil, fmt.Errorf("invalid outcome %v", v)
		}
	}

	opts.Payload = m.Params["payload"]

	return New(opts), nil
}

// Register makes the probe kind available to manifest discovery.
func Register() {
	registry.RegisterKind(Kind, Build)
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}
