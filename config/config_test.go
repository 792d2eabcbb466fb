//
// Tencent is pleased to support the open source community by making trpc-agent-hub available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-hub is licensed under the Apache License Version 2.0.
//
//

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hub.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 60*time.Second, cfg.Engine.Timeout())
	assert.Equal(t, "**/*.agent.yaml", cfg.Discovery.Pattern)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
engine:
  timeout_seconds: 30
  max_concurrency: 4
  retry_attempts: 2
discovery:
  dir: /opt/agents
suites:
  security:
    - port-scan
    - tls-audit
server:
  addr: ":9090"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 30*time.Second, cfg.Engine.Timeout())
	assert.Equal(t, 4, cfg.Engine.MaxConcurrency)
	assert.Equal(t, 2, cfg.Engine.RetryAttempts)
	assert.Equal(t, "/opt/agents", cfg.Discovery.Dir)
	// Defaults survive for fields the file leaves unset.
	assert.Equal(t, "**/*.agent.yaml", cfg.Discovery.Pattern)
	assert.Equal(t, []string{"port-scan", "tls-audit"}, cfg.Suites["security"])
	assert.Equal(t, ":9090", cfg.Server.Addr)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "{engine: [")
	_, err := Load(path)
	assert.Error(t, err)
}
