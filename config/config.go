//
// Tencent is pleased to support the open source community by making trpc-agent-hub available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-hub is licensed under the Apache License Version 2.0.
//
//

// Package config loads the execution hub configuration from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level hub configuration.
type Config struct {
	// Log configures the logging subsystem.
	Log LogConfig `yaml:"log"`

	// Engine configures batch execution defaults.
	Engine EngineConfig `yaml:"engine"`

	// Discovery configures manifest discovery.
	Discovery DiscoveryConfig `yaml:"discovery"`

	// Suites maps suite group labels to fixed agent name sets.
	Suites map[string][]string `yaml:"suites"`

	// Server configures the HTTP surface.
	Server ServerConfig `yaml:"server"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is the minimum emitted log level.
	Level string `yaml:"level"`
}

// EngineConfig configures batch execution defaults.
type EngineConfig struct {
	// TimeoutSeconds bounds a single agent run when a batch does not
	// specify its own timeout.
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// MaxConcurrency bounds parallel fan-out; 0 sizes the pool to the
	// batch.
	MaxConcurrency int `yaml:"max_concurrency"`

	// RetryAttempts is the retry budget for failed runs.
	RetryAttempts int `yaml:"retry_attempts"`
}

// DiscoveryConfig configures manifest discovery.
type DiscoveryConfig struct {
	// Dir is the root directory scanned for agent manifests.
	Dir string `yaml:"dir"`

	// Pattern is the manifest glob pattern relative to Dir.
	Pattern string `yaml:"pattern"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `yaml:"addr"`
}

// Default returns the configuration used when no file is provided.
func Default() *Config {
	return &Config{
		Log:    LogConfig{Level: "info"},
		Engine: EngineConfig{TimeoutSeconds: 60},
		Discovery: DiscoveryConfig{
			Pattern: "**/*.agent.yaml",
		},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// Load reads a YAML configuration file, applying defaults for anything
// the file leaves unset.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Timeout returns the engine default run timeout as a duration.
func (c *EngineConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
