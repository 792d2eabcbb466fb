//
// Tencent is pleased to support the open source community by making trpc-agent-hub available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-hub is licensed under the Apache License Version 2.0.
//
//

package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestSetLevel(t *testing.T) {
	defer SetLevel("info")

	SetLevel("debug")
	assert.Equal(t, zapcore.DebugLevel, zapLevel.Level())

	SetLevel("error")
	assert.Equal(t, zapcore.ErrorLevel, zapLevel.Level())

	// Unrecognized levels fall back to info.
	SetLevel("verbose")
	assert.Equal(t, zapcore.InfoLevel, zapLevel.Level())
}

type recordingLogger struct {
	messages []string
}

func (r *recordingLogger) Debug(args ...any)                 { r.messages = append(r.messages, "debug") }
func (r *recordingLogger) Debugf(string, ...any)             { r.messages = append(r.messages, "debugf") }
func (r *recordingLogger) Info(args ...any)                  { r.messages = append(r.messages, "info") }
func (r *recordingLogger) Infof(string, ...any)              { r.messages = append(r.messages, "infof") }
func (r *recordingLogger) Warn(args ...any)                  { r.messages = append(r.messages, "warn") }
func (r *recordingLogger) Warnf(string, ...any)              { r.messages = append(r.messages, "warnf") }
func (r *recordingLogger) Error(args ...any)                 { r.messages = append(r.messages, "error") }
func (r *recordingLogger) Errorf(string, ...any)             { r.messages = append(r.messages, "errorf") }
func (r *recordingLogger) Fatal(args ...any)                 { r.messages = append(r.messages, "fatal") }
func (r *recordingLogger) Fatalf(format string, args ...any) { r.messages = append(r.messages, "fatalf") }

func TestDefaultReplacement(t *testing.T) {
	orig := Default
	defer func() { Default = orig }()

	rec := &recordingLogger{}
	Default = rec

	Debug("d")
	Infof("i %d", 1)
	Warn("w")
	Errorf("e %s", "x")

	require.Equal(t, []string{"debug", "infof", "warn", "errorf"}, rec.messages)
}
