//
// Tencent is pleased to support the open source community by making trpc-agent-hub available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-hub is licensed under the Apache License Version 2.0.
//
//

package executor

import "errors"

var (
	// ErrNoAgentsAvailable is returned when a batch resolves zero agents.
	// The batch never starts and no events are emitted.
	ErrNoAgentsAvailable = errors.New("no agents available for execution")

	// ErrBatchFatal wraps faults in the engine's own bookkeeping. Agent
	// failures never produce it; they are captured as outcomes instead.
	ErrBatchFatal = errors.New("batch execution aborted")
)
