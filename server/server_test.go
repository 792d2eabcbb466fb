//
// Tencent is pleased to support the open source community by making trpc-agent-hub available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-hub is licensed under the Apache License Version 2.0.
//
//

package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-agent-hub/agent/probeagent"
	"trpc.group/trpc-go/trpc-agent-hub/event"
	"trpc.group/trpc-go/trpc-agent-hub/orchestrator"
)

func newTestServer(t *testing.T) (*httptest.Server, *orchestrator.Orchestrator) {
	t.Helper()
	o := orchestrator.New()
	o.Register(probeagent.New(probeagent.Options{Name: "scan", Role: "security"}))
	o.Register(probeagent.New(probeagent.Options{Name: "audit", Role: "security"}))

	ts := httptest.NewServer(New(o).Handler())
	t.Cleanup(ts.Close)
	return ts, o
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestStartExecutionAndPoll(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/executions", map[string]any{
		"unitNames":      []string{"scan", "audit"},
		"parallel":       true,
		"timeoutSeconds": 5,
	})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	receipt := decode[orchestrator.Receipt](t, resp)
	assert.Equal(t, "started", receipt.Status)
	assert.Equal(t, 2, receipt.UnitCount)
	require.NotEmpty(t, receipt.BatchID)

	require.Eventually(t, func() bool {
		resp, err := http.Get(ts.URL + "/api/v1/executions/" + receipt.BatchID)
		if err != nil {
			return false
		}
		state := decode[orchestrator.BatchState](t, resp)
		return state.State == orchestrator.BatchCompleted
	}, 5*time.Second, 20*time.Millisecond)
}

func TestStartExecutionBadRequest(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/v1/executions", "application/json",
		strings.NewReader("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStartExecutionUnknownAgents(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/executions", map[string]any{
		"unitNames": []string{"nobody"},
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestGetExecutionNotFound(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/v1/executions/missing")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListAgents(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/v1/agents")
	require.NoError(t, err)
	agents := decode[[]orchestrator.AgentHealth](t, resp)
	require.Len(t, agents, 2)
	assert.Equal(t, "scan", agents[0].Name)
}

func TestStatus(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/v1/status")
	require.NoError(t, err)
	report := decode[orchestrator.StatusReport](t, resp)
	assert.Equal(t, 2, report.AgentCount)
}

func TestWebSocketReceivesEvents(t *testing.T) {
	ts, o := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?identity=watcher"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Give the server a beat to register the subscriber.
	require.Eventually(t, func() bool {
		return o.Hub().Count() == 1
	}, time.Second, 10*time.Millisecond)

	resp := postJSON(t, ts.URL+"/api/v1/executions", map[string]any{
		"unitNames": []string{"scan"},
	})
	resp.Body.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var evt event.Event
	require.NoError(t, conn.ReadJSON(&evt))
	assert.Equal(t, event.TypeExecutionStarted, evt.Type)
}
