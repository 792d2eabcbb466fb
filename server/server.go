//
// Tencent is pleased to support the open source community by making trpc-agent-hub available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-hub is licensed under the Apache License Version 2.0.
//
//

// Package server exposes the execution hub over HTTP and WebSocket.
//
// Authentication, rate limiting and persistence are deliberately absent;
// this surface is meant to sit behind an admission layer that owns them.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"trpc.group/trpc-go/trpc-agent-hub/executor"
	"trpc.group/trpc-go/trpc-agent-hub/log"
	"trpc.group/trpc-go/trpc-agent-hub/orchestrator"
)

// Server routes hub operations to an orchestrator.
type Server struct {
	orch   *orchestrator.Orchestrator
	router *mux.Router
}

// New creates the HTTP surface for an orchestrator.
func New(orch *orchestrator.Orchestrator) *Server {
	s := &Server{
		orch:   orch,
		router: mux.NewRouter(),
	}

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})
	s.router.Use(c.Handler)
	s.registerRoutes()
	return s
}

// Handler returns the http.Handler for the server.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) registerRoutes() {
	s.router.HandleFunc("/api/v1/executions", s.handleStartExecution).Methods(http.MethodPost)
	s.router.HandleFunc("/api/v1/executions/{batchId}", s.handleGetExecution).Methods(http.MethodGet)
	s.router.HandleFunc("/api/v1/agents", s.handleListAgents).Methods(http.MethodGet)
	s.router.HandleFunc("/api/v1/status", s.handleStatus).Methods(http.MethodGet)
	s.router.HandleFunc("/ws", s.handleSubscribe).Methods(http.MethodGet)
}

// ---- Handlers -----------------------------------------------------------

// executionRequest is the batch request consumed from callers.
type executionRequest struct {
	UnitNames      []string `json:"unitNames"`
	Parallel       bool     `json:"parallel"`
	TimeoutSeconds int      `json:"timeoutSeconds"`
}

func (s *Server) handleStartExecution(w http.ResponseWriter, r *http.Request) {
	var req executionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	policy := executor.PolicySequential
	if req.Parallel {
		policy = executor.PolicyParallel
	}
	timeout := time.Duration(req.TimeoutSeconds) * time.Second

	receipt, err := s.orch.StartBatch(req.UnitNames, policy, timeout)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	log.Infof("server: started batch %s with %d agents", receipt.BatchID, receipt.UnitCount)
	w.WriteHeader(http.StatusAccepted)
	s.writeJSON(w, receipt)
}

func (s *Server) handleGetExecution(w http.ResponseWriter, r *http.Request) {
	batchID := mux.Vars(r)["batchId"]

	state, ok := s.orch.BatchStatus(batchID)
	if !ok {
		http.Error(w, "batch not found", http.StatusNotFound)
		return
	}
	s.writeJSON(w, state)
}

func (s *Server) handleListAgents(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.orch.Status().Agents)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.orch.Status())
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("server: encode response: %v", err)
	}
}
