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
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"trpc.group/trpc-go/trpc-agent-hub/event"
	"trpc.group/trpc-go/trpc-agent-hub/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsSubscriber forwards hub events over a websocket connection.
type wsSubscriber struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// Send writes one event to the peer. Writes are serialized because the
// hub may publish from multiple goroutines.
func (w *wsSubscriber) Send(evt *event.Event) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteJSON(evt)
}

// handleSubscribe upgrades the connection and attaches it to the hub.
// An optional identity query parameter makes the subscriber addressable
// for targeted delivery.
func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Errorf("server: websocket upgrade: %v", err)
		return
	}

	identity := r.URL.Query().Get("identity")
	sub := &wsSubscriber{conn: conn}
	h := s.orch.Hub()
	h.Subscribe(sub, identity)
	log.Infof("server: websocket subscriber attached, identity=%q", identity)

	// The read loop only exists to notice disconnects.
	go func() {
		defer func() {
			h.Unsubscribe(sub, identity)
			conn.Close()
			log.Infof("server: websocket subscriber detached, identity=%q", identity)
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
