//
// Tencent is pleased to support the open source community by making trpc-agent-hub available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-hub is licensed under the Apache License Version 2.0.
//
//

// Package hub manages execution event subscribers and best-effort delivery.
package hub

import (
	"sync"

	"trpc.group/trpc-go/trpc-agent-hub/event"
	"trpc.group/trpc-go/trpc-agent-hub/log"
)

// Subscriber receives lifecycle events. Send must be safe for concurrent
// use; a returned error marks one failed delivery and nothing more — the
// hub never removes a subscriber on its own, disconnect detection belongs
// to the transport.
type Subscriber interface {
	Send(evt *event.Event) error
}

// Hub tracks the current set of subscribers, optionally indexed by an
// external identity, and fans events out to them.
//
// Delivery is best-effort: a failed send is logged and skipped, and a
// slow subscriber only delays its own delivery, never the engine (the
// engine publishes from its own goroutines).
type Hub struct {
	mu         sync.RWMutex
	subs       map[Subscriber]struct{}
	byIdentity map[string]Subscriber
}

// New creates an empty hub.
func New() *Hub {
	return &Hub{
		subs:       make(map[Subscriber]struct{}),
		byIdentity: make(map[string]Subscriber),
	}
}

// Subscribe records a subscriber. A non-empty identity additionally
// indexes it for identity-addressed delivery; a later subscriber with the
// same identity takes over the index slot.
func (h *Hub) Subscribe(s Subscriber, identity string) {
	if s == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.subs[s] = struct{}{}
	if identity != "" {
		h.byIdentity[identity] = s
	}
}

// Unsubscribe removes a subscriber and its identity index entry.
// Unsubscribing a subscriber that is not present is a no-op.
func (h *Hub) Unsubscribe(s Subscriber, identity string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.subs, s)
	if identity != "" && h.byIdentity[identity] == s {
		delete(h.byIdentity, identity)
	}
}

// Publish delivers an event to every current subscriber. A send failure
// for one subscriber does not prevent delivery to the others.
func (h *Hub) Publish(evt *event.Event) {
	h.mu.RLock()
	targets := make([]Subscriber, 0, len(h.subs))
	for s := range h.subs {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	for _, s := range targets {
		if err := s.Send(evt); err != nil {
			log.Debugf("hub: dropping %s event for one subscriber: %v", evt.Type, err)
		}
	}
}

// PublishTo delivers an event only to the subscriber registered under
// identity. Unknown identities are a silent no-op.
func (h *Hub) PublishTo(identity string, evt *event.Event) {
	h.mu.RLock()
	s, ok := h.byIdentity[identity]
	h.mu.RUnlock()

	if !ok {
		return
	}
	if err := s.Send(evt); err != nil {
		log.Debugf("hub: dropping %s event for identity %q: %v", evt.Type, identity, err)
	}
}

// Count returns the number of current subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
