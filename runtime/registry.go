// Package runtime handles subscriber bookkeeping and event propagation.
// It orchestrates delivery without containing business logic or domain rules.
package runtime

import (
	"sync"

	"gamechat/contract"
)

type Set map[string]struct{}

// Registry tracks live sessions and topic membership.
type Registry struct {
	mu           sync.RWMutex
	sessions     map[string]contract.EventSink // username -> live connection sink
	topicMembers map[string]Set                // topic -> usernames
}

func NewRegistry() *Registry {
	return &Registry{
		sessions:     make(map[string]contract.EventSink),
		topicMembers: make(map[string]Set),
	}
}

// Attach registers a user's live connection sink. A reconnect replaces
// the previous sink, so private-queue delivery always targets the
// newest connection.
func (r *Registry) Attach(username string, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[username] = sink
}

// Detach removes the session and every topic membership of username.
func (r *Registry) Detach(username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.detachLocked(username)
}

// DetachIfSame removes the session only while sink is still the one on
// record. A reconnect replaces the sink before the old read loop exits,
// so the old connection's teardown must not evict the new session.
func (r *Registry) DetachIfSame(username string, sink contract.EventSink) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.sessions[username]
	if !ok || current != sink {
		return false
	}
	r.detachLocked(username)
	return true
}

func (r *Registry) detachLocked(username string) {
	delete(r.sessions, username)
	for topic, members := range r.topicMembers {
		delete(members, username)
		if len(members) == 0 {
			delete(r.topicMembers, topic)
		}
	}
}

// Subscribe adds username to a topic. The topic is initialized on the
// fly when it does not exist yet.
func (r *Registry) Subscribe(username, topic string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.topicMembers[topic]; !ok {
		r.topicMembers[topic] = make(Set)
	}
	r.topicMembers[topic][username] = struct{}{}
}

// Unsubscribe removes username from a topic. It cleans up empty sets so
// dead topics do not accumulate over time.
func (r *Registry) Unsubscribe(username, topic string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if members, ok := r.topicMembers[topic]; ok {
		delete(members, username)
		if len(members) == 0 {
			delete(r.topicMembers, topic)
		}
	}
}

// SinksFor resolves a topic into the sinks of its connected members.
// Members without a live session are skipped, not an error: a user can
// stay subscribed to a room across a brief reconnect.
func (r *Registry) SinksFor(topic string) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.topicMembers[topic]
	if !ok {
		return nil
	}
	var sinks []contract.EventSink
	for username := range members {
		if sink, exists := r.sessions[username]; exists {
			sinks = append(sinks, sink)
		}
	}
	return sinks
}

// SinkOf returns the live session sink of one username.
func (r *Registry) SinkOf(username string) (contract.EventSink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sink, ok := r.sessions[username]
	return sink, ok
}

// HasSession reports whether username has a live connection.
func (r *Registry) HasSession(username string) bool {
	_, ok := r.SinkOf(username)
	return ok
}
