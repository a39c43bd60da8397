package services

import (
	"sync"

	"gamechat/contract"
	"gamechat/domain/event"
)

// fakeDispatcher records every publication so tests can assert on the
// exact event flow without a live transport.
type fakeDispatcher struct {
	mu         sync.Mutex
	broadcasts map[string][]event.Event
	sends      map[string][]event.Event
	topics     map[string]map[string]struct{}
	sessions   map[string]contract.EventSink
}

var _ contract.IDispatcher = (*fakeDispatcher)(nil)

func newFakeDispatcher() *fakeDispatcher {
	return &fakeDispatcher{
		broadcasts: make(map[string][]event.Event),
		sends:      make(map[string][]event.Event),
		topics:     make(map[string]map[string]struct{}),
		sessions:   make(map[string]contract.EventSink),
	}
}

func (d *fakeDispatcher) Broadcast(topic string, e event.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.broadcasts[topic] = append(d.broadcasts[topic], e)
}

func (d *fakeDispatcher) Send(username string, e event.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sends[username] = append(d.sends[username], e)
}

func (d *fakeDispatcher) Subscribe(username, topic string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.topics[topic]; !ok {
		d.topics[topic] = make(map[string]struct{})
	}
	d.topics[topic][username] = struct{}{}
}

func (d *fakeDispatcher) Unsubscribe(username, topic string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if members, ok := d.topics[topic]; ok {
		delete(members, username)
	}
}

func (d *fakeDispatcher) Attach(username string, sink contract.EventSink) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sessions[username] = sink
}

func (d *fakeDispatcher) Detach(username string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.sessions, username)
}

func (d *fakeDispatcher) DetachIfSame(username string, sink contract.EventSink) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	current, ok := d.sessions[username]
	if !ok || current != sink {
		return false
	}
	delete(d.sessions, username)
	return true
}

func (d *fakeDispatcher) HasSession(username string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.sessions[username]
	return ok
}

func (d *fakeDispatcher) sentTo(username string) []event.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]event.Event(nil), d.sends[username]...)
}

func (d *fakeDispatcher) broadcastOn(topic string) []event.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]event.Event(nil), d.broadcasts[topic]...)
}

func (d *fakeDispatcher) subscribed(username, topic string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.topics[topic][username]
	return ok
}
