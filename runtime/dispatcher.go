package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gamechat/contract"
	"gamechat/domain/event"
)

// Ensure *Dispatcher satisfies the contract at compile time.
var _ contract.IDispatcher = (*Dispatcher)(nil)

// Dispatcher fans events out to topic subscribers or to one user's
// private queue.
//
// It provides best-effort delivery with no guarantees regarding
// acknowledgment, durability, or retries. Sinks must consume without
// blocking; a Consume error means the event was dropped for that
// subscriber and is only logged here.
//
// Dispatcher is safe for concurrent use by multiple goroutines.
type Dispatcher struct {
	log         *slog.Logger
	registry    *Registry
	sinkTimeout time.Duration
}

func NewDispatcher(log *slog.Logger, registry *Registry, sinkTimeout time.Duration) *Dispatcher {
	return &Dispatcher{log: log, registry: registry, sinkTimeout: sinkTimeout}
}

// Broadcast publishes to every connected subscriber of a topic.
// Callers may hold the lock of the entity the event describes: enqueue
// order under that lock is the order every subscriber observes.
func (d *Dispatcher) Broadcast(topic string, e event.Event) {
	for _, sink := range d.registry.SinksFor(topic) {
		d.deliver(sink, e, topic)
	}
}

// Send publishes to the private queue of one username. Unknown or
// disconnected users are a silent no-op.
func (d *Dispatcher) Send(username string, e event.Event) {
	sink, ok := d.registry.SinkOf(username)
	if !ok {
		return
	}
	d.deliver(sink, e, "user:"+username)
}

func (d *Dispatcher) deliver(sink contract.EventSink, e event.Event, target string) {
	ctx, cancel := context.WithTimeout(context.Background(), d.sinkTimeout)
	defer cancel()
	if err := sink.Consume(ctx, e); err != nil {
		d.log.Debug(fmt.Sprintf("Dropped %s event for %s: %v", e.EventType(), target, err))
	}
}

func (d *Dispatcher) Subscribe(username, topic string)   { d.registry.Subscribe(username, topic) }
func (d *Dispatcher) Unsubscribe(username, topic string) { d.registry.Unsubscribe(username, topic) }

func (d *Dispatcher) Attach(username string, sink contract.EventSink) {
	d.registry.Attach(username, sink)
}

func (d *Dispatcher) Detach(username string) { d.registry.Detach(username) }

func (d *Dispatcher) DetachIfSame(username string, sink contract.EventSink) bool {
	return d.registry.DetachIfSame(username, sink)
}

func (d *Dispatcher) HasSession(username string) bool { return d.registry.HasSession(username) }
