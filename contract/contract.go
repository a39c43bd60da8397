//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"gamechat/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink receives outbound events for one subscriber. Consume must
// not block: a sink that cannot keep up drops the event.
type EventSink interface {
	Consume(ctx context.Context, e event.Event) error
}

// IDispatcher is the fan-out primitive shared by all subsystems. Two
// addressing modes only: a topic with many subscribers, or the private
// queue of one username. Delivery is at most once, best effort.
type IDispatcher interface {
	Broadcast(topic string, e event.Event)
	Send(username string, e event.Event)
	Subscribe(username, topic string)
	Unsubscribe(username, topic string)
	Attach(username string, sink EventSink)
	Detach(username string)
	DetachIfSame(username string, sink EventSink) bool
	HasSession(username string) bool
}

// Notifier delivers a push notification to a possibly offline user.
// Callers fire and forget; failures are logged, never surfaced.
type Notifier interface {
	Notify(ctx context.Context, username, title, body, link string) error
}
