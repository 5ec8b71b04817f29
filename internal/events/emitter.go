package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/phrazzld/taskman/internal/redact"
)

// InMemoryEventEmitter dispatches events synchronously to handlers
// registered in process.
type InMemoryEventEmitter struct {
	mu sync.RWMutex
	// subscriptions keyed by event type; the empty key receives every type.
	subscriptions map[string][]EventHandler
	logger        *slog.Logger
}

var _ EventEmitter = (*InMemoryEventEmitter)(nil)

// NewInMemoryEventEmitter creates an emitter with no handlers.
func NewInMemoryEventEmitter(logger *slog.Logger) *InMemoryEventEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &InMemoryEventEmitter{
		subscriptions: make(map[string][]EventHandler),
		logger:        logger.With("component", "event_emitter"),
	}
}

// RegisterHandler subscribes handler to the given event types, or to every
// event when no type is given.
func (e *InMemoryEventEmitter) RegisterHandler(handler EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = []string{""}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for _, t := range eventTypes {
		e.subscriptions[t] = append(e.subscriptions[t], handler)
	}
	e.logger.Debug("registered event handler", "event_types", eventTypes)
}

// EmitEvent runs every handler subscribed to event.Type. A failing or
// panicking handler does not stop the rest; all failures are joined into
// the returned error.
func (e *InMemoryEventEmitter) EmitEvent(ctx context.Context, event *Event) error {
	e.mu.RLock()
	handlers := make([]EventHandler, 0, len(e.subscriptions[""])+len(e.subscriptions[event.Type]))
	handlers = append(handlers, e.subscriptions[event.Type]...)
	handlers = append(handlers, e.subscriptions[""]...)
	e.mu.RUnlock()

	log := e.logger.With("event_id", event.ID, "event_type", event.Type)
	if len(handlers) == 0 {
		log.Debug("no handlers registered for event")
		return nil
	}
	log.Debug("emitting event", "handler_count", len(handlers))

	var errs []error
	for i, handler := range handlers {
		if err := dispatch(ctx, handler, event); err != nil {
			log.Error("handler failed to process event",
				"handler_index", i,
				"error", redact.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func dispatch(ctx context.Context, handler EventHandler, event *Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("event handler panicked: %v", r)
		}
	}()
	return handler.HandleEvent(ctx, event)
}
