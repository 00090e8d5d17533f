package events

import (
	"context"
	"log/slog"
	"sync"
)

// InMemoryEmitter dispatches events to in-process handlers. It is the default
// sink when no AMQP endpoint is configured, and the test double everywhere
// else.
type InMemoryEmitter struct {
	handlers []Handler
	mu       sync.RWMutex
	logger   *slog.Logger
}

// NewInMemoryEmitter creates an InMemoryEmitter.
func NewInMemoryEmitter(logger *slog.Logger) *InMemoryEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &InMemoryEmitter{
		logger: logger.With(slog.String("component", "event_emitter")),
	}
}

// Ensure InMemoryEmitter implements Emitter
var _ Emitter = (*InMemoryEmitter)(nil)

// RegisterHandler adds a handler to receive events.
func (e *InMemoryEmitter) RegisterHandler(handler Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers = append(e.handlers, handler)
}

// EmitEvent publishes the event to all registered handlers. A failing handler
// does not stop delivery to the others; the first error is returned for
// logging.
func (e *InMemoryEmitter) EmitEvent(ctx context.Context, event *Event) error {
	e.mu.RLock()
	handlers := make([]Handler, len(e.handlers))
	copy(handlers, e.handlers)
	e.mu.RUnlock()

	e.logger.Debug("emitting event",
		"event_id", event.ID,
		"event_name", event.Name,
		"handler_count", len(handlers))

	var firstErr error
	for i, handler := range handlers {
		if err := handler.HandleEvent(ctx, event); err != nil {
			e.logger.Error("handler failed to process event",
				"error", err,
				"handler_index", i,
				"event_id", event.ID,
				"event_name", event.Name)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}
