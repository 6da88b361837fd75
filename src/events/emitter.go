package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"
)

type Type string

const (
	PositionOpened          Type = "position_opened"
	PositionClosed          Type = "position_closed"
	TransactionAdded        Type = "transaction_added"
	RecommendationAdded     Type = "recommendation_added"
	TokenPerformanceUpdated Type = "token_performance_updated"
)

// Event is a notification fanned out to listeners when the engine mutates
// state. Payload carries the affected entity.
type Event struct {
	Type    Type
	Payload any
	At      time.Time
}

type Listener func(Event)

// Emitter is a synchronous, best-effort fan-out. A panicking listener is
// recovered and logged; it never aborts the emitting operation or the other
// listeners.
type Emitter struct {
	mu        sync.RWMutex
	listeners map[Type]map[string]Listener
	now       func() time.Time
}

func NewEmitter() *Emitter {
	return &Emitter{
		listeners: make(map[Type]map[string]Listener),
		now:       time.Now,
	}
}

// Subscribe registers a listener for an event type and returns an
// unsubscribe function.
func (e *Emitter) Subscribe(eventType Type, listener Listener) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := uuid.NewString()
	if e.listeners[eventType] == nil {
		e.listeners[eventType] = make(map[string]Listener)
	}
	e.listeners[eventType][id] = listener

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.listeners[eventType], id)
	}
}

// Emit delivers the event to every listener registered for its type.
func (e *Emitter) Emit(eventType Type, payload any) {
	e.mu.RLock()
	registered := e.listeners[eventType]
	// Copy so listeners can unsubscribe from within their callback.
	fanout := make([]Listener, 0, len(registered))
	for _, listener := range registered {
		fanout = append(fanout, listener)
	}
	e.mu.RUnlock()

	event := Event{Type: eventType, Payload: payload, At: e.now()}
	for _, listener := range fanout {
		e.deliver(listener, event)
	}
}

func (e *Emitter) deliver(listener Listener, event Event) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithFields(logger.Fields{
				"event_type": event.Type,
				"panic":      r,
			}).Error("Event listener panicked")
		}
	}()
	listener(event)
}
