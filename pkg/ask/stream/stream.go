package stream

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Kind enumerates the client-visible event vocabulary of one ask session.
type Kind string

const (
	KindAskStarted   Kind = "ask-started"
	KindActionStart  Kind = "action-start"
	KindActionOutput Kind = "action-output"
	KindActionEnd    Kind = "action-end"
	KindActionError  Kind = "action-error"
	KindAnswerStart  Kind = "answer-start"
	KindAnswerOutput Kind = "answer-output"
	KindAnswerStop   Kind = "answer-stop"
	KindAnswerError  Kind = "answer-error"
	KindAskEnded     Kind = "ask-ended"
)

// Event is one ordered, client-visible push event. Id is assigned by the
// session sink and is unrelated to the correlation ids inside Data.
type Event struct {
	Id   string
	Kind Kind
	Data interface{}
}

// Emitter is the emission contract every pipeline stage writes through.
type Emitter interface {
	Emit(ctx context.Context, kind Kind, data interface{}) error
}

// Session is the event sink for one ask session: a single-writer,
// single-reader FIFO channel living exactly as long as the session.
// The orchestrator emits, the transport drains; emission order is
// delivery order.
type Session struct {
	events    chan Event
	closeOnce sync.Once
}

// NewSession creates a session sink. The buffer bounds how far the pipeline
// may run ahead of a slow client before Emit blocks.
func NewSession(buffer int) *Session {
	if buffer < 0 {
		buffer = 0
	}
	return &Session{
		events: make(chan Event, buffer),
	}
}

// Emit queues one event, assigning it a fresh unique id. It blocks when the
// buffer is full and fails once ctx is done, so a dead transport unwinds the
// pipeline instead of wedging it.
func (s *Session) Emit(ctx context.Context, kind Kind, data interface{}) error {
	ev := Event{
		Id:   uuid.NewString(),
		Kind: kind,
		Data: data,
	}

	select {
	case s.events <- ev:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("emit %s: %w", kind, ctx.Err())
	}
}

// Events returns the read side of the sink. The channel is closed by Close.
func (s *Session) Events() <-chan Event {
	return s.events
}

// Close ends the stream. Only the writer side may call it, after the final
// event has been emitted.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.events)
	})
}
