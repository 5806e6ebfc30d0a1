package events

import (
	"context"
	"sync"
)

// Emitter is how state containers announce that they changed.
type Emitter interface {
	Emit(ctx context.Context, e Event) error
}

type NopEmitter struct{}

func (NopEmitter) Emit(context.Context, Event) error { return nil }

// Recorder keeps every emitted event. Handy for tests and the CLI.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Emit(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

func (r *Recorder) Types() []string {
	evs := r.Events()
	out := make([]string, len(evs))
	for i, e := range evs {
		out[i] = e.EventType()
	}
	return out
}
