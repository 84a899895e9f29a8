package driver

import (
	"context"
	"sync"

	"eventdriver/pkg/types"
)

// Recorder stores received events in-memory, in arrival order.
type Recorder struct {
	name   string
	mu     sync.Mutex
	events []types.Event
}

func NewRecorder(name string) *Recorder { return &Recorder{name: name} }

func (r *Recorder) Name() string { return r.name }

func (r *Recorder) HandleEvent(_ context.Context, ev types.Event) error {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
	return nil
}

func (r *Recorder) Events() []types.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]types.Event, len(r.events))
	copy(out, r.events)
	return out
}
