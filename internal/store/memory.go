package store

import (
	"context"
	"sync"
	"time"
)

// MemoryRecorder keeps events in a slice. Used by tests and by hosts that
// run without a database.
type MemoryRecorder struct {
	mu     sync.Mutex
	events []*Event
	seq    map[string]int64
	nextID int64
}

// NewMemoryRecorder creates an empty in-memory recorder.
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{seq: make(map[string]int64)}
}

func (r *MemoryRecorder) Append(_ context.Context, event *Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	r.seq[event.RunID]++

	stored := *event
	stored.ID = r.nextID
	stored.Sequence = r.seq[event.RunID]
	if stored.Timestamp.IsZero() {
		stored.Timestamp = time.Now().UTC()
	}
	r.events = append(r.events, &stored)

	event.ID = stored.ID
	event.Sequence = stored.Sequence
	return nil
}

func (r *MemoryRecorder) Events(_ context.Context, filter EventFilter) ([]*Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*Event
	for _, e := range r.events {
		if filter.RunID != "" && e.RunID != filter.RunID {
			continue
		}
		if filter.Workflow != "" && e.Workflow != filter.Workflow {
			continue
		}
		if filter.Type != "" && e.Type != filter.Type {
			continue
		}
		if filter.Since != nil && e.Timestamp.Before(*filter.Since) {
			continue
		}
		copied := *e
		out = append(out, &copied)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

func (r *MemoryRecorder) Close() error { return nil }

var _ Recorder = (*MemoryRecorder)(nil)
