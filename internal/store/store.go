// Package store is the flight recorder: an append-only log of run and
// step events the executor emits while interpreting workflows. The
// interpreter never reads the log on its own behalf; it exists for
// postmortem queries after a scripted scene misbehaves.
package store

import (
	"context"
	"time"
)

// Event types emitted by the executor.
const (
	EventRunStarted   = "run.started"
	EventRunCompleted = "run.completed"
	EventRunFailed    = "run.failed"
	EventStepStarted  = "step.started"
	EventStepFinished = "step.finished"
	EventStepFailed   = "step.failed"
)

// Event is one recorded occurrence during a run. Sequence numbers are
// per-run and dense, assigned by the recorder on append.
type Event struct {
	ID        int64     `json:"id"`
	RunID     string    `json:"run_id"`
	Workflow  string    `json:"workflow"`
	StepID    string    `json:"step_id,omitempty"`
	Plugin    string    `json:"plugin,omitempty"`
	Type      string    `json:"type"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Sequence  int64     `json:"sequence"`
}

// EventFilter narrows Events queries. Zero values mean "any".
type EventFilter struct {
	RunID    string
	Workflow string
	Type     string
	Since    *time.Time
	Limit    int
}

// Recorder appends and queries run events.
type Recorder interface {
	Append(ctx context.Context, event *Event) error
	Events(ctx context.Context, filter EventFilter) ([]*Event, error)
	Close() error
}
