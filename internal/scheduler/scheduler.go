// Package scheduler runs configured workflows on cron schedules:
// autosaves, periodic cleanups, timed scene events. Each firing gets a
// fresh execution context, so scheduled workflows never race the frame
// loop's state.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ludere/stepflow/internal/flowctx"
	"github.com/ludere/stepflow/internal/steps"
	"github.com/ludere/stepflow/pkg/schema"
)

// Job binds a cron expression to a named workflow.
type Job struct {
	Name     string
	Package  string
	Workflow string
	Spec     string // standard 5-field cron expression
}

// Runner is the executor surface the scheduler drives. Satisfied by
// *engine.Executor.
type Runner interface {
	Run(ctx context.Context, def *schema.WorkflowDefinition, flow *flowctx.Context) (string, error)
}

// Scheduler ticks once a second and fires jobs whose schedule has come
// due since the previous tick.
type Scheduler struct {
	runner  Runner
	loader  steps.WorkflowLoader
	logger  *slog.Logger
	parser  cron.Parser
	entries []entry

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	inflightMu sync.Mutex
	inflight   map[string]struct{}
}

type entry struct {
	job      Job
	schedule cron.Schedule
	next     time.Time
}

// tickInterval is deliberately much finer than the minimum cron
// resolution so firings land close to their scheduled minute.
const tickInterval = time.Second

// New creates a scheduler from static job specs. Invalid cron expressions
// fail construction.
func New(runner Runner, loader steps.WorkflowLoader, logger *slog.Logger, jobs []Job) (*Scheduler, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

	s := &Scheduler{
		runner:   runner,
		loader:   loader,
		logger:   logger,
		parser:   parser,
		inflight: make(map[string]struct{}),
	}

	now := time.Now()
	for _, job := range jobs {
		schedule, err := parser.Parse(job.Spec)
		if err != nil {
			return nil, fmt.Errorf("parse cron expression %q for job %q: %w", job.Spec, job.Name, err)
		}
		s.entries = append(s.entries, entry{job: job, schedule: schedule, next: schedule.Next(now)})
	}
	return s, nil
}

// Start launches the background scheduling loop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.done != nil {
		s.mu.Unlock()
		return fmt.Errorf("scheduler already started")
	}
	schedCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.mu.Unlock()

	go s.loop(schedCtx)
	s.logger.Info("scheduler started", slog.Int("jobs", len(s.entries)))
	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel == nil {
		return nil
	}
	s.cancel()
	<-s.done
	s.cancel = nil
	s.done = nil

	s.logger.Info("scheduler stopped")
	return nil
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.tick(ctx, now)
		}
	}
}

// tick fires every entry whose next run time has passed and advances it.
func (s *Scheduler) tick(ctx context.Context, now time.Time) {
	for i := range s.entries {
		e := &s.entries[i]
		if e.next.After(now) {
			continue
		}
		e.next = e.schedule.Next(now)

		if !s.tryAcquire(e.job.Name) {
			continue // previous firing still running
		}
		job := e.job
		go func() {
			defer s.release(job.Name)
			s.runJob(ctx, job)
		}()
	}
}

func (s *Scheduler) runJob(ctx context.Context, job Job) {
	s.logger.Info("running scheduled job",
		slog.String("job", job.Name),
		slog.String("workflow", job.Package+"/"+job.Workflow))

	def, err := s.loader.Load(ctx, job.Package, job.Workflow)
	if err != nil {
		s.logger.Error("scheduled job load failed",
			slog.String("job", job.Name), slog.String("error", err.Error()))
		return
	}
	if _, err := s.runner.Run(ctx, def, flowctx.New()); err != nil {
		s.logger.Error("scheduled job execution failed",
			slog.String("job", job.Name), slog.String("error", err.Error()))
	}
}

func (s *Scheduler) tryAcquire(name string) bool {
	s.inflightMu.Lock()
	defer s.inflightMu.Unlock()
	if _, ok := s.inflight[name]; ok {
		return false
	}
	s.inflight[name] = struct{}{}
	return true
}

func (s *Scheduler) release(name string) {
	s.inflightMu.Lock()
	defer s.inflightMu.Unlock()
	delete(s.inflight, name)
}

// NextRun reports when the named job will fire next. Used by tests and
// status output.
func (s *Scheduler) NextRun(name string) (time.Time, bool) {
	for _, e := range s.entries {
		if e.job.Name == name {
			return e.next, true
		}
	}
	return time.Time{}, false
}
