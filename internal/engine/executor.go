// Package engine runs parsed workflow definitions: the executor walks the
// step list, the parser decodes workflow documents, and the resolver
// locates them on disk.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ludere/stepflow/internal/flowctx"
	"github.com/ludere/stepflow/internal/logging"
	"github.com/ludere/stepflow/internal/steps"
	"github.com/ludere/stepflow/internal/store"
	"github.com/ludere/stepflow/pkg/schema"
)

// Executor interprets workflow definitions step by step against a shared
// context. Steps run strictly in declaration order on the calling
// goroutine; the first failing step aborts the run and its error carries
// the step id.
type Executor struct {
	lookup   steps.Lookup
	logger   *slog.Logger
	recorder store.Recorder
}

// NewExecutor creates an executor. recorder may be nil to disable the
// flight recorder.
func NewExecutor(lookup steps.Lookup, logger *slog.Logger, recorder store.Recorder) *Executor {
	return &Executor{lookup: lookup, logger: logger, recorder: recorder}
}

// Run starts a fresh top-level run of a workflow: assigns a run id, tags
// the context for log correlation, and records run lifecycle events.
func (e *Executor) Run(ctx context.Context, def *schema.WorkflowDefinition, flow *flowctx.Context) (string, error) {
	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	ctx = logging.WithWorkflow(ctx, def.Name)

	e.record(ctx, &store.Event{RunID: runID, Workflow: def.Name, Type: store.EventRunStarted})
	start := time.Now()

	err := e.Execute(ctx, def, flow)

	elapsed := time.Since(start)
	if err != nil {
		e.logger.ErrorContext(ctx, "run failed", slog.Duration("elapsed", elapsed), slog.String("error", err.Error()))
		e.record(ctx, &store.Event{RunID: runID, Workflow: def.Name, Type: store.EventRunFailed, Detail: err.Error()})
		return runID, err
	}

	e.logger.InfoContext(ctx, "run completed", slog.Duration("elapsed", elapsed), slog.Int("steps", len(def.Steps)))
	e.record(ctx, &store.Event{RunID: runID, Workflow: def.Name, Type: store.EventRunCompleted})
	return runID, nil
}

// Execute interprets the definition's steps in order against the given
// context. Sub-workflow steps call back into this method with the same
// context, which is what makes nested workflows share state with their
// caller.
func (e *Executor) Execute(ctx context.Context, def *schema.WorkflowDefinition, flow *flowctx.Context) error {
	runID := logging.RunID(ctx)

	for i := range def.Steps {
		st := &def.Steps[i]
		if err := ctx.Err(); err != nil {
			return schema.NewErrorf(schema.ErrCodeExecution, "run canceled before step '%s'", st.ID).WithCause(err)
		}

		stepCtx := logging.WithStepID(ctx, st.ID)
		e.logger.DebugContext(stepCtx, "step start", slog.String("plugin", st.Plugin))
		e.record(stepCtx, &store.Event{RunID: runID, Workflow: def.Name, StepID: st.ID, Plugin: st.Plugin, Type: store.EventStepStarted})

		impl, err := e.lookup.Get(st.Plugin)
		if err == nil {
			err = impl.Execute(stepCtx, st, flow)
		}
		if err != nil {
			e.record(stepCtx, &store.Event{RunID: runID, Workflow: def.Name, StepID: st.ID, Plugin: st.Plugin,
				Type: store.EventStepFailed, Detail: err.Error()})
			return schema.NewErrorf(schema.ErrCodeExecution, "step '%s' failed: %s", st.ID, err).
				WithPlugin(st.Plugin).WithKey(st.ID).WithCause(err)
		}

		e.record(stepCtx, &store.Event{RunID: runID, Workflow: def.Name, StepID: st.ID, Plugin: st.Plugin, Type: store.EventStepFinished})
	}
	return nil
}

// record appends to the flight recorder. Recorder failures are logged and
// never fail the run.
func (e *Executor) record(ctx context.Context, event *store.Event) {
	if e.recorder == nil {
		return
	}
	if err := e.recorder.Append(ctx, event); err != nil {
		e.logger.WarnContext(ctx, "flight recorder append failed", slog.String("error", err.Error()))
	}
}

var _ steps.SubWorkflowRunner = (*Executor)(nil)
