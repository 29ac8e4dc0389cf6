package steps

import (
	"context"
	"log/slog"

	"github.com/ludere/stepflow/internal/flowctx"
	"github.com/ludere/stepflow/pkg/schema"
)

// --- control.loop.while ---
//
// Repeats a named sub-workflow while the bool at 'condition_key' stays
// true. The sub-workflow is resolved and parsed once, before the first
// iteration; the body mutates the shared context, so the condition value
// is re-read from the context at the top of every pass. Each iteration
// publishes 'loop.iteration' as a number starting at 0.
//
// 'max_iterations' is a runaway guard, not an error condition: hitting it
// logs a warning and exits the loop normally. Zero means unlimited.

type whileStep struct {
	runner SubWorkflowRunner
	loader WorkflowLoader
	logger *slog.Logger
}

// NewWhileStep creates the conditional loop step.
func NewWhileStep(runner SubWorkflowRunner, loader WorkflowLoader, logger *slog.Logger) Step {
	return &whileStep{runner: runner, loader: loader, logger: logger}
}

func (s *whileStep) PluginID() string { return "control.loop.while" }

func (s *whileStep) Execute(ctx context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	condKey, err := RequiredStringParam(step, "condition_key")
	if err != nil {
		return err
	}
	pkg, err := RequiredStringParam(step, "package")
	if err != nil {
		return err
	}
	name, err := RequiredStringParam(step, "workflow")
	if err != nil {
		return err
	}
	maxIterations := 0
	if v, ok := FindParam(step, "max_iterations"); ok {
		n, ok := v.Number()
		if !ok {
			return schema.NewErrorf(schema.ErrCodeConfig, "%s: parameter 'max_iterations' must be a number", s.PluginID()).
				WithPlugin(s.PluginID()).WithKey("max_iterations")
		}
		maxIterations = int(n)
	}

	def, err := s.loader.Load(ctx, pkg, name)
	if err != nil {
		return err
	}

	for i := 0; ; i++ {
		if err := ctx.Err(); err != nil {
			return schema.NewError(schema.ErrCodeExecution, "loop canceled").
				WithPlugin(s.PluginID()).WithCause(err)
		}
		cond, ok := flow.TryBool(condKey)
		if !ok {
			return DataErr(step, condKey, schema.KindBool)
		}
		if !cond {
			return nil
		}
		if maxIterations > 0 && i >= maxIterations {
			s.logger.WarnContext(ctx, "while loop hit iteration cap",
				slog.String("workflow", pkg+"/"+name),
				slog.Int("max_iterations", maxIterations))
			return nil
		}

		flow.SetNumber("loop.iteration", float64(i))
		if err := s.runner.Execute(ctx, def, flow); err != nil {
			return err
		}
	}
}
