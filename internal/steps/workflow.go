package steps

import (
	"context"

	"github.com/ludere/stepflow/internal/flowctx"
	"github.com/ludere/stepflow/pkg/schema"
)

// --- workflow.execute ---
//
// Runs a named sub-workflow against the same shared context, so the
// sub-workflow sees every value the caller has set and the caller sees
// everything the sub-workflow leaves behind.

type workflowExecuteStep struct {
	runner SubWorkflowRunner
	loader WorkflowLoader
}

// NewWorkflowExecuteStep creates the sub-workflow invocation step.
func NewWorkflowExecuteStep(runner SubWorkflowRunner, loader WorkflowLoader) Step {
	return &workflowExecuteStep{runner: runner, loader: loader}
}

func (s *workflowExecuteStep) PluginID() string { return "workflow.execute" }

func (s *workflowExecuteStep) Execute(ctx context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	pkg, err := RequiredStringParam(step, "package")
	if err != nil {
		return err
	}
	name, err := RequiredStringParam(step, "workflow")
	if err != nil {
		return err
	}
	def, err := s.loader.Load(ctx, pkg, name)
	if err != nil {
		return err
	}
	return s.runner.Execute(ctx, def, flow)
}
