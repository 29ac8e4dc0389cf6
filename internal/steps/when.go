package steps

import (
	"context"

	"github.com/ludere/stepflow/internal/expressions"
	"github.com/ludere/stepflow/internal/flowctx"
	"github.com/ludere/stepflow/pkg/schema"
)

// --- control.condition.when ---
//
// CEL-guarded branch. Unlike if_else, the condition is an expression over
// the whole context ('ctx["player.health"] < 20.0 && ctx["in_combat"]')
// instead of a single precomputed bool key. 'then_branch' and
// 'else_branch' inputs carry plugin ids, same as the if_else branch slots.

type whenStep struct {
	lookup Lookup
	engine *expressions.CELEngine
}

// NewWhenStep creates the expression-guarded branch step.
func NewWhenStep(lookup Lookup, engine *expressions.CELEngine) Step {
	return &whenStep{lookup: lookup, engine: engine}
}

func (s *whenStep) PluginID() string { return "control.condition.when" }

func (s *whenStep) Execute(ctx context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	condition, err := RequiredStringParam(step, "condition")
	if err != nil {
		return err
	}

	out, err := s.engine.Evaluate(ctx, condition, flow.Snapshot())
	if err != nil {
		return err
	}
	cond, ok := out.(bool)
	if !ok {
		return schema.NewErrorf(schema.ErrCodeExecution,
			"%s: condition %q produced %T, want bool", s.PluginID(), condition, out).
			WithPlugin(s.PluginID())
	}

	branch := step.Inputs["then_branch"]
	if !cond {
		branch = step.Inputs["else_branch"]
	}
	if branch == "" {
		return nil
	}

	target, err := s.lookup.Get(branch)
	if err != nil {
		return err
	}
	return target.Execute(ctx, schema.CallStep(branch), flow)
}
