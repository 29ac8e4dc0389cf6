package steps

import (
	"context"

	"github.com/ludere/stepflow/internal/expressions"
	"github.com/ludere/stepflow/internal/flowctx"
	"github.com/ludere/stepflow/pkg/schema"
)

// --- value.expr ---
//
// Evaluates an expr-lang expression over the context snapshot and stores
// the result. The snapshot is reachable as 'ctx' ('ctx["camera.yaw"]');
// dot-free keys double as top-level variables ('score * 2').

type valueExprStep struct {
	engine *expressions.ExprEngine
}

// NewValueExprStep creates the expression evaluation step.
func NewValueExprStep(engine *expressions.ExprEngine) Step {
	return &valueExprStep{engine: engine}
}

func (s *valueExprStep) PluginID() string { return "value.expr" }

func (s *valueExprStep) Execute(ctx context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	expression, err := RequiredStringParam(step, "expression")
	if err != nil {
		return err
	}
	outKey, err := RequiredOutputKey(step, "result")
	if err != nil {
		return err
	}

	out, err := s.engine.Evaluate(ctx, expression, flow.Snapshot())
	if err != nil {
		return err
	}
	v, ok := schema.FromAny(out)
	if !ok {
		return schema.NewErrorf(schema.ErrCodeExecution,
			"%s: expression %q produced unstorable result of type %T", s.PluginID(), expression, out).
			WithPlugin(s.PluginID())
	}
	flow.Set(outKey, v)
	return nil
}
