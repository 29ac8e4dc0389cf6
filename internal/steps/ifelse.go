package steps

import (
	"context"

	"github.com/ludere/stepflow/internal/flowctx"
	"github.com/ludere/stepflow/pkg/schema"
)

// --- control.condition.if_else ---
//
// Branch slots are special: the value bound to 'true_branch' or
// 'false_branch' is a plugin id to dispatch, not a context key. An empty
// or absent branch for the side the condition selects is a no-op.

type ifElseStep struct {
	lookup Lookup
}

// NewIfElseStep creates the two-way branch step.
func NewIfElseStep(lookup Lookup) Step {
	return &ifElseStep{lookup: lookup}
}

func (s *ifElseStep) PluginID() string { return "control.condition.if_else" }

func (s *ifElseStep) Execute(ctx context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	condKey, err := RequiredInputKey(step, "condition")
	if err != nil {
		return err
	}
	cond, ok := flow.TryBool(condKey)
	if !ok {
		return DataErr(step, condKey, schema.KindBool)
	}

	trueBranch := step.Inputs["true_branch"]
	falseBranch := step.Inputs["false_branch"]
	if trueBranch == "" && falseBranch == "" {
		return schema.NewErrorf(schema.ErrCodeConfig,
			"%s requires at least one of 'true_branch' or 'false_branch'", s.PluginID()).
			WithPlugin(s.PluginID())
	}

	branch := trueBranch
	if !cond {
		branch = falseBranch
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
