package steps

import (
	"context"

	"github.com/ludere/stepflow/internal/flowctx"
	"github.com/ludere/stepflow/pkg/schema"
)

// BoolSteps returns the boolean logic step family.
func BoolSteps() []Step {
	return []Step{
		&binaryBoolStep{id: "bool.and", apply: func(a, b bool) bool { return a && b }},
		&binaryBoolStep{id: "bool.or", apply: func(a, b bool) bool { return a || b }},
		&boolNotStep{},
	}
}

// binaryBoolStep reads 'a' and 'b', writes 'result'.
type binaryBoolStep struct {
	id    string
	apply func(a, b bool) bool
}

func (s *binaryBoolStep) PluginID() string { return s.id }

func (s *binaryBoolStep) Execute(_ context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	a, err := RequiredBoolArg(step, flow, "a")
	if err != nil {
		return err
	}
	b, err := RequiredBoolArg(step, flow, "b")
	if err != nil {
		return err
	}
	outKey, err := RequiredOutputKey(step, "result")
	if err != nil {
		return err
	}
	flow.SetBool(outKey, s.apply(a, b))
	return nil
}

// --- bool.not ---

type boolNotStep struct{}

func (s *boolNotStep) PluginID() string { return "bool.not" }

func (s *boolNotStep) Execute(_ context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	v, err := RequiredBoolArg(step, flow, "value")
	if err != nil {
		return err
	}
	outKey, err := RequiredOutputKey(step, "result")
	if err != nil {
		return err
	}
	flow.SetBool(outKey, !v)
	return nil
}
