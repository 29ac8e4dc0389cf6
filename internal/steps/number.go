package steps

import (
	"context"
	"math"

	"github.com/ludere/stepflow/internal/flowctx"
	"github.com/ludere/stepflow/pkg/schema"
)

// NumberSteps returns the arithmetic step family.
func NumberSteps() []Step {
	return []Step{
		&binaryNumberStep{id: "number.add", apply: func(a, b float64) (float64, error) { return a + b, nil }},
		&binaryNumberStep{id: "number.sub", apply: func(a, b float64) (float64, error) { return a - b, nil }},
		&binaryNumberStep{id: "number.mul", apply: func(a, b float64) (float64, error) { return a * b, nil }},
		&binaryNumberStep{id: "number.div", apply: divide},
		&binaryNumberStep{id: "number.min", apply: func(a, b float64) (float64, error) { return math.Min(a, b), nil }},
		&binaryNumberStep{id: "number.max", apply: func(a, b float64) (float64, error) { return math.Max(a, b), nil }},
		&unaryNumberStep{id: "number.abs", apply: math.Abs},
		&unaryNumberStep{id: "number.round", apply: math.Round},
		&clampStep{},
	}
}

func divide(a, b float64) (float64, error) {
	if b == 0 {
		return 0, schema.NewError(schema.ErrCodeExecution, "division by zero").WithPlugin("number.div")
	}
	return a / b, nil
}

// binaryNumberStep reads 'a' and 'b', writes 'result'.
type binaryNumberStep struct {
	id    string
	apply func(a, b float64) (float64, error)
}

func (s *binaryNumberStep) PluginID() string { return s.id }

func (s *binaryNumberStep) Execute(_ context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	a, err := RequiredNumberArg(step, flow, "a")
	if err != nil {
		return err
	}
	b, err := RequiredNumberArg(step, flow, "b")
	if err != nil {
		return err
	}
	outKey, err := RequiredOutputKey(step, "result")
	if err != nil {
		return err
	}
	result, err := s.apply(a, b)
	if err != nil {
		return err
	}
	flow.SetNumber(outKey, result)
	return nil
}

// unaryNumberStep reads 'value', writes 'result'.
type unaryNumberStep struct {
	id    string
	apply func(v float64) float64
}

func (s *unaryNumberStep) PluginID() string { return s.id }

func (s *unaryNumberStep) Execute(_ context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	v, err := RequiredNumberArg(step, flow, "value")
	if err != nil {
		return err
	}
	outKey, err := RequiredOutputKey(step, "result")
	if err != nil {
		return err
	}
	flow.SetNumber(outKey, s.apply(v))
	return nil
}

// --- number.clamp ---

type clampStep struct{}

func (s *clampStep) PluginID() string { return "number.clamp" }

func (s *clampStep) Execute(_ context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	v, err := RequiredNumberArg(step, flow, "value")
	if err != nil {
		return err
	}
	lo, err := RequiredNumberArg(step, flow, "min")
	if err != nil {
		return err
	}
	hi, err := RequiredNumberArg(step, flow, "max")
	if err != nil {
		return err
	}
	if lo > hi {
		return schema.NewErrorf(schema.ErrCodeData, "%s: min %g exceeds max %g", s.PluginID(), lo, hi).
			WithPlugin(s.PluginID())
	}
	outKey, err := RequiredOutputKey(step, "result")
	if err != nil {
		return err
	}
	flow.SetNumber(outKey, math.Min(math.Max(v, lo), hi))
	return nil
}
