package steps

import (
	"context"

	"github.com/ludere/stepflow/internal/flowctx"
	"github.com/ludere/stepflow/pkg/schema"
)

// CompareSteps returns the numeric comparison step family. Each step reads
// 'a' and 'b' and writes a bool to 'result'.
func CompareSteps() []Step {
	return []Step{
		&compareStep{id: "compare.eq", apply: func(a, b float64) bool { return a == b }},
		&compareStep{id: "compare.ne", apply: func(a, b float64) bool { return a != b }},
		&compareStep{id: "compare.gt", apply: func(a, b float64) bool { return a > b }},
		&compareStep{id: "compare.gte", apply: func(a, b float64) bool { return a >= b }},
		&compareStep{id: "compare.lt", apply: func(a, b float64) bool { return a < b }},
		&compareStep{id: "compare.lte", apply: func(a, b float64) bool { return a <= b }},
	}
}

type compareStep struct {
	id    string
	apply func(a, b float64) bool
}

func (s *compareStep) PluginID() string { return s.id }

func (s *compareStep) Execute(_ context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
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
	flow.SetBool(outKey, s.apply(a, b))
	return nil
}
