package steps

import (
	"context"
	"math"

	"github.com/ludere/stepflow/internal/flowctx"
	"github.com/ludere/stepflow/pkg/schema"
)

// ListSteps returns the list manipulation step family.
func ListSteps() []Step {
	return []Step{
		&listLiteralStep{},
		&listAppendStep{},
		&listConcatStep{},
		&listCountStep{},
		&listFilterEqualsStep{},
		&listFilterGtStep{},
		&listMapStep{id: "list.map.add", apply: func(v, operand float64) float64 { return v + operand }},
		&listMapStep{id: "list.map.mul", apply: func(v, operand float64) float64 { return v * operand }},
		&listReduceStep{id: "list.reduce.sum", seed: 0, apply: func(acc, v float64) float64 { return acc + v }},
		&listReduceStep{id: "list.reduce.min", needsItems: true, seed: math.Inf(1), apply: math.Min},
		&listReduceStep{id: "list.reduce.max", needsItems: true, seed: math.Inf(-1), apply: math.Max},
	}
}

func listValueAt(step *schema.StepDefinition, flow *flowctx.Context, slot string) (schema.Value, error) {
	if key, ok := step.Inputs[slot]; ok {
		v, ok := flow.Lookup(key)
		if !ok || (v.Kind() != schema.KindStringList && v.Kind() != schema.KindNumberList) {
			return schema.Value{}, DataErr(step, key, schema.KindNumberList)
		}
		return v, nil
	}
	if v, ok := step.Params[slot]; ok {
		if v.Kind() != schema.KindStringList && v.Kind() != schema.KindNumberList {
			return schema.Value{}, schema.NewErrorf(schema.ErrCodeConfig, "%s: parameter '%s' must be a list",
				step.Plugin, slot).WithPlugin(step.Plugin).WithKey(slot)
		}
		return v, nil
	}
	return schema.Value{}, schema.NewErrorf(schema.ErrCodeConfig, "%s requires '%s' input", step.Plugin, slot).
		WithPlugin(step.Plugin).WithKey(slot)
}

// --- list.literal ---

type listLiteralStep struct{}

func (s *listLiteralStep) PluginID() string { return "list.literal" }

func (s *listLiteralStep) Execute(_ context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	v, err := RequiredParam(step, "values")
	if err != nil {
		return err
	}
	if v.Kind() != schema.KindStringList && v.Kind() != schema.KindNumberList {
		return schema.NewErrorf(schema.ErrCodeConfig, "%s: parameter 'values' must be a list", s.PluginID()).
			WithPlugin(s.PluginID()).WithKey("values")
	}
	outKey, err := RequiredOutputKey(step, "result")
	if err != nil {
		return err
	}
	flow.Set(outKey, v)
	return nil
}

// --- list.append ---

type listAppendStep struct{}

func (s *listAppendStep) PluginID() string { return "list.append" }

func (s *listAppendStep) Execute(_ context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	list, err := listValueAt(step, flow, "list")
	if err != nil {
		return err
	}
	outKey, err := RequiredOutputKey(step, "result")
	if err != nil {
		return err
	}

	switch list.Kind() {
	case schema.KindStringList:
		v, err := RequiredStringArg(step, flow, "value")
		if err != nil {
			return err
		}
		ss, _ := list.StringList()
		out := make([]string, 0, len(ss)+1)
		out = append(out, ss...)
		flow.SetStringList(outKey, append(out, v))
	case schema.KindNumberList:
		v, err := RequiredNumberArg(step, flow, "value")
		if err != nil {
			return err
		}
		ns, _ := list.NumberList()
		out := make([]float64, 0, len(ns)+1)
		out = append(out, ns...)
		flow.SetNumberList(outKey, append(out, v))
	}
	return nil
}

// --- list.concat ---

type listConcatStep struct{}

func (s *listConcatStep) PluginID() string { return "list.concat" }

func (s *listConcatStep) Execute(_ context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	a, err := listValueAt(step, flow, "a")
	if err != nil {
		return err
	}
	b, err := listValueAt(step, flow, "b")
	if err != nil {
		return err
	}
	if a.Kind() != b.Kind() {
		return schema.NewErrorf(schema.ErrCodeData, "%s: cannot concatenate %s with %s", s.PluginID(), a.Kind(), b.Kind()).
			WithPlugin(s.PluginID())
	}
	outKey, err := RequiredOutputKey(step, "result")
	if err != nil {
		return err
	}

	switch a.Kind() {
	case schema.KindStringList:
		as, _ := a.StringList()
		bs, _ := b.StringList()
		out := make([]string, 0, len(as)+len(bs))
		flow.SetStringList(outKey, append(append(out, as...), bs...))
	case schema.KindNumberList:
		an, _ := a.NumberList()
		bn, _ := b.NumberList()
		out := make([]float64, 0, len(an)+len(bn))
		flow.SetNumberList(outKey, append(append(out, an...), bn...))
	}
	return nil
}

// --- list.count ---

type listCountStep struct{}

func (s *listCountStep) PluginID() string { return "list.count" }

func (s *listCountStep) Execute(_ context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	list, err := listValueAt(step, flow, "list")
	if err != nil {
		return err
	}
	outKey, err := RequiredOutputKey(step, "result")
	if err != nil {
		return err
	}
	n := 0
	if ss, ok := list.StringList(); ok {
		n = len(ss)
	} else if ns, ok := list.NumberList(); ok {
		n = len(ns)
	}
	flow.SetNumber(outKey, float64(n))
	return nil
}

// --- list.filter.equals ---

type listFilterEqualsStep struct{}

func (s *listFilterEqualsStep) PluginID() string { return "list.filter.equals" }

func (s *listFilterEqualsStep) Execute(_ context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	list, err := listValueAt(step, flow, "list")
	if err != nil {
		return err
	}
	outKey, err := RequiredOutputKey(step, "result")
	if err != nil {
		return err
	}

	switch list.Kind() {
	case schema.KindStringList:
		want, err := RequiredStringArg(step, flow, "value")
		if err != nil {
			return err
		}
		ss, _ := list.StringList()
		out := make([]string, 0, len(ss))
		for _, item := range ss {
			if item == want {
				out = append(out, item)
			}
		}
		flow.SetStringList(outKey, out)
	case schema.KindNumberList:
		want, err := RequiredNumberArg(step, flow, "value")
		if err != nil {
			return err
		}
		ns, _ := list.NumberList()
		out := make([]float64, 0, len(ns))
		for _, item := range ns {
			if item == want {
				out = append(out, item)
			}
		}
		flow.SetNumberList(outKey, out)
	}
	return nil
}

// --- list.filter.gt ---

type listFilterGtStep struct{}

func (s *listFilterGtStep) PluginID() string { return "list.filter.gt" }

func (s *listFilterGtStep) Execute(_ context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	ns, err := RequiredNumberListArg(step, flow, "list")
	if err != nil {
		return err
	}
	threshold, err := RequiredNumberArg(step, flow, "value")
	if err != nil {
		return err
	}
	outKey, err := RequiredOutputKey(step, "result")
	if err != nil {
		return err
	}
	out := make([]float64, 0, len(ns))
	for _, item := range ns {
		if item > threshold {
			out = append(out, item)
		}
	}
	flow.SetNumberList(outKey, out)
	return nil
}

// listMapStep applies a binary operation element-wise with a fixed operand.
type listMapStep struct {
	id    string
	apply func(v, operand float64) float64
}

func (s *listMapStep) PluginID() string { return s.id }

func (s *listMapStep) Execute(_ context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	ns, err := RequiredNumberListArg(step, flow, "list")
	if err != nil {
		return err
	}
	operand, err := RequiredNumberArg(step, flow, "value")
	if err != nil {
		return err
	}
	outKey, err := RequiredOutputKey(step, "result")
	if err != nil {
		return err
	}
	out := make([]float64, len(ns))
	for i, item := range ns {
		out[i] = s.apply(item, operand)
	}
	flow.SetNumberList(outKey, out)
	return nil
}

// listReduceStep folds a number list into a single number. Reductions with
// no identity element (min, max) fail on an empty list.
type listReduceStep struct {
	id         string
	seed       float64
	needsItems bool
	apply      func(acc, v float64) float64
}

func (s *listReduceStep) PluginID() string { return s.id }

func (s *listReduceStep) Execute(_ context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	ns, err := RequiredNumberListArg(step, flow, "list")
	if err != nil {
		return err
	}
	if s.needsItems && len(ns) == 0 {
		return schema.NewErrorf(schema.ErrCodeData, "%s: list is empty", s.id).WithPlugin(s.id)
	}
	outKey, err := RequiredOutputKey(step, "result")
	if err != nil {
		return err
	}
	acc := s.seed
	for _, item := range ns {
		acc = s.apply(acc, item)
	}
	flow.SetNumber(outKey, acc)
	return nil
}
