package steps

import (
	"context"

	"github.com/ludere/stepflow/internal/flowctx"
	"github.com/ludere/stepflow/pkg/schema"
)

// --- control.loop.for_each ---
//
// 'items' binds a context key holding a string or number list. 'item_var'
// and 'step_id' carry literals: the variable name each element is published
// under and the plugin to dispatch per element. The loop also publishes
// '<item_var>.index' as a number so the body can tell iterations apart.

type forEachStep struct {
	lookup Lookup
}

// NewForEachStep creates the list iteration step.
func NewForEachStep(lookup Lookup) Step {
	return &forEachStep{lookup: lookup}
}

func (s *forEachStep) PluginID() string { return "control.loop.for_each" }

func (s *forEachStep) Execute(ctx context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	itemsKey, err := RequiredInputKey(step, "items")
	if err != nil {
		return err
	}
	itemVar, err := RequiredInputKey(step, "item_var")
	if err != nil {
		return err
	}
	bodyPlugin, err := RequiredInputKey(step, "step_id")
	if err != nil {
		return err
	}

	items, ok := flow.Lookup(itemsKey)
	if !ok {
		return schema.NewErrorf(schema.ErrCodeData, "%s: context key '%s' is missing", s.PluginID(), itemsKey).
			WithPlugin(s.PluginID()).WithKey(itemsKey)
	}

	body, err := s.lookup.Get(bodyPlugin)
	if err != nil {
		return err
	}
	call := schema.CallStep(bodyPlugin)
	indexKey := itemVar + ".index"

	run := func(i int, element schema.Value) error {
		if err := ctx.Err(); err != nil {
			return schema.NewError(schema.ErrCodeExecution, "loop canceled").
				WithPlugin(s.PluginID()).WithCause(err)
		}
		flow.Set(itemVar, element)
		flow.SetNumber(indexKey, float64(i))
		return body.Execute(ctx, call, flow)
	}

	switch items.Kind() {
	case schema.KindStringList:
		ss, _ := items.StringList()
		for i, item := range ss {
			if err := run(i, schema.StringValue(item)); err != nil {
				return err
			}
		}
	case schema.KindNumberList:
		ns, _ := items.NumberList()
		for i, item := range ns {
			if err := run(i, schema.NumberValue(item)); err != nil {
				return err
			}
		}
	default:
		return schema.NewErrorf(schema.ErrCodeData, "%s: context key '%s' holds a %s, want a list",
			s.PluginID(), itemsKey, items.Kind()).
			WithPlugin(s.PluginID()).WithKey(itemsKey)
	}
	return nil
}
