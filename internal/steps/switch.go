package steps

import (
	"context"
	"strconv"

	"github.com/ludere/stepflow/internal/flowctx"
	"github.com/ludere/stepflow/pkg/schema"
)

// --- control.condition.switch ---
//
// The selector value is canonicalized to a string literal: strings as-is,
// bools as "true"/"false", numbers truncated to their integer part. The
// step then dispatches the plugin bound to the 'case_<literal>' slot,
// falling back to the 'default' slot. No match and no default is a no-op,
// which lets a workflow switch on sparse key sets without padding cases.

type switchStep struct {
	lookup Lookup
}

// NewSwitchStep creates the multi-way branch step.
func NewSwitchStep(lookup Lookup) Step {
	return &switchStep{lookup: lookup}
}

func (s *switchStep) PluginID() string { return "control.condition.switch" }

func (s *switchStep) Execute(ctx context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	valueKey, err := RequiredInputKey(step, "value")
	if err != nil {
		return err
	}
	v, ok := flow.Lookup(valueKey)
	if !ok {
		return schema.NewErrorf(schema.ErrCodeData, "%s: context key '%s' is missing", s.PluginID(), valueKey).
			WithPlugin(s.PluginID()).WithKey(valueKey)
	}

	literal, ok := switchLiteral(v)
	if !ok {
		return schema.NewErrorf(schema.ErrCodeData, "%s: context key '%s' holds a %s, want bool, number or string",
			s.PluginID(), valueKey, v.Kind()).
			WithPlugin(s.PluginID()).WithKey(valueKey)
	}

	branch, ok := step.Inputs["case_"+literal]
	if !ok {
		branch, ok = step.Inputs["default"]
	}
	if !ok || branch == "" {
		return nil
	}

	target, err := s.lookup.Get(branch)
	if err != nil {
		return err
	}
	return target.Execute(ctx, schema.CallStep(branch), flow)
}

func switchLiteral(v schema.Value) (string, bool) {
	switch v.Kind() {
	case schema.KindString:
		s, _ := v.Text()
		return s, true
	case schema.KindBool:
		b, _ := v.Bool()
		return strconv.FormatBool(b), true
	case schema.KindNumber:
		n, _ := v.Number()
		return strconv.FormatInt(int64(n), 10), true
	default:
		return "", false
	}
}
