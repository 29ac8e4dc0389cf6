package steps

import (
	"github.com/ludere/stepflow/internal/flowctx"
	"github.com/ludere/stepflow/pkg/schema"
)

// Binding resolution distinguishes two failure classes:
//
//   - configuration errors: the slot is absent from the StepDefinition or
//     a literal parameter has the wrong type (bad authoring);
//   - data errors: the binding is declared but the context lacks the value
//     or holds a different runtime type.
//
// Both are fatal; control-flow steps decide what propagation means.

// RequiredInputKey returns the context key bound to an input slot, or a
// configuration error naming the plugin and slot.
func RequiredInputKey(step *schema.StepDefinition, slot string) (string, error) {
	key, ok := step.Inputs[slot]
	if !ok {
		return "", schema.NewErrorf(schema.ErrCodeConfig, "%s requires '%s' input", step.Plugin, slot).
			WithPlugin(step.Plugin).WithKey(slot)
	}
	return key, nil
}

// RequiredOutputKey returns the context key bound to an output slot, or a
// configuration error naming the plugin and slot.
func RequiredOutputKey(step *schema.StepDefinition, slot string) (string, error) {
	key, ok := step.Outputs[slot]
	if !ok {
		return "", schema.NewErrorf(schema.ErrCodeConfig, "%s requires '%s' output", step.Plugin, slot).
			WithPlugin(step.Plugin).WithKey(slot)
	}
	return key, nil
}

// OutputKeyOr returns the context key bound to an output slot, or def when
// the slot is undeclared.
func OutputKeyOr(step *schema.StepDefinition, slot, def string) string {
	if key, ok := step.Outputs[slot]; ok {
		return key
	}
	return def
}

// FindParam returns the literal parameter bound to a slot, if declared.
func FindParam(step *schema.StepDefinition, slot string) (schema.Value, bool) {
	v, ok := step.Params[slot]
	return v, ok
}

// RequiredParam returns the literal parameter bound to a slot, or a
// configuration error.
func RequiredParam(step *schema.StepDefinition, slot string) (schema.Value, error) {
	v, ok := step.Params[slot]
	if !ok {
		return schema.Value{}, schema.NewErrorf(schema.ErrCodeConfig, "%s requires '%s' parameter", step.Plugin, slot).
			WithPlugin(step.Plugin).WithKey(slot)
	}
	return v, nil
}

// RequiredStringParam returns a string parameter or a configuration error
// when absent or mistyped.
func RequiredStringParam(step *schema.StepDefinition, slot string) (string, error) {
	v, err := RequiredParam(step, slot)
	if err != nil {
		return "", err
	}
	s, ok := v.Text()
	if !ok {
		return "", paramTypeErr(step, slot, schema.KindString)
	}
	return s, nil
}

// RequiredNumberParam returns a number parameter or a configuration error.
func RequiredNumberParam(step *schema.StepDefinition, slot string) (float64, error) {
	v, err := RequiredParam(step, slot)
	if err != nil {
		return 0, err
	}
	n, ok := v.Number()
	if !ok {
		return 0, paramTypeErr(step, slot, schema.KindNumber)
	}
	return n, nil
}

// RequiredBoolParam returns a bool parameter or a configuration error.
func RequiredBoolParam(step *schema.StepDefinition, slot string) (bool, error) {
	v, err := RequiredParam(step, slot)
	if err != nil {
		return false, err
	}
	b, ok := v.Bool()
	if !ok {
		return false, paramTypeErr(step, slot, schema.KindBool)
	}
	return b, nil
}

func paramTypeErr(step *schema.StepDefinition, slot string, want schema.Kind) *schema.FlowError {
	return schema.NewErrorf(schema.ErrCodeConfig, "%s: parameter '%s' must be a %s", step.Plugin, slot, want).
		WithPlugin(step.Plugin).WithKey(slot)
}

// DataErr builds the standard data error: step name, offending key, and
// the expected type.
func DataErr(step *schema.StepDefinition, key string, want schema.Kind) *schema.FlowError {
	return schema.NewErrorf(schema.ErrCodeData, "%s: context key '%s' missing or not %s", step.Plugin, key, want).
		WithPlugin(step.Plugin).WithKey(key)
}

// --- Argument helpers ---
//
// A step argument resolves in fallback order: context-bound input first,
// then literal parameter, then the caller's hard default. The *Arg
// functions report (value, found, error); the Required*Arg variants turn
// "not found" into a configuration error and the *ArgOr variants into the
// default.

// NumberArg resolves a number argument.
func NumberArg(step *schema.StepDefinition, flow *flowctx.Context, slot string) (float64, bool, error) {
	if key, ok := step.Inputs[slot]; ok {
		n, ok := flow.TryNumber(key)
		if !ok {
			return 0, false, DataErr(step, key, schema.KindNumber)
		}
		return n, true, nil
	}
	if v, ok := step.Params[slot]; ok {
		n, ok := v.Number()
		if !ok {
			return 0, false, paramTypeErr(step, slot, schema.KindNumber)
		}
		return n, true, nil
	}
	return 0, false, nil
}

// RequiredNumberArg resolves a number argument or fails with a
// configuration error when the slot is bound nowhere.
func RequiredNumberArg(step *schema.StepDefinition, flow *flowctx.Context, slot string) (float64, error) {
	n, found, err := NumberArg(step, flow, slot)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, schema.NewErrorf(schema.ErrCodeConfig, "%s requires '%s' input", step.Plugin, slot).
			WithPlugin(step.Plugin).WithKey(slot)
	}
	return n, nil
}

// NumberArgOr resolves a number argument with a hard default.
func NumberArgOr(step *schema.StepDefinition, flow *flowctx.Context, slot string, def float64) (float64, error) {
	n, found, err := NumberArg(step, flow, slot)
	if err != nil {
		return 0, err
	}
	if !found {
		return def, nil
	}
	return n, nil
}

// StringArg resolves a string argument.
func StringArg(step *schema.StepDefinition, flow *flowctx.Context, slot string) (string, bool, error) {
	if key, ok := step.Inputs[slot]; ok {
		s, ok := flow.TryString(key)
		if !ok {
			return "", false, DataErr(step, key, schema.KindString)
		}
		return s, true, nil
	}
	if v, ok := step.Params[slot]; ok {
		s, ok := v.Text()
		if !ok {
			return "", false, paramTypeErr(step, slot, schema.KindString)
		}
		return s, true, nil
	}
	return "", false, nil
}

// RequiredStringArg resolves a string argument or fails with a
// configuration error.
func RequiredStringArg(step *schema.StepDefinition, flow *flowctx.Context, slot string) (string, error) {
	s, found, err := StringArg(step, flow, slot)
	if err != nil {
		return "", err
	}
	if !found {
		return "", schema.NewErrorf(schema.ErrCodeConfig, "%s requires '%s' input", step.Plugin, slot).
			WithPlugin(step.Plugin).WithKey(slot)
	}
	return s, nil
}

// StringArgOr resolves a string argument with a hard default.
func StringArgOr(step *schema.StepDefinition, flow *flowctx.Context, slot, def string) (string, error) {
	s, found, err := StringArg(step, flow, slot)
	if err != nil {
		return "", err
	}
	if !found {
		return def, nil
	}
	return s, nil
}

// BoolArg resolves a bool argument.
func BoolArg(step *schema.StepDefinition, flow *flowctx.Context, slot string) (bool, bool, error) {
	if key, ok := step.Inputs[slot]; ok {
		b, ok := flow.TryBool(key)
		if !ok {
			return false, false, DataErr(step, key, schema.KindBool)
		}
		return b, true, nil
	}
	if v, ok := step.Params[slot]; ok {
		b, ok := v.Bool()
		if !ok {
			return false, false, paramTypeErr(step, slot, schema.KindBool)
		}
		return b, true, nil
	}
	return false, false, nil
}

// RequiredBoolArg resolves a bool argument or fails with a configuration
// error.
func RequiredBoolArg(step *schema.StepDefinition, flow *flowctx.Context, slot string) (bool, error) {
	b, found, err := BoolArg(step, flow, slot)
	if err != nil {
		return false, err
	}
	if !found {
		return false, schema.NewErrorf(schema.ErrCodeConfig, "%s requires '%s' input", step.Plugin, slot).
			WithPlugin(step.Plugin).WithKey(slot)
	}
	return b, nil
}

// BoolArgOr resolves a bool argument with a hard default.
func BoolArgOr(step *schema.StepDefinition, flow *flowctx.Context, slot string, def bool) (bool, error) {
	b, found, err := BoolArg(step, flow, slot)
	if err != nil {
		return false, err
	}
	if !found {
		return def, nil
	}
	return b, nil
}

// RequiredNumberListArg resolves a number-list argument or fails with a
// configuration error.
func RequiredNumberListArg(step *schema.StepDefinition, flow *flowctx.Context, slot string) ([]float64, error) {
	if key, ok := step.Inputs[slot]; ok {
		ns, ok := flow.TryNumberList(key)
		if !ok {
			return nil, DataErr(step, key, schema.KindNumberList)
		}
		return ns, nil
	}
	if v, ok := step.Params[slot]; ok {
		ns, ok := v.NumberList()
		if !ok {
			return nil, paramTypeErr(step, slot, schema.KindNumberList)
		}
		return ns, nil
	}
	return nil, schema.NewErrorf(schema.ErrCodeConfig, "%s requires '%s' input", step.Plugin, slot).
		WithPlugin(step.Plugin).WithKey(slot)
}

// RequiredStringListArg resolves a string-list argument or fails with a
// configuration error.
func RequiredStringListArg(step *schema.StepDefinition, flow *flowctx.Context, slot string) ([]string, error) {
	if key, ok := step.Inputs[slot]; ok {
		ss, ok := flow.TryStringList(key)
		if !ok {
			return nil, DataErr(step, key, schema.KindStringList)
		}
		return ss, nil
	}
	if v, ok := step.Params[slot]; ok {
		ss, ok := v.StringList()
		if !ok {
			return nil, paramTypeErr(step, slot, schema.KindStringList)
		}
		return ss, nil
	}
	return nil, schema.NewErrorf(schema.ErrCodeConfig, "%s requires '%s' input", step.Plugin, slot).
		WithPlugin(step.Plugin).WithKey(slot)
}

// RequiredVec3Arg resolves a 3-component vector supplied as a number-list
// argument.
func RequiredVec3Arg(step *schema.StepDefinition, flow *flowctx.Context, slot string) (schema.Vec3, error) {
	ns, err := RequiredNumberListArg(step, flow, slot)
	if err != nil {
		return schema.Vec3{}, err
	}
	if len(ns) != 3 {
		return schema.Vec3{}, schema.NewErrorf(schema.ErrCodeData, "%s: '%s' must hold exactly 3 numbers, got %d",
			step.Plugin, slot, len(ns)).WithPlugin(step.Plugin).WithKey(slot)
	}
	return schema.Vec3{ns[0], ns[1], ns[2]}, nil
}

// Vec3ArgOr resolves a 3-component vector with a hard default.
func Vec3ArgOr(step *schema.StepDefinition, flow *flowctx.Context, slot string, def schema.Vec3) (schema.Vec3, error) {
	_, inInputs := step.Inputs[slot]
	_, inParams := step.Params[slot]
	if !inInputs && !inParams {
		return def, nil
	}
	return RequiredVec3Arg(step, flow, slot)
}
