package steps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludere/stepflow/internal/flowctx"
	"github.com/ludere/stepflow/pkg/schema"
)

func TestRequiredInputKey_Missing(t *testing.T) {
	step := stepDef("number.add")

	_, err := RequiredInputKey(step, "a")
	ferr := requireFlowCode(t, err, schema.ErrCodeConfig)
	assert.Equal(t, "number.add requires 'a' input", ferr.Message)
	assert.Equal(t, "number.add", ferr.Plugin)
	assert.Equal(t, "a", ferr.Key)
}

func TestNumberArg_PrefersInputOverParam(t *testing.T) {
	step := stepDef("number.add")
	step.Inputs["a"] = "bound.key"
	step.Params["a"] = schema.NumberValue(99)

	flow := flowctx.New()
	flow.SetNumber("bound.key", 7)

	n, found, err := NumberArg(step, flow, "a")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 7.0, n)
}

func TestNumberArg_FallsBackToParam(t *testing.T) {
	step := stepDef("number.add")
	step.Params["a"] = schema.NumberValue(99)

	n, found, err := NumberArg(step, flowctx.New(), "a")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 99.0, n)
}

func TestNumberArg_BoundKeyMissing(t *testing.T) {
	step := stepDef("number.add")
	step.Inputs["a"] = "bound.key"

	_, _, err := NumberArg(step, flowctx.New(), "a")
	ferr := requireFlowCode(t, err, schema.ErrCodeData)
	assert.Equal(t, "number.add: context key 'bound.key' missing or not number", ferr.Message)
}

func TestNumberArg_BoundKeyWrongKind(t *testing.T) {
	step := stepDef("number.add")
	step.Inputs["a"] = "bound.key"

	flow := flowctx.New()
	flow.SetString("bound.key", "not a number")

	_, _, err := NumberArg(step, flow, "a")
	requireFlowCode(t, err, schema.ErrCodeData)
}

func TestNumberArgOr_Default(t *testing.T) {
	step := stepDef("physics.step")

	n, err := NumberArgOr(step, flowctx.New(), "dt", 1.0/60)
	require.NoError(t, err)
	assert.Equal(t, 1.0/60, n)
}

func TestRequiredNumberArg_Unbound(t *testing.T) {
	step := stepDef("number.add")

	_, err := RequiredNumberArg(step, flowctx.New(), "a")
	requireFlowCode(t, err, schema.ErrCodeConfig)
}

func TestRequiredStringParam_WrongKind(t *testing.T) {
	step := stepDef("control.loop.while")
	step.Params["condition_key"] = schema.NumberValue(1)

	_, err := RequiredStringParam(step, "condition_key")
	ferr := requireFlowCode(t, err, schema.ErrCodeConfig)
	assert.Contains(t, ferr.Message, "must be a string")
}

func TestRequiredVec3Arg_WrongLength(t *testing.T) {
	step := stepDef("camera.setup")
	step.Params["position"] = schema.NumberListValue([]float64{1, 2})

	_, err := RequiredVec3Arg(step, flowctx.New(), "position")
	ferr := requireFlowCode(t, err, schema.ErrCodeData)
	assert.Contains(t, ferr.Message, "exactly 3 numbers")
}

func TestVec3ArgOr_Default(t *testing.T) {
	step := stepDef("camera.setup")

	v, err := Vec3ArgOr(step, flowctx.New(), "position", schema.Vec3{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, schema.Vec3{1, 2, 3}, v)
}

func TestOutputKeyOr_Default(t *testing.T) {
	step := stepDef("control.try.catch")
	assert.Equal(t, "error.message", OutputKeyOr(step, "error_output", "error.message"))

	step.Outputs["error_output"] = "custom.err"
	assert.Equal(t, "custom.err", OutputKeyOr(step, "error_output", "error.message"))
}

func TestStringArg_ReadsBoundInput(t *testing.T) {
	step := stepDef("string.concat")
	step.Inputs["a"] = "greeting"

	flow := flowctx.New()
	flow.SetString("greeting", "hello")

	s, found, err := StringArg(step, flow, "a")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "hello", s)
}

func TestBoolArgOr_ParamWrongKind(t *testing.T) {
	step := stepDef("audio.play")
	step.Params["looping"] = schema.StringValue("yes")

	_, err := BoolArgOr(step, flowctx.New(), "looping", false)
	requireFlowCode(t, err, schema.ErrCodeConfig)
}
