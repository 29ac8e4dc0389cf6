package steps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludere/stepflow/internal/flowctx"
	"github.com/ludere/stepflow/pkg/schema"
)

func TestValueSteps_LiteralThenCopy(t *testing.T) {
	env := newTestEnv(t)
	flow := flowctx.New()

	literal := stepDef("value.literal")
	literal.Params["value"] = schema.StringValue("spawn_point_a")
	literal.Outputs["result"] = "level.spawn"
	require.NoError(t, env.runStep(t, literal, flow))

	cp := stepDef("value.copy")
	cp.Inputs["source"] = "level.spawn"
	cp.Outputs["target"] = "player.spawn"
	require.NoError(t, env.runStep(t, cp, flow))

	assert.Equal(t, "spawn_point_a", flow.String("player.spawn", ""))
}

func TestValueSteps_CopyMissingSource(t *testing.T) {
	env := newTestEnv(t)

	cp := stepDef("value.copy")
	cp.Inputs["source"] = "nothing.here"
	cp.Outputs["target"] = "dst"

	err := env.runStep(t, cp, flowctx.New())
	requireFlowCode(t, err, schema.ErrCodeData)
}

func TestValueSteps_Clear(t *testing.T) {
	env := newTestEnv(t)
	flow := flowctx.New()
	flow.SetNumber("score", 10)

	step := stepDef("value.clear")
	step.Inputs["target"] = "score"
	require.NoError(t, env.runStep(t, step, flow))
	assert.False(t, flow.Contains("score"))

	// Clearing an absent key is not an error.
	require.NoError(t, env.runStep(t, step, flow))
}

func TestValueSteps_DefaultOnlySeedsOnce(t *testing.T) {
	env := newTestEnv(t)
	flow := flowctx.New()

	def := stepDef("value.default")
	def.Params["value"] = schema.NumberValue(100)
	def.Outputs["target"] = "player.health"

	require.NoError(t, env.runStep(t, def, flow))
	assert.Equal(t, 100.0, flow.Number("player.health", -1))

	flow.SetNumber("player.health", 42)
	require.NoError(t, env.runStep(t, def, flow))
	assert.Equal(t, 42.0, flow.Number("player.health", -1))
}

func TestValueSteps_AssertExists(t *testing.T) {
	env := newTestEnv(t)
	flow := flowctx.New()
	flow.SetBool("ready", true)

	step := stepDef("value.assert_exists")
	step.Inputs["target"] = "ready"
	require.NoError(t, env.runStep(t, step, flow))

	step.Inputs["target"] = "missing"
	err := env.runStep(t, step, flow)
	requireFlowCode(t, err, schema.ErrCodeData)
}

func TestValueSteps_AssertType(t *testing.T) {
	env := newTestEnv(t)
	flow := flowctx.New()
	flow.SetNumber("score", 10)

	step := stepDef("value.assert_type")
	step.Inputs["target"] = "score"
	step.Params["type"] = schema.StringValue("number")
	require.NoError(t, env.runStep(t, step, flow))

	step.Params["type"] = schema.StringValue("string")
	err := env.runStep(t, step, flow)
	requireFlowCode(t, err, schema.ErrCodeData)
}

func TestValueSteps_AssertTypeUnknownName(t *testing.T) {
	env := newTestEnv(t)
	flow := flowctx.New()
	flow.SetNumber("score", 10)

	step := stepDef("value.assert_type")
	step.Inputs["target"] = "score"
	step.Params["type"] = schema.StringValue("quaternion")

	err := env.runStep(t, step, flow)
	requireFlowCode(t, err, schema.ErrCodeConfig)
}
