package steps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludere/stepflow/internal/flowctx"
	"github.com/ludere/stepflow/pkg/schema"
)

func TestNumberSteps_Add(t *testing.T) {
	env := newTestEnv(t)

	step := stepDef("number.add")
	step.Params["a"] = schema.NumberValue(2)
	step.Params["b"] = schema.NumberValue(3)
	step.Outputs["result"] = "sum"

	flow := flowctx.New()
	require.NoError(t, env.runStep(t, step, flow))

	n, ok := flow.TryNumber("sum")
	require.True(t, ok)
	assert.Equal(t, 5.0, n)
}

func TestNumberSteps_DivideByZero(t *testing.T) {
	env := newTestEnv(t)

	step := stepDef("number.div")
	step.Params["a"] = schema.NumberValue(1)
	step.Params["b"] = schema.NumberValue(0)
	step.Outputs["result"] = "quotient"

	err := env.runStep(t, step, flowctx.New())
	ferr := requireFlowCode(t, err, schema.ErrCodeExecution)
	assert.Equal(t, "division by zero", ferr.Message)
}

func TestNumberSteps_ClampRange(t *testing.T) {
	env := newTestEnv(t)

	step := stepDef("number.clamp")
	step.Params["value"] = schema.NumberValue(15)
	step.Params["min"] = schema.NumberValue(0)
	step.Params["max"] = schema.NumberValue(10)
	step.Outputs["result"] = "clamped"

	flow := flowctx.New()
	require.NoError(t, env.runStep(t, step, flow))
	assert.Equal(t, 10.0, flow.Number("clamped", -1))
}

func TestNumberSteps_ClampInvertedRange(t *testing.T) {
	env := newTestEnv(t)

	step := stepDef("number.clamp")
	step.Params["value"] = schema.NumberValue(5)
	step.Params["min"] = schema.NumberValue(10)
	step.Params["max"] = schema.NumberValue(0)
	step.Outputs["result"] = "clamped"

	err := env.runStep(t, step, flowctx.New())
	requireFlowCode(t, err, schema.ErrCodeData)
}

func TestNumberSteps_MissingResultOutput(t *testing.T) {
	env := newTestEnv(t)

	step := stepDef("number.add")
	step.Params["a"] = schema.NumberValue(2)
	step.Params["b"] = schema.NumberValue(3)

	err := env.runStep(t, step, flowctx.New())
	requireFlowCode(t, err, schema.ErrCodeConfig)
}

func TestStringSteps_Concat(t *testing.T) {
	env := newTestEnv(t)

	step := stepDef("string.concat")
	step.Inputs["a"] = "greeting"
	step.Params["b"] = schema.StringValue(", world")
	step.Outputs["result"] = "message"

	flow := flowctx.New()
	flow.SetString("greeting", "hello")
	require.NoError(t, env.runStep(t, step, flow))
	assert.Equal(t, "hello, world", flow.String("message", ""))
}

func TestStringSteps_Format(t *testing.T) {
	env := newTestEnv(t)

	step := stepDef("string.format")
	step.Params["template"] = schema.StringValue("{player.name} scored {player.score}")
	step.Outputs["result"] = "message"

	flow := flowctx.New()
	flow.SetString("player.name", "rook")
	flow.SetNumber("player.score", 120)
	require.NoError(t, env.runStep(t, step, flow))
	assert.Equal(t, "rook scored 120", flow.String("message", ""))
}

func TestStringSteps_FormatMissingKey(t *testing.T) {
	env := newTestEnv(t)

	step := stepDef("string.format")
	step.Params["template"] = schema.StringValue("hi {nobody}")
	step.Outputs["result"] = "message"

	err := env.runStep(t, step, flowctx.New())
	ferr := requireFlowCode(t, err, schema.ErrCodeData)
	assert.Equal(t, "nobody", ferr.Key)
}

func TestStringSteps_SplitAndJoin(t *testing.T) {
	env := newTestEnv(t)

	split := stepDef("string.split")
	split.Params["value"] = schema.StringValue("a|b|c")
	split.Params["separator"] = schema.StringValue("|")
	split.Outputs["result"] = "parts"

	flow := flowctx.New()
	require.NoError(t, env.runStep(t, split, flow))

	parts, ok := flow.TryStringList("parts")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b", "c"}, parts)

	join := stepDef("string.join")
	join.Inputs["items"] = "parts"
	join.Outputs["result"] = "joined"

	require.NoError(t, env.runStep(t, join, flow))
	assert.Equal(t, "a,b,c", flow.String("joined", ""))
}

func TestStringSteps_Unary(t *testing.T) {
	env := newTestEnv(t)
	flow := flowctx.New()
	flow.SetString("raw", "  Hello  ")

	for plugin, want := range map[string]string{
		"string.trim":  "Hello",
		"string.lower": "  hello  ",
		"string.upper": "  HELLO  ",
	} {
		step := stepDef(plugin)
		step.Inputs["value"] = "raw"
		step.Outputs["result"] = "out"
		require.NoError(t, env.runStep(t, step, flow))
		assert.Equal(t, want, flow.String("out", ""), plugin)
	}
}

func TestListSteps_Literal(t *testing.T) {
	env := newTestEnv(t)

	step := stepDef("list.literal")
	step.Params["values"] = schema.NumberListValue([]float64{1, 5, 9})
	step.Outputs["result"] = "scores"

	flow := flowctx.New()
	require.NoError(t, env.runStep(t, step, flow))

	ns, ok := flow.TryNumberList("scores")
	require.True(t, ok)
	assert.Equal(t, []float64{1, 5, 9}, ns)
}

func TestListSteps_FilterGt(t *testing.T) {
	env := newTestEnv(t)

	step := stepDef("list.filter.gt")
	step.Params["list"] = schema.NumberListValue([]float64{1, 5, 9})
	step.Params["value"] = schema.NumberValue(4)
	step.Outputs["result"] = "high"

	flow := flowctx.New()
	require.NoError(t, env.runStep(t, step, flow))

	ns, ok := flow.TryNumberList("high")
	require.True(t, ok)
	assert.Equal(t, []float64{5, 9}, ns)
}

func TestListSteps_AppendLeavesSourceIntact(t *testing.T) {
	env := newTestEnv(t)

	step := stepDef("list.append")
	step.Inputs["list"] = "names"
	step.Params["value"] = schema.StringValue("c")
	step.Outputs["result"] = "names.out"

	flow := flowctx.New()
	flow.SetStringList("names", []string{"a", "b"})
	require.NoError(t, env.runStep(t, step, flow))

	out, ok := flow.TryStringList("names.out")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b", "c"}, out)

	src, _ := flow.TryStringList("names")
	assert.Equal(t, []string{"a", "b"}, src)
}

func TestListSteps_ConcatKindMismatch(t *testing.T) {
	env := newTestEnv(t)

	step := stepDef("list.concat")
	step.Params["a"] = schema.StringListValue([]string{"a"})
	step.Params["b"] = schema.NumberListValue([]float64{1})
	step.Outputs["result"] = "out"

	err := env.runStep(t, step, flowctx.New())
	requireFlowCode(t, err, schema.ErrCodeData)
}

func TestListSteps_ReduceSumEmptyList(t *testing.T) {
	env := newTestEnv(t)

	step := stepDef("list.reduce.sum")
	step.Params["list"] = schema.NumberListValue(nil)
	step.Outputs["result"] = "total"

	flow := flowctx.New()
	require.NoError(t, env.runStep(t, step, flow))
	assert.Equal(t, 0.0, flow.Number("total", -1))
}

func TestListSteps_ReduceMinEmptyListFails(t *testing.T) {
	env := newTestEnv(t)

	step := stepDef("list.reduce.min")
	step.Params["list"] = schema.NumberListValue(nil)
	step.Outputs["result"] = "lowest"

	err := env.runStep(t, step, flowctx.New())
	requireFlowCode(t, err, schema.ErrCodeData)
}

func TestListSteps_ReduceMax(t *testing.T) {
	env := newTestEnv(t)

	step := stepDef("list.reduce.max")
	step.Params["list"] = schema.NumberListValue([]float64{3, 11, 7})
	step.Outputs["result"] = "best"

	flow := flowctx.New()
	require.NoError(t, env.runStep(t, step, flow))
	assert.Equal(t, 11.0, flow.Number("best", -1))
}

func TestListSteps_MapMul(t *testing.T) {
	env := newTestEnv(t)

	step := stepDef("list.map.mul")
	step.Params["list"] = schema.NumberListValue([]float64{1, 2, 3})
	step.Params["value"] = schema.NumberValue(10)
	step.Outputs["result"] = "scaled"

	flow := flowctx.New()
	require.NoError(t, env.runStep(t, step, flow))

	ns, _ := flow.TryNumberList("scaled")
	assert.Equal(t, []float64{10, 20, 30}, ns)
}

func TestBoolSteps_AndOrNot(t *testing.T) {
	env := newTestEnv(t)
	flow := flowctx.New()
	flow.SetBool("t", true)
	flow.SetBool("f", false)

	and := stepDef("bool.and")
	and.Inputs["a"] = "t"
	and.Inputs["b"] = "f"
	and.Outputs["result"] = "and.out"
	require.NoError(t, env.runStep(t, and, flow))
	assert.False(t, flow.Bool("and.out", true))

	or := stepDef("bool.or")
	or.Inputs["a"] = "t"
	or.Inputs["b"] = "f"
	or.Outputs["result"] = "or.out"
	require.NoError(t, env.runStep(t, or, flow))
	assert.True(t, flow.Bool("or.out", false))

	not := stepDef("bool.not")
	not.Inputs["value"] = "t"
	not.Outputs["result"] = "not.out"
	require.NoError(t, env.runStep(t, not, flow))
	assert.False(t, flow.Bool("not.out", true))
}

func TestCompareSteps(t *testing.T) {
	env := newTestEnv(t)
	flow := flowctx.New()
	flow.SetNumber("a", 3)
	flow.SetNumber("b", 7)

	for plugin, want := range map[string]bool{
		"compare.eq":  false,
		"compare.ne":  true,
		"compare.gt":  false,
		"compare.gte": false,
		"compare.lt":  true,
		"compare.lte": true,
	} {
		step := stepDef(plugin)
		step.Inputs["a"] = "a"
		step.Inputs["b"] = "b"
		step.Outputs["result"] = "out"
		require.NoError(t, env.runStep(t, step, flow))
		assert.Equal(t, want, flow.Bool("out", !want), plugin)
	}
}
