package steps

import (
	"context"
	"encoding/json"

	"github.com/ludere/stepflow/internal/expressions"
	"github.com/ludere/stepflow/internal/flowctx"
	"github.com/ludere/stepflow/pkg/schema"
)

// DataSteps returns the data plumbing step family.
func DataSteps(jq *expressions.GoJQEngine) []Step {
	return []Step{
		&dataSerializeStep{},
		&dataDeserializeStep{},
		&dataQueryStep{engine: jq},
	}
}

// --- data.serialize ---
//
// Renders a context value as kind-tagged JSON so it can round-trip through
// data.deserialize without losing the string/path/handle distinction.

type dataSerializeStep struct{}

func (s *dataSerializeStep) PluginID() string { return "data.serialize" }

func (s *dataSerializeStep) Execute(_ context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	srcKey, err := RequiredInputKey(step, "source")
	if err != nil {
		return err
	}
	outKey, err := RequiredOutputKey(step, "result")
	if err != nil {
		return err
	}
	v, ok := flow.Lookup(srcKey)
	if !ok {
		return schema.NewErrorf(schema.ErrCodeData, "%s: context key '%s' is missing", s.PluginID(), srcKey).
			WithPlugin(s.PluginID()).WithKey(srcKey)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return schema.NewErrorf(schema.ErrCodeExecution, "%s: %s", s.PluginID(), err).
			WithPlugin(s.PluginID()).WithCause(err)
	}
	flow.SetString(outKey, string(data))
	return nil
}

// --- data.deserialize ---

type dataDeserializeStep struct{}

func (s *dataDeserializeStep) PluginID() string { return "data.deserialize" }

func (s *dataDeserializeStep) Execute(_ context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	text, err := RequiredStringArg(step, flow, "source")
	if err != nil {
		return err
	}
	outKey, err := RequiredOutputKey(step, "result")
	if err != nil {
		return err
	}

	var envelope struct {
		Kind  string          `json:"kind"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal([]byte(text), &envelope); err != nil {
		return schema.NewErrorf(schema.ErrCodeParse, "%s: %s", s.PluginID(), err).
			WithPlugin(s.PluginID()).WithCause(err)
	}
	kind, ok := schema.KindFromName(envelope.Kind)
	if !ok {
		return schema.NewErrorf(schema.ErrCodeParse, "%s: unknown kind '%s'", s.PluginID(), envelope.Kind).
			WithPlugin(s.PluginID())
	}

	v, err := decodeTagged(kind, envelope.Value)
	if err != nil {
		return schema.NewErrorf(schema.ErrCodeParse, "%s: %s", s.PluginID(), err).
			WithPlugin(s.PluginID()).WithCause(err)
	}
	flow.Set(outKey, v)
	return nil
}

func decodeTagged(kind schema.Kind, raw json.RawMessage) (schema.Value, error) {
	switch kind {
	case schema.KindBool:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return schema.Value{}, err
		}
		return schema.BoolValue(b), nil
	case schema.KindNumber:
		var n float64
		if err := json.Unmarshal(raw, &n); err != nil {
			return schema.Value{}, err
		}
		return schema.NumberValue(n), nil
	case schema.KindString, schema.KindPath, schema.KindHandle:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return schema.Value{}, err
		}
		switch kind {
		case schema.KindPath:
			return schema.PathValue(s), nil
		case schema.KindHandle:
			return schema.HandleValue(schema.Handle(s)), nil
		default:
			return schema.StringValue(s), nil
		}
	case schema.KindStringList:
		var ss []string
		if err := json.Unmarshal(raw, &ss); err != nil {
			return schema.Value{}, err
		}
		return schema.StringListValue(ss), nil
	case schema.KindNumberList:
		var ns []float64
		if err := json.Unmarshal(raw, &ns); err != nil {
			return schema.Value{}, err
		}
		return schema.NumberListValue(ns), nil
	case schema.KindCameraPose:
		var pose schema.CameraPose
		if err := json.Unmarshal(raw, &pose); err != nil {
			return schema.Value{}, err
		}
		return schema.PoseValue(pose), nil
	default:
		return schema.Value{}, schema.NewErrorf(schema.ErrCodeParse, "kind '%s' cannot be deserialized", kind)
	}
}

// --- data.query ---
//
// Runs a jq query with the context snapshot as the input object:
// '."player.scores" | max'. Results that fit the value model are stored
// under 'result'; anything else fails the step.

type dataQueryStep struct {
	engine *expressions.GoJQEngine
}

func (s *dataQueryStep) PluginID() string { return "data.query" }

func (s *dataQueryStep) Execute(ctx context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	query, err := RequiredStringParam(step, "query")
	if err != nil {
		return err
	}
	outKey, err := RequiredOutputKey(step, "result")
	if err != nil {
		return err
	}

	out, err := s.engine.Evaluate(ctx, query, flow.Snapshot())
	if err != nil {
		return err
	}
	v, ok := schema.FromAny(out)
	if !ok {
		return schema.NewErrorf(schema.ErrCodeExecution,
			"%s: query %q produced unstorable result of type %T", s.PluginID(), query, out).
			WithPlugin(s.PluginID())
	}
	flow.Set(outKey, v)
	return nil
}
