package steps

import (
	"context"

	"github.com/ludere/stepflow/internal/flowctx"
	"github.com/ludere/stepflow/pkg/schema"
)

// ValueSteps returns the context value plumbing step family.
func ValueSteps() []Step {
	return []Step{
		&valueLiteralStep{},
		&valueCopyStep{},
		&valueClearStep{},
		&valueDefaultStep{},
		&valueAssertExistsStep{},
		&valueAssertTypeStep{},
	}
}

// --- value.literal ---

type valueLiteralStep struct{}

func (s *valueLiteralStep) PluginID() string { return "value.literal" }

func (s *valueLiteralStep) Execute(_ context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	v, err := RequiredParam(step, "value")
	if err != nil {
		return err
	}
	outKey, err := RequiredOutputKey(step, "result")
	if err != nil {
		return err
	}
	flow.Set(outKey, v)
	return nil
}

// --- value.copy ---

type valueCopyStep struct{}

func (s *valueCopyStep) PluginID() string { return "value.copy" }

func (s *valueCopyStep) Execute(_ context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	srcKey, err := RequiredInputKey(step, "source")
	if err != nil {
		return err
	}
	dstKey, err := RequiredOutputKey(step, "target")
	if err != nil {
		return err
	}
	v, ok := flow.Lookup(srcKey)
	if !ok {
		return schema.NewErrorf(schema.ErrCodeData, "%s: context key '%s' is missing", s.PluginID(), srcKey).
			WithPlugin(s.PluginID()).WithKey(srcKey)
	}
	flow.Set(dstKey, v)
	return nil
}

// --- value.clear ---

type valueClearStep struct{}

func (s *valueClearStep) PluginID() string { return "value.clear" }

func (s *valueClearStep) Execute(_ context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	key, err := RequiredInputKey(step, "target")
	if err != nil {
		return err
	}
	flow.Remove(key)
	return nil
}

// --- value.default ---
//
// Writes the 'value' parameter under the bound key only when the key is
// empty, which is how workflows seed persistent state on the first frame
// without clobbering it on later ones.

type valueDefaultStep struct{}

func (s *valueDefaultStep) PluginID() string { return "value.default" }

func (s *valueDefaultStep) Execute(_ context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	key, err := RequiredOutputKey(step, "target")
	if err != nil {
		return err
	}
	if flow.Contains(key) {
		return nil
	}
	v, err := RequiredParam(step, "value")
	if err != nil {
		return err
	}
	flow.Set(key, v)
	return nil
}

// --- value.assert_exists ---

type valueAssertExistsStep struct{}

func (s *valueAssertExistsStep) PluginID() string { return "value.assert_exists" }

func (s *valueAssertExistsStep) Execute(_ context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	key, err := RequiredInputKey(step, "target")
	if err != nil {
		return err
	}
	if !flow.Contains(key) {
		return schema.NewErrorf(schema.ErrCodeData, "%s: context key '%s' is missing", s.PluginID(), key).
			WithPlugin(s.PluginID()).WithKey(key)
	}
	return nil
}

// --- value.assert_type ---

type valueAssertTypeStep struct{}

func (s *valueAssertTypeStep) PluginID() string { return "value.assert_type" }

func (s *valueAssertTypeStep) Execute(_ context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	key, err := RequiredInputKey(step, "target")
	if err != nil {
		return err
	}
	typeName, err := RequiredStringParam(step, "type")
	if err != nil {
		return err
	}
	want, ok := schema.KindFromName(typeName)
	if !ok {
		return schema.NewErrorf(schema.ErrCodeConfig, "%s: unknown type name '%s'", s.PluginID(), typeName).
			WithPlugin(s.PluginID()).WithKey("type")
	}
	v, ok := flow.Lookup(key)
	if !ok {
		return schema.NewErrorf(schema.ErrCodeData, "%s: context key '%s' is missing", s.PluginID(), key).
			WithPlugin(s.PluginID()).WithKey(key)
	}
	if v.Kind() != want {
		return DataErr(step, key, want)
	}
	return nil
}
