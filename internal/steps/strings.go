package steps

import (
	"context"
	"strings"

	"github.com/ludere/stepflow/internal/flowctx"
	"github.com/ludere/stepflow/pkg/schema"
)

// StringSteps returns the string manipulation step family.
func StringSteps() []Step {
	return []Step{
		&stringConcatStep{},
		&stringContainsStep{},
		&stringEqualsStep{},
		&stringFormatStep{},
		&stringJoinStep{},
		&stringSplitStep{},
		&stringReplaceStep{},
		&unaryStringStep{id: "string.lower", apply: strings.ToLower},
		&unaryStringStep{id: "string.upper", apply: strings.ToUpper},
		&unaryStringStep{id: "string.trim", apply: strings.TrimSpace},
	}
}

// --- string.concat ---

type stringConcatStep struct{}

func (s *stringConcatStep) PluginID() string { return "string.concat" }

func (s *stringConcatStep) Execute(_ context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	a, err := RequiredStringArg(step, flow, "a")
	if err != nil {
		return err
	}
	b, err := RequiredStringArg(step, flow, "b")
	if err != nil {
		return err
	}
	outKey, err := RequiredOutputKey(step, "result")
	if err != nil {
		return err
	}
	flow.SetString(outKey, a+b)
	return nil
}

// --- string.contains ---

type stringContainsStep struct{}

func (s *stringContainsStep) PluginID() string { return "string.contains" }

func (s *stringContainsStep) Execute(_ context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	value, err := RequiredStringArg(step, flow, "value")
	if err != nil {
		return err
	}
	substr, err := RequiredStringArg(step, flow, "substring")
	if err != nil {
		return err
	}
	outKey, err := RequiredOutputKey(step, "result")
	if err != nil {
		return err
	}
	flow.SetBool(outKey, strings.Contains(value, substr))
	return nil
}

// --- string.equals ---

type stringEqualsStep struct{}

func (s *stringEqualsStep) PluginID() string { return "string.equals" }

func (s *stringEqualsStep) Execute(_ context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	a, err := RequiredStringArg(step, flow, "a")
	if err != nil {
		return err
	}
	b, err := RequiredStringArg(step, flow, "b")
	if err != nil {
		return err
	}
	outKey, err := RequiredOutputKey(step, "result")
	if err != nil {
		return err
	}
	flow.SetBool(outKey, a == b)
	return nil
}

// --- string.format ---
//
// Substitutes each '{key}' token in the template with the context value
// stored under that key, rendered through Value.String. A token naming a
// missing key fails the step rather than leaving the brace text behind.

type stringFormatStep struct{}

func (s *stringFormatStep) PluginID() string { return "string.format" }

func (s *stringFormatStep) Execute(_ context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	template, err := RequiredStringArg(step, flow, "template")
	if err != nil {
		return err
	}
	outKey, err := RequiredOutputKey(step, "result")
	if err != nil {
		return err
	}

	var out strings.Builder
	rest := template
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			out.WriteString(rest)
			break
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			out.WriteString(rest)
			break
		}
		key := rest[open+1 : open+end]
		v, ok := flow.Lookup(key)
		if !ok {
			return schema.NewErrorf(schema.ErrCodeData, "%s: template references missing key '%s'", s.PluginID(), key).
				WithPlugin(s.PluginID()).WithKey(key)
		}
		out.WriteString(rest[:open])
		out.WriteString(v.String())
		rest = rest[open+end+1:]
	}

	flow.SetString(outKey, out.String())
	return nil
}

// --- string.join ---

type stringJoinStep struct{}

func (s *stringJoinStep) PluginID() string { return "string.join" }

func (s *stringJoinStep) Execute(_ context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	items, err := RequiredStringListArg(step, flow, "items")
	if err != nil {
		return err
	}
	sep, err := StringArgOr(step, flow, "separator", ",")
	if err != nil {
		return err
	}
	outKey, err := RequiredOutputKey(step, "result")
	if err != nil {
		return err
	}
	flow.SetString(outKey, strings.Join(items, sep))
	return nil
}

// --- string.split ---

type stringSplitStep struct{}

func (s *stringSplitStep) PluginID() string { return "string.split" }

func (s *stringSplitStep) Execute(_ context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	value, err := RequiredStringArg(step, flow, "value")
	if err != nil {
		return err
	}
	sep, err := StringArgOr(step, flow, "separator", ",")
	if err != nil {
		return err
	}
	outKey, err := RequiredOutputKey(step, "result")
	if err != nil {
		return err
	}
	flow.SetStringList(outKey, strings.Split(value, sep))
	return nil
}

// --- string.replace ---

type stringReplaceStep struct{}

func (s *stringReplaceStep) PluginID() string { return "string.replace" }

func (s *stringReplaceStep) Execute(_ context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	value, err := RequiredStringArg(step, flow, "value")
	if err != nil {
		return err
	}
	old, err := RequiredStringArg(step, flow, "old")
	if err != nil {
		return err
	}
	repl, err := RequiredStringArg(step, flow, "new")
	if err != nil {
		return err
	}
	outKey, err := RequiredOutputKey(step, "result")
	if err != nil {
		return err
	}
	flow.SetString(outKey, strings.ReplaceAll(value, old, repl))
	return nil
}

// unaryStringStep reads 'value', writes 'result'.
type unaryStringStep struct {
	id    string
	apply func(string) string
}

func (s *unaryStringStep) PluginID() string { return s.id }

func (s *unaryStringStep) Execute(_ context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	v, err := RequiredStringArg(step, flow, "value")
	if err != nil {
		return err
	}
	outKey, err := RequiredOutputKey(step, "result")
	if err != nil {
		return err
	}
	flow.SetString(outKey, s.apply(v))
	return nil
}
