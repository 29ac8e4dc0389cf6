package engine

import (
	"bytes"
	"encoding/json"

	"github.com/ludere/stepflow/internal/validation"
	"github.com/ludere/stepflow/pkg/schema"
)

// Parser decodes workflow documents into definitions. Documents are
// schema-validated before decoding so authoring mistakes carry JSON
// locations; the decode step then narrows parameter literals to the five
// storable kinds.
type Parser struct {
	validator *validation.WorkflowValidator
}

// NewParser creates a parser. validator may be nil to skip schema
// validation (used by tests that feed pre-validated documents).
func NewParser(validator *validation.WorkflowValidator) *Parser {
	return &Parser{validator: validator}
}

type workflowDoc struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Steps       []stepDoc `json:"steps"`
}

type stepDoc struct {
	ID      string            `json:"id"`
	Plugin  string            `json:"plugin"`
	Inputs  map[string]string `json:"inputs"`
	Outputs map[string]string `json:"outputs"`
	Params  map[string]any    `json:"params"`
}

// Parse decodes a workflow document. pkg and name identify where the
// document came from; the document's own name field, when present, wins
// over the file name.
func (p *Parser) Parse(data []byte, pkg, name string) (*schema.WorkflowDefinition, error) {
	if p.validator != nil {
		if err := p.validator.ValidateDocument(data); err != nil {
			return nil, err
		}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc workflowDoc
	if err := dec.Decode(&doc); err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeParse, "decode workflow '%s/%s': %s", pkg, name, err).WithCause(err)
	}
	if doc.Name != "" {
		name = doc.Name
	}

	def := &schema.WorkflowDefinition{
		Package: pkg,
		Name:    name,
		Steps:   make([]schema.StepDefinition, 0, len(doc.Steps)),
	}

	seen := make(map[string]struct{}, len(doc.Steps))
	for _, sd := range doc.Steps {
		if sd.ID == "" {
			return nil, schema.NewErrorf(schema.ErrCodeValidation, "workflow '%s/%s': step with empty id", pkg, name)
		}
		if sd.Plugin == "" {
			return nil, schema.NewErrorf(schema.ErrCodeValidation,
				"workflow '%s/%s': step '%s' has no plugin", pkg, name, sd.ID)
		}
		if _, dup := seen[sd.ID]; dup {
			return nil, schema.NewErrorf(schema.ErrCodeValidation,
				"workflow '%s/%s': duplicate step id '%s'", pkg, name, sd.ID)
		}
		seen[sd.ID] = struct{}{}

		step := schema.StepDefinition{
			ID:      sd.ID,
			Plugin:  sd.Plugin,
			Inputs:  sd.Inputs,
			Outputs: sd.Outputs,
		}
		if len(sd.Params) > 0 {
			step.Params = make(map[string]schema.Value, len(sd.Params))
			for slot, raw := range sd.Params {
				v, err := decodeLiteral(raw)
				if err != nil {
					return nil, schema.NewErrorf(schema.ErrCodeParse,
						"workflow '%s/%s': step '%s' parameter '%s': %s", pkg, name, sd.ID, slot, err).WithCause(err)
				}
				step.Params[slot] = v
			}
		}
		def.Steps = append(def.Steps, step)
	}
	return def, nil
}

// decodeLiteral narrows a decoded JSON value to one of the five parameter
// kinds. Arrays must be homogeneous: all strings or all numbers.
func decodeLiteral(raw any) (schema.Value, error) {
	switch d := raw.(type) {
	case bool:
		return schema.BoolValue(d), nil
	case json.Number:
		f, err := d.Float64()
		if err != nil {
			return schema.Value{}, schema.NewErrorf(schema.ErrCodeParse, "number %q out of range", d.String())
		}
		return schema.NumberValue(f), nil
	case string:
		return schema.StringValue(d), nil
	case []any:
		return decodeListLiteral(d)
	default:
		return schema.Value{}, schema.NewErrorf(schema.ErrCodeParse, "unsupported literal type %T", raw)
	}
}

func decodeListLiteral(items []any) (schema.Value, error) {
	if len(items) == 0 {
		return schema.StringListValue(nil), nil
	}
	switch items[0].(type) {
	case string:
		out := make([]string, 0, len(items))
		for i, it := range items {
			s, ok := it.(string)
			if !ok {
				return schema.Value{}, schema.NewErrorf(schema.ErrCodeParse,
					"mixed-type array: element %d is %T, want string", i, it)
			}
			out = append(out, s)
		}
		return schema.StringListValue(out), nil
	case json.Number:
		out := make([]float64, 0, len(items))
		for i, it := range items {
			n, ok := it.(json.Number)
			if !ok {
				return schema.Value{}, schema.NewErrorf(schema.ErrCodeParse,
					"mixed-type array: element %d is %T, want number", i, it)
			}
			f, err := n.Float64()
			if err != nil {
				return schema.Value{}, schema.NewErrorf(schema.ErrCodeParse, "number %q out of range", n.String())
			}
			out = append(out, f)
		}
		return schema.NumberListValue(out), nil
	default:
		return schema.Value{}, schema.NewErrorf(schema.ErrCodeParse,
			"unsupported array element type %T", items[0])
	}
}
