// Package validation checks workflow documents against a JSON Schema
// before the parser touches them, so authoring mistakes surface as
// location-tagged messages instead of decode failures.
package validation

import (
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/ludere/stepflow/pkg/schema"
)

// workflowSchemaJSON is the JSON Schema for workflow documents. Embedded
// as a constant to avoid filesystem dependencies.
const workflowSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://stepflow.dev/schemas/workflow.json",
  "type": "object",
  "required": ["steps"],
  "properties": {
    "name": { "type": "string" },
    "description": { "type": "string" },
    "steps": {
      "type": "array",
      "items": { "$ref": "#/$defs/step" }
    }
  },
  "additionalProperties": false,
  "$defs": {
    "step": {
      "type": "object",
      "required": ["id", "plugin"],
      "properties": {
        "id": {
          "type": "string",
          "minLength": 1
        },
        "plugin": {
          "type": "string",
          "minLength": 1
        },
        "inputs": {
          "type": "object",
          "additionalProperties": { "type": "string" }
        },
        "outputs": {
          "type": "object",
          "additionalProperties": { "type": "string" }
        },
        "params": {
          "type": "object",
          "additionalProperties": { "$ref": "#/$defs/literal" }
        }
      },
      "additionalProperties": false
    },
    "literal": {
      "anyOf": [
        { "type": "boolean" },
        { "type": "number" },
        { "type": "string" },
        {
          "type": "array",
          "items": { "type": "string" }
        },
        {
          "type": "array",
          "items": { "type": "number" }
        }
      ]
    }
  }
}`

// WorkflowValidator validates raw workflow documents. Safe for concurrent
// use once constructed.
type WorkflowValidator struct {
	compiled *jsonschema.Schema
}

// NewWorkflowValidator compiles the embedded workflow schema.
func NewWorkflowValidator() (*WorkflowValidator, error) {
	c := jsonschema.NewCompiler()
	c.AssertFormat()

	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(workflowSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("unmarshal workflow schema: %w", err)
	}
	if err := c.AddResource("https://stepflow.dev/schemas/workflow.json", doc); err != nil {
		return nil, fmt.Errorf("add workflow schema resource: %w", err)
	}
	compiled, err := c.Compile("https://stepflow.dev/schemas/workflow.json")
	if err != nil {
		return nil, fmt.Errorf("compile workflow schema: %w", err)
	}
	return &WorkflowValidator{compiled: compiled}, nil
}

// ValidateDocument validates raw workflow JSON against the schema.
func (v *WorkflowValidator) ValidateDocument(data []byte) error {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(string(data)))
	if err != nil {
		return schema.NewError(schema.ErrCodeParse, "workflow document is not valid JSON").WithCause(err)
	}
	if err := v.compiled.Validate(doc); err != nil {
		return toFlowError(err)
	}
	return nil
}

// toFlowError converts a jsonschema.ValidationError into a FlowError with
// instance-location-tagged messages.
func toFlowError(err error) *schema.FlowError {
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return schema.NewError(schema.ErrCodeValidation, err.Error())
	}

	violations := collectViolations(verr)
	switch len(violations) {
	case 0:
		return schema.NewError(schema.ErrCodeValidation, verr.Error())
	case 1:
		return schema.NewError(schema.ErrCodeValidation, violations[0])
	default:
		return schema.NewErrorf(schema.ErrCodeValidation,
			"validation failed with %d errors: %s", len(violations), strings.Join(violations, "; "))
	}
}

// collectViolations walks a ValidationError tree and collects leaf error
// messages with their instance locations.
func collectViolations(verr *jsonschema.ValidationError) []string {
	if len(verr.Causes) == 0 {
		loc := "/"
		if len(verr.InstanceLocation) > 0 {
			loc = "/" + strings.Join(verr.InstanceLocation, "/")
		}
		return []string{fmt.Sprintf("%s: %s", loc, verr.Error())}
	}

	var violations []string
	for _, cause := range verr.Causes {
		violations = append(violations, collectViolations(cause)...)
	}
	return violations
}
