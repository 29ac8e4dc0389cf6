package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludere/stepflow/pkg/schema"
)

func newValidator(t *testing.T) *WorkflowValidator {
	t.Helper()
	v, err := NewWorkflowValidator()
	require.NoError(t, err)
	return v
}

func requireValidation(t *testing.T, err error) *schema.FlowError {
	t.Helper()
	require.Error(t, err)
	var ferr *schema.FlowError
	require.ErrorAs(t, err, &ferr)
	require.Equal(t, schema.ErrCodeValidation, ferr.Code)
	return ferr
}

func TestWorkflowValidator_ValidDocument(t *testing.T) {
	v := newValidator(t)

	err := v.ValidateDocument([]byte(`{
		"name": "boot",
		"steps": [
			{"id": "a", "plugin": "input.poll"},
			{"id": "b", "plugin": "number.add",
			 "inputs": {"a": "x"},
			 "outputs": {"result": "sum"},
			 "params": {"b": 3}}
		]
	}`))
	assert.NoError(t, err)
}

func TestWorkflowValidator_MissingSteps(t *testing.T) {
	v := newValidator(t)
	requireValidation(t, v.ValidateDocument([]byte(`{"name": "boot"}`)))
}

func TestWorkflowValidator_StepMissingPlugin(t *testing.T) {
	v := newValidator(t)
	ferr := requireValidation(t, v.ValidateDocument([]byte(`{"steps": [{"id": "a"}]}`)))
	assert.Contains(t, ferr.Message, "plugin")
}

func TestWorkflowValidator_EmptyIDRejected(t *testing.T) {
	v := newValidator(t)
	requireValidation(t, v.ValidateDocument([]byte(`{"steps": [{"id": "", "plugin": "input.poll"}]}`)))
}

func TestWorkflowValidator_NonStringBinding(t *testing.T) {
	v := newValidator(t)
	requireValidation(t, v.ValidateDocument(
		[]byte(`{"steps": [{"id": "a", "plugin": "number.add", "inputs": {"a": 1}}]}`)))
}

func TestWorkflowValidator_MixedArrayParam(t *testing.T) {
	v := newValidator(t)
	requireValidation(t, v.ValidateDocument(
		[]byte(`{"steps": [{"id": "a", "plugin": "list.literal", "params": {"values": ["a", 1]}}]}`)))
}

func TestWorkflowValidator_ObjectParamRejected(t *testing.T) {
	v := newValidator(t)
	requireValidation(t, v.ValidateDocument(
		[]byte(`{"steps": [{"id": "a", "plugin": "value.literal", "params": {"value": {"nested": true}}}]}`)))
}

func TestWorkflowValidator_NotJSON(t *testing.T) {
	v := newValidator(t)
	err := v.ValidateDocument([]byte(`{nope`))
	var ferr *schema.FlowError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, schema.ErrCodeParse, ferr.Code)
}
