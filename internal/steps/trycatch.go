package steps

import (
	"context"

	"github.com/ludere/stepflow/internal/flowctx"
	"github.com/ludere/stepflow/pkg/schema"
)

// --- control.try.catch ---
//
// Runs the plugin bound to 'try_step'. On failure the error text is
// published under the key bound to the 'error_output' output slot
// (default "error.message") and the plugin bound to 'catch_step', if
// any, runs as the handler. A handler failure propagates; a missing
// handler swallows the error after recording it.

type tryCatchStep struct {
	lookup Lookup
}

// NewTryCatchStep creates the error recovery step.
func NewTryCatchStep(lookup Lookup) Step {
	return &tryCatchStep{lookup: lookup}
}

func (s *tryCatchStep) PluginID() string { return "control.try.catch" }

func (s *tryCatchStep) Execute(ctx context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	tryPlugin, err := RequiredInputKey(step, "try_step")
	if err != nil {
		return err
	}
	catchPlugin := step.Inputs["catch_step"]
	errorKey := OutputKeyOr(step, "error_output", "error.message")

	tryStep, err := s.lookup.Get(tryPlugin)
	if err != nil {
		return err
	}

	tryErr := tryStep.Execute(ctx, schema.CallStep(tryPlugin), flow)
	if tryErr == nil {
		return nil
	}

	flow.SetString(errorKey, tryErr.Error())
	if catchPlugin == "" {
		return nil
	}

	catchStep, err := s.lookup.Get(catchPlugin)
	if err != nil {
		return err
	}
	return catchStep.Execute(ctx, schema.CallStep(catchPlugin), flow)
}
