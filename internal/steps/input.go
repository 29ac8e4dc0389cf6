package steps

import (
	"context"

	"github.com/ludere/stepflow/internal/flowctx"
	"github.com/ludere/stepflow/internal/services"
	"github.com/ludere/stepflow/pkg/schema"
)

// InputSteps returns the input polling step family. input.poll snapshots
// device state once per frame; the read steps report from the snapshot,
// so a workflow that polls at the top of the frame sees consistent input
// for the rest of it.
func InputSteps(input services.InputService) []Step {
	return []Step{
		&inputPollStep{input: input},
		&inputKeyPressedStep{input: input},
		&inputMouseButtonStep{input: input},
		&inputMousePositionStep{input: input},
		&inputGamepadAxisStep{input: input},
		&inputGamepadButtonStep{input: input},
	}
}

// --- input.poll ---

type inputPollStep struct {
	input services.InputService
}

func (s *inputPollStep) PluginID() string { return "input.poll" }

func (s *inputPollStep) Execute(_ context.Context, _ *schema.StepDefinition, _ *flowctx.Context) error {
	return s.input.Poll()
}

// --- input.key_pressed ---

type inputKeyPressedStep struct {
	input services.InputService
}

func (s *inputKeyPressedStep) PluginID() string { return "input.key_pressed" }

func (s *inputKeyPressedStep) Execute(_ context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	key, err := RequiredStringArg(step, flow, "key")
	if err != nil {
		return err
	}
	outKey, err := RequiredOutputKey(step, "result")
	if err != nil {
		return err
	}
	flow.SetBool(outKey, s.input.KeyPressed(key))
	return nil
}

// --- input.mouse_button_pressed ---

type inputMouseButtonStep struct {
	input services.InputService
}

func (s *inputMouseButtonStep) PluginID() string { return "input.mouse_button_pressed" }

func (s *inputMouseButtonStep) Execute(_ context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	button, err := RequiredNumberArg(step, flow, "button")
	if err != nil {
		return err
	}
	outKey, err := RequiredOutputKey(step, "result")
	if err != nil {
		return err
	}
	flow.SetBool(outKey, s.input.MouseButtonPressed(int(button)))
	return nil
}

// --- input.mouse_position ---

type inputMousePositionStep struct {
	input services.InputService
}

func (s *inputMousePositionStep) PluginID() string { return "input.mouse_position" }

func (s *inputMousePositionStep) Execute(_ context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	x, y := s.input.MousePosition()
	if xKey, ok := step.Outputs["x"]; ok {
		flow.SetNumber(xKey, x)
	}
	if yKey, ok := step.Outputs["y"]; ok {
		flow.SetNumber(yKey, y)
	}
	if posKey, ok := step.Outputs["position"]; ok {
		flow.SetNumberList(posKey, []float64{x, y})
	}
	return nil
}

// --- input.gamepad_axis ---

type inputGamepadAxisStep struct {
	input services.InputService
}

func (s *inputGamepadAxisStep) PluginID() string { return "input.gamepad_axis" }

func (s *inputGamepadAxisStep) Execute(_ context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	axis, err := RequiredNumberArg(step, flow, "axis")
	if err != nil {
		return err
	}
	outKey, err := RequiredOutputKey(step, "result")
	if err != nil {
		return err
	}
	flow.SetNumber(outKey, s.input.GamepadAxis(int(axis)))
	return nil
}

// --- input.gamepad_button_pressed ---

type inputGamepadButtonStep struct {
	input services.InputService
}

func (s *inputGamepadButtonStep) PluginID() string { return "input.gamepad_button_pressed" }

func (s *inputGamepadButtonStep) Execute(_ context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	button, err := RequiredNumberArg(step, flow, "button")
	if err != nil {
		return err
	}
	outKey, err := RequiredOutputKey(step, "result")
	if err != nil {
		return err
	}
	flow.SetBool(outKey, s.input.GamepadButtonPressed(int(button)))
	return nil
}
