package steps

import (
	"context"

	"github.com/ludere/stepflow/internal/flowctx"
	"github.com/ludere/stepflow/internal/services"
	"github.com/ludere/stepflow/pkg/schema"
)

// AudioSteps returns the audio playback step family.
func AudioSteps(audio services.AudioService) []Step {
	return []Step{
		&audioPlayStep{audio: audio},
		&audioHandleStep{id: "audio.stop", audio: audio, apply: audio.Stop},
		&audioHandleStep{id: "audio.pause", audio: audio, apply: audio.Pause},
		&audioHandleStep{id: "audio.resume", audio: audio, apply: audio.Resume},
		&audioSetVolumeStep{audio: audio},
		&audioSetLoopingStep{audio: audio},
		&audioSeekStep{audio: audio},
	}
}

func requiredHandle(step *schema.StepDefinition, flow *flowctx.Context, slot string) (schema.Handle, error) {
	key, err := RequiredInputKey(step, slot)
	if err != nil {
		return "", err
	}
	h, ok := flow.TryHandle(key)
	if !ok {
		return "", DataErr(step, key, schema.KindHandle)
	}
	return h, nil
}

// --- audio.play ---

type audioPlayStep struct {
	audio services.AudioService
}

func (s *audioPlayStep) PluginID() string { return "audio.play" }

func (s *audioPlayStep) Execute(_ context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	path, err := RequiredStringArg(step, flow, "path")
	if err != nil {
		return err
	}
	volume, err := NumberArgOr(step, flow, "volume", 1)
	if err != nil {
		return err
	}
	looping, err := BoolArgOr(step, flow, "looping", false)
	if err != nil {
		return err
	}
	outKey, err := RequiredOutputKey(step, "handle")
	if err != nil {
		return err
	}
	h, err := s.audio.Play(path, volume, looping)
	if err != nil {
		return err
	}
	flow.SetHandle(outKey, h)
	return nil
}

// audioHandleStep covers the operations that take a voice handle and
// nothing else.
type audioHandleStep struct {
	id    string
	audio services.AudioService
	apply func(schema.Handle) error
}

func (s *audioHandleStep) PluginID() string { return s.id }

func (s *audioHandleStep) Execute(_ context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	h, err := requiredHandle(step, flow, "handle")
	if err != nil {
		return err
	}
	return s.apply(h)
}

// --- audio.set_volume ---

type audioSetVolumeStep struct {
	audio services.AudioService
}

func (s *audioSetVolumeStep) PluginID() string { return "audio.set_volume" }

func (s *audioSetVolumeStep) Execute(_ context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	h, err := requiredHandle(step, flow, "handle")
	if err != nil {
		return err
	}
	volume, err := RequiredNumberArg(step, flow, "volume")
	if err != nil {
		return err
	}
	return s.audio.SetVolume(h, volume)
}

// --- audio.set_looping ---

type audioSetLoopingStep struct {
	audio services.AudioService
}

func (s *audioSetLoopingStep) PluginID() string { return "audio.set_looping" }

func (s *audioSetLoopingStep) Execute(_ context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	h, err := requiredHandle(step, flow, "handle")
	if err != nil {
		return err
	}
	looping, err := RequiredBoolArg(step, flow, "looping")
	if err != nil {
		return err
	}
	return s.audio.SetLooping(h, looping)
}

// --- audio.seek ---

type audioSeekStep struct {
	audio services.AudioService
}

func (s *audioSeekStep) PluginID() string { return "audio.seek" }

func (s *audioSeekStep) Execute(_ context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	h, err := requiredHandle(step, flow, "handle")
	if err != nil {
		return err
	}
	seconds, err := RequiredNumberArg(step, flow, "seconds")
	if err != nil {
		return err
	}
	return s.audio.Seek(h, seconds)
}
