package steps

import (
	"context"

	"github.com/ludere/stepflow/internal/flowctx"
	"github.com/ludere/stepflow/internal/services"
	"github.com/ludere/stepflow/pkg/schema"
)

// VFXSteps returns the particle effect step family.
func VFXSteps(vfx services.VFXService) []Step {
	return []Step{
		&vfxSpawnStep{vfx: vfx},
		&vfxDestroyStep{vfx: vfx},
		&vfxParticleUpdateStep{vfx: vfx},
	}
}

// --- vfx.spawn ---

type vfxSpawnStep struct {
	vfx services.VFXService
}

func (s *vfxSpawnStep) PluginID() string { return "vfx.spawn" }

func (s *vfxSpawnStep) Execute(_ context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	effect, err := RequiredStringArg(step, flow, "effect")
	if err != nil {
		return err
	}
	position, err := Vec3ArgOr(step, flow, "position", schema.Vec3{})
	if err != nil {
		return err
	}
	outKey, err := RequiredOutputKey(step, "handle")
	if err != nil {
		return err
	}
	h, err := s.vfx.Spawn(effect, position)
	if err != nil {
		return err
	}
	flow.SetHandle(outKey, h)
	return nil
}

// --- vfx.destroy ---

type vfxDestroyStep struct {
	vfx services.VFXService
}

func (s *vfxDestroyStep) PluginID() string { return "vfx.destroy" }

func (s *vfxDestroyStep) Execute(_ context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	h, err := requiredHandle(step, flow, "handle")
	if err != nil {
		return err
	}
	return s.vfx.Destroy(h)
}

// --- vfx.particle.update ---

type vfxParticleUpdateStep struct {
	vfx services.VFXService
}

func (s *vfxParticleUpdateStep) PluginID() string { return "vfx.particle.update" }

func (s *vfxParticleUpdateStep) Execute(_ context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	h, err := requiredHandle(step, flow, "handle")
	if err != nil {
		return err
	}
	dt, err := NumberArgOr(step, flow, "dt", 1.0/60)
	if err != nil {
		return err
	}
	alive, err := s.vfx.UpdateParticles(h, dt)
	if err != nil {
		return err
	}
	if outKey, ok := step.Outputs["alive"]; ok {
		flow.SetNumber(outKey, float64(alive))
	}
	return nil
}
