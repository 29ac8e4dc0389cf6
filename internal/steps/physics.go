package steps

import (
	"context"

	"github.com/ludere/stepflow/internal/flowctx"
	"github.com/ludere/stepflow/internal/services"
	"github.com/ludere/stepflow/pkg/schema"
)

// PhysicsSteps returns the physics simulation step family.
func PhysicsSteps(physics services.PhysicsService) []Step {
	return []Step{
		&physicsWorldCreateStep{physics: physics},
		&physicsBodyAddStep{physics: physics},
		&physicsStepStep{physics: physics},
		&physicsBodyPositionStep{physics: physics},
		&physicsBodyRemoveStep{physics: physics},
	}
}

// --- physics.world.create ---

type physicsWorldCreateStep struct {
	physics services.PhysicsService
}

func (s *physicsWorldCreateStep) PluginID() string { return "physics.world.create" }

func (s *physicsWorldCreateStep) Execute(_ context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	gravity, err := Vec3ArgOr(step, flow, "gravity", schema.Vec3{0, -9.81, 0})
	if err != nil {
		return err
	}
	outKey, err := RequiredOutputKey(step, "world")
	if err != nil {
		return err
	}
	h, err := s.physics.CreateWorld(gravity)
	if err != nil {
		return err
	}
	flow.SetHandle(outKey, h)
	return nil
}

// --- physics.body.add ---

type physicsBodyAddStep struct {
	physics services.PhysicsService
}

func (s *physicsBodyAddStep) PluginID() string { return "physics.body.add" }

func (s *physicsBodyAddStep) Execute(_ context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	world, err := requiredHandle(step, flow, "world")
	if err != nil {
		return err
	}
	position, err := RequiredVec3Arg(step, flow, "position")
	if err != nil {
		return err
	}
	mass, err := NumberArgOr(step, flow, "mass", 1)
	if err != nil {
		return err
	}
	outKey, err := RequiredOutputKey(step, "body")
	if err != nil {
		return err
	}
	h, err := s.physics.AddBody(world, position, mass)
	if err != nil {
		return err
	}
	flow.SetHandle(outKey, h)
	return nil
}

// --- physics.step ---

type physicsStepStep struct {
	physics services.PhysicsService
}

func (s *physicsStepStep) PluginID() string { return "physics.step" }

func (s *physicsStepStep) Execute(_ context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	world, err := requiredHandle(step, flow, "world")
	if err != nil {
		return err
	}
	dt, err := NumberArgOr(step, flow, "dt", 1.0/60)
	if err != nil {
		return err
	}
	return s.physics.Step(world, dt)
}

// --- physics.body.position ---

type physicsBodyPositionStep struct {
	physics services.PhysicsService
}

func (s *physicsBodyPositionStep) PluginID() string { return "physics.body.position" }

func (s *physicsBodyPositionStep) Execute(_ context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	body, err := requiredHandle(step, flow, "body")
	if err != nil {
		return err
	}
	outKey, err := RequiredOutputKey(step, "position")
	if err != nil {
		return err
	}
	position, err := s.physics.BodyPosition(body)
	if err != nil {
		return err
	}
	flow.SetNumberList(outKey, []float64{position[0], position[1], position[2]})
	return nil
}

// --- physics.body.remove ---

type physicsBodyRemoveStep struct {
	physics services.PhysicsService
}

func (s *physicsBodyRemoveStep) PluginID() string { return "physics.body.remove" }

func (s *physicsBodyRemoveStep) Execute(_ context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	body, err := requiredHandle(step, flow, "body")
	if err != nil {
		return err
	}
	return s.physics.RemoveBody(body)
}
