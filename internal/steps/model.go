package steps

import (
	"context"
	"math"

	"github.com/ludere/stepflow/internal/flowctx"
	"github.com/ludere/stepflow/pkg/schema"
)

func sincosDegrees(degrees float64) (sin, cos float64) {
	return math.Sincos(degrees * math.Pi / 180)
}

// ModelSteps returns the scene object step family.
func ModelSteps() []Step {
	return []Step{
		&modelSetTransformStep{},
	}
}

// --- model.set_transform ---
//
// Marks a scene object's transform as explicit: position, optional
// uniform scale, and optional Y rotation composed into one matrix. An
// object without an explicit transform is positioned by the host.

type modelSetTransformStep struct{}

func (s *modelSetTransformStep) PluginID() string { return "model.set_transform" }

func (s *modelSetTransformStep) Execute(_ context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	objKey, err := RequiredInputKey(step, "object")
	if err != nil {
		return err
	}
	obj, ok := flow.TryObject(objKey)
	if !ok {
		return DataErr(step, objKey, schema.KindSceneObject)
	}
	position, err := RequiredVec3Arg(step, flow, "position")
	if err != nil {
		return err
	}
	scale, err := NumberArgOr(step, flow, "scale", 1)
	if err != nil {
		return err
	}
	rotationY, err := NumberArgOr(step, flow, "rotation_y", 0)
	if err != nil {
		return err
	}

	obj.Transform = composeTransform(position, scale, rotationY)
	obj.ExplicitTransform = true

	outKey := OutputKeyOr(step, "object", objKey)
	flow.SetObject(outKey, obj)
	return nil
}

// composeTransform builds scale, then Y rotation, then translation, in
// column-major order. rotationY is in degrees.
func composeTransform(position schema.Vec3, scale, rotationY float64) schema.Mat4 {
	sin, cos := sincosDegrees(rotationY)
	return schema.Mat4{
		scale * cos, 0, scale * -sin, 0,
		0, scale, 0, 0,
		scale * sin, 0, scale * cos, 0,
		position[0], position[1], position[2], 1,
	}
}
