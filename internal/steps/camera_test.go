package steps

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludere/stepflow/internal/flowctx"
	"github.com/ludere/stepflow/pkg/schema"
)

func TestCameraSetup_Defaults(t *testing.T) {
	env := newTestEnv(t)

	step := stepDef("camera.setup")
	step.Outputs["pose"] = "camera.pose"

	flow := flowctx.New()
	require.NoError(t, env.runStep(t, step, flow))

	pose, ok := flow.TryPose("camera.pose")
	require.True(t, ok)
	assert.Equal(t, schema.DefaultCameraPose(), pose)
}

func TestCameraSetup_Overrides(t *testing.T) {
	env := newTestEnv(t)

	step := stepDef("camera.setup")
	step.Params["position"] = schema.NumberListValue([]float64{1, 2, 3})
	step.Params["fov"] = schema.NumberValue(90)
	step.Outputs["pose"] = "camera.pose"

	flow := flowctx.New()
	require.NoError(t, env.runStep(t, step, flow))

	pose, _ := flow.TryPose("camera.pose")
	assert.Equal(t, schema.Vec3{1, 2, 3}, pose.Position)
	assert.Equal(t, 90.0, pose.FOV)
	assert.Equal(t, schema.DefaultCameraPose().Up, pose.Up)
}

func TestCameraSetup_OptionalViewOutput(t *testing.T) {
	env := newTestEnv(t)

	step := stepDef("camera.setup")
	step.Outputs["pose"] = "camera.pose"
	step.Outputs["view"] = "camera.view"

	flow := flowctx.New()
	require.NoError(t, env.runStep(t, step, flow))

	view, ok := flow.TryView("camera.view")
	require.True(t, ok)
	assert.NotEqual(t, schema.Mat4{}, view.View)
	assert.NotEqual(t, schema.Mat4{}, view.Projection)
}

func TestCameraLookAt(t *testing.T) {
	env := newTestEnv(t)

	flow := flowctx.New()
	flow.SetPose("camera.pose", schema.DefaultCameraPose())

	step := stepDef("camera.look_at")
	step.Inputs["pose"] = "camera.pose"
	step.Params["target"] = schema.NumberListValue([]float64{5, 0, 5})
	step.Outputs["pose"] = "camera.pose"

	require.NoError(t, env.runStep(t, step, flow))

	pose, _ := flow.TryPose("camera.pose")
	assert.Equal(t, schema.Vec3{5, 0, 5}, pose.LookAt)
}

func TestCameraSetFOV_OutOfRange(t *testing.T) {
	env := newTestEnv(t)

	flow := flowctx.New()
	flow.SetPose("camera.pose", schema.DefaultCameraPose())

	step := stepDef("camera.set_fov")
	step.Inputs["pose"] = "camera.pose"
	step.Params["fov"] = schema.NumberValue(180)
	step.Outputs["pose"] = "camera.pose"

	err := env.runStep(t, step, flow)
	requireFlowCode(t, err, schema.ErrCodeData)
}

func TestCameraTeleport_PreservesViewDirection(t *testing.T) {
	env := newTestEnv(t)

	flow := flowctx.New()
	flow.SetPose("camera.pose", schema.CameraPose{
		Position: schema.Vec3{0, 0, 0},
		LookAt:   schema.Vec3{0, 0, -1},
		Up:       schema.Vec3{0, 1, 0},
		FOV:      60, Near: 0.1, Far: 1000,
	})

	step := stepDef("camera.teleport")
	step.Inputs["pose"] = "camera.pose"
	step.Params["position"] = schema.NumberListValue([]float64{10, 5, 10})
	step.Outputs["pose"] = "camera.pose"

	require.NoError(t, env.runStep(t, step, flow))

	pose, _ := flow.TryPose("camera.pose")
	assert.Equal(t, schema.Vec3{10, 5, 10}, pose.Position)
	assert.Equal(t, schema.Vec3{10, 5, 9}, pose.LookAt)
}

func TestCameraFPSUpdate_PitchClamped(t *testing.T) {
	env := newTestEnv(t)

	flow := flowctx.New()
	flow.SetPose("camera.pose", schema.DefaultCameraPose())
	flow.SetNumber("cam.pitch", 80)

	step := stepDef("camera.fps_update")
	step.Inputs["pose"] = "camera.pose"
	step.Inputs["pitch"] = "cam.pitch"
	step.Params["pitch_delta"] = schema.NumberValue(30)
	step.Outputs["pose"] = "camera.pose"
	step.Outputs["pitch"] = "cam.pitch"

	require.NoError(t, env.runStep(t, step, flow))
	assert.Equal(t, 89.0, flow.Number("cam.pitch", 0))
}

func TestCameraFPSUpdate_ForwardMovement(t *testing.T) {
	env := newTestEnv(t)

	flow := flowctx.New()
	flow.SetPose("camera.pose", schema.CameraPose{
		Position: schema.Vec3{0, 0, 0},
		LookAt:   schema.Vec3{0, 0, -1},
		Up:       schema.Vec3{0, 1, 0},
		FOV:      60, Near: 0.1, Far: 1000,
	})

	step := stepDef("camera.fps_update")
	step.Inputs["pose"] = "camera.pose"
	step.Params["move_forward"] = schema.NumberValue(1)
	step.Params["speed"] = schema.NumberValue(60)
	step.Outputs["pose"] = "camera.pose"

	require.NoError(t, env.runStep(t, step, flow))

	// Zero yaw and pitch face -Z; one frame at speed 60 covers one unit.
	pose, _ := flow.TryPose("camera.pose")
	assert.InDelta(t, 0, pose.Position[0], 1e-9)
	assert.InDelta(t, 0, pose.Position[1], 1e-9)
	assert.InDelta(t, -1, pose.Position[2], 1e-9)
}

func TestCameraSetPose_WrongKind(t *testing.T) {
	env := newTestEnv(t)

	flow := flowctx.New()
	flow.SetString("camera.pose", "not a pose")

	step := stepDef("camera.set_pose")
	step.Inputs["source"] = "camera.pose"
	step.Outputs["pose"] = "camera.out"

	err := env.runStep(t, step, flow)
	requireFlowCode(t, err, schema.ErrCodeData)
}

func TestModelSetTransform(t *testing.T) {
	env := newTestEnv(t)

	flow := flowctx.New()
	flow.SetObject("scene.crate", schema.SceneObject{Type: "crate"})

	step := stepDef("model.set_transform")
	step.Inputs["object"] = "scene.crate"
	step.Params["position"] = schema.NumberListValue([]float64{1, 2, 3})
	step.Params["scale"] = schema.NumberValue(2)

	require.NoError(t, env.runStep(t, step, flow))

	obj, ok := flow.TryObject("scene.crate")
	require.True(t, ok)
	assert.True(t, obj.ExplicitTransform)
	// Column-major: translation in the last column, scale on the diagonal.
	assert.Equal(t, 2.0, obj.Transform[0])
	assert.Equal(t, 2.0, obj.Transform[5])
	assert.Equal(t, 1.0, obj.Transform[12])
	assert.Equal(t, 2.0, obj.Transform[13])
	assert.Equal(t, 3.0, obj.Transform[14])
}

func TestModelSetTransform_RotationY(t *testing.T) {
	env := newTestEnv(t)

	flow := flowctx.New()
	flow.SetObject("scene.crate", schema.SceneObject{Type: "crate"})

	step := stepDef("model.set_transform")
	step.Inputs["object"] = "scene.crate"
	step.Params["position"] = schema.NumberListValue([]float64{0, 0, 0})
	step.Params["rotation_y"] = schema.NumberValue(90)
	step.Outputs["object"] = "scene.rotated"

	require.NoError(t, env.runStep(t, step, flow))

	obj, ok := flow.TryObject("scene.rotated")
	require.True(t, ok)
	assert.InDelta(t, 0, obj.Transform[0], 1e-12)
	assert.InDelta(t, -1, obj.Transform[2], 1e-12)
	assert.InDelta(t, 1, obj.Transform[8], 1e-12)

	// The source object is untouched when a separate output is bound.
	src, _ := flow.TryObject("scene.crate")
	assert.False(t, src.ExplicitTransform)
}

func TestLookAtMatrix_TranslatesEye(t *testing.T) {
	m := lookAtMatrix(schema.Vec3{0, 0, 5}, schema.Vec3{0, 0, 0}, schema.Vec3{0, 1, 0})
	// Looking down -Z from z=5: the eye maps to depth -5.
	assert.InDelta(t, -5, m[14], 1e-12)
	assert.InDelta(t, 1, m[15], 1e-12)
}

func TestPerspectiveMatrix_FocalLength(t *testing.T) {
	m := perspectiveMatrix(90, 0.1, 100)
	f := 1 / math.Tan(90*math.Pi/360)
	assert.InDelta(t, f/(16.0/9.0), m[0], 1e-12)
	assert.InDelta(t, f, m[5], 1e-12)
	assert.InDelta(t, -1, m[11], 1e-12)
}
