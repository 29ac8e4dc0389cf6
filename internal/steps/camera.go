package steps

import (
	"context"
	"math"

	"github.com/ludere/stepflow/internal/flowctx"
	"github.com/ludere/stepflow/pkg/schema"
)

// CameraSteps returns the camera step family. Camera steps are pure value
// transforms over CameraPose: each reads the pose bound to its 'pose'
// input, returns an updated copy through the 'pose' output, and leaves
// rendering to the host. Poses persist in the context between frames.
func CameraSteps() []Step {
	return []Step{
		&cameraSetupStep{},
		&cameraSetPoseStep{},
		&cameraLookAtStep{},
		&cameraSetFOVStep{},
		&cameraTeleportStep{},
		&cameraFPSUpdateStep{},
	}
}

func requiredPose(step *schema.StepDefinition, flow *flowctx.Context, slot string) (schema.CameraPose, error) {
	key, err := RequiredInputKey(step, slot)
	if err != nil {
		return schema.CameraPose{}, err
	}
	pose, ok := flow.TryPose(key)
	if !ok {
		return schema.CameraPose{}, DataErr(step, key, schema.KindCameraPose)
	}
	return pose, nil
}

func writePose(step *schema.StepDefinition, flow *flowctx.Context, pose schema.CameraPose) error {
	outKey, err := RequiredOutputKey(step, "pose")
	if err != nil {
		return err
	}
	flow.SetPose(outKey, pose)
	// Derived matrices are opt-in; most workflows only carry the pose.
	if viewKey, ok := step.Outputs["view"]; ok {
		flow.SetView(viewKey, schema.ViewState{
			View:       lookAtMatrix(pose.Position, pose.LookAt, pose.Up),
			Projection: perspectiveMatrix(pose.FOV, pose.Near, pose.Far),
		})
	}
	return nil
}

// --- camera.setup ---

type cameraSetupStep struct{}

func (s *cameraSetupStep) PluginID() string { return "camera.setup" }

func (s *cameraSetupStep) Execute(_ context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	pose := schema.DefaultCameraPose()
	var err error
	if pose.Position, err = Vec3ArgOr(step, flow, "position", pose.Position); err != nil {
		return err
	}
	if pose.LookAt, err = Vec3ArgOr(step, flow, "look_at", pose.LookAt); err != nil {
		return err
	}
	if pose.Up, err = Vec3ArgOr(step, flow, "up", pose.Up); err != nil {
		return err
	}
	if pose.FOV, err = NumberArgOr(step, flow, "fov", pose.FOV); err != nil {
		return err
	}
	if pose.Near, err = NumberArgOr(step, flow, "near", pose.Near); err != nil {
		return err
	}
	if pose.Far, err = NumberArgOr(step, flow, "far", pose.Far); err != nil {
		return err
	}
	return writePose(step, flow, pose)
}

// --- camera.set_pose ---

type cameraSetPoseStep struct{}

func (s *cameraSetPoseStep) PluginID() string { return "camera.set_pose" }

func (s *cameraSetPoseStep) Execute(_ context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	pose, err := requiredPose(step, flow, "source")
	if err != nil {
		return err
	}
	return writePose(step, flow, pose)
}

// --- camera.look_at ---

type cameraLookAtStep struct{}

func (s *cameraLookAtStep) PluginID() string { return "camera.look_at" }

func (s *cameraLookAtStep) Execute(_ context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	pose, err := requiredPose(step, flow, "pose")
	if err != nil {
		return err
	}
	target, err := RequiredVec3Arg(step, flow, "target")
	if err != nil {
		return err
	}
	pose.LookAt = target
	return writePose(step, flow, pose)
}

// --- camera.set_fov ---

type cameraSetFOVStep struct{}

func (s *cameraSetFOVStep) PluginID() string { return "camera.set_fov" }

func (s *cameraSetFOVStep) Execute(_ context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	pose, err := requiredPose(step, flow, "pose")
	if err != nil {
		return err
	}
	fov, err := RequiredNumberArg(step, flow, "fov")
	if err != nil {
		return err
	}
	if fov <= 0 || fov >= 180 {
		return schema.NewErrorf(schema.ErrCodeData, "%s: fov %g out of range (0, 180)", s.PluginID(), fov).
			WithPlugin(s.PluginID())
	}
	pose.FOV = fov
	return writePose(step, flow, pose)
}

// --- camera.teleport ---

type cameraTeleportStep struct{}

func (s *cameraTeleportStep) PluginID() string { return "camera.teleport" }

func (s *cameraTeleportStep) Execute(_ context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	pose, err := requiredPose(step, flow, "pose")
	if err != nil {
		return err
	}
	position, err := RequiredVec3Arg(step, flow, "position")
	if err != nil {
		return err
	}
	// Preserve the view direction across the jump unless a new target is given.
	delta := schema.Vec3{
		pose.LookAt[0] - pose.Position[0],
		pose.LookAt[1] - pose.Position[1],
		pose.LookAt[2] - pose.Position[2],
	}
	pose.Position = position
	pose.LookAt = schema.Vec3{position[0] + delta[0], position[1] + delta[1], position[2] + delta[2]}
	if pose.LookAt, err = Vec3ArgOr(step, flow, "look_at", pose.LookAt); err != nil {
		return err
	}
	return writePose(step, flow, pose)
}

// --- camera.fps_update ---
//
// One frame of free-look camera motion. Yaw and pitch accumulate across
// frames through the 'yaw'/'pitch' outputs that workflows bind back to the
// same keys the inputs read, which is what makes the camera remember its
// orientation. Pitch is clamped short of the poles to keep the view basis
// stable.

type cameraFPSUpdateStep struct{}

func (s *cameraFPSUpdateStep) PluginID() string { return "camera.fps_update" }

func (s *cameraFPSUpdateStep) Execute(_ context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	pose, err := requiredPose(step, flow, "pose")
	if err != nil {
		return err
	}
	yaw, err := NumberArgOr(step, flow, "yaw", 0)
	if err != nil {
		return err
	}
	pitch, err := NumberArgOr(step, flow, "pitch", 0)
	if err != nil {
		return err
	}
	yawDelta, err := NumberArgOr(step, flow, "yaw_delta", 0)
	if err != nil {
		return err
	}
	pitchDelta, err := NumberArgOr(step, flow, "pitch_delta", 0)
	if err != nil {
		return err
	}
	forward, err := NumberArgOr(step, flow, "move_forward", 0)
	if err != nil {
		return err
	}
	right, err := NumberArgOr(step, flow, "move_right", 0)
	if err != nil {
		return err
	}
	up, err := NumberArgOr(step, flow, "move_up", 0)
	if err != nil {
		return err
	}
	speed, err := NumberArgOr(step, flow, "speed", 5)
	if err != nil {
		return err
	}
	dt, err := NumberArgOr(step, flow, "dt", 1.0/60)
	if err != nil {
		return err
	}

	yaw += yawDelta
	pitch = math.Max(-89, math.Min(89, pitch+pitchDelta))

	yawRad := yaw * math.Pi / 180
	pitchRad := pitch * math.Pi / 180
	dir := schema.Vec3{
		math.Cos(pitchRad) * math.Sin(yawRad),
		math.Sin(pitchRad),
		-math.Cos(pitchRad) * math.Cos(yawRad),
	}
	rightDir := schema.Vec3{math.Cos(yawRad), 0, math.Sin(yawRad)}

	step4 := speed * dt
	pose.Position[0] += (dir[0]*forward + rightDir[0]*right) * step4
	pose.Position[1] += (dir[1]*forward + up) * step4
	pose.Position[2] += (dir[2]*forward + rightDir[2]*right) * step4
	pose.LookAt = schema.Vec3{
		pose.Position[0] + dir[0],
		pose.Position[1] + dir[1],
		pose.Position[2] + dir[2],
	}

	if yawKey, ok := step.Outputs["yaw"]; ok {
		flow.SetNumber(yawKey, yaw)
	}
	if pitchKey, ok := step.Outputs["pitch"]; ok {
		flow.SetNumber(pitchKey, pitch)
	}
	return writePose(step, flow, pose)
}

// --- matrix helpers ---

func vecSub(a, b schema.Vec3) schema.Vec3 {
	return schema.Vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func vecCross(a, b schema.Vec3) schema.Vec3 {
	return schema.Vec3{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func vecDot(a, b schema.Vec3) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func vecNormalize(v schema.Vec3) schema.Vec3 {
	l := math.Sqrt(vecDot(v, v))
	if l == 0 {
		return v
	}
	return schema.Vec3{v[0] / l, v[1] / l, v[2] / l}
}

// lookAtMatrix builds a right-handed view matrix in column-major order.
func lookAtMatrix(eye, center, up schema.Vec3) schema.Mat4 {
	f := vecNormalize(vecSub(center, eye))
	s := vecNormalize(vecCross(f, up))
	u := vecCross(s, f)
	return schema.Mat4{
		s[0], u[0], -f[0], 0,
		s[1], u[1], -f[1], 0,
		s[2], u[2], -f[2], 0,
		-vecDot(s, eye), -vecDot(u, eye), vecDot(f, eye), 1,
	}
}

// perspectiveMatrix builds a perspective projection for a 16:9 viewport.
// fovDegrees is the vertical field of view.
func perspectiveMatrix(fovDegrees, near, far float64) schema.Mat4 {
	const aspect = 16.0 / 9.0
	f := 1 / math.Tan(fovDegrees*math.Pi/360)
	return schema.Mat4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, (far + near) / (near - far), -1,
		0, 0, 2 * far * near / (near - far), 0,
	}
}
