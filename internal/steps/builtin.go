package steps

import (
	"log/slog"

	"github.com/ludere/stepflow/internal/expressions"
	"github.com/ludere/stepflow/internal/services"
)

// Deps carries everything the built-in catalog needs wired in: the engine
// services behind the media step families, the sub-workflow machinery for
// the loop and workflow steps, and the expression engines.
type Deps struct {
	Logger *slog.Logger
	Runner SubWorkflowRunner
	Loader WorkflowLoader

	Audio   services.AudioService
	Physics services.PhysicsService
	Input   services.InputService
	VFX     services.VFXService

	Expr *expressions.ExprEngine
	CEL  *expressions.CELEngine
	JQ   *expressions.GoJQEngine
}

// RegisterBuiltins registers every built-in step in the given registry.
func RegisterBuiltins(reg *Registry, deps Deps) error {
	all := make([]Step, 0, 96)

	// Control flow.
	all = append(all,
		NewIfElseStep(reg),
		NewSwitchStep(reg),
		NewForEachStep(reg),
		NewWhileStep(deps.Runner, deps.Loader, deps.Logger),
		NewTryCatchStep(reg),
		NewWhenStep(reg, deps.CEL),
		NewWorkflowExecuteStep(deps.Runner, deps.Loader),
	)

	// Value plumbing and scripting.
	all = append(all, ValueSteps()...)
	all = append(all, NewValueExprStep(deps.Expr))
	all = append(all, DataSteps(deps.JQ)...)

	// Scalar families.
	all = append(all, NumberSteps()...)
	all = append(all, StringSteps()...)
	all = append(all, ListSteps()...)
	all = append(all, BoolSteps()...)
	all = append(all, CompareSteps()...)

	// Diagnostics.
	all = append(all, DebugSteps(deps.Logger)...)

	// Scene and media.
	all = append(all, CameraSteps()...)
	all = append(all, ModelSteps()...)
	all = append(all, AudioSteps(deps.Audio)...)
	all = append(all, PhysicsSteps(deps.Physics)...)
	all = append(all, InputSteps(deps.Input)...)
	all = append(all, VFXSteps(deps.VFX)...)

	return reg.RegisterAll(all...)
}
