package steps

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ludere/stepflow/internal/expressions"
	"github.com/ludere/stepflow/internal/flowctx"
	"github.com/ludere/stepflow/internal/services"
	"github.com/ludere/stepflow/pkg/schema"
)

// testEnv bundles a fully-registered registry with the in-memory services
// behind it, so tests can both run steps and inspect service state.
type testEnv struct {
	reg     *Registry
	audio   *services.MemoryAudio
	physics *services.MemoryPhysics
	input   *services.MemoryInput
	vfx     *services.MemoryVFX
}

// stubRunner records sub-workflow executions without doing anything.
type stubRunner struct {
	calls int
	fn    func(flow *flowctx.Context) error
}

func (r *stubRunner) Execute(_ context.Context, _ *schema.WorkflowDefinition, flow *flowctx.Context) error {
	r.calls++
	if r.fn != nil {
		return r.fn(flow)
	}
	return nil
}

// stubLoader serves one fixed definition for any package/name.
type stubLoader struct {
	def   *schema.WorkflowDefinition
	loads int
}

func (l *stubLoader) Load(_ context.Context, pkg, name string) (*schema.WorkflowDefinition, error) {
	l.loads++
	if l.def != nil {
		return l.def, nil
	}
	return &schema.WorkflowDefinition{Package: pkg, Name: name}, nil
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cel, err := expressions.NewCELEngine()
	require.NoError(t, err)

	env := &testEnv{
		reg:     NewRegistry(),
		audio:   services.NewMemoryAudio(),
		physics: services.NewMemoryPhysics(),
		input:   services.NewMemoryInput(),
		vfx:     services.NewMemoryVFX(),
	}
	err = RegisterBuiltins(env.reg, Deps{
		Logger:  slog.New(slog.DiscardHandler),
		Runner:  &stubRunner{},
		Loader:  &stubLoader{},
		Audio:   env.audio,
		Physics: env.physics,
		Input:   env.input,
		VFX:     env.vfx,
		Expr:    expressions.NewExprEngine(),
		CEL:     cel,
		JQ:      expressions.NewGoJQEngine(),
	})
	require.NoError(t, err)
	return env
}

// runStep dispatches one step definition through the registry.
func (e *testEnv) runStep(t *testing.T, step *schema.StepDefinition, flow *flowctx.Context) error {
	t.Helper()
	impl, err := e.reg.Get(step.Plugin)
	require.NoError(t, err)
	return impl.Execute(context.Background(), step, flow)
}

func stepDef(plugin string) *schema.StepDefinition {
	return &schema.StepDefinition{
		ID:      plugin,
		Plugin:  plugin,
		Inputs:  map[string]string{},
		Outputs: map[string]string{},
		Params:  map[string]schema.Value{},
	}
}

func requireFlowCode(t *testing.T, err error, code string) *schema.FlowError {
	t.Helper()
	require.Error(t, err)
	var ferr *schema.FlowError
	require.ErrorAs(t, err, &ferr)
	require.Equal(t, code, ferr.Code)
	return ferr
}
