// Package steps defines the step contract (the interpreter's instruction
// set) along with the plugin registry used for all dispatch and the
// built-in step catalog.
package steps

import (
	"context"

	"github.com/ludere/stepflow/internal/flowctx"
	"github.com/ludere/stepflow/pkg/schema"
)

// Step is one named operation with a fixed input/output/parameter
// contract. Execute performs the effect against the shared context and
// returns a descriptive error on any contract violation.
type Step interface {
	PluginID() string
	Execute(ctx context.Context, step *schema.StepDefinition, flow *flowctx.Context) error
}

// Lookup is the narrow registry view injected into control-flow steps.
// Calling step B from step A means building a minimal StepDefinition for
// B, resolving it here, and invoking Execute; the registry is the only
// indirection mechanism in the interpreter.
type Lookup interface {
	Get(pluginID string) (Step, error)
}

// SubWorkflowRunner runs a whole workflow definition against a context.
// Satisfied by *engine.Executor; declared here so loop steps don't import
// the engine package.
type SubWorkflowRunner interface {
	Execute(ctx context.Context, def *schema.WorkflowDefinition, flow *flowctx.Context) error
}

// WorkflowLoader locates and parses a named workflow from a package's
// on-disk catalog. Satisfied by *engine.Resolver.
type WorkflowLoader interface {
	Load(ctx context.Context, pkg, name string) (*schema.WorkflowDefinition, error)
}
