package expressions

import (
	"context"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/ludere/stepflow/pkg/schema"
)

// ExprEngine evaluates expr-lang expressions for the value.expr step.
// Context keys with dots in them are not valid expr identifiers, so the
// snapshot is exposed through a single 'ctx' map variable alongside any
// dot-free keys as top-level variables.
// Thread-safe: compiled programs are cached and reused.
type ExprEngine struct {
	mu    sync.RWMutex
	cache map[string]*vm.Program
}

// NewExprEngine creates a new Expr engine with an empty program cache.
func NewExprEngine() *ExprEngine {
	return &ExprEngine{cache: make(map[string]*vm.Program)}
}

func (e *ExprEngine) Name() string { return "expr" }

// Evaluate compiles (or retrieves from cache) an expression and runs it
// against the snapshot.
func (e *ExprEngine) Evaluate(_ context.Context, expression string, snapshot map[string]any) (any, error) {
	if expression == "" {
		return nil, schema.NewError(schema.ErrCodeValidation, "empty expr expression")
	}

	prg, err := e.getOrCompile(expression)
	if err != nil {
		return nil, err
	}

	out, err := vm.Run(prg, exprEnv(snapshot))
	if err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeExecution,
			"expr evaluation failed for %q: %s", expression, err.Error()).WithCause(err)
	}
	return out, nil
}

func (e *ExprEngine) getOrCompile(expression string) (*vm.Program, error) {
	e.mu.RLock()
	if prg, ok := e.cache[expression]; ok {
		e.mu.RUnlock()
		return prg, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	// Double-check after acquiring write lock.
	if prg, ok := e.cache[expression]; ok {
		return prg, nil
	}

	prg, err := expr.Compile(expression, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeValidation,
			"expr compile error in %q: %s", expression, err.Error()).WithCause(err)
	}

	e.cache[expression] = prg
	return prg, nil
}

// exprEnv builds the evaluation environment: the whole snapshot under
// 'ctx' plus each dot-free key as a top-level variable.
func exprEnv(snapshot map[string]any) map[string]any {
	env := make(map[string]any, len(snapshot)+1)
	for k, v := range snapshot {
		if validIdentifier(k) {
			env[k] = v
		}
	}
	env["ctx"] = snapshot
	return env
}

func validIdentifier(s string) bool {
	if s == "" || s == "ctx" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

var _ Engine = (*ExprEngine)(nil)
