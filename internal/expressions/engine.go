// Package expressions provides the expression engines scriptable steps
// evaluate against a context snapshot: Expr for arithmetic and logic, CEL
// for guard conditions, and jq for data queries.
package expressions

import "context"

// Engine evaluates one expression against a context snapshot. The snapshot
// is the flat key-to-native-value map produced by flowctx.Context.Snapshot.
type Engine interface {
	Name() string
	Evaluate(ctx context.Context, expression string, snapshot map[string]any) (any, error)
}
