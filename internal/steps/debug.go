package steps

import (
	"context"
	"log/slog"

	"github.com/ludere/stepflow/internal/flowctx"
	"github.com/ludere/stepflow/pkg/schema"
)

// DebugSteps returns the diagnostic step family.
func DebugSteps(logger *slog.Logger) []Step {
	return []Step{
		&debugLogStep{logger: logger},
		&debugMetricsStep{logger: logger},
	}
}

// --- debug.log ---
//
// Logs the 'message' argument at info level. When a 'value' input is
// bound, the context value under that key is attached to the record.

type debugLogStep struct {
	logger *slog.Logger
}

func (s *debugLogStep) PluginID() string { return "debug.log" }

func (s *debugLogStep) Execute(ctx context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	msg, err := RequiredStringArg(step, flow, "message")
	if err != nil {
		return err
	}
	attrs := []any{slog.String("step", step.ID)}
	if key, ok := step.Inputs["value"]; ok {
		v, found := flow.Lookup(key)
		if !found {
			return schema.NewErrorf(schema.ErrCodeData, "%s: context key '%s' is missing", s.PluginID(), key).
				WithPlugin(s.PluginID()).WithKey(key)
		}
		attrs = append(attrs, slog.String("key", key), slog.String("value", v.String()))
	}
	s.logger.InfoContext(ctx, msg, attrs...)
	return nil
}

// --- debug.metrics ---

type debugMetricsStep struct {
	logger *slog.Logger
}

func (s *debugMetricsStep) PluginID() string { return "debug.metrics" }

func (s *debugMetricsStep) Execute(ctx context.Context, step *schema.StepDefinition, flow *flowctx.Context) error {
	s.logger.InfoContext(ctx, "context metrics",
		slog.String("step", step.ID),
		slog.Int("entries", flow.Len()),
		slog.Any("keys", flow.Keys()))
	if outKey, ok := step.Outputs["count"]; ok {
		flow.SetNumber(outKey, float64(flow.Len()))
	}
	return nil
}
