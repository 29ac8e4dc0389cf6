package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextValues_RoundTrip(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, RunID(ctx))
	assert.Empty(t, Workflow(ctx))
	assert.Empty(t, StepID(ctx))

	ctx = WithRunID(ctx, "run-1")
	ctx = WithWorkflow(ctx, "core/boot")
	ctx = WithStepID(ctx, "spawn_fx")

	assert.Equal(t, "run-1", RunID(ctx))
	assert.Equal(t, "core/boot", Workflow(ctx))
	assert.Equal(t, "spawn_fx", StepID(ctx))
}

func TestCorrelationHandler_InjectsIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewCorrelationHandler(slog.NewTextHandler(&buf, nil)))

	ctx := WithStepID(WithWorkflow(WithRunID(context.Background(), "run-1"), "core/boot"), "spawn_fx")
	logger.InfoContext(ctx, "step finished")

	out := buf.String()
	assert.Contains(t, out, "step finished")
	assert.Contains(t, out, "run_id=run-1")
	assert.Contains(t, out, "workflow=core/boot")
	assert.Contains(t, out, "step_id=spawn_fx")
}

func TestCorrelationHandler_AbsentValuesAddNothing(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewCorrelationHandler(slog.NewTextHandler(&buf, nil)))

	logger.InfoContext(context.Background(), "no correlation")

	out := buf.String()
	assert.Contains(t, out, "no correlation")
	assert.NotContains(t, out, "run_id")
	assert.NotContains(t, out, "workflow")
	assert.NotContains(t, out, "step_id")
}

func TestCorrelationHandler_WithAttrsPreservesInjection(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewCorrelationHandler(slog.NewTextHandler(&buf, nil)))
	logger = logger.With(slog.String("component", "executor"))

	logger.InfoContext(WithRunID(context.Background(), "run-2"), "started")

	out := buf.String()
	assert.Contains(t, out, "component=executor")
	assert.Contains(t, out, "run_id=run-2")
}
