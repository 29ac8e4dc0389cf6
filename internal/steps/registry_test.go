package steps

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludere/stepflow/internal/flowctx"
	"github.com/ludere/stepflow/pkg/schema"
)

type stubStep struct {
	id   string
	fn   func(flow *flowctx.Context) error
	runs int
}

func (s *stubStep) PluginID() string { return s.id }

func (s *stubStep) Execute(_ context.Context, _ *schema.StepDefinition, flow *flowctx.Context) error {
	s.runs++
	if s.fn != nil {
		return s.fn(flow)
	}
	return nil
}

func TestRegistry_Register_Success(t *testing.T) {
	reg := NewRegistry()

	err := reg.Register(&stubStep{id: "test.step"})
	require.NoError(t, err)

	assert.True(t, reg.Has("test.step"))
	assert.Equal(t, 1, reg.Count())
}

func TestRegistry_Register_Duplicate(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(&stubStep{id: "test.step"}))

	err := reg.Register(&stubStep{id: "test.step"})
	ferr := requireFlowCode(t, err, schema.ErrCodeConflict)
	assert.Contains(t, ferr.Message, "test.step")
}

func TestRegistry_Register_Nil(t *testing.T) {
	reg := NewRegistry()

	err := reg.Register(nil)
	requireFlowCode(t, err, schema.ErrCodeValidation)
}

func TestRegistry_Register_EmptyID(t *testing.T) {
	reg := NewRegistry()

	err := reg.Register(&stubStep{id: ""})
	requireFlowCode(t, err, schema.ErrCodeValidation)
}

func TestRegistry_RegisterAll_StopsAtFirstFailure(t *testing.T) {
	reg := NewRegistry()

	err := reg.RegisterAll(
		&stubStep{id: "a"},
		&stubStep{id: "a"},
		&stubStep{id: "b"},
	)
	requireFlowCode(t, err, schema.ErrCodeConflict)
	assert.False(t, reg.Has("b"))
}

func TestRegistry_Get_Success(t *testing.T) {
	reg := NewRegistry()
	want := &stubStep{id: "test.step"}
	require.NoError(t, reg.Register(want))

	got, err := reg.Get("test.step")
	require.NoError(t, err)
	assert.Same(t, Step(want), got)
}

func TestRegistry_Get_NotFound(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Get("missing.step")
	ferr := requireFlowCode(t, err, schema.ErrCodeNotFound)
	assert.Contains(t, ferr.Message, "missing.step")
}

func TestRegistry_List_Sorted(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterAll(
		&stubStep{id: "c.step"},
		&stubStep{id: "a.step"},
		&stubStep{id: "b.step"},
	))

	assert.Equal(t, []string{"a.step", "b.step", "c.step"}, reg.List())
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	reg := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = reg.Register(&stubStep{id: fmt.Sprintf("step.%d", n)})
		}(i)
		go func(n int) {
			defer wg.Done()
			_, _ = reg.Get(fmt.Sprintf("step.%d", n))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, reg.Count())
}

func TestRegisterBuiltins_CoreFamiliesPresent(t *testing.T) {
	env := newTestEnv(t)

	for _, id := range []string{
		"control.condition.if_else",
		"control.condition.switch",
		"control.condition.when",
		"control.loop.for_each",
		"control.loop.while",
		"control.try.catch",
		"workflow.execute",
		"number.add",
		"string.concat",
		"list.filter.gt",
		"bool.and",
		"compare.eq",
		"value.literal",
		"value.expr",
		"data.serialize",
		"data.query",
		"debug.log",
		"camera.setup",
		"model.set_transform",
		"audio.play",
		"physics.world.create",
		"input.poll",
		"vfx.spawn",
	} {
		assert.True(t, env.reg.Has(id), "missing plugin %s", id)
	}
}
