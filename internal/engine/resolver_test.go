package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludere/stepflow/pkg/schema"
)

func writeWorkflow(t *testing.T, base, pkg, name, doc string) string {
	t.Helper()
	dir := filepath.Join(base, "packages", pkg, "workflows")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, name+".json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func TestResolver_Resolve_ConfiguredBase(t *testing.T) {
	base := t.TempDir()
	want := writeWorkflow(t, base, "core", "boot", `{"steps": []}`)

	r := NewResolver(NewParser(nil), base)
	got, err := r.Resolve("core", "boot")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestResolver_Resolve_NotFound(t *testing.T) {
	r := NewResolver(NewParser(nil), t.TempDir())

	_, err := r.Resolve("core", "missing")
	var ferr *schema.FlowError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, schema.ErrCodeNotFound, ferr.Code)
	assert.Contains(t, ferr.Message, "workflow 'core/missing' not found")
}

func TestResolver_Resolve_BaseOrder(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	want := writeWorkflow(t, first, "core", "boot", `{"steps": []}`)
	writeWorkflow(t, second, "core", "boot", `{"steps": []}`)

	r := NewResolver(NewParser(nil), first, second)
	got, err := r.Resolve("core", "boot")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestResolver_Resolve_EngineSubdirectory(t *testing.T) {
	base := t.TempDir()
	engineDir := filepath.Join(base, "engine")
	want := writeWorkflow(t, engineDir, "core", "boot", `{"steps": []}`)

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(base))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	r := NewResolver(NewParser(nil))
	got, err := r.Resolve("core", "boot")
	require.NoError(t, err)
	// Resolved relative to the working directory's engine/ probe.
	assert.Equal(t, want, got)
}

func TestResolver_Load_ParsesAndCaches(t *testing.T) {
	base := t.TempDir()
	path := writeWorkflow(t, base, "core", "boot", `{"steps": [{"id": "a", "plugin": "input.poll"}]}`)

	r := NewResolver(NewParser(nil), base)
	def, err := r.Load(context.Background(), "core", "boot")
	require.NoError(t, err)
	require.Len(t, def.Steps, 1)
	assert.Equal(t, "core", def.Package)
	assert.Equal(t, "boot", def.Name)

	// A second load serves the cache even after the file disappears.
	require.NoError(t, os.Remove(path))
	again, err := r.Load(context.Background(), "core", "boot")
	require.NoError(t, err)
	assert.Same(t, def, again)
}

func TestResolver_Load_ParseErrorNotCached(t *testing.T) {
	base := t.TempDir()
	path := writeWorkflow(t, base, "core", "boot", `{"steps": [{"id": "", "plugin": "input.poll"}]}`)

	r := NewResolver(NewParser(nil), base)
	_, err := r.Load(context.Background(), "core", "boot")
	var ferr *schema.FlowError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, schema.ErrCodeValidation, ferr.Code)

	// Fixing the file makes the next load succeed.
	require.NoError(t, os.WriteFile(path, []byte(`{"steps": [{"id": "a", "plugin": "input.poll"}]}`), 0o644))
	_, err = r.Load(context.Background(), "core", "boot")
	require.NoError(t, err)
}
