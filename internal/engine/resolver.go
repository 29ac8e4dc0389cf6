package engine

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/ludere/stepflow/internal/steps"
	"github.com/ludere/stepflow/pkg/schema"
)

// ancestorDepth is how many parent directories above the working
// directory the resolver searches. Tools launched from a build output
// directory a few levels below the project root still find the catalog.
const ancestorDepth = 5

// Resolver locates workflow documents on disk under the layout
// <base>/packages/<pkg>/workflows/<name>.json and parses them through the
// Parser. Parsed definitions are cached; the catalog is treated as
// immutable for the life of the process.
type Resolver struct {
	bases  []string
	parser *Parser

	mu    sync.RWMutex
	cache map[string]*schema.WorkflowDefinition
}

// NewResolver creates a resolver. bases are searched first, in order;
// when none match, the working directory and its ancestors are probed.
func NewResolver(parser *Parser, bases ...string) *Resolver {
	return &Resolver{
		bases:  bases,
		parser: parser,
		cache:  make(map[string]*schema.WorkflowDefinition),
	}
}

// Resolve returns the path of a workflow document, or a not-found error
// listing the package and workflow that was looked for.
func (r *Resolver) Resolve(pkg, name string) (string, error) {
	for _, base := range r.searchBases() {
		path := filepath.Join(base, "packages", pkg, "workflows", name+".json")
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", schema.NewErrorf(schema.ErrCodeNotFound, "workflow '%s/%s' not found in any package directory", pkg, name)
}

// searchBases returns the probe order: configured bases, then the working
// directory and its ancestors, each tried directly and under engine/.
func (r *Resolver) searchBases() []string {
	bases := make([]string, 0, len(r.bases)+2*(ancestorDepth+1))
	bases = append(bases, r.bases...)

	dir, err := os.Getwd()
	if err != nil {
		return bases
	}
	for i := 0; i <= ancestorDepth; i++ {
		bases = append(bases, dir, filepath.Join(dir, "engine"))
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return bases
}

// Load resolves, reads, and parses a workflow, caching the result.
func (r *Resolver) Load(_ context.Context, pkg, name string) (*schema.WorkflowDefinition, error) {
	key := pkg + "/" + name

	r.mu.RLock()
	if def, ok := r.cache[key]; ok {
		r.mu.RUnlock()
		return def, nil
	}
	r.mu.RUnlock()

	path, err := r.Resolve(pkg, name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeStore, "read workflow '%s': %s", path, err).WithCause(err)
	}
	def, err := r.parser.Parse(data, pkg, name)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if cached, ok := r.cache[key]; ok {
		return cached, nil
	}
	r.cache[key] = def
	return def, nil
}

var _ steps.WorkflowLoader = (*Resolver)(nil)
