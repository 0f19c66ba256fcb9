package ports

import (
	"context"

	"github.com/aretw0/arbor/pkg/domain"
)

// TreeLoader defines how the engine retrieves its content tree.
// This allows the source (JSON/YAML file, URL, Loam directory, Memory) to be decoupled.
type TreeLoader interface {
	// Load produces the full content tree. Failures wrap domain.ErrTreeLoad.
	Load(ctx context.Context) (*domain.ContentTree, error)
}

// TreeLoaderFunc adapts a function to the TreeLoader interface.
type TreeLoaderFunc func(ctx context.Context) (*domain.ContentTree, error)

// Load calls f(ctx).
func (f TreeLoaderFunc) Load(ctx context.Context) (*domain.ContentTree, error) {
	return f(ctx)
}
