package memory

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/arbor/internal/dto"
	"github.com/aretw0/arbor/pkg/domain"
)

// Loader implements ports.TreeLoader with a tree held in memory.
type Loader struct {
	tree *domain.ContentTree
}

// NewLoader creates a Loader from raw level definitions (JSON strings keyed by level ID).
func NewLoader(root string, data map[string]string) (*Loader, error) {
	levels := make(map[string]domain.Level, len(data))
	for id, raw := range data {
		var meta dto.LevelMetadata
		if err := json.Unmarshal([]byte(raw), &meta); err != nil {
			return nil, fmt.Errorf("%w: level %s: %v", domain.ErrTreeLoad, id, err)
		}
		levels[id] = meta.ToLevel(id)
	}
	return &Loader{tree: domain.NewContentTree(root, levels)}, nil
}

// NewFromLevels creates a Loader from domain objects.
// This improves DX for tests and embedding.
func NewFromLevels(root string, levels ...domain.Level) (*Loader, error) {
	byID := make(map[string]domain.Level, len(levels))
	for _, lvl := range levels {
		if lvl.ID == "" {
			return nil, fmt.Errorf("%w: level missing ID", domain.ErrTreeLoad)
		}
		byID[lvl.ID] = lvl
	}
	return &Loader{tree: domain.NewContentTree(root, byID)}, nil
}

// NewFromTree wraps an already built tree.
func NewFromTree(tree *domain.ContentTree) *Loader {
	return &Loader{tree: tree}
}

// Load returns the held tree.
func (l *Loader) Load(ctx context.Context) (*domain.ContentTree, error) {
	if l.tree == nil {
		return nil, fmt.Errorf("%w: no tree", domain.ErrTreeLoad)
	}
	return l.tree, nil
}
