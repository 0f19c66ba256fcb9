// Package loam loads a content tree from a directory of level documents
// managed by Loam. Each document is one level: front matter carries the
// question and options, the body is the answer.
package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/arbor/internal/dto"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/loam"
)

// Loader adapts the Loam library to the Arbor TreeLoader interface.
type Loader struct {
	Repo     *loam.TypedRepository[dto.LevelMetadata]
	root     string
	messages domain.Messages
}

// Option configures the Loader.
type Option func(*Loader)

// WithRoot sets the main menu level. Defaults to domain.DefaultRootLevel.
func WithRoot(root string) Option {
	return func(l *Loader) {
		l.root = root
	}
}

// WithMessages overrides bot texts for trees loaded from this directory.
func WithMessages(m domain.Messages) Option {
	return func(l *Loader) {
		l.messages = m
	}
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[dto.LevelMetadata], opts ...Option) *Loader {
	l := &Loader{Repo: repo}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Open initializes a read-only Loam repository at dir and wraps it.
func Open(dir string, opts ...Option) (*Loader, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	// Strict mode keeps numeric types consistent across Markdown/YAML and JSON documents.
	// The engine never writes to the tree, so the repository is opened read-only.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[dto.LevelMetadata](repo), opts...), nil
}

// Load lists every document and builds the tree. IDs come from the "id"
// front matter key or, when absent, from the file name without extension.
func (l *Loader) Load(ctx context.Context) (*domain.ContentTree, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: loam list failed: %v", domain.ErrTreeLoad, err)
	}

	seen := make(map[string]string, len(docs))
	levels := make(map[string]domain.Level, len(docs))
	for _, doc := range docs {
		rawID := doc.Data.ID
		if rawID == "" {
			rawID = doc.ID
		}
		id := trimExtension(rawID)

		if existing, ok := seen[id]; ok {
			return nil, fmt.Errorf("%w: collision detected: level '%s' is defined in both '%s' and '%s'", domain.ErrTreeLoad, id, existing, doc.ID)
		}
		seen[id] = doc.ID

		meta := doc.Data
		if body := strings.TrimSpace(doc.Content); body != "" {
			meta.Answer = body
		}
		levels[id] = meta.ToLevel(id)
	}

	tree := domain.NewContentTree(l.root, levels)
	tree.Messages = tree.Messages.Merge(l.messages)
	return tree, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
