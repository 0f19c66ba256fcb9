package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/arbor/internal/presentation/graph"
	"github.com/aretw0/arbor/internal/validator"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// ErrInvalidTree is returned by Validate when the report carries errors.
var ErrInvalidTree = errors.New("content tree is invalid")

// Validate prints the findings for tree, as text or JSON.
func Validate(tree *domain.ContentTree, asJSON bool, w io.Writer) error {
	report := validator.ValidateTree(tree)

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		for _, issue := range report.Issues {
			fmt.Fprintln(w, issue.String())
		}
	}

	if n := len(report.Errors()); n > 0 {
		return fmt.Errorf("%w: %d errors", ErrInvalidTree, n)
	}
	if !asJSON {
		fmt.Fprintf(w, "Tree is valid! ✅ (%d levels, root '%s')\n", tree.Len(), tree.Root)
	}
	return nil
}

// Graph prints the Mermaid diagram of tree, highlighting the path of sessionID if given.
func Graph(ctx context.Context, tree *domain.ContentTree, store ports.SessionStore, sessionID string, w io.Writer) error {
	var overlay *graph.GraphOverlay
	if sessionID != "" {
		state, err := store.Load(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("loading session '%s': %w", sessionID, err)
		}
		overlay = graph.OverlayFromState(state)
	}
	_, err := fmt.Fprint(w, graph.GenerateMermaid(tree, overlay))
	return err
}
