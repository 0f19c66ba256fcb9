package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

// GraphOverlay contains session data to visualize on the graph.
type GraphOverlay struct {
	VisitedLevels []string
	CurrentLevel  string
}

// OverlayFromState highlights the levels on the session's back stack and its current level.
func OverlayFromState(state *domain.State) *GraphOverlay {
	if state == nil {
		return nil
	}
	return &GraphOverlay{
		VisitedLevels: append([]string(nil), state.NavigationStack...),
		CurrentLevel:  state.CurrentLevel,
	}
}

// GenerateMermaid produces a Mermaid flowchart syntax string from a content tree.
// It applies semantic styling:
// - Root: ((Circle))
// - Leaf (no options): (Rounded)
// - Default: [Rectangle]
// Option edges carry the option label. Options without a next level point to
// a flag node; links to missing levels are drawn dotted to a "missing" node.
func GenerateMermaid(tree *domain.ContentTree, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	if tree == nil {
		return sb.String()
	}

	var missing []string
	seenMissing := make(map[string]bool)

	for _, id := range tree.IDs() {
		level, _ := tree.Lookup(id)
		safeID := sanitizeMermaidID(id)

		opener, closer := "[", "]"
		switch {
		case id == tree.Root:
			opener, closer = "((", "))"
		case !level.HasOptions():
			opener, closer = "(", ")"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, escapeLabel(id), closer)

		for i, opt := range level.Options {
			label := escapeLabel(opt.Text)
			switch {
			case !opt.HasNext():
				stub := fmt.Sprintf("%s__end%d", safeID, i)
				fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s>\"no further information\"]\n", safeID, label, stub)
			case !tree.Has(opt.Next):
				safeTo := sanitizeMermaidID(opt.Next)
				fmt.Fprintf(&sb, "    %s -. \"%s\" .-> %s\n", safeID, label, safeTo)
				if !seenMissing[safeTo] {
					seenMissing[safeTo] = true
					missing = append(missing, opt.Next)
				}
			default:
				fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", safeID, label, sanitizeMermaidID(opt.Next))
			}
		}
	}

	if !tree.Has(tree.Root) {
		missing = append(missing, tree.Root)
	}
	if len(missing) > 0 {
		sb.WriteString("\n    classDef missing fill:#ffebee,stroke:#c62828,stroke-dasharray:4 2,color:#000;\n")
		for _, id := range missing {
			safeID := sanitizeMermaidID(id)
			fmt.Fprintf(&sb, "    %s[\"%s (missing)\"]\n", safeID, escapeLabel(id))
			fmt.Fprintf(&sb, "    class %s missing;\n", safeID)
		}
	}

	// Apply Overlay Styles
	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, id := range overlay.VisitedLevels {
			safeID := sanitizeMermaidID(id)
			if !visitedSet[safeID] && safeID != "" {
				visitedSet[safeID] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
			}
		}

		if overlay.CurrentLevel != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.CurrentLevel))
		}
	}

	return sb.String()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
