package domain

import "sort"

// DefaultRootLevel is the level used as "main menu" when the document does not name one.
const DefaultRootLevel = "level1"

// ContentTree is the loaded, read-only conversation script.
// It is built once by a loader and shared by every session.
type ContentTree struct {
	// Root is the main menu level. It is not required to exist in Levels.
	Root string `json:"root"`

	// Levels maps level identifiers to their content.
	Levels map[string]Level `json:"levels"`

	// Messages is the bot message catalog used by the engine.
	Messages Messages `json:"messages"`
}

// NewContentTree builds a tree from the given levels.
// Level IDs are normalized from the map keys and an empty root falls back to DefaultRootLevel.
func NewContentTree(root string, levels map[string]Level) *ContentTree {
	if root == "" {
		root = DefaultRootLevel
	}
	normalized := make(map[string]Level, len(levels))
	for id, lvl := range levels {
		lvl.ID = id
		normalized[id] = lvl
	}
	return &ContentTree{
		Root:     root,
		Levels:   normalized,
		Messages: DefaultMessages(),
	}
}

// Lookup resolves a level identifier. It never panics and never returns a
// partially filled level: callers must check found before using the result.
func (t *ContentTree) Lookup(id string) (Level, bool) {
	if t == nil || id == "" {
		return Level{}, false
	}
	lvl, found := t.Levels[id]
	return lvl, found
}

// Has reports whether the level exists.
func (t *ContentTree) Has(id string) bool {
	_, found := t.Lookup(id)
	return found
}

// IDs returns all level identifiers in a deterministic (sorted) order.
func (t *ContentTree) IDs() []string {
	if t == nil {
		return nil
	}
	ids := make([]string, 0, len(t.Levels))
	for id := range t.Levels {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of levels.
func (t *ContentTree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Levels)
}
