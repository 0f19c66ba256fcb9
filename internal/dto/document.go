package dto

import (
	"fmt"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// Document is the on-disk (or on-wire) shape of a content tree.
//
//	{"root": "level1", "messages": {...}, "levels": {"level1": {...}}}
type Document struct {
	Root     string                   `json:"root,omitempty" mapstructure:"root"`
	Messages domain.Messages          `json:"messages,omitempty" mapstructure:"messages"`
	Levels   map[string]LevelMetadata `json:"levels" mapstructure:"levels"`
}

// LevelMetadata is the raw definition of a single level.
// It uses "mapstructure" tags so the same struct serves JSON, YAML and front matter sources.
type LevelMetadata struct {
	ID       string           `json:"id,omitempty" mapstructure:"id"`
	Answer   string           `json:"answer,omitempty" mapstructure:"answer"`
	Question string           `json:"question,omitempty" mapstructure:"question"`
	Options  []OptionMetadata `json:"options,omitempty" mapstructure:"options"`
}

type OptionMetadata struct {
	Text string `json:"text" mapstructure:"text"`
	Next string `json:"next,omitempty" mapstructure:"next"`
}

// Decode converts a generic map (as produced by encoding/json or yaml.v3) into a Document.
func Decode(raw map[string]any) (*Document, error) {
	if raw == nil {
		return nil, fmt.Errorf("empty document")
	}
	if _, ok := raw["levels"]; !ok {
		return nil, fmt.Errorf("document has no \"levels\" section")
	}

	var doc Document
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &doc,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return &doc, nil
}

// DecodeLevel converts a single raw level definition.
func DecodeLevel(raw map[string]any) (LevelMetadata, error) {
	var meta LevelMetadata
	if err := mapstructure.WeakDecode(raw, &meta); err != nil {
		return LevelMetadata{}, fmt.Errorf("failed to decode level: %w", err)
	}
	return meta, nil
}

// ToLevel converts the metadata into a domain level.
func (m LevelMetadata) ToLevel(id string) domain.Level {
	lvl := domain.Level{
		ID:       id,
		Answer:   m.Answer,
		Question: m.Question,
	}
	if m.Options != nil {
		lvl.Options = make([]domain.Option, len(m.Options))
		for i, opt := range m.Options {
			lvl.Options[i] = domain.Option{Text: opt.Text, Next: opt.Next}
		}
	}
	return lvl
}

// Tree builds the immutable content tree. Messages missing from the document keep their defaults.
func (d *Document) Tree() *domain.ContentTree {
	levels := make(map[string]domain.Level, len(d.Levels))
	for id, meta := range d.Levels {
		levels[id] = meta.ToLevel(id)
	}
	tree := domain.NewContentTree(d.Root, levels)
	tree.Messages = tree.Messages.Merge(d.Messages)
	return tree
}

// FromTree converts a tree back into its document form.
func FromTree(tree *domain.ContentTree) *Document {
	doc := &Document{
		Root:     tree.Root,
		Messages: tree.Messages,
		Levels:   make(map[string]LevelMetadata, len(tree.Levels)),
	}
	for id, lvl := range tree.Levels {
		meta := LevelMetadata{Answer: lvl.Answer, Question: lvl.Question}
		if lvl.Options != nil {
			meta.Options = make([]OptionMetadata, len(lvl.Options))
			for i, opt := range lvl.Options {
				meta.Options[i] = OptionMetadata{Text: opt.Text, Next: opt.Next}
			}
		}
		doc.Levels[id] = meta
	}
	return doc
}
