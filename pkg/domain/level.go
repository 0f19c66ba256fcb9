package domain

// Option is a selectable branch of a Level.
// Next is a weak reference: it may name a level that does not exist.
type Option struct {
	Text string `json:"text" yaml:"text" mapstructure:"text"`
	Next string `json:"next,omitempty" yaml:"next,omitempty" mapstructure:"next"`
}

// HasNext reports whether the option points somewhere.
func (o Option) HasNext() bool {
	return o.Next != ""
}

// Level represents a node in the content tree.
// All content fields are optional; a level with none of them still renders
// the navigation controls.
type Level struct {
	ID       string   `json:"id" yaml:"id"`
	Answer   string   `json:"answer,omitempty" yaml:"answer,omitempty"`
	Question string   `json:"question,omitempty" yaml:"question,omitempty"`
	Options  []Option `json:"options,omitempty" yaml:"options,omitempty"`
}

// HasOptions reports whether the level declares at least one option.
func (l Level) HasOptions() bool {
	return len(l.Options) > 0
}

// DeclaresOptions reports whether the level carries an options list at all.
// An empty list still counts.
func (l Level) DeclaresOptions() bool {
	return l.Options != nil
}
