package domain

// ActionRequest represents something the engine asks the host to render.
// Requests are ordered; hosts must apply them in sequence.
type ActionRequest struct {
	Type    string `json:"type"`    // e.g., "APPEND_MESSAGE"
	Payload any    `json:"payload"` // Message or ControlSet
}

// Standard Action Types
const (
	// ActionAppendMessage requests the host to append a chat bubble.
	// Payload: Message
	ActionAppendMessage = "APPEND_MESSAGE"

	// ActionAppendControls requests the host to append a group of clickable controls.
	// Payload: ControlSet
	ActionAppendControls = "APPEND_CONTROLS"
)

// Actor identifies who authored a message.
type Actor string

const (
	ActorUser Actor = "user"
	ActorBot  Actor = "bot"
)

// Message is the payload of ActionAppendMessage.
type Message struct {
	Actor Actor  `json:"actor"`
	Text  string `json:"text"`
}

// ControlSetKind distinguishes option buttons from navigation buttons.
type ControlSetKind string

const (
	ControlsOptions    ControlSetKind = "options"
	ControlsNavigation ControlSetKind = "navigation"
)

// ControlKind tells the host what activating a control does.
type ControlKind string

const (
	ControlOption   ControlKind = "option"
	ControlBack     ControlKind = "back"
	ControlMainMenu ControlKind = "main_menu"
)

// Control labels used for the navigation pair.
const (
	LabelBack     = "↩ Back"
	LabelMainMenu = "🏠 Main Menu"
)

// Control is a single clickable element.
// For ControlOption, Index is the 0-based position of the option in its level
// and Next is copied from the option. Navigation controls carry no Index.
type Control struct {
	Kind  ControlKind `json:"kind"`
	Label string      `json:"label"`
	Index *int        `json:"index,omitempty"`
	Next  string      `json:"next,omitempty"`
}

// OptionControl builds the control for the option at position index.
func OptionControl(index int, opt Option) Control {
	return Control{Kind: ControlOption, Label: opt.Text, Index: &index, Next: opt.Next}
}

// Option converts an option control back into the Option it was rendered from.
func (c Control) Option() Option {
	return Option{Text: c.Label, Next: c.Next}
}

// ControlSet is the payload of ActionAppendControls.
type ControlSet struct {
	Kind     ControlSetKind `json:"kind"`
	Controls []Control      `json:"controls"`
}

// NewMessageAction builds an ActionAppendMessage request.
func NewMessageAction(actor Actor, text string) ActionRequest {
	return ActionRequest{
		Type:    ActionAppendMessage,
		Payload: Message{Actor: actor, Text: text},
	}
}

// NewControlsAction builds an ActionAppendControls request.
func NewControlsAction(kind ControlSetKind, controls []Control) ActionRequest {
	return ActionRequest{
		Type:    ActionAppendControls,
		Payload: ControlSet{Kind: kind, Controls: controls},
	}
}

// NavigationControls returns the Back / Main Menu pair.
func NavigationControls() []Control {
	return []Control{
		{Kind: ControlBack, Label: LabelBack},
		{Kind: ControlMainMenu, Label: LabelMainMenu},
	}
}
