package domain

// IntakeStage tracks progress through the scripted intake that gates the tree.
type IntakeStage string

const (
	StageAwaitingGreeting IntakeStage = "awaiting_greeting" // Initial stage
	StageAwaitingName     IntakeStage = "awaiting_name"
	StageAwaitingPhone    IntakeStage = "awaiting_phone"
	StageCompleted        IntakeStage = "completed" // Terminal, tree navigation is open
)

// State represents the conversation snapshot of a single session.
type State struct {
	// SessionID identifies the conversation.
	SessionID string `json:"session_id"`

	// Stage is the intake progress.
	Stage IntakeStage `json:"stage"`

	// CurrentLevel is the active level identifier. Empty means "not yet in the tree".
	// It may name a level missing from the ContentTree (a dead end).
	CurrentLevel string `json:"current_level,omitempty"`

	// IntroCompleted flips to true once, when the intake succeeds.
	IntroCompleted bool `json:"intro_completed"`

	// UserName and UserPhone are captured during intake.
	UserName  string `json:"user_name,omitempty"`
	UserPhone string `json:"user_phone,omitempty"`

	// NavigationStack is the LIFO history of levels left behind.
	NavigationStack []string `json:"navigation_stack"`

	// Envelope holds an opaque encrypted snapshot written by storage middleware.
	// The engine never reads it.
	Envelope string `json:"envelope,omitempty"`
}

// NewState creates a clean state awaiting the greeting.
func NewState(sessionID string) *State {
	return &State{
		SessionID:       sessionID,
		Stage:           StageAwaitingGreeting,
		NavigationStack: []string{},
	}
}

// InTree reports whether the session has entered the content tree.
func (s *State) InTree() bool {
	return s.CurrentLevel != ""
}

// Clone returns a deep copy safe for independent mutation.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	next := *s
	next.NavigationStack = make([]string, len(s.NavigationStack))
	copy(next.NavigationStack, s.NavigationStack)
	return &next
}

// Push records the level being left.
func (s *State) Push(levelID string) {
	s.NavigationStack = append(s.NavigationStack, levelID)
}

// Pop removes and returns the most recent history entry.
func (s *State) Pop() (string, bool) {
	n := len(s.NavigationStack)
	if n == 0 {
		return "", false
	}
	top := s.NavigationStack[n-1]
	s.NavigationStack = s.NavigationStack[:n-1]
	return top, true
}
