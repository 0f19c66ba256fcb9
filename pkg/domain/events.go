package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventSessionStart  EventType = "session_start"
	EventIntakeAdvance EventType = "intake_advance"
	EventLevelEnter    EventType = "level_enter"
	EventLevelMissing  EventType = "level_missing"
	EventUnrecognized  EventType = "unrecognized"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// LevelEvent represents entry into a level, found or not.
type LevelEvent struct {
	EventBase
	LevelID  string `json:"level_id"`
	MainMenu bool   `json:"main_menu,omitempty"`
}

// IntakeEvent represents an intake attempt.
type IntakeEvent struct {
	EventBase
	From     IntakeStage `json:"from"`
	To       IntakeStage `json:"to"`
	Accepted bool        `json:"accepted"`
}

// InputEvent represents free text the engine could not route.
type InputEvent struct {
	EventBase
	LevelID string `json:"level_id,omitempty"`
	Input   string `json:"input"`
}

// LifecycleHooks defines callbacks for engine observability.
// Any field may be nil.
type LifecycleHooks struct {
	OnSessionStart  func(context.Context, *EventBase)
	OnIntakeAdvance func(context.Context, *IntakeEvent)
	OnLevelEnter    func(context.Context, *LevelEvent)
	OnLevelMissing  func(context.Context, *LevelEvent)
	OnUnrecognized  func(context.Context, *InputEvent)
}
