package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/arbor/pkg/domain"
)

// LoggingHooks logs every lifecycle event at debug level.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnSessionStart: func(ctx context.Context, e *domain.EventBase) {
			logger.DebugContext(ctx, "session_start", "session_id", e.SessionID)
		},
		OnIntakeAdvance: func(ctx context.Context, e *domain.IntakeEvent) {
			logger.DebugContext(ctx, "intake_advance", "session_id", e.SessionID, "from", e.From, "to", e.To, "accepted", e.Accepted)
		},
		OnLevelEnter: func(ctx context.Context, e *domain.LevelEvent) {
			logger.DebugContext(ctx, "level_enter", "session_id", e.SessionID, "level_id", e.LevelID, "main_menu", e.MainMenu)
		},
		OnLevelMissing: func(ctx context.Context, e *domain.LevelEvent) {
			logger.DebugContext(ctx, "level_missing", "session_id", e.SessionID, "level_id", e.LevelID)
		},
		OnUnrecognized: func(ctx context.Context, e *domain.InputEvent) {
			logger.DebugContext(ctx, "unrecognized", "session_id", e.SessionID, "level_id", e.LevelID)
		},
	}
}

// CombineHooks fans every event out to all non-nil callbacks, in order.
func CombineHooks(all ...domain.LifecycleHooks) domain.LifecycleHooks {
	var combined domain.LifecycleHooks

	var sessionStart []func(context.Context, *domain.EventBase)
	var intake []func(context.Context, *domain.IntakeEvent)
	var enter, missing []func(context.Context, *domain.LevelEvent)
	var unrecognized []func(context.Context, *domain.InputEvent)

	for _, h := range all {
		if h.OnSessionStart != nil {
			sessionStart = append(sessionStart, h.OnSessionStart)
		}
		if h.OnIntakeAdvance != nil {
			intake = append(intake, h.OnIntakeAdvance)
		}
		if h.OnLevelEnter != nil {
			enter = append(enter, h.OnLevelEnter)
		}
		if h.OnLevelMissing != nil {
			missing = append(missing, h.OnLevelMissing)
		}
		if h.OnUnrecognized != nil {
			unrecognized = append(unrecognized, h.OnUnrecognized)
		}
	}

	if len(sessionStart) > 0 {
		combined.OnSessionStart = fanOut(sessionStart)
	}
	if len(intake) > 0 {
		combined.OnIntakeAdvance = fanOut(intake)
	}
	if len(enter) > 0 {
		combined.OnLevelEnter = fanOut(enter)
	}
	if len(missing) > 0 {
		combined.OnLevelMissing = fanOut(missing)
	}
	if len(unrecognized) > 0 {
		combined.OnUnrecognized = fanOut(unrecognized)
	}
	return combined
}

func fanOut[E any](fns []func(context.Context, *E)) func(context.Context, *E) {
	return func(ctx context.Context, e *E) {
		for _, fn := range fns {
			fn(ctx, e)
		}
	}
}
