package runtime

import (
	"context"

	"github.com/aretw0/arbor/pkg/domain"
)

// move describes how a level is being entered.
type move int

const (
	moveForward move = iota
	moveBack
	moveMainMenu
)

// navigateTo enters target, recording the level being left unless the move is
// a main menu jump or a rewinding back.
func (e *Engine) navigateTo(ctx context.Context, s *domain.State, target string, m move) []domain.ActionRequest {
	level, found := e.tree.Lookup(target)
	if !found && e.strictNavigation {
		e.emitLevel(ctx, s.SessionID, target, m, false)
		return []domain.ActionRequest{e.bot(e.tree.Messages.NoInformation)}
	}

	if e.records(m) && s.CurrentLevel != "" {
		s.Push(s.CurrentLevel)
	}
	s.CurrentLevel = target

	e.emitLevel(ctx, s.SessionID, target, m, found)
	if !found {
		return []domain.ActionRequest{e.bot(e.tree.Messages.NoInformation)}
	}
	return e.renderLevel(level)
}

// goBack pops the history and re-enters the popped level.
func (e *Engine) goBack(ctx context.Context, s *domain.State) []domain.ActionRequest {
	n := len(s.NavigationStack)
	if n == 0 {
		return []domain.ActionRequest{e.bot(e.tree.Messages.AlreadyAtStart)}
	}

	previous := s.NavigationStack[n-1]
	if e.strictNavigation && !e.tree.Has(previous) {
		e.emitLevel(ctx, s.SessionID, previous, moveBack, false)
		return []domain.ActionRequest{e.bot(e.tree.Messages.NoInformation)}
	}

	s.Pop()
	return e.navigateTo(ctx, s, previous, moveBack)
}

func (e *Engine) records(m move) bool {
	switch m {
	case moveMainMenu:
		return false
	case moveBack:
		return !e.rewindOnBack
	default:
		return true
	}
}

func (e *Engine) emitLevel(ctx context.Context, sessionID, levelID string, m move, found bool) {
	if !found {
		e.logger.Warn("level not found", "session_id", sessionID, "level", levelID)
	} else {
		e.logger.Debug("entering level", "session_id", sessionID, "level", levelID)
	}

	hook := e.hooks.OnLevelEnter
	kind := domain.EventLevelEnter
	if !found {
		hook = e.hooks.OnLevelMissing
		kind = domain.EventLevelMissing
	}
	if hook == nil {
		return
	}
	hook(ctx, &domain.LevelEvent{
		EventBase: e.event(kind, sessionID),
		LevelID:   levelID,
		MainMenu:  m == moveMainMenu,
	})
}
