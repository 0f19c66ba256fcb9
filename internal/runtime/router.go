package runtime

import (
	"context"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

// MatchOption returns the first option, in declaration order, whose lower-cased
// label contains the normalized input.
func MatchOption(options []domain.Option, normalized string) (domain.Option, bool) {
	for _, opt := range options {
		if strings.Contains(strings.ToLower(opt.Text), normalized) {
			return opt, true
		}
	}
	return domain.Option{}, false
}

// route dispatches free text once the intake is done.
func (e *Engine) route(ctx context.Context, s *domain.State, normalized string) []domain.ActionRequest {
	level, found := e.tree.Lookup(s.CurrentLevel)
	if !found || !level.DeclaresOptions() {
		return []domain.ActionRequest{e.bot(e.tree.Messages.NoOptions)}
	}

	opt, ok := MatchOption(level.Options, normalized)
	if !ok || !opt.HasNext() {
		e.logger.Debug("input not recognized", "session_id", s.SessionID, "level", s.CurrentLevel)
		if e.hooks.OnUnrecognized != nil {
			e.hooks.OnUnrecognized(ctx, &domain.InputEvent{
				EventBase: e.event(domain.EventUnrecognized, s.SessionID),
				LevelID:   s.CurrentLevel,
				Input:     normalized,
			})
		}
		return []domain.ActionRequest{e.bot(e.tree.Messages.NotUnderstood)}
	}

	return e.navigateTo(ctx, s, opt.Next, moveForward)
}
