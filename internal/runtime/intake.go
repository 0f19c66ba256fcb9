package runtime

import (
	"context"
	"regexp"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

// greetings are matched by containment, in this order.
var greetings = []string{"hi", "hello", "good morning", "good evening", "hey"}

var (
	phoneTenDigits = regexp.MustCompile(`^\d{10}$`)
	phoneDigits    = regexp.MustCompile(`^\d{6,15}$`)
)

// IsGreeting reports whether normalized input contains any greeting token.
func IsGreeting(normalized string) bool {
	for _, greet := range greetings {
		if strings.Contains(normalized, greet) {
			return true
		}
	}
	return false
}

// IsValidPhone reports whether input is an acceptable phone number.
func IsValidPhone(input string) bool {
	return phoneTenDigits.MatchString(input) || phoneDigits.MatchString(input)
}

// handleIntake advances the greeting / name / phone gate. Invalid input keeps the stage.
func (e *Engine) handleIntake(ctx context.Context, s *domain.State, normalized string) []domain.ActionRequest {
	msgs := e.tree.Messages
	from := s.Stage

	var actions []domain.ActionRequest
	switch s.Stage {
	case domain.StageAwaitingName:
		s.UserName = normalized
		s.Stage = domain.StageAwaitingPhone
		actions = append(actions, e.bot(domain.Format(msgs.PhoneRequest, s.UserName)))

	case domain.StageAwaitingPhone:
		if !IsValidPhone(normalized) {
			actions = append(actions, e.bot(msgs.PhoneInvalid))
			break
		}
		s.UserPhone = normalized
		s.Stage = domain.StageCompleted
		s.IntroCompleted = true
		actions = append(actions, e.bot(domain.Format(msgs.Thanks, s.UserName)))
		e.emitIntake(ctx, s.SessionID, from, s.Stage)
		return append(actions, e.navigateTo(ctx, s, e.tree.Root, moveMainMenu)...)

	default:
		if !IsGreeting(normalized) {
			actions = append(actions, e.bot(msgs.GreetingPrompt))
			break
		}
		s.Stage = domain.StageAwaitingName
		actions = append(actions, e.bot(msgs.Welcome))
	}

	e.emitIntake(ctx, s.SessionID, from, s.Stage)
	return actions
}

func (e *Engine) emitIntake(ctx context.Context, sessionID string, from, to domain.IntakeStage) {
	e.logger.Debug("intake step", "session_id", sessionID, "from", from, "to", to)
	if e.hooks.OnIntakeAdvance == nil {
		return
	}
	e.hooks.OnIntakeAdvance(ctx, &domain.IntakeEvent{
		EventBase: e.event(domain.EventIntakeAdvance, sessionID),
		From:      from,
		To:        to,
		Accepted:  from != to,
	})
}
