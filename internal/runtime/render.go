package runtime

import (
	"github.com/aretw0/arbor/pkg/domain"
)

// renderLevel produces the requests for a found level: answer, question,
// option controls, then the navigation pair. Empty fields are skipped.
func (e *Engine) renderLevel(level domain.Level) []domain.ActionRequest {
	actions := make([]domain.ActionRequest, 0, 4)
	if level.Answer != "" {
		actions = append(actions, e.bot(level.Answer))
	}
	if level.Question != "" {
		actions = append(actions, e.bot(level.Question))
	}
	if level.HasOptions() {
		actions = append(actions, domain.NewControlsAction(domain.ControlsOptions, optionControls(level.Options)))
	}
	return append(actions, domain.NewControlsAction(domain.ControlsNavigation, domain.NavigationControls()))
}

func optionControls(options []domain.Option) []domain.Control {
	controls := make([]domain.Control, len(options))
	for i, opt := range options {
		controls[i] = domain.OptionControl(i, opt)
	}
	return controls
}
