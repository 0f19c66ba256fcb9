package runtime_test

import (
	"context"
	"testing"

	"github.com/aretw0/arbor/internal/runtime"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/require"
)

func newTestTree() *domain.ContentTree {
	return domain.NewContentTree("level1", map[string]domain.Level{
		"level1": {
			Answer:   "Welcome to the admissions desk.",
			Question: "What would you like to know?",
			Options: []domain.Option{
				{Text: "Admissions", Next: "admissions"},
				{Text: "Admissions Office", Next: "office"},
				{Text: "Courses", Next: "courses"},
				{Text: "Campus Tour"},
				{Text: "Scholarships", Next: "ghost"},
			},
		},
		"admissions": {
			Answer: "Admissions are open.",
			Options: []domain.Option{
				{Text: "Requirements", Next: "requirements"},
			},
		},
		"requirements": {
			Answer: "You need a high school diploma.",
		},
		"office": {
			Answer: "The office is in building A.",
		},
		"courses": {
			Question: "Which faculty?",
		},
	})
}

func newTestEngine(opts ...runtime.Option) *runtime.Engine {
	return runtime.NewEngine(newTestTree(), opts...)
}

// submitAll feeds each input in order, failing the test on error.
func submitAll(t *testing.T, e *runtime.Engine, state *domain.State, inputs ...string) (*domain.State, []domain.ActionRequest) {
	t.Helper()
	var actions []domain.ActionRequest
	for _, in := range inputs {
		var err error
		state, actions, err = e.Submit(context.Background(), state, in)
		require.NoError(t, err)
	}
	return state, actions
}

// completeIntake returns a session sitting at the root level.
func completeIntake(t *testing.T, e *runtime.Engine) *domain.State {
	t.Helper()
	state, _, err := e.Start(context.Background(), "s1")
	require.NoError(t, err)
	state, _ = submitAll(t, e, state, "Hi", "Ana", "0501234567")
	require.True(t, state.IntroCompleted)
	return state
}

func botTexts(actions []domain.ActionRequest) []string {
	var out []string
	for _, a := range actions {
		if msg, ok := a.Payload.(domain.Message); ok && msg.Actor == domain.ActorBot {
			out = append(out, msg.Text)
		}
	}
	return out
}

func controlSets(actions []domain.ActionRequest) []domain.ControlSet {
	var out []domain.ControlSet
	for _, a := range actions {
		if set, ok := a.Payload.(domain.ControlSet); ok {
			out = append(out, set)
		}
	}
	return out
}
