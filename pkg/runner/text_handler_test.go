package runner_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextHandler_Output(t *testing.T) {
	out := &bytes.Buffer{}
	h := runner.NewTextHandler(strings.NewReader(""), out,
		runner.WithTextHandlerRenderer(func(s string) (string, error) { return "**" + s + "**", nil }),
		runner.WithTextHandlerStyle(runner.Style{User: strings.ToUpper}),
	)
	assert.False(t, h.Interactive())

	err := h.Output(context.Background(), []domain.ActionRequest{
		domain.NewMessageAction(domain.ActorUser, "courses"),
		domain.NewMessageAction(domain.ActorBot, "Pick one"),
		domain.NewControlsAction(domain.ControlsOptions, []domain.Control{
			domain.OptionControl(0, domain.Option{Text: "Courses", Next: "courses"}),
		}),
		domain.NewControlsAction(domain.ControlsNavigation, domain.NavigationControls()),
	})
	require.NoError(t, err)

	want := "> COURSES\n**Pick one**\n  1) Courses\n  " +
		domain.LabelBack + " (/back)   " + domain.LabelMainMenu + " (/menu)\n"
	assert.Equal(t, want, out.String())
}

func TestTextHandler_InputSanitizes(t *testing.T) {
	out := &bytes.Buffer{}
	in := strings.NewReader(strings.Repeat("x", 5000) + "\nok\x07\n")
	h := runner.NewTextHandler(in, out)

	got, err := h.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Contains(t, out.String(), "Please try again")

	// The echo of the line just typed is skipped.
	out.Reset()
	require.NoError(t, h.Output(context.Background(), []domain.ActionRequest{
		domain.NewMessageAction(domain.ActorUser, "ok"),
	}))
	assert.Empty(t, out.String())
}
