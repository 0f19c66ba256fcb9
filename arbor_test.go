package arbor_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const treeJSON = `{
  "messages": {"welcome": "Hello from the test desk. Your name?"},
  "levels": {
    "level1": {
      "question": "How can I help?",
      "options": [{"text": "Courses", "next": "courses"}]
    },
    "courses": {"answer": "We offer aviation courses."}
  }
}`

func TestNew_FromJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chatbot_data.json")
	require.NoError(t, os.WriteFile(path, []byte(treeJSON), 0o644))

	eng, err := arbor.New(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "chatbot_data.json", eng.Name)
	assert.Equal(t, "level1", eng.Tree().Root)

	ctx := context.Background()
	state, _, err := eng.Start(ctx, "s1")
	require.NoError(t, err)
	_, actions, err := eng.Submit(ctx, state, "hi")
	require.NoError(t, err)
	require.Len(t, actions, 2)
	assert.Equal(t, "Hello from the test desk. Your name?", actions[1].Payload.(domain.Message).Text)
}

func TestNew_MissingSource(t *testing.T) {
	_, err := arbor.New(context.Background(), filepath.Join(t.TempDir(), "absent.json"))
	assert.ErrorIs(t, err, domain.ErrTreeLoad)

	_, err = arbor.New(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrTreeLoad)
}

func TestNew_OverridesDoNotTouchLoaderTree(t *testing.T) {
	tree := domain.NewContentTree("level1", map[string]domain.Level{
		"level1": {Answer: "root"},
		"menu":   {Answer: "alt root"},
	})
	eng, err := arbor.New(context.Background(), "",
		arbor.WithLoader(memory.NewFromTree(tree)),
		arbor.WithRoot("menu"),
		arbor.WithMessages(domain.Messages{Ready: "Go!"}),
	)
	require.NoError(t, err)

	assert.Equal(t, "menu", eng.Tree().Root)
	assert.Equal(t, "level1", tree.Root)
	assert.Equal(t, "Go!", eng.Tree().Messages.Ready)
	assert.Equal(t, domain.DefaultMessages().Ready, tree.Messages.Ready)
}

func TestEngine_Reload(t *testing.T) {
	calls := 0
	answer := "first"
	loader := ports.TreeLoaderFunc(func(ctx context.Context) (*domain.ContentTree, error) {
		calls++
		if answer == "" {
			return nil, errors.New("source offline")
		}
		return domain.NewContentTree("", map[string]domain.Level{"level1": {Answer: answer}}), nil
	})

	eng, err := arbor.New(context.Background(), "", arbor.WithLoader(loader))
	require.NoError(t, err)
	assert.Equal(t, "first", eng.Tree().Levels["level1"].Answer)

	answer = "second"
	require.NoError(t, eng.Reload(context.Background()))
	assert.Equal(t, "second", eng.Tree().Levels["level1"].Answer)

	answer = ""
	assert.Error(t, eng.Reload(context.Background()))
	assert.Equal(t, "second", eng.Tree().Levels["level1"].Answer, "failed reload keeps the current tree")
	assert.Equal(t, 3, calls)
}

func TestEngine_Options(t *testing.T) {
	tree := domain.NewContentTree("level1", map[string]domain.Level{
		"level1": {Options: []domain.Option{{Text: "Ghost", Next: "ghost"}}},
	})
	eng, err := arbor.New(context.Background(), "",
		arbor.WithLoader(memory.NewFromTree(tree)),
		arbor.WithStrictNavigation(true),
		arbor.WithRewindOnBack(true),
	)
	require.NoError(t, err)

	ctx := context.Background()
	state, _, _ := eng.Start(ctx, "s")
	for _, in := range []string{"hey", "Lee", "0501234567"} {
		state, _, err = eng.Submit(ctx, state, in)
		require.NoError(t, err)
	}

	next, _, err := eng.Submit(ctx, state, "ghost")
	require.NoError(t, err)
	assert.Equal(t, "level1", next.CurrentLevel, "strict navigation stays put")
	assert.Empty(t, next.NavigationStack)
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, arbor.Version)
}
