package runtime_test

import (
	"context"
	"testing"

	"github.com/aretw0/arbor/internal/runtime"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestEngine_LifecycleHooks(t *testing.T) {
	var (
		started      []string
		intake       []domain.IntakeEvent
		entered      []string
		missing      []string
		unrecognized []string
	)

	hooks := domain.LifecycleHooks{
		OnSessionStart: func(ctx context.Context, e *domain.EventBase) {
			started = append(started, e.SessionID)
		},
		OnIntakeAdvance: func(ctx context.Context, e *domain.IntakeEvent) {
			intake = append(intake, *e)
		},
		OnLevelEnter: func(ctx context.Context, e *domain.LevelEvent) {
			entered = append(entered, e.LevelID)
		},
		OnLevelMissing: func(ctx context.Context, e *domain.LevelEvent) {
			missing = append(missing, e.LevelID)
		},
		OnUnrecognized: func(ctx context.Context, e *domain.InputEvent) {
			unrecognized = append(unrecognized, e.Input)
		},
	}

	e := runtime.NewEngine(newTestTree(), runtime.WithLifecycleHooks(hooks))
	ctx := context.Background()

	state, _, _ := e.Start(ctx, "hooked")
	state, _ = submitAll(t, e, state, "yo", "hi", "ana", "12", "0501234567", "parking", "scholarships")
	state, _, _ = e.MainMenu(ctx, state)
	_, _ = submitAll(t, e, state, "admissions")

	assert.Equal(t, []string{"hooked"}, started)
	assert.Len(t, intake, 5)
	assert.False(t, intake[0].Accepted)
	assert.Equal(t, domain.StageAwaitingGreeting, intake[1].From)
	assert.True(t, intake[1].Accepted)
	assert.False(t, intake[3].Accepted)
	assert.Equal(t, domain.StageCompleted, intake[4].To)
	assert.Equal(t, []string{"level1", "level1", "admissions"}, entered)
	assert.Equal(t, []string{"ghost"}, missing)
	assert.Equal(t, []string{"parking"}, unrecognized)
}
