package ports

import (
	"context"

	"github.com/aretw0/arbor/pkg/domain"
)

// ChatEngine defines the conversation core consumed by adapters.
// Every operation takes the current state and returns a new one, never
// mutating its input, together with the ordered render requests.
type ChatEngine interface {
	// Start creates a fresh session state and the ready message.
	Start(ctx context.Context, sessionID string) (*domain.State, []domain.ActionRequest, error)

	// Submit routes free text to the intake flow or the option matcher.
	Submit(ctx context.Context, state *domain.State, input string) (*domain.State, []domain.ActionRequest, error)

	// Select activates a pre-resolved option, bypassing text matching.
	Select(ctx context.Context, state *domain.State, option domain.Option) (*domain.State, []domain.ActionRequest, error)

	// Back returns to the previous level.
	Back(ctx context.Context, state *domain.State) (*domain.State, []domain.ActionRequest, error)

	// MainMenu jumps to the root level without recording history.
	MainMenu(ctx context.Context, state *domain.State) (*domain.State, []domain.ActionRequest, error)

	// Render redraws the current level without changing the state.
	Render(state *domain.State) ([]domain.ActionRequest, error)

	// Tree returns the loaded content tree for introspection.
	Tree() *domain.ContentTree
}
