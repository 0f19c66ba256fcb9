package middleware

import (
	"context"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// Mask replaces the stored user name and phone.
const Mask = "***"

type piiMiddleware struct {
	next ports.SessionStore
}

// NewPIIMiddleware creates a middleware that masks the captured contact details
// once the intake is complete. The engine no longer reads them at that point,
// while an intake in progress still needs the name for the thanks message.
func NewPIIMiddleware() Middleware {
	return func(next ports.SessionStore) ports.SessionStore {
		return &piiMiddleware{next: next}
	}
}

func (m *piiMiddleware) Save(ctx context.Context, sessionID string, state *domain.State) error {
	if state == nil {
		return domain.ErrNilState
	}
	if state.Stage != domain.StageCompleted {
		return m.next.Save(ctx, sessionID, state)
	}

	// Clone to avoid side effects on the in-memory state used by the caller.
	cloned := state.Clone()
	if cloned.UserName != "" {
		cloned.UserName = Mask
	}
	cloned.UserPhone = MaskPhone(cloned.UserPhone)

	return m.next.Save(ctx, sessionID, cloned)
}

func (m *piiMiddleware) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	return m.next.Load(ctx, sessionID)
}

func (m *piiMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// MaskPhone keeps the last four digits.
func MaskPhone(phone string) string {
	if len(phone) <= 4 {
		if phone == "" {
			return ""
		}
		return Mask
	}
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}
