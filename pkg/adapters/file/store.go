package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

// DefaultSessionDir is where terminal sessions are kept when no directory is given.
var DefaultSessionDir = filepath.Join(".arbor", "sessions")

// ErrInvalidSessionID is returned for IDs that cannot be used as file names.
var ErrInvalidSessionID = errors.New("invalid session id")

// Store implements ports.SessionStore with one JSON document per session.
type Store struct {
	BasePath string
}

// NewStore creates a Store rooted at basePath, or DefaultSessionDir when empty.
func NewStore(basePath string) *Store {
	if basePath == "" {
		basePath = DefaultSessionDir
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(sessionID string) (string, error) {
	if sessionID == "" || sessionID == "." || sessionID == ".." ||
		strings.ContainsAny(sessionID, `/\`) || strings.HasPrefix(sessionID, "tmp-") {
		return "", fmt.Errorf("%w: %q", ErrInvalidSessionID, sessionID)
	}
	return filepath.Join(s.BasePath, sessionID+".json"), nil
}

// Save writes the state through a synced temp file renamed over the destination,
// so readers never observe a partial document.
func (s *Store) Save(ctx context.Context, sessionID string, state *domain.State) error {
	if state == nil {
		return domain.ErrNilState
	}
	dest, err := s.path(sessionID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.BasePath, 0o755); err != nil {
		return fmt.Errorf("creating session dir: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session %s: %w", sessionID, err)
	}

	tmp, err := os.CreateTemp(s.BasePath, "tmp-"+sessionID+"-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("writing session %s: %w", sessionID, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("syncing session %s: %w", sessionID, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing session %s: %w", sessionID, err)
	}

	// Windows refuses to rename over an existing file.
	if _, err := os.Stat(dest); err == nil {
		if err := os.Remove(dest); err != nil {
			return fmt.Errorf("replacing session %s: %w", sessionID, err)
		}
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("committing session %s: %w", sessionID, err)
	}
	return nil
}

// Load reads the session document.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	p, err := s.path(sessionID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("reading session %s: %w", sessionID, err)
	}

	var state domain.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decoding session %s: %w", sessionID, err)
	}
	if state.NavigationStack == nil {
		state.NavigationStack = []string{}
	}
	return &state, nil
}

// Delete removes the session document. Missing sessions are not an error.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	p, err := s.path(sessionID)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("deleting session %s: %w", sessionID, err)
	}
	return nil
}

// List returns the stored session IDs in sorted order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("listing sessions: %w", err)
	}

	sessions := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, "tmp-") {
			continue
		}
		if id, ok := strings.CutSuffix(name, ".json"); ok {
			sessions = append(sessions, id)
		}
	}
	sort.Strings(sessions)
	return sessions, nil
}
