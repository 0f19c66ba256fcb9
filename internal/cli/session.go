package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/arbor/pkg/ports"
)

// ListSessions prints the stored session IDs.
func ListSessions(ctx context.Context, store ports.SessionStore, w io.Writer) error {
	ids, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("listing sessions: %w", err)
	}
	if len(ids) == 0 {
		fmt.Fprintln(w, "No active sessions found.")
		return nil
	}
	fmt.Fprintln(w, "Active Sessions:")
	for _, id := range ids {
		fmt.Fprintln(w, "- "+id)
	}
	return nil
}

// InspectSession prints the stored state as indented JSON.
func InspectSession(ctx context.Context, store ports.SessionStore, id string, w io.Writer) error {
	state, err := store.Load(ctx, id)
	if err != nil {
		return fmt.Errorf("loading session '%s': %w", id, err)
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session '%s': %w", id, err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// RemoveSessions deletes every ID, reporting each outcome. With all set, ids is ignored
// and every stored session is removed.
func RemoveSessions(ctx context.Context, store ports.SessionStore, ids []string, all bool, w io.Writer) error {
	if all {
		listed, err := store.List(ctx)
		if err != nil {
			return fmt.Errorf("listing sessions: %w", err)
		}
		ids = listed
	}

	var errs []error
	for _, id := range ids {
		if err := store.Delete(ctx, id); err != nil {
			fmt.Fprintf(w, "Error removing '%s': %v\n", id, err)
			errs = append(errs, err)
			continue
		}
		fmt.Fprintf(w, "Removed session '%s'\n", id)
	}
	return errors.Join(errs...)
}
