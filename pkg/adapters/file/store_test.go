package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/arbor/pkg/adapters/file"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_Contract(t *testing.T) {
	ports.RunSessionStoreContract(t, file.NewStore(t.TempDir()))
}

func TestFileStore_DefaultDir(t *testing.T) {
	assert.Equal(t, file.DefaultSessionDir, file.NewStore("").BasePath)
}

func TestFileStore_Overwrite(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := file.NewStore(dir)

	state := domain.NewState("s1")
	require.NoError(t, store.Save(ctx, "s1", state))

	state.Stage = domain.StageAwaitingName
	require.NoError(t, store.Save(ctx, "s1", state))

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.StageAwaitingName, loaded.Stage)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not survive a save")
}

func TestFileStore_InvalidIDs(t *testing.T) {
	ctx := context.Background()
	store := file.NewStore(t.TempDir())

	for _, id := range []string{"", "..", "../escape", `a\b`, "tmp-x"} {
		t.Run(id, func(t *testing.T) {
			assert.ErrorIs(t, store.Save(ctx, id, domain.NewState(id)), file.ErrInvalidSessionID)
			_, err := store.Load(ctx, id)
			assert.ErrorIs(t, err, file.ErrInvalidSessionID)
			assert.ErrorIs(t, store.Delete(ctx, id), file.ErrInvalidSessionID)
		})
	}
}

func TestFileStore_ListIgnoresForeignFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := file.NewStore(dir)

	require.NoError(t, store.Save(ctx, "b", domain.NewState("b")))
	require.NoError(t, store.Save(ctx, "a", domain.NewState("a")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tmp-c-123.json"), []byte("{}"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.json"), 0o755))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
}

func TestFileStore_ListMissingDir(t *testing.T) {
	store := file.NewStore(filepath.Join(t.TempDir(), "absent"))
	ids, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestFileStore_CorruptDocument(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{"), 0o644))

	_, err := file.NewStore(dir).Load(context.Background(), "bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrSessionNotFound)
}
