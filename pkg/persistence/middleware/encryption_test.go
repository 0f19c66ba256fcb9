package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"io"
	"testing"

	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/persistence/middleware"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlyingStore := NewMockStore()
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	secureStore := mw(underlyingStore)

	ctx := context.Background()
	original := completedState("test-session")
	original.NavigationStack = []string{"level1", "admissions"}

	require.NoError(t, secureStore.Save(ctx, "test-session", original))

	stored, err := underlyingStore.Load(ctx, "test-session")
	require.NoError(t, err)
	assert.NotEmpty(t, stored.Envelope)
	assert.Empty(t, stored.UserPhone)
	assert.Empty(t, stored.CurrentLevel)
	assert.Empty(t, stored.NavigationStack)

	loaded, err := secureStore.Load(ctx, "test-session")
	require.NoError(t, err)
	assert.Equal(t, original, loaded)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlyingStore := NewMockStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)

	ctx := context.Background()
	original := completedState("rotation-session")

	oldStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})(underlyingStore)
	require.NoError(t, oldStore.Save(ctx, "rotation-session", original))

	rotated := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})(underlyingStore)
	loaded, err := rotated.Load(ctx, "rotation-session")
	require.NoError(t, err)
	assert.Equal(t, "0501234567", loaded.UserPhone)

	withoutFallback := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: newKey})(underlyingStore)
	_, err = withoutFallback.Load(ctx, "rotation-session")
	assert.Error(t, err)
}

func TestEncryptionMiddleware_RejectsPlainState(t *testing.T) {
	underlyingStore := NewMockStore()
	ctx := context.Background()
	require.NoError(t, underlyingStore.Save(ctx, "plain", domain.NewState("plain")))

	secureStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlyingStore)
	_, err := secureStore.Load(ctx, "plain")
	assert.ErrorIs(t, err, middleware.ErrMissingEnvelope)
}

func TestEncryptionMiddleware_PanicsOnShortKey(t *testing.T) {
	assert.Panics(t, func() {
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short")})
	})
}

func TestParseKey(t *testing.T) {
	key := generateKey(t)

	got, err := middleware.ParseKey(hex.EncodeToString(key))
	require.NoError(t, err)
	assert.Equal(t, key, got)

	got, err = middleware.ParseKey(base64.StdEncoding.EncodeToString(key))
	require.NoError(t, err)
	assert.Equal(t, key, got)

	_, err = middleware.ParseKey("too-short")
	assert.Error(t, err)
}

func TestChain_ContractOverMemory(t *testing.T) {
	store := middleware.Chain(memory.NewStore(),
		middleware.NewPIIMiddleware(),
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)}),
	)
	ports.RunSessionStoreContract(t, store)
}
