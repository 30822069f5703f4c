package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"testing"

	"github.com/botarmy/switchboard/pkg/adapters/memory"
	"github.com/botarmy/switchboard/pkg/domain"
	"github.com/botarmy/switchboard/pkg/persistence/middleware"
	"github.com/botarmy/switchboard/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func encrypting(t *testing.T, cfg middleware.EncryptionConfig, next ports.SessionStore) ports.SessionStore {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(cfg)
	require.NoError(t, err)
	return mw(next)
}

func sampleSession(id string) *domain.Session {
	s := domain.NewSession(id)
	s.Level = "self"
	s.Push("reason", "selecting-reason")
	s.Record()["SA_ID"] = domain.Value{Kind: domain.FieldText, Text: "8001015009087"}
	return s
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := memory.NewStore()
	secure := encrypting(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)}, underlying)
	ctx := context.Background()

	require.NoError(t, secure.Save(ctx, "p1", sampleSession("p1")))

	stored, err := underlying.Load(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, stored.Stack, "stack must not be stored in the clear")
	assert.Empty(t, stored.Records, "records must not be stored in the clear")
	assert.NotEmpty(t, stored.Sealed)
	assert.Equal(t, "p1", stored.PartyID)

	loaded, err := secure.Load(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "8001015009087", loaded.Records["self"]["SA_ID"].Text)
	assert.Equal(t, []domain.FrameRef{{Frame: "reason", State: "selecting-reason"}}, loaded.Stack)
	assert.Empty(t, loaded.Sealed)
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	ports.RunSessionStoreContract(t, encrypting(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)}, memory.NewStore()))
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := memory.NewStore()
	oldKey, newKey := generateKey(t), generateKey(t)
	ctx := context.Background()

	oldStore := encrypting(t, middleware.EncryptionConfig{ActiveKey: oldKey}, underlying)
	require.NoError(t, oldStore.Save(ctx, "p1", sampleSession("p1")))

	newStore := encrypting(t, middleware.EncryptionConfig{ActiveKey: newKey, FallbackKeys: [][]byte{oldKey}}, underlying)
	loaded, err := newStore.Load(ctx, "p1")
	require.NoError(t, err, "fallback key must open sessions sealed before rotation")

	loaded.Level = "other"
	require.NoError(t, newStore.Save(ctx, "p1", loaded))

	_, err = oldStore.Load(ctx, "p1")
	assert.Error(t, err, "sessions re-sealed with the new key must not open with the old one")
}

func TestEncryptionMiddleware_RejectsPlaintext(t *testing.T) {
	underlying := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, underlying.Save(ctx, "p1", sampleSession("p1")))

	secure := encrypting(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)}, underlying)
	_, err := secure.Load(ctx, "p1")
	assert.ErrorIs(t, err, middleware.ErrNotSealed)
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	assert.Error(t, err)

	_, err = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    make([]byte, 32),
		FallbackKeys: [][]byte{[]byte("short")},
	})
	assert.Error(t, err)
}
