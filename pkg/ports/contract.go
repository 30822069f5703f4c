package ports

import (
	"context"
	"testing"
	"time"

	"github.com/botarmy/switchboard/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore
// implementation adheres to the interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	partyID := "contract-party-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		s := domain.NewSession(partyID)
		s.Level = "self"
		s.Push("reason", "selecting-reason")
		s.Push("capture", "awaiting-input")
		s.CurrentField = "LOCATION"
		s.Resuming = true
		s.Record()["NAME"] = domain.Value{Kind: domain.FieldText, Text: "Thandi"}
		s.Record()["LOCATION"] = domain.Value{Kind: domain.FieldLocation, Location: &domain.Location{Latitude: -26.2, Longitude: 28.04}}

		require.NoError(t, store.Save(ctx, partyID, s), "Save should not return error")

		loaded, err := store.Load(ctx, partyID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, s.Stack, loaded.Stack)
		assert.Equal(t, "LOCATION", loaded.CurrentField)
		assert.True(t, loaded.Resuming)
		assert.Equal(t, "Thandi", loaded.Records["self"]["NAME"].Text)
		require.NotNil(t, loaded.Records["self"]["LOCATION"].Location)
		assert.Equal(t, -26.2, loaded.Records["self"]["LOCATION"].Location.Latitude)
	})

	t.Run("Loaded Session Is A Copy", func(t *testing.T) {
		loaded, err := store.Load(ctx, partyID)
		require.NoError(t, err)
		loaded.Push("extra", "x")

		again, err := store.Load(ctx, partyID)
		require.NoError(t, err)
		assert.Len(t, again.Stack, 2)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+partyID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, partyID, domain.NewSession(partyID)))

		require.NoError(t, store.Delete(ctx, partyID), "Delete should not return error")

		_, err := store.Load(ctx, partyID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
		assert.NoError(t, store.Delete(ctx, partyID), "Deleting twice is fine")
	})

	t.Run("List", func(t *testing.T) {
		id1 := partyID + "-1"
		id2 := partyID + "-2"
		require.NoError(t, store.Save(ctx, id1, domain.NewSession(id1)))
		require.NoError(t, store.Save(ctx, id2, domain.NewSession(id2)))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
