package profile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "profile.json")
	store := NewStore(path)

	t.Run("missing file loads as zero profile", func(t *testing.T) {
		p, err := store.Load()
		require.NoError(t, err)
		require.Empty(t, p.LastAccountID)
	})

	t.Run("save then load", func(t *testing.T) {
		require.NoError(t, store.Save(Profile{LastAccountID: "acct-1"}))

		p, err := store.Load()
		require.NoError(t, err)
		require.Equal(t, "acct-1", p.LastAccountID)
		require.WithinDuration(t, time.Now(), p.UpdatedAt, time.Minute)
	})

	t.Run("save replaces the previous record", func(t *testing.T) {
		require.NoError(t, store.Save(Profile{LastAccountID: "acct-2"}))

		p, err := store.Load()
		require.NoError(t, err)
		require.Equal(t, "acct-2", p.LastAccountID)
	})

	t.Run("no temp file left behind", func(t *testing.T) {
		_, err := os.Stat(path + ".tmp")
		require.True(t, os.IsNotExist(err))
	})

	t.Run("clear removes the record", func(t *testing.T) {
		require.NoError(t, store.Clear())

		p, err := store.Load()
		require.NoError(t, err)
		require.Empty(t, p.LastAccountID)
	})

	t.Run("clear is idempotent", func(t *testing.T) {
		require.NoError(t, store.Clear())
	})
}

func TestLoadRejectsCorruptProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewStore(path).Load()
	require.Error(t, err)
}
