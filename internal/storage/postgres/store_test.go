package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/fantasy/internal/config"
	"github.com/cory-johannsen/fantasy/internal/game/catalog"
	"github.com/cory-johannsen/fantasy/internal/storage"
	"github.com/cory-johannsen/fantasy/internal/storage/postgres"
	"github.com/cory-johannsen/fantasy/internal/testutil"
)

func TestStore(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()

	t.Run("seed is idempotent", func(t *testing.T) {
		cat, err := catalog.Default()
		require.NoError(t, err)
		require.NoError(t, store.SeedCatalog(ctx, cat))
	})

	t.Run("class round trips ability kind", func(t *testing.T) {
		c, err := store.Class(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "Sorcerer", c.Name)
		assert.Equal(t, catalog.KindFreeze, c.Ability.Kind)

		_, err = store.Class(ctx, 99)
		assert.ErrorIs(t, err, catalog.ErrNotFound)
	})

	t.Run("create and latest", func(t *testing.T) {
		a, err := store.CreateCharacter(ctx, "Ayla", 5)
		require.NoError(t, err)
		b, err := store.CreateCharacter(ctx, "Bran", 4)
		require.NoError(t, err)
		assert.Greater(t, b.ID, a.ID)

		latest, err := store.LatestCharacter(ctx)
		require.NoError(t, err)
		assert.Equal(t, b.ID, latest.ID)
		assert.Equal(t, "Barbarian", latest.ClassName)
		assert.Equal(t, 14, latest.HP)
		assert.Equal(t, 12, latest.Attack)

		_, err = store.CreateCharacter(ctx, "Nobody", 42)
		assert.ErrorIs(t, err, catalog.ErrNotFound)
	})

	t.Run("partial update", func(t *testing.T) {
		ch, err := store.CreateCharacter(ctx, "Cato", 3)
		require.NoError(t, err)
		require.NoError(t, store.UpdateCharacter(ctx, ch.ID, storage.CharacterPatch{HP: storage.Int(0), Experience: storage.Int(28)}))

		got, err := store.LatestCharacter(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, got.HP)
		assert.Equal(t, 28, got.Experience)
		assert.Equal(t, 14, got.Attack)
		assert.Equal(t, 1, got.Level)

		assert.ErrorIs(t, store.UpdateCharacter(ctx, ch.ID, storage.CharacterPatch{}), storage.ErrEmptyPatch)
		assert.ErrorIs(t, store.UpdateCharacter(ctx, 1<<40, storage.CharacterPatch{HP: storage.Int(1)}), storage.ErrCharacterNotFound)
	})

	t.Run("patch leaves unset fields", func(t *testing.T) {
		ch, err := store.CreateCharacter(ctx, "Dara", 1)
		require.NoError(t, err)
		rapid.Check(t, func(rt *rapid.T) {
			before, err := store.LatestCharacter(ctx)
			require.NoError(rt, err)
			var patch storage.CharacterPatch
			if rapid.Bool().Draw(rt, "hp") {
				patch.HP = storage.Int(rapid.IntRange(0, 500).Draw(rt, "hpv"))
			}
			if rapid.Bool().Draw(rt, "lvl") {
				patch.Level = storage.Int(rapid.IntRange(1, 50).Draw(rt, "lvlv"))
			}
			if patch.Empty() {
				return
			}
			require.NoError(rt, store.UpdateCharacter(ctx, ch.ID, patch))
			want := *before
			patch.Apply(&want)
			after, err := store.LatestCharacter(ctx)
			require.NoError(rt, err)
			assert.Equal(rt, want, *after)
		})
	})
}

func TestOpenStore_ReopenKeepsCharacters(t *testing.T) {
	pc := testutil.NewPostgresContainer(t)
	ctx := context.Background()
	cat, err := catalog.Default()
	require.NoError(t, err)

	first := pc.OpenStore(t)
	require.NoError(t, first.SeedCatalog(ctx, cat))
	ch, err := first.CreateCharacter(ctx, "Ayla", 2)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second := pc.OpenStore(t)
	latest, err := second.LatestCharacter(ctx)
	require.NoError(t, err)
	assert.Equal(t, ch.ID, latest.ID)
	assert.Equal(t, "Ayla", latest.Name)
}

func TestOpenStore_RejectsBadConfig(t *testing.T) {
	cfg := config.DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "fantasy",
		Password: "fantasy",
		Name:     "fantasy",
		SSLMode:  "sometimes",
		MaxConns: 1,
	}
	_, err := postgres.OpenStore(context.Background(), cfg)
	assert.ErrorContains(t, err, "parsing database config")
}
