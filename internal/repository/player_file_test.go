package repository

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rocketscienceinc/hoopscore-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilePlayerRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "player_data.json")
	playerRepo := NewFilePlayerRepository(path)

	// Given: players in different states
	alice := entity.NewPlayer("alice")
	alice.StartSession(10, 5)
	alice.Score = 6
	require.NoError(t, alice.EndSession())

	bob := entity.NewPlayer("bob")
	bob.StartSession(2.5, 9)
	bob.Currency = 99.5

	carol := entity.NewPlayer("carol")

	// When: the players are saved and loaded back
	err := playerRepo.Save(ctx, []*entity.Player{alice, bob, carol})
	require.NoError(t, err)

	players, err := playerRepo.Load(ctx)

	// Then: the loaded set is identical
	require.NoError(t, err)
	require.Equal(t, []*entity.Player{alice, bob, carol}, players)
}

func TestFilePlayerRepository_WireFormat(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "player_data.json")
	playerRepo := NewFilePlayerRepository(path)

	// Given: a saved player
	player := entity.NewPlayer("alice")
	player.StartSession(10, 7)
	require.NoError(t, playerRepo.Save(ctx, []*entity.Player{player}))

	// When: the raw file is decoded
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw map[string][]map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))

	// Then: it uses the documented field names
	require.Len(t, raw["players"], 1)
	got := raw["players"][0]
	for _, key := range []string{"username", "score", "currency", "mode", "game_started", "game_over", "bet", "target_score"} {
		assert.Contains(t, got, key)
	}
	assert.Len(t, got, 8)
	assert.Equal(t, true, got["game_started"])
	assert.InDelta(t, 7.0, got["target_score"], 0)
}

func TestFilePlayerRepository_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("Missing file", func(t *testing.T) {
		// Given: a path that does not exist
		playerRepo := NewFilePlayerRepository(filepath.Join(t.TempDir(), "nope.json"))

		// When: Load is called
		players, err := playerRepo.Load(ctx)

		// Then: ErrSnapshotNotFound is returned
		require.ErrorIs(t, err, ErrSnapshotNotFound)
		assert.Nil(t, players)
	})

	cases := []struct {
		name    string
		content string
	}{
		{name: "Malformed JSON", content: `{"players": [`},
		{name: "Missing players key", content: `{"users": []}`},
		{name: "Null players", content: `{"players": null}`},
		{name: "Missing username", content: `{"players": [{"score": 3}]}`},
		{name: "Empty username", content: `{"players": [{"username": "alice"}, {"username": ""}]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// Given: a file with invalid content
			path := filepath.Join(t.TempDir(), "player_data.json")
			require.NoError(t, os.WriteFile(path, []byte(tc.content), 0o600))

			// When: Load is called
			_, err := NewFilePlayerRepository(path).Load(ctx)

			// Then: ErrInvalidSnapshot is returned
			require.ErrorIs(t, err, ErrInvalidSnapshot)
		})
	}

	t.Run("Empty players collection", func(t *testing.T) {
		// Given: a valid file with no players
		path := filepath.Join(t.TempDir(), "player_data.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"players": []}`), 0o600))

		// When: Load is called
		players, err := NewFilePlayerRepository(path).Load(ctx)

		// Then: an empty list is returned
		require.NoError(t, err)
		assert.Empty(t, players)
	})
}

func TestFilePlayerRepository_SaveOverwrites(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "player_data.json")
	playerRepo := NewFilePlayerRepository(path)

	// Given: a file with two players
	require.NoError(t, playerRepo.Save(ctx, []*entity.Player{entity.NewPlayer("a"), entity.NewPlayer("b")}))

	// When: a smaller snapshot is saved
	require.NoError(t, playerRepo.Save(ctx, []*entity.Player{entity.NewPlayer("c")}))

	// Then: only the new snapshot is present and no temp files are left behind
	players, err := playerRepo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, players, 1)
	assert.Equal(t, "c", players[0].Username)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFilePlayerRepository_SaveFailure(t *testing.T) {
	// Given: a path inside a directory that does not exist
	playerRepo := NewFilePlayerRepository(filepath.Join(t.TempDir(), "missing", "player_data.json"))

	// When: Save is called
	err := playerRepo.Save(context.Background(), []*entity.Player{entity.NewPlayer("a")})

	// Then: the error is surfaced
	require.Error(t, err)
}
