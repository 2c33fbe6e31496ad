package entity

import (
	"math"
	"testing"
	"time"

	"github.com/rocketscienceinc/hoopscore-backend/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayerStatus(t *testing.T) {
	t.Run("New player is idle", func(t *testing.T) {
		// Given: a fresh player
		player := NewPlayer("alice")

		// Then: the player is idle with the starting currency
		assert.Equal(t, StatusIdle, player.Status())
		assert.InDelta(t, float64(StartingCurrency), player.Currency, 0)
		assert.Equal(t, ModeCompetitive, player.Mode)
	})

	t.Run("Started player is active", func(t *testing.T) {
		// Given: a player with a started session
		player := NewPlayer("alice")

		// When: the session starts
		player.StartSession(10, 7)

		// Then: the player is active and never active and finished at once
		assert.True(t, player.IsActive())
		assert.False(t, player.IsFinished())
		assert.Equal(t, 0, player.Score)
		assert.Equal(t, 7, player.TargetScore)
	})
}

func TestPlayer_EndSession(t *testing.T) {
	t.Run("Win adds the bet", func(t *testing.T) {
		// Given: an active player that reached the target
		player := NewPlayer("alice")
		player.StartSession(10, 5)
		player.Score = 6

		// When: the session ends
		err := player.EndSession()

		// Then: the bet is won
		require.NoError(t, err)
		assert.True(t, player.IsFinished())
		assert.InDelta(t, 110.0, player.Currency, 1e-9)
	})

	t.Run("Loss subtracts the bet", func(t *testing.T) {
		// Given: an active player below the target
		player := NewPlayer("bob")
		player.StartSession(10, 8)
		player.Score = 7

		// When: the session ends
		err := player.EndSession()

		// Then: the bet is lost
		require.NoError(t, err)
		assert.InDelta(t, 90.0, player.Currency, 1e-9)
	})

	t.Run("Ending an idle player fails", func(t *testing.T) {
		// Given: a player that never started
		player := NewPlayer("carol")

		// When: the session ends
		err := player.EndSession()

		// Then: ErrGameIsNotStarted is returned and nothing changes
		require.ErrorIs(t, err, apperror.ErrGameIsNotStarted)
		assert.Equal(t, StatusIdle, player.Status())
		assert.InDelta(t, float64(StartingCurrency), player.Currency, 0)
	})
}

func TestPlayer_Detect(t *testing.T) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Detections inside the debounce window count once", func(t *testing.T) {
		// Given: an active player
		player := NewPlayer("alice")
		player.StartSession(0, 5)

		// When: two detections arrive 100ms apart
		first := player.Detect(start, 500*time.Millisecond, 0.5)
		second := player.Detect(start.Add(100*time.Millisecond), 500*time.Millisecond, 0.5)

		// Then: only the first one scores
		assert.True(t, first)
		assert.False(t, second)
		assert.Equal(t, 1, player.Score)
		assert.InDelta(t, 100.5, player.Currency, 1e-9)
	})

	t.Run("Detections after the window both count", func(t *testing.T) {
		// Given: an active player
		player := NewPlayer("alice")
		player.StartSession(0, 5)

		// When: two detections arrive exactly one window apart
		player.Detect(start, 500*time.Millisecond, 0.5)
		accepted := player.Detect(start.Add(500*time.Millisecond), 500*time.Millisecond, 0.5)

		// Then: both score
		assert.True(t, accepted)
		assert.Equal(t, 2, player.Score)
	})

	t.Run("Inactive player never scores", func(t *testing.T) {
		// Given: a finished player
		player := NewPlayer("bob")
		player.StartSession(0, 5)
		require.NoError(t, player.EndSession())

		// When: a detection arrives
		accepted := player.Detect(start, 500*time.Millisecond, 0.5)

		// Then: it is ignored
		assert.False(t, accepted)
		assert.Equal(t, 0, player.Score)
	})
}

func TestPlayer_CurrencyStaysFinite(t *testing.T) {
	t.Run("Loss at the lowest balance clamps", func(t *testing.T) {
		// Given: a player already at the lowest representable balance
		player := NewPlayer("alice")
		player.Currency = -math.MaxFloat64
		player.StartSession(math.MaxFloat64, 10)

		// When: the session is lost
		require.NoError(t, player.EndSession())

		// Then: the balance is clamped instead of becoming infinite
		assert.False(t, math.IsInf(player.Currency, 0))
		assert.InDelta(t, -math.MaxFloat64, player.Currency, 0)
	})

	t.Run("Win at the highest balance clamps", func(t *testing.T) {
		// Given: a player at the highest representable balance that reaches the target
		player := NewPlayer("bob")
		player.Currency = math.MaxFloat64
		player.StartSession(math.MaxFloat64, 0)

		// When: the session is won
		require.NoError(t, player.EndSession())

		// Then: the balance stays finite
		assert.False(t, math.IsInf(player.Currency, 0))
	})
}

func TestPlayer_StartSessionClearsDebounce(t *testing.T) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	// Given: a player whose last session scored a moment ago
	player := NewPlayer("alice")
	player.StartSession(0, 5)
	require.True(t, player.Detect(start, 500*time.Millisecond, 0.5))
	require.NoError(t, player.EndSession())

	// When: a new session starts and a shot lands 100ms after the previous one
	player.StartSession(0, 5)
	accepted := player.Detect(start.Add(100*time.Millisecond), 500*time.Millisecond, 0.5)

	// Then: the first shot of the new session counts
	assert.True(t, accepted)
	assert.Equal(t, 1, player.Score)
}
