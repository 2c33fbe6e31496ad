package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/rocketscienceinc/hoopscore-backend/internal/apperror"
	"github.com/rocketscienceinc/hoopscore-backend/internal/entity"
)

const (
	MinTargetScore = 5
	MaxTargetScore = 10
)

type randomSource interface {
	IntN(n int) int
}

type broadcaster interface {
	Push(event entity.Event)
}

type scoreBoard interface {
	Record(username string, score int) []entity.LeaderboardEntry
	Current() []entity.LeaderboardEntry
}

type GameManager struct {
	logger *slog.Logger

	players     *PlayerRegistry
	board       scoreBoard
	broadcaster broadcaster
	random      randomSource
}

func NewGameManager(logger *slog.Logger, players *PlayerRegistry, board scoreBoard, broadcaster broadcaster, random randomSource) *GameManager {
	return &GameManager{
		logger: logger.With("component", "game"),

		players:     players,
		board:       board,
		broadcaster: broadcaster,
		random:      random,
	}
}

// StartGame opens a new session for the player, creating the player on first use, and
// returns the drawn target score. On a store failure the session is still started and the
// error wraps apperror.ErrPersistence.
func (that *GameManager) StartGame(ctx context.Context, username string, bet float64) (int, error) {
	log := that.logger.With("method", "StartGame", "username", username)

	if math.IsNaN(bet) || bet < 0 || bet > entity.MaxBet {
		return 0, fmt.Errorf("%w: %v", apperror.ErrInvalidBet, bet)
	}

	player, err := that.players.Update(ctx, username, true, func(player *entity.Player) error {
		// drawn under the registry lock, the random source is not safe for concurrent use
		player.StartSession(bet, that.drawTarget())
		return nil
	})
	if err != nil && !errors.Is(err, apperror.ErrPersistence) {
		return 0, fmt.Errorf("failed to start game: %w", err)
	}

	log.Info("game started", "bet", bet, "targetScore", player.TargetScore)

	if err != nil {
		log.Error("game started but not saved", "error", err)
		return player.TargetScore, err
	}

	return player.TargetScore, nil
}

// EndGame finishes the player's session, settles the bet and publishes the leaderboard.
// Unknown or inactive players are ignored and reported with false.
func (that *GameManager) EndGame(ctx context.Context, username string) (bool, error) {
	log := that.logger.With("method", "EndGame", "username", username)

	player, err := that.players.Update(ctx, username, false, func(player *entity.Player) error {
		return player.EndSession()
	})

	if errors.Is(err, apperror.ErrPlayerNotFound) || errors.Is(err, apperror.ErrGameIsNotStarted) {
		log.Info("ignoring end of game", "reason", err)
		return false, nil
	}

	if err != nil && !errors.Is(err, apperror.ErrPersistence) {
		return false, fmt.Errorf("failed to end game: %w", err)
	}

	entries := that.board.Record(player.Username, player.Score)
	that.broadcaster.Push(entity.LeaderboardUpdate(entries))

	log.Info("game ended", "score", player.Score, "targetScore", player.TargetScore, "won", player.Won(), "currency", player.Currency)

	if err != nil {
		log.Error("game ended but not saved", "error", err)
		return true, err
	}

	return true, nil
}

// GetCurrency returns the player's balance, zero for unknown players.
func (that *GameManager) GetCurrency(username string) float64 {
	player, ok := that.players.Get(username)
	if !ok {
		return 0
	}

	return player.Currency
}

func (that *GameManager) Leaderboard() []entity.LeaderboardEntry {
	return that.board.Current()
}

// RecordScore adds an externally submitted score to the leaderboard.
func (that *GameManager) RecordScore(username string, score int) []entity.LeaderboardEntry {
	entries := that.board.Record(username, score)
	that.broadcaster.Push(entity.LeaderboardUpdate(entries))

	that.logger.Info("score submitted", "username", username, "score", score)

	return entries
}

// BroadcastLeaderboard pushes the leaderboard every interval until ctx is done.
func (that *GameManager) BroadcastLeaderboard(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			that.broadcaster.Push(entity.LeaderboardUpdate(that.board.Current()))
		}
	}
}

func (that *GameManager) drawTarget() int {
	return MinTargetScore + that.random.IntN(MaxTargetScore-MinTargetScore+1)
}
