package rest

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rocketscienceinc/hoopscore-backend/internal/entity"
)

type scoreUseCase interface {
	Leaderboard() []entity.LeaderboardEntry
	RecordScore(username string, score int) []entity.LeaderboardEntry
}

type handlers struct {
	logger *slog.Logger
	scores scoreUseCase
}

func newHandlers(logger *slog.Logger, scores scoreUseCase) *handlers {
	return &handlers{
		logger: logger,
		scores: scores,
	}
}

func (that *handlers) ping(ctx *gin.Context) {
	ctx.String(http.StatusOK, "pong")
}

func (that *handlers) getHighscores(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, that.scores.Leaderboard())
}

func (that *handlers) postHighscore(ctx *gin.Context) {
	log := that.logger.With("method", "postHighscore")

	var entry entity.LeaderboardEntry
	if err := ctx.ShouldBindJSON(&entry); err != nil {
		log.Warn("invalid highscore", "error", err)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid highscore"})
		return
	}

	that.scores.RecordScore(entry.Username, entry.Score)

	ctx.JSON(http.StatusOK, gin.H{"status": "success"})
}
