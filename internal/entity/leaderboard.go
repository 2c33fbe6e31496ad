package entity

type LeaderboardEntry struct {
	Username string `json:"username" binding:"required" validate:"required"`
	Score    int    `json:"score" binding:"gte=0" validate:"gte=0"`
}
