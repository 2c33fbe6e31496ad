package entity

import "time"

const (
	ModeCompetitive = "competitive"

	StartingCurrency = 100

	// MaxBet bounds a single wager so balances stay finite.
	MaxBet = 1_000_000
)

type Player struct {
	Username    string  `json:"username" validate:"required"`
	Score       int     `json:"score"`
	Currency    float64 `json:"currency"`
	Mode        string  `json:"mode"`
	GameStarted bool    `json:"game_started"`
	GameOver    bool    `json:"game_over"`
	Bet         float64 `json:"bet"`
	TargetScore int     `json:"target_score"`

	// LastDetection is the time of the last accepted detection for this player.
	LastDetection time.Time `json:"-"`
}

func NewPlayer(username string) *Player {
	return &Player{
		Username: username,
		Currency: StartingCurrency,
		Mode:     ModeCompetitive,
	}
}
