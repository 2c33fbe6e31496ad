package entity

import (
	"math"
	"time"

	"github.com/rocketscienceinc/hoopscore-backend/internal/apperror"
)

const (
	StatusIdle     = "idle"
	StatusActive   = "active"
	StatusFinished = "finished"
)

// Status derives the session state from the GameStarted/GameOver flags.
func (that *Player) Status() string {
	switch {
	case that.GameStarted && !that.GameOver:
		return StatusActive
	case that.GameOver:
		return StatusFinished
	default:
		return StatusIdle
	}
}

func (that *Player) IsActive() bool {
	return that.Status() == StatusActive
}

func (that *Player) IsFinished() bool {
	return that.Status() == StatusFinished
}

// StartSession resets the player for a new session. Allowed from any state.
func (that *Player) StartSession(bet float64, targetScore int) {
	that.Score = 0
	that.GameStarted = true
	that.GameOver = false
	that.Bet = bet
	that.TargetScore = targetScore
	that.LastDetection = time.Time{}
}

// EndSession finishes an active session and settles the bet.
func (that *Player) EndSession() error {
	if !that.IsActive() {
		return apperror.ErrGameIsNotStarted
	}

	that.GameStarted = false
	that.GameOver = true

	if that.Won() {
		that.Currency = addCurrency(that.Currency, that.Bet)
	} else {
		that.Currency = addCurrency(that.Currency, -that.Bet)
	}

	return nil
}

// addCurrency keeps the balance finite so the player can always be encoded.
func addCurrency(currency, delta float64) float64 {
	sum := currency + delta

	switch {
	case math.IsNaN(sum):
		return currency
	case math.IsInf(sum, 1):
		return math.MaxFloat64
	case math.IsInf(sum, -1):
		return -math.MaxFloat64
	default:
		return sum
	}
}

func (that *Player) Won() bool {
	return that.Score >= that.TargetScore
}

// Detect applies one made shot if the player is active and the debounce window has passed
// since the player's own last accepted detection.
func (that *Player) Detect(now time.Time, debounce time.Duration, reward float64) bool {
	if !that.IsActive() {
		return false
	}

	if !that.LastDetection.IsZero() && now.Sub(that.LastDetection) < debounce {
		return false
	}

	that.Score++
	that.Currency = addCurrency(that.Currency, reward)
	that.LastDetection = now

	return true
}
