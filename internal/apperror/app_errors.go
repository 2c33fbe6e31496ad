package apperror

import "errors"

var (
	ErrGameIsNotStarted = errors.New("game is not started")
	ErrPlayerNotFound   = errors.New("player not found")
	ErrPersistence      = errors.New("failed to persist players")
	ErrInvalidBet       = errors.New("invalid bet")
	ErrSensorTimeout    = errors.New("sensor read timed out")
	ErrSensorBusy       = errors.New("sensor read already in flight")
)
