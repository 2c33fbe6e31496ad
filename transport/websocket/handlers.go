package websocket

import (
	"context"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/hoopscore-backend/internal/apperror"
	"github.com/rocketscienceinc/hoopscore-backend/internal/entity"
)

func (that *Server) handleGetCurrency(_ context.Context, sub *Subscriber, msg *Message) error {
	req, err := decodePayload[GetCurrencyRequest](that.validate, msg)
	if err != nil {
		that.sendError(sub, msg.Action, err)
		return err
	}

	response := entity.CurrencyUpdate{
		Username: req.Username,
		Currency: that.game.GetCurrency(req.Username),
	}

	if err = that.hub.Send(sub, response); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	return nil
}

func (that *Server) handleStartGame(ctx context.Context, sub *Subscriber, msg *Message) error {
	log := that.logger.With("method", "handleStartGame")

	req, err := decodePayload[StartGameRequest](that.validate, msg)
	if err != nil {
		that.sendError(sub, msg.Action, err)
		return err
	}

	targetScore, err := that.game.StartGame(ctx, req.Username, req.Bet)
	if errors.Is(err, apperror.ErrInvalidBet) {
		that.sendError(sub, msg.Action, apperror.ErrInvalidBet)
		return err
	}

	if err != nil && !errors.Is(err, apperror.ErrPersistence) {
		that.sendError(sub, msg.Action, errors.New("failed to start game"))
		return err
	}

	if sendErr := that.hub.Send(sub, entity.StartGameResponse{TargetScore: targetScore}); sendErr != nil {
		return fmt.Errorf("failed to send response: %w", sendErr)
	}

	if err != nil {
		log.Warn("game started without being saved", "username", req.Username, "error", err)
		that.sendError(sub, msg.Action, apperror.ErrPersistence)
		return err
	}

	return nil
}

func (that *Server) handleEndGame(ctx context.Context, sub *Subscriber, msg *Message) error {
	req, err := decodePayload[EndGameRequest](that.validate, msg)
	if err != nil {
		that.sendError(sub, msg.Action, err)
		return err
	}

	// the leaderboard update is broadcast by the game manager
	if _, err = that.game.EndGame(ctx, req.Username); err != nil {
		if errors.Is(err, apperror.ErrPersistence) {
			that.sendError(sub, msg.Action, apperror.ErrPersistence)
		} else {
			that.sendError(sub, msg.Action, errors.New("failed to end game"))
		}

		return err
	}

	return nil
}
