package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rocketscienceinc/hoopscore-backend/internal/entity"
)

var (
	ErrSnapshotNotFound = errors.New("players snapshot not found")
	ErrInvalidSnapshot  = errors.New("invalid players snapshot")
)

// PlayerRepository stores the full set of players as one snapshot.
type PlayerRepository interface {
	Load(ctx context.Context) ([]*entity.Player, error)
	Save(ctx context.Context, players []*entity.Player) error
}

type snapshot struct {
	Players []entity.Player `json:"players" validate:"required,dive"`
}

var validate = validator.New()

func encodeSnapshot(players []*entity.Player) ([]byte, error) {
	snap := snapshot{Players: make([]entity.Player, 0, len(players))}
	for _, player := range players {
		snap.Players = append(snap.Players, *player)
	}

	data, err := json.MarshalIndent(snap, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal players: %w", err)
	}

	return data, nil
}

func decodeSnapshot(data []byte) ([]*entity.Player, error) {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}

	if err := validate.Struct(snap); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}

	players := make([]*entity.Player, 0, len(snap.Players))
	for i := range snap.Players {
		players = append(players, &snap.Players[i])
	}

	return players, nil
}
