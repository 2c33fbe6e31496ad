package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/hoopscore-backend/internal/entity"
)

const DefaultPlayersKey = "players:snapshot"

type dbPlayer struct {
	client *redis.Client
	key    string
}

func NewRedisPlayerRepository(client *redis.Client, key string) PlayerRepository {
	if key == "" {
		key = DefaultPlayersKey
	}

	return &dbPlayer{
		client: client,
		key:    key,
	}
}

func (that *dbPlayer) Load(ctx context.Context) ([]*entity.Player, error) {
	response, err := that.client.Get(ctx, that.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSnapshotNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get players: %w", err)
	}

	return decodeSnapshot(response)
}

func (that *dbPlayer) Save(ctx context.Context, players []*entity.Player) error {
	playersJSON, err := encodeSnapshot(players)
	if err != nil {
		return err
	}

	if err = that.client.Set(ctx, that.key, playersJSON, 0).Err(); err != nil {
		return fmt.Errorf("failed to set players: %w", err)
	}

	return nil
}
