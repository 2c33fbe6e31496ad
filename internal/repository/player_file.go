package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rocketscienceinc/hoopscore-backend/internal/entity"
)

type filePlayer struct {
	path string
}

func NewFilePlayerRepository(path string) PlayerRepository {
	return &filePlayer{
		path: path,
	}
}

func (that *filePlayer) Load(_ context.Context) ([]*entity.Player, error) {
	data, err := os.ReadFile(that.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrSnapshotNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read players file: %w", err)
	}

	return decodeSnapshot(data)
}

// Save replaces the file through a temp file and rename so readers never see a partial snapshot.
func (that *filePlayer) Save(_ context.Context, players []*entity.Player) error {
	data, err := encodeSnapshot(players)
	if err != nil {
		return err
	}

	dir := filepath.Dir(that.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(that.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint: errcheck // gone after a successful rename

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write players file: %w", err)
	}

	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync players file: %w", err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close players file: %w", err)
	}

	if err = os.Rename(tmpName, that.path); err != nil {
		return fmt.Errorf("failed to replace players file: %w", err)
	}

	return nil
}
