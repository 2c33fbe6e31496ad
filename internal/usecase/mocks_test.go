package usecase

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/rocketscienceinc/hoopscore-backend/internal/entity"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// memoryRepo is an in-memory playerRepo that records every save.
type memoryRepo struct {
	mu      sync.Mutex
	loaded  []*entity.Player
	loadErr error
	saveErr error
	saves   [][]*entity.Player
	saved   chan struct{}
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{saved: make(chan struct{}, 64)}
}

func (m *memoryRepo) Load(_ context.Context) ([]*entity.Player, error) {
	return m.loaded, m.loadErr
}

func (m *memoryRepo) Save(_ context.Context, players []*entity.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.saveErr != nil {
		return m.saveErr
	}

	m.saves = append(m.saves, players)

	select {
	case m.saved <- struct{}{}:
	default:
	}

	return nil
}

func (m *memoryRepo) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saves)
}

func (m *memoryRepo) lastSave() []*entity.Player {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.saves) == 0 {
		return nil
	}
	return m.saves[len(m.saves)-1]
}

type mockBroadcaster struct {
	mock.Mock
}

func (m *mockBroadcaster) Push(event entity.Event) {
	m.Called(event)
}

// fixedRandom always returns the same value, clamped to the requested range.
type fixedRandom struct {
	value int
}

func (f fixedRandom) IntN(n int) int {
	return min(f.value, n-1)
}
