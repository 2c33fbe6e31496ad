package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/hoopscore-backend/internal/apperror"
	"github.com/rocketscienceinc/hoopscore-backend/internal/entity"
)

type playerRepo interface {
	Load(ctx context.Context) ([]*entity.Player, error)
	Save(ctx context.Context, players []*entity.Player) error
}

// PlayerRegistry owns the in-memory players. All reads and writes go through it,
// and one lock covers every player record.
type PlayerRegistry struct {
	logger *slog.Logger
	repo   playerRepo

	mu      sync.Mutex
	players map[string]*entity.Player
	order   []string

	saveMu sync.Mutex
	dirty  chan struct{}
}

func NewPlayerRegistry(logger *slog.Logger, repo playerRepo) *PlayerRegistry {
	return &PlayerRegistry{
		logger:  logger.With("component", "registry"),
		repo:    repo,
		players: make(map[string]*entity.Player),
		dirty:   make(chan struct{}, 1),
	}
}

// Load replaces the registry contents with the stored players. A missing or invalid
// snapshot is logged and the registry starts empty.
func (that *PlayerRegistry) Load(ctx context.Context) int {
	log := that.logger.With("method", "Load")

	players, err := that.repo.Load(ctx)
	if err != nil {
		log.Error("failed to load players, starting with an empty registry", "error", err)
		players = nil
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	that.players = make(map[string]*entity.Player, len(players))
	that.order = that.order[:0]

	for _, player := range players {
		if _, ok := that.players[player.Username]; ok {
			log.Warn("duplicate player in snapshot, keeping the first one", "username", player.Username)
			continue
		}

		p := *player
		that.players[p.Username] = &p
		that.order = append(that.order, p.Username)
	}

	log.Info("players loaded", "count", len(that.order))

	return len(that.order)
}

// Get returns a copy of the player.
func (that *PlayerRegistry) Get(username string) (entity.Player, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	player, ok := that.players[username]
	if !ok {
		return entity.Player{}, false
	}

	return *player, true
}

// Update applies fn to the player under the registry lock and writes the new state through
// to the store. With create set an unseen username gets a new player. If fn fails nothing
// changes. A store failure is returned wrapped in apperror.ErrPersistence together with the
// updated player, which stays authoritative in memory.
func (that *PlayerRegistry) Update(ctx context.Context, username string, create bool, fn func(player *entity.Player) error) (entity.Player, error) {
	that.mu.Lock()

	current, ok := that.players[username]
	if !ok && !create {
		that.mu.Unlock()
		return entity.Player{}, apperror.ErrPlayerNotFound
	}

	if !ok {
		current = entity.NewPlayer(username)
	}

	updated := *current
	if err := fn(&updated); err != nil {
		previous := *current
		that.mu.Unlock()
		return previous, err
	}

	if !ok {
		that.order = append(that.order, username)
	}

	that.players[username] = &updated
	result := updated

	that.mu.Unlock()

	if err := that.persist(ctx); err != nil {
		return result, fmt.Errorf("%w: %w", apperror.ErrPersistence, err)
	}

	return result, nil
}

// Active returns the usernames with a running session.
func (that *PlayerRegistry) Active() []string {
	that.mu.Lock()
	defer that.mu.Unlock()

	active := make([]string, 0, len(that.order))
	for _, username := range that.order {
		if that.players[username].IsActive() {
			active = append(active, username)
		}
	}

	return active
}

// RecordDetection scores a made shot for the player if it passes that player's own
// debounce window. The write-through is deferred to the persister.
func (that *PlayerRegistry) RecordDetection(username string, now time.Time, debounce time.Duration, reward float64) (entity.Player, bool) {
	that.mu.Lock()

	player, ok := that.players[username]
	if !ok {
		that.mu.Unlock()
		return entity.Player{}, false
	}

	accepted := player.Detect(now, debounce, reward)
	result := *player

	that.mu.Unlock()

	if accepted {
		that.schedulePersist()
	}

	return result, accepted
}

// Snapshot returns copies of all players in creation order.
func (that *PlayerRegistry) Snapshot() []*entity.Player {
	that.mu.Lock()
	defer that.mu.Unlock()

	players := make([]*entity.Player, 0, len(that.order))
	for _, username := range that.order {
		p := *that.players[username]
		players = append(players, &p)
	}

	return players
}

// RunPersister writes deferred changes until ctx is done, then flushes once more.
func (that *PlayerRegistry) RunPersister(ctx context.Context) {
	log := that.logger.With("method", "RunPersister")

	for {
		select {
		case <-ctx.Done():
			select {
			case <-that.dirty:
				if err := that.persist(context.WithoutCancel(ctx)); err != nil {
					log.Error("failed to flush players on shutdown", "error", err)
				}
			default:
			}

			log.Info("persister stopped")
			return
		case <-that.dirty:
			if err := that.persist(ctx); err != nil {
				log.Error("failed to persist players", "error", err)
			}
		}
	}
}

func (that *PlayerRegistry) schedulePersist() {
	select {
	case that.dirty <- struct{}{}:
	default:
	}
}

// persist takes the snapshot while holding saveMu so saves land in order.
func (that *PlayerRegistry) persist(ctx context.Context) error {
	that.saveMu.Lock()
	defer that.saveMu.Unlock()

	if err := that.repo.Save(ctx, that.Snapshot()); err != nil {
		return fmt.Errorf("failed to save players: %w", err)
	}

	return nil
}
