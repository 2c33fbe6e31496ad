package leaderboard

import (
	"sort"
	"sync"

	"github.com/rocketscienceinc/hoopscore-backend/internal/entity"
)

const DefaultCapacity = 10

// Board is a bounded list of session scores kept sorted from best to worst.
type Board struct {
	mu       sync.RWMutex
	capacity int
	entries  []entity.LeaderboardEntry
}

func New(capacity int) *Board {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	return &Board{
		capacity: capacity,
		entries:  make([]entity.LeaderboardEntry, 0, capacity+1),
	}
}

// Record inserts a score and returns the resulting view.
func (that *Board) Record(username string, score int) []entity.LeaderboardEntry {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.entries = append(that.entries, entity.LeaderboardEntry{Username: username, Score: score})

	// equal scores keep their insertion order
	sort.SliceStable(that.entries, func(i, j int) bool {
		return that.entries[i].Score > that.entries[j].Score
	})

	if len(that.entries) > that.capacity {
		that.entries = that.entries[:that.capacity]
	}

	return that.copyEntries()
}

func (that *Board) Current() []entity.LeaderboardEntry {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.copyEntries()
}

func (that *Board) Capacity() int {
	return that.capacity
}

func (that *Board) copyEntries() []entity.LeaderboardEntry {
	out := make([]entity.LeaderboardEntry, len(that.entries))
	copy(out, that.entries)
	return out
}
