package websocket

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/hoopscore-backend/internal/entity"
)

const defaultSendBuffer = 32

var ErrSubscriberSlow = errors.New("subscriber queue is full")

type leaderboardSource interface {
	Current() []entity.LeaderboardEntry
}

// Subscriber is one connected viewer. Encoded messages queue on send until the
// connection's writer picks them up.
type Subscriber struct {
	ID string

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func (that *Subscriber) close() {
	that.closeOnce.Do(func() { close(that.done) })
}

// Hub fans server events out to every subscriber.
type Hub struct {
	logger *slog.Logger
	board  leaderboardSource

	mu          sync.RWMutex
	subscribers map[string]*Subscriber
}

func NewHub(logger *slog.Logger, board leaderboardSource) *Hub {
	return &Hub{
		logger:      logger.With("component", "hub"),
		board:       board,
		subscribers: make(map[string]*Subscriber),
	}
}

// Subscribe registers a viewer and queues the current leaderboard as its first message.
func (that *Hub) Subscribe() *Subscriber {
	sub := &Subscriber{
		ID:   uuid.NewString(),
		send: make(chan []byte, defaultSendBuffer),
		done: make(chan struct{}),
	}

	// the snapshot is queued under the lock so no concurrent Push can overtake it
	that.mu.Lock()
	err := that.Send(sub, entity.LeaderboardUpdate(that.board.Current()))
	that.subscribers[sub.ID] = sub
	count := len(that.subscribers)
	that.mu.Unlock()

	if err != nil {
		that.logger.Error("failed to send leaderboard snapshot", "subscriberID", sub.ID, "error", err)
	}

	that.logger.Info("subscriber connected", "subscriberID", sub.ID, "subscribers", count)

	return sub
}

func (that *Hub) Unsubscribe(sub *Subscriber) {
	that.mu.Lock()
	delete(that.subscribers, sub.ID)
	count := len(that.subscribers)
	that.mu.Unlock()

	sub.close()

	that.logger.Info("subscriber disconnected", "subscriberID", sub.ID, "subscribers", count)
}

// Push sends the event to every subscriber without waiting on any of them.
func (that *Hub) Push(event entity.Event) {
	log := that.logger.With("method", "Push", "event", event.Kind())

	data, err := encodeEvent(event)
	if err != nil {
		log.Error("failed to encode event", "error", err)
		return
	}

	that.mu.RLock()
	subscribers := make([]*Subscriber, 0, len(that.subscribers))
	for _, sub := range that.subscribers {
		subscribers = append(subscribers, sub)
	}
	that.mu.RUnlock()

	for _, sub := range subscribers {
		if err = enqueue(sub, data); err != nil {
			log.Warn("dropping event for subscriber", "subscriberID", sub.ID, "error", err)
		}
	}
}

// Send queues the event for one subscriber.
func (that *Hub) Send(sub *Subscriber, event entity.Event) error {
	data, err := encodeEvent(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	return enqueue(sub, data)
}

func (that *Hub) Count() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.subscribers)
}

func enqueue(sub *Subscriber, data []byte) error {
	select {
	case <-sub.done:
		return nil
	default:
	}

	select {
	case sub.send <- data:
		return nil
	default:
		return ErrSubscriberSlow
	}
}
