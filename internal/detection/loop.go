package detection

import (
	"context"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"github.com/rocketscienceinc/hoopscore-backend/internal/apperror"
	"github.com/rocketscienceinc/hoopscore-backend/internal/entity"
)

type distanceSensor interface {
	MeasureDistance(ctx context.Context) (float64, error)
}

type players interface {
	Active() []string
	RecordDetection(username string, now time.Time, debounce time.Duration, reward float64) (entity.Player, bool)
}

type broadcaster interface {
	Push(event entity.Event)
}

type Config struct {
	// Threshold is the distance in centimeters below which a shot counts.
	Threshold     float64
	Debounce      time.Duration
	PollInterval  time.Duration
	SensorTimeout time.Duration
	Reward        float64
}

func DefaultConfig() Config {
	return Config{
		Threshold:     30,
		Debounce:      500 * time.Millisecond,
		PollInterval:  100 * time.Millisecond,
		SensorTimeout: 250 * time.Millisecond,
		Reward:        0.5,
	}
}

type reading struct {
	distance float64
	err      error
}

// Loop polls the sensor for every active player and turns close readings into scores.
type Loop struct {
	logger      *slog.Logger
	sensor      distanceSensor
	players     players
	broadcaster broadcaster
	conf        Config

	now     func() time.Time
	reading atomic.Bool
}

func New(logger *slog.Logger, sensor distanceSensor, players players, broadcaster broadcaster, conf Config) *Loop {
	defaults := DefaultConfig()
	if conf.PollInterval <= 0 {
		conf.PollInterval = defaults.PollInterval
	}
	if conf.SensorTimeout <= 0 {
		conf.SensorTimeout = defaults.SensorTimeout
	}

	return &Loop{
		logger:      logger.With("component", "detection"),
		sensor:      sensor,
		players:     players,
		broadcaster: broadcaster,
		conf:        conf,
		now:         time.Now,
	}
}

// Run polls every PollInterval until ctx is done.
func (that *Loop) Run(ctx context.Context) {
	log := that.logger.With("method", "Run")

	ticker := time.NewTicker(that.conf.PollInterval)
	defer ticker.Stop()

	log.Info("detection loop started", "pollInterval", that.conf.PollInterval, "threshold", that.conf.Threshold)

	for {
		select {
		case <-ctx.Done():
			log.Info("detection loop stopped")
			return
		case <-ticker.C:
			that.Poll(ctx)
		}
	}
}

// Poll runs one detection cycle over the active players and returns how many shots scored.
func (that *Loop) Poll(ctx context.Context) int {
	log := that.logger.With("method", "Poll")

	scored := 0
	for _, username := range that.players.Active() {
		if ctx.Err() != nil {
			return scored
		}

		distance := that.measure(ctx)
		if distance >= that.conf.Threshold {
			continue
		}

		player, ok := that.players.RecordDetection(username, that.now(), that.conf.Debounce, that.conf.Reward)
		if !ok {
			continue
		}

		scored++

		log.Info("shot detected", "username", username, "distance", distance, "score", player.Score, "currency", player.Currency)

		that.broadcaster.Push(entity.ScoreUpdate{
			Username: player.Username,
			Score:    player.Score,
			Currency: player.Currency,
		})
	}

	return scored
}

// measure reads the sensor with a bounded wait. Failures, timeouts and a read still
// outstanding from an earlier cycle all count as no detection.
func (that *Loop) measure(ctx context.Context) float64 {
	log := that.logger.With("method", "measure")

	if !that.reading.CompareAndSwap(false, true) {
		log.Debug("skipping sensor read", "error", apperror.ErrSensorBusy)
		return math.Inf(1)
	}

	readCtx, cancel := context.WithTimeout(ctx, that.conf.SensorTimeout)
	defer cancel()

	result := make(chan reading, 1)
	go func() {
		defer that.reading.Store(false)

		distance, err := that.sensor.MeasureDistance(readCtx)
		result <- reading{distance: distance, err: err}
	}()

	select {
	case r := <-result:
		if r.err != nil {
			log.Error("failed to measure distance", "error", r.err)
			return math.Inf(1)
		}

		log.Debug("measured distance", "distance", r.distance)

		return r.distance
	case <-readCtx.Done():
		log.Warn("failed to measure distance", "error", apperror.ErrSensorTimeout, "timeout", that.conf.SensorTimeout)
		return math.Inf(1)
	}
}
