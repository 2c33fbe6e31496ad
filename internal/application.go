package application

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rocketscienceinc/hoopscore-backend/internal/config"
	"github.com/rocketscienceinc/hoopscore-backend/internal/detection"
	"github.com/rocketscienceinc/hoopscore-backend/internal/leaderboard"
	"github.com/rocketscienceinc/hoopscore-backend/internal/repository"
	"github.com/rocketscienceinc/hoopscore-backend/internal/repository/storage"
	"github.com/rocketscienceinc/hoopscore-backend/internal/sensor"
	"github.com/rocketscienceinc/hoopscore-backend/internal/usecase"
	"github.com/rocketscienceinc/hoopscore-backend/transport/rest"
	"github.com/rocketscienceinc/hoopscore-backend/transport/websocket"
)

type distanceSensor interface {
	MeasureDistance(ctx context.Context) (float64, error)
}

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	playerRepo, closeRepo, err := newPlayerRepository(ctx, conf)
	if err != nil {
		return err
	}
	defer closeRepo()

	players := usecase.NewPlayerRegistry(logger, playerRepo)
	log.Info("players restored", "count", players.Load(ctx))

	board := leaderboard.New(conf.Game.LeaderboardSize)
	hub := websocket.NewHub(logger, board)

	random := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), uint64(os.Getpid())))
	gameManager := usecase.NewGameManager(logger, players, board, hub, random)

	distance, closeSensor := newSensor(log, conf)
	defer closeSensor()

	loop := detection.New(logger, distance, players, hub, detection.Config{
		Threshold:     conf.Detection.Threshold,
		Debounce:      conf.Detection.Debounce,
		PollInterval:  conf.Detection.PollInterval,
		SensorTimeout: conf.Detection.SensorTimeout,
		Reward:        conf.Detection.Reward,
	})

	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		players.RunPersister(ctx)
	}()
	go func() {
		defer wg.Done()
		loop.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		gameManager.BroadcastLeaderboard(ctx, conf.Game.LeaderboardInterval)
	}()

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.New(logger, gameManager).Start(ctx, conf.HTTPPort); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		if wsErr := websocket.New(logger, hub, gameManager).Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		err = fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		err = fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
	}

	cancel()
	// the persister flushes the last snapshot before returning
	wg.Wait()

	return err
}

func newPlayerRepository(ctx context.Context, conf *config.Config) (repository.PlayerRepository, func(), error) {
	if conf.Storage.Driver != config.StorageRedis {
		return repository.NewFilePlayerRepository(conf.Storage.FilePath), func() {}, nil
	}

	client, err := storage.NewRedis(ctx, conf.Redis.GetRedisAddr(), conf.Redis.Password, conf.Redis.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	return repository.NewRedisPlayerRepository(client, conf.Redis.Key), func() { _ = client.Close() }, nil
}

// newSensor opens the configured sensor. A sensor that cannot be opened is replaced
// by one that never detects, so viewers and commands keep working.
func newSensor(log *slog.Logger, conf *config.Config) (distanceSensor, func()) {
	if conf.Sensor.Kind == config.SensorNone {
		log.Warn("sensor disabled, shots will not be detected")
		return sensor.Disabled{}, func() {}
	}

	serialSensor, err := sensor.OpenSerial(conf.Sensor.Port, conf.Sensor.BaudRate, conf.Sensor.ReadTimeout)
	if err != nil {
		log.Error("failed to open sensor, shots will not be detected", "port", conf.Sensor.Port, "error", err)
		return sensor.Disabled{}, func() {}
	}

	return serialSensor, func() {
		if err := serialSensor.Close(); err != nil {
			log.Error("failed to close sensor", "error", err)
		}
	}
}
