package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 25 * time.Second
	maxMessageSize = 4096
	shutdownWait   = 5 * time.Second
)

type gameUseCase interface {
	StartGame(ctx context.Context, username string, bet float64) (int, error)
	EndGame(ctx context.Context, username string) (bool, error)
	GetCurrency(username string) float64
}

type Server struct {
	logger   *slog.Logger
	hub      *Hub
	game     gameUseCase
	upgrader websocket.Upgrader
	validate *validator.Validate

	handlers map[string]func(ctx context.Context, sub *Subscriber, msg *Message) error
}

func New(logger *slog.Logger, hub *Hub, game gameUseCase) *Server {
	server := &Server{
		logger: logger.With("component", "websocket"),
		hub:    hub,
		game:   game,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// viewers are served from the same LAN kiosk
			CheckOrigin: func(*http.Request) bool { return true },
		},
		validate: validator.New(),

		handlers: make(map[string]func(context.Context, *Subscriber, *Message) error),
	}

	server.handlers[actionGetCurrency] = server.handleGetCurrency
	server.handlers[actionStartGame] = server.handleStartGame
	server.handlers[actionEndGame] = server.handleEndGame

	return server
}

func (that *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.serveWS(ctx, w, r)
	})

	return mux
}

// Start - starts WebSocket server and shuts it down when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(ctx),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownWait)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down websocket server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// serveWS - upgrades the connection and serves one viewer until it disconnects.
func (that *Server) serveWS(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "serveWS")

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	sub := that.hub.Subscribe()

	go that.writePump(conn, sub)

	// http.Server.Shutdown leaves hijacked connections open
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-sub.done:
		}
	}()

	that.readPump(ctx, conn, sub)

	that.hub.Unsubscribe(sub)
	conn.Close()
}

// readPump - processes messages from the client.
func (that *Server) readPump(ctx context.Context, conn *websocket.Conn, sub *Subscriber) {
	log := that.logger.With("method", "readPump", "subscriberID", sub.ID)

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("error reading message", "error", err)
			}
			return
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			that.sendError(sub, "", ErrInvalidPayload)
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)
			that.sendError(sub, message.Action, fmt.Errorf("unknown action %q", message.Action))
			continue
		}

		if err = handler(ctx, sub, &message); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

// writePump - owns all writes to the connection.
func (that *Server) writePump(conn *websocket.Conn, sub *Subscriber) {
	log := that.logger.With("method", "writePump", "subscriberID", sub.ID)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case data := <-sub.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error("failed to write message", "error", err)
				conn.Close()
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				conn.Close()
				return
			}
		case <-sub.done:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		}
	}
}

func (that *Server) sendError(sub *Subscriber, action string, err error) {
	if sendErr := that.hub.Send(sub, ErrorResponse{Action: action, Error: err.Error()}); sendErr != nil {
		that.logger.Error("failed to send error response", "subscriberID", sub.ID, "error", sendErr)
	}
}
