package websocket

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/rocketscienceinc/hoopscore-backend/internal/entity"
)

// Client actions.
const (
	actionGetCurrency = "getCurrency"
	actionStartGame   = "startGame"
	actionEndGame     = "endGame"
)

const eventError entity.EventKind = "error"

var ErrInvalidPayload = errors.New("invalid payload")

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type GetCurrencyRequest struct {
	Username string `json:"username" validate:"required,max=64"`
}

type StartGameRequest struct {
	Username string  `json:"username" validate:"required,max=64"`
	Bet      float64 `json:"bet" validate:"gte=0,lte=1000000"`
}

type EndGameRequest struct {
	Username string `json:"username" validate:"required,max=64"`
}

// ErrorResponse is sent back to the requesting client only.
type ErrorResponse struct {
	Action string `json:"action"`
	Error  string `json:"error"`
}

func (ErrorResponse) Kind() entity.EventKind { return eventError }

func decodePayload[T any](validate *validator.Validate, msg *Message) (*T, error) {
	var req T

	if len(msg.Payload) == 0 {
		return nil, fmt.Errorf("%w: payload is required", ErrInvalidPayload)
	}

	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	if err := validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPayload, formatValidationError(err))
	}

	return &req, nil
}

func encodeEvent(event entity.Event) ([]byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	data, err := json.Marshal(Message{
		Action:  string(event.Kind()),
		Payload: payload,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	return data, nil
}

func formatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		field := strings.ToLower(fieldError.Field())

		switch fieldError.Tag() {
		case "required":
			messages = append(messages, field+" is required")
		case "gte":
			messages = append(messages, fmt.Sprintf("%s must be at least %s", field, fieldError.Param()))
		case "lte":
			messages = append(messages, fmt.Sprintf("%s must be at most %s", field, fieldError.Param()))
		case "max":
			messages = append(messages, fmt.Sprintf("%s must be at most %s characters", field, fieldError.Param()))
		default:
			messages = append(messages, field+" is invalid")
		}
	}

	return strings.Join(messages, "; ")
}
