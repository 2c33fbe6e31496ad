package entity

type EventKind string

// Events pushed from the server to viewers.
const (
	EventCurrencyUpdate    EventKind = "currencyUpdate"
	EventStartGameResponse EventKind = "startGameResponse"
	EventScoreUpdate       EventKind = "scoreUpdate"
	EventUpdateLeaderboard EventKind = "updateLeaderboard"
)

// Event is one of the closed set of server events below.
type Event interface {
	Kind() EventKind
}

type CurrencyUpdate struct {
	Username string  `json:"username"`
	Currency float64 `json:"currency"`
}

func (CurrencyUpdate) Kind() EventKind { return EventCurrencyUpdate }

type StartGameResponse struct {
	TargetScore int `json:"targetScore"`
}

func (StartGameResponse) Kind() EventKind { return EventStartGameResponse }

type ScoreUpdate struct {
	Username string  `json:"username"`
	Score    int     `json:"score"`
	Currency float64 `json:"currency"`
}

func (ScoreUpdate) Kind() EventKind { return EventScoreUpdate }

// LeaderboardUpdate is encoded as a bare list of entries.
type LeaderboardUpdate []LeaderboardEntry

func (LeaderboardUpdate) Kind() EventKind { return EventUpdateLeaderboard }
