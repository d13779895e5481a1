package storage

import "time"

// Event records one conversational turn: the inbound message, the resolved
// intent and the reply sent back. Events are appended in chronological
// order.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
	Intent    string    `json:"intent"`
	Message   string    `json:"message"`
	Reply     string    `json:"reply"`
}

// Recorder abstracts persistence of turn events.
// Implementations must be safe for concurrent use.
type Recorder interface {
	AppendTurn(event Event) error
	LoadTurns() ([]Event, error)
}
