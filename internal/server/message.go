package server

import (
	"encoding/json"
	"time"
)

// MessageType names a websocket message.
type MessageType string

const (
	// Client to server
	MessageTypeToggleCard     MessageType = "toggle_card"
	MessageTypeClearSelection MessageType = "clear_selection"
	MessageTypeRandomAssign   MessageType = "random_assign"
	MessageTypeTrackCard      MessageType = "track_card"

	// Server to client
	MessageTypeRoundView MessageType = "round_view"
	MessageTypeRollover  MessageType = "rollover"
	MessageTypeError     MessageType = "error"
)

func (mt MessageType) String() string {
	return string(mt)
}

// Message is the envelope for every websocket frame.
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage wraps data in an envelope stamped with at.
func NewMessage(messageType MessageType, data any, at time.Time) (*Message, error) {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	return &Message{Type: messageType, Data: raw, Timestamp: at}, nil
}

type ToggleCardData struct {
	CardID int `json:"cardId"`
}

// TrackCardData follows a card without playing it. CardID 0 stops tracking.
type TrackCardData struct {
	CardID int `json:"cardId"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RolloverData struct {
	PreviousRoundID int64 `json:"previousRoundId"`
	RoundID         int64 `json:"roundId"`
}
