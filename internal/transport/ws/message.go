package ws

import (
	"encoding/json"
	"fmt"

	"decryptrace/internal/model"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Server to client
const (
	MsgStateChanged         MessageType = "state_changed"
	MsgWinnerAdmitted       MessageType = "winner_admitted"
	MsgGameComplete         MessageType = "game_complete"
	MsgTeamAssigned         MessageType = "team_assigned"
	MsgTeamStatusChanged    MessageType = "team_status_changed"
	MsgActiveMessageChanged MessageType = "active_message_changed"
	MsgGameStatus           MessageType = "game_status"
	MsgError                MessageType = "error"
)

// Client to server
const (
	MsgGetGameStatus MessageType = "get_game_status"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func messageType(event model.Event) (MessageType, error) {
	switch event.(type) {
	case model.StateChanged:
		return MsgStateChanged, nil
	case model.WinnerAdmitted:
		return MsgWinnerAdmitted, nil
	case model.GameComplete:
		return MsgGameComplete, nil
	case model.TeamAssigned:
		return MsgTeamAssigned, nil
	case model.TeamBlocked:
		return MsgTeamStatusChanged, nil
	case model.ActiveMessageChanged:
		return MsgActiveMessageChanged, nil
	}
	return "", fmt.Errorf("unknown event %T", event)
}

// encodeEvent wraps an event in the envelope clients read
func encodeEvent(event model.Event) ([]byte, error) {
	t, err := messageType(event)
	if err != nil {
		return nil, err
	}
	return encode(t, event)
}

func encode(t MessageType, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(&Message{Type: t, Payload: data})
}
