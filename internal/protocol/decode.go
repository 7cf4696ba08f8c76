package protocol

import (
	"encoding/json"
	"time"

	"tablelink/internal/state"
)

type EventType string

const (
	EventConnected      EventType = "connected"
	EventSubscribed     EventType = "subscribed"
	EventJoinedTable    EventType = "joined_table"
	EventState          EventType = "state"
	EventActionAccepted EventType = "action_accepted"
	EventPlayerAction   EventType = "player_action"
	EventShowdown       EventType = "showdown"
	EventHandComplete   EventType = "hand_complete"
	EventChat           EventType = "chat"
	EventLeftTable      EventType = "left_table"
	EventError          EventType = "error"
	EventPong           EventType = "pong"
	EventUnknown        EventType = "unknown"
)

// Event is one decoded server frame. Only the fields relevant to Type are
// populated.
type Event struct {
	Type     EventType
	RawType  string
	TableID  string
	Snapshot *state.TableSnapshot
	Action   *state.LastAction
	Showdown *state.ShowdownResult
	Chat     *state.ChatMessage
	Err      string
}

// ServerFrame is the superset of all incoming frame payloads. The simulator
// marshals the same shape on its way out.
type ServerFrame struct {
	Type       string                `json:"type"`
	TableID    string                `json:"tableId,omitempty"`
	State      json.RawMessage       `json:"state,omitempty"`
	PlayerID   string                `json:"playerId,omitempty"`
	PlayerName string                `json:"playerName,omitempty"`
	ActionType string                `json:"actionType,omitempty"`
	Amount     int64                 `json:"amount,omitempty"`
	Message    string                `json:"message,omitempty"`
	Kind       string                `json:"kind,omitempty"`
	Result     *state.ShowdownResult `json:"result,omitempty"`
	Winners    []state.Winner        `json:"winners,omitempty"`
	Pot        int64                 `json:"pot,omitempty"`
	Error      string                `json:"error,omitempty"`
}

// DecodeEvent parses one incoming text frame. A parse failure or a frame
// without a type returns ErrMalformedFrame; the caller drops the frame and
// keeps the connection open. Unrecognized types decode to EventUnknown.
func DecodeEvent(data []byte) (Event, error) {
	var f ServerFrame
	if err := json.Unmarshal(data, &f); err != nil {
		return Event{}, ErrMalformedFrame
	}
	if f.Type == "" {
		return Event{}, ErrMalformedFrame
	}

	switch f.Type {
	case "connected":
		return Event{Type: EventConnected}, nil
	case "subscribed", "joined_table", "state":
		ev := Event{Type: eventTypeForState(f.Type), TableID: f.TableID}
		if len(f.State) > 0 {
			snap, err := NormalizeSnapshot(f.State)
			if err != nil {
				return Event{}, err
			}
			ev.Snapshot = snap
		}
		return ev, nil
	case "action_accepted":
		return Event{
			Type:   EventActionAccepted,
			Action: &state.LastAction{ActionType: f.ActionType, Amount: f.Amount},
		}, nil
	case "player_action":
		return Event{
			Type:   EventPlayerAction,
			Action: &state.LastAction{PlayerID: f.PlayerID, ActionType: f.ActionType, Amount: f.Amount},
		}, nil
	case "showdown":
		ev := Event{Type: EventShowdown, Showdown: f.Result}
		if ev.Showdown == nil && len(f.Winners) > 0 {
			ev.Showdown = &state.ShowdownResult{Winners: f.Winners, Pot: f.Pot}
		}
		return ev, nil
	case "hand_complete", "hand_end":
		ev := Event{Type: EventHandComplete}
		if len(f.Winners) > 0 {
			ev.Showdown = &state.ShowdownResult{Winners: f.Winners, Pot: f.Pot}
		}
		return ev, nil
	case "chat":
		kind := state.ChatKind(f.Kind)
		if kind == "" {
			kind = state.ChatKindChat
		}
		return Event{
			Type: EventChat,
			Chat: &state.ChatMessage{
				ID:         NewMessageID(),
				PlayerID:   f.PlayerID,
				PlayerName: f.PlayerName,
				Text:       f.Message,
				Kind:       kind,
				SentAt:     time.Now(),
			},
		}, nil
	case "left_table":
		return Event{Type: EventLeftTable, TableID: f.TableID}, nil
	case "error":
		return Event{Type: EventError, Err: f.Error}, nil
	case "pong":
		return Event{Type: EventPong}, nil
	default:
		return Event{Type: EventUnknown, RawType: f.Type}, nil
	}
}

func eventTypeForState(wireType string) EventType {
	switch wireType {
	case "subscribed":
		return EventSubscribed
	case "joined_table":
		return EventJoinedTable
	default:
		return EventState
	}
}
