// Package protocol translates between the table server's JSON text frames
// and typed internal events, in both directions.
package protocol

import "encoding/json"

type ActionType string

const (
	ActionFold  ActionType = "fold"
	ActionCheck ActionType = "check"
	ActionCall  ActionType = "call"
	ActionBet   ActionType = "bet"
	ActionRaise ActionType = "raise"
	ActionAllIn ActionType = "allin"
)

// Outgoing command types.
const (
	CmdSubscribe  = "subscribe"
	CmdJoinTable  = "join_table"
	CmdLeaveTable = "leave_table"
	CmdAction     = "action"
	CmdChat       = "chat"
	CmdPing       = "ping"
)

type SubscribeCmd struct {
	Type     string `json:"type"`
	TableID  string `json:"tableId"`
	PlayerID string `json:"playerId"`
}

type JoinTableCmd struct {
	Type       string `json:"type"`
	TableID    string `json:"tableId"`
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	SeatNumber int    `json:"seatNumber"`
	BuyIn      int64  `json:"buyIn"`
}

type LeaveTableCmd struct {
	Type     string `json:"type"`
	TableID  string `json:"tableId"`
	PlayerID string `json:"playerId"`
}

type ActionCmd struct {
	Type       string     `json:"type"`
	TableID    string     `json:"tableId"`
	PlayerID   string     `json:"playerId"`
	ActionType ActionType `json:"actionType"`
	Amount     int64      `json:"amount,omitempty"`
}

type ChatCmd struct {
	Type     string `json:"type"`
	TableID  string `json:"tableId"`
	PlayerID string `json:"playerId"`
	Message  string `json:"message"`
}

type PingCmd struct {
	Type string `json:"type"`
}

func EncodeSubscribe(tableID, playerID string) []byte {
	return mustMarshal(SubscribeCmd{Type: CmdSubscribe, TableID: tableID, PlayerID: playerID})
}

func EncodeJoinTable(tableID, playerID, playerName string, seat int, buyIn int64) []byte {
	return mustMarshal(JoinTableCmd{
		Type:       CmdJoinTable,
		TableID:    tableID,
		PlayerID:   playerID,
		PlayerName: playerName,
		SeatNumber: seat,
		BuyIn:      buyIn,
	})
}

func EncodeLeaveTable(tableID, playerID string) []byte {
	return mustMarshal(LeaveTableCmd{Type: CmdLeaveTable, TableID: tableID, PlayerID: playerID})
}

func EncodeAction(tableID, playerID string, action ActionType, amount int64) []byte {
	return mustMarshal(ActionCmd{
		Type:       CmdAction,
		TableID:    tableID,
		PlayerID:   playerID,
		ActionType: action,
		Amount:     amount,
	})
}

func EncodeChat(tableID, playerID, message string) []byte {
	return mustMarshal(ChatCmd{Type: CmdChat, TableID: tableID, PlayerID: playerID, Message: message})
}

func EncodePing() []byte {
	return mustMarshal(PingCmd{Type: CmdPing})
}

// mustMarshal is safe here: every command is a flat struct of marshalable
// fields, so a failure is a programming error.
func mustMarshal(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
