package protocol

import (
	"encoding/json"
	"testing"
)

func TestEncodeAction(t *testing.T) {
	data := EncodeAction("T1", "P1", ActionRaise, 40)
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m["type"] != "action" || m["tableId"] != "T1" || m["playerId"] != "P1" {
		t.Fatalf("unexpected command: %v", m)
	}
	if m["actionType"] != "raise" || m["amount"] != float64(40) {
		t.Fatalf("unexpected action fields: %v", m)
	}
}

func TestEncodeActionOmitsZeroAmount(t *testing.T) {
	data := EncodeAction("T1", "P1", ActionFold, 0)
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := m["amount"]; ok {
		t.Fatalf("fold should omit amount: %v", m)
	}
}

func TestEncodeJoinTable(t *testing.T) {
	data := EncodeJoinTable("T1", "P1", "Alice", 3, 1000)
	var cmd JoinTableCmd
	if err := json.Unmarshal(data, &cmd); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := JoinTableCmd{Type: CmdJoinTable, TableID: "T1", PlayerID: "P1", PlayerName: "Alice", SeatNumber: 3, BuyIn: 1000}
	if cmd != want {
		t.Fatalf("round trip = %+v, want %+v", cmd, want)
	}
}

func TestEncodePing(t *testing.T) {
	if string(EncodePing()) != `{"type":"ping"}` {
		t.Fatalf("unexpected ping frame: %s", EncodePing())
	}
}

func TestNewMessageIDUnique(t *testing.T) {
	a, b := NewMessageID(), NewMessageID()
	if a == b || a == "" {
		t.Fatalf("ids not unique: %q %q", a, b)
	}
}
