package sim

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"tablelink/internal/client"
	"tablelink/internal/config"
	"tablelink/internal/state"
)

func testServer(t *testing.T) string {
	t.Helper()
	srv := NewServer(10, 20, 30*time.Second, zerolog.Nop())
	ts := httptest.NewServer(http.HandlerFunc(srv.HandleWS))
	t.Cleanup(ts.Close)
	return "ws" + strings.TrimPrefix(ts.URL, "http")
}

func dialClient(t *testing.T, endpoint, playerID, name string, seat int) *client.Client {
	t.Helper()
	c, err := client.New("T1", playerID, name, 1000, client.Options{
		Config: config.ClientConfig{
			Endpoint:         endpoint,
			Heartbeat:        time.Minute,
			DialTimeout:      2 * time.Second,
			ChatLogSize:      50,
			LastActionWindow: 5 * time.Second,
			ShowdownWindow:   5 * time.Second,
			ErrorWindow:      5 * time.Second,
		},
		Logger: zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("New %s: %v", playerID, err)
	}
	t.Cleanup(c.Close)
	if err := c.Connect(); err != nil {
		t.Fatalf("Connect %s: %v", playerID, err)
	}
	if !c.JoinTable(seat) {
		t.Fatalf("JoinTable %s failed", playerID)
	}
	return c
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestRejectsConnectionWithoutIdentity(t *testing.T) {
	srv := NewServer(10, 20, 30*time.Second, zerolog.Nop())
	ts := httptest.NewServer(http.HandlerFunc(srv.HandleWS))
	t.Cleanup(ts.Close)

	resp, err := http.Get(ts.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHandStartsWhenTwoPlayersJoin(t *testing.T) {
	endpoint := testServer(t)
	p1 := dialClient(t, endpoint, "P1", "Alice", 1)
	p2 := dialClient(t, endpoint, "P2", "Bob", 2)

	inPreflop := func(c *client.Client) bool {
		snap := c.Store().Snapshot()
		return snap != nil && snap.Phase == state.PhasePreflop
	}
	waitFor(t, 2*time.Second, func() bool { return inPreflop(p1) && inPreflop(p2) })

	snap := p1.Store().Snapshot()
	if snap.Pot != 30 {
		t.Fatalf("pot = %d, want 30 after blinds", snap.Pot)
	}
	if snap.CurrentActorSeat == nil || *snap.CurrentActorSeat != 2 {
		t.Fatalf("currentActorSeat = %v, want 2", snap.CurrentActorSeat)
	}
	if p1.IsMyTurn() {
		t.Fatal("P1 should not be on turn")
	}
	if !p2.IsMyTurn() {
		t.Fatal("P2 should be on turn")
	}

	// each viewer sees only their own hole cards
	if hole := p1.Store().MyHoleCards(); len(hole) != 2 || hole[0] == "??" {
		t.Fatalf("P1 hole cards = %v", hole)
	}
	if opp := snap.PlayerByID("P2"); opp == nil || len(opp.HoleCards) != 2 || opp.HoleCards[0] != "??" {
		t.Fatal("opponent hole cards must be masked")
	}
}

func TestOutOfTurnActionSurfacesAsError(t *testing.T) {
	endpoint := testServer(t)
	p1 := dialClient(t, endpoint, "P1", "Alice", 1)
	p2 := dialClient(t, endpoint, "P2", "Bob", 2)

	waitFor(t, 2*time.Second, func() bool {
		return p1.Store().Snapshot() != nil && p1.Store().Snapshot().Phase == state.PhasePreflop &&
			p2.Store().Snapshot() != nil
	})

	if !p1.Call() {
		t.Fatal("send failed")
	}
	waitFor(t, 2*time.Second, func() bool {
		msg, ok := p1.LastError()
		return ok && msg == "not_your_turn"
	})
	if p1.Status() != client.StatusConnected {
		t.Fatal("a rejected action must not drop the connection")
	}
}

func TestFoldCompletesHand(t *testing.T) {
	endpoint := testServer(t)
	p1 := dialClient(t, endpoint, "P1", "Alice", 1)
	p2 := dialClient(t, endpoint, "P2", "Bob", 2)

	waitFor(t, 2*time.Second, func() bool {
		return p2.Store().Snapshot() != nil && p2.IsMyTurn()
	})

	if !p2.Fold() {
		t.Fatal("fold send failed")
	}

	waitFor(t, 2*time.Second, func() bool {
		a, ok := p1.LastAction()
		return ok && a.PlayerID == "P2" && a.ActionType == "fold"
	})
	waitFor(t, 2*time.Second, func() bool {
		r, ok := p1.Showdown()
		return ok && r.Pot == 30 && len(r.Winners) == 1 && r.Winners[0].PlayerID == "P1"
	})
}

func TestChatReachesEveryone(t *testing.T) {
	endpoint := testServer(t)
	p1 := dialClient(t, endpoint, "P1", "Alice", 1)
	p2 := dialClient(t, endpoint, "P2", "Bob", 2)

	waitFor(t, 2*time.Second, func() bool {
		return p1.Store().Snapshot() != nil && p2.Store().Snapshot() != nil
	})

	if !p1.SendChat("gl") {
		t.Fatal("chat send failed")
	}
	for _, c := range []*client.Client{p1, p2} {
		waitFor(t, 2*time.Second, func() bool {
			msgs := c.ChatMessages()
			return len(msgs) == 1 && msgs[0].PlayerName == "Alice" && msgs[0].Text == "gl"
		})
	}
}

func TestPingAnsweredWithPong(t *testing.T) {
	endpoint := testServer(t)
	conn, _, err := websocket.DefaultDialer.Dial(endpoint+"?tableId=T1&playerId=P1", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		_ = conn.SetReadDeadline(deadline)
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var frame struct {
			Type string `json:"type"`
		}
		if json.Unmarshal(data, &frame) == nil && frame.Type == "pong" {
			return
		}
	}
	t.Fatal("no pong before deadline")
}
