package sim

import (
	"testing"
	"time"

	"tablelink/internal/protocol"
	"tablelink/internal/state"
)

func headsUpTable(t *testing.T) *table {
	t.Helper()
	tbl := newTable("T1", 10, 20, 30*time.Second)
	if err := tbl.seatPlayer("P1", "Alice", 1, 1000); err != nil {
		t.Fatalf("seat P1: %v", err)
	}
	if err := tbl.seatPlayer("P2", "Bob", 2, 1000); err != nil {
		t.Fatalf("seat P2: %v", err)
	}
	return tbl
}

func TestSeatPlayerConflicts(t *testing.T) {
	tbl := headsUpTable(t)
	if err := tbl.seatPlayer("P3", "Carol", 1, 1000); err != errSeatTaken {
		t.Fatalf("err = %v, want seat_taken", err)
	}
	// the same player re-seating is a reconnect, not a conflict
	tbl.players["P1"].disconnected = true
	if err := tbl.seatPlayer("P1", "Alice", 1, 1000); err != nil {
		t.Fatalf("re-seat: %v", err)
	}
	if tbl.players["P1"].disconnected {
		t.Fatal("re-seat should clear the disconnected flag")
	}
}

func TestDealPostsBlindsAndPicksActor(t *testing.T) {
	tbl := headsUpTable(t)
	if !tbl.readyToDealLocked() {
		t.Fatal("two funded players should be dealable")
	}
	tbl.dealLocked()

	if tbl.phase != state.PhasePreflop {
		t.Fatalf("phase = %s, want preflop", tbl.phase)
	}
	if tbl.pot != 30 {
		t.Fatalf("pot = %d, want 30 after blinds", tbl.pot)
	}
	if tbl.currentBet != 20 {
		t.Fatalf("currentBet = %d, want big blind", tbl.currentBet)
	}
	for id, p := range tbl.players {
		if len(p.hole) != 2 {
			t.Fatalf("%s dealt %d cards", id, len(p.hole))
		}
	}
	// dealer rotates to seat 1, so seat 2 posts small and acts first
	if tbl.dealerSeat != 1 {
		t.Fatalf("dealerSeat = %d, want 1", tbl.dealerSeat)
	}
	if tbl.currentActor != 2 {
		t.Fatalf("currentActor = %d, want 2", tbl.currentActor)
	}
	if tbl.players["P2"].bet != 10 || tbl.players["P1"].bet != 20 {
		t.Fatalf("blinds = P2:%d P1:%d", tbl.players["P2"].bet, tbl.players["P1"].bet)
	}
}

func TestActionWhileWaiting(t *testing.T) {
	tbl := headsUpTable(t)
	if err := tbl.applyAction("P1", protocol.ActionFold, 0); err != errTableWaiting {
		t.Fatalf("err = %v, want hand_not_running", err)
	}
}

func TestOutOfTurnActionRejected(t *testing.T) {
	tbl := headsUpTable(t)
	tbl.dealLocked()
	if err := tbl.applyAction("P1", protocol.ActionCall, 0); err != errNotYourTurn {
		t.Fatalf("err = %v, want not_your_turn", err)
	}
	if err := tbl.applyAction("P9", protocol.ActionFold, 0); err != errNotSeated {
		t.Fatalf("err = %v, want not_seated", err)
	}
}

func TestCheckFacingBetRejected(t *testing.T) {
	tbl := headsUpTable(t)
	tbl.dealLocked()
	if err := tbl.applyAction("P2", protocol.ActionCheck, 0); err != errBadAction {
		t.Fatalf("err = %v, want invalid_action", err)
	}
}

func TestCallAndCheckAdvanceToFlop(t *testing.T) {
	tbl := headsUpTable(t)
	tbl.dealLocked()

	if err := tbl.applyAction("P2", protocol.ActionCall, 0); err != nil {
		t.Fatalf("call: %v", err)
	}
	if res := tbl.advanceLocked(); res != nil {
		t.Fatal("hand ended on a call")
	}
	if tbl.currentActor != 1 {
		t.Fatalf("currentActor = %d, want 1", tbl.currentActor)
	}

	if err := tbl.applyAction("P1", protocol.ActionCheck, 0); err != nil {
		t.Fatalf("check: %v", err)
	}
	if res := tbl.advanceLocked(); res != nil {
		t.Fatal("hand ended on a check")
	}
	if tbl.phase != state.PhaseFlop {
		t.Fatalf("phase = %s, want flop", tbl.phase)
	}
	if len(tbl.community) != 3 {
		t.Fatalf("community = %v, want three cards", tbl.community)
	}
	if tbl.currentBet != 0 {
		t.Fatalf("currentBet = %d, bets must reset between streets", tbl.currentBet)
	}
}

func TestRaiseReopensAction(t *testing.T) {
	tbl := headsUpTable(t)
	tbl.dealLocked()

	// target street bet, not increment: minimum is currentBet + minRaise
	if err := tbl.applyAction("P2", protocol.ActionRaise, 30); err != errBetTooSmall {
		t.Fatalf("short raise err = %v, want bet_below_minimum", err)
	}
	if err := tbl.applyAction("P2", protocol.ActionRaise, 40); err != nil {
		t.Fatalf("raise: %v", err)
	}
	if tbl.currentBet != 40 || tbl.minRaise != 20 {
		t.Fatalf("currentBet = %d minRaise = %d", tbl.currentBet, tbl.minRaise)
	}
	if tbl.players["P1"].acted {
		t.Fatal("a raise must reopen action for the other player")
	}
	if res := tbl.advanceLocked(); res != nil {
		t.Fatal("hand ended on a raise")
	}
	if tbl.currentActor != 1 {
		t.Fatalf("currentActor = %d, want 1", tbl.currentActor)
	}
}

func TestFoldSettlesHand(t *testing.T) {
	tbl := headsUpTable(t)
	tbl.dealLocked()

	if err := tbl.applyAction("P2", protocol.ActionFold, 0); err != nil {
		t.Fatalf("fold: %v", err)
	}
	res := tbl.advanceLocked()
	if res == nil {
		t.Fatal("fold should settle the hand")
	}
	if res.Pot != 30 {
		t.Fatalf("pot = %d, want 30", res.Pot)
	}
	if len(res.Winners) != 1 || res.Winners[0].PlayerID != "P1" {
		t.Fatalf("winners = %+v, want P1", res.Winners)
	}
	if got := tbl.players["P1"].stack; got != 1010 {
		t.Fatalf("P1 stack = %d, want 1010", got)
	}
	if tbl.phase != state.PhaseWaiting {
		t.Fatalf("phase = %s, want waiting after settle", tbl.phase)
	}
}

func TestStateFrameMasksOtherHoleCards(t *testing.T) {
	tbl := headsUpTable(t)
	tbl.dealLocked()

	frame := tbl.stateFrameLocked("state", "P1")
	snap, err := protocol.NormalizeSnapshot(frame.State)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	me := snap.PlayerByID("P1")
	if me == nil {
		t.Fatal("viewer missing from snapshot")
	}
	if len(me.HoleCards) != 2 || me.HoleCards[0] == "??" {
		t.Fatalf("own hole cards masked: %v", me.HoleCards)
	}
	other := snap.PlayerByID("P2")
	if other == nil {
		t.Fatal("opponent missing from snapshot")
	}
	if len(other.HoleCards) != 2 || other.HoleCards[0] != "??" || other.HoleCards[1] != "??" {
		t.Fatalf("opponent hole cards leaked: %v", other.HoleCards)
	}
}

func TestFreshDeckIsComplete(t *testing.T) {
	tbl := headsUpTable(t)
	deck := freshDeck(tbl.rnd)
	if len(deck) != 52 {
		t.Fatalf("deck = %d cards", len(deck))
	}
	seen := map[string]bool{}
	for _, card := range deck {
		if seen[card] {
			t.Fatalf("duplicate card %s", card)
		}
		seen[card] = true
	}
}
