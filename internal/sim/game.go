package sim

import (
	"encoding/json"
	"errors"
	"math/rand"
	"sort"
	"sync"
	"time"

	"tablelink/internal/protocol"
	"tablelink/internal/state"
)

var (
	errSeatTaken    = errors.New("seat_taken")
	errNotSeated    = errors.New("not_seated")
	errNotYourTurn  = errors.New("not_your_turn")
	errBadAction    = errors.New("invalid_action")
	errBetTooSmall  = errors.New("bet_below_minimum")
	errTableWaiting = errors.New("hand_not_running")
)

type seatedPlayer struct {
	playerID     string
	name         string
	seat         int
	stack        int64
	bet          int64
	totalBet     int64
	hole         []string
	folded       bool
	allIn        bool
	acted        bool
	disconnected bool
}

type table struct {
	mu            sync.Mutex
	id            string
	version       int64
	phase         state.Phase
	pot           int64
	currentBet    int64
	minRaise      int64
	smallBlind    int64
	bigBlind      int64
	actionTimeout time.Duration
	community     []string
	deck          []string
	dealerSeat    int
	currentActor  int
	players       map[string]*seatedPlayer
	subs          map[*session]struct{}
	rnd           *rand.Rand
}

func newTable(id string, smallBlind, bigBlind int64, actionTimeout time.Duration) *table {
	return &table{
		id:            id,
		phase:         state.PhaseWaiting,
		smallBlind:    smallBlind,
		bigBlind:      bigBlind,
		actionTimeout: actionTimeout,
		currentActor:  -1,
		players:       map[string]*seatedPlayer{},
		subs:          map[*session]struct{}{},
		rnd:           rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (t *table) seatPlayer(playerID, name string, seat int, buyIn int64) error {
	for _, p := range t.players {
		if p.seat == seat && p.playerID != playerID {
			return errSeatTaken
		}
	}
	if p := t.players[playerID]; p != nil {
		p.disconnected = false
		return nil
	}
	t.players[playerID] = &seatedPlayer{
		playerID: playerID,
		name:     name,
		seat:     seat,
		stack:    buyIn,
	}
	return nil
}

func (t *table) unseat(playerID string) {
	delete(t.players, playerID)
	if len(t.players) < 2 {
		t.phase = state.PhaseWaiting
		t.currentActor = -1
	}
}

func (t *table) readyToDealLocked() bool {
	if t.phase != state.PhaseWaiting {
		return false
	}
	funded := 0
	for _, p := range t.players {
		if p.stack > 0 {
			funded++
		}
	}
	return funded >= 2
}

func (t *table) seatsInOrder() []*seatedPlayer {
	out := make([]*seatedPlayer, 0, len(t.players))
	for _, p := range t.players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seat < out[j].seat })
	return out
}

// nextActorFrom returns the first player after fromSeat (cyclically) who can
// still act this street, or nil.
func (t *table) nextActorFrom(fromSeat int) *seatedPlayer {
	seats := t.seatsInOrder()
	if len(seats) == 0 {
		return nil
	}
	start := 0
	for i, p := range seats {
		if p.seat > fromSeat {
			start = i
			break
		}
	}
	for i := 0; i < len(seats); i++ {
		p := seats[(start+i)%len(seats)]
		if p.folded || p.allIn || p.stack == 0 {
			continue
		}
		if !p.acted || p.bet < t.currentBet {
			return p
		}
	}
	return nil
}

func (t *table) dealLocked() {
	t.deck = freshDeck(t.rnd)
	t.community = nil
	t.pot = 0
	t.currentBet = 0
	t.minRaise = t.bigBlind
	t.phase = state.PhasePreflop
	t.version++

	seats := t.seatsInOrder()
	for _, p := range seats {
		p.bet = 0
		p.totalBet = 0
		p.folded = p.stack == 0
		p.allIn = false
		p.acted = false
		p.hole = nil
		if !p.folded {
			p.hole = []string{t.draw(), t.draw()}
		}
	}

	t.dealerSeat = t.rotateDealer(seats)
	sb := t.nextFundedAfter(seats, t.dealerSeat)
	bb := t.nextFundedAfter(seats, sb.seat)
	t.post(sb, t.smallBlind)
	t.post(bb, t.bigBlind)
	t.currentBet = t.bigBlind
	if actor := t.nextActorFrom(bb.seat); actor != nil {
		t.currentActor = actor.seat
	}
}

func (t *table) rotateDealer(seats []*seatedPlayer) int {
	for _, p := range seats {
		if p.seat > t.dealerSeat && p.stack > 0 {
			return p.seat
		}
	}
	for _, p := range seats {
		if p.stack > 0 {
			return p.seat
		}
	}
	return t.dealerSeat
}

func (t *table) nextFundedAfter(seats []*seatedPlayer, fromSeat int) *seatedPlayer {
	start := 0
	for i, p := range seats {
		if p.seat > fromSeat {
			start = i
			break
		}
	}
	for i := 0; i < len(seats); i++ {
		p := seats[(start+i)%len(seats)]
		if !p.folded && p.stack > 0 {
			return p
		}
	}
	return seats[0]
}

func (t *table) post(p *seatedPlayer, amount int64) {
	if amount > p.stack {
		amount = p.stack
		p.allIn = true
	}
	p.stack -= amount
	p.bet += amount
	p.totalBet += amount
	t.pot += amount
}

func (t *table) draw() string {
	card := t.deck[len(t.deck)-1]
	t.deck = t.deck[:len(t.deck)-1]
	return card
}

func (t *table) applyAction(playerID string, action protocol.ActionType, amount int64) error {
	if t.phase == state.PhaseWaiting || t.phase == state.PhaseShowdown {
		return errTableWaiting
	}
	p := t.players[playerID]
	if p == nil {
		return errNotSeated
	}
	if p.seat != t.currentActor {
		return errNotYourTurn
	}

	switch action {
	case protocol.ActionFold:
		p.folded = true
	case protocol.ActionCheck:
		if p.bet < t.currentBet {
			return errBadAction
		}
	case protocol.ActionCall:
		t.post(p, min(t.currentBet-p.bet, p.stack))
	case protocol.ActionBet, protocol.ActionRaise:
		// amount is the target street bet, not the increment
		if amount < t.currentBet+t.minRaise {
			return errBetTooSmall
		}
		need := amount - p.bet
		if need >= p.stack {
			t.post(p, p.stack)
		} else {
			t.post(p, need)
		}
		if p.bet > t.currentBet {
			t.minRaise = p.bet - t.currentBet
			t.currentBet = p.bet
			for _, other := range t.players {
				if other != p {
					other.acted = false
				}
			}
		}
	case protocol.ActionAllIn:
		t.post(p, p.stack)
		if p.bet > t.currentBet {
			t.minRaise = p.bet - t.currentBet
			t.currentBet = p.bet
			for _, other := range t.players {
				if other != p {
					other.acted = false
				}
			}
		}
	default:
		return errBadAction
	}
	if p.stack == 0 && !p.folded {
		p.allIn = true
	}
	p.acted = true
	t.version++
	return nil
}

// advanceLocked moves the turn or the street forward after an action and
// returns a showdown result when the hand is over.
func (t *table) advanceLocked() *state.ShowdownResult {
	if t.remainingLocked() <= 1 {
		return t.settleLocked()
	}
	if actor := t.nextActorFrom(t.currentActor); actor != nil {
		t.currentActor = actor.seat
		return nil
	}

	// street complete
	for {
		for _, p := range t.players {
			p.bet = 0
			p.acted = false
		}
		t.currentBet = 0
		t.minRaise = t.bigBlind

		switch t.phase {
		case state.PhasePreflop:
			t.phase = state.PhaseFlop
			t.community = append(t.community, t.draw(), t.draw(), t.draw())
		case state.PhaseFlop:
			t.phase = state.PhaseTurn
			t.community = append(t.community, t.draw())
		case state.PhaseTurn:
			t.phase = state.PhaseRiver
			t.community = append(t.community, t.draw())
		default:
			return t.settleLocked()
		}
		t.version++
		if actor := t.nextActorFrom(t.dealerSeat); actor != nil {
			t.currentActor = actor.seat
			return nil
		}
		// everyone all-in, run out the board
	}
}

func (t *table) remainingLocked() int {
	n := 0
	for _, p := range t.players {
		if !p.folded {
			n++
		}
	}
	return n
}

// settleLocked awards the whole pot to the first unfolded seat after the
// dealer. Good enough for scaffolding; there is no hand evaluation here.
func (t *table) settleLocked() *state.ShowdownResult {
	var winner *seatedPlayer
	for _, p := range t.seatsInOrder() {
		if !p.folded && (winner == nil || p.seat > t.dealerSeat && winner.seat <= t.dealerSeat) {
			winner = p
		}
	}
	result := &state.ShowdownResult{Pot: t.pot}
	if winner != nil {
		winner.stack += t.pot
		result.Winners = []state.Winner{{
			PlayerID: winner.playerID,
			Seat:     winner.seat,
			Amount:   t.pot,
			Cards:    winner.hole,
		}}
	}
	t.phase = state.PhaseWaiting
	t.pot = 0
	t.currentBet = 0
	t.community = nil
	t.currentActor = -1
	t.version++
	return result
}

// stateFrameLocked renders the table for one viewer; other seats get their
// hole cards masked.
func (t *table) stateFrameLocked(wireType, viewerID string) protocol.ServerFrame {
	snap := state.TableSnapshot{
		TableID:         t.id,
		Phase:           t.phase,
		Pot:             t.pot,
		CurrentBet:      t.currentBet,
		Community:       append([]string{}, t.community...),
		DealerSeat:      t.dealerSeat,
		MinRaise:        t.minRaise,
		SmallBlind:      t.smallBlind,
		BigBlind:        t.bigBlind,
		ActionTimeoutMS: t.actionTimeout.Milliseconds(),
		Version:         t.version,
	}
	if t.currentActor >= 0 {
		seat := t.currentActor
		snap.CurrentActorSeat = &seat
	}
	for _, p := range t.seatsInOrder() {
		sp := state.SeatedPlayer{
			PlayerID:     p.playerID,
			Name:         p.name,
			Seat:         p.seat,
			Stack:        p.stack,
			BetAmount:    p.bet,
			TotalBet:     p.totalBet,
			Folded:       p.folded,
			AllIn:        p.allIn,
			Active:       !p.folded,
			Disconnected: p.disconnected,
		}
		if p.playerID == viewerID {
			sp.HoleCards = append([]string{}, p.hole...)
		} else {
			for range p.hole {
				sp.HoleCards = append(sp.HoleCards, "??")
			}
		}
		snap.Players = append(snap.Players, sp)
	}
	raw, _ := json.Marshal(snap)
	return protocol.ServerFrame{Type: wireType, TableID: t.id, State: raw}
}

func (t *table) broadcastLocked(f protocol.ServerFrame) {
	for sess := range t.subs {
		sess.push(f)
	}
}

func freshDeck(rnd *rand.Rand) []string {
	ranks := "23456789TJQKA"
	suits := "shdc"
	deck := make([]string, 0, 52)
	for _, r := range ranks {
		for _, s := range suits {
			deck = append(deck, string(r)+string(s))
		}
	}
	rnd.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	return deck
}
