package state

import "time"

type Phase string

const (
	PhaseWaiting  Phase = "waiting"
	PhasePreflop  Phase = "preflop"
	PhaseFlop     Phase = "flop"
	PhaseTurn     Phase = "turn"
	PhaseRiver    Phase = "river"
	PhaseShowdown Phase = "showdown"
)

// SeatedPlayer is one occupant of a table as the server reports it. Hole
// cards are only populated for the viewing participant; other seats carry
// opaque placeholders or nothing.
type SeatedPlayer struct {
	PlayerID     string   `json:"playerId"`
	Name         string   `json:"name"`
	Avatar       string   `json:"avatar,omitempty"`
	Seat         int      `json:"seat"`
	Stack        int64    `json:"stack"`
	BetAmount    int64    `json:"betAmount"`
	TotalBet     int64    `json:"totalBet"`
	HoleCards    []string `json:"holeCards,omitempty"`
	Folded       bool     `json:"folded"`
	AllIn        bool     `json:"allIn"`
	Active       bool     `json:"active"`
	Disconnected bool     `json:"disconnected"`
	TimeBankMS   int64    `json:"timeBankMs,omitempty"`
}

// TableSnapshot is the authoritative state of one table at a point in time.
// It is replaced wholesale on every server push; nothing here is computed
// locally.
type TableSnapshot struct {
	TableID          string         `json:"tableId"`
	Phase            Phase          `json:"phase"`
	Pot              int64          `json:"pot"`
	CurrentBet       int64          `json:"currentBet"`
	CurrentActorSeat *int           `json:"currentPlayerSeat,omitempty"`
	Community        []string       `json:"communityCards"`
	DealerSeat       int            `json:"dealerSeat"`
	SmallBlindSeat   int            `json:"smallBlindSeat"`
	BigBlindSeat     int            `json:"bigBlindSeat"`
	Players          []SeatedPlayer `json:"players"`
	MinRaise         int64          `json:"minRaise"`
	SmallBlind       int64          `json:"smallBlind"`
	BigBlind         int64          `json:"bigBlind"`
	Ante             int64          `json:"ante,omitempty"`
	ActionTimeoutMS  int64          `json:"actionTimeoutMs,omitempty"`

	// Version is a server-side monotonic counter on state pushes. Zero means
	// the server did not stamp one and ordering cannot be checked.
	Version int64 `json:"version,omitempty"`
}

func (s *TableSnapshot) PlayerByID(playerID string) *SeatedPlayer {
	if s == nil {
		return nil
	}
	for i := range s.Players {
		if s.Players[i].PlayerID == playerID {
			return &s.Players[i]
		}
	}
	return nil
}

type Winner struct {
	PlayerID string   `json:"playerId"`
	Seat     int      `json:"seat"`
	Amount   int64    `json:"amount"`
	HandRank string   `json:"handRank,omitempty"`
	Cards    []string `json:"cards,omitempty"`
}

type ShowdownResult struct {
	Winners []Winner `json:"winners"`
	Pot     int64    `json:"pot"`
}

type ChatKind string

const (
	ChatKindChat   ChatKind = "chat"
	ChatKindSystem ChatKind = "system"
	ChatKindDealer ChatKind = "dealer"
	ChatKindAction ChatKind = "action"
)

type ChatMessage struct {
	ID         string    `json:"id"`
	PlayerID   string    `json:"playerId"`
	PlayerName string    `json:"playerName"`
	Text       string    `json:"text"`
	Kind       ChatKind  `json:"kind"`
	SentAt     time.Time `json:"sentAt"`
}

type LastAction struct {
	PlayerID   string `json:"playerId"`
	ActionType string `json:"actionType"`
	Amount     int64  `json:"amount,omitempty"`
}
