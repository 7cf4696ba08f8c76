package protocol

import (
	"encoding/json"
	"errors"

	"tablelink/internal/state"
)

var ErrMalformedFrame = errors.New("malformed_frame")

// Historical servers spelled several state fields differently between
// protocol revisions. The alias tables below map every observed spelling to
// the canonical field; the first present alias wins. Missing optional fields
// default to zero amounts, false flags and empty card lists.
var playerFieldAliases = map[string][]string{
	"playerId":     {"playerId", "player_id", "id", "userId", "user_id"},
	"name":         {"name", "playerName", "player_name", "username"},
	"avatar":       {"avatar", "avatarUrl", "avatar_url"},
	"seat":         {"seat", "seatNumber", "seat_number", "position"},
	"stack":        {"stack", "chips", "balance", "chipCount", "chip_count"},
	"betAmount":    {"betAmount", "bet_amount", "currentBet", "current_bet", "bet", "streetContribution", "street_contribution"},
	"totalBet":     {"totalBet", "total_bet", "totalContribution", "total_contribution"},
	"holeCards":    {"holeCards", "hole_cards", "cards", "hand"},
	"folded":       {"folded", "isFolded", "has_folded"},
	"allIn":        {"allIn", "all_in", "isAllIn"},
	"active":       {"active", "isActive", "is_active"},
	"disconnected": {"disconnected", "is_disconnected"},
	"timeBankMs":   {"timeBankMs", "time_bank_ms", "timeBank"},
}

var snapshotFieldAliases = map[string][]string{
	"tableId":           {"tableId", "table_id"},
	"phase":             {"phase", "street"},
	"pot":               {"pot", "potSize", "pot_size"},
	"currentBet":        {"currentBet", "current_bet"},
	"currentPlayerSeat": {"currentPlayerSeat", "currentActorSeat", "current_actor_seat", "current_player_seat"},
	"communityCards":    {"communityCards", "community_cards", "community", "board"},
	"dealerSeat":        {"dealerSeat", "dealer_seat", "dealerPosition", "button"},
	"smallBlindSeat":    {"smallBlindSeat", "small_blind_seat"},
	"bigBlindSeat":      {"bigBlindSeat", "big_blind_seat"},
	"players":           {"players", "seats"},
	"minRaise":          {"minRaise", "min_raise"},
	"smallBlind":        {"smallBlind", "small_blind"},
	"bigBlind":          {"bigBlind", "big_blind"},
	"ante":              {"ante"},
	"actionTimeoutMs":   {"actionTimeoutMs", "action_timeout_ms"},
	"version":           {"version", "seq", "sequence"},
}

type rawObject map[string]json.RawMessage

func (o rawObject) pick(field string, aliases map[string][]string) (json.RawMessage, bool) {
	for _, key := range aliases[field] {
		if raw, ok := o[key]; ok && string(raw) != "null" {
			return raw, true
		}
	}
	return nil, false
}

func (o rawObject) str(field string, aliases map[string][]string) string {
	raw, ok := o.pick(field, aliases)
	if !ok {
		return ""
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	return v
}

func (o rawObject) num(field string, aliases map[string][]string) int64 {
	raw, ok := o.pick(field, aliases)
	if !ok {
		return 0
	}
	var v int64
	if err := json.Unmarshal(raw, &v); err != nil {
		// some servers send amounts as floats
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return 0
		}
		return int64(f)
	}
	return v
}

func (o rawObject) boolean(field string, aliases map[string][]string) bool {
	raw, ok := o.pick(field, aliases)
	if !ok {
		return false
	}
	var v bool
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	return v
}

func (o rawObject) strs(field string, aliases map[string][]string) []string {
	raw, ok := o.pick(field, aliases)
	if !ok {
		return nil
	}
	var v []string
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}

// NormalizePlayer maps one wire player object, under any historical field
// spelling, into the canonical SeatedPlayer shape.
func NormalizePlayer(data json.RawMessage) (state.SeatedPlayer, error) {
	var obj rawObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return state.SeatedPlayer{}, ErrMalformedFrame
	}
	a := playerFieldAliases
	return state.SeatedPlayer{
		PlayerID:     obj.str("playerId", a),
		Name:         obj.str("name", a),
		Avatar:       obj.str("avatar", a),
		Seat:         int(obj.num("seat", a)),
		Stack:        obj.num("stack", a),
		BetAmount:    obj.num("betAmount", a),
		TotalBet:     obj.num("totalBet", a),
		HoleCards:    obj.strs("holeCards", a),
		Folded:       obj.boolean("folded", a),
		AllIn:        obj.boolean("allIn", a),
		Active:       obj.boolean("active", a),
		Disconnected: obj.boolean("disconnected", a),
		TimeBankMS:   obj.num("timeBankMs", a),
	}, nil
}

// NormalizeSnapshot maps a wire table-state object into a TableSnapshot.
func NormalizeSnapshot(data json.RawMessage) (*state.TableSnapshot, error) {
	var obj rawObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, ErrMalformedFrame
	}
	a := snapshotFieldAliases

	snap := &state.TableSnapshot{
		TableID:         obj.str("tableId", a),
		Phase:           state.Phase(obj.str("phase", a)),
		Pot:             obj.num("pot", a),
		CurrentBet:      obj.num("currentBet", a),
		Community:       obj.strs("communityCards", a),
		DealerSeat:      int(obj.num("dealerSeat", a)),
		SmallBlindSeat:  int(obj.num("smallBlindSeat", a)),
		BigBlindSeat:    int(obj.num("bigBlindSeat", a)),
		MinRaise:        obj.num("minRaise", a),
		SmallBlind:      obj.num("smallBlind", a),
		BigBlind:        obj.num("bigBlind", a),
		Ante:            obj.num("ante", a),
		ActionTimeoutMS: obj.num("actionTimeoutMs", a),
		Version:         obj.num("version", a),
	}
	if snap.Phase == "" {
		snap.Phase = state.PhaseWaiting
	}
	if snap.Community == nil {
		snap.Community = []string{}
	}
	if raw, ok := obj.pick("currentPlayerSeat", a); ok {
		var seat int
		if err := json.Unmarshal(raw, &seat); err == nil {
			snap.CurrentActorSeat = &seat
		}
	}
	if raw, ok := obj.pick("players", a); ok {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, ErrMalformedFrame
		}
		snap.Players = make([]state.SeatedPlayer, 0, len(items))
		for _, item := range items {
			p, err := NormalizePlayer(item)
			if err != nil {
				return nil, err
			}
			snap.Players = append(snap.Players, p)
		}
	}
	return snap, nil
}
