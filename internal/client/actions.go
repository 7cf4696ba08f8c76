package client

import "tablelink/internal/protocol"

// Turn derivation and action emitters. Amount bounds are deliberately not
// validated here: the server is the sole source of legality truth and
// answers an illegal action with an error frame, which surfaces through
// LastError.

// IsMyTurn reports whether the snapshot's current actor is the viewing
// participant's seat. False whenever the snapshot or own seat is absent.
func (c *Client) IsMyTurn() bool {
	snap := c.store.Snapshot()
	seat, ok := c.store.MySeat()
	if snap == nil || !ok || snap.CurrentActorSeat == nil {
		return false
	}
	return *snap.CurrentActorSeat == seat
}

// CallAmount is max(0, currentBet − myBet); zero without a seat.
func (c *Client) CallAmount() int64 {
	snap := c.store.Snapshot()
	if snap == nil {
		return 0
	}
	me, ok := c.store.MyPlayer()
	if !ok {
		return 0
	}
	if d := snap.CurrentBet - me.BetAmount; d > 0 {
		return d
	}
	return 0
}

func (c *Client) CanCheck() bool { return c.CallAmount() == 0 }

func (c *Client) Fold() bool  { return c.sendAction(protocol.ActionFold, 0) }
func (c *Client) Check() bool { return c.sendAction(protocol.ActionCheck, 0) }
func (c *Client) Call() bool  { return c.sendAction(protocol.ActionCall, 0) }
func (c *Client) AllIn() bool { return c.sendAction(protocol.ActionAllIn, 0) }

func (c *Client) Bet(amount int64) bool   { return c.sendAction(protocol.ActionBet, amount) }
func (c *Client) Raise(amount int64) bool { return c.sendAction(protocol.ActionRaise, amount) }

func (c *Client) sendAction(action protocol.ActionType, amount int64) bool {
	return c.Send(protocol.EncodeAction(c.tableID, c.playerID, action, amount))
}

// JoinTable takes the given seat with the buy-in the client was created
// with. The resulting joined_table push carries the updated snapshot.
func (c *Client) JoinTable(seat int) bool {
	return c.Send(protocol.EncodeJoinTable(c.tableID, c.playerID, c.playerName, seat, c.buyIn))
}

func (c *Client) SendChat(message string) bool {
	return c.Send(protocol.EncodeChat(c.tableID, c.playerID, message))
}
