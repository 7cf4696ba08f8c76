// Package sim is an in-process table server speaking the same wire protocol
// as production. It deals, posts blinds and advances streets so the client
// can be exercised end to end, but it is test scaffolding, not an
// authoritative engine: showdown winners are picked by seat order, not hand
// rank.
package sim

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"tablelink/internal/protocol"
	"tablelink/internal/state"
)

type Server struct {
	upgrader      websocket.Upgrader
	logger        zerolog.Logger
	smallBlind    int64
	bigBlind      int64
	actionTimeout time.Duration

	mu     sync.Mutex
	tables map[string]*table
}

func NewServer(smallBlind, bigBlind int64, actionTimeout time.Duration, logger zerolog.Logger) *Server {
	return &Server{
		upgrader:      websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		logger:        logger,
		smallBlind:    smallBlind,
		bigBlind:      bigBlind,
		actionTimeout: actionTimeout,
		tables:        map[string]*table{},
	}
}

// session is one connected socket, subscribed to at most one table.
type session struct {
	conn     *websocket.Conn
	send     chan []byte
	tableID  string
	playerID string
}

func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	tableID := r.URL.Query().Get("tableId")
	playerID := r.URL.Query().Get("playerId")
	if tableID == "" || playerID == "" {
		http.Error(w, "tableId and playerId required", http.StatusBadRequest)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	sess := &session{conn: conn, send: make(chan []byte, 32), tableID: tableID, playerID: playerID}

	go s.writeLoop(sess)
	sess.push(protocol.ServerFrame{Type: "connected"})
	s.readLoop(sess)
}

func (s *Server) readLoop(sess *session) {
	defer func() {
		s.dropSession(sess)
		close(sess.send)
		_ = sess.conn.Close()
	}()

	for {
		_, msg, err := sess.conn.ReadMessage()
		if err != nil {
			return
		}
		var base struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(msg, &base); err != nil {
			s.logger.Warn().Str("player_id", sess.playerID).Msg("dropping malformed frame")
			continue
		}
		switch base.Type {
		case protocol.CmdSubscribe:
			s.handleSubscribe(sess)
		case protocol.CmdJoinTable:
			var cmd protocol.JoinTableCmd
			if err := json.Unmarshal(msg, &cmd); err != nil {
				continue
			}
			s.handleJoin(sess, cmd)
		case protocol.CmdLeaveTable:
			s.handleLeave(sess)
		case protocol.CmdAction:
			var cmd protocol.ActionCmd
			if err := json.Unmarshal(msg, &cmd); err != nil {
				continue
			}
			s.handleAction(sess, cmd)
		case protocol.CmdChat:
			var cmd protocol.ChatCmd
			if err := json.Unmarshal(msg, &cmd); err != nil {
				continue
			}
			s.handleChat(sess, cmd)
		case protocol.CmdPing:
			sess.push(protocol.ServerFrame{Type: "pong"})
		default:
			s.logger.Debug().Str("type", base.Type).Msg("unknown command")
		}
	}
}

func (s *Server) writeLoop(sess *session) {
	for msg := range sess.send {
		_ = sess.conn.WriteMessage(websocket.TextMessage, msg)
	}
}

func (sess *session) push(f protocol.ServerFrame) {
	data, err := json.Marshal(f)
	if err != nil {
		return
	}
	select {
	case sess.send <- data:
	default:
	}
}

func (s *Server) tableFor(id string) *table {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[id]
	if !ok {
		t = newTable(id, s.smallBlind, s.bigBlind, s.actionTimeout)
		s.tables[id] = t
	}
	return t
}

func (s *Server) handleSubscribe(sess *session) {
	t := s.tableFor(sess.tableID)
	t.mu.Lock()
	t.subs[sess] = struct{}{}
	frame := t.stateFrameLocked("subscribed", sess.playerID)
	t.mu.Unlock()
	sess.push(frame)
}

func (s *Server) handleJoin(sess *session, cmd protocol.JoinTableCmd) {
	t := s.tableFor(sess.tableID)
	t.mu.Lock()
	if err := t.seatPlayer(cmd.PlayerID, cmd.PlayerName, cmd.SeatNumber, cmd.BuyIn); err != nil {
		t.mu.Unlock()
		sess.push(protocol.ServerFrame{Type: "error", Error: err.Error()})
		return
	}
	t.subs[sess] = struct{}{}
	start := t.readyToDealLocked()
	t.mu.Unlock()

	if start {
		s.startHand(t)
	} else {
		s.broadcastState(t, "joined_table")
	}
}

func (s *Server) handleLeave(sess *session) {
	t := s.tableFor(sess.tableID)
	t.mu.Lock()
	t.unseat(sess.playerID)
	delete(t.subs, sess)
	t.mu.Unlock()
	sess.push(protocol.ServerFrame{Type: "left_table", TableID: sess.tableID})
	s.broadcastState(t, "state")
}

func (s *Server) handleChat(sess *session, cmd protocol.ChatCmd) {
	t := s.tableFor(sess.tableID)
	t.mu.Lock()
	name := sess.playerID
	if p := t.players[cmd.PlayerID]; p != nil {
		name = p.name
	}
	t.broadcastLocked(protocol.ServerFrame{
		Type:       "chat",
		PlayerID:   cmd.PlayerID,
		PlayerName: name,
		Message:    cmd.Message,
		Kind:       string(state.ChatKindChat),
	})
	t.mu.Unlock()
}

func (s *Server) handleAction(sess *session, cmd protocol.ActionCmd) {
	t := s.tableFor(sess.tableID)
	t.mu.Lock()
	if err := t.applyAction(cmd.PlayerID, protocol.ActionType(cmd.ActionType), cmd.Amount); err != nil {
		t.mu.Unlock()
		sess.push(protocol.ServerFrame{Type: "error", Error: err.Error()})
		return
	}
	t.broadcastLocked(protocol.ServerFrame{
		Type:       "player_action",
		PlayerID:   cmd.PlayerID,
		ActionType: string(cmd.ActionType),
		Amount:     cmd.Amount,
	})
	settled := t.advanceLocked()
	t.mu.Unlock()

	if settled != nil {
		s.finishHand(t, settled)
		return
	}
	s.broadcastState(t, "state")
}

func (s *Server) dropSession(sess *session) {
	s.mu.Lock()
	t := s.tables[sess.tableID]
	s.mu.Unlock()
	if t == nil {
		return
	}
	t.mu.Lock()
	delete(t.subs, sess)
	if p := t.players[sess.playerID]; p != nil {
		p.disconnected = true
	}
	t.mu.Unlock()
}

func (s *Server) broadcastState(t *table, wireType string) {
	t.mu.Lock()
	t.version++
	for sess := range t.subs {
		sess.push(t.stateFrameLocked(wireType, sess.playerID))
	}
	t.mu.Unlock()
}

func (s *Server) startHand(t *table) {
	t.mu.Lock()
	t.dealLocked()
	t.mu.Unlock()
	s.logger.Info().Str("table_id", t.id).Msg("hand started")
	s.broadcastState(t, "state")
}

func (s *Server) finishHand(t *table, result *state.ShowdownResult) {
	t.mu.Lock()
	t.broadcastLocked(protocol.ServerFrame{
		Type:    "hand_complete",
		Winners: result.Winners,
		Pot:     result.Pot,
	})
	again := t.readyToDealLocked()
	t.mu.Unlock()

	s.logger.Info().Str("table_id", t.id).Int64("pot", result.Pot).Msg("hand complete")
	if again {
		// leave the showdown on screen before the next deal
		time.AfterFunc(2*time.Second, func() { s.startHand(t) })
	}
}
