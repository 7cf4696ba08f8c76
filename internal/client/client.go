// Package client maintains one synchronized view of a poker table: a
// persistent socket to the table server, the authoritative snapshot pushed
// over it, and the turn-action contract for the viewing participant.
package client

import (
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"tablelink/internal/config"
	"tablelink/internal/ephemeral"
	"tablelink/internal/protocol"
	"tablelink/internal/state"
)

const writeWait = 10 * time.Second

// DefaultBackoff is the capped reconnect schedule. Attempts beyond the last
// entry keep using it; the delay never grows past 30s.
var DefaultBackoff = []time.Duration{
	1 * time.Second,
	2 * time.Second,
	5 * time.Second,
	10 * time.Second,
	30 * time.Second,
}

type Options struct {
	Config   config.ClientConfig
	Backoff  []time.Duration
	Dialer   *websocket.Dialer
	Logger   zerolog.Logger
	Registry *Registry
}

// Client owns exactly one socket for one (table, participant) pair. All
// authoritative state flows server → codec → store; local intent only ever
// goes out as commands and never mutates the store directly.
type Client struct {
	tableID    string
	playerID   string
	playerName string
	buyIn      int64

	cfg      config.ClientConfig
	backoff  []time.Duration
	dialer   *websocket.Dialer
	logger   zerolog.Logger
	registry *Registry

	store      *state.Store
	chat       *ephemeral.Ring[state.ChatMessage]
	lastAction *ephemeral.Flash[state.LastAction]
	showdown   *ephemeral.Flash[state.ShowdownResult]
	serverErr  *ephemeral.Flash[string]

	mu        sync.Mutex
	conn      *websocket.Conn
	status    Status
	attempt   int
	reconnect *time.Timer
	session   chan struct{}
	// gen invalidates in-flight dials: Disconnect bumps it, and a dial that
	// started under an older value must not install its socket
	gen      uint64
	closed   bool
	watchers map[chan Status]struct{}

	// gorilla allows one concurrent writer per connection
	writeMu sync.Mutex
}

func New(tableID, playerID, playerName string, buyIn int64, opts Options) (*Client, error) {
	if opts.Registry == nil {
		opts.Registry = NewRegistry()
	}
	if len(opts.Backoff) == 0 {
		opts.Backoff = DefaultBackoff
	}
	if opts.Config.Heartbeat <= 0 {
		opts.Config.Heartbeat = 25 * time.Second
	}
	if opts.Config.ChatLogSize <= 0 {
		opts.Config.ChatLogSize = 50
	}
	if opts.Config.LastActionWindow <= 0 {
		opts.Config.LastActionWindow = 2 * time.Second
	}
	if opts.Config.ShowdownWindow <= 0 {
		opts.Config.ShowdownWindow = 5 * time.Second
	}
	if opts.Config.ErrorWindow <= 0 {
		opts.Config.ErrorWindow = 5 * time.Second
	}
	if opts.Dialer == nil {
		d := *websocket.DefaultDialer
		if opts.Config.DialTimeout > 0 {
			d.HandshakeTimeout = opts.Config.DialTimeout
		}
		opts.Dialer = &d
	}
	if _, err := url.Parse(opts.Config.Endpoint); err != nil || opts.Config.Endpoint == "" {
		return nil, ErrBadEndpoint
	}

	c := &Client{
		tableID:    tableID,
		playerID:   playerID,
		playerName: playerName,
		buyIn:      buyIn,
		cfg:        opts.Config,
		backoff:    opts.Backoff,
		dialer:     opts.Dialer,
		logger:     opts.Logger.With().Str("table_id", tableID).Str("player_id", playerID).Logger(),
		registry:   opts.Registry,
		store:      state.NewStore(playerID),
		chat:       ephemeral.NewRing[state.ChatMessage](opts.Config.ChatLogSize),
		lastAction: ephemeral.NewFlash[state.LastAction](opts.Config.LastActionWindow),
		showdown:   ephemeral.NewFlash[state.ShowdownResult](opts.Config.ShowdownWindow),
		serverErr:  ephemeral.NewFlash[string](opts.Config.ErrorWindow),
		status:     StatusDisconnected,
		watchers:   map[chan Status]struct{}{},
	}
	if err := c.registry.acquire(c.key(), c); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) key() tableKey {
	return tableKey{tableID: c.tableID, playerID: c.playerID}
}

// Connect opens the socket and subscribes to the table's push stream. A
// no-op while already connected or connecting. On dial failure the
// reconnection supervisor takes over and the error is returned for logging.
func (c *Client) Connect() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClientClosed
	}
	if c.status == StatusConnected || c.status == StatusConnecting {
		c.mu.Unlock()
		return nil
	}
	c.cancelReconnectLocked()
	c.setStatusLocked(StatusConnecting)
	c.mu.Unlock()
	return c.dial()
}

func (c *Client) dial() error {
	endpoint, err := c.endpointURL()
	if err != nil {
		return err
	}
	c.mu.Lock()
	gen := c.gen
	c.mu.Unlock()

	conn, _, err := c.dialer.Dial(endpoint, nil)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}
		return ErrClientClosed
	}
	if c.gen != gen {
		c.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}
		c.logger.Debug().Msg("dial abandoned, session ended while connecting")
		return nil
	}
	if err != nil {
		c.setStatusLocked(StatusReconnecting)
		c.scheduleReconnectLocked()
		c.mu.Unlock()
		c.logger.Warn().Err(err).Msg("dial failed")
		return err
	}
	c.conn = conn
	c.attempt = 0
	done := make(chan struct{})
	c.session = done
	c.setStatusLocked(StatusConnected)
	c.mu.Unlock()

	c.logger.Info().Msg("connected")
	// full resync on every open: the server answers with a fresh snapshot
	c.Send(protocol.EncodeSubscribe(c.tableID, c.playerID))

	go c.readLoop(conn)
	go c.heartbeatLoop(done)
	return nil
}

func (c *Client) endpointURL() (string, error) {
	u, err := url.Parse(c.cfg.Endpoint)
	if err != nil {
		return "", ErrBadEndpoint
	}
	q := u.Query()
	q.Set("tableId", c.tableID)
	q.Set("playerId", c.playerID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Disconnect leaves the table and closes the socket with a normal-closure
// code. All pending timers are cancelled; no reconnect follows.
func (c *Client) Disconnect() {
	c.mu.Lock()
	c.gen++
	c.cancelReconnectLocked()
	conn := c.conn
	c.teardownSessionLocked()
	c.setStatusLocked(StatusDisconnected)
	c.mu.Unlock()

	// display state belongs to the session that just ended
	c.lastAction.Clear()
	c.showdown.Clear()
	c.serverErr.Clear()

	if conn == nil {
		return
	}
	c.writeMu.Lock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = conn.WriteMessage(websocket.TextMessage, protocol.EncodeLeaveTable(c.tableID, c.playerID))
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "leaving"))
	c.writeMu.Unlock()
	_ = conn.Close()
	c.logger.Info().Msg("disconnected")
}

// Close disconnects and releases the client's registry slot. The client
// cannot be reused afterwards.
func (c *Client) Close() {
	c.Disconnect()
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	for ch := range c.watchers {
		close(ch)
		delete(c.watchers, ch)
	}
	c.mu.Unlock()

	c.store.Close()
	c.lastAction.Close()
	c.showdown.Close()
	c.serverErr.Close()
	c.registry.release(c.key(), c)
}

// Send serializes nothing itself: frame is an already-encoded command. It
// reports delivery as a boolean and never queues or retries; callers must
// not assume delivery.
func (c *Client) Send(frame []byte) bool {
	c.mu.Lock()
	conn := c.conn
	open := c.status == StatusConnected && conn != nil
	c.mu.Unlock()
	if !open {
		return false
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, frame) == nil
}

func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.handleReadError(conn, err)
			return
		}
		c.dispatch(data)
	}
}

func (c *Client) handleReadError(conn *websocket.Conn, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != conn {
		// session already torn down by Disconnect
		return
	}
	c.teardownSessionLocked()
	_ = conn.Close()
	if c.closed {
		c.setStatusLocked(StatusDisconnected)
		return
	}
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		c.logger.Info().Msg("server closed connection")
		c.setStatusLocked(StatusDisconnected)
		return
	}
	c.logger.Warn().Err(err).Msg("connection lost")
	c.setStatusLocked(StatusReconnecting)
	c.scheduleReconnectLocked()
}

func (c *Client) scheduleReconnectLocked() {
	delay := c.backoff[min(c.attempt, len(c.backoff)-1)]
	c.attempt++
	attempt := c.attempt
	c.reconnect = time.AfterFunc(delay, func() {
		c.mu.Lock()
		if c.closed || c.status != StatusReconnecting {
			c.mu.Unlock()
			return
		}
		c.setStatusLocked(StatusConnecting)
		c.mu.Unlock()
		c.logger.Info().Int("attempt", attempt).Dur("delay", delay).Msg("reconnecting")
		_ = c.dial()
	})
}

func (c *Client) cancelReconnectLocked() {
	if c.reconnect != nil {
		c.reconnect.Stop()
		c.reconnect = nil
	}
}

func (c *Client) teardownSessionLocked() {
	if c.session != nil {
		close(c.session)
		c.session = nil
	}
	c.conn = nil
}

func (c *Client) heartbeatLoop(done chan struct{}) {
	ticker := time.NewTicker(c.cfg.Heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			// a failed write is a skipped beat; session teardown closes done
			_ = c.Send(protocol.EncodePing())
		}
	}
}

func (c *Client) dispatch(data []byte) {
	ev, err := protocol.DecodeEvent(data)
	if err != nil {
		// malformed frames are dropped, the connection stays open
		c.logger.Warn().Err(err).Msg("dropping frame")
		return
	}
	switch ev.Type {
	case protocol.EventConnected, protocol.EventPong:
		// keepalive acks, nothing to do
	case protocol.EventSubscribed, protocol.EventJoinedTable, protocol.EventState:
		if ev.Snapshot == nil {
			return
		}
		if c.store.Apply(ev.Snapshot) {
			if ev.Snapshot.Phase == state.PhasePreflop || ev.Snapshot.Phase == state.PhaseWaiting {
				// next hand's state supersedes the showdown display
				c.showdown.Clear()
			}
		}
	case protocol.EventActionAccepted:
		if ev.Action != nil {
			c.logger.Debug().Str("action", ev.Action.ActionType).Int64("amount", ev.Action.Amount).Msg("action accepted")
		}
	case protocol.EventPlayerAction:
		if ev.Action != nil {
			c.lastAction.Set(*ev.Action)
		}
	case protocol.EventShowdown, protocol.EventHandComplete:
		if ev.Showdown != nil {
			c.showdown.Set(*ev.Showdown)
		}
	case protocol.EventChat:
		if ev.Chat != nil {
			c.chat.Append(*ev.Chat)
		}
	case protocol.EventLeftTable:
		c.store.Clear()
	case protocol.EventError:
		c.logger.Warn().Str("error", ev.Err).Msg("server error")
		c.serverErr.Set(ev.Err)
	default:
		c.logger.Debug().Str("type", ev.RawType).Msg("ignoring unknown frame")
	}
}

func (c *Client) setStatusLocked(s Status) {
	if c.status == s {
		return
	}
	c.status = s
	for ch := range c.watchers {
		select {
		case ch <- s:
		default:
		}
	}
}

func (c *Client) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// StatusChanges returns a channel receiving every status transition. Slow
// receivers miss transitions rather than block the connection.
func (c *Client) StatusChanges() chan Status {
	ch := make(chan Status, 8)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		close(ch)
		return ch
	}
	c.watchers[ch] = struct{}{}
	return ch
}

func (c *Client) UnsubscribeStatus(ch chan Status) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.watchers[ch]; ok {
		delete(c.watchers, ch)
		close(ch)
	}
}

func (c *Client) Store() *state.Store { return c.store }

func (c *Client) ChatMessages() []state.ChatMessage { return c.chat.Items() }

func (c *Client) LastAction() (state.LastAction, bool) { return c.lastAction.Get() }

func (c *Client) Showdown() (state.ShowdownResult, bool) { return c.showdown.Get() }

// LastError returns the most recent server-rejected-action notice, if its
// display window has not elapsed.
func (c *Client) LastError() (string, bool) { return c.serverErr.Get() }
