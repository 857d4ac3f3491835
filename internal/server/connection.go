package server

import (
	"context"
	"encoding/json"
	"errors"
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/lox/syncbingo/internal/precondition"
	"github.com/lox/syncbingo/internal/round"
	"github.com/lox/syncbingo/internal/selection"
	"golang.org/x/time/rate"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 4096

	sendBuffer = 64

	// Selection messages a watcher may send per second, and the burst allowed.
	messageRate  = 10
	messageBurst = 20
)

var ErrConnectionClosed = websocket.ErrCloseSent

var (
	errTrackingClosed = errors.New("cards can only be tracked while balls are called")
	errTrackingHeld   = errors.New("cannot track a card while holding cards")
)

// Connection is one websocket watcher. It carries the watcher's own card
// selection, so every watcher sees the round from its own perspective.
type Connection struct {
	conn   *websocket.Conn
	server *Server
	send   chan *Message
	logger *log.Logger
	ctx    context.Context
	cancel context.CancelFunc

	name string
	id   string

	closeOnce sync.Once
	limiter   *rate.Limiter

	mu      sync.Mutex
	tracker *selection.Tracker
	tracked int
	rng     *rand.Rand
}

func newConnection(conn *websocket.Conn, s *Server, name, id string, rng *rand.Rand) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	return &Connection{
		conn:    conn,
		server:  s,
		send:    make(chan *Message, sendBuffer),
		logger:  s.logger.WithPrefix("conn").With("watcher", id),
		ctx:     ctx,
		cancel:  cancel,
		name:    name,
		id:      id,
		tracker: selection.NewTracker(s.resolver.Params().MaxCardID),
		rng:     rng,
		limiter: rate.NewLimiter(messageRate, messageBurst),
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Done is closed when the connection has shut down.
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		err = c.conn.Close()
	})
	return err
}

// SendMessage queues msg for the client. A watcher that cannot keep up is
// disconnected.
func (c *Connection) SendMessage(msg *Message) error {
	select {
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
	}

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// Cards returns the watcher's current selection.
func (c *Connection) Cards() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tracker.Cards()
}

// refresh resolves the round for this watcher at now and pushes the view,
// preceded by a rollover notice when the round id changed.
func (c *Connection) refresh(now int64) {
	c.mu.Lock()
	prev := c.tracker.RoundID()
	v := c.server.resolve(now, c.tracker.Selection())
	rolled := c.tracker.Observe(v)
	if rolled {
		c.tracked = 0
	}
	data := c.server.newRoundViewData(v, Viewer{Name: c.name, ID: c.id, Cards: c.tracker.Cards(), Tracked: c.tracked})
	c.mu.Unlock()

	at := time.Unix(now, 0).UTC()
	if rolled {
		c.logger.Debug("Selection cleared on rollover", "from", prev, "to", v.ID)
		c.sendMessage(MessageTypeRollover, RolloverData{PreviousRoundID: prev, RoundID: v.ID}, at)
	}
	c.sendMessage(MessageTypeRoundView, data, at)
}

func (c *Connection) sendMessage(t MessageType, data any, at time.Time) {
	msg, err := NewMessage(t, data, at)
	if err != nil {
		c.logger.Error("Failed to encode message", "type", t, "error", err)
		return
	}
	_ = c.SendMessage(msg)
}

func (c *Connection) sendError(code, message string) {
	c.sendMessage(MessageTypeError, ErrorData{Code: code, Message: message}, c.server.clock.Now().UTC())
}

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}
		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				c.logger.Debug("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		}
	}
}

// handleMessage applies a selection change and answers with a fresh view.
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type)
	if !c.limiter.Allow() {
		c.sendError("rate_limited", "Too many messages, slow down")
		return
	}

	var err error
	switch msg.Type {
	case MessageTypeToggleCard:
		var data ToggleCardData
		if jerr := json.Unmarshal(msg.Data, &data); jerr != nil {
			c.sendError("invalid_message", "Failed to parse toggle_card data")
			return
		}
		err = c.withTracker(func(t *selection.Tracker) error { return t.Toggle(data.CardID) })

	case MessageTypeClearSelection:
		err = c.withTracker(func(t *selection.Tracker) error { return t.Clear() })

	case MessageTypeRandomAssign:
		err = c.withTracker(func(t *selection.Tracker) error { return t.RandomAssign(c.rng) })

	case MessageTypeTrackCard:
		var data TrackCardData
		if jerr := json.Unmarshal(msg.Data, &data); jerr != nil {
			c.sendError("invalid_message", "Failed to parse track_card data")
			return
		}
		err = c.track(data.CardID)

	default:
		c.sendError("unknown_message_type", "Unknown message type: "+msg.Type.String())
		return
	}

	if err != nil {
		c.sendError(selectionErrorCode(err), err.Error())
		return
	}
	c.refresh(c.server.clock.Now().Unix())
}

// track follows id during the playing phase. Only watchers without cards may
// track one, and id 0 stops tracking.
func (c *Connection) track(id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id == 0 {
		c.tracked = 0
		return nil
	}
	if err := c.server.resolver.Params().ValidateCard(id); err != nil {
		return err
	}
	if c.tracker.Phase() != round.PhasePlaying {
		return errTrackingClosed
	}
	if len(c.tracker.Cards()) > 0 {
		return errTrackingHeld
	}
	c.tracked = id
	return nil
}

func (c *Connection) withTracker(fn func(*selection.Tracker) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fn(c.tracker)
}

func selectionErrorCode(err error) string {
	switch {
	case errors.Is(err, selection.ErrSelectionClosed):
		return "selection_closed"
	case errors.Is(err, selection.ErrSelectionFull):
		return "selection_full"
	case errors.Is(err, errTrackingClosed):
		return "tracking_closed"
	case errors.Is(err, errTrackingHeld):
		return "tracking_unavailable"
	case errors.Is(err, precondition.ErrViolated):
		return "invalid_card"
	default:
		return "selection_failed"
	}
}
