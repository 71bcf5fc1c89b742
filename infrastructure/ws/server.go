package ws

import (
	"chat-wire/auth"
	"chat-wire/contract"
	"chat-wire/domain/event"
	"chat-wire/services"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Connection lifecycle states.
const (
	stateConnecting int32 = iota
	stateAuthenticated
	stateActive
	stateClosed
)

// Gateway owns the realtime connection lifecycle: it authenticates each
// handshake, registers the session in the presence registry (through the
// orchestrator), forwards inbound submits to the delivery service, and
// guarantees idempotent cleanup on disconnect.
type Gateway struct {
	log          *slog.Logger
	orchestrator contract.IOrchestrator
	chatService  services.IChatService
	upgrader     websocket.Upgrader
	bufferSize   int
	writeTimeout time.Duration
}

func NewGateway(log *slog.Logger, orchestrator contract.IOrchestrator,
	chatService services.IChatService, bufferSize int, writeTimeout time.Duration) *Gateway {
	return &Gateway{
		log:          log,
		orchestrator: orchestrator,
		chatService:  chatService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The browser client connects from the SPA origin; auth is
			// carried by the token, not the origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		bufferSize:   bufferSize,
		writeTimeout: writeTimeout,
	}
}

type client struct {
	log          *slog.Logger
	conn         *websocket.Conn
	sink         *Sink
	handle       contract.Handle
	userID       string
	state        atomic.Int32
	acks         chan Envelope
	writeTimeout time.Duration
	closing      sync.Once
	teardown     func()
}

// ServeHTTP is the realtime handshake endpoint. The identity must be
// resolvable before the upgrade: an unauthenticated attempt is refused
// with a plain 401 and never reaches the registry.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	tokenStr, ok := auth.ExtractToken(r)
	if !ok {
		http.Error(w, "authorization token is missing", http.StatusUnauthorized)
		return
	}
	claims, err := auth.ValidateToken(tokenStr)
	if err != nil {
		http.Error(w, "invalid or expired token", http.StatusUnauthorized)
		return
	}

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Warn("Handshake upgrade failed", "error", err)
		return
	}

	c := &client{
		log:          g.log,
		conn:         conn,
		sink:         NewSink(g.bufferSize),
		handle:       contract.Handle(uuid.NewString()),
		userID:       claims.UserID,
		acks:         make(chan Envelope, g.bufferSize),
		writeTimeout: g.writeTimeout,
	}
	c.state.Store(stateConnecting)
	c.teardown = func() {
		c.state.Store(stateClosed)
		c.sink.Close()
		_ = conn.Close()
		g.orchestrator.Disconnect(c.handle)
		g.log.Info("Client disconnected", "user_id", c.userID, "handle", c.handle)
	}

	c.state.Store(stateAuthenticated)
	g.orchestrator.Connect(c.userID, c.handle, c.sink)
	c.state.Store(stateActive)
	g.log.Info("Client connected", "user_id", c.userID, "handle", c.handle)

	writerCtx, cancelWriter := context.WithCancel(context.Background())
	go g.writePump(writerCtx, c)

	g.readPump(r, c)

	// The transport may signal closure several times; cleanup runs once.
	cancelWriter()
	c.close()
}

func (c *client) close() {
	c.closing.Do(c.teardown)
}

// readPump processes inbound frames in submission order until the
// connection dies. Message submits are fire-and-forget from the
// connection's perspective: the client blocks on persistence only, and
// gets its own copy back through the ack frame, never through the push
// path.
func (g *Gateway) readPump(r *http.Request, c *client) {
	// Persistence must outlive the connection: a disconnect while a
	// deliver is in flight still completes and persists.
	deliverCtx := context.WithoutCancel(r.Context())

	for {
		var env Envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				g.log.Warn("Connection read failed", "user_id", c.userID, "error", err)
			}
			return
		}

		switch env.Type {
		case TypeSendMessage:
			var payload SendMessagePayload
			if err := json.Unmarshal(env.Payload, &payload); err != nil {
				c.enqueue(errorEnvelope("malformed sendMessage payload"))
				continue
			}
			message, err := g.chatService.Deliver(deliverCtx, c.userID, payload.ReceiverID, payload.Text, payload.Image)
			if err != nil {
				c.enqueue(errorEnvelope(err.Error()))
				continue
			}
			if ack, err := ackEnvelope(message); err == nil {
				c.enqueue(ack)
			}
		default:
			g.log.Debug("Ignoring unknown frame type", "type", env.Type)
		}
	}
}

// writePump is the single writer for this connection: it serializes
// pushed domain events and ack frames onto the socket.
func (g *Gateway) writePump(ctx context.Context, c *client) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-c.sink.Events():
			env, ok := toEnvelope(evt)
			if !ok {
				continue
			}
			if err := c.write(env); err != nil {
				g.log.Warn("Push write failed", "user_id", c.userID, "error", err)
				c.close()
				return
			}
		case env := <-c.acks:
			if err := c.write(env); err != nil {
				g.log.Warn("Ack write failed", "user_id", c.userID, "error", err)
				c.close()
				return
			}
		}
	}
}

func (c *client) write(env Envelope) error {
	deadline := time.Now().Add(c.writeTimeout)
	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return c.conn.WriteJSON(env)
}

// enqueue hands a frame to the writer; a saturated client loses acks
// rather than stalling the read loop.
func (c *client) enqueue(env Envelope) {
	select {
	case c.acks <- env:
	default:
		c.log.Warn("Ack buffer full, dropping frame", "user_id", c.userID, "type", env.Type)
	}
}

func toEnvelope(evt event.DomainEvent) (Envelope, bool) {
	switch e := evt.(type) {
	case event.MessageDelivered:
		env, err := newMessageEnvelope(e.Message)
		return env, err == nil
	case event.RosterChanged:
		env, err := onlineUsersEnvelope(e.Online)
		return env, err == nil
	default:
		return Envelope{}, false
	}
}
