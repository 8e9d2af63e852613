package gateway

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mcdev12/chartdrill/go/internal/session"
	"github.com/mcdev12/chartdrill/go/internal/session/events"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// ConnectionManager owns the WebSocket connections and the session
// engine behind each one. Engine events travel engine -> bus ->
// connection, so any consumer on the bus sees the same stream the
// client does.
type ConnectionManager struct {
	factory       *session.Factory
	nc            *nats.Conn
	publisher     events.Publisher
	subjectPrefix string

	upgrader websocket.Upgrader
	cfg      ConnectionConfig

	mu          sync.RWMutex
	connections map[string]*Connection // keyed by session id
}

// NewConnectionManager creates a new WebSocket connection manager.
func NewConnectionManager(factory *session.Factory, nc *nats.Conn, subjectPrefix string, cfg ConnectionConfig) *ConnectionManager {
	return &ConnectionManager{
		factory:       factory,
		nc:            nc,
		publisher:     events.NewNATSPublisher(nc, subjectPrefix),
		subjectPrefix: subjectPrefix,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin:     cfg.CheckOrigin,
		},
		cfg:         cfg,
		connections: make(map[string]*Connection),
	}
}

// UpgradeConnection upgrades an HTTP request to a WebSocket session:
// it creates a fresh session engine, subscribes the socket to the
// engine's event subject and starts the engine, logger and pump
// goroutines. Everything is torn down together when the socket or the
// parent context closes.
func (cm *ConnectionManager) UpgradeConnection(parent context.Context, w http.ResponseWriter, r *http.Request) error {
	wsConn, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade connection: %w", err)
	}

	ctx, cancel := context.WithCancel(parent)

	sink := &busSink{publisher: cm.publisher}
	engine, logger := cm.factory.NewSession(sink, nil)

	conn := &Connection{
		ID:          uuid.New().String()[:8],
		SessionID:   engine.ID(),
		conn:        wsConn,
		send:        make(chan []byte, cm.cfg.SendBuffer),
		engine:      engine,
		cancel:      cancel,
		cfg:         cm.cfg,
		ConnectedAt: time.Now(),
	}

	subject := fmt.Sprintf("%s.%s.>", cm.subjectPrefix, engine.ID())
	sub, err := cm.nc.Subscribe(subject, func(m *nats.Msg) {
		conn.enqueue(m.Data)
	})
	if err != nil {
		cancel()
		_ = wsConn.Close()
		return fmt.Errorf("failed to subscribe to session subject: %w", err)
	}

	cm.register(conn)

	go engine.Run(ctx)
	go logger.Run(ctx)
	go conn.writePump(ctx)
	go func() {
		conn.readPump()
		cancel()
	}()
	go func() {
		<-ctx.Done()
		if err := sub.Unsubscribe(); err != nil {
			log.Warn().Err(err).Str("session_id", conn.SessionID).Msg("failed to unsubscribe session subject")
		}
		cm.unregister(conn)
		log.Info().
			Str("connection_id", conn.ID).
			Str("session_id", conn.SessionID).
			Msg("session connection closed")
	}()

	log.Info().
		Str("connection_id", conn.ID).
		Str("session_id", conn.SessionID).
		Str("remote", r.RemoteAddr).
		Msg("session connection opened")
	return nil
}

// ConnectionCount returns the number of live connections.
func (cm *ConnectionManager) ConnectionCount() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.connections)
}

func (cm *ConnectionManager) register(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.connections[conn.SessionID] = conn
}

func (cm *ConnectionManager) unregister(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	delete(cm.connections, conn.SessionID)
}

// busSink publishes engine events onto the bus.
type busSink struct {
	publisher events.Publisher
}

func (s *busSink) Emit(event events.Event) {
	if err := s.publisher.Publish(context.Background(), event); err != nil {
		log.Error().
			Err(err).
			Str("session_id", event.SessionID).
			Str("event_type", string(event.Type)).
			Msg("failed to publish session event")
	}
}
