package gateway

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mcdev12/chartdrill/go/internal/ids"
	"github.com/mcdev12/chartdrill/go/internal/session"
	"github.com/rs/zerolog/log"
)

// Connection represents one WebSocket client and the session engine
// bound to it.
type Connection struct {
	ID        string
	SessionID string
	conn      *websocket.Conn
	send      chan []byte
	engine    *session.Engine
	cancel    context.CancelFunc
	cfg       ConnectionConfig

	ConnectedAt time.Time
}

// readPump routes client commands into the session engine until the
// socket closes.
func (c *Connection) readPump() {
	defer c.cancel()

	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("session_id", c.SessionID).Msg("unexpected socket close")
			}
			return
		}
		c.routeCommand(message)
	}
}

func (c *Connection) routeCommand(message []byte) {
	var cmd ClientCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		log.Warn().Err(err).Str("session_id", c.SessionID).Msg("malformed client command")
		return
	}

	switch cmd.Type {
	case CommandSignIn:
		var data SignInData
		if err := json.Unmarshal(cmd.Data, &data); err != nil {
			log.Warn().Err(err).Str("session_id", c.SessionID).Msg("malformed SignIn data")
			return
		}
		userID, err := ids.Parse(data.UserID)
		if err != nil {
			log.Warn().Err(err).Str("session_id", c.SessionID).Msg("rejected non-canonical user id")
			return
		}
		c.engine.SignIn(userID)

	case CommandSignOut:
		c.engine.SignOut()

	case CommandSelectDataset:
		var data SelectDatasetData
		if err := json.Unmarshal(cmd.Data, &data); err != nil {
			log.Warn().Err(err).Str("session_id", c.SessionID).Msg("malformed SelectDataset data")
			return
		}
		c.engine.SelectDataset(data.DatasetName)

	case CommandAnswer:
		var data AnswerData
		if err := json.Unmarshal(cmd.Data, &data); err != nil {
			log.Warn().Err(err).Str("session_id", c.SessionID).Msg("malformed Answer data")
			return
		}
		c.engine.Answer(data.Selection)

	case CommandNewRound:
		c.engine.NewRound()

	case CommandSyncTimer:
		c.engine.SyncTimer()

	default:
		log.Warn().
			Str("session_id", c.SessionID).
			Str("command_type", string(cmd.Type)).
			Msg("unknown command type - ignoring")
	}
}

// writePump pushes session events and pings to the client.
func (c *Connection) writePump(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(c.cfg.WriteTimeout))
			return
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			if !ok {
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Warn().Err(err).Str("session_id", c.SessionID).Msg("socket write failed")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// enqueue buffers an outbound message, dropping it when the client
// cannot keep up. The authoritative state lives server-side; a dropped
// timer sync is corrected by the next one.
func (c *Connection) enqueue(message []byte) {
	select {
	case c.send <- message:
	default:
		log.Warn().Str("session_id", c.SessionID).Msg("send buffer full, dropping event")
	}
}
