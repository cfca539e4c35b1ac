package main

import (
	"net/http"
	"sync"
	"time"

	"github.com/Seednode/gomoku/games/gomoku"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 << 10
	sendBuffer     = 64
)

// Client is one websocket connection. It implements gomoku.Sink; it holds
// no room state, which lives in gomoku.Sessions keyed by id.
type Client struct {
	id   string
	conn *websocket.Conn
	send chan gomoku.Event

	done      chan struct{}
	closeOnce sync.Once
}

func newClient(conn *websocket.Conn) *Client {
	return &Client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan gomoku.Event, sendBuffer),
		done: make(chan struct{}),
	}
}

// Deliver queues ev without blocking. A client that has fallen a full
// buffer behind is disconnected.
func (c *Client) Deliver(ev gomoku.Event) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- ev:
		return true
	default:
		log.Warn().Str("conn", c.id).Msg("Send buffer full, dropping connection")
		c.close()
		return false
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

func (c *Client) readPump(sessions *gomoku.Sessions) {
	defer func() {
		sessions.Unbind(c.id)
		c.close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("conn", c.id).Msg("WebSocket closed unexpectedly")
			}
			return
		}

		msg, err := gomoku.DecodeClientMessage(data)
		if err != nil {
			log.Debug().Err(err).Str("conn", c.id).Msg("Dropped message")
			continue
		}

		if err := sessions.Handle(c.id, c, msg); err != nil {
			log.Debug().Err(err).Str("conn", c.id).Str("type", msg.Type).Msg("Dropped message")
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case ev := <-c.send:
			data, err := gomoku.MarshalEvent(ev)
			if err != nil {
				log.Error().Err(err).Str("conn", c.id).Str("event", ev.EventType()).Msg("Failed to encode event")
				continue
			}

			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

func newUpgrader(cfg *Config) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return cfg.originAllowed(r.Header.Get("Origin"))
		},
	}
}

func serveWS(cfg *Config, sessions *gomoku.Sessions) httprouter.Handle {
	upgrader := newUpgrader(cfg)

	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Debug().Err(err).Str("remote", realIP(r)).Msg("WebSocket upgrade error")
			return
		}

		client := newClient(conn)

		log.Debug().Str("conn", client.id).Str("remote", realIP(r)).Msg("WebSocket connected")

		go client.writePump()
		client.readPump(sessions)
	}
}
