// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/danielhkuo/livepoll/cliparse"
	"github.com/danielhkuo/livepoll/live"
	"github.com/danielhkuo/livepoll/middleware"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendQueueSize  = 32
)

var (
	errClientClosed = errors.New("client closed")
	errSlowConsumer = errors.New("send queue full")
)

// SocketHandler serves the live session protocol over websockets.
type SocketHandler struct {
	engine   *live.Engine
	upgrader websocket.Upgrader
}

func NewSocketHandler(engine *live.Engine, cfg cliparse.Config) *SocketHandler {
	origins := cfg.AllowedOrigins
	return &SocketHandler{
		engine: engine,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				// Non-browser clients send no Origin
				if origin == "" {
					return true
				}
				return slices.Contains(origins, "*") || slices.Contains(origins, origin)
			},
		},
	}
}

// Serve handles GET /ws
func (h *SocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error
		slog.Warn("websocket upgrade failed", "remote", middleware.GetClientIP(r), "error", err)
		return
	}

	c := newSocketClient(conn)
	slog.Info("websocket connected", "conn_id", c.id, "remote", middleware.GetClientIP(r))

	go c.writePump()
	h.readPump(r.Context(), c)
}

func (h *SocketHandler) readPump(ctx context.Context, c *socketClient) {
	defer func() {
		h.engine.Disconnect(c.id)
		c.close()
		slog.Info("websocket disconnected", "conn_id", c.id)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("websocket read failed", "conn_id", c.id, "error", err)
			}
			return
		}

		// Failures are reported to the client by the engine
		_ = h.engine.Dispatch(ctx, c, msg)
	}
}

// socketClient adapts a websocket connection to live.Conn.
// Events are queued and written by a single writer goroutine.
type socketClient struct {
	id   string
	conn *websocket.Conn
	send chan live.Event

	done      chan struct{}
	closeOnce sync.Once
}

func newSocketClient(conn *websocket.Conn) *socketClient {
	return &socketClient{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan live.Event, sendQueueSize),
		done: make(chan struct{}),
	}
}

func (c *socketClient) ID() string {
	return c.id
}

// Send queues ev without blocking. A client whose queue is full is closed.
func (c *socketClient) Send(_ context.Context, ev live.Event) error {
	select {
	case <-c.done:
		return errClientClosed
	default:
	}

	select {
	case c.send <- ev:
		return nil
	default:
		slog.Warn("closing slow websocket client", "conn_id", c.id)
		c.close()
		return errSlowConsumer
	}
}

func (c *socketClient) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

func (c *socketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case ev := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(ev); err != nil {
				slog.Warn("websocket write failed", "conn_id", c.id, "error", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			return
		}
	}
}
