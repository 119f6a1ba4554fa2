package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	maxMsgSize       = 1 << 12 // 4 KB
	defaultInterval  = 1 * time.Second
	maxInterval      = 10 * time.Second
	maxIntervalMilli = 10_000 // 10s in ms
)

// Envelope used for WebSocket messages.
type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// The feed is token-authenticated, so any origin may connect.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// @Summary      Live todo feed
// @Description  WebSocket. Sends {"type":"todos","data":[...]} on connect and every interval. Token via x-auth header or ?token=; it is re-checked on every push and the feed closes once it is revoked.
// @Tags         todos
// @Param        token        query  string  false  "Session token when the header cannot be set"
// @Param        interval     query  string  false  "Push interval, e.g. 2s (max 10s)"
// @Param        interval_ms  query  int     false  "Push interval in milliseconds"
// @Success      101
// @Failure      401  {object}  map[string]string
// @Router       /todos/ws [get]
func (h *Handler) todoFeed(c *gin.Context) {
	interval := h.parseInterval(c)
	u, token := currentUser(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Errorw("ws_upgrade_failed", "err", err)
		return
	}
	defer func() { _ = conn.Close() }()

	h.metrics.FeedOpened()
	defer h.metrics.FeedClosed()

	// Configure read limits and pong handler to extend read deadline.
	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Reader goroutine to handle control frames and detect disconnects.
	done := make(chan struct{})
	go h.startReader(conn, done)

	// Prepare periodic writers: todo snapshots and pings.
	ticker := time.NewTicker(interval)
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ping.Stop()
	}()

	// Send the first snapshot immediately.
	if err := h.sendTodos(c.Request.Context(), conn, u.ID); err != nil {
		h.log.Infow("ws_write_failed_initial", "user_id", u.ID, "err", err)
		return
	}

	// Writer/select loop.
	for {
		select {
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.log.Infow("ws_ping_failed", "user_id", u.ID, "err", err)
				return
			}
		case <-ticker.C:
			if err := h.recheckToken(c.Request.Context(), conn, token); err != nil {
				h.log.Infow("ws_token_rejected", "user_id", u.ID, "err", err)
				return
			}
			if err := h.sendTodos(c.Request.Context(), conn, u.ID); err != nil {
				h.log.Infow("ws_write_failed", "user_id", u.ID, "err", err)
				return
			}
		}
	}
}

// parseInterval reads ?interval=2s or ?interval_ms=2000 with bounds.
func (h *Handler) parseInterval(c *gin.Context) time.Duration {
	interval := defaultInterval

	if s := c.Query("interval"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 && d <= maxInterval {
			return d
		}
	}

	if ms := c.Query("interval_ms"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v > 0 && v <= maxIntervalMilli {
			return time.Duration(v) * time.Millisecond
		}
	}

	return interval
}

// startReader drains incoming messages to handle control frames and detect closure.
func (h *Handler) startReader(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.log.Debugw("ws_read_closed", "err", err)
			return
		}
	}
}

// recheckToken confirms the session is still active, so a logout ends the
// feed at the next tick. The rejection is sent to the client.
func (h *Handler) recheckToken(ctx context.Context, conn *websocket.Conn, token string) error {
	if _, err := h.services.Users.FindByToken(ctx, token); err != nil {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = conn.WriteJSON(wsEnvelope{Type: "error", Error: userMessage(err)})
		return err
	}
	return nil
}

// sendTodos writes the owner's current todos with a write deadline. A store
// failure is reported to the client before the connection closes.
func (h *Handler) sendTodos(ctx context.Context, conn *websocket.Conn, ownerID string) error {
	todos, err := h.services.Todos.List(ctx, ownerID)
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err != nil {
		h.log.Errorw("ws_list_todos_failed", "user_id", ownerID, "err", err)
		_ = conn.WriteJSON(wsEnvelope{Type: "error", Error: userMessage(err)})
		return err
	}
	return conn.WriteJSON(wsEnvelope{Type: "todos", Data: todos})
}
