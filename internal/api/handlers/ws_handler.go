package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/yoockh/teachback/internal/services"
	"github.com/yoockh/teachback/internal/utils"
)

// WSHandler streams live session events (turns, interruptions, degradation,
// completion) to the client. It is a read-only feed; input still goes
// through the HTTP endpoints so the single-writer discipline holds.
type WSHandler struct {
	mgr      *services.SessionManager
	redis    *redis.Client
	upgrader websocket.Upgrader
}

func NewWSHandler(mgr *services.SessionManager, rdb *redis.Client) *WSHandler {
	return &WSHandler{
		mgr:   mgr,
		redis: rdb,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true }, // TODO: restrict origin in prod
		},
	}
}

type wsConn struct {
	c  *websocket.Conn
	mu sync.Mutex
}

func (w *wsConn) writeText(b []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.c.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return w.c.WriteMessage(websocket.TextMessage, b)
}

func (h *WSHandler) SessionEvents(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	sessionID := c.Param("session_id")
	if sessionID == "" {
		writeError(c, utils.E(utils.CodeInvalidArgument, "WSHandler.SessionEvents", "missing session_id", nil))
		return
	}

	// ownership check before upgrading
	if _, err := h.mgr.GetSession(c.Request.Context(), sessionID, userID); err != nil {
		writeError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	ws := &wsConn{c: conn}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	sub := h.redis.Subscribe(ctx, services.EventChannel(sessionID))
	defer sub.Close()

	// drain client frames so pings and closes are processed
	go func() {
		for {
			if _, _, rerr := conn.ReadMessage(); rerr != nil {
				cancel()
				return
			}
		}
	}()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, open := <-ch:
			if !open {
				return
			}
			if werr := ws.writeText([]byte(msg.Payload)); werr != nil {
				return
			}
		}
	}
}
