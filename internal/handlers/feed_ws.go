package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	feedPongWait   = 90 * time.Second
	feedPingPeriod = 30 * time.Second
	feedWriteWait  = 10 * time.Second
)

var feedUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS is enforced on the HTTP routes; the feed is read-only.
		return true
	},
}

// FeedWebSocket handles GET /ws/feedback and streams feedback events until the
// client goes away. Messages from the client are only used to detect disconnects.
func (h *Handler) FeedWebSocket(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		writeError(w, http.StatusServiceUnavailable, "Live feed is not available")
		return
	}

	conn, err := feedUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	events, unsubscribe := h.hub.Subscribe()
	defer unsubscribe()

	h.logger.Debug("feed subscriber connected", zap.Int("subscribers", h.hub.Subscribers()))

	// Reader: keeps the read deadline fresh and notices disconnects.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(4 * 1024)
		_ = conn.SetReadDeadline(time.Now().Add(feedPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(feedPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(feedPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := conn.WriteJSON(evt); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
