package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/park285/cheese-arena/internal/events"
	"github.com/park285/cheese-arena/pkg/arenadto"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	eventBuffer  = 64
	writeTimeout = 5 * time.Second
	pingInterval = 30 * time.Second
)

// events streams bus events as JSON frames. A subscriber that cannot keep up
// loses frames; the bus never blocks on a slow socket.
func (h *handlers) events(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	if err != nil {
		h.logger.Warn("ws_accept_failed", zap.Error(err))
		return
	}
	defer conn.CloseNow()

	frames := make(chan arenadto.Event, eventBuffer)
	formatter := h.arena.Formatter()
	id := h.arena.Bus().Subscribe(func(e events.Event) {
		select {
		case frames <- formatter.ToDTOEvent(e):
		default:
		}
	})
	defer h.arena.Bus().Unsubscribe(id)

	ctx := conn.CloseRead(r.Context())
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	h.logger.Debug("ws_subscriber_connected", zap.String("remote", r.RemoteAddr))
	for {
		select {
		case <-ctx.Done():
			h.logger.Debug("ws_subscriber_closed", zap.String("remote", r.RemoteAddr))
			return
		case f := <-frames:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(wctx, conn, f)
			cancel()
			if err != nil {
				return
			}
		case <-ping.C:
			pctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Ping(pctx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}
