package http

import (
	"net/http"
	"time"

	control "trading-console/internal/domain/entity/control"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	wsWriteWait  = 5 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 45 * time.Second
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// telemetryFrame is pushed to dashboard clients once per stream interval.
type telemetryFrame struct {
	Tick     tickResponse          `json:"tick"`
	Watchdog control.WatchdogState `json:"watchdog"`
	SentAt   int64                 `json:"sent_at"`
}

// streamTelemetry pushes live telemetry over a websocket
// @Summary      Telemetry stream
// @Description  WebSocket push of tick, live VWAP and watchdog state every second
// @Tags         telemetry
// @Router       /ws/telemetry [get]
func (h *Handler) streamTelemetry(c *gin.Context) {
	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.WithError(err).Debug("websocket upgrade failed")
		return
	}
	defer conn.Close()

	log := h.logger.WithField("request_id", c.GetString(RequestIDContextKey))
	log.Debug("telemetry stream opened")

	// reader: only control frames are expected; exits on close
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.streamEvery)
	defer ticker.Stop()
	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	if err := h.writeFrame(conn); err != nil {
		return
	}
	for {
		select {
		case <-done:
			log.Debug("telemetry stream closed by client")
			return
		case <-c.Request.Context().Done():
			return
		case <-ticker.C:
			if err := h.writeFrame(conn); err != nil {
				log.WithError(err).Debug("telemetry stream write failed")
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		}
	}
}

func (h *Handler) writeFrame(conn *websocket.Conn) error {
	frame := telemetryFrame{
		Tick:     h.tickSnapshot(),
		Watchdog: h.console.WatchdogState(),
		SentAt:   time.Now().UnixMilli(),
	}
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteJSON(frame)
}
