package webhook

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// MediaStreamHandler accepts the provider's media-stream websocket. The
// audio itself is consumed by the voice responder downstream; this endpoint
// owns the connection lifecycle and keeps per-call frame accounting.
type MediaStreamHandler struct {
	upgrader websocket.Upgrader
}

func NewMediaStreamHandler() *MediaStreamHandler {
	return &MediaStreamHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// The provider connects server-to-server without an Origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

type mediaFrame struct {
	Event string `json:"event"`
	Start struct {
		CallControlID string `json:"call_control_id"`
	} `json:"start"`
	Stop struct {
		CallControlID string `json:"call_control_id"`
	} `json:"stop"`
}

func (h *MediaStreamHandler) HandleStream(c *gin.Context) {
	ctx := c.Request.Context()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.WarnContext(ctx, "media stream upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	var callID string
	frames := 0

	for {
		var frame mediaFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.WarnContext(ctx, "media stream read failed", "error", err, "call_id", callID)
			}
			return
		}

		switch frame.Event {
		case "start":
			callID = frame.Start.CallControlID
			slog.InfoContext(ctx, "media stream connected", "call_id", callID)
		case "media":
			frames++
		case "stop":
			slog.InfoContext(ctx, "media stream closed",
				"call_id", callID,
				"frames", frames,
			)
			return
		}
	}
}
