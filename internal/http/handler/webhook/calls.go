package webhook

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"frontdesk.app/call-server/internal/http/dto"
	"frontdesk.app/call-server/internal/service"
)

// CallControlHandler receives call-control webhooks from the telephony
// provider. The provider only needs a prompt acknowledgement, so dispatch
// outcomes (including degraded ones) are returned in-band with a 200.
type CallControlHandler struct {
	events service.CallEventService
}

func NewCallControlHandler(events service.CallEventService) *CallControlHandler {
	return &CallControlHandler{events: events}
}

func (h *CallControlHandler) HandleEvent(c *gin.Context) {
	ctx := c.Request.Context()

	var env dto.CallWebhookEnvelope
	if err := c.ShouldBindJSON(&env); err != nil {
		slog.WarnContext(ctx, "malformed call webhook", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook payload"})
		return
	}

	deliveryID := c.GetHeader("X-Delivery-ID")
	if deliveryID == "" {
		deliveryID = uuid.NewString()
	}

	slog.InfoContext(ctx, "call webhook received",
		"delivery_id", deliveryID,
		"event_type", env.EventType,
		"call_id", env.Payload.CallControlID,
	)

	result := h.events.Dispatch(ctx, service.CallEvent{
		Type:        env.EventType,
		CallID:      env.Payload.CallControlID,
		From:        env.Payload.From,
		To:          env.Payload.To,
		Direction:   env.Payload.Direction,
		ClientState: env.Payload.ClientState,
	})

	c.JSON(http.StatusOK, result)
}
