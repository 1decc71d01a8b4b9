package router

import (
	"frontdesk.app/call-server/internal/http/handler/webhook"
	"github.com/gin-gonic/gin"
)

func CallWebhookRouter(rg *gin.RouterGroup, h *webhook.CallControlHandler, media *webhook.MediaStreamHandler) {
	rg.POST("", h.HandleEvent)
	rg.GET("/media", media.HandleStream)
}
