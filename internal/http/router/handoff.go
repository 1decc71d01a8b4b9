package router

import (
	"frontdesk.app/call-server/internal/http/handler"
	"github.com/gin-gonic/gin"
)

func HandoffRouter(rg *gin.RouterGroup, h *handler.HandoffHandler) {
	rg.POST("", h.Create)
	rg.POST("/:id/resolve", h.Resolve)
}

func BusinessRouter(rg *gin.RouterGroup, h *handler.HandoffHandler) {
	rg.GET("/:business_id/handoffs", h.ListByBusiness)
}
