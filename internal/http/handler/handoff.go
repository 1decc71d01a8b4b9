package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"frontdesk.app/call-server/internal/http/dto"
	"frontdesk.app/call-server/internal/model"
	"frontdesk.app/call-server/internal/service"
)

type HandoffHandler struct {
	svc service.HandoffService
}

func NewHandoffHandler(svc service.HandoffService) *HandoffHandler {
	return &HandoffHandler{svc: svc}
}

func (h *HandoffHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RequestHandoffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "business_id, channel, customer_phone and reason are required"})
		return
	}

	result, err := h.svc.Request(ctx, service.HandoffInput{
		BusinessID:     req.BusinessID,
		Channel:        req.Channel,
		CustomerPhone:  req.CustomerPhone,
		CustomerName:   req.CustomerName,
		Reason:         req.Reason,
		Summary:        req.Summary,
		Urgency:        model.Urgency(req.Urgency),
		CallID:         req.CallID,
		ConversationID: req.ConversationID,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrHandoffValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrBusinessNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "business not found"})
		default:
			slog.ErrorContext(ctx, "failed to process handoff request", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process handoff"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.RequestHandoffResponse{
		Success:         true,
		HandoffID:       result.HandoffID,
		Transferred:     result.Transferred,
		CustomerMessage: result.CustomerMessage,
	})
}

func (h *HandoffHandler) ListByBusiness(c *gin.Context) {
	ctx := c.Request.Context()

	businessID, err := strconv.ParseInt(c.Param("business_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid business ID"})
		return
	}

	var status *model.HandoffStatus
	if raw := c.Query("status"); raw != "" {
		parsed := model.HandoffStatus(raw)
		if !parsed.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status filter"})
			return
		}
		status = &parsed
	}

	handoffs, err := h.svc.ListByBusiness(ctx, businessID, status)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list handoffs", "error", err, "business_id", businessID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list handoffs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"handoffs": dto.ToHandoffResponses(handoffs)})
}

func (h *HandoffHandler) Resolve(c *gin.Context) {
	ctx := c.Request.Context()

	handoffID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid handoff ID"})
		return
	}

	// An absent body defaults to resolved.
	var req dto.ResolveHandoffRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status must be transferred or resolved"})
			return
		}
	}

	status := model.HandoffStatusResolved
	if req.Status != "" {
		status = model.HandoffStatus(req.Status)
	}

	handoff, err := h.svc.Resolve(ctx, handoffID, status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrHandoffNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "handoff not found"})
		case errors.Is(err, service.ErrStatusRegression):
			c.JSON(http.StatusConflict, gin.H{"error": "handoff already past that status"})
		default:
			slog.ErrorContext(ctx, "failed to resolve handoff", "error", err, "handoff_id", handoffID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve handoff"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToHandoffResponse(handoff))
}
