package dto

import (
	"time"

	"frontdesk.app/call-server/internal/model"
)

type RequestHandoffRequest struct {
	Channel        string `json:"channel" binding:"required"`
	CustomerPhone  string `json:"customer_phone" binding:"required"`
	Reason         string `json:"reason" binding:"required"`
	CustomerName   string `json:"customer_name,omitempty"`
	Summary        string `json:"summary,omitempty"`
	Urgency        string `json:"urgency,omitempty" binding:"omitempty,oneof=low normal high urgent"`
	CallID         string `json:"call_id,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
	BusinessID     int64  `json:"business_id,string" binding:"required"`
}

type RequestHandoffResponse struct {
	CustomerMessage string `json:"customer_message"`
	HandoffID       int64  `json:"handoff_id,string"`
	Success         bool   `json:"success"`
	Transferred     bool   `json:"transferred"`
}

type ResolveHandoffRequest struct {
	Status string `json:"status,omitempty" binding:"omitempty,oneof=transferred resolved"`
}

type HandoffResponse struct {
	CreatedAt      time.Time  `json:"created_at"`
	NotifiedAt     *time.Time `json:"notified_at,omitempty"`
	CallID         *string    `json:"call_id,omitempty"`
	ConversationID *string    `json:"conversation_id,omitempty"`
	CustomerName   *string    `json:"customer_name,omitempty"`
	Summary        *string    `json:"summary,omitempty"`
	TransferredTo  *string    `json:"transferred_to,omitempty"`
	Channel        string     `json:"channel"`
	CustomerPhone  string     `json:"customer_phone"`
	Reason         string     `json:"reason"`
	Urgency        string     `json:"urgency"`
	Status         string     `json:"status"`
	ID             int64      `json:"id,string"`
	BusinessID     int64      `json:"business_id,string"`
	Transferred    bool       `json:"transferred"`
}

func ToHandoffResponse(h *model.HandoffRequest) *HandoffResponse {
	return &HandoffResponse{
		ID:             h.ID,
		BusinessID:     h.BusinessID,
		Channel:        string(h.Channel),
		CallID:         h.CallID,
		ConversationID: h.ConversationID,
		CustomerPhone:  h.CustomerPhone,
		CustomerName:   h.CustomerName,
		Reason:         h.Reason,
		Summary:        h.Summary,
		Urgency:        string(h.Urgency),
		Status:         string(h.Status),
		Transferred:    h.Transferred,
		TransferredTo:  h.TransferredTo,
		CreatedAt:      h.CreatedAt,
		NotifiedAt:     h.NotifiedAt,
	}
}

func ToHandoffResponses(handoffs []model.HandoffRequest) []HandoffResponse {
	result := make([]HandoffResponse, len(handoffs))
	for i := range handoffs {
		result[i] = *ToHandoffResponse(&handoffs[i])
	}
	return result
}
