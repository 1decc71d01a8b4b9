package dto

// CallWebhookEnvelope is the provider's call-control webhook shape.
type CallWebhookEnvelope struct {
	EventType string             `json:"event_type" binding:"required"`
	Payload   CallWebhookPayload `json:"payload"`
}

type CallWebhookPayload struct {
	CallControlID string `json:"call_control_id"`
	CallLegID     string `json:"call_leg_id,omitempty"`
	CallSessionID string `json:"call_session_id,omitempty"`
	ClientState   string `json:"client_state,omitempty"`
	From          string `json:"from,omitempty"`
	To            string `json:"to,omitempty"`
	Direction     string `json:"direction,omitempty"`
	State         string `json:"state,omitempty"`
}
