package model

import "time"

// Channel identifies where an escalation originated.
type Channel string

const (
	ChannelVoice     Channel = "voice"
	ChannelMessaging Channel = "messaging"
)

func (c Channel) Valid() bool {
	switch c {
	case ChannelVoice, ChannelMessaging:
		return true
	}
	return false
}

// Urgency is a priority tag used for operator-facing alert formatting only.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyNormal Urgency = "normal"
	UrgencyHigh   Urgency = "high"
	UrgencyUrgent Urgency = "urgent"
)

func (u Urgency) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyNormal, UrgencyHigh, UrgencyUrgent:
		return true
	}
	return false
}

// HandoffStatus is monotonic: pending -> notified -> transferred|resolved.
type HandoffStatus string

const (
	HandoffStatusPending     HandoffStatus = "pending"
	HandoffStatusNotified    HandoffStatus = "notified"
	HandoffStatusTransferred HandoffStatus = "transferred"
	HandoffStatusResolved    HandoffStatus = "resolved"
)

func (s HandoffStatus) Valid() bool {
	switch s {
	case HandoffStatusPending, HandoffStatusNotified, HandoffStatusTransferred, HandoffStatusResolved:
		return true
	}
	return false
}

var handoffStatusRank = map[HandoffStatus]int{
	HandoffStatusPending:     0,
	HandoffStatusNotified:    1,
	HandoffStatusTransferred: 2,
	HandoffStatusResolved:    2,
}

// CanTransitionTo reports whether moving to next preserves monotonicity.
func (s HandoffStatus) CanTransitionTo(next HandoffStatus) bool {
	return handoffStatusRank[next] > handoffStatusRank[s]
}

// HandoffRequest is one escalation-to-human event. It is created once by the
// orchestrator and kept as an audit trail; it is never deleted by this
// service.
type HandoffRequest struct {
	CreatedAt      time.Time     `json:"created_at"`
	NotifiedAt     *time.Time    `json:"notified_at,omitempty"`
	CallID         *string       `json:"call_id,omitempty"`
	ConversationID *string       `json:"conversation_id,omitempty"`
	CustomerName   *string       `json:"customer_name,omitempty"`
	Summary        *string       `json:"summary,omitempty"`
	TransferredTo  *string       `json:"transferred_to,omitempty"`
	Channel        Channel       `json:"channel"`
	CustomerPhone  string        `json:"customer_phone"`
	Reason         string        `json:"reason"`
	Urgency        Urgency       `json:"urgency"`
	Status         HandoffStatus `json:"status"`
	ID             int64         `json:"id"`
	BusinessID     int64         `json:"business_id"`
	Transferred    bool          `json:"transferred"`
}
