package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"frontdesk.app/call-server/common/id"
	"frontdesk.app/call-server/internal/model"
	"frontdesk.app/call-server/internal/notify"
	"frontdesk.app/call-server/internal/store"
)

var (
	ErrHandoffValidation = errors.New("missing required handoff fields")
	ErrBusinessNotFound  = errors.New("business not found")
	ErrHandoffNotFound   = errors.New("handoff not found")
	ErrStatusRegression  = errors.New("handoff status cannot regress")
)

// Customer-facing scripts. The voice pipeline speaks these; the messaging
// pipeline sends them verbatim.
const (
	msgTransferring = "Please hold for a moment while I transfer you to a member of our team."
	msgCallback     = "I wasn't able to transfer you right now, but our team has been alerted and will call you back shortly."
	msgMessagingAck = "Thanks for reaching out. A member of our team will review the conversation and respond shortly."
)

// HandoffInput is an escalation request from either channel.
type HandoffInput struct {
	Channel        string
	CustomerPhone  string
	CustomerName   string
	Reason         string
	Summary        string
	CallID         string
	ConversationID string
	Urgency        model.Urgency
	BusinessID     int64
}

// HandoffResult is what the escalating caller relays to the customer.
type HandoffResult struct {
	CustomerMessage string
	HandoffID       int64
	Transferred     bool
}

// Notifier alerts a human operator; it must never return an error to the
// orchestrator.
type Notifier interface {
	Notify(ctx context.Context, n notify.Context)
}

// HandoffService is the escalation entry point for both the voice and
// messaging channels.
type HandoffService interface {
	Request(ctx context.Context, input HandoffInput) (*HandoffResult, error)
	ListByBusiness(ctx context.Context, businessID int64, status *model.HandoffStatus) ([]model.HandoffRequest, error)
	Resolve(ctx context.Context, handoffID int64, status model.HandoffStatus) (*model.HandoffRequest, error)
}

type handoffService struct {
	businesses    store.BusinessStore
	handoffs      store.HandoffStore
	callRecords   store.CallRecordStore
	conversations store.ConversationStore
	issuer        CommandIssuer
	notifier      Notifier
	guard         *requestGuard
	now           func() time.Time
}

func NewHandoffService(
	businesses store.BusinessStore,
	handoffs store.HandoffStore,
	callRecords store.CallRecordStore,
	conversations store.ConversationStore,
	issuer CommandIssuer,
	notifier Notifier,
) HandoffService {
	return &handoffService{
		businesses:    businesses,
		handoffs:      handoffs,
		callRecords:   callRecords,
		conversations: conversations,
		issuer:        issuer,
		notifier:      notifier,
		guard:         newRequestGuard(30 * time.Second),
		now:           time.Now,
	}
}

func (s *handoffService) Request(ctx context.Context, input HandoffInput) (*HandoffResult, error) {
	if input.BusinessID == 0 || input.Channel == "" || input.CustomerPhone == "" || input.Reason == "" {
		return nil, ErrHandoffValidation
	}

	// Retried escalations inside the window reuse the original handoff
	// instead of creating a second record or re-transferring the call.
	guardKey := fmt.Sprintf("%d|%s|%s|%s|%s",
		input.BusinessID, input.Channel, input.CallID, input.ConversationID, input.Reason)
	prior, owned := s.guard.Begin(guardKey)
	if !owned {
		slog.InfoContext(ctx, "suppressed duplicate handoff request",
			"handoff_id", prior.HandoffID,
			"business_id", input.BusinessID,
		)
		return prior, nil
	}

	business, err := s.businesses.GetByID(ctx, input.BusinessID)
	if err != nil {
		s.guard.Release(guardKey)
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, fmt.Errorf("resolving business %d: %w", input.BusinessID, err)
	}

	urgency := input.Urgency
	if urgency == "" {
		urgency = model.UrgencyNormal
	}

	channel := model.Channel(input.Channel)
	if !channel.Valid() {
		// A malformed channel still produces a handoff; it gets messaging
		// semantics and keeps the raw value for the audit trail.
		slog.WarnContext(ctx, "handoff with unrecognized channel",
			"channel", input.Channel,
			"business_id", input.BusinessID,
		)
	}

	handoff := &model.HandoffRequest{
		ID:             id.New(),
		BusinessID:     business.ID,
		Channel:        channel,
		CallID:         optional(input.CallID),
		ConversationID: optional(input.ConversationID),
		CustomerPhone:  input.CustomerPhone,
		CustomerName:   optional(input.CustomerName),
		Reason:         input.Reason,
		Summary:        optional(input.Summary),
		Urgency:        urgency,
		Status:         model.HandoffStatusPending,
		CreatedAt:      s.now(),
	}

	if err := s.handoffs.Create(ctx, handoff); err != nil {
		// The customer still gets a response and the operator an alert even
		// when the audit row is lost.
		slog.ErrorContext(ctx, "failed to persist handoff request",
			"error", err,
			"handoff_id", handoff.ID,
			"business_id", business.ID,
		)
	}

	slog.InfoContext(ctx, "handoff requested",
		"handoff_id", handoff.ID,
		"business_id", business.ID,
		"channel", channel,
		"urgency", urgency,
		"reason", input.Reason,
	)

	result := &HandoffResult{HandoffID: handoff.ID}

	if channel == model.ChannelVoice {
		result.Transferred, result.CustomerMessage = s.attemptTransfer(ctx, business, handoff, input.CallID)
	} else {
		s.flagConversation(ctx, input.ConversationID)
		result.CustomerMessage = msgMessagingAck
	}

	s.notifier.Notify(ctx, notify.Context{
		HandoffID:     handoff.ID,
		BusinessName:  business.Name,
		Channel:       channel,
		CustomerPhone: input.CustomerPhone,
		CustomerName:  input.CustomerName,
		Reason:        input.Reason,
		Summary:       input.Summary,
		Urgency:       urgency,
	})

	s.guard.Finish(guardKey, result)
	return result, nil
}

// attemptTransfer tries to move the live call to the business's handoff
// number. Any failure degrades to the callback script; it never propagates.
func (s *handoffService) attemptTransfer(ctx context.Context, business *model.Business, handoff *model.HandoffRequest, callID string) (bool, string) {
	destination, hasDestination := business.HandoffDestination()
	if !hasDestination || callID == "" {
		slog.InfoContext(ctx, "no live transfer possible",
			"handoff_id", handoff.ID,
			"has_destination", hasDestination,
			"has_call", callID != "",
		)
		return false, msgCallback
	}

	if err := s.issuer.Transfer(ctx, callID, destination); err != nil {
		slog.WarnContext(ctx, "call transfer failed",
			"error", err,
			"handoff_id", handoff.ID,
			"call_id", callID,
		)
		return false, msgCallback
	}

	now := s.now()
	if err := s.handoffs.MarkTransferred(ctx, handoff.ID, destination, now); err != nil {
		slog.ErrorContext(ctx, "failed to record transfer outcome",
			"error", err,
			"handoff_id", handoff.ID,
		)
	}
	if err := s.callRecords.MarkTransferredToHuman(ctx, callID); err != nil {
		slog.WarnContext(ctx, "failed to flag call record",
			"error", err,
			"call_id", callID,
		)
	}

	slog.InfoContext(ctx, "call transferred to human",
		"handoff_id", handoff.ID,
		"call_id", callID,
		"destination", destination,
	)
	return true, msgTransferring
}

func (s *handoffService) flagConversation(ctx context.Context, conversationID string) {
	if conversationID == "" {
		return
	}
	if err := s.conversations.SetStatus(ctx, conversationID, "handoff"); err != nil {
		slog.WarnContext(ctx, "failed to flag conversation for handoff",
			"error", err,
			"conversation_id", conversationID,
		)
	}
}

func (s *handoffService) ListByBusiness(ctx context.Context, businessID int64, status *model.HandoffStatus) ([]model.HandoffRequest, error) {
	handoffs, err := s.handoffs.ListByBusiness(ctx, businessID, status)
	if err != nil {
		return nil, fmt.Errorf("listing handoffs for business %d: %w", businessID, err)
	}
	return handoffs, nil
}

func (s *handoffService) Resolve(ctx context.Context, handoffID int64, status model.HandoffStatus) (*model.HandoffRequest, error) {
	handoff, err := s.handoffs.GetByID(ctx, handoffID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrHandoffNotFound
		}
		return nil, fmt.Errorf("getting handoff %d: %w", handoffID, err)
	}

	if !handoff.Status.CanTransitionTo(status) {
		return nil, ErrStatusRegression
	}

	if err := s.handoffs.UpdateStatus(ctx, handoffID, status); err != nil {
		return nil, fmt.Errorf("updating handoff %d: %w", handoffID, err)
	}

	handoff.Status = status
	return handoff, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
