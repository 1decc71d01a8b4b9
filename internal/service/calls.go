package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"frontdesk.app/call-server/internal/session"
	"frontdesk.app/call-server/internal/store"
)

// EventType is the closed set of provider webhook events this service acts
// on. Anything outside it falls through to an explicit ignored result.
type EventType string

const (
	EventCallInitiated    EventType = "call.initiated"
	EventCallAnswered     EventType = "call.answered"
	EventCallHangup       EventType = "call.hangup"
	EventStreamingStarted EventType = "streaming.started"
	EventStreamingStopped EventType = "streaming.stopped"
)

func ParseEventType(raw string) (EventType, bool) {
	switch et := EventType(raw); et {
	case EventCallInitiated, EventCallAnswered, EventCallHangup,
		EventStreamingStarted, EventStreamingStopped:
		return et, true
	}
	return "", false
}

// Dispatch result statuses.
const (
	StatusAnswering = "answering"
	StatusStreaming = "streaming"
	StatusHangup    = "hangup"
	StatusStopped   = "stopped"
	StatusIgnored   = "ignored"
	StatusError     = "error"
)

// CallEvent is one inbound call-control webhook, already unwrapped from the
// provider envelope.
type CallEvent struct {
	Type        string
	CallID      string
	From        string
	To          string
	Direction   string
	ClientState string
}

// DispatchResult is the acknowledgement body returned to the provider.
type DispatchResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Event  string `json:"event,omitempty"`
}

// CommandIssuer is the outbound call-control boundary. Implementations
// perform one network request per command and return typed errors; they
// never consult session state.
type CommandIssuer interface {
	Answer(ctx context.Context, callID, clientState string) error
	StartStreaming(ctx context.Context, callID, streamURL string) error
	Transfer(ctx context.Context, callID, to string) error
	Hangup(ctx context.Context, callID string) error
}

// CallEventService consumes provider webhooks and drives the call
// lifecycle. The provider redelivers and reorders events, so every handler
// tolerates duplicates and missing sessions without corrupting state or
// double-issuing commands.
type CallEventService interface {
	Dispatch(ctx context.Context, ev CallEvent) DispatchResult
}

type callEventService struct {
	sessions   session.Store
	issuer     CommandIssuer
	businesses store.BusinessStore
	streamURL  string
	now        func() time.Time
}

func NewCallEventService(sessions session.Store, issuer CommandIssuer, businesses store.BusinessStore, streamURL string) CallEventService {
	return &callEventService{
		sessions:   sessions,
		issuer:     issuer,
		businesses: businesses,
		streamURL:  streamURL,
		now:        time.Now,
	}
}

func (s *callEventService) Dispatch(ctx context.Context, ev CallEvent) DispatchResult {
	et, known := ParseEventType(ev.Type)
	if !known {
		slog.InfoContext(ctx, "ignoring unhandled call event", "event_type", ev.Type, "call_id", ev.CallID)
		return DispatchResult{Status: StatusIgnored, Event: ev.Type}
	}

	switch et {
	case EventCallInitiated:
		return s.handleInitiated(ctx, ev)
	case EventCallAnswered:
		return s.handleAnswered(ctx, ev)
	case EventCallHangup:
		return s.handleHangup(ctx, ev)
	case EventStreamingStarted:
		slog.InfoContext(ctx, "media stream started", "call_id", ev.CallID)
		return DispatchResult{Status: StatusStreaming}
	case EventStreamingStopped:
		slog.InfoContext(ctx, "media stream stopped", "call_id", ev.CallID)
		return DispatchResult{Status: StatusStopped}
	}

	return DispatchResult{Status: StatusIgnored, Event: ev.Type}
}

func (s *callEventService) handleInitiated(ctx context.Context, ev CallEvent) DispatchResult {
	// The business is looked up by the dialed number; an unknown number
	// still gets a session so the call can be answered and cleaned up.
	var businessID int64
	business, err := s.businesses.GetByPhone(ctx, ev.To)
	switch {
	case err == nil:
		businessID = business.ID
	case errors.Is(err, store.ErrNotFound):
		slog.WarnContext(ctx, "inbound call for unknown number", "to", ev.To, "call_id", ev.CallID)
	default:
		slog.ErrorContext(ctx, "failed to resolve business for call", "error", err, "to", ev.To, "call_id", ev.CallID)
	}

	if err := s.sessions.Register(ctx, ev.CallID, businessID, ev.From, ev.To); err != nil {
		slog.ErrorContext(ctx, "failed to register call session", "error", err, "call_id", ev.CallID)
		return DispatchResult{Status: StatusError, Error: err.Error()}
	}

	state, err := encodeClientState(businessID, ev.From)
	if err != nil {
		slog.ErrorContext(ctx, "failed to encode client state", "error", err, "call_id", ev.CallID)
		return DispatchResult{Status: StatusError, Error: err.Error()}
	}

	if err := s.issuer.Answer(ctx, ev.CallID, state); err != nil {
		// The session stays registered: a stuck session beats a lost one,
		// and hangup still cleans it up.
		slog.ErrorContext(ctx, "failed to answer call", "error", err, "call_id", ev.CallID)
		return DispatchResult{Status: StatusError, Error: err.Error()}
	}

	slog.InfoContext(ctx, "answering call",
		"call_id", ev.CallID,
		"business_id", businessID,
		"from", ev.From,
		"to", ev.To,
		"direction", ev.Direction,
	)
	return DispatchResult{Status: StatusAnswering}
}

func (s *callEventService) handleAnswered(ctx context.Context, ev CallEvent) DispatchResult {
	if _, err := s.sessions.Get(ctx, ev.CallID); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			// The registry lost the call; the echoed client state is the
			// only correlation left.
			var businessID int64
			if state, stateErr := decodeClientState(ev.ClientState); stateErr == nil {
				businessID = state.BusinessID
			}
			slog.WarnContext(ctx, "answered event for unknown call",
				"call_id", ev.CallID,
				"business_id", businessID,
			)
			return DispatchResult{Status: StatusError, Error: "Call not found"}
		}
		slog.ErrorContext(ctx, "failed to look up call session", "error", err, "call_id", ev.CallID)
		return DispatchResult{Status: StatusError, Error: err.Error()}
	}

	if err := s.issuer.StartStreaming(ctx, ev.CallID, s.streamURL); err != nil {
		slog.ErrorContext(ctx, "failed to start media stream", "error", err, "call_id", ev.CallID)
		return DispatchResult{Status: StatusError, Error: err.Error()}
	}

	slog.InfoContext(ctx, "streaming call media", "call_id", ev.CallID, "stream_url", s.streamURL)
	return DispatchResult{Status: StatusStreaming}
}

func (s *callEventService) handleHangup(ctx context.Context, ev CallEvent) DispatchResult {
	sess, err := s.sessions.Remove(ctx, ev.CallID)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			slog.ErrorContext(ctx, "failed to remove call session", "error", err, "call_id", ev.CallID)
		}
		// Duplicate or late hangup: nothing to clean up.
		return DispatchResult{Status: StatusHangup}
	}

	duration := int64(s.now().Sub(sess.StartedAt).Seconds())
	if duration < 0 {
		duration = 0
	}

	slog.InfoContext(ctx, "call ended",
		"call_id", ev.CallID,
		"business_id", sess.BusinessID,
		"duration_seconds", duration,
	)
	return DispatchResult{Status: StatusHangup}
}

type clientState struct {
	BusinessID int64  `json:"business_id,string"`
	From       string `json:"from"`
}

// encodeClientState packs correlation context into the opaque token the
// provider echoes back on later events.
func encodeClientState(businessID int64, from string) (string, error) {
	payload, err := json.Marshal(clientState{BusinessID: businessID, From: from})
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(payload), nil
}

func decodeClientState(token string) (*clientState, error) {
	payload, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, err
	}
	var state clientState
	if err := json.Unmarshal(payload, &state); err != nil {
		return nil, err
	}
	return &state, nil
}
