package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"frontdesk.app/call-server/internal/model"
	"frontdesk.app/call-server/internal/store"
)

// Context carries everything the operator needs to pick up an escalation.
type Context struct {
	BusinessName  string
	CustomerPhone string
	CustomerName  string
	Reason        string
	Summary       string
	Channel       model.Channel
	Urgency       model.Urgency
	HandoffID     int64
}

// Dispatcher alerts a human operator about a handoff. Delivery is strictly
// best-effort: a broken alert channel must never block the customer-facing
// response, so every failure is logged and swallowed.
type Dispatcher struct {
	now      func() time.Time
	alerts   *AlertClient
	handoffs store.HandoffStore
}

func NewDispatcher(alerts *AlertClient, handoffs store.HandoffStore) *Dispatcher {
	return &Dispatcher{
		alerts:   alerts,
		handoffs: handoffs,
		now:      time.Now,
	}
}

func (d *Dispatcher) Notify(ctx context.Context, n Context) {
	summary := FormatSummary(n)

	slog.InfoContext(ctx, "handoff alert",
		"handoff_id", n.HandoffID,
		"business", n.BusinessName,
		"channel", n.Channel,
		"urgency", n.Urgency,
		"summary", summary,
	)

	if d.alerts != nil {
		if err := d.alerts.Post(ctx, summary); err != nil {
			slog.ErrorContext(ctx, "failed to deliver handoff alert",
				"error", err,
				"handoff_id", n.HandoffID,
			)
		}
	}

	if err := d.handoffs.MarkNotified(ctx, n.HandoffID, d.now()); err != nil {
		slog.ErrorContext(ctx, "failed to mark handoff notified",
			"error", err,
			"handoff_id", n.HandoffID,
		)
	}
}

// FormatSummary renders the urgency-tagged operator summary.
func FormatSummary(n Context) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[%s] Human handoff requested for %s (%s)\n",
		strings.ToUpper(string(n.Urgency)), n.BusinessName, n.Channel)

	customer := n.CustomerPhone
	if n.CustomerName != "" {
		customer = fmt.Sprintf("%s (%s)", n.CustomerName, n.CustomerPhone)
	}
	fmt.Fprintf(&b, "Customer: %s\n", customer)
	fmt.Fprintf(&b, "Reason: %s", n.Reason)

	if n.Summary != "" {
		fmt.Fprintf(&b, "\nSummary: %s", n.Summary)
	}

	return b.String()
}
