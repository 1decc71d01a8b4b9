package model

import "time"

// CallSession is the server-side record of one live phone call, keyed by the
// provider's call control ID. It exists from call.initiated until
// call.hangup.
type CallSession struct {
	StartedAt  time.Time `json:"started_at"`
	CallID     string    `json:"call_id"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	BusinessID int64     `json:"business_id"`
}
