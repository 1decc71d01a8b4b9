package model

// Business carries the subset of the business record this service reads.
// The dashboard owns the full row.
type Business struct {
	Name         string  `json:"name"`
	Phone        string  `json:"phone"`
	HandoffPhone *string `json:"handoff_phone,omitempty"`
	HandoffEmail *string `json:"handoff_email,omitempty"`
	ID           int64   `json:"id"`
}

// HandoffDestination returns the configured transfer number, if any.
func (b *Business) HandoffDestination() (string, bool) {
	if b.HandoffPhone == nil || *b.HandoffPhone == "" {
		return "", false
	}
	return *b.HandoffPhone, true
}
