package applications

import (
	"fmt"
	"strings"
)

// Status is the stage an application has reached.
type Status string

const (
	StatusApplied   Status = "applied"
	StatusInterview Status = "interview"
	StatusOffer     Status = "offer"
	StatusRejected  Status = "rejected"
)

// StatusMeta is the display metadata of a status.
type StatusMeta struct {
	Value Status `json:"value"`
	Label string `json:"label"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
	Class string `json:"class"`
}

var statusMeta = []StatusMeta{
	{Value: StatusApplied, Label: "Applied", Icon: "send", Color: "primary", Class: "status-applied"},
	{Value: StatusInterview, Label: "Interview", Icon: "event", Color: "accent", Class: "status-interview"},
	{Value: StatusOffer, Label: "Offer", Icon: "celebration", Color: "", Class: "status-offer"},
	{Value: StatusRejected, Label: "Rejected", Icon: "cancel", Color: "warn", Class: "status-rejected"},
}

// Statuses lists every status in pipeline order.
func Statuses() []StatusMeta {
	out := make([]StatusMeta, len(statusMeta))
	copy(out, statusMeta)
	return out
}

// ParseStatus accepts one of the four status values, case-insensitively.
func ParseStatus(s string) (Status, error) {
	v := Status(strings.ToLower(strings.TrimSpace(s)))
	if v.Valid() {
		return v, nil
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrInvalidInput, s)
}

// Valid reports whether s is one of the four statuses.
func (s Status) Valid() bool {
	_, ok := s.meta()
	return ok
}

func (s Status) meta() (StatusMeta, bool) {
	for _, m := range statusMeta {
		if m.Value == s {
			return m, true
		}
	}
	return StatusMeta{}, false
}

// Label is the display name, "Unknown" for invalid values.
func (s Status) Label() string {
	if m, ok := s.meta(); ok {
		return m.Label
	}
	return "Unknown"
}

func (s Status) Icon() string {
	if m, ok := s.meta(); ok {
		return m.Icon
	}
	return "help"
}

func (s Status) Color() string {
	m, _ := s.meta()
	return m.Color
}

func (s Status) Class() string {
	return "status-" + string(s)
}

// IsPositive is true for interview and offer.
func (s Status) IsPositive() bool { return s == StatusInterview || s == StatusOffer }

// IsNegative is true for rejected.
func (s Status) IsNegative() bool { return s == StatusRejected }

// IsNeutral is true for applied.
func (s Status) IsNeutral() bool { return s == StatusApplied }
