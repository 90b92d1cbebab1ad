package proposal

import (
	"time"

	"jan-server/services/proposal-api/internal/domain/account"
)

// Status is the readiness state of a generated artifact.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSendReady Status = "send-ready"
	StatusReview    Status = "review"
	StatusRevise    Status = "revise"
)

// PlaceholderContent is stored on a pending artifact until generation completes.
const PlaceholderContent = "Generating..."

// Terminal reports whether s is a finished readiness status.
func (s Status) Terminal() bool {
	switch s {
	case StatusSendReady, StatusReview, StatusRevise:
		return true
	}
	return false
}

// RequestContext echoes the request fields that are not first-class columns.
type RequestContext struct {
	Role            string `json:"role"`
	Priority        string `json:"priority"`
	ClientFocused   bool   `json:"client_focused"`
	Stream          bool   `json:"stream"`
	HasGoalNote     bool   `json:"has_goal_note,omitempty"`
	HasPriorityNote bool   `json:"has_priority_note,omitempty"`
	HasContextNote  bool   `json:"has_context_note,omitempty"`
}

// Proposal is one generated artifact owned by an account.
type Proposal struct {
	ID        uint
	PublicID  string
	AccountID uint
	Mode      account.Mode
	Content   string
	Industry  string
	Goal      string
	Tone      string
	Status    Status
	// Reason is only set for pro-and-active accounts.
	Reason    *string
	Context   RequestContext
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Completion is the terminal state written onto a pending artifact.
type Completion struct {
	Content string
	Status  Status
	Reason  *string
}
