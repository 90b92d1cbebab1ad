package responses

import (
	"time"

	"jan-server/services/proposal-api/internal/domain/account"
	"jan-server/services/proposal-api/internal/domain/proposal"
)

// GenerateResponse is the synchronous generation answer.
type GenerateResponse struct {
	ID         string  `json:"id"`
	Proposal   string  `json:"proposal"`
	SendStatus string  `json:"sendStatus"`
	SendReason *string `json:"sendReason"`
	IsPro      bool    `json:"isPro"`
}

func NewGenerateResponse(p *proposal.Proposal, acct *account.Account) GenerateResponse {
	return GenerateResponse{
		ID:         p.PublicID,
		Proposal:   p.Content,
		SendStatus: string(p.Status),
		SendReason: p.Reason,
		IsPro:      acct.IsProActive(),
	}
}

// ProposalResponse is one stored artifact.
type ProposalResponse struct {
	ID         string    `json:"id"`
	Mode       string    `json:"mode"`
	Proposal   string    `json:"proposal"`
	Industry   string    `json:"industry"`
	Goal       string    `json:"goal"`
	Tone       string    `json:"tone"`
	Role       string    `json:"role"`
	Priority   string    `json:"priority"`
	SendStatus string    `json:"sendStatus"`
	SendReason *string   `json:"sendReason"`
	CreatedAt  time.Time `json:"createdAt"`
}

func NewProposalResponse(p *proposal.Proposal) ProposalResponse {
	return ProposalResponse{
		ID:         p.PublicID,
		Mode:       string(p.Mode),
		Proposal:   p.Content,
		Industry:   p.Industry,
		Goal:       p.Goal,
		Tone:       p.Tone,
		Role:       p.Context.Role,
		Priority:   p.Context.Priority,
		SendStatus: string(p.Status),
		SendReason: p.Reason,
		CreatedAt:  p.CreatedAt,
	}
}

// ListResponse is the paginated list response
type ListResponse struct {
	Data   []ProposalResponse `json:"data"`
	Total  int64              `json:"total"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}

func NewListResponse(items []*proposal.Proposal, total int64, limit, offset int) ListResponse {
	data := make([]ProposalResponse, 0, len(items))
	for _, item := range items {
		data = append(data, NewProposalResponse(item))
	}
	return ListResponse{Data: data, Total: total, Limit: limit, Offset: offset}
}

// ModeUsage is the quota position of one mode. Remaining is -1 when unmetered.
type ModeUsage struct {
	Mode      string `json:"mode"`
	Used      int    `json:"used"`
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`
}

// AccountResponse describes the caller's plan and quota.
type AccountResponse struct {
	Email  string      `json:"email,omitempty"`
	Plan   string      `json:"plan"`
	IsPro  bool        `json:"isPro"`
	Quotas []ModeUsage `json:"quotas"`
}

func NewAccountResponse(acct *account.Account, statuses []account.ModeStatus) AccountResponse {
	quotas := make([]ModeUsage, 0, len(statuses))
	for _, status := range statuses {
		quotas = append(quotas, ModeUsage{
			Mode:      string(status.Mode),
			Used:      status.Used,
			Limit:     status.Limit,
			Remaining: status.Remaining,
		})
	}
	return AccountResponse{
		Email:  acct.Email,
		Plan:   string(acct.Plan),
		IsPro:  acct.IsProActive(),
		Quotas: quotas,
	}
}
