package tokenusage

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
)

// Service provides token usage business logic
type Service struct {
	repo Repository
}

// NewService creates a new token usage service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// RecordUsage records a new token usage event
func (s *Service) RecordUsage(ctx context.Context, usage *TokenUsage) error {
	if usage.TotalTokens == 0 {
		usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens
	}
	if usage.EstimatedCostUSD.IsZero() {
		usage.EstimatedCostUSD = CalculateCost(usage.Model, usage.PromptTokens, usage.CompletionTokens)
	}
	return s.repo.Create(ctx, usage)
}

// UsageResponse is the token usage of one account.
type UsageResponse struct {
	TotalUsage UsageSummary   `json:"total_usage"`
	ByModel    []UsageSummary `json:"by_model"`
}

// GetAccountUsage returns the usage totals of an account.
func (s *Service) GetAccountUsage(ctx context.Context, accountID uint) (*UsageResponse, error) {
	summaries, err := s.repo.SummarizeByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	response := &UsageResponse{ByModel: make([]UsageSummary, 0, len(summaries))}
	total := UsageSummary{EstimatedCostUSD: decimal.Zero}
	for _, summary := range summaries {
		total.TotalPromptTokens += summary.TotalPromptTokens
		total.TotalCompletionTokens += summary.TotalCompletionTokens
		total.TotalTokens += summary.TotalTokens
		total.RequestCount += summary.RequestCount
		total.EstimatedCostUSD = total.EstimatedCostUSD.Add(summary.EstimatedCostUSD)
		response.ByModel = append(response.ByModel, summary)
	}
	sort.Slice(response.ByModel, func(i, j int) bool {
		return response.ByModel[i].Model < response.ByModel[j].Model
	})
	response.TotalUsage = total
	return response, nil
}
