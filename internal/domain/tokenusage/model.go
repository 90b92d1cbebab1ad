package tokenusage

import (
	"time"

	"github.com/shopspring/decimal"
)

// TokenUsage is the token accounting of one finished generation.
type TokenUsage struct {
	ID               uint
	AccountID        uint
	ProposalID       uint
	Model            string
	Mode             string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	EstimatedCostUSD decimal.Decimal
	RequestID        *string
	Stream           bool
	CreatedAt        time.Time
}

// UsageSummary aggregates usage for one model
type UsageSummary struct {
	Model                 string          `json:"model"`
	TotalPromptTokens     int64           `json:"total_prompt_tokens"`
	TotalCompletionTokens int64           `json:"total_completion_tokens"`
	TotalTokens           int64           `json:"total_tokens"`
	RequestCount          int64           `json:"request_count"`
	EstimatedCostUSD      decimal.Decimal `json:"estimated_cost_usd"`
}

// Price is the USD cost per token of a model.
type Price struct {
	Prompt     decimal.Decimal
	Completion decimal.Decimal
}

// ModelPricing lists known model prices (USD per token).
var ModelPricing = map[string]Price{
	"llama-3.3-70b-versatile": {decimal.NewFromFloat(0.00000059), decimal.NewFromFloat(0.00000079)},
	"llama-3.1-8b-instant":    {decimal.NewFromFloat(0.00000005), decimal.NewFromFloat(0.00000008)},
	"gpt-4o":                  {decimal.NewFromFloat(0.000005), decimal.NewFromFloat(0.000015)},
	"gpt-4o-mini":             {decimal.NewFromFloat(0.00000015), decimal.NewFromFloat(0.0000006)},
}

var defaultPrice = Price{
	Prompt:     decimal.NewFromFloat(0.000003),
	Completion: decimal.NewFromFloat(0.000006),
}

// CalculateCost calculates estimated cost for token usage
func CalculateCost(model string, promptTokens, completionTokens int) decimal.Decimal {
	price, ok := ModelPricing[model]
	if !ok {
		price = defaultPrice
	}

	promptCost := price.Prompt.Mul(decimal.NewFromInt(int64(promptTokens)))
	completionCost := price.Completion.Mul(decimal.NewFromInt(int64(completionTokens)))
	return promptCost.Add(completionCost)
}
