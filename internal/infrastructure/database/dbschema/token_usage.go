package dbschema

import (
	"time"

	"github.com/shopspring/decimal"

	"jan-server/services/proposal-api/internal/domain/tokenusage"
	"jan-server/services/proposal-api/internal/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(TokenUsage{})
}

// TokenUsage is a persisted token accounting row.
type TokenUsage struct {
	ID               uint            `gorm:"primaryKey"`
	AccountID        uint            `gorm:"not null;index:ix_token_usages_account,priority:1"`
	ProposalID       uint            `gorm:"index"`
	Model            string          `gorm:"type:varchar(255);not null;index:ix_token_usages_account,priority:2"`
	Mode             string          `gorm:"type:varchar(32);not null"`
	PromptTokens     int             `gorm:"not null;default:0"`
	CompletionTokens int             `gorm:"not null;default:0"`
	TotalTokens      int             `gorm:"not null;default:0"`
	EstimatedCostUSD decimal.Decimal `gorm:"column:estimated_cost_usd;type:decimal(10,6)"`
	RequestID        *string         `gorm:"type:varchar(64)"`
	Stream           bool            `gorm:"not null;default:false"`
	CreatedAt        time.Time       `gorm:"not null;autoCreateTime"`
}

// NewSchemaTokenUsage converts a domain usage record into a schema instance.
func NewSchemaTokenUsage(u *tokenusage.TokenUsage) *TokenUsage {
	if u == nil {
		return nil
	}
	return &TokenUsage{
		ID:               u.ID,
		AccountID:        u.AccountID,
		ProposalID:       u.ProposalID,
		Model:            u.Model,
		Mode:             u.Mode,
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		TotalTokens:      u.TotalTokens,
		EstimatedCostUSD: u.EstimatedCostUSD,
		RequestID:        u.RequestID,
		Stream:           u.Stream,
		CreatedAt:        u.CreatedAt,
	}
}
