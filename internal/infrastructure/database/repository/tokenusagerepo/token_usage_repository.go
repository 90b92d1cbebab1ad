package tokenusagerepo

import (
	"context"

	"gorm.io/gorm"

	"jan-server/services/proposal-api/internal/domain/tokenusage"
	"jan-server/services/proposal-api/internal/infrastructure/database/dbschema"
	"jan-server/services/proposal-api/internal/utils/platformerrors"
)

type TokenUsageGormRepository struct {
	db *gorm.DB
}

var _ tokenusage.Repository = (*TokenUsageGormRepository)(nil)

func NewTokenUsageGormRepository(db *gorm.DB) tokenusage.Repository {
	return &TokenUsageGormRepository{db: db}
}

func (repo *TokenUsageGormRepository) Create(ctx context.Context, usage *tokenusage.TokenUsage) error {
	entity := dbschema.NewSchemaTokenUsage(usage)
	if err := repo.db.WithContext(ctx).Create(entity).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to record token usage",
			err,
			"2e4a6c8e-0f1b-4d5a-b3c5-7a9c1e3f5b4c",
		)
	}
	usage.ID = entity.ID
	usage.CreatedAt = entity.CreatedAt
	return nil
}

func (repo *TokenUsageGormRepository) SummarizeByAccount(ctx context.Context, accountID uint) ([]tokenusage.UsageSummary, error) {
	var summaries []tokenusage.UsageSummary
	if err := repo.db.WithContext(ctx).
		Model(&dbschema.TokenUsage{}).
		Select(`model,
			COALESCE(SUM(prompt_tokens), 0) AS total_prompt_tokens,
			COALESCE(SUM(completion_tokens), 0) AS total_completion_tokens,
			COALESCE(SUM(total_tokens), 0) AS total_tokens,
			COUNT(*) AS request_count,
			COALESCE(SUM(estimated_cost_usd), 0) AS estimated_cost_usd`).
		Where("account_id = ?", accountID).
		Group("model").
		Order("model ASC").
		Scan(&summaries).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to summarize token usage",
			err,
			"6a8c0e2f-4b5d-4f6b-8e9a-1c3e5a7b9d5d",
		)
	}
	return summaries, nil
}
