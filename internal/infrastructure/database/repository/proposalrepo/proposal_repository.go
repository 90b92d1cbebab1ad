package proposalrepo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"jan-server/services/proposal-api/internal/domain/proposal"
	"jan-server/services/proposal-api/internal/infrastructure/database/dbschema"
	"jan-server/services/proposal-api/internal/utils/platformerrors"
)

type ProposalGormRepository struct {
	db *gorm.DB
}

var _ proposal.Repository = (*ProposalGormRepository)(nil)

func NewProposalGormRepository(db *gorm.DB) proposal.Repository {
	return &ProposalGormRepository{db: db}
}

func (repo *ProposalGormRepository) Create(ctx context.Context, p *proposal.Proposal) error {
	entity := dbschema.NewSchemaProposal(p)
	if err := repo.db.WithContext(ctx).Create(entity).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create proposal",
			err,
			"3c5e7a9b-1d2f-4a48-8c0e-2a4c6e8f0b75",
		)
	}
	p.ID = entity.ID
	p.CreatedAt = entity.CreatedAt
	p.UpdatedAt = entity.UpdatedAt
	return nil
}

// Finalize only touches rows that are still pending, so a proposal reaches a terminal status once.
func (repo *ProposalGormRepository) Finalize(ctx context.Context, id uint, completion proposal.Completion) (bool, error) {
	result := repo.db.WithContext(ctx).
		Model(&dbschema.Proposal{}).
		Where("id = ? AND status = ?", id, string(proposal.StatusPending)).
		Updates(map[string]any{
			"content":    completion.Content,
			"status":     string(completion.Status),
			"reason":     completion.Reason,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return false, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to finalize proposal",
			result.Error,
			"7e9a1c3d-5f6b-4c80-9e2a-4c6e8a0b2d86",
		)
	}
	return result.RowsAffected > 0, nil
}

func (repo *ProposalGormRepository) FindByPublicID(ctx context.Context, accountID uint, publicID string) (*proposal.Proposal, error) {
	var entity dbschema.Proposal
	err := repo.db.WithContext(ctx).
		Where("public_id = ? AND account_id = ?", publicID, accountID).
		First(&entity).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeNotFound,
			"proposal not found",
			err,
			"b2d4f6a8-0c1e-4392-a5b7-9d1f3b5c7e97",
		)
	}
	if err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to find proposal",
			err,
			"f6a8c0e2-4b5d-4e16-9f3a-1b3d5f7a9c08",
		)
	}
	return entity.EtoD(), nil
}

func (repo *ProposalGormRepository) ListByAccount(ctx context.Context, accountID uint, limit, offset int) ([]*proposal.Proposal, int64, error) {
	scoped := func() *gorm.DB {
		return repo.db.WithContext(ctx).
			Model(&dbschema.Proposal{}).
			Where("account_id = ?", accountID)
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to count proposals",
			err,
			"0a2c4e6f-8b9d-4a27-b1c3-5e7f9a1b3d19",
		)
	}

	var entities []dbschema.Proposal
	if err := scoped().
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&entities).Error; err != nil {
		return nil, 0, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list proposals",
			err,
			"5d7f9b1c-3e4a-4b38-8d0f-2c4e6a8b0d2a",
		)
	}

	result := make([]*proposal.Proposal, 0, len(entities))
	for i := range entities {
		result = append(result, entities[i].EtoD())
	}
	return result, total, nil
}

func (repo *ProposalGormRepository) CountPendingBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var count int64
	if err := repo.db.WithContext(ctx).
		Model(&dbschema.Proposal{}).
		Where("status = ? AND created_at < ?", string(proposal.StatusPending), cutoff).
		Count(&count).Error; err != nil {
		return 0, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to count pending proposals",
			err,
			"c8e0a2b4-6d7f-4c49-a0e2-4f6a8c0d2e3b",
		)
	}
	return count, nil
}
