package accountrepo

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/plugin/dbresolver"

	"jan-server/services/proposal-api/internal/domain/account"
	"jan-server/services/proposal-api/internal/infrastructure/database/dbschema"
	"jan-server/services/proposal-api/internal/utils/platformerrors"
)

type AccountGormRepository struct {
	db *gorm.DB
}

var _ account.Repository = (*AccountGormRepository)(nil)

func NewAccountGormRepository(db *gorm.DB) account.Repository {
	return &AccountGormRepository{db: db}
}

// GetOrCreate inserts the account and its usage rows with ON CONFLICT DO NOTHING, then
// reads the winning rows back from the primary. Concurrent first requests of the same
// subject converge on one record.
func (repo *AccountGormRepository) GetOrCreate(ctx context.Context, identity account.Identity, modes []account.Mode) (*account.Account, error) {
	entity := dbschema.NewSchemaAccount(&account.Account{
		Subject: strings.TrimSpace(identity.Subject),
		Email:   strings.TrimSpace(identity.Email),
		Plan:    account.PlanFree,
	})

	if err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "subject"}},
			DoNothing: true,
		}).
		Create(entity).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to insert account",
			err,
			"8e2b4d6f-1a3c-45e7-9b0d-2f4a6c8e0b19",
		)
	}

	var persisted dbschema.Account
	if err := repo.db.WithContext(ctx).
		Clauses(dbresolver.Write).
		Where("subject = ?", entity.Subject).
		First(&persisted).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to reload account",
			err,
			"c5e7a9b1-3d4f-4602-8a1c-5e7b9d1f3a24",
		)
	}

	if len(modes) > 0 {
		rows := make([]dbschema.AccountUsage, 0, len(modes))
		for _, mode := range modes {
			rows = append(rows, dbschema.AccountUsage{AccountID: persisted.ID, Mode: string(mode)})
		}
		if err := repo.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "account_id"}, {Name: "mode"}},
				DoNothing: true,
			}).
			Create(&rows).Error; err != nil {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeDatabaseError,
				"failed to insert account usage rows",
				err,
				"1f3b5d7e-9a0c-4e24-b6d8-0a2c4e6f8b31",
			)
		}
	}

	if err := repo.loadUsages(ctx, &persisted, true); err != nil {
		return nil, err
	}
	return persisted.EtoD(), nil
}

func (repo *AccountGormRepository) FindBySubject(ctx context.Context, subject string) (*account.Account, error) {
	var entity dbschema.Account
	err := repo.db.WithContext(ctx).
		Where("subject = ?", subject).
		First(&entity).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to find account by subject",
			err,
			"4a6c8e0f-2b3d-4f57-9e1a-3c5e7a9b1d42",
		)
	}
	if err := repo.loadUsages(ctx, &entity, false); err != nil {
		return nil, err
	}
	return entity.EtoD(), nil
}

// IncrementUsage issues one conditional UPDATE so the counter can never pass ceiling.
func (repo *AccountGormRepository) IncrementUsage(ctx context.Context, accountID uint, mode account.Mode, ceiling int) (bool, error) {
	query := repo.db.WithContext(ctx).
		Model(&dbschema.AccountUsage{}).
		Where("account_id = ? AND mode = ?", accountID, string(mode))
	if ceiling > 0 {
		query = query.Where("used < ?", ceiling)
	}

	result := query.Updates(map[string]any{
		"used":       gorm.Expr("used + 1"),
		"updated_at": time.Now().UTC(),
	})
	if result.Error != nil {
		return false, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to increment account usage",
			result.Error,
			"9b1d3f5a-7c8e-4a06-b2d4-6f8a0c2e4b53",
		)
	}
	return result.RowsAffected > 0, nil
}

func (repo *AccountGormRepository) loadUsages(ctx context.Context, entity *dbschema.Account, primary bool) error {
	query := repo.db.WithContext(ctx)
	if primary {
		query = query.Clauses(dbresolver.Write)
	}
	if err := query.
		Where("account_id = ?", entity.ID).
		Order("mode ASC").
		Find(&entity.Usages).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to load account usage",
			err,
			"e0f2a4c6-8b9d-4e17-a3c5-7e9b1d3f5a64",
		)
	}
	return nil
}
