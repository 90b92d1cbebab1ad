package repository

import (
	"github.com/google/wire"

	"jan-server/services/proposal-api/internal/infrastructure/database/repository/accountrepo"
	"jan-server/services/proposal-api/internal/infrastructure/database/repository/proposalrepo"
	"jan-server/services/proposal-api/internal/infrastructure/database/repository/tokenusagerepo"
)

var RepositoryProvider = wire.NewSet(
	accountrepo.NewAccountGormRepository,
	proposalrepo.NewProposalGormRepository,
	tokenusagerepo.NewTokenUsageGormRepository,
)
