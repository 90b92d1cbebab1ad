package handlers

import (
	"github.com/google/wire"

	"jan-server/services/proposal-api/internal/domain/account"
	"jan-server/services/proposal-api/internal/domain/proposal"
	"jan-server/services/proposal-api/internal/domain/tokenusage"
	"jan-server/services/proposal-api/internal/interfaces/httpserver/handlers/accounthandler"
	"jan-server/services/proposal-api/internal/interfaces/httpserver/handlers/proposalhandler"
	"jan-server/services/proposal-api/internal/interfaces/httpserver/handlers/usagehandler"
)

var HandlerProvider = wire.NewSet(
	proposalhandler.NewProposalHandler,
	accounthandler.NewAccountHandler,
	usagehandler.NewUsageHandler,
	wire.Bind(new(proposalhandler.ProposalService), new(*proposal.Service)),
	wire.Bind(new(accounthandler.AccountResolver), new(*account.Resolver)),
	wire.Bind(new(usagehandler.UsageService), new(*tokenusage.Service)),
)
