package routes

import (
	"github.com/google/wire"

	"jan-server/services/proposal-api/internal/interfaces/httpserver/handlers"
	"jan-server/services/proposal-api/internal/interfaces/httpserver/routes/legacy"
	v1 "jan-server/services/proposal-api/internal/interfaces/httpserver/routes/v1"
	"jan-server/services/proposal-api/internal/interfaces/httpserver/routes/v1/account"
	"jan-server/services/proposal-api/internal/interfaces/httpserver/routes/v1/proposal"
	"jan-server/services/proposal-api/internal/interfaces/httpserver/routes/v1/usage"
)

var RouteProvider = wire.NewSet(
	// Handlers
	handlers.HandlerProvider,

	// Routes
	v1.NewV1Route,
	proposal.NewProposalRoute,
	account.NewAccountRoute,
	usage.NewUsageRoute,
	legacy.NewLegacyRoute,
)
