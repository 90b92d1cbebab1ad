package v1

import (
	"github.com/gin-gonic/gin"

	"jan-server/services/proposal-api/internal/interfaces/httpserver/routes/v1/account"
	"jan-server/services/proposal-api/internal/interfaces/httpserver/routes/v1/proposal"
	"jan-server/services/proposal-api/internal/interfaces/httpserver/routes/v1/usage"
)

type V1Route struct {
	proposal *proposal.ProposalRoute
	account  *account.AccountRoute
	usage    *usage.UsageRoute
}

func NewV1Route(
	proposal *proposal.ProposalRoute,
	account *account.AccountRoute,
	usage *usage.UsageRoute,
) *V1Route {
	return &V1Route{
		proposal,
		account,
		usage,
	}
}

func (v1Route *V1Route) RegisterRouter(router gin.IRouter) {
	v1Router := router.Group("/v1")
	v1Route.proposal.RegisterRouter(v1Router)
	v1Route.account.RegisterRouter(v1Router)
	v1Route.usage.RegisterRouter(v1Router)
}
