package proposal

import (
	"github.com/gin-gonic/gin"

	"jan-server/services/proposal-api/internal/interfaces/httpserver/handlers/proposalhandler"
)

type ProposalRoute struct {
	handler *proposalhandler.ProposalHandler
}

func NewProposalRoute(handler *proposalhandler.ProposalHandler) *ProposalRoute {
	return &ProposalRoute{handler: handler}
}

func (r *ProposalRoute) RegisterRouter(router gin.IRouter) {
	proposals := router.Group("/proposals")
	{
		proposals.POST("/generate", r.handler.Generate)
		proposals.GET("", r.handler.List)
		proposals.GET("/:id", r.handler.Get)
	}
}
