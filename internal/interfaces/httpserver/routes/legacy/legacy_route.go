package legacy

import (
	"github.com/gin-gonic/gin"

	"jan-server/services/proposal-api/internal/interfaces/httpserver/handlers/proposalhandler"
)

// LegacyRoute keeps the path the original web client posts to.
type LegacyRoute struct {
	handler *proposalhandler.ProposalHandler
}

func NewLegacyRoute(handler *proposalhandler.ProposalHandler) *LegacyRoute {
	return &LegacyRoute{handler: handler}
}

func (r *LegacyRoute) RegisterRouter(router gin.IRouter) {
	router.POST("/api/generate-proposal", r.handler.Generate)
}
