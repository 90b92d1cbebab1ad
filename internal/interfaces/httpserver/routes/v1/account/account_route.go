package account

import (
	"github.com/gin-gonic/gin"

	"jan-server/services/proposal-api/internal/interfaces/httpserver/handlers/accounthandler"
)

type AccountRoute struct {
	handler *accounthandler.AccountHandler
}

func NewAccountRoute(handler *accounthandler.AccountHandler) *AccountRoute {
	return &AccountRoute{handler: handler}
}

func (r *AccountRoute) RegisterRouter(router gin.IRouter) {
	router.GET("/account", r.handler.GetMe)
}
