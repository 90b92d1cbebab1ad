package accounthandler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"jan-server/services/proposal-api/internal/domain/account"
	middleware "jan-server/services/proposal-api/internal/interfaces/httpserver/middlewares"
	"jan-server/services/proposal-api/internal/interfaces/httpserver/responses"
	"jan-server/services/proposal-api/internal/utils/platformerrors"
)

type AccountResolver interface {
	Resolve(ctx context.Context, identity account.Identity) (*account.Account, error)
	Status(acct *account.Account) []account.ModeStatus
}

var _ AccountResolver = (*account.Resolver)(nil)

type AccountHandler struct {
	resolver AccountResolver
	log      zerolog.Logger
}

func NewAccountHandler(resolver AccountResolver, log zerolog.Logger) *AccountHandler {
	return &AccountHandler{resolver: resolver, log: log}
}

// GetMe godoc
// @Summary Get the caller's account
// @Description Returns the plan and the per-mode quota position of the caller
// @Tags Account
// @Produce json
// @Security BearerAuth
// @Success 200 {object} responses.AccountResponse
// @Failure 401 {object} platformerrors.HTTPErrorResponse
// @Failure 500 {object} platformerrors.HTTPErrorResponse
// @Router /v1/account [get]
func (h *AccountHandler) GetMe(c *gin.Context) {
	acct, err := h.resolver.Resolve(c.Request.Context(), middleware.IdentityFromContext(c))
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, responses.NewAccountResponse(acct, h.resolver.Status(acct)))
}
