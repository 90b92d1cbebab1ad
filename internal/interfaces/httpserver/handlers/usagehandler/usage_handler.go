package usagehandler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"jan-server/services/proposal-api/internal/domain/tokenusage"
	"jan-server/services/proposal-api/internal/interfaces/httpserver/handlers/accounthandler"
	middleware "jan-server/services/proposal-api/internal/interfaces/httpserver/middlewares"
	"jan-server/services/proposal-api/internal/utils/platformerrors"
)

type UsageService interface {
	GetAccountUsage(ctx context.Context, accountID uint) (*tokenusage.UsageResponse, error)
}

var _ UsageService = (*tokenusage.Service)(nil)

// UsageHandler handles token usage API requests
type UsageHandler struct {
	resolver     accounthandler.AccountResolver
	usageService UsageService
	log          zerolog.Logger
}

// NewUsageHandler creates a new UsageHandler
func NewUsageHandler(resolver accounthandler.AccountResolver, usageService UsageService, log zerolog.Logger) *UsageHandler {
	return &UsageHandler{
		resolver:     resolver,
		usageService: usageService,
		log:          log,
	}
}

// GetMyUsage godoc
// @Summary Get current user's token usage
// @Description Returns the token usage summary of the authenticated user, grouped by model
// @Tags Usage
// @Produce json
// @Security BearerAuth
// @Success 200 {object} tokenusage.UsageResponse
// @Failure 401 {object} platformerrors.HTTPErrorResponse
// @Failure 500 {object} platformerrors.HTTPErrorResponse
// @Router /v1/usage [get]
func (h *UsageHandler) GetMyUsage(c *gin.Context) {
	identity := middleware.IdentityFromContext(c)
	if identity.Subject == "" {
		platformerrors.WriteUnauthorized(c, "Unauthorized")
		return
	}
	acct, err := h.resolver.Resolve(c.Request.Context(), identity)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}

	usage, err := h.usageService.GetAccountUsage(c.Request.Context(), acct.ID)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, usage)
}

