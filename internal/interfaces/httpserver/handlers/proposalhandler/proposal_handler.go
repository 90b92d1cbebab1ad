package proposalhandler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"jan-server/services/proposal-api/internal/domain/account"
	"jan-server/services/proposal-api/internal/domain/proposal"
	middleware "jan-server/services/proposal-api/internal/interfaces/httpserver/middlewares"
	"jan-server/services/proposal-api/internal/interfaces/httpserver/requests"
	"jan-server/services/proposal-api/internal/interfaces/httpserver/responses"
	"jan-server/services/proposal-api/internal/utils/platformerrors"
)

// ProposalIDHeader carries the public id of a streamed artifact.
const ProposalIDHeader = "X-Proposal-Id"

// ProposalService is the generation pipeline as seen by the HTTP layer.
type ProposalService interface {
	Generate(ctx context.Context, identity account.Identity, req proposal.Request) (*proposal.Outcome, error)
	GenerateStream(ctx context.Context, identity account.Identity, req proposal.Request) (*proposal.StreamOutcome, error)
	Get(ctx context.Context, identity account.Identity, publicID string) (*proposal.Proposal, error)
	List(ctx context.Context, identity account.Identity, limit, offset int) ([]*proposal.Proposal, int64, error)
}

var _ ProposalService = (*proposal.Service)(nil)

// ProposalHandler handles proposal generation and listing
type ProposalHandler struct {
	service  ProposalService
	validate *validator.Validate
	log      zerolog.Logger
}

func NewProposalHandler(service ProposalService, log zerolog.Logger) *ProposalHandler {
	return &ProposalHandler{
		service:  service,
		validate: requests.NewValidator(),
		log:      log.With().Str("component", "proposal-handler").Logger(),
	}
}

// Generate godoc
// @Summary Generate a proposal
// @Description Generates a proposal or outreach message. With stream=true the body is chunked plain text and the artifact id is returned in the X-Proposal-Id header.
// @Tags Proposals
// @Accept json
// @Produce json,plain
// @Security BearerAuth
// @Param stream query boolean false "Stream the generated text"
// @Param request body requests.GenerateProposalRequest true "Generation request"
// @Success 200 {object} responses.GenerateResponse
// @Failure 400 {object} platformerrors.HTTPErrorResponse
// @Failure 401 {object} platformerrors.HTTPErrorResponse
// @Failure 403 {object} platformerrors.HTTPErrorResponse
// @Failure 500 {object} platformerrors.HTTPErrorResponse
// @Router /v1/proposals/generate [post]
func (h *ProposalHandler) Generate(c *gin.Context) {
	var req requests.GenerateProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteValidationError(c, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		platformerrors.WriteValidationError(c, requests.ValidationMessage(err))
		return
	}

	stream := req.Stream
	if raw := c.Query("stream"); raw != "" {
		if parsed, err := strconv.ParseBool(raw); err == nil {
			stream = parsed
		}
	}
	c.Set("stream", stream)

	identity := middleware.IdentityFromContext(c)
	if stream {
		h.generateStream(c, identity, req.ToDomain())
		return
	}

	outcome, err := h.service.Generate(c.Request.Context(), identity, req.ToDomain())
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, responses.NewGenerateResponse(outcome.Proposal, outcome.Account))
}

// generateStream copies chunks to the client until the stream ends or the client leaves.
// Leaving detaches the stream; the artifact is finalized regardless.
func (h *ProposalHandler) generateStream(c *gin.Context, identity account.Identity, req proposal.Request) {
	ctx := c.Request.Context()
	outcome, err := h.service.GenerateStream(ctx, identity, req)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	stream := outcome.Stream
	defer stream.Detach()

	c.Header(ProposalIDHeader, outcome.Proposal.PublicID)
	flusher, ok := middleware.PrepareTextStream(c)
	c.Status(http.StatusOK)
	c.Writer.WriteHeaderNow()
	if ok {
		flusher.Flush()
	}

	for {
		select {
		case chunk, open := <-stream.Chunks():
			if !open {
				return
			}
			if _, err := c.Writer.WriteString(chunk); err != nil {
				h.log.Debug().Err(err).Str("proposal_id", outcome.Proposal.PublicID).Msg("client went away during stream")
				return
			}
			if ok {
				flusher.Flush()
			}
		case <-ctx.Done():
			h.log.Debug().Str("proposal_id", outcome.Proposal.PublicID).Msg("client disconnected, stream detached")
			return
		}
	}
}

// List godoc
// @Summary List proposals
// @Description Lists the caller's proposals, newest first
// @Tags Proposals
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Limit" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} responses.ListResponse
// @Failure 400 {object} platformerrors.HTTPErrorResponse
// @Failure 401 {object} platformerrors.HTTPErrorResponse
// @Router /v1/proposals [get]
func (h *ProposalHandler) List(c *gin.Context) {
	var query requests.ListProposalsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		platformerrors.WriteValidationError(c, "invalid query parameters")
		return
	}
	if err := h.validate.Struct(query); err != nil {
		platformerrors.WriteValidationError(c, requests.ValidationMessage(err))
		return
	}
	if query.Limit == 0 {
		query.Limit = requests.DefaultListLimit
	}

	items, total, err := h.service.List(c.Request.Context(), middleware.IdentityFromContext(c), query.Limit, query.Offset)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, responses.NewListResponse(items, total, query.Limit, query.Offset))
}

// Get godoc
// @Summary Get a proposal
// @Tags Proposals
// @Produce json
// @Security BearerAuth
// @Param id path string true "Proposal id"
// @Success 200 {object} responses.ProposalResponse
// @Failure 401 {object} platformerrors.HTTPErrorResponse
// @Failure 404 {object} platformerrors.HTTPErrorResponse
// @Router /v1/proposals/{id} [get]
func (h *ProposalHandler) Get(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), middleware.IdentityFromContext(c), c.Param("id"))
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, responses.NewProposalResponse(item))
}
