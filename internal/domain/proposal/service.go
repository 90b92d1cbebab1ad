package proposal

import (
	"context"
	"errors"
	"maps"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"jan-server/services/proposal-api/internal/domain/account"
	"jan-server/services/proposal-api/internal/domain/prompt"
	"jan-server/services/proposal-api/internal/domain/tokenusage"
	"jan-server/services/proposal-api/internal/infrastructure/metrics"
	"jan-server/services/proposal-api/internal/infrastructure/observability"
	"jan-server/services/proposal-api/internal/infrastructure/sanitizer"
	"jan-server/services/proposal-api/internal/utils/platformerrors"
)

// Config tunes the pipeline.
type Config struct {
	// FinalizeTimeout bounds the detached finalize step of a stream.
	FinalizeTimeout time.Duration
}

// Outcome is the result of a synchronous generation.
type Outcome struct {
	Proposal *Proposal
	Account  *account.Account
}

// StreamOutcome is a started streaming generation. Proposal is still pending.
type StreamOutcome struct {
	Proposal *Proposal
	Account  *account.Account
	Stream   TextStream
}

// Service runs the generation pipeline: resolve, check quota, compose, generate, persist, record usage.
type Service struct {
	cfg       Config
	resolver  *account.Resolver
	ledger    *account.Ledger
	composer  *prompt.Composer
	generator Generator
	repo      Repository
	usage     UsageRecorder
	finalizer *Finalizer
	sanitizer *sanitizer.Sanitizer
	log       zerolog.Logger
}

func NewService(
	cfg Config,
	resolver *account.Resolver,
	ledger *account.Ledger,
	composer *prompt.Composer,
	generator Generator,
	repo Repository,
	usage UsageRecorder,
	finalizer *Finalizer,
	sanitizer *sanitizer.Sanitizer,
	log zerolog.Logger,
) *Service {
	if cfg.FinalizeTimeout <= 0 {
		cfg.FinalizeTimeout = 30 * time.Second
	}
	return &Service{
		cfg:       cfg,
		resolver:  resolver,
		ledger:    ledger,
		composer:  composer,
		generator: generator,
		repo:      repo,
		usage:     usage,
		finalizer: finalizer,
		sanitizer: sanitizer,
		log:       log.With().Str("component", "proposal-service").Logger(),
	}
}

type prepared struct {
	input    prompt.Input
	acct     *account.Account
	composed prompt.Composed
}

func (p *prepared) params() GenerationParams {
	return GenerationParams{
		System:      p.composed.System,
		User:        p.composed.User,
		Temperature: p.composed.Temperature,
		MaxTokens:   p.composed.MaxTokens,
	}
}

// prepare runs every step that may reject the request before generation starts.
func (s *Service) prepare(ctx context.Context, identity account.Identity, req Request, stream bool) (*prepared, error) {
	if strings.TrimSpace(identity.Subject) == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeUnauthorized, "Unauthorized", ErrUnauthenticated, "0b6e2d8f-4c1a-4d3b-a5e7-9f1c3b5d7e20")
	}

	input, err := req.Normalize(ctx)
	if err != nil {
		metrics.RecordGeneration(req.Mode, stream, "invalid")
		return nil, err
	}

	acct, err := s.resolver.Resolve(ctx, identity)
	if err != nil {
		metrics.RecordGeneration(string(input.Mode), stream, "profile_unavailable")
		return nil, err
	}

	if !s.ledger.CheckAllowed(acct, input.Mode) {
		metrics.RecordQuotaRejection(string(input.Mode))
		metrics.RecordGeneration(string(input.Mode), stream, "quota_exhausted")
		return nil, platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeForbidden, "Limit reached", ErrQuotaExhausted, "c3f5a7b9-1d2e-4f60-8a9b-0c1d2e3f4a51", map[string]any{
			"mode":  string(input.Mode),
			"used":  acct.Used(input.Mode),
			"limit": s.ledger.Limits().For(input.Mode),
		})
	}

	composed, err := s.composer.Compose(input, acct.IsProActive())
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "compose instructions")
	}

	s.log.Debug().
		Uint("account_id", acct.ID).
		Str("mode", string(input.Mode)).
		Bool("pro_active", acct.IsProActive()).
		Str("context", s.sanitizer.Excerpt(input.Context, 80)).
		Msg("generation request prepared")

	return &prepared{input: input, acct: acct, composed: composed}, nil
}

// Generate runs the synchronous pipeline. The artifact is only written once the
// generation succeeded, and the counter only moves after that write.
func (s *Service) Generate(ctx context.Context, identity account.Identity, req Request) (*Outcome, error) {
	ctx, span := observability.StartSpan(ctx, "proposal.generate")
	defer span.End()

	prep, err := s.prepare(ctx, identity, req, false)
	if err != nil {
		observability.RecordError(ctx, err)
		return nil, err
	}
	mode := string(prep.input.Mode)
	observability.AddSpanAttributes(ctx, attribute.String("proposal.mode", mode), attribute.Bool("proposal.stream", false))

	started := time.Now()
	result, err := s.generator.Complete(ctx, prep.params())
	metrics.RecordGenerationDuration(result.Model, false, time.Since(started).Seconds())
	if err == nil && strings.TrimSpace(result.Text) == "" {
		err = errors.New("empty generation")
	}
	if err != nil {
		metrics.RecordGeneration(mode, false, "generation_failed")
		observability.RecordError(ctx, err)
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeExternal, "generation failed", errors.Join(ErrGenerationFailed, err), "7e9a1c3d-5f2b-4d6e-8a0c-1b3d5f7e9a24")
	}

	readiness := Evaluate(prep.input.Tone, prep.input.MakeClientFocused)
	artifact := newProposal(prep, false)
	artifact.Content = result.Text
	artifact.Status = readiness.Status
	artifact.Reason = readiness.reasonFor(prep.acct.IsProActive())

	if err := s.repo.Create(ctx, artifact); err != nil {
		metrics.RecordGeneration(mode, false, "persistence_failed")
		observability.RecordError(ctx, err)
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeDatabaseError, "save proposal", errors.Join(ErrPersistenceFailed, err), "2a4c6e8f-0b1d-4f3a-9c5e-7d9f1b3d5e68")
	}

	// the artifact is durable; a caller that disconnects now must still be counted
	s.recordUsage(context.WithoutCancel(ctx), prep, artifact, result, false)
	metrics.RecordGeneration(mode, false, "success")
	return &Outcome{Proposal: artifact, Account: prep.acct}, nil
}

// GenerateStream inserts a pending artifact, then starts a streaming generation.
// The finalize step runs detached from ctx once the stream ends; its failures are
// logged and leave the artifact pending.
func (s *Service) GenerateStream(ctx context.Context, identity account.Identity, req Request) (*StreamOutcome, error) {
	ctx, span := observability.StartSpan(ctx, "proposal.generate_stream")
	defer span.End()

	prep, err := s.prepare(ctx, identity, req, true)
	if err != nil {
		observability.RecordError(ctx, err)
		return nil, err
	}
	mode := string(prep.input.Mode)
	observability.AddSpanAttributes(ctx, attribute.String("proposal.mode", mode), attribute.Bool("proposal.stream", true))

	placeholder := newProposal(prep, true)
	if err := s.repo.Create(ctx, placeholder); err != nil {
		metrics.RecordGeneration(mode, true, "persistence_failed")
		observability.RecordError(ctx, err)
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeDatabaseError, "save pending proposal", errors.Join(ErrPersistenceFailed, err), "9c1e3a5b-7d2f-4b8c-a0e6-3f5b7d9c1e42")
	}

	// the finalize step owns its own copy of the account
	owned := &prepared{input: prep.input, acct: snapshotAccount(prep.acct), composed: prep.composed}
	done := s.finalizer.Begin()
	detached := context.WithoutCancel(ctx)
	started := time.Now()
	artifactID := placeholder.ID

	stream, err := s.generator.Stream(ctx, prep.params(), func(result GenerationResult, genErr error) {
		defer done()
		metrics.RecordGenerationDuration(result.Model, true, time.Since(started).Seconds())
		fctx, cancel := context.WithTimeout(detached, s.cfg.FinalizeTimeout)
		defer cancel()
		s.finalize(fctx, owned, artifactID, result, genErr)
	})
	if err != nil {
		done()
		metrics.RecordGeneration(mode, true, "generation_failed")
		observability.RecordError(ctx, err)
		s.log.Warn().Err(err).Uint("proposal_id", artifactID).Msg("stream did not start, proposal left pending")
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeExternal, "generation failed", errors.Join(ErrGenerationFailed, err), "4b6d8f0a-2c3e-4a5b-9d7f-1e3a5c7b9d86")
	}

	metrics.RecordGeneration(mode, true, "started")
	return &StreamOutcome{Proposal: placeholder, Account: prep.acct, Stream: stream}, nil
}

// finalize writes the terminal state of a streamed artifact by id, then moves the counter.
func (s *Service) finalize(ctx context.Context, prep *prepared, id uint, result GenerationResult, genErr error) {
	log := s.log.With().Uint("proposal_id", id).Uint("account_id", prep.acct.ID).Str("mode", string(prep.input.Mode)).Logger()

	if genErr != nil {
		metrics.RecordFinalize("generation_failed")
		log.Warn().Err(genErr).Msg("stream failed, proposal left pending")
		return
	}
	if strings.TrimSpace(result.Text) == "" {
		metrics.RecordFinalize("empty")
		log.Warn().Msg("stream produced no text, proposal left pending")
		return
	}

	readiness := Evaluate(prep.input.Tone, prep.input.MakeClientFocused)
	updated, err := s.repo.Finalize(ctx, id, Completion{
		Content: result.Text,
		Status:  readiness.Status,
		Reason:  readiness.reasonFor(prep.acct.IsProActive()),
	})
	if err != nil {
		metrics.RecordFinalize("persistence_failed")
		log.Error().Err(err).Msg("finalize proposal failed, proposal left pending")
		return
	}
	if !updated {
		metrics.RecordFinalize("not_pending")
		log.Warn().Msg("proposal no longer pending, usage not recorded")
		return
	}

	artifact := &Proposal{ID: id, AccountID: prep.acct.ID, Mode: prep.input.Mode}
	s.recordUsage(ctx, prep, artifact, result, true)
	metrics.RecordFinalize("finalized")
	log.Debug().Str("status", string(readiness.Status)).Msg("proposal finalized")
}

// recordUsage moves the quota counter and stores token accounting. Both are best effort
// once the artifact is durable.
func (s *Service) recordUsage(ctx context.Context, prep *prepared, artifact *Proposal, result GenerationResult, stream bool) {
	mode := string(prep.input.Mode)
	switch applied, err := s.ledger.RecordUsage(ctx, prep.acct, prep.input.Mode); {
	case err != nil:
		metrics.RecordUsageIncrement(mode, "failed")
		s.log.Error().Err(err).Uint("account_id", prep.acct.ID).Str("mode", mode).Msg("record usage failed")
	case applied:
		metrics.RecordUsageIncrement(mode, "applied")
	case !prep.acct.IsProActive():
		metrics.RecordUsageIncrement(mode, "guarded")
	}

	if s.usage == nil || (result.PromptTokens == 0 && result.CompletionTokens == 0) {
		return
	}
	metrics.RecordTokens(result.Model, result.PromptTokens, result.CompletionTokens)
	if err := s.usage.RecordUsage(ctx, &tokenusage.TokenUsage{
		AccountID:        prep.acct.ID,
		ProposalID:       artifact.ID,
		Model:            result.Model,
		Mode:             mode,
		PromptTokens:     result.PromptTokens,
		CompletionTokens: result.CompletionTokens,
		RequestID:        requestID(ctx),
		Stream:           stream,
	}); err != nil {
		s.log.Warn().Err(err).Uint("proposal_id", artifact.ID).Msg("record token usage failed")
	}
}

// Get returns one artifact owned by identity.
func (s *Service) Get(ctx context.Context, identity account.Identity, publicID string) (*Proposal, error) {
	acct, err := s.resolver.Resolve(ctx, identity)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByPublicID(ctx, acct.ID, publicID)
}

// List returns the artifacts of identity, newest first, and the total count.
func (s *Service) List(ctx context.Context, identity account.Identity, limit, offset int) ([]*Proposal, int64, error) {
	acct, err := s.resolver.Resolve(ctx, identity)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.ListByAccount(ctx, acct.ID, limit, offset)
}

func newProposal(prep *prepared, stream bool) *Proposal {
	in := prep.input
	return &Proposal{
		PublicID:  uuid.NewString(),
		AccountID: prep.acct.ID,
		Mode:      in.Mode,
		Content:   PlaceholderContent,
		Industry:  in.Industry,
		Goal:      in.Goal,
		Tone:      in.Tone,
		Status:    StatusPending,
		Context: RequestContext{
			Role:            in.Role,
			Priority:        in.Priority,
			ClientFocused:   in.MakeClientFocused,
			Stream:          stream,
			HasGoalNote:     in.GoalNote != "",
			HasPriorityNote: in.PriorityNote != "",
			HasContextNote:  in.ContextNote != "",
		},
	}
}

func snapshotAccount(acct *account.Account) *account.Account {
	clone := *acct
	clone.Usage = maps.Clone(acct.Usage)
	return &clone
}

func requestID(ctx context.Context) *string {
	if id, ok := ctx.Value(platformerrors.RequestIDKey{}).(string); ok && id != "" {
		return &id
	}
	return nil
}
