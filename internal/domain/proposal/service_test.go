package proposal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jan-server/services/proposal-api/internal/domain/account"
	"jan-server/services/proposal-api/internal/domain/prompt"
	"jan-server/services/proposal-api/internal/infrastructure/sanitizer"
	"jan-server/services/proposal-api/internal/utils/platformerrors"
)

type harness struct {
	accounts  *fakeAccounts
	proposals *fakeProposals
	generator *fakeGenerator
	usage     *fakeUsage
	finalizer *Finalizer
	svc       *Service
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	composer, err := prompt.NewDefaultComposer()
	require.NoError(t, err)

	h := &harness{
		accounts:  newFakeAccounts(),
		proposals: newFakeProposals(),
		generator: &fakeGenerator{result: GenerationResult{Text: "Hello there", Model: "test-model", PromptTokens: 12, CompletionTokens: 30}},
		usage:     &fakeUsage{},
		finalizer: NewFinalizer(),
	}
	log := zerolog.Nop()
	ledger := account.NewLedger(account.Limits{account.ModeFreelancer: 3, account.ModeStudent: 5}, h.accounts, log)
	resolver := account.NewResolver(h.accounts, ledger, log)
	h.svc = NewService(Config{FinalizeTimeout: time.Second}, resolver, ledger, composer, h.generator, h.proposals, h.usage, h.finalizer, sanitizer.New(sanitizer.LevelHashed, "test"), log)
	return h
}

func (h *harness) wait(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, h.finalizer.Wait(ctx))
}

var (
	alice    = account.Identity{Subject: "alice", Email: "alice@example.com"}
	validReq = Request{Input: "Local bakery wants a website", Role: "Web designer"}
)

func TestGenerateFreeTierReachesLimit(t *testing.T) {
	h := newHarness(t)
	h.accounts.seed("alice", account.PlanFree, false, map[account.Mode]int{account.ModeFreelancer: 2})

	out, err := h.svc.Generate(context.Background(), alice, validReq)
	require.NoError(t, err)
	assert.Equal(t, "Hello there", out.Proposal.Content)
	assert.Equal(t, StatusReview, out.Proposal.Status)
	assert.Nil(t, out.Proposal.Reason)
	assert.Equal(t, 3, h.accounts.used("alice", account.ModeFreelancer))

	_, err = h.svc.Generate(context.Background(), alice, validReq)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrQuotaExhausted))
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeForbidden))
	assert.Equal(t, 3, h.accounts.used("alice", account.ModeFreelancer))
	assert.Equal(t, 1, h.generator.calls)
}

func TestGenerateProActiveIsUnmetered(t *testing.T) {
	h := newHarness(t)
	h.accounts.seed("alice", account.PlanPro, true, map[account.Mode]int{account.ModeFreelancer: 10})

	for i := 0; i < 3; i++ {
		out, err := h.svc.Generate(context.Background(), alice, Request{Input: "ctx", Role: "r", Tone: "bold", MakeClientFocused: true})
		require.NoError(t, err)
		assert.Equal(t, StatusSendReady, out.Proposal.Status)
		require.NotNil(t, out.Proposal.Reason)
		assert.Equal(t, ReasonSendReady, *out.Proposal.Reason)
	}
	assert.Equal(t, 10, h.accounts.used("alice", account.ModeFreelancer))
	assert.Contains(t, h.generator.lastParams.System, prompt.RiskAugmentation)
}

func TestGenerateCreatesMissingAccount(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.Generate(context.Background(), alice, validReq)
	require.NoError(t, err)
	assert.Equal(t, 1, h.accounts.used("alice", account.ModeFreelancer))
	assert.Equal(t, 0, h.accounts.used("alice", account.ModeStudent))
}

func TestGenerateOnlyTouchesRequestedMode(t *testing.T) {
	h := newHarness(t)
	h.accounts.seed("alice", account.PlanFree, false, map[account.Mode]int{account.ModeFreelancer: 1, account.ModeStudent: 2})

	req := validReq
	req.Mode = "student"
	_, err := h.svc.Generate(context.Background(), alice, req)
	require.NoError(t, err)
	assert.Equal(t, 3, h.accounts.used("alice", account.ModeStudent))
	assert.Equal(t, 1, h.accounts.used("alice", account.ModeFreelancer))
}

func TestGenerateDefaultsToFreelancerPolicy(t *testing.T) {
	h := newHarness(t)
	composer, err := prompt.NewDefaultComposer()
	require.NoError(t, err)
	policy, ok := composer.Policy(account.ModeFreelancer)
	require.True(t, ok)

	_, err = h.svc.Generate(context.Background(), alice, validReq)
	require.NoError(t, err)
	assert.Equal(t, policy.MaxTokens, h.generator.lastParams.MaxTokens)
	assert.Equal(t, policy.Temperature, h.generator.lastParams.Temperature)
}

func TestGenerateRejectsInvalidRequestBeforeAnyWork(t *testing.T) {
	for name, req := range map[string]Request{
		"missing input": {Role: "r"},
		"missing role":  {Input: "ctx"},
		"unknown mode":  {Input: "ctx", Role: "r", Mode: "agency"},
	} {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t)
			_, err := h.svc.Generate(context.Background(), alice, req)
			require.Error(t, err)
			assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))
			assert.Zero(t, h.accounts.resolves)
			assert.Zero(t, h.generator.calls)
		})
	}
}

func TestGenerateRequiresIdentity(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.Generate(context.Background(), account.Identity{}, validReq)
	assert.True(t, errors.Is(err, ErrUnauthenticated))
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeUnauthorized))
}

func TestGenerateFailureWritesNothing(t *testing.T) {
	tests := map[string]GenerationResult{
		"upstream error": {},
		"empty text":     {Text: "   "},
	}
	for name, result := range tests {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t)
			h.generator.result = result
			if name == "upstream error" {
				h.generator.err = errors.New("429 from upstream")
			}

			_, err := h.svc.Generate(context.Background(), alice, validReq)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrGenerationFailed))
			assert.Equal(t, 500, platformerrors.ErrorTypeToHTTPStatus(platformerrors.GetPlatformError(err).Type))
			assert.Zero(t, h.proposals.count())
			assert.Equal(t, 0, h.accounts.used("alice", account.ModeFreelancer))
		})
	}
}

func TestGeneratePersistenceFailureSkipsIncrement(t *testing.T) {
	h := newHarness(t)
	h.proposals.createErr = errors.New("insert failed")

	_, err := h.svc.Generate(context.Background(), alice, validReq)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPersistenceFailed))
	assert.Equal(t, 0, h.accounts.used("alice", account.ModeFreelancer))
	assert.Empty(t, h.usage.records)
}

func TestGenerateCountsUsageWhenCallerLeavesAfterSave(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.proposals.afterCreate = cancel

	out, err := h.svc.Generate(ctx, alice, validReq)
	require.NoError(t, err)
	require.NotZero(t, out.Proposal.ID)
	assert.Equal(t, 1, h.accounts.used("alice", account.ModeFreelancer))
	require.Len(t, h.usage.records, 1)
}

func TestGenerateRecordsTokenUsage(t *testing.T) {
	h := newHarness(t)
	out, err := h.svc.Generate(context.Background(), alice, validReq)
	require.NoError(t, err)

	require.Len(t, h.usage.records, 1)
	rec := h.usage.records[0]
	assert.Equal(t, out.Proposal.ID, rec.ProposalID)
	assert.Equal(t, "test-model", rec.Model)
	assert.Equal(t, 12, rec.PromptTokens)
	assert.False(t, rec.Stream)
}

func TestGenerateStreamFinalizes(t *testing.T) {
	h := newHarness(t)
	h.accounts.seed("alice", account.PlanFree, false, map[account.Mode]int{account.ModeFreelancer: 2})

	out, err := h.svc.GenerateStream(context.Background(), alice, validReq)
	require.NoError(t, err)
	require.NotZero(t, out.Proposal.ID)

	pending := h.proposals.get(out.Proposal.ID)
	assert.Equal(t, StatusPending, pending.Status)
	assert.Equal(t, PlaceholderContent, pending.Content)
	assert.True(t, pending.Context.Stream)
	assert.Equal(t, 2, h.accounts.used("alice", account.ModeFreelancer))

	h.generator.finish(GenerationResult{Text: "Streamed text", Model: "test-model", PromptTokens: 5, CompletionTokens: 7}, nil)
	h.wait(t)

	final := h.proposals.get(out.Proposal.ID)
	assert.Equal(t, StatusReview, final.Status)
	assert.Equal(t, "Streamed text", final.Content)
	assert.Nil(t, final.Reason)
	assert.Equal(t, 3, h.accounts.used("alice", account.ModeFreelancer))
	require.Len(t, h.usage.records, 1)
	assert.True(t, h.usage.records[0].Stream)
}

func TestGenerateStreamEmptyCompletionLeavesPending(t *testing.T) {
	h := newHarness(t)

	out, err := h.svc.GenerateStream(context.Background(), alice, validReq)
	require.NoError(t, err)

	h.generator.finish(GenerationResult{Text: ""}, nil)
	h.wait(t)

	assert.Equal(t, StatusPending, h.proposals.get(out.Proposal.ID).Status)
	assert.Equal(t, 0, h.accounts.used("alice", account.ModeFreelancer))
}

func TestGenerateStreamUpstreamErrorLeavesPending(t *testing.T) {
	h := newHarness(t)

	out, err := h.svc.GenerateStream(context.Background(), alice, validReq)
	require.NoError(t, err)

	h.generator.finish(GenerationResult{Text: "partial"}, errors.New("connection reset"))
	h.wait(t)

	assert.Equal(t, StatusPending, h.proposals.get(out.Proposal.ID).Status)
	assert.Equal(t, 0, h.accounts.used("alice", account.ModeFreelancer))
}

func TestGenerateStreamFinalizesAfterCallerCancels(t *testing.T) {
	h := newHarness(t)
	h.accounts.seed("alice", account.PlanPro, true, nil)
	ctx, cancel := context.WithCancel(context.Background())

	out, err := h.svc.GenerateStream(ctx, alice, Request{Input: "ctx", Role: "r", Tone: "bold", MakeClientFocused: true})
	require.NoError(t, err)
	out.Stream.Detach()
	cancel()

	h.generator.finish(GenerationResult{Text: "Done anyway"}, nil)
	h.wait(t)

	final := h.proposals.get(out.Proposal.ID)
	assert.Equal(t, StatusSendReady, final.Status)
	require.NotNil(t, final.Reason)
	assert.Equal(t, ReasonSendReady, *final.Reason)
	assert.Equal(t, 0, h.accounts.used("alice", account.ModeFreelancer))
}

func TestGenerateStreamFinalizeWriteFailureSkipsIncrement(t *testing.T) {
	h := newHarness(t)

	out, err := h.svc.GenerateStream(context.Background(), alice, validReq)
	require.NoError(t, err)
	h.proposals.mu.Lock()
	h.proposals.finalizeErr = errors.New("update failed")
	h.proposals.mu.Unlock()

	h.generator.finish(GenerationResult{Text: "text"}, nil)
	h.wait(t)

	assert.Equal(t, StatusPending, h.proposals.get(out.Proposal.ID).Status)
	assert.Equal(t, 0, h.accounts.used("alice", account.ModeFreelancer))
}

func TestGenerateStreamStartFailure(t *testing.T) {
	h := newHarness(t)
	h.generator.streamErr = errors.New("dial tcp: refused")

	_, err := h.svc.GenerateStream(context.Background(), alice, validReq)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrGenerationFailed))
	assert.Equal(t, int64(0), h.finalizer.InFlight())

	// the placeholder stays as the durable trace of the attempt
	require.Equal(t, 1, h.proposals.count())
	assert.Equal(t, StatusPending, h.proposals.get(1).Status)
	assert.Equal(t, 0, h.accounts.used("alice", account.ModeFreelancer))
}

func TestGenerateStreamQuotaRejectedBeforePlaceholder(t *testing.T) {
	h := newHarness(t)
	h.accounts.seed("alice", account.PlanFree, false, map[account.Mode]int{account.ModeFreelancer: 3})

	_, err := h.svc.GenerateStream(context.Background(), alice, validReq)
	assert.True(t, errors.Is(err, ErrQuotaExhausted))
	assert.Zero(t, h.proposals.count())
	assert.Zero(t, h.generator.calls)
}

func TestGetAndList(t *testing.T) {
	h := newHarness(t)
	out, err := h.svc.Generate(context.Background(), alice, validReq)
	require.NoError(t, err)

	got, err := h.svc.Get(context.Background(), alice, out.Proposal.PublicID)
	require.NoError(t, err)
	assert.Equal(t, out.Proposal.ID, got.ID)

	_, err = h.svc.Get(context.Background(), account.Identity{Subject: "bob"}, out.Proposal.PublicID)
	assert.Error(t, err)

	items, total, err := h.svc.List(context.Background(), alice, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, items, 1)
}
