package domain

import (
	"github.com/google/wire"

	"jan-server/services/proposal-api/internal/config"
	"jan-server/services/proposal-api/internal/domain/account"
	"jan-server/services/proposal-api/internal/domain/prompt"
	"jan-server/services/proposal-api/internal/domain/proposal"
	"jan-server/services/proposal-api/internal/domain/tokenusage"
)

// ServiceProvider provides all domain services
var ServiceProvider = wire.NewSet(
	// Account domain
	ProvideLimits,
	account.NewLedger,
	account.NewResolver,

	// Prompt composition
	prompt.NewDefaultComposer,

	// Proposal pipeline
	ProvideProposalConfig,
	proposal.NewFinalizer,
	proposal.NewService,

	// Token usage
	tokenusage.NewService,
	wire.Bind(new(proposal.UsageRecorder), new(*tokenusage.Service)),
)

func ProvideLimits(cfg *config.Config) account.Limits {
	return account.NewLimits(cfg.Limits())
}

func ProvideProposalConfig(cfg *config.Config) proposal.Config {
	return proposal.Config{
		FinalizeTimeout: cfg.FinalizeTimeout,
	}
}
