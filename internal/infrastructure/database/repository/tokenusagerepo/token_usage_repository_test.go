package tokenusagerepo

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jan-server/services/proposal-api/internal/domain/tokenusage"
	"jan-server/services/proposal-api/internal/infrastructure/database/databasetest"
)

func TestCreateAndSummarize(t *testing.T) {
	repo := NewTokenUsageGormRepository(databasetest.Open(t))
	ctx := context.Background()

	rows := []*tokenusage.TokenUsage{
		{AccountID: 1, Model: "m-a", Mode: "freelancer", PromptTokens: 10, CompletionTokens: 20, TotalTokens: 30, EstimatedCostUSD: decimal.NewFromFloat(0.25)},
		{AccountID: 1, Model: "m-a", Mode: "student", PromptTokens: 5, CompletionTokens: 5, TotalTokens: 10, EstimatedCostUSD: decimal.NewFromFloat(0.5)},
		{AccountID: 1, Model: "m-b", Mode: "freelancer", PromptTokens: 1, CompletionTokens: 1, TotalTokens: 2, EstimatedCostUSD: decimal.NewFromFloat(0.125)},
		{AccountID: 2, Model: "m-a", Mode: "freelancer", PromptTokens: 100, CompletionTokens: 100, TotalTokens: 200},
	}
	for _, row := range rows {
		require.NoError(t, repo.Create(ctx, row))
		assert.NotZero(t, row.ID)
	}

	summaries, err := repo.SummarizeByAccount(ctx, 1)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, "m-a", summaries[0].Model)
	assert.Equal(t, int64(15), summaries[0].TotalPromptTokens)
	assert.Equal(t, int64(40), summaries[0].TotalTokens)
	assert.Equal(t, int64(2), summaries[0].RequestCount)
	assert.True(t, summaries[0].EstimatedCostUSD.Equal(decimal.NewFromFloat(0.75)), summaries[0].EstimatedCostUSD.String())

	assert.Equal(t, "m-b", summaries[1].Model)
	assert.Equal(t, int64(1), summaries[1].RequestCount)
}

func TestSummarizeEmptyAccount(t *testing.T) {
	repo := NewTokenUsageGormRepository(databasetest.Open(t))
	summaries, err := repo.SummarizeByAccount(context.Background(), 42)
	require.NoError(t, err)
	assert.Empty(t, summaries)
}
