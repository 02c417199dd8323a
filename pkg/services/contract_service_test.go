package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/basewatch/basewatch-engine/pkg/apperrors"
	"github.com/basewatch/basewatch-engine/pkg/models"
	"github.com/basewatch/basewatch-engine/pkg/retry"
)

type contractFixture struct {
	contracts *mockContractRepo
	watched   *mockWatchedEntityRepo
	alerts    *mockAlertRepo
	service   ContractService
}

func newContractFixture() *contractFixture {
	f := &contractFixture{
		contracts: &mockContractRepo{},
		watched:   &mockWatchedEntityRepo{},
		alerts:    &mockAlertRepo{},
	}
	f.service = NewContractService(f.contracts, f.watched, f.alerts, nil, zap.NewNop())
	return f
}

func TestContractIngest_SkipsDuplicates(t *testing.T) {
	f := newContractFixture()
	ctx := context.Background()

	batch := []*models.Contract{
		{ID: "CT-1", Awarder: "Município de Faro", Awardee: "Empreitadas Sul SA", Value: 45_000},
		{ID: "CT-2", Awarder: "Município de Faro", Awardee: "Empreitadas Sul SA", Value: 12_500},
	}
	inserted, err := f.service.Ingest(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	inserted, err = f.service.Ingest(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 0, inserted)
}

func TestContractIngest_RejectsEmptyID(t *testing.T) {
	f := newContractFixture()

	_, err := f.service.Ingest(context.Background(), []*models.Contract{
		{ID: "  ", Awarder: "Município de Faro", Awardee: "Empreitadas Sul SA", Value: 45_000},
	})
	assert.ErrorContains(t, err, "empty id")
}

func TestContractIngest_RejectsNegativeValue(t *testing.T) {
	f := newContractFixture()

	_, err := f.service.Ingest(context.Background(), []*models.Contract{
		{ID: "CT-1", Awarder: "Município de Faro", Awardee: "Empreitadas Sul SA", Value: -1},
	})
	assert.ErrorContains(t, err, "negative value")
}

func TestContractIngest_BackfillsCollectedAt(t *testing.T) {
	f := newContractFixture()

	c := &models.Contract{ID: "CT-1", Awarder: "Município de Faro", Awardee: "Empreitadas Sul SA", Value: 45_000}
	_, err := f.service.Ingest(context.Background(), []*models.Contract{c})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), c.CollectedAt, time.Minute)
}

// flakyContractRepo fails CreateBatch a configured number of times before
// delegating to the in-memory repo.
type flakyContractRepo struct {
	*mockContractRepo
	failWith error
	failures int
	calls    int
}

func (f *flakyContractRepo) CreateBatch(ctx context.Context, contracts []*models.Contract) (int, error) {
	f.calls++
	if f.calls <= f.failures {
		return 0, f.failWith
	}
	return f.mockContractRepo.CreateBatch(ctx, contracts)
}

func fastRetryConfig() *retry.Config {
	return &retry.Config{
		MaxRetries:   2,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestContractIngest_RetriesTransientBatchFailure(t *testing.T) {
	repo := &flakyContractRepo{
		mockContractRepo: &mockContractRepo{},
		failWith:         errors.New("connection reset by peer"),
		failures:         1,
	}
	service := NewContractService(repo, &mockWatchedEntityRepo{}, &mockAlertRepo{}, nil, zap.NewNop())
	service.(*contractService).retryCfg = fastRetryConfig()

	inserted, err := service.Ingest(context.Background(), []*models.Contract{
		{ID: "CT-1", Awarder: "Município de Faro", Awardee: "Empreitadas Sul SA", Value: 45_000},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)
	assert.Equal(t, 2, repo.calls)
}

func TestContractIngest_PermanentBatchFailureNotRetried(t *testing.T) {
	repo := &flakyContractRepo{
		mockContractRepo: &mockContractRepo{},
		failWith:         errors.New("syntax error at or near SELECT"),
		failures:         10,
	}
	service := NewContractService(repo, &mockWatchedEntityRepo{}, &mockAlertRepo{}, nil, zap.NewNop())
	service.(*contractService).retryCfg = fastRetryConfig()

	_, err := service.Ingest(context.Background(), []*models.Contract{
		{ID: "CT-1", Awarder: "Município de Faro", Awardee: "Empreitadas Sul SA", Value: 45_000},
	})
	assert.ErrorContains(t, err, "syntax error")
	assert.Equal(t, 1, repo.calls)
}

func TestContractGet_NotFound(t *testing.T) {
	f := newContractFixture()

	_, err := f.service.Get(context.Background(), "CT-missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestContractStats_AggregatesAcrossRepositories(t *testing.T) {
	f := newContractFixture()
	ctx := context.Background()

	_, err := f.service.Ingest(ctx, []*models.Contract{
		{ID: "CT-1", Awarder: "Município de Faro", Awardee: "Empreitadas Sul SA", Value: 45_000},
		{ID: "CT-2", Awarder: "Município de Faro", Awardee: "Empreitadas Sul SA", Value: 5_000},
	})
	require.NoError(t, err)

	_, _, err = f.watched.CreateOrGet(ctx, &models.WatchedEntity{Name: "Empreitadas Sul SA", Kind: models.WatchedKindCompany})
	require.NoError(t, err)
	_, err = f.alerts.Create(ctx, &models.Alert{ContractID: "CT-1", Kind: models.AlertKindNormal})
	require.NoError(t, err)

	stats, err := f.service.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalContracts)
	assert.InDelta(t, 50_000.0, stats.TotalValue, 0.01)
	assert.Equal(t, 1, stats.WatchedEntities)
	assert.Equal(t, 1, stats.UnreadAlerts)
}
