package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/basewatch/basewatch-engine/pkg/metrics"
	"github.com/basewatch/basewatch-engine/pkg/models"
	"github.com/basewatch/basewatch-engine/pkg/repositories"
	"github.com/basewatch/basewatch-engine/pkg/retry"
)

// ContractService handles contract ingestion, search, and store statistics.
type ContractService interface {
	// Ingest stores a batch of contracts. Records already present (same id)
	// are skipped; the returned count is the number actually inserted.
	Ingest(ctx context.Context, contracts []*models.Contract) (int, error)
	Get(ctx context.Context, id string) (*models.Contract, error)
	Search(ctx context.Context, filters models.ContractFilters) ([]*models.Contract, error)
	Stats(ctx context.Context) (*models.RepositoryStats, error)
}

type contractService struct {
	contracts repositories.ContractRepository
	watched   repositories.WatchedEntityRepository
	alerts    repositories.AlertRepository
	metrics   *metrics.Metrics
	logger    *zap.Logger
	retryCfg  *retry.Config
}

// NewContractService creates a new ContractService.
func NewContractService(
	contracts repositories.ContractRepository,
	watched repositories.WatchedEntityRepository,
	alerts repositories.AlertRepository,
	m *metrics.Metrics,
	logger *zap.Logger,
) ContractService {
	return &contractService{
		contracts: contracts,
		watched:   watched,
		alerts:    alerts,
		metrics:   m,
		logger:    logger.Named("contract_service"),
		retryCfg:  retry.DefaultConfig(),
	}
}

var _ ContractService = (*contractService)(nil)

func (s *contractService) Ingest(ctx context.Context, contracts []*models.Contract) (int, error) {
	valid := make([]*models.Contract, 0, len(contracts))
	for _, c := range contracts {
		if strings.TrimSpace(c.ID) == "" {
			return 0, fmt.Errorf("contract with empty id")
		}
		if c.Value < 0 {
			return 0, fmt.Errorf("contract %s has negative value", c.ID)
		}
		if c.CollectedAt.IsZero() {
			c.CollectedAt = time.Now()
		}
		valid = append(valid, c)
	}

	// Large BASE batches can trip transient deadlocks against a concurrent
	// scan; permanent errors surface immediately.
	var inserted int
	err := retry.DoIfRetryable(ctx, s.retryCfg, func() error {
		var batchErr error
		inserted, batchErr = s.contracts.CreateBatch(ctx, valid)
		return batchErr
	})
	if err != nil {
		return 0, err
	}

	s.metrics.RecordContractsIngested(inserted)
	s.logger.Info("contracts ingested",
		zap.Int("received", len(contracts)),
		zap.Int("inserted", inserted))
	return inserted, nil
}

func (s *contractService) Get(ctx context.Context, id string) (*models.Contract, error) {
	return s.contracts.GetByID(ctx, id)
}

func (s *contractService) Search(ctx context.Context, filters models.ContractFilters) ([]*models.Contract, error) {
	return s.contracts.Search(ctx, filters)
}

func (s *contractService) Stats(ctx context.Context) (*models.RepositoryStats, error) {
	count, total, byYear, err := s.contracts.Stats(ctx)
	if err != nil {
		return nil, err
	}
	watched, err := s.watched.List(ctx, true)
	if err != nil {
		return nil, err
	}
	unread, err := s.alerts.CountUnread(ctx)
	if err != nil {
		return nil, err
	}

	return &models.RepositoryStats{
		TotalContracts:  count,
		TotalValue:      total,
		WatchedEntities: len(watched),
		UnreadAlerts:    unread,
		ContractsByYear: byYear,
	}, nil
}
