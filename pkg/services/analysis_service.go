package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/basewatch/basewatch-engine/pkg/metrics"
	"github.com/basewatch/basewatch-engine/pkg/models"
	"github.com/basewatch/basewatch-engine/pkg/repositories"
)

// AnalysisService runs the pattern detector over the stored contract set.
type AnalysisService interface {
	// AnalyzePatterns loads contracts matching the filters (zero filters
	// means the whole repository) and runs every enabled rule.
	AnalyzePatterns(ctx context.Context, filters models.ContractFilters) ([]models.Finding, error)
	// Thresholds returns the legal ceiling table for display.
	Thresholds() []models.LegalThreshold
}

type analysisService struct {
	contracts repositories.ContractRepository
	detector  PatternDetector
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewAnalysisService creates a new AnalysisService.
func NewAnalysisService(
	contracts repositories.ContractRepository,
	detector PatternDetector,
	m *metrics.Metrics,
	logger *zap.Logger,
) AnalysisService {
	return &analysisService{
		contracts: contracts,
		detector:  detector,
		metrics:   m,
		logger:    logger.Named("analysis_service"),
	}
}

var _ AnalysisService = (*analysisService)(nil)

func (s *analysisService) AnalyzePatterns(ctx context.Context, filters models.ContractFilters) ([]models.Finding, error) {
	contracts, err := s.contracts.Search(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to load contracts for analysis: %w", err)
	}

	findings := s.detector.Analyze(contracts)

	s.metrics.RecordAnalysisRun()
	for _, f := range findings {
		s.metrics.RecordFinding(f.Kind, f.Severity)
	}

	s.logger.Info("analysis run",
		zap.Int("contracts", len(contracts)),
		zap.Int("findings", len(findings)))
	return findings, nil
}

func (s *analysisService) Thresholds() []models.LegalThreshold {
	return models.ThresholdTable()
}
