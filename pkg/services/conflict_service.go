package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/basewatch/basewatch-engine/pkg/metrics"
	"github.com/basewatch/basewatch-engine/pkg/models"
	"github.com/basewatch/basewatch-engine/pkg/repositories"
)

// Awarder names containing any of these mark the contract as public money.
var publicBodyKeywords = []string{
	"câmara", "junta", "assembleia", "governo", "ministério",
	"instituto", "agência", "autarquia", "município", "freguesia",
}

// Position titles containing any of these escalate a conflict to high.
var highOfficeKeywords = []string{
	"ministro", "secretário", "presidente", "deputado",
}

// ConflictService cross-references office holders, their company
// associations, and public contract awards.
type ConflictService interface {
	// Detect scans for conflicts of interest, optionally restricted to one
	// person. New conflicts are persisted; previously recorded ones are
	// skipped on write but still included in the returned set. Safe to
	// re-run: detection is idempotent by (person, contract).
	Detect(ctx context.Context, personID *uuid.UUID) ([]*models.Conflict, error)
	List(ctx context.Context, unreviewedOnly bool) ([]*models.Conflict, error)
	MarkReviewed(ctx context.Context, id uuid.UUID) error
}

type conflictService struct {
	positions    repositories.PositionRepository
	associations repositories.AssociationRepository
	contracts    repositories.ContractRepository
	conflicts    repositories.ConflictRepository
	metrics      *metrics.Metrics
	logger       *zap.Logger
}

// NewConflictService creates a new ConflictService.
func NewConflictService(
	positions repositories.PositionRepository,
	associations repositories.AssociationRepository,
	contracts repositories.ContractRepository,
	conflicts repositories.ConflictRepository,
	m *metrics.Metrics,
	logger *zap.Logger,
) ConflictService {
	return &conflictService{
		positions:    positions,
		associations: associations,
		contracts:    contracts,
		conflicts:    conflicts,
		metrics:      m,
		logger:       logger.Named("conflict_service"),
	}
}

var _ ConflictService = (*conflictService)(nil)

func (s *conflictService) Detect(ctx context.Context, personID *uuid.UUID) ([]*models.Conflict, error) {
	holders, err := s.positions.ListActiveHolders(ctx, personID)
	if err != nil {
		return nil, fmt.Errorf("failed to load office holders: %w", err)
	}

	var found []*models.Conflict
	for _, holder := range holders {
		associations, err := s.associations.ListByPerson(ctx, holder.Person.ID, true)
		if err != nil {
			return nil, fmt.Errorf("failed to load associations for %s: %w", holder.Person.Name, err)
		}

		for _, assoc := range associations {
			contracts, err := s.contracts.SearchByAwardee(ctx, assoc.CompanyName)
			if err != nil {
				return nil, fmt.Errorf("failed to load contracts for %s: %w", assoc.CompanyName, err)
			}

			for _, contract := range contracts {
				if !isPublicBody(contract.Awarder) {
					continue
				}

				conflict := &models.Conflict{
					PersonID:    holder.Person.ID,
					PersonName:  holder.Person.Name,
					CompanyName: assoc.CompanyName,
					ContractID:  contract.ID,
					Kind:        models.ConflictOfficeHolderSupplier,
					Severity:    conflictSeverity(holder.Position, contract.Awarder),
					Description: fmt.Sprintf("%s (%s) has %s in %s, which holds a contract with %s",
						holder.Person.Name, holder.Position.Title, assoc.Relation,
						assoc.CompanyName, contract.Awarder),
				}
				found = append(found, conflict)

				exists, err := s.conflicts.Exists(ctx, conflict.PersonID, conflict.ContractID)
				if err != nil {
					return nil, fmt.Errorf("failed to check for existing conflict: %w", err)
				}
				if exists {
					continue
				}
				if err := s.conflicts.Create(ctx, conflict); err != nil {
					return nil, err
				}
				s.metrics.RecordConflict(conflict.Severity)
			}
		}
	}

	s.logger.Info("conflict detection complete",
		zap.Int("office_holders", len(holders)),
		zap.Int("conflicts", len(found)))
	return found, nil
}

func (s *conflictService) List(ctx context.Context, unreviewedOnly bool) ([]*models.Conflict, error) {
	return s.conflicts.List(ctx, unreviewedOnly)
}

func (s *conflictService) MarkReviewed(ctx context.Context, id uuid.UUID) error {
	return s.conflicts.MarkReviewed(ctx, id)
}

func isPublicBody(awarder string) bool {
	lower := strings.ToLower(awarder)
	for _, kw := range publicBodyKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// conflictSeverity starts at medium, escalates to high for high offices, and
// to critical when the office holder's own institution is the awarder.
func conflictSeverity(pos *models.PoliticalPosition, awarder string) string {
	severity := models.SeverityMedium

	title := strings.ToLower(pos.Title)
	for _, kw := range highOfficeKeywords {
		if strings.Contains(title, kw) {
			severity = models.SeverityHigh
			break
		}
	}

	if pos.Entity != nil {
		entity := strings.ToLower(strings.TrimSpace(*pos.Entity))
		if entity != "" && strings.Contains(strings.ToLower(awarder), entity) {
			severity = models.SeverityCritical
		}
	}

	return severity
}
