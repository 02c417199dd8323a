package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/basewatch/basewatch-engine/pkg/apperrors"
	"github.com/basewatch/basewatch-engine/pkg/models"
	"github.com/basewatch/basewatch-engine/pkg/repositories"
)

// PersonService manages persons, their political positions and company
// associations, and runs the person-centric contract search.
type PersonService interface {
	// AddPerson is idempotent by name: re-adding an existing name returns
	// the stored person instead of erroring.
	AddPerson(ctx context.Context, person *models.Person) (*models.Person, bool, error)
	GetPerson(ctx context.Context, id uuid.UUID) (*models.Person, error)
	ListPersons(ctx context.Context) ([]*models.Person, error)

	AddAssociation(ctx context.Context, assoc *models.Association) error
	ListAssociations(ctx context.Context, personID uuid.UUID, activeOnly bool) ([]*models.Association, error)
	EndAssociation(ctx context.Context, id uuid.UUID) error

	AddPosition(ctx context.Context, pos *models.PoliticalPosition) error
	ListPositions(ctx context.Context, personID uuid.UUID, activeOnly bool) ([]*models.PoliticalPosition, error)

	// SearchByPerson expands a partial name into the person's direct
	// contracts plus the contracts of every associated company.
	SearchByPerson(ctx context.Context, name string) (*models.ExpansionResult, error)
}

type personService struct {
	persons      repositories.PersonRepository
	associations repositories.AssociationRepository
	positions    repositories.PositionRepository
	contracts    repositories.ContractRepository
	logger       *zap.Logger
}

// NewPersonService creates a new PersonService.
func NewPersonService(
	persons repositories.PersonRepository,
	associations repositories.AssociationRepository,
	positions repositories.PositionRepository,
	contracts repositories.ContractRepository,
	logger *zap.Logger,
) PersonService {
	return &personService{
		persons:      persons,
		associations: associations,
		positions:    positions,
		contracts:    contracts,
		logger:       logger.Named("person_service"),
	}
}

var _ PersonService = (*personService)(nil)

func (s *personService) AddPerson(ctx context.Context, person *models.Person) (*models.Person, bool, error) {
	return s.persons.CreateOrGet(ctx, person)
}

func (s *personService) GetPerson(ctx context.Context, id uuid.UUID) (*models.Person, error) {
	return s.persons.GetByID(ctx, id)
}

func (s *personService) ListPersons(ctx context.Context) ([]*models.Person, error) {
	return s.persons.List(ctx)
}

func (s *personService) AddAssociation(ctx context.Context, assoc *models.Association) error {
	if !models.IsValidRelation(assoc.Relation) {
		return fmt.Errorf("relation %q: %w", assoc.Relation, apperrors.ErrInvalidRelation)
	}
	if _, err := s.persons.GetByID(ctx, assoc.PersonID); err != nil {
		return err
	}
	return s.associations.Create(ctx, assoc)
}

func (s *personService) ListAssociations(ctx context.Context, personID uuid.UUID, activeOnly bool) ([]*models.Association, error) {
	return s.associations.ListByPerson(ctx, personID, activeOnly)
}

func (s *personService) EndAssociation(ctx context.Context, id uuid.UUID) error {
	return s.associations.Deactivate(ctx, id, time.Now())
}

func (s *personService) AddPosition(ctx context.Context, pos *models.PoliticalPosition) error {
	if _, err := s.persons.GetByID(ctx, pos.PersonID); err != nil {
		return err
	}
	return s.positions.Create(ctx, pos)
}

func (s *personService) ListPositions(ctx context.Context, personID uuid.UUID, activeOnly bool) ([]*models.PoliticalPosition, error) {
	return s.positions.ListByPerson(ctx, personID, activeOnly)
}

func (s *personService) SearchByPerson(ctx context.Context, name string) (*models.ExpansionResult, error) {
	result := &models.ExpansionResult{
		PersonName:          name,
		DirectContracts:     []*models.Contract{},
		AssociatedCompanies: []string{},
		CompanyContracts:    []models.AnnotatedContract{},
	}

	matches, err := s.persons.SearchByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to search persons: %w", err)
	}
	if len(matches) == 0 {
		s.logger.Info("person not found", zap.String("name", name))
		return result, nil
	}
	person := matches[0]
	result.Person = person

	// Direct contracts: the queried name as either party. A contract
	// matching both sides appears twice; callers expect the raw union.
	asAwarder, err := s.contracts.SearchByAwarder(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to search direct contracts: %w", err)
	}
	asAwardee, err := s.contracts.SearchByAwardee(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to search direct contracts: %w", err)
	}
	result.DirectContracts = append(asAwarder, asAwardee...)

	associations, err := s.associations.ListByPerson(ctx, person.ID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list associations: %w", err)
	}

	for _, assoc := range associations {
		result.AssociatedCompanies = append(result.AssociatedCompanies, assoc.CompanyName)
	}

	for _, company := range result.AssociatedCompanies {
		contracts, err := s.contracts.SearchByAwardee(ctx, company)
		if err != nil {
			return nil, fmt.Errorf("failed to search contracts for %s: %w", company, err)
		}
		relation := relationForCompany(associations, company)
		for _, c := range contracts {
			result.CompanyContracts = append(result.CompanyContracts, models.AnnotatedContract{
				Contract:   c,
				ViaCompany: company,
				Relation:   relation,
			})
		}
	}

	result.TotalContracts = len(result.DirectContracts) + len(result.CompanyContracts)
	for _, c := range result.DirectContracts {
		result.TotalValue += c.Value
	}
	for _, c := range result.CompanyContracts {
		result.TotalValue += c.Value
	}

	s.logger.Info("person search complete",
		zap.String("name", name),
		zap.Int("total_contracts", result.TotalContracts),
		zap.Float64("total_value", result.TotalValue))
	return result, nil
}

// relationForCompany returns the first matching association's relation kind.
// "unknown" covers an association removed between the two lookups.
func relationForCompany(associations []*models.Association, company string) string {
	for _, a := range associations {
		if a.CompanyName == company {
			return a.Relation
		}
	}
	return "unknown"
}
