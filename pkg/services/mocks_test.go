package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/basewatch/basewatch-engine/pkg/apperrors"
	"github.com/basewatch/basewatch-engine/pkg/models"
	"github.com/basewatch/basewatch-engine/pkg/repositories"
)

// In-memory repository fakes shared by the service tests.

type mockContractRepo struct {
	contracts []*models.Contract
}

var _ repositories.ContractRepository = (*mockContractRepo)(nil)

func (m *mockContractRepo) CreateBatch(_ context.Context, contracts []*models.Contract) (int, error) {
	existing := make(map[string]bool, len(m.contracts))
	for _, c := range m.contracts {
		existing[c.ID] = true
	}
	inserted := 0
	for _, c := range contracts {
		if existing[c.ID] {
			continue
		}
		existing[c.ID] = true
		m.contracts = append(m.contracts, c)
		inserted++
	}
	return inserted, nil
}

func (m *mockContractRepo) GetByID(_ context.Context, id string) (*models.Contract, error) {
	for _, c := range m.contracts {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, fmt.Errorf("contract %s: %w", id, apperrors.ErrNotFound)
}

func (m *mockContractRepo) Search(_ context.Context, filters models.ContractFilters) ([]*models.Contract, error) {
	var out []*models.Contract
	for _, c := range m.contracts {
		if filters.Awarder != "" && !containsFold(c.Awarder, filters.Awarder) {
			continue
		}
		if filters.Awardee != "" && !containsFold(c.Awardee, filters.Awardee) {
			continue
		}
		if filters.DateFrom != nil && (c.ContractDate == nil || c.ContractDate.Before(*filters.DateFrom)) {
			continue
		}
		if filters.DateTo != nil && (c.ContractDate == nil || c.ContractDate.After(*filters.DateTo)) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (m *mockContractRepo) SearchByParty(_ context.Context, name string, nif *string) ([]*models.Contract, error) {
	var out []*models.Contract
	for _, c := range m.contracts {
		if c.InvolvesEntity(name, nif).Involved() {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockContractRepo) SearchByAwarder(_ context.Context, name string) ([]*models.Contract, error) {
	var out []*models.Contract
	for _, c := range m.contracts {
		if containsFold(c.Awarder, name) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockContractRepo) SearchByAwardee(_ context.Context, name string) ([]*models.Contract, error) {
	var out []*models.Contract
	for _, c := range m.contracts {
		if containsFold(c.Awardee, name) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockContractRepo) Stats(_ context.Context) (int, float64, []models.YearCount, error) {
	total := 0.0
	for _, c := range m.contracts {
		total += c.Value
	}
	return len(m.contracts), total, nil, nil
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

type mockPersonRepo struct {
	persons []*models.Person
}

var _ repositories.PersonRepository = (*mockPersonRepo)(nil)

func (m *mockPersonRepo) CreateOrGet(_ context.Context, p *models.Person) (*models.Person, bool, error) {
	for _, existing := range m.persons {
		if existing.Name == p.Name {
			return existing, false, nil
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	m.persons = append(m.persons, p)
	return p, true, nil
}

func (m *mockPersonRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Person, error) {
	for _, p := range m.persons {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("person %s: %w", id, apperrors.ErrNotFound)
}

func (m *mockPersonRepo) SearchByName(_ context.Context, name string) ([]*models.Person, error) {
	var out []*models.Person
	for _, p := range m.persons {
		if containsFold(p.Name, name) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockPersonRepo) List(_ context.Context) ([]*models.Person, error) {
	return m.persons, nil
}

type mockAssociationRepo struct {
	associations []*models.Association
}

var _ repositories.AssociationRepository = (*mockAssociationRepo)(nil)

func (m *mockAssociationRepo) Create(_ context.Context, a *models.Association) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.Active = a.EndDate == nil
	m.associations = append(m.associations, a)
	return nil
}

func (m *mockAssociationRepo) ListByPerson(_ context.Context, personID uuid.UUID, activeOnly bool) ([]*models.Association, error) {
	var out []*models.Association
	for _, a := range m.associations {
		if a.PersonID != personID {
			continue
		}
		if activeOnly && !a.Active {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (m *mockAssociationRepo) Deactivate(_ context.Context, id uuid.UUID, endDate time.Time) error {
	for _, a := range m.associations {
		if a.ID == id {
			a.Active = false
			a.EndDate = &endDate
			return nil
		}
	}
	return apperrors.ErrNotFound
}

type mockPositionRepo struct {
	positions []*models.PoliticalPosition
	persons   *mockPersonRepo
}

var _ repositories.PositionRepository = (*mockPositionRepo)(nil)

func (m *mockPositionRepo) Create(_ context.Context, p *models.PoliticalPosition) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.Active = p.EndDate == nil
	m.positions = append(m.positions, p)
	return nil
}

func (m *mockPositionRepo) ListByPerson(_ context.Context, personID uuid.UUID, activeOnly bool) ([]*models.PoliticalPosition, error) {
	var out []*models.PoliticalPosition
	for _, p := range m.positions {
		if p.PersonID != personID {
			continue
		}
		if activeOnly && !p.Active {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *mockPositionRepo) ListActiveHolders(ctx context.Context, personID *uuid.UUID) ([]models.OfficeHolder, error) {
	var out []models.OfficeHolder
	for _, pos := range m.positions {
		if !pos.Active {
			continue
		}
		if personID != nil && pos.PersonID != *personID {
			continue
		}
		person, err := m.persons.GetByID(ctx, pos.PersonID)
		if err != nil {
			return nil, err
		}
		out = append(out, models.OfficeHolder{Person: person, Position: pos})
	}
	return out, nil
}

func (m *mockPositionRepo) Deactivate(_ context.Context, id uuid.UUID, endDate time.Time) error {
	for _, p := range m.positions {
		if p.ID == id {
			p.Active = false
			p.EndDate = &endDate
			return nil
		}
	}
	return apperrors.ErrNotFound
}

type mockConflictRepo struct {
	conflicts []*models.Conflict
}

var _ repositories.ConflictRepository = (*mockConflictRepo)(nil)

func (m *mockConflictRepo) Create(_ context.Context, c *models.Conflict) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	m.conflicts = append(m.conflicts, c)
	return nil
}

func (m *mockConflictRepo) Exists(_ context.Context, personID uuid.UUID, contractID string) (bool, error) {
	for _, c := range m.conflicts {
		if c.PersonID == personID && c.ContractID == contractID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockConflictRepo) List(_ context.Context, unreviewedOnly bool) ([]*models.Conflict, error) {
	var out []*models.Conflict
	for _, c := range m.conflicts {
		if unreviewedOnly && c.Reviewed {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (m *mockConflictRepo) MarkReviewed(_ context.Context, id uuid.UUID) error {
	for _, c := range m.conflicts {
		if c.ID == id {
			c.Reviewed = true
			return nil
		}
	}
	return apperrors.ErrNotFound
}

type mockWatchedEntityRepo struct {
	entities []*models.WatchedEntity
}

var _ repositories.WatchedEntityRepository = (*mockWatchedEntityRepo)(nil)

func (m *mockWatchedEntityRepo) CreateOrGet(_ context.Context, e *models.WatchedEntity) (*models.WatchedEntity, bool, error) {
	for _, existing := range m.entities {
		if existing.Name == e.Name && strPtrEq(existing.NIF, e.NIF) {
			return existing, false, nil
		}
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.Active = true
	m.entities = append(m.entities, e)
	return e, true, nil
}

func (m *mockWatchedEntityRepo) GetByID(_ context.Context, id uuid.UUID) (*models.WatchedEntity, error) {
	for _, e := range m.entities {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, fmt.Errorf("watched entity %s: %w", id, apperrors.ErrNotFound)
}

func (m *mockWatchedEntityRepo) List(_ context.Context, activeOnly bool) ([]*models.WatchedEntity, error) {
	var out []*models.WatchedEntity
	for _, e := range m.entities {
		if activeOnly && !e.Active {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *mockWatchedEntityRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	for _, e := range m.entities {
		if e.ID == id {
			e.Active = false
			return nil
		}
	}
	return apperrors.ErrNotFound
}

type mockAlertRepo struct {
	alerts []*models.Alert
}

var _ repositories.AlertRepository = (*mockAlertRepo)(nil)

func (m *mockAlertRepo) Create(_ context.Context, a *models.Alert) (bool, error) {
	for _, existing := range m.alerts {
		if existing.ContractID == a.ContractID && existing.EntityID == a.EntityID {
			return false, nil
		}
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	m.alerts = append(m.alerts, a)
	return true, nil
}

func (m *mockAlertRepo) List(_ context.Context, unreadOnly bool) ([]*models.Alert, error) {
	var out []*models.Alert
	for _, a := range m.alerts {
		if unreadOnly && a.Read {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (m *mockAlertRepo) MarkRead(_ context.Context, id uuid.UUID) error {
	for _, a := range m.alerts {
		if a.ID == id {
			a.Read = true
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (m *mockAlertRepo) MarkAllRead(_ context.Context) (int64, error) {
	var n int64
	for _, a := range m.alerts {
		if !a.Read {
			a.Read = true
			n++
		}
	}
	return n, nil
}

func (m *mockAlertRepo) CountUnread(_ context.Context) (int, error) {
	n := 0
	for _, a := range m.alerts {
		if !a.Read {
			n++
		}
	}
	return n, nil
}

func strPtrEq(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
