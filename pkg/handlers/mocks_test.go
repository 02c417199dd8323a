package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/basewatch/basewatch-engine/pkg/models"
	"github.com/basewatch/basewatch-engine/pkg/services"
)

// Function-field mocks for the service interfaces. Unset fields panic, which
// surfaces unexpected calls immediately.

type mockContractService struct {
	ingestFn func(ctx context.Context, contracts []*models.Contract) (int, error)
	getFn    func(ctx context.Context, id string) (*models.Contract, error)
	searchFn func(ctx context.Context, filters models.ContractFilters) ([]*models.Contract, error)
	statsFn  func(ctx context.Context) (*models.RepositoryStats, error)
}

var _ services.ContractService = (*mockContractService)(nil)

func (m *mockContractService) Ingest(ctx context.Context, contracts []*models.Contract) (int, error) {
	return m.ingestFn(ctx, contracts)
}

func (m *mockContractService) Get(ctx context.Context, id string) (*models.Contract, error) {
	return m.getFn(ctx, id)
}

func (m *mockContractService) Search(ctx context.Context, filters models.ContractFilters) ([]*models.Contract, error) {
	return m.searchFn(ctx, filters)
}

func (m *mockContractService) Stats(ctx context.Context) (*models.RepositoryStats, error) {
	return m.statsFn(ctx)
}

type mockAnalysisService struct {
	analyzeFn    func(ctx context.Context, filters models.ContractFilters) ([]models.Finding, error)
	thresholdsFn func() []models.LegalThreshold
}

var _ services.AnalysisService = (*mockAnalysisService)(nil)

func (m *mockAnalysisService) AnalyzePatterns(ctx context.Context, filters models.ContractFilters) ([]models.Finding, error) {
	return m.analyzeFn(ctx, filters)
}

func (m *mockAnalysisService) Thresholds() []models.LegalThreshold {
	return m.thresholdsFn()
}

type mockPersonService struct {
	addPersonFn        func(ctx context.Context, person *models.Person) (*models.Person, bool, error)
	getPersonFn        func(ctx context.Context, id uuid.UUID) (*models.Person, error)
	listPersonsFn      func(ctx context.Context) ([]*models.Person, error)
	addAssociationFn   func(ctx context.Context, assoc *models.Association) error
	listAssociationsFn func(ctx context.Context, personID uuid.UUID, activeOnly bool) ([]*models.Association, error)
	endAssociationFn   func(ctx context.Context, id uuid.UUID) error
	addPositionFn      func(ctx context.Context, pos *models.PoliticalPosition) error
	listPositionsFn    func(ctx context.Context, personID uuid.UUID, activeOnly bool) ([]*models.PoliticalPosition, error)
	searchByPersonFn   func(ctx context.Context, name string) (*models.ExpansionResult, error)
}

var _ services.PersonService = (*mockPersonService)(nil)

func (m *mockPersonService) AddPerson(ctx context.Context, person *models.Person) (*models.Person, bool, error) {
	return m.addPersonFn(ctx, person)
}

func (m *mockPersonService) GetPerson(ctx context.Context, id uuid.UUID) (*models.Person, error) {
	return m.getPersonFn(ctx, id)
}

func (m *mockPersonService) ListPersons(ctx context.Context) ([]*models.Person, error) {
	return m.listPersonsFn(ctx)
}

func (m *mockPersonService) AddAssociation(ctx context.Context, assoc *models.Association) error {
	return m.addAssociationFn(ctx, assoc)
}

func (m *mockPersonService) ListAssociations(ctx context.Context, personID uuid.UUID, activeOnly bool) ([]*models.Association, error) {
	return m.listAssociationsFn(ctx, personID, activeOnly)
}

func (m *mockPersonService) EndAssociation(ctx context.Context, id uuid.UUID) error {
	return m.endAssociationFn(ctx, id)
}

func (m *mockPersonService) AddPosition(ctx context.Context, pos *models.PoliticalPosition) error {
	return m.addPositionFn(ctx, pos)
}

func (m *mockPersonService) ListPositions(ctx context.Context, personID uuid.UUID, activeOnly bool) ([]*models.PoliticalPosition, error) {
	return m.listPositionsFn(ctx, personID, activeOnly)
}

func (m *mockPersonService) SearchByPerson(ctx context.Context, name string) (*models.ExpansionResult, error) {
	return m.searchByPersonFn(ctx, name)
}

type mockConflictService struct {
	detectFn       func(ctx context.Context, personID *uuid.UUID) ([]*models.Conflict, error)
	listFn         func(ctx context.Context, unreviewedOnly bool) ([]*models.Conflict, error)
	markReviewedFn func(ctx context.Context, id uuid.UUID) error
}

var _ services.ConflictService = (*mockConflictService)(nil)

func (m *mockConflictService) Detect(ctx context.Context, personID *uuid.UUID) ([]*models.Conflict, error) {
	return m.detectFn(ctx, personID)
}

func (m *mockConflictService) List(ctx context.Context, unreviewedOnly bool) ([]*models.Conflict, error) {
	return m.listFn(ctx, unreviewedOnly)
}

func (m *mockConflictService) MarkReviewed(ctx context.Context, id uuid.UUID) error {
	return m.markReviewedFn(ctx, id)
}

type mockWatchlistService struct {
	addFn           func(ctx context.Context, entity *models.WatchedEntity) (*models.WatchedEntity, bool, error)
	getFn           func(ctx context.Context, id uuid.UUID) (*models.WatchedEntity, error)
	listFn          func(ctx context.Context, activeOnly bool) ([]*models.WatchedEntity, error)
	deactivateFn    func(ctx context.Context, id uuid.UUID) error
	scanFn          func(ctx context.Context, filters models.ContractFilters) ([]*models.Alert, error)
	alertsFn        func(ctx context.Context, unreadOnly bool) ([]*models.Alert, error)
	markReadFn      func(ctx context.Context, id uuid.UUID) error
	markAllReadFn   func(ctx context.Context) (int64, error)
	suggestionsFn   func(ctx context.Context) ([]models.EntitySuggestion, error)
	profileFn       func(ctx context.Context, id uuid.UUID) (*models.EntityProfile, error)
}

var _ services.WatchlistService = (*mockWatchlistService)(nil)

func (m *mockWatchlistService) Add(ctx context.Context, entity *models.WatchedEntity) (*models.WatchedEntity, bool, error) {
	return m.addFn(ctx, entity)
}

func (m *mockWatchlistService) Get(ctx context.Context, id uuid.UUID) (*models.WatchedEntity, error) {
	return m.getFn(ctx, id)
}

func (m *mockWatchlistService) List(ctx context.Context, activeOnly bool) ([]*models.WatchedEntity, error) {
	return m.listFn(ctx, activeOnly)
}

func (m *mockWatchlistService) Deactivate(ctx context.Context, id uuid.UUID) error {
	return m.deactivateFn(ctx, id)
}

func (m *mockWatchlistService) Scan(ctx context.Context, filters models.ContractFilters) ([]*models.Alert, error) {
	return m.scanFn(ctx, filters)
}

func (m *mockWatchlistService) Alerts(ctx context.Context, unreadOnly bool) ([]*models.Alert, error) {
	return m.alertsFn(ctx, unreadOnly)
}

func (m *mockWatchlistService) MarkAlertRead(ctx context.Context, id uuid.UUID) error {
	return m.markReadFn(ctx, id)
}

func (m *mockWatchlistService) MarkAllAlertsRead(ctx context.Context) (int64, error) {
	return m.markAllReadFn(ctx)
}

func (m *mockWatchlistService) Suggestions(ctx context.Context) ([]models.EntitySuggestion, error) {
	return m.suggestionsFn(ctx)
}

func (m *mockWatchlistService) Profile(ctx context.Context, id uuid.UUID) (*models.EntityProfile, error) {
	return m.profileFn(ctx, id)
}

type mockConnectionExplorer struct {
	findFn  func(ctx context.Context, entityID uuid.UUID, depth int) ([]models.Connection, error)
	graphFn func(ctx context.Context, entityID uuid.UUID, depth int) (*models.ConnectionGraph, error)
}

var _ services.ConnectionExplorer = (*mockConnectionExplorer)(nil)

func (m *mockConnectionExplorer) FindConnections(ctx context.Context, entityID uuid.UUID, depth int) ([]models.Connection, error) {
	return m.findFn(ctx, entityID, depth)
}

func (m *mockConnectionExplorer) BuildGraph(ctx context.Context, entityID uuid.UUID, depth int) (*models.ConnectionGraph, error) {
	return m.graphFn(ctx, entityID, depth)
}
