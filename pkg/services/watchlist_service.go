package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/basewatch/basewatch-engine/pkg/metrics"
	"github.com/basewatch/basewatch-engine/pkg/models"
	"github.com/basewatch/basewatch-engine/pkg/repositories"
)

// Suggestion thresholds: counterparties below either are not worth watching.
const (
	suggestionMinContracts  = 5
	suggestionMinTotalValue = 100_000.0
)

// WatchlistService manages the watch list and its derived products: alerts
// raised when stored contracts involve a watched entity, activity profiles,
// and suggestions for entities worth adding.
type WatchlistService interface {
	// Add is idempotent by (name, NIF): re-adding returns the stored entry.
	Add(ctx context.Context, entity *models.WatchedEntity) (*models.WatchedEntity, bool, error)
	Get(ctx context.Context, id uuid.UUID) (*models.WatchedEntity, error)
	List(ctx context.Context, activeOnly bool) ([]*models.WatchedEntity, error)
	Deactivate(ctx context.Context, id uuid.UUID) error

	// Scan matches stored contracts against every active watch list entry
	// and raises an alert per new (contract, entity) hit. The filters can
	// restrict the scan to a date range; zero filters scan everything.
	Scan(ctx context.Context, filters models.ContractFilters) ([]*models.Alert, error)
	Alerts(ctx context.Context, unreadOnly bool) ([]*models.Alert, error)
	MarkAlertRead(ctx context.Context, id uuid.UUID) error
	MarkAllAlertsRead(ctx context.Context) (int64, error)

	// Suggestions ranks counterparties that recur often enough to watch.
	Suggestions(ctx context.Context) ([]models.EntitySuggestion, error)
	// Profile summarizes a watched entity's contract activity.
	Profile(ctx context.Context, id uuid.UUID) (*models.EntityProfile, error)
}

type watchlistService struct {
	watched   repositories.WatchedEntityRepository
	alerts    repositories.AlertRepository
	contracts repositories.ContractRepository
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewWatchlistService creates a new WatchlistService.
func NewWatchlistService(
	watched repositories.WatchedEntityRepository,
	alerts repositories.AlertRepository,
	contracts repositories.ContractRepository,
	m *metrics.Metrics,
	logger *zap.Logger,
) WatchlistService {
	return &watchlistService{
		watched:   watched,
		alerts:    alerts,
		contracts: contracts,
		metrics:   m,
		logger:    logger.Named("watchlist_service"),
	}
}

var _ WatchlistService = (*watchlistService)(nil)

func (s *watchlistService) Add(ctx context.Context, entity *models.WatchedEntity) (*models.WatchedEntity, bool, error) {
	return s.watched.CreateOrGet(ctx, entity)
}

func (s *watchlistService) Get(ctx context.Context, id uuid.UUID) (*models.WatchedEntity, error) {
	return s.watched.GetByID(ctx, id)
}

func (s *watchlistService) List(ctx context.Context, activeOnly bool) ([]*models.WatchedEntity, error) {
	return s.watched.List(ctx, activeOnly)
}

func (s *watchlistService) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.watched.Deactivate(ctx, id)
}

func (s *watchlistService) Scan(ctx context.Context, filters models.ContractFilters) ([]*models.Alert, error) {
	entities, err := s.watched.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to load watch list: %w", err)
	}
	contracts, err := s.contracts.Search(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to load contracts: %w", err)
	}

	var raised []*models.Alert
	for _, contract := range contracts {
		for _, entity := range entities {
			roles := contract.InvolvesEntity(entity.Name, entity.NIF)
			if !roles.Involved() {
				continue
			}

			kind := models.AlertKindNormal
			if contract.Value > models.HighValueAlertThreshold {
				kind = models.AlertKindHighValue
			}

			role := models.RoleAwardee
			if roles.AsAwarder {
				role = models.RoleAwarder
			}

			alert := &models.Alert{
				ContractID: contract.ID,
				EntityID:   entity.ID,
				EntityName: entity.Name,
				Kind:       kind,
				Message: fmt.Sprintf("%s appears as %s in contract %s (%.2f)",
					entity.Name, role, contract.ID, contract.Value),
			}

			created, err := s.alerts.Create(ctx, alert)
			if err != nil {
				return nil, err
			}
			if created {
				raised = append(raised, alert)
				s.metrics.RecordAlert(kind)
			}
		}
	}

	s.logger.Info("watch list scan complete",
		zap.Int("entities", len(entities)),
		zap.Int("contracts", len(contracts)),
		zap.Int("alerts_raised", len(raised)))
	return raised, nil
}

func (s *watchlistService) Alerts(ctx context.Context, unreadOnly bool) ([]*models.Alert, error) {
	return s.alerts.List(ctx, unreadOnly)
}

func (s *watchlistService) MarkAlertRead(ctx context.Context, id uuid.UUID) error {
	return s.alerts.MarkRead(ctx, id)
}

func (s *watchlistService) MarkAllAlertsRead(ctx context.Context) (int64, error) {
	return s.alerts.MarkAllRead(ctx)
}

type suggestionStats struct {
	contracts int
	total     float64
	asAwarder int
	asAwardee int
	nifs      []string
}

func (s *watchlistService) Suggestions(ctx context.Context) ([]models.EntitySuggestion, error) {
	contracts, err := s.contracts.Search(ctx, models.ContractFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to load contracts: %w", err)
	}
	watched, err := s.watched.List(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to load watch list: %w", err)
	}
	watchedNames := make(map[string]bool, len(watched))
	for _, e := range watched {
		watchedNames[strings.ToLower(e.Name)] = true
	}

	stats := make(map[string]*suggestionStats)
	tally := func(name string, nif *string, value float64, awarder bool) {
		if name == "" {
			return
		}
		st := stats[name]
		if st == nil {
			st = &suggestionStats{}
			stats[name] = st
		}
		st.contracts++
		st.total += value
		if awarder {
			st.asAwarder++
		} else {
			st.asAwardee++
		}
		if nif != nil && *nif != "" {
			st.nifs = append(st.nifs, *nif)
		}
	}

	for _, c := range contracts {
		tally(c.Awarder, c.AwarderNIF, c.Value, true)
		tally(c.Awardee, c.AwardeeNIF, c.Value, false)
	}

	var suggestions []models.EntitySuggestion
	for name, st := range stats {
		if st.contracts < suggestionMinContracts || st.total < suggestionMinTotalValue {
			continue
		}
		if watchedNames[strings.ToLower(name)] {
			continue
		}

		var nif *string
		if len(st.nifs) > 0 {
			nif = &st.nifs[0]
		}
		suggestions = append(suggestions, models.EntitySuggestion{
			Name:          name,
			NIF:           nif,
			ContractCount: st.contracts,
			TotalValue:    st.total,
			AsAwarder:     st.asAwarder,
			AsAwardee:     st.asAwardee,
		})
	}

	sort.Slice(suggestions, func(i, j int) bool {
		if suggestions[i].TotalValue != suggestions[j].TotalValue {
			return suggestions[i].TotalValue > suggestions[j].TotalValue
		}
		return suggestions[i].Name < suggestions[j].Name
	})

	return suggestions, nil
}

func (s *watchlistService) Profile(ctx context.Context, id uuid.UUID) (*models.EntityProfile, error) {
	entity, err := s.watched.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	contracts, err := s.contracts.SearchByParty(ctx, entity.Name, entity.NIF)
	if err != nil {
		return nil, fmt.Errorf("failed to load contracts for %s: %w", entity.Name, err)
	}

	profile := &models.EntityProfile{
		Entity:          entity,
		TotalContracts:  len(contracts),
		ContractsByYear: map[string]int{},
		ContractsByType: map[string]int{},
	}

	counterparts := make(map[string]int)
	for _, c := range contracts {
		profile.TotalValue += c.Value

		roles := c.InvolvesEntity(entity.Name, entity.NIF)
		if roles.AsAwarder {
			profile.AsAwarder++
			if c.Awardee != "" {
				counterparts[c.Awardee]++
			}
		}
		if roles.AsAwardee {
			profile.AsAwardee++
			if c.Awarder != "" {
				counterparts[c.Awarder]++
			}
		}

		if c.ContractDate != nil {
			year := c.ContractDate.Format("2006")
			profile.ContractsByYear[year]++
		}

		kind := c.Category
		if kind == "" {
			kind = "unspecified"
		}
		profile.ContractsByType[kind]++
	}

	for name, count := range counterparts {
		profile.TopCounterparts = append(profile.TopCounterparts, models.CounterpartyCount{
			Name:  name,
			Count: count,
		})
	}
	sort.Slice(profile.TopCounterparts, func(i, j int) bool {
		if profile.TopCounterparts[i].Count != profile.TopCounterparts[j].Count {
			return profile.TopCounterparts[i].Count > profile.TopCounterparts[j].Count
		}
		return profile.TopCounterparts[i].Name < profile.TopCounterparts[j].Name
	})
	if len(profile.TopCounterparts) > 5 {
		profile.TopCounterparts = profile.TopCounterparts[:5]
	}

	recent := make([]*models.Contract, len(contracts))
	copy(recent, contracts)
	sort.SliceStable(recent, func(i, j int) bool {
		a, b := recent[i].ContractDate, recent[j].ContractDate
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
	if len(recent) > 10 {
		recent = recent[:10]
	}
	profile.RecentContracts = recent

	return profile, nil
}
