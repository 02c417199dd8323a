package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/basewatch/basewatch-engine/pkg/models"
	"github.com/basewatch/basewatch-engine/pkg/repositories"
)

// ConnectionExplorer walks the contract graph outward from a watched entity.
type ConnectionExplorer interface {
	// FindConnections runs a breadth-first exploration from the entity up
	// to the given depth. Parties are resolved against the active watch
	// list by exact case-insensitive name equality; unknown parties are
	// ignored. The origin entity is never returned as a destination.
	FindConnections(ctx context.Context, entityID uuid.UUID, depth int) ([]models.Connection, error)
	// BuildGraph renders FindConnections output as nodes and edges.
	BuildGraph(ctx context.Context, entityID uuid.UUID, depth int) (*models.ConnectionGraph, error)
}

type connectionExplorer struct {
	contracts repositories.ContractRepository
	watched   repositories.WatchedEntityRepository
	logger    *zap.Logger
}

// NewConnectionExplorer creates a new ConnectionExplorer.
func NewConnectionExplorer(
	contracts repositories.ContractRepository,
	watched repositories.WatchedEntityRepository,
	logger *zap.Logger,
) ConnectionExplorer {
	return &connectionExplorer{
		contracts: contracts,
		watched:   watched,
		logger:    logger.Named("connection_explorer"),
	}
}

var _ ConnectionExplorer = (*connectionExplorer)(nil)

// queueItem is one pending BFS visit. Entities may be enqueued more than
// once; the visited check on pop keeps each one expanded a single time.
type queueItem struct {
	entityID uuid.UUID
	level    int
}

func (e *connectionExplorer) FindConnections(ctx context.Context, entityID uuid.UUID, depth int) ([]models.Connection, error) {
	if depth <= 0 {
		depth = 2
	}

	registered, err := e.watched.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to load watch list: %w", err)
	}
	byName := make(map[string]*models.WatchedEntity, len(registered))
	byID := make(map[uuid.UUID]*models.WatchedEntity, len(registered))
	for _, entity := range registered {
		byName[strings.ToLower(entity.Name)] = entity
		byID[entity.ID] = entity
	}
	if _, ok := byID[entityID]; !ok {
		// Deactivated entities can still be explored.
		origin, err := e.watched.GetByID(ctx, entityID)
		if err != nil {
			return nil, err
		}
		byID[origin.ID] = origin
	}

	var connections []models.Connection
	visited := make(map[uuid.UUID]bool)
	queue := []queueItem{{entityID: entityID, level: 0}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if visited[current.entityID] || current.level >= depth {
			continue
		}
		visited[current.entityID] = true

		entity := byID[current.entityID]
		if entity == nil {
			continue
		}

		contracts, err := e.contracts.SearchByParty(ctx, entity.Name, entity.NIF)
		if err != nil {
			return nil, fmt.Errorf("failed to load contracts for %s: %w", entity.Name, err)
		}

		for _, contract := range contracts {
			for _, party := range contractParties(contract) {
				resolved, ok := byName[strings.ToLower(party.name)]
				if !ok || resolved.ID == current.entityID || visited[resolved.ID] {
					continue
				}

				connections = append(connections, models.Connection{
					OriginID:      current.entityID,
					DestinationID: resolved.ID,
					Destination:   party.name,
					Relation:      party.role,
					Level:         current.level + 1,
					ContractID:    contract.ID,
					ContractValue: contract.Value,
					ContractDate:  contract.ContractDate,
				})

				if current.level+1 < depth {
					queue = append(queue, queueItem{entityID: resolved.ID, level: current.level + 1})
				}
			}
		}
	}

	e.logger.Info("connection exploration complete",
		zap.String("entity_id", entityID.String()),
		zap.Int("depth", depth),
		zap.Int("connections", len(connections)))
	return connections, nil
}

type contractParty struct {
	name string
	role string
}

func contractParties(c *models.Contract) []contractParty {
	var parties []contractParty
	if c.Awarder != "" {
		parties = append(parties, contractParty{name: c.Awarder, role: models.RoleAwarder})
	}
	if c.Awardee != "" {
		parties = append(parties, contractParty{name: c.Awardee, role: models.RoleAwardee})
	}
	return parties
}

func (e *connectionExplorer) BuildGraph(ctx context.Context, entityID uuid.UUID, depth int) (*models.ConnectionGraph, error) {
	connections, err := e.FindConnections(ctx, entityID, depth)
	if err != nil {
		return nil, err
	}

	graph := &models.ConnectionGraph{}
	seen := make(map[uuid.UUID]bool)

	central, err := e.watched.GetByID(ctx, entityID)
	if err != nil {
		return nil, err
	}
	graph.Nodes = append(graph.Nodes, models.GraphNode{
		ID:      central.ID,
		Label:   central.Name,
		Kind:    central.Kind,
		Central: true,
	})
	seen[central.ID] = true

	for _, conn := range connections {
		if !seen[conn.DestinationID] {
			dest, err := e.watched.GetByID(ctx, conn.DestinationID)
			if err != nil {
				return nil, err
			}
			graph.Nodes = append(graph.Nodes, models.GraphNode{
				ID:      dest.ID,
				Label:   dest.Name,
				Kind:    dest.Kind,
				Central: false,
			})
			seen[dest.ID] = true
		}

		graph.Edges = append(graph.Edges, models.GraphEdge{
			From:  conn.OriginID,
			To:    conn.DestinationID,
			Label: fmt.Sprintf("%s\n%s", conn.Relation, conn.ContractID),
			Value: conn.ContractValue,
			Level: conn.Level,
		})
	}

	return graph, nil
}
