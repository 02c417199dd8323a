package models

import (
	"time"

	"github.com/google/uuid"
)

// Party roles in a contract, used as connection relation labels.
const (
	RoleAwarder = "awarder"
	RoleAwardee = "awardee"
)

// Connection is one edge discovered by the relationship explorer: a contract
// linking the origin entity to another watched entity. Multiple contracts
// between the same pair produce multiple connections, one per contract; each
// is a distinct piece of evidence.
type Connection struct {
	OriginID      uuid.UUID  `json:"origin_id"`
	DestinationID uuid.UUID  `json:"destination_id"`
	Destination   string     `json:"destination"`
	Relation      string     `json:"relation"` // the destination's role in the contract
	Level         int        `json:"level"`    // BFS depth, >= 1
	ContractID    string     `json:"contract_id"`
	ContractValue float64    `json:"contract_value"`
	ContractDate  *time.Time `json:"contract_date,omitempty"`
}

// GraphNode is a vertex in the rendered connection graph.
type GraphNode struct {
	ID      uuid.UUID `json:"id"`
	Label   string    `json:"label"`
	Kind    string    `json:"kind"`
	Central bool      `json:"central"`
}

// GraphEdge is a rendered connection, labeled by role and evidencing contract.
type GraphEdge struct {
	From  uuid.UUID `json:"from"`
	To    uuid.UUID `json:"to"`
	Label string    `json:"label"`
	Value float64   `json:"value"`
	Level int       `json:"level"`
}

// ConnectionGraph is the node/edge structure a rendering consumer draws.
type ConnectionGraph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}
