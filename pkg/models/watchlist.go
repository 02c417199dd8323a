package models

import (
	"time"

	"github.com/google/uuid"
)

// Watched entity kinds.
const (
	WatchedKindPerson     = "person"
	WatchedKindCompany    = "company"
	WatchedKindPublicBody = "public_body"
)

// Alert kinds. HighValueAlertThreshold separates the two.
const (
	AlertKindHighValue = "high_value"
	AlertKindNormal    = "normal"
)

// HighValueAlertThreshold is the contract value above which a watch-list hit
// is raised as a high-value alert.
const HighValueAlertThreshold = 500_000.0

// WatchedEntity is an operator-curated watch list entry. This is also the
// registered-entity set the connection explorer resolves contract parties
// against. Entries are deactivated, never deleted.
type WatchedEntity struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	NIF       *string   `json:"nif,omitempty"`
	Kind      string    `json:"kind"`
	Office    *string   `json:"office,omitempty"`
	Party     *string   `json:"party,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Alert is a persisted watch-list hit: a contract involving a watched entity.
// At most one alert exists per (contract, entity) pair.
type Alert struct {
	ID         uuid.UUID `json:"id"`
	ContractID string    `json:"contract_id"`
	EntityID   uuid.UUID `json:"entity_id"`
	EntityName string    `json:"entity_name,omitempty"` // joined for display
	Kind       string    `json:"kind"`
	Message    string    `json:"message"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"created_at"`

	// Contract details joined for display.
	Awarder      string     `json:"awarder,omitempty"`
	Awardee      string     `json:"awardee,omitempty"`
	Value        float64    `json:"value,omitempty"`
	ContractDate *time.Time `json:"contract_date,omitempty"`
}

// EntitySuggestion is a counterparty that appears often enough in the
// contract repository to be worth watching but is not on the watch list yet.
type EntitySuggestion struct {
	Name          string  `json:"name"`
	NIF           *string `json:"nif,omitempty"`
	ContractCount int     `json:"contract_count"`
	TotalValue    float64 `json:"total_value"`
	AsAwarder     int     `json:"as_awarder"`
	AsAwardee     int     `json:"as_awardee"`
}
