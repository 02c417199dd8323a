package models

import (
	"strings"
	"time"
)

// Contract is a public-procurement contract record as published on the BASE
// portal. Contracts are write-once: ingestion inserts them and every analysis
// component reads them as-is. The ID is the portal's contract identifier and
// is globally unique within the store.
type Contract struct {
	ID            string     `json:"id"`
	Awarder       string     `json:"awarder"`
	AwarderNIF    *string    `json:"awarder_nif,omitempty"`
	Awardee       string     `json:"awardee"`
	AwardeeNIF    *string    `json:"awardee_nif,omitempty"`
	Value         float64    `json:"value"`
	ContractDate  *time.Time `json:"contract_date,omitempty"`
	PublishedDate *time.Time `json:"published_date,omitempty"`
	Category      string     `json:"category"`  // free-text contract type label, e.g. "Empreitadas de obras públicas"
	Procedure     string     `json:"procedure"` // free-text procedure type, e.g. "Ajuste Direto"
	Object        string     `json:"object"`
	Description   *string    `json:"description,omitempty"`
	District      *string    `json:"district,omitempty"`
	Municipality  *string    `json:"municipality,omitempty"`
	CPV           *string    `json:"cpv,omitempty"`
	ExecutionDays *int       `json:"execution_days,omitempty"`
	SourceURL     *string    `json:"source_url,omitempty"`
	CollectedAt   time.Time  `json:"collected_at"`
}

// EntityRoles reports in which role(s) an entity participates in a contract.
// Both flags may be set at once (self-contracting).
type EntityRoles struct {
	AsAwarder bool `json:"as_awarder"`
	AsAwardee bool `json:"as_awardee"`
}

// Involved reports whether the entity appears in either role.
func (r EntityRoles) Involved() bool {
	return r.AsAwarder || r.AsAwardee
}

// InvolvesEntity reports whether the named entity appears in the contract as
// awarder or awardee. A name matches when its case-folded, trimmed form is a
// substring of the contract party; a non-empty NIF matches by exact equality.
// No accent folding is performed: "Camara" does not match "Câmara". This is
// the single matching primitive shared by watch-list alerting, entity
// profiles, and conflict detection.
func (c *Contract) InvolvesEntity(name string, nif *string) EntityRoles {
	var roles EntityRoles

	needle := strings.ToLower(strings.TrimSpace(name))
	if needle != "" {
		roles.AsAwarder = strings.Contains(strings.ToLower(c.Awarder), needle)
		roles.AsAwardee = strings.Contains(strings.ToLower(c.Awardee), needle)
	}

	if nif != nil && *nif != "" {
		if c.AwarderNIF != nil && *c.AwarderNIF == *nif {
			roles.AsAwarder = true
		}
		if c.AwardeeNIF != nil && *c.AwardeeNIF == *nif {
			roles.AsAwardee = true
		}
	}

	return roles
}

// ContractFilters narrows contract searches. Zero values mean "no filter".
type ContractFilters struct {
	Awarder   string     // substring match
	Awardee   string     // substring match
	NIF       string     // exact match against either party's NIF
	MinValue  *float64
	MaxValue  *float64
	DateFrom  *time.Time
	DateTo    *time.Time
	Category  string
	Procedure string
}
