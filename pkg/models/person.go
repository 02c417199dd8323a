package models

import (
	"time"

	"github.com/google/uuid"
)

// Association relation kinds.
const (
	RelationOwner         = "owner"
	RelationPartner       = "partner"
	RelationManager       = "manager"
	RelationAdministrator = "administrator"
	RelationFamily        = "family"
	RelationAdvisor       = "advisor"
	RelationOther         = "other"
)

// ValidRelations lists the accepted association relation kinds.
var ValidRelations = []string{
	RelationOwner, RelationPartner, RelationManager, RelationAdministrator,
	RelationFamily, RelationAdvisor, RelationOther,
}

// IsValidRelation reports whether r is an accepted relation kind.
func IsValidRelation(r string) bool {
	for _, v := range ValidRelations {
		if r == v {
			return true
		}
	}
	return false
}

// Person is a natural person tracked for conflict-of-interest analysis.
// The name is the business key: adding an existing name returns the existing
// record. Persons are never deleted.
type Person struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Office    *string   `json:"office,omitempty"` // current political office title
	Party     *string   `json:"party,omitempty"`
	Role      *string   `json:"role,omitempty"` // current professional function
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// PoliticalPosition is one office held by a person. History is preserved:
// a person accumulates positions over time, and a position is active exactly
// when it has no end date.
type PoliticalPosition struct {
	ID        uuid.UUID  `json:"id"`
	PersonID  uuid.UUID  `json:"person_id"`
	Title     string     `json:"title"`
	Entity    *string    `json:"entity,omitempty"` // name of the body holding the office
	Party     *string    `json:"party,omitempty"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"created_at"`
}

// OfficeHolder pairs a person with one of their active political positions.
// Conflict detection iterates these pairs; a person holding several active
// offices appears once per office.
type OfficeHolder struct {
	Person   *Person            `json:"person"`
	Position *PoliticalPosition `json:"position"`
}

// Association links a person to a company by name. Companies are not modeled
// as first-class entities; the name string is what contract awardee/awarder
// fields are matched against. Active exactly when it has no end date.
type Association struct {
	ID           uuid.UUID  `json:"id"`
	PersonID     uuid.UUID  `json:"person_id"`
	CompanyName  string     `json:"company_name"`
	CompanyNIF   *string    `json:"company_nif,omitempty"`
	Relation     string     `json:"relation"`
	OwnershipPct *float64   `json:"ownership_pct,omitempty"` // 0-100
	StartDate    *time.Time `json:"start_date,omitempty"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	Active       bool       `json:"active"`
	Source       *string    `json:"source,omitempty"`
	Notes        *string    `json:"notes,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}
