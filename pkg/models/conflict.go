package models

import (
	"time"

	"github.com/google/uuid"
)

// ConflictOfficeHolderSupplier marks the single conflict kind the detector
// produces: an active office holder linked to a company that holds a
// public contract.
const ConflictOfficeHolderSupplier = "office_holder_company_contract"

// Conflict is a persisted conflict-of-interest finding. At most one row
// exists per (person, contract) pair; detection is idempotent and safe to
// re-run. Rows are never updated except for the reviewed flag.
type Conflict struct {
	ID          uuid.UUID `json:"id"`
	PersonID    uuid.UUID `json:"person_id"`
	PersonName  string    `json:"person_name,omitempty"` // joined for display
	CompanyName string    `json:"company_name"`
	ContractID  string    `json:"contract_id"`
	Kind        string    `json:"kind"`
	Description string    `json:"description"`
	Severity    string    `json:"severity"`
	Reviewed    bool      `json:"reviewed"`
	DetectedAt  time.Time `json:"detected_at"`
}
