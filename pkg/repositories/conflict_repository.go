package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/basewatch/basewatch-engine/pkg/apperrors"
	"github.com/basewatch/basewatch-engine/pkg/database"
	"github.com/basewatch/basewatch-engine/pkg/models"
)

// ConflictRepository provides data access for detected conflicts of interest.
type ConflictRepository interface {
	Create(ctx context.Context, c *models.Conflict) error
	// Exists reports whether a conflict is already recorded for the
	// given person and contract.
	Exists(ctx context.Context, personID uuid.UUID, contractID string) (bool, error)
	List(ctx context.Context, unreviewedOnly bool) ([]*models.Conflict, error)
	MarkReviewed(ctx context.Context, id uuid.UUID) error
}

type conflictRepository struct {
	db *database.DB
}

// NewConflictRepository creates a new ConflictRepository.
func NewConflictRepository(db *database.DB) ConflictRepository {
	return &conflictRepository{db: db}
}

var _ ConflictRepository = (*conflictRepository)(nil)

func (r *conflictRepository) Create(ctx context.Context, c *models.Conflict) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.DetectedAt = time.Now()

	_, err := r.db.Exec(ctx, `
		INSERT INTO conflicts (
			id, person_id, company_name, contract_id, kind, description, severity, reviewed, detected_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, c.PersonID, c.CompanyName, c.ContractID,
		c.Kind, c.Description, c.Severity, c.Reviewed, c.DetectedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create conflict: %w", err)
	}
	return nil
}

func (r *conflictRepository) Exists(ctx context.Context, personID uuid.UUID, contractID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM conflicts WHERE person_id = $1 AND contract_id = $2
		)`, personID, contractID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check conflict existence: %w", err)
	}
	return exists, nil
}

func (r *conflictRepository) List(ctx context.Context, unreviewedOnly bool) ([]*models.Conflict, error) {
	query := `
		SELECT c.id, c.person_id, p.name, c.company_name, c.contract_id,
		       c.kind, c.description, c.severity, c.reviewed, c.detected_at
		FROM conflicts c
		JOIN persons p ON p.id = c.person_id`
	if unreviewedOnly {
		query += ` WHERE NOT c.reviewed`
	}
	query += ` ORDER BY c.detected_at DESC, c.id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list conflicts: %w", err)
	}
	defer rows.Close()

	var conflicts []*models.Conflict
	for rows.Next() {
		var c models.Conflict
		err := rows.Scan(
			&c.ID, &c.PersonID, &c.PersonName, &c.CompanyName, &c.ContractID,
			&c.Kind, &c.Description, &c.Severity, &c.Reviewed, &c.DetectedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conflict: %w", err)
		}
		conflicts = append(conflicts, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating conflicts: %w", err)
	}
	return conflicts, nil
}

func (r *conflictRepository) MarkReviewed(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `UPDATE conflicts SET reviewed = true WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark conflict reviewed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("conflict %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}
