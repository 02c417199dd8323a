package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/basewatch/basewatch-engine/pkg/database"
	"github.com/basewatch/basewatch-engine/pkg/models"
)

// AssociationRepository provides data access for person-company associations.
type AssociationRepository interface {
	Create(ctx context.Context, assoc *models.Association) error
	// ListByPerson returns a person's associations, active first then most
	// recent. With activeOnly set, ended associations are excluded.
	ListByPerson(ctx context.Context, personID uuid.UUID, activeOnly bool) ([]*models.Association, error)
	// Deactivate closes an association by setting its end date.
	Deactivate(ctx context.Context, id uuid.UUID, endDate time.Time) error
}

type associationRepository struct {
	db *database.DB
}

// NewAssociationRepository creates a new AssociationRepository.
func NewAssociationRepository(db *database.DB) AssociationRepository {
	return &associationRepository{db: db}
}

var _ AssociationRepository = (*associationRepository)(nil)

const associationColumns = `id, person_id, company_name, company_nif, relation,
	ownership_pct, start_date, end_date, active, source, notes, created_at`

func (r *associationRepository) Create(ctx context.Context, assoc *models.Association) error {
	if assoc.ID == uuid.Nil {
		assoc.ID = uuid.New()
	}
	assoc.Active = assoc.EndDate == nil
	assoc.CreatedAt = time.Now()

	_, err := r.db.Exec(ctx, `
		INSERT INTO associations (
			id, person_id, company_name, company_nif, relation,
			ownership_pct, start_date, end_date, active, source, notes, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		assoc.ID, assoc.PersonID, assoc.CompanyName, assoc.CompanyNIF, assoc.Relation,
		assoc.OwnershipPct, assoc.StartDate, assoc.EndDate, assoc.Active, assoc.Source, assoc.Notes, assoc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create association: %w", err)
	}
	return nil
}

func (r *associationRepository) ListByPerson(ctx context.Context, personID uuid.UUID, activeOnly bool) ([]*models.Association, error) {
	query := `SELECT ` + associationColumns + ` FROM associations WHERE person_id = $1`
	if activeOnly {
		query += ` AND active`
	}
	query += ` ORDER BY active DESC, start_date DESC NULLS LAST, created_at DESC`

	rows, err := r.db.Query(ctx, query, personID)
	if err != nil {
		return nil, fmt.Errorf("failed to list associations: %w", err)
	}
	defer rows.Close()
	return collectAssociations(rows)
}

func (r *associationRepository) Deactivate(ctx context.Context, id uuid.UUID, endDate time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE associations SET end_date = $2, active = false WHERE id = $1`,
		id, endDate)
	if err != nil {
		return fmt.Errorf("failed to deactivate association: %w", err)
	}
	return nil
}

func scanAssociation(row rowScanner) (*models.Association, error) {
	var a models.Association
	err := row.Scan(
		&a.ID, &a.PersonID, &a.CompanyName, &a.CompanyNIF, &a.Relation,
		&a.OwnershipPct, &a.StartDate, &a.EndDate, &a.Active, &a.Source, &a.Notes, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func collectAssociations(rows pgx.Rows) ([]*models.Association, error) {
	var assocs []*models.Association
	for rows.Next() {
		a, err := scanAssociation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan association: %w", err)
		}
		assocs = append(assocs, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating associations: %w", err)
	}
	return assocs, nil
}
