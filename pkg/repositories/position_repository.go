package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/basewatch/basewatch-engine/pkg/database"
	"github.com/basewatch/basewatch-engine/pkg/models"
)

// PositionRepository provides data access for political positions.
type PositionRepository interface {
	Create(ctx context.Context, pos *models.PoliticalPosition) error
	ListByPerson(ctx context.Context, personID uuid.UUID, activeOnly bool) ([]*models.PoliticalPosition, error)
	// ListActiveHolders returns every (person, active position) pair,
	// optionally restricted to one person.
	ListActiveHolders(ctx context.Context, personID *uuid.UUID) ([]models.OfficeHolder, error)
	// Deactivate closes a position by setting its end date.
	Deactivate(ctx context.Context, id uuid.UUID, endDate time.Time) error
}

type positionRepository struct {
	db *database.DB
}

// NewPositionRepository creates a new PositionRepository.
func NewPositionRepository(db *database.DB) PositionRepository {
	return &positionRepository{db: db}
}

var _ PositionRepository = (*positionRepository)(nil)

const positionColumns = `id, person_id, title, entity, party, start_date, end_date, active, created_at`

func (r *positionRepository) Create(ctx context.Context, pos *models.PoliticalPosition) error {
	if pos.ID == uuid.Nil {
		pos.ID = uuid.New()
	}
	pos.Active = pos.EndDate == nil
	pos.CreatedAt = time.Now()

	_, err := r.db.Exec(ctx, `
		INSERT INTO political_positions (
			id, person_id, title, entity, party, start_date, end_date, active, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		pos.ID, pos.PersonID, pos.Title, pos.Entity, pos.Party,
		pos.StartDate, pos.EndDate, pos.Active, pos.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create political position: %w", err)
	}
	return nil
}

func (r *positionRepository) ListByPerson(ctx context.Context, personID uuid.UUID, activeOnly bool) ([]*models.PoliticalPosition, error) {
	query := `SELECT ` + positionColumns + ` FROM political_positions WHERE person_id = $1`
	if activeOnly {
		query += ` AND active`
	}
	query += ` ORDER BY active DESC, start_date DESC NULLS LAST, created_at DESC`

	rows, err := r.db.Query(ctx, query, personID)
	if err != nil {
		return nil, fmt.Errorf("failed to list political positions: %w", err)
	}
	defer rows.Close()

	var positions []*models.PoliticalPosition
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan political position: %w", err)
		}
		positions = append(positions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating political positions: %w", err)
	}
	return positions, nil
}

func (r *positionRepository) ListActiveHolders(ctx context.Context, personID *uuid.UUID) ([]models.OfficeHolder, error) {
	query := `
		SELECT p.id, p.name, p.office, p.party, p.role, p.notes, p.created_at,
		       c.id, c.person_id, c.title, c.entity, c.party, c.start_date, c.end_date, c.active, c.created_at
		FROM persons p
		JOIN political_positions c ON c.person_id = p.id
		WHERE c.active`
	args := []any{}
	if personID != nil {
		query += ` AND p.id = $1`
		args = append(args, *personID)
	}
	query += ` ORDER BY p.name, c.created_at`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list office holders: %w", err)
	}
	defer rows.Close()

	var holders []models.OfficeHolder
	for rows.Next() {
		var p models.Person
		var pos models.PoliticalPosition
		err := rows.Scan(
			&p.ID, &p.Name, &p.Office, &p.Party, &p.Role, &p.Notes, &p.CreatedAt,
			&pos.ID, &pos.PersonID, &pos.Title, &pos.Entity, &pos.Party,
			&pos.StartDate, &pos.EndDate, &pos.Active, &pos.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan office holder: %w", err)
		}
		holders = append(holders, models.OfficeHolder{Person: &p, Position: &pos})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating office holders: %w", err)
	}
	return holders, nil
}

func (r *positionRepository) Deactivate(ctx context.Context, id uuid.UUID, endDate time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE political_positions SET end_date = $2, active = false WHERE id = $1`,
		id, endDate)
	if err != nil {
		return fmt.Errorf("failed to deactivate political position: %w", err)
	}
	return nil
}

func scanPosition(row rowScanner) (*models.PoliticalPosition, error) {
	var p models.PoliticalPosition
	err := row.Scan(
		&p.ID, &p.PersonID, &p.Title, &p.Entity, &p.Party,
		&p.StartDate, &p.EndDate, &p.Active, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
