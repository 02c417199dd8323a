package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/basewatch/basewatch-engine/pkg/apperrors"
	"github.com/basewatch/basewatch-engine/pkg/database"
	"github.com/basewatch/basewatch-engine/pkg/models"
)

// WatchedEntityRepository provides data access for watch list entries.
type WatchedEntityRepository interface {
	// CreateOrGet inserts the entity unless one with the same name and
	// NIF already exists, in which case the existing row is returned.
	// The boolean reports whether a new row was created.
	CreateOrGet(ctx context.Context, e *models.WatchedEntity) (*models.WatchedEntity, bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.WatchedEntity, error)
	List(ctx context.Context, activeOnly bool) ([]*models.WatchedEntity, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type watchedEntityRepository struct {
	db *database.DB
}

// NewWatchedEntityRepository creates a new WatchedEntityRepository.
func NewWatchedEntityRepository(db *database.DB) WatchedEntityRepository {
	return &watchedEntityRepository{db: db}
}

var _ WatchedEntityRepository = (*watchedEntityRepository)(nil)

const watchedEntityColumns = `id, name, nif, kind, office, party, notes, active, created_at`

func (r *watchedEntityRepository) CreateOrGet(ctx context.Context, e *models.WatchedEntity) (*models.WatchedEntity, bool, error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.Active = true
	e.CreatedAt = time.Now()

	tag, err := r.db.Exec(ctx, `
		INSERT INTO watched_entities (id, name, nif, kind, office, party, notes, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (name, COALESCE(nif, '')) DO NOTHING`,
		e.ID, e.Name, e.NIF, e.Kind, e.Office, e.Party, e.Notes, e.Active, e.CreatedAt,
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create watched entity: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return e, true, nil
	}

	existing, err := r.getByNameNIF(ctx, e.Name, e.NIF)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *watchedEntityRepository) getByNameNIF(ctx context.Context, name string, nif *string) (*models.WatchedEntity, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+watchedEntityColumns+`
		FROM watched_entities
		WHERE name = $1 AND COALESCE(nif, '') = COALESCE($2, '')`,
		name, nif)
	e, err := scanWatchedEntity(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("watched entity %q: %w", name, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get watched entity: %w", err)
	}
	return e, nil
}

func (r *watchedEntityRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.WatchedEntity, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+watchedEntityColumns+` FROM watched_entities WHERE id = $1`, id)
	e, err := scanWatchedEntity(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("watched entity %s: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get watched entity: %w", err)
	}
	return e, nil
}

func (r *watchedEntityRepository) List(ctx context.Context, activeOnly bool) ([]*models.WatchedEntity, error) {
	query := `SELECT ` + watchedEntityColumns + ` FROM watched_entities`
	if activeOnly {
		query += ` WHERE active`
	}
	query += ` ORDER BY name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list watched entities: %w", err)
	}
	defer rows.Close()

	var entities []*models.WatchedEntity
	for rows.Next() {
		e, err := scanWatchedEntity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan watched entity: %w", err)
		}
		entities = append(entities, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating watched entities: %w", err)
	}
	return entities, nil
}

func (r *watchedEntityRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `UPDATE watched_entities SET active = false WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate watched entity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("watched entity %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

func scanWatchedEntity(row rowScanner) (*models.WatchedEntity, error) {
	var e models.WatchedEntity
	err := row.Scan(&e.ID, &e.Name, &e.NIF, &e.Kind, &e.Office, &e.Party, &e.Notes, &e.Active, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
