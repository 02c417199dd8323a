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

// AlertRepository provides data access for watch list alerts.
type AlertRepository interface {
	// Create inserts the alert unless one already exists for the same
	// contract and entity. The boolean reports whether a row was inserted.
	Create(ctx context.Context, a *models.Alert) (bool, error)
	List(ctx context.Context, unreadOnly bool) ([]*models.Alert, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	MarkAllRead(ctx context.Context) (int64, error)
	CountUnread(ctx context.Context) (int, error)
}

type alertRepository struct {
	db *database.DB
}

// NewAlertRepository creates a new AlertRepository.
func NewAlertRepository(db *database.DB) AlertRepository {
	return &alertRepository{db: db}
}

var _ AlertRepository = (*alertRepository)(nil)

func (r *alertRepository) Create(ctx context.Context, a *models.Alert) (bool, error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.CreatedAt = time.Now()

	tag, err := r.db.Exec(ctx, `
		INSERT INTO alerts (id, contract_id, entity_id, kind, message, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (contract_id, entity_id) DO NOTHING`,
		a.ID, a.ContractID, a.EntityID, a.Kind, a.Message, a.Read, a.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to create alert: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *alertRepository) List(ctx context.Context, unreadOnly bool) ([]*models.Alert, error) {
	query := `
		SELECT a.id, a.contract_id, a.entity_id, e.name, a.kind, a.message, a.read, a.created_at,
		       c.awarder, c.awardee, c.value, c.contract_date
		FROM alerts a
		JOIN watched_entities e ON e.id = a.entity_id
		JOIN contracts c ON c.id = a.contract_id`
	if unreadOnly {
		query += ` WHERE NOT a.read`
	}
	query += ` ORDER BY a.created_at DESC, a.id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	defer rows.Close()

	var alerts []*models.Alert
	for rows.Next() {
		var a models.Alert
		err := rows.Scan(
			&a.ID, &a.ContractID, &a.EntityID, &a.EntityName, &a.Kind, &a.Message, &a.Read, &a.CreatedAt,
			&a.Awarder, &a.Awardee, &a.Value, &a.ContractDate,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating alerts: %w", err)
	}
	return alerts, nil
}

func (r *alertRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `UPDATE alerts SET read = true WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark alert read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("alert %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

func (r *alertRepository) MarkAllRead(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `UPDATE alerts SET read = true WHERE NOT read`)
	if err != nil {
		return 0, fmt.Errorf("failed to mark alerts read: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *alertRepository) CountUnread(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM alerts WHERE NOT read`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread alerts: %w", err)
	}
	return count, nil
}
