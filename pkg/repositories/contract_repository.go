package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/basewatch/basewatch-engine/pkg/apperrors"
	"github.com/basewatch/basewatch-engine/pkg/database"
	"github.com/basewatch/basewatch-engine/pkg/models"
)

// ContractRepository provides read access to the contract store plus the
// single idempotent write path used by ingestion.
type ContractRepository interface {
	// CreateBatch inserts contracts, skipping ids that already exist.
	// Returns the number of rows actually inserted.
	CreateBatch(ctx context.Context, contracts []*models.Contract) (int, error)
	GetByID(ctx context.Context, id string) (*models.Contract, error)
	Search(ctx context.Context, filters models.ContractFilters) ([]*models.Contract, error)
	// SearchByParty returns contracts where the entity appears on either
	// side, by name substring or exact NIF.
	SearchByParty(ctx context.Context, name string, nif *string) ([]*models.Contract, error)
	SearchByAwarder(ctx context.Context, name string) ([]*models.Contract, error)
	SearchByAwardee(ctx context.Context, name string) ([]*models.Contract, error)
	Stats(ctx context.Context) (int, float64, []models.YearCount, error)
}

type contractRepository struct {
	db *database.DB
}

// NewContractRepository creates a new ContractRepository.
func NewContractRepository(db *database.DB) ContractRepository {
	return &contractRepository{db: db}
}

var _ ContractRepository = (*contractRepository)(nil)

const contractColumns = `id, awarder, awarder_nif, awardee, awardee_nif, value,
	contract_date, published_date, category, procedure, object, description,
	district, municipality, cpv, execution_days, source_url, collected_at`

func (r *contractRepository) CreateBatch(ctx context.Context, contracts []*models.Contract) (int, error) {
	query := `
		INSERT INTO contracts (
			id, awarder, awarder_nif, awardee, awardee_nif, value,
			contract_date, published_date, category, procedure, object, description,
			district, municipality, cpv, execution_days, source_url
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (id) DO NOTHING`

	inserted := 0
	for _, c := range contracts {
		tag, err := r.db.Exec(ctx, query,
			c.ID, c.Awarder, c.AwarderNIF, c.Awardee, c.AwardeeNIF, c.Value,
			c.ContractDate, c.PublishedDate, c.Category, c.Procedure, c.Object, c.Description,
			c.District, c.Municipality, c.CPV, c.ExecutionDays, c.SourceURL,
		)
		if err != nil {
			return inserted, fmt.Errorf("failed to insert contract %s: %w", c.ID, err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

func (r *contractRepository) GetByID(ctx context.Context, id string) (*models.Contract, error) {
	query := `SELECT ` + contractColumns + ` FROM contracts WHERE id = $1`

	row := r.db.QueryRow(ctx, query, id)
	c, err := scanContract(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contract %s: %w", id, err)
	}
	return c, nil
}

func (r *contractRepository) Search(ctx context.Context, filters models.ContractFilters) ([]*models.Contract, error) {
	query := `SELECT ` + contractColumns + ` FROM contracts WHERE 1=1`
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filters.Awarder != "" {
		query += ` AND awarder ILIKE ` + arg("%"+filters.Awarder+"%")
	}
	if filters.Awardee != "" {
		query += ` AND awardee ILIKE ` + arg("%"+filters.Awardee+"%")
	}
	if filters.NIF != "" {
		p := arg(filters.NIF)
		query += ` AND (awarder_nif = ` + p + ` OR awardee_nif = ` + p + `)`
	}
	if filters.MinValue != nil {
		query += ` AND value >= ` + arg(*filters.MinValue)
	}
	if filters.MaxValue != nil {
		query += ` AND value <= ` + arg(*filters.MaxValue)
	}
	if filters.DateFrom != nil {
		query += ` AND contract_date >= ` + arg(*filters.DateFrom)
	}
	if filters.DateTo != nil {
		query += ` AND contract_date <= ` + arg(*filters.DateTo)
	}
	if filters.Category != "" {
		query += ` AND category = ` + arg(filters.Category)
	}
	if filters.Procedure != "" {
		query += ` AND procedure = ` + arg(filters.Procedure)
	}

	query += ` ORDER BY contract_date DESC NULLS LAST, id`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search contracts: %w", err)
	}
	defer rows.Close()

	return collectContracts(rows)
}

func (r *contractRepository) SearchByParty(ctx context.Context, name string, nif *string) ([]*models.Contract, error) {
	query := `SELECT ` + contractColumns + ` FROM contracts
		WHERE awarder ILIKE $1 OR awardee ILIKE $1`
	args := []any{"%" + name + "%"}

	if nif != nil && *nif != "" {
		query += ` OR awarder_nif = $2 OR awardee_nif = $2`
		args = append(args, *nif)
	}
	query += ` ORDER BY contract_date DESC NULLS LAST, id`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search contracts by party: %w", err)
	}
	defer rows.Close()

	return collectContracts(rows)
}

func (r *contractRepository) SearchByAwarder(ctx context.Context, name string) ([]*models.Contract, error) {
	return r.Search(ctx, models.ContractFilters{Awarder: name})
}

func (r *contractRepository) SearchByAwardee(ctx context.Context, name string) ([]*models.Contract, error) {
	return r.Search(ctx, models.ContractFilters{Awardee: name})
}

func (r *contractRepository) Stats(ctx context.Context) (int, float64, []models.YearCount, error) {
	var total int
	var totalValue float64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(value), 0) FROM contracts`,
	).Scan(&total, &totalValue)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("failed to compute contract stats: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT to_char(contract_date, 'YYYY') AS year, COUNT(*)
		FROM contracts
		WHERE contract_date IS NOT NULL
		GROUP BY year
		ORDER BY year DESC
		LIMIT 5`)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("failed to compute contracts per year: %w", err)
	}
	defer rows.Close()

	var byYear []models.YearCount
	for rows.Next() {
		var yc models.YearCount
		if err := rows.Scan(&yc.Year, &yc.Count); err != nil {
			return 0, 0, nil, fmt.Errorf("failed to scan year count: %w", err)
		}
		byYear = append(byYear, yc)
	}
	if err := rows.Err(); err != nil {
		return 0, 0, nil, fmt.Errorf("error iterating year counts: %w", err)
	}

	return total, totalValue, byYear, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContract(row rowScanner) (*models.Contract, error) {
	var c models.Contract
	err := row.Scan(
		&c.ID, &c.Awarder, &c.AwarderNIF, &c.Awardee, &c.AwardeeNIF, &c.Value,
		&c.ContractDate, &c.PublishedDate, &c.Category, &c.Procedure, &c.Object, &c.Description,
		&c.District, &c.Municipality, &c.CPV, &c.ExecutionDays, &c.SourceURL, &c.CollectedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func collectContracts(rows pgx.Rows) ([]*models.Contract, error) {
	var contracts []*models.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contract: %w", err)
		}
		contracts = append(contracts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contracts: %w", err)
	}
	return contracts, nil
}
