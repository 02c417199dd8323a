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

// PersonRepository provides data access for tracked persons.
type PersonRepository interface {
	// CreateOrGet inserts the person, or returns the existing record when
	// the name is already taken. The second return reports whether a new
	// row was created.
	CreateOrGet(ctx context.Context, person *models.Person) (*models.Person, bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Person, error)
	// SearchByName returns persons whose name contains the query,
	// case-insensitively, ordered by name.
	SearchByName(ctx context.Context, name string) ([]*models.Person, error)
	List(ctx context.Context) ([]*models.Person, error)
}

type personRepository struct {
	db *database.DB
}

// NewPersonRepository creates a new PersonRepository.
func NewPersonRepository(db *database.DB) PersonRepository {
	return &personRepository{db: db}
}

var _ PersonRepository = (*personRepository)(nil)

const personColumns = `id, name, office, party, role, notes, created_at`

func (r *personRepository) CreateOrGet(ctx context.Context, person *models.Person) (*models.Person, bool, error) {
	if person.ID == uuid.Nil {
		person.ID = uuid.New()
	}
	person.CreatedAt = time.Now()

	tag, err := r.db.Exec(ctx, `
		INSERT INTO persons (id, name, office, party, role, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (name) DO NOTHING`,
		person.ID, person.Name, person.Office, person.Party, person.Role, person.Notes, person.CreatedAt,
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create person: %w", err)
	}

	if tag.RowsAffected() == 1 {
		return person, true, nil
	}

	// Name already taken: return the existing record.
	row := r.db.QueryRow(ctx,
		`SELECT `+personColumns+` FROM persons WHERE name = $1`, person.Name)
	existing, err := scanPerson(row)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load existing person %q: %w", person.Name, err)
	}
	return existing, false, nil
}

func (r *personRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Person, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+personColumns+` FROM persons WHERE id = $1`, id)
	p, err := scanPerson(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get person: %w", err)
	}
	return p, nil
}

func (r *personRepository) SearchByName(ctx context.Context, name string) ([]*models.Person, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+personColumns+` FROM persons
		WHERE name ILIKE $1
		ORDER BY name`,
		"%"+name+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to search persons: %w", err)
	}
	defer rows.Close()
	return collectPersons(rows)
}

func (r *personRepository) List(ctx context.Context) ([]*models.Person, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+personColumns+` FROM persons ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list persons: %w", err)
	}
	defer rows.Close()
	return collectPersons(rows)
}

func scanPerson(row rowScanner) (*models.Person, error) {
	var p models.Person
	err := row.Scan(&p.ID, &p.Name, &p.Office, &p.Party, &p.Role, &p.Notes, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func collectPersons(rows pgx.Rows) ([]*models.Person, error) {
	var persons []*models.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		persons = append(persons, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating persons: %w", err)
	}
	return persons, nil
}
