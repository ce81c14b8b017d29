package athleterepo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/runplanner/internal/domain/auth"
)

// PostgresRepository persists athletes in Postgres.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a new athlete row.
func (r *PostgresRepository) Create(ctx context.Context, athlete auth.Athlete) (auth.Athlete, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO athletes (email, name, location, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, email, name, location, password_hash, created_at
	`, athlete.Email, athlete.Name, athlete.Location, athlete.PasswordHash)
	created, err := scanAthlete(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return auth.Athlete{}, auth.ErrEmailExists
		}
		return auth.Athlete{}, err
	}
	return created, nil
}

// GetByEmail fetches an athlete by email.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (auth.Athlete, bool, error) {
	return r.getOne(ctx, `
		SELECT id, email, name, location, password_hash, created_at
		FROM athletes
		WHERE email = $1
	`, email)
}

// GetByID fetches by primary key.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (auth.Athlete, bool, error) {
	return r.getOne(ctx, `
		SELECT id, email, name, location, password_hash, created_at
		FROM athletes
		WHERE id = $1
	`, id)
}

// UpdateProfile replaces name and location in place.
func (r *PostgresRepository) UpdateProfile(ctx context.Context, id int64, name, location string) (auth.Athlete, bool, error) {
	return r.getOne(ctx, `
		UPDATE athletes
		SET name = $2, location = $3
		WHERE id = $1
		RETURNING id, email, name, location, password_hash, created_at
	`, id, name, location)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (auth.Athlete, bool, error) {
	athlete, err := scanAthlete(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return auth.Athlete{}, false, nil
	}
	if err != nil {
		return auth.Athlete{}, false, err
	}
	return athlete, true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAthlete(row rowScanner) (auth.Athlete, error) {
	var athlete auth.Athlete
	var created time.Time
	if err := row.Scan(&athlete.ID, &athlete.Email, &athlete.Name, &athlete.Location, &athlete.PasswordHash, &created); err != nil {
		return auth.Athlete{}, err
	}
	athlete.CreatedAt = created.UTC()
	return athlete, nil
}

var _ auth.Repository = (*PostgresRepository)(nil)
