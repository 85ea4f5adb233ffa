package postgres

import (
	"context"
	"errors"
	"fmt"
	"log"
	"rental-project/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresProfileRepository implements port.ProfileRepositoryPort.
type PostgresProfileRepository struct {
	dbPool *pgxpool.Pool
}

func NewPostgresProfileRepository(dbPool *pgxpool.Pool) (*PostgresProfileRepository, error) {
	if dbPool == nil {
		return nil, fmt.Errorf("postgres profile repository: dbPool cannot be nil")
	}
	return &PostgresProfileRepository{dbPool: dbPool}, nil
}

func (r *PostgresProfileRepository) FindByEmail(ctx context.Context, email string) (domain.Profile, error) {
	query := `
        SELECT id, user_id, email, full_name, avatar_url, role, password_hash, created_at, updated_at
        FROM profiles
        WHERE email = $1
    `
	var p domain.Profile
	var role string
	err := r.dbPool.QueryRow(ctx, query, email).Scan(
		&p.ID, &p.UserID, &p.Email, &p.FullName, &p.AvatarURL, &role, &p.PasswordHash, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Profile{}, domain.ErrProfileNotFound
		}
		log.Printf("PostgresProfileRepo: Error loading profile '%s': %v\n", email, err)
		return domain.Profile{}, toGatewayError("query", "profiles", err)
	}
	p.Role = domain.Role(role)
	return p, nil
}
