package port

import (
	"context"
	"rental-project/internal/core/domain"
)

// ProfileRepositoryPort looks up profiles for sign-in.
type ProfileRepositoryPort interface {
	// FindByEmail returns domain.ErrProfileNotFound when no profile matches.
	FindByEmail(ctx context.Context, email string) (domain.Profile, error)
}
