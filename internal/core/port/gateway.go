package port

import (
	"context"
	"rental-project/internal/core/domain"
)

// GatewayPort is the single point of contact with the data platform.
// Implementations never retry; failures come back as *domain.GatewayError.
type GatewayPort interface {
	Query(ctx context.Context, q domain.Query) ([]domain.Row, error)
	// Insert stores row and returns it as persisted, including generated columns.
	Insert(ctx context.Context, table string, row domain.Row) (domain.Row, error)
	Update(ctx context.Context, table, id string, patch domain.Row) error
	Delete(ctx context.Context, table, id string) error
	// DeleteWhere removes every row of table matching filter.
	DeleteWhere(ctx context.Context, table string, filter domain.Filter) error
}
