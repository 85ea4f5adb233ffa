package postgres

import (
	"context"
	"errors"
	"fmt"
	"log"
	"rental-project/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresGatewayAdapter implements port.GatewayPort on a pgx pool.
type PostgresGatewayAdapter struct {
	pool *pgxpool.Pool
}

func NewPostgresGatewayAdapter(pool *pgxpool.Pool) (*PostgresGatewayAdapter, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresGatewayAdapter{pool: pool}, nil
}

func (a *PostgresGatewayAdapter) Query(ctx context.Context, q domain.Query) ([]domain.Row, error) {
	sql, args, err := buildSelect(q)
	if err != nil {
		return nil, &domain.GatewayError{Op: "query", Table: q.Table, Code: "invalid_query", Err: err}
	}

	rows, err := a.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, toGatewayError("query", q.Table, err)
	}
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, toGatewayError("query", q.Table, err)
	}

	out := make([]domain.Row, 0, len(maps))
	for _, m := range maps {
		out = append(out, domain.Row(m))
	}
	return out, nil
}

func (a *PostgresGatewayAdapter) Insert(ctx context.Context, table string, row domain.Row) (domain.Row, error) {
	sql, args, err := buildInsert(table, row)
	if err != nil {
		return nil, &domain.GatewayError{Op: "insert", Table: table, Code: "invalid_row", Err: err}
	}

	rows, err := a.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, toGatewayError("insert", table, err)
	}
	inserted, err := pgx.CollectOneRow(rows, pgx.RowToMap)
	if err != nil {
		return nil, toGatewayError("insert", table, err)
	}
	return domain.Row(inserted), nil
}

// Update patches one row. Updating a missing id is not an error.
func (a *PostgresGatewayAdapter) Update(ctx context.Context, table, id string, patch domain.Row) error {
	sql, args, err := buildUpdate(table, id, patch)
	if err != nil {
		return &domain.GatewayError{Op: "update", Table: table, Code: "invalid_row", Err: err}
	}
	tag, err := a.pool.Exec(ctx, sql, args...)
	if err != nil {
		return toGatewayError("update", table, err)
	}
	if tag.RowsAffected() == 0 {
		log.Printf("PostgresGateway: Update of %s %s matched no rows\n", table, id)
	}
	return nil
}

// Delete removes one row; child rows go with it through ON DELETE CASCADE.
func (a *PostgresGatewayAdapter) Delete(ctx context.Context, table, id string) error {
	return a.deleteWhere(ctx, "delete", table, domain.Filter{All: []domain.Predicate{domain.Eq("id", id)}})
}

func (a *PostgresGatewayAdapter) DeleteWhere(ctx context.Context, table string, filter domain.Filter) error {
	return a.deleteWhere(ctx, "delete", table, filter)
}

func (a *PostgresGatewayAdapter) deleteWhere(ctx context.Context, op, table string, filter domain.Filter) error {
	sql, args, err := buildDelete(table, filter)
	if err != nil {
		return &domain.GatewayError{Op: op, Table: table, Code: "invalid_query", Err: err}
	}
	tag, err := a.pool.Exec(ctx, sql, args...)
	if err != nil {
		return toGatewayError(op, table, err)
	}
	log.Printf("PostgresGateway: Deleted %d rows from %s\n", tag.RowsAffected(), table)
	return nil
}

// toGatewayError keeps the SQLSTATE of server-side failures.
func toGatewayError(op, table string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &domain.GatewayError{Op: op, Table: table, Code: pgErr.Code, Message: pgErr.Message, Err: err}
	}
	return &domain.GatewayError{Op: op, Table: table, Err: err}
}
