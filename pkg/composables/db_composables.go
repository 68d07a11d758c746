package composables

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clachance14/pipetrak/pkg/constants"
	"github.com/clachance14/pipetrak/pkg/repo"
)

var ErrNoPool = errors.New("no database pool found in context")

func WithPool(ctx context.Context, pool *pgxpool.Pool) context.Context {
	return context.WithValue(ctx, constants.PoolKey, pool)
}

func UsePool(ctx context.Context) (*pgxpool.Pool, error) {
	if pool, ok := ctx.Value(constants.PoolKey).(*pgxpool.Pool); ok {
		return pool, nil
	}
	return nil, ErrNoPool
}

func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, constants.TxKey, tx)
}

// UseTx returns the query surface for the current context: the ambient
// transaction when one is open, otherwise the pool itself. Repositories call
// this so reads work both inside and outside InTenantTx.
func UseTx(ctx context.Context) (repo.Tx, error) {
	if tx, ok := ctx.Value(constants.TxKey).(repo.Tx); ok && tx != nil {
		return tx, nil
	}
	return UsePool(ctx)
}
