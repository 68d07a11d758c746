package composables

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/clachance14/pipetrak/pkg/constants"
)

// InTenantTx runs fn inside a tenant-scoped transaction. An ambient
// transaction already in the context is reused as-is (the outer owner
// commits); otherwise a new one is begun on the pool and committed here.
// RLS scoping is applied on both paths.
func InTenantTx(ctx context.Context, fn func(context.Context) error) error {
	if ambient, ok := ctx.Value(constants.TxKey).(pgx.Tx); ok && ambient != nil {
		if err := ApplyTenantRLS(ctx, ambient); err != nil {
			return err
		}
		return fn(ctx)
	}

	pool, err := UsePool(ctx)
	if err != nil {
		return err
	}
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}

	txCtx := WithTx(ctx, tx)
	if err := runScoped(txCtx, tx, fn); err != nil {
		if rErr := tx.Rollback(ctx); rErr != nil {
			return errors.Join(err, rErr)
		}
		return err
	}
	return tx.Commit(ctx)
}

func runScoped(txCtx context.Context, tx pgx.Tx, fn func(context.Context) error) error {
	if err := ApplyTenantRLS(txCtx, tx); err != nil {
		return err
	}
	return fn(txCtx)
}

// InTenantTxResult is InTenantTx for callbacks that produce a value.
func InTenantTxResult[T any](ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	var out T
	err := InTenantTx(ctx, func(txCtx context.Context) error {
		var innerErr error
		out, innerErr = fn(txCtx)
		return innerErr
	})
	return out, err
}
