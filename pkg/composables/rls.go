package composables

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/clachance14/pipetrak/pkg/configuration"
)

const rlsTenantSetting = "app.current_tenant"

// ApplyTenantRLS scopes the transaction to the context tenant by setting
// app.current_tenant for row-level-security policies. A no-op unless
// RLS_ENFORCE=enforce; the setting is transaction-local, so nothing leaks
// into pooled connections.
func ApplyTenantRLS(ctx context.Context, tx pgx.Tx) error {
	if configuration.Use().RLSEnforce != "enforce" {
		return nil
	}
	tenantID, err := UseTenantID(ctx)
	if err != nil {
		return errors.Wrap(err, "rls enforcement requires a tenant in context")
	}
	if _, err := tx.Exec(ctx, "SELECT set_config($1, $2, true)", rlsTenantSetting, tenantID.String()); err != nil {
		return errors.Wrap(err, "set rls tenant")
	}
	return nil
}
