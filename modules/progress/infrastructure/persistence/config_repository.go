package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/clachance14/pipetrak/modules/progress/domain/milestone"
	"github.com/clachance14/pipetrak/pkg/composables"
)

type ConfigRepository struct{}

func NewConfigRepository() milestone.ConfigRepository {
	return &ConfigRepository{}
}

func scanConfig(row pgx.Row) (milestone.Config, error) {
	var (
		id, tenantID pgtype.UUID
		name         string
		version      int
		workflowType string
		defsRaw      []byte
		createdAt    time.Time
	)
	if err := row.Scan(&id, &tenantID, &name, &version, &workflowType, &defsRaw, &createdAt); err != nil {
		return milestone.Config{}, err
	}
	var defs []milestone.Definition
	if err := json.Unmarshal(defsRaw, &defs); err != nil {
		return milestone.Config{}, fmt.Errorf("decode milestone definitions: %w", err)
	}
	return milestone.Hydrate(
		asUUID(id), asUUID(tenantID), name, version,
		milestone.WorkflowType(workflowType), defs, createdAt,
	), nil
}

func (r *ConfigRepository) GetByID(ctx context.Context, id uuid.UUID) (milestone.Config, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return milestone.Config{}, err
	}
	_, pgTenantID, err := tenantIDs(ctx)
	if err != nil {
		return milestone.Config{}, err
	}
	cfg, err := scanConfig(tx.QueryRow(ctx, `
	SELECT id, tenant_id, name, version, workflow_type, definitions, created_at
	FROM progress_configs
	WHERE tenant_id=$1 AND id=$2
	`, pgTenantID, pgUUID(id)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return milestone.Config{}, milestone.ErrConfigNotFound
		}
		return milestone.Config{}, err
	}
	return cfg, nil
}

// GetByName returns the latest version carrying the given name.
func (r *ConfigRepository) GetByName(ctx context.Context, name string) (milestone.Config, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return milestone.Config{}, err
	}
	_, pgTenantID, err := tenantIDs(ctx)
	if err != nil {
		return milestone.Config{}, err
	}
	cfg, err := scanConfig(tx.QueryRow(ctx, `
	SELECT id, tenant_id, name, version, workflow_type, definitions, created_at
	FROM progress_configs
	WHERE tenant_id=$1 AND name=$2
	ORDER BY version DESC
	LIMIT 1
	`, pgTenantID, strings.TrimSpace(name)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return milestone.Config{}, milestone.ErrConfigNotFound
		}
		return milestone.Config{}, err
	}
	return cfg, nil
}

func (r *ConfigRepository) List(ctx context.Context) ([]milestone.Config, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	_, pgTenantID, err := tenantIDs(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
	SELECT id, tenant_id, name, version, workflow_type, definitions, created_at
	FROM progress_configs
	WHERE tenant_id=$1
	ORDER BY name ASC, version DESC
	`, pgTenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]milestone.Config, 0, 16)
	for rows.Next() {
		cfg, err := scanConfig(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cfg)
	}
	return out, rows.Err()
}

func (r *ConfigRepository) Create(ctx context.Context, cfg milestone.Config) (milestone.Config, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return milestone.Config{}, err
	}
	tenantID := cfg.TenantID()
	if tenantID == uuid.Nil {
		tenantID, err = composables.UseTenantID(ctx)
		if err != nil {
			return milestone.Config{}, err
		}
	}
	defsRaw, err := json.Marshal(cfg.Definitions())
	if err != nil {
		return milestone.Config{}, fmt.Errorf("encode milestone definitions: %w", err)
	}
	created, err := scanConfig(tx.QueryRow(ctx, `
	INSERT INTO progress_configs (tenant_id, name, version, workflow_type, definitions)
	VALUES ($1,$2,$3,$4,$5)
	RETURNING id, tenant_id, name, version, workflow_type, definitions, created_at
	`,
		pgUUID(tenantID),
		cfg.Name(),
		cfg.Version(),
		string(cfg.WorkflowType()),
		defsRaw,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return milestone.Config{}, milestone.ErrConfigNameTaken
		}
		return milestone.Config{}, fmt.Errorf("create progress config: %w", err)
	}
	return created, nil
}
