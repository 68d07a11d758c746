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
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/clachance14/pipetrak/modules/progress/domain/component"
	"github.com/clachance14/pipetrak/modules/progress/domain/milestone"
	"github.com/clachance14/pipetrak/pkg/composables"
)

const componentColumns = `
	id, tenant_id, project_id, drawing_id, identifier, component_type,
	config_id, budgeted_hours, milestone_state, percent_complete,
	created_at, updated_at`

type ComponentRepository struct{}

func NewComponentRepository() component.Repository {
	return &ComponentRepository{}
}

func scanComponent(row pgx.Row) (component.Component, error) {
	var (
		id, tenantID, projectID, configID pgtype.UUID
		drawingID                         pgtype.UUID
		identifier, componentType         string
		budgetedHours, percent            float64
		stateRaw                          []byte
		createdAt, updatedAt              time.Time
	)
	if err := row.Scan(
		&id, &tenantID, &projectID, &drawingID, &identifier, &componentType,
		&configID, &budgetedHours, &stateRaw, &percent, &createdAt, &updatedAt,
	); err != nil {
		return component.Component{}, err
	}
	state := milestone.State{}
	if len(stateRaw) > 0 {
		if err := json.Unmarshal(stateRaw, &state); err != nil {
			return component.Component{}, fmt.Errorf("decode milestone state: %w", err)
		}
	}
	return component.Hydrate(
		asUUID(tenantID), asUUID(id), asUUID(projectID), asUUID(drawingID),
		identifier, componentType, asUUID(configID), budgetedHours,
		state, percent, createdAt, updatedAt,
	), nil
}

func (r *ComponentRepository) GetByID(ctx context.Context, componentID uuid.UUID) (component.Component, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return component.Component{}, err
	}
	_, pgTenantID, err := tenantIDs(ctx)
	if err != nil {
		return component.Component{}, err
	}
	c, err := scanComponent(tx.QueryRow(ctx, `
	SELECT`+componentColumns+`
	FROM progress_components
	WHERE tenant_id=$1 AND id=$2
	`, pgTenantID, pgUUID(componentID)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return component.Component{}, component.ErrNotFound
		}
		return component.Component{}, err
	}
	return c, nil
}

func (r *ComponentRepository) GetPaginated(ctx context.Context, params *component.FindParams) ([]component.Component, int64, error) {
	if params == nil {
		params = &component.FindParams{}
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, 0, err
	}
	_, pgTenantID, err := tenantIDs(ctx)
	if err != nil {
		return nil, 0, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := tx.Query(ctx, `
	SELECT`+componentColumns+`
	FROM progress_components
	WHERE tenant_id=$1
	  AND ($2::uuid IS NULL OR project_id=$2)
	  AND ($3::uuid IS NULL OR drawing_id=$3)
	  AND ($4::text = '' OR component_type=$4)
	ORDER BY identifier ASC, id ASC
	LIMIT $5 OFFSET $6
	`,
		pgTenantID,
		nullableUUID(params.ProjectID),
		nullableUUID(params.DrawingID),
		strings.TrimSpace(params.Type),
		limit,
		offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]component.Component, 0, limit)
	for rows.Next() {
		c, err := scanComponent(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int64
	err = tx.QueryRow(ctx, `
	SELECT COUNT(*)
	FROM progress_components
	WHERE tenant_id=$1
	  AND ($2::uuid IS NULL OR project_id=$2)
	  AND ($3::uuid IS NULL OR drawing_id=$3)
	  AND ($4::text = '' OR component_type=$4)
	`,
		pgTenantID,
		nullableUUID(params.ProjectID),
		nullableUUID(params.DrawingID),
		strings.TrimSpace(params.Type),
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *ComponentRepository) Create(ctx context.Context, c component.Component) (component.Component, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return component.Component{}, err
	}
	tenantID := c.TenantID()
	if tenantID == uuid.Nil {
		tenantID, err = composables.UseTenantID(ctx)
		if err != nil {
			return component.Component{}, err
		}
	}
	stateRaw, err := json.Marshal(c.State())
	if err != nil {
		return component.Component{}, fmt.Errorf("encode milestone state: %w", err)
	}
	created, err := scanComponent(tx.QueryRow(ctx, `
	INSERT INTO progress_components (
		tenant_id, project_id, drawing_id, identifier, component_type,
		config_id, budgeted_hours, milestone_state, percent_complete
	)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	RETURNING`+componentColumns+`
	`,
		pgUUID(tenantID),
		pgUUID(c.ProjectID()),
		nullableUUID(c.DrawingID()),
		c.Identifier(),
		c.ComponentType(),
		pgUUID(c.ConfigID()),
		c.BudgetedHours(),
		stateRaw,
		c.PercentComplete(),
	))
	if err != nil {
		return component.Component{}, fmt.Errorf("create component: %w", err)
	}
	return created, nil
}

func (r *ComponentRepository) UpdateProgress(ctx context.Context, componentID uuid.UUID, state milestone.State, percent float64) (component.Component, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return component.Component{}, err
	}
	_, pgTenantID, err := tenantIDs(ctx)
	if err != nil {
		return component.Component{}, err
	}
	stateRaw, err := json.Marshal(state)
	if err != nil {
		return component.Component{}, fmt.Errorf("encode milestone state: %w", err)
	}
	updated, err := scanComponent(tx.QueryRow(ctx, `
	UPDATE progress_components
	SET milestone_state=$3, percent_complete=$4, updated_at=now()
	WHERE tenant_id=$1 AND id=$2
	RETURNING`+componentColumns+`
	`, pgTenantID, pgUUID(componentID), stateRaw, percent))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return component.Component{}, component.ErrNotFound
		}
		return component.Component{}, err
	}
	return updated, nil
}

func (r *ComponentRepository) Delete(ctx context.Context, componentID uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, pgTenantID, err := tenantIDs(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `
	DELETE FROM progress_components
	WHERE tenant_id=$1 AND id=$2
	`, pgTenantID, pgUUID(componentID))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return component.ErrNotFound
	}
	return nil
}

// nullableUUID maps uuid.Nil to SQL NULL so optional filters and optional
// parents share one query shape.
func nullableUUID(id uuid.UUID) pgtype.UUID {
	if id == uuid.Nil {
		return pgtype.UUID{}
	}
	return pgUUID(id)
}
