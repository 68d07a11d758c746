package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/clachance14/pipetrak/modules/importer/domain/welder"
	"github.com/clachance14/pipetrak/pkg/composables"
)

type WelderRepository struct{}

func NewWelderRepository() welder.Repository {
	return &WelderRepository{}
}

func scanWelder(row pgx.Row) (welder.Welder, error) {
	var (
		id, tenantID, projectID pgtype.UUID
		stencil, name, status   string
		createdAt               time.Time
	)
	if err := row.Scan(&id, &tenantID, &projectID, &stencil, &name, &status, &createdAt); err != nil {
		return welder.Welder{}, err
	}
	return welder.Hydrate(asUUID(tenantID), asUUID(id), asUUID(projectID), stencil, name, welder.Status(status), createdAt), nil
}

func (r *WelderRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]welder.Welder, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	_, pgTenantID, err := tenantIDs(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
	SELECT id, tenant_id, project_id, stencil, name, status, created_at
	FROM welders
	WHERE tenant_id=$1 AND project_id=$2
	ORDER BY stencil ASC, id ASC
	`, pgTenantID, pgUUID(projectID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]welder.Welder, 0, 32)
	for rows.Next() {
		w, err := scanWelder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (r *WelderRepository) Create(ctx context.Context, w welder.Welder) (welder.Welder, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return welder.Welder{}, err
	}
	tenantID := w.TenantID()
	if tenantID == uuid.Nil {
		tenantID, err = composables.UseTenantID(ctx)
		if err != nil {
			return welder.Welder{}, err
		}
	}
	// Concurrent imports may race on the same stencil; the unique constraint
	// plus DO NOTHING keeps the first row and the re-select returns it.
	created, err := scanWelder(tx.QueryRow(ctx, `
	WITH ins AS (
		INSERT INTO welders (tenant_id, project_id, stencil, name, status)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (tenant_id, project_id, stencil) DO NOTHING
		RETURNING id, tenant_id, project_id, stencil, name, status, created_at
	)
	SELECT * FROM ins
	UNION ALL
	SELECT id, tenant_id, project_id, stencil, name, status, created_at
	FROM welders
	WHERE tenant_id=$1 AND project_id=$2 AND stencil=$3
	LIMIT 1
	`,
		pgUUID(tenantID),
		pgUUID(w.ProjectID()),
		w.Stencil(),
		w.Name(),
		string(w.Status()),
	))
	if err != nil {
		return welder.Welder{}, fmt.Errorf("create welder: %w", err)
	}
	return created, nil
}

func (r *WelderRepository) SetStatus(ctx context.Context, welderID uuid.UUID, status welder.Status) (welder.Welder, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return welder.Welder{}, err
	}
	_, pgTenantID, err := tenantIDs(ctx)
	if err != nil {
		return welder.Welder{}, err
	}
	updated, err := scanWelder(tx.QueryRow(ctx, `
	UPDATE welders
	SET status=$3
	WHERE tenant_id=$1 AND id=$2
	RETURNING id, tenant_id, project_id, stencil, name, status, created_at
	`, pgTenantID, pgUUID(welderID), string(status)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return welder.Welder{}, welder.ErrNotFound
		}
		return welder.Welder{}, fmt.Errorf("set welder status: %w", err)
	}
	return updated, nil
}
