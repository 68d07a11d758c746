package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/clachance14/pipetrak/modules/importer/domain/drawing"
	"github.com/clachance14/pipetrak/pkg/composables"
)

type DrawingRepository struct{}

func NewDrawingRepository() drawing.Repository {
	return &DrawingRepository{}
}

func scanDrawing(row pgx.Row) (drawing.Drawing, error) {
	var (
		id, tenantID, projectID pgtype.UUID
		number, title           string
		createdAt               time.Time
	)
	if err := row.Scan(&id, &tenantID, &projectID, &number, &title, &createdAt); err != nil {
		return drawing.Drawing{}, err
	}
	return drawing.Hydrate(asUUID(tenantID), asUUID(id), asUUID(projectID), number, title, createdAt), nil
}

func (r *DrawingRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]drawing.Drawing, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	_, pgTenantID, err := tenantIDs(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
	SELECT id, tenant_id, project_id, number, title, created_at
	FROM drawings
	WHERE tenant_id=$1 AND project_id=$2
	ORDER BY number ASC, id ASC
	`, pgTenantID, pgUUID(projectID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]drawing.Drawing, 0, 64)
	for rows.Next() {
		d, err := scanDrawing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *DrawingRepository) GetByNumber(ctx context.Context, projectID uuid.UUID, number string) (drawing.Drawing, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return drawing.Drawing{}, err
	}
	_, pgTenantID, err := tenantIDs(ctx)
	if err != nil {
		return drawing.Drawing{}, err
	}
	d, err := scanDrawing(tx.QueryRow(ctx, `
	SELECT id, tenant_id, project_id, number, title, created_at
	FROM drawings
	WHERE tenant_id=$1 AND project_id=$2 AND number=$3
	`, pgTenantID, pgUUID(projectID), strings.TrimSpace(number)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return drawing.Drawing{}, drawing.ErrNotFound
		}
		return drawing.Drawing{}, err
	}
	return d, nil
}

func (r *DrawingRepository) Create(ctx context.Context, d drawing.Drawing) (drawing.Drawing, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return drawing.Drawing{}, err
	}
	tenantID := d.TenantID()
	if tenantID == uuid.Nil {
		tenantID, err = composables.UseTenantID(ctx)
		if err != nil {
			return drawing.Drawing{}, err
		}
	}
	created, err := scanDrawing(tx.QueryRow(ctx, `
	INSERT INTO drawings (tenant_id, project_id, number, title)
	VALUES ($1,$2,$3,$4)
	RETURNING id, tenant_id, project_id, number, title, created_at
	`, pgUUID(tenantID), pgUUID(d.ProjectID()), d.Number(), d.Title()))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return drawing.Drawing{}, drawing.ErrNumberTaken
		}
		return drawing.Drawing{}, fmt.Errorf("create drawing: %w", err)
	}
	return created, nil
}
