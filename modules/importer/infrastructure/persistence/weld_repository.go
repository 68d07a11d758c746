package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/clachance14/pipetrak/modules/importer/domain/weld"
	"github.com/clachance14/pipetrak/pkg/composables"
)

type WeldRepository struct{}

func NewWeldRepository() weld.Repository {
	return &WeldRepository{}
}

const weldColumns = `
	id, tenant_id, component_id, project_id, weld_type, size, schedule,
	spec_code, welder_id, date_welded, nde_result, xray_percent, comments,
	extra, created_at`

func scanWeldDetail(row pgx.Row) (weld.Detail, error) {
	var (
		id, tenantID, componentID, projectID pgtype.UUID
		welderID                             pgtype.UUID
		weldType, size, schedule, specCode   string
		ndeResult, comments                  string
		dateWelded                           pgtype.Date
		xrayPercent                          pgtype.Float8
		extraRaw                             []byte
		createdAt                            time.Time
	)
	if err := row.Scan(
		&id, &tenantID, &componentID, &projectID, &weldType, &size, &schedule,
		&specCode, &welderID, &dateWelded, &ndeResult, &xrayPercent, &comments,
		&extraRaw, &createdAt,
	); err != nil {
		return weld.Detail{}, err
	}
	d := weld.Detail{
		DetailID:    asUUID(id),
		TenantID:    asUUID(tenantID),
		ComponentID: asUUID(componentID),
		ProjectID:   asUUID(projectID),
		WeldType:    weldType,
		Size:        size,
		Schedule:    schedule,
		SpecCode:    specCode,
		WelderID:    asUUID(welderID),
		NDEResult:   ndeResult,
		Comments:    comments,
		CreatedAt:   createdAt,
	}
	if dateWelded.Valid {
		t := dateWelded.Time
		d.DateWelded = &t
	}
	if xrayPercent.Valid {
		v := xrayPercent.Float64
		d.XRayPercent = &v
	}
	if len(extraRaw) > 0 {
		if err := json.Unmarshal(extraRaw, &d.Extra); err != nil {
			return weld.Detail{}, fmt.Errorf("decode extra fields: %w", err)
		}
	}
	return d, nil
}

func (r *WeldRepository) Insert(ctx context.Context, d weld.Detail) (weld.Detail, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return weld.Detail{}, err
	}
	tenantID := d.TenantID
	if tenantID == uuid.Nil {
		tenantID, err = composables.UseTenantID(ctx)
		if err != nil {
			return weld.Detail{}, err
		}
	}
	var extraRaw []byte
	if len(d.Extra) > 0 {
		extraRaw, err = json.Marshal(d.Extra)
		if err != nil {
			return weld.Detail{}, fmt.Errorf("encode extra fields: %w", err)
		}
	}
	var dateWelded pgtype.Date
	if d.DateWelded != nil {
		dateWelded = pgtype.Date{Time: *d.DateWelded, Valid: true}
	}
	var xrayPercent pgtype.Float8
	if d.XRayPercent != nil {
		xrayPercent = pgtype.Float8{Float64: *d.XRayPercent, Valid: true}
	}

	created, err := scanWeldDetail(tx.QueryRow(ctx, `
	INSERT INTO weld_details (
		tenant_id, component_id, project_id, weld_type, size, schedule,
		spec_code, welder_id, date_welded, nde_result, xray_percent,
		comments, extra
	)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	RETURNING`+weldColumns+`
	`,
		pgUUID(tenantID),
		pgUUID(d.ComponentID),
		pgUUID(d.ProjectID),
		d.WeldType,
		d.Size,
		d.Schedule,
		d.SpecCode,
		nullableUUID(d.WelderID),
		dateWelded,
		d.NDEResult,
		xrayPercent,
		d.Comments,
		extraRaw,
	))
	if err != nil {
		return weld.Detail{}, fmt.Errorf("insert weld detail: %w", err)
	}
	return created, nil
}

func (r *WeldRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]weld.Detail, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	_, pgTenantID, err := tenantIDs(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
	SELECT`+weldColumns+`
	FROM weld_details
	WHERE tenant_id=$1 AND project_id=$2
	ORDER BY created_at ASC, id ASC
	`, pgTenantID, pgUUID(projectID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]weld.Detail, 0, 64)
	for rows.Next() {
		d, err := scanWeldDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
