package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/clachance14/pipetrak/modules/reporting/domain/earnedvalue"
	"github.com/clachance14/pipetrak/pkg/composables"
)

const (
	groupedByDrawingQuery = `
		SELECT
			COALESCE(d.number, '') AS drawing_number,
			COUNT(c.id) AS component_count,
			COALESCE(SUM(c.budgeted_hours * c.percent_complete / 100), 0) AS earned_hours,
			COALESCE(SUM(c.budgeted_hours), 0) AS allocated_hours
		FROM progress_components c
		LEFT JOIN drawings d ON d.id = c.drawing_id AND d.tenant_id = c.tenant_id
		WHERE c.tenant_id = $1 AND c.project_id = $2
		GROUP BY COALESCE(d.number, '')
		ORDER BY COALESCE(d.number, '') = '', COALESCE(d.number, '')`

	projectHoursQuery = `
		SELECT budgeted_hours, percent_complete
		FROM progress_components
		WHERE tenant_id = $1 AND project_id = $2`
)

type PGReportRepository struct{}

func NewReportRepository() earnedvalue.Repository {
	return &PGReportRepository{}
}

func (r *PGReportRepository) GroupedByDrawing(ctx context.Context, projectID uuid.UUID) ([]earnedvalue.GroupRow, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	_, tenantUUID, err := tenantIDs(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, groupedByDrawingQuery, tenantUUID, pgUUID(projectID))
	if err != nil {
		return nil, errors.Wrap(err, "query grouped component hours")
	}
	defer rows.Close()

	var groups []earnedvalue.GroupRow
	for rows.Next() {
		var g earnedvalue.GroupRow
		if err := rows.Scan(&g.Key, &g.ComponentCount, &g.EarnedHours, &g.AllocatedHours); err != nil {
			return nil, errors.Wrap(err, "scan grouped component hours")
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (r *PGReportRepository) ProjectHours(ctx context.Context, projectID uuid.UUID) ([]earnedvalue.ComponentHours, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	_, tenantUUID, err := tenantIDs(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, projectHoursQuery, tenantUUID, pgUUID(projectID))
	if err != nil {
		return nil, errors.Wrap(err, "query project component hours")
	}
	defer rows.Close()

	var hours []earnedvalue.ComponentHours
	for rows.Next() {
		var budget, pct pgtype.Float8
		if err := rows.Scan(&budget, &pct); err != nil {
			return nil, errors.Wrap(err, "scan project component hours")
		}
		var ch earnedvalue.ComponentHours
		if budget.Valid {
			v := budget.Float64
			ch.BudgetedHours = &v
		}
		if pct.Valid {
			v := pct.Float64
			ch.PercentComplete = &v
		}
		hours = append(hours, ch)
	}
	return hours, rows.Err()
}
