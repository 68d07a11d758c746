package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/clachance14/pipetrak/modules/progress/domain/audit"
	"github.com/clachance14/pipetrak/modules/progress/domain/milestone"
	"github.com/clachance14/pipetrak/pkg/composables"
)

type AuditRepository struct{}

func NewAuditRepository() audit.Repository {
	return &AuditRepository{}
}

func (r *AuditRepository) Insert(ctx context.Context, e audit.Event) (audit.Event, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return audit.Event{}, err
	}
	tenantID := e.TenantID
	if tenantID == uuid.Nil {
		tenantID, err = composables.UseTenantID(ctx)
		if err != nil {
			return audit.Event{}, err
		}
	}
	prevRaw, err := json.Marshal(e.PreviousValue)
	if err != nil {
		return audit.Event{}, fmt.Errorf("encode previous value: %w", err)
	}
	newRaw, err := json.Marshal(e.NewValue)
	if err != nil {
		return audit.Event{}, fmt.Errorf("encode new value: %w", err)
	}
	var metaRaw []byte
	if len(e.Metadata) > 0 {
		metaRaw, err = json.Marshal(e.Metadata)
		if err != nil {
			return audit.Event{}, fmt.Errorf("encode metadata: %w", err)
		}
	}

	var (
		eventID   pgtype.UUID
		createdAt time.Time
	)
	err = tx.QueryRow(ctx, `
	INSERT INTO progress_audit_events (
		tenant_id, component_id, milestone_name, action,
		previous_value, new_value, user_id, metadata
	)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	RETURNING id, created_at
	`,
		pgUUID(tenantID),
		pgUUID(e.ComponentID),
		e.MilestoneName,
		string(e.Action),
		prevRaw,
		newRaw,
		pgUUID(e.UserID),
		metaRaw,
	).Scan(&eventID, &createdAt)
	if err != nil {
		return audit.Event{}, fmt.Errorf("insert audit event: %w", err)
	}

	e.TenantID = tenantID
	e.EventID = asUUID(eventID)
	e.CreatedAt = createdAt
	return e, nil
}

func (r *AuditRepository) ListByComponent(ctx context.Context, componentID uuid.UUID, limit, offset int) ([]audit.Event, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	_, pgTenantID, err := tenantIDs(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := tx.Query(ctx, `
	SELECT id, tenant_id, component_id, milestone_name, action,
	       previous_value, new_value, user_id, metadata, created_at
	FROM progress_audit_events
	WHERE tenant_id=$1 AND component_id=$2
	ORDER BY created_at DESC, id DESC
	LIMIT $3 OFFSET $4
	`, pgTenantID, pgUUID(componentID), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]audit.Event, 0, limit)
	for rows.Next() {
		e, err := scanAuditEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanAuditEvent(row pgx.Row) (audit.Event, error) {
	var (
		id, tenantID, componentID, userID pgtype.UUID
		name, action                      string
		prevRaw, newRaw, metaRaw          []byte
		createdAt                         time.Time
	)
	if err := row.Scan(&id, &tenantID, &componentID, &name, &action, &prevRaw, &newRaw, &userID, &metaRaw, &createdAt); err != nil {
		return audit.Event{}, err
	}
	e := audit.Event{
		EventID:       asUUID(id),
		TenantID:      asUUID(tenantID),
		ComponentID:   asUUID(componentID),
		MilestoneName: name,
		Action:        milestone.Action(action),
		UserID:        asUUID(userID),
		CreatedAt:     createdAt,
	}
	if err := json.Unmarshal(prevRaw, &e.PreviousValue); err != nil {
		return audit.Event{}, fmt.Errorf("decode previous value: %w", err)
	}
	if err := json.Unmarshal(newRaw, &e.NewValue); err != nil {
		return audit.Event{}, fmt.Errorf("decode new value: %w", err)
	}
	if len(metaRaw) > 0 {
		if err := json.Unmarshal(metaRaw, &e.Metadata); err != nil {
			return audit.Event{}, fmt.Errorf("decode metadata: %w", err)
		}
	}
	return e, nil
}
