package services

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/clachance14/pipetrak/modules/progress/domain/audit"
	"github.com/clachance14/pipetrak/modules/progress/domain/component"
	"github.com/clachance14/pipetrak/modules/progress/domain/events"
	"github.com/clachance14/pipetrak/modules/progress/domain/milestone"
	"github.com/clachance14/pipetrak/pkg/composables"
	"github.com/clachance14/pipetrak/pkg/eventbus"
)

type UpdateMilestoneDTO struct {
	ComponentID   uuid.UUID
	MilestoneName string
	NewValue      json.RawMessage
	Metadata      map[string]any
}

type UpdateMilestoneResult struct {
	Component          component.Component
	PreviousValue      milestone.Value
	Action             milestone.Action
	AuditEventID       uuid.UUID
	NewPercentComplete float64
}

type ProgressService struct {
	components component.Repository
	configs    milestone.ConfigRepository
	audits     audit.Repository
	publisher  eventbus.EventBus
}

func NewProgressService(
	components component.Repository,
	configs milestone.ConfigRepository,
	audits audit.Repository,
	publisher eventbus.EventBus,
) *ProgressService {
	return &ProgressService{
		components: components,
		configs:    configs,
		audits:     audits,
		publisher:  publisher,
	}
}

// CreateComponent persists a new component with an empty milestone state.
// The referenced configuration must exist; the zero-progress percent is
// computed against it rather than assumed.
func (s *ProgressService) CreateComponent(ctx context.Context, dto *component.CreateDTO) (component.Component, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return component.Component{}, newServiceError(http.StatusUnauthorized, "TENANT_REQUIRED", "component creation requires a tenant", err)
	}
	created, err := composables.InTenantTxResult(ctx, func(txCtx context.Context) (component.Component, error) {
		cfg, err := s.configs.GetByID(txCtx, dto.ConfigID)
		if err != nil {
			return component.Component{}, err
		}
		entity := dto.ToEntity(tenantID)
		entity = entity.WithProgress(entity.State(), milestone.PercentComplete(entity.State(), cfg))
		return s.components.Create(txCtx, entity)
	})
	if err != nil {
		return component.Component{}, mapProgressError(err)
	}
	return created, nil
}

func (s *ProgressService) GetComponent(ctx context.Context, componentID uuid.UUID) (component.Component, error) {
	c, err := composables.InTenantTxResult(ctx, func(txCtx context.Context) (component.Component, error) {
		return s.components.GetByID(txCtx, componentID)
	})
	if err != nil {
		return component.Component{}, mapProgressError(err)
	}
	return c, nil
}

func (s *ProgressService) GetPaginated(ctx context.Context, params *component.FindParams) ([]component.Component, int64, error) {
	type page struct {
		items []component.Component
		total int64
	}
	p, err := composables.InTenantTxResult(ctx, func(txCtx context.Context) (page, error) {
		items, total, err := s.components.GetPaginated(txCtx, params)
		return page{items: items, total: total}, err
	})
	if err != nil {
		return nil, 0, mapProgressError(err)
	}
	return p.items, p.total, nil
}

func (s *ProgressService) AuditTrail(ctx context.Context, componentID uuid.UUID, limit, offset int) ([]audit.Event, error) {
	evs, err := composables.InTenantTxResult(ctx, func(txCtx context.Context) ([]audit.Event, error) {
		return s.audits.ListByComponent(txCtx, componentID, limit, offset)
	})
	if err != nil {
		return nil, mapProgressError(err)
	}
	return evs, nil
}

// UpdateMilestone applies one validated milestone change: load component and
// configuration, validate the proposed value, classify it against the
// previous value, persist the new state with the recomputed percent, and
// append an audit row. Everything happens in one tenant transaction; last
// write wins, there is no optimistic locking.
func (s *ProgressService) UpdateMilestone(ctx context.Context, dto UpdateMilestoneDTO) (UpdateMilestoneResult, error) {
	userID, err := composables.UseUserID(ctx)
	if err != nil {
		return UpdateMilestoneResult{}, newServiceError(http.StatusUnauthorized, "USER_REQUIRED", "milestone updates require an authenticated user", err)
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return UpdateMilestoneResult{}, newServiceError(http.StatusUnauthorized, "TENANT_REQUIRED", "milestone updates require a tenant", err)
	}

	res, err := composables.InTenantTxResult(ctx, func(txCtx context.Context) (UpdateMilestoneResult, error) {
		comp, err := s.components.GetByID(txCtx, dto.ComponentID)
		if err != nil {
			return UpdateMilestoneResult{}, err
		}
		cfg, err := s.configs.GetByID(txCtx, comp.ConfigID())
		if err != nil {
			return UpdateMilestoneResult{}, err
		}

		next := milestone.ParseValue(dto.NewValue)
		if err := milestone.ValidateUpdate(cfg, dto.MilestoneName, next); err != nil {
			return UpdateMilestoneResult{}, err
		}

		previous := comp.State().Get(dto.MilestoneName)
		action := milestone.Classify(previous, next)
		state := comp.State().With(dto.MilestoneName, next)
		percent := milestone.PercentComplete(state, cfg)

		updated, err := s.components.UpdateProgress(txCtx, comp.ComponentID(), state, percent)
		if err != nil {
			return UpdateMilestoneResult{}, err
		}

		ev, err := s.audits.Insert(txCtx, audit.Event{
			TenantID:      tenantID,
			ComponentID:   comp.ComponentID(),
			MilestoneName: dto.MilestoneName,
			Action:        action,
			PreviousValue: previous,
			NewValue:      next,
			UserID:        userID,
			Metadata:      dto.Metadata,
		})
		if err != nil {
			return UpdateMilestoneResult{}, err
		}

		return UpdateMilestoneResult{
			Component:          updated,
			PreviousValue:      previous,
			Action:             action,
			AuditEventID:       ev.EventID,
			NewPercentComplete: percent,
		}, nil
	})
	if err != nil {
		return UpdateMilestoneResult{}, mapProgressError(err)
	}

	s.publishUpdated(ctx, tenantID, userID, dto, res)
	return res, nil
}

func (s *ProgressService) publishUpdated(ctx context.Context, tenantID, userID uuid.UUID, dto UpdateMilestoneDTO, res UpdateMilestoneResult) {
	prevRaw, _ := json.Marshal(res.PreviousValue)
	nextRaw, _ := json.Marshal(res.Component.State().Get(dto.MilestoneName))
	s.publisher.Publish(events.MilestoneUpdatedV1{
		EventID:         res.AuditEventID,
		EventVersion:    events.EventVersionV1,
		RequestID:       composables.UseRequestID(ctx),
		TenantID:        tenantID,
		ComponentID:     res.Component.ComponentID(),
		MilestoneName:   dto.MilestoneName,
		Action:          string(res.Action),
		PreviousValue:   prevRaw,
		NewValue:        nextRaw,
		PercentComplete: res.NewPercentComplete,
		UserID:          userID,
		TransactionTime: time.Now().UTC(),
	})
}
