package services

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/clachance14/pipetrak/modules/progress/domain/milestone"
	"github.com/clachance14/pipetrak/pkg/composables"
)

type ConfigService struct {
	configs milestone.ConfigRepository
}

func NewConfigService(configs milestone.ConfigRepository) *ConfigService {
	return &ConfigService{configs: configs}
}

func (s *ConfigService) GetConfig(ctx context.Context, id uuid.UUID) (milestone.Config, error) {
	cfg, err := composables.InTenantTxResult(ctx, func(txCtx context.Context) (milestone.Config, error) {
		return s.configs.GetByID(txCtx, id)
	})
	if err != nil {
		return milestone.Config{}, mapProgressError(err)
	}
	return cfg, nil
}

func (s *ConfigService) GetConfigByName(ctx context.Context, name string) (milestone.Config, error) {
	cfg, err := composables.InTenantTxResult(ctx, func(txCtx context.Context) (milestone.Config, error) {
		return s.configs.GetByName(txCtx, name)
	})
	if err != nil {
		return milestone.Config{}, mapProgressError(err)
	}
	return cfg, nil
}

func (s *ConfigService) ListConfigs(ctx context.Context) ([]milestone.Config, error) {
	cfgs, err := composables.InTenantTxResult(ctx, func(txCtx context.Context) ([]milestone.Config, error) {
		return s.configs.List(txCtx)
	})
	if err != nil {
		return nil, mapProgressError(err)
	}
	return cfgs, nil
}

// CreateConfig authors a new configuration version. The DTO is expected to
// have passed Ok already; the weight-sum and duplicate-name rules are
// re-checked by the domain constructor regardless.
func (s *ConfigService) CreateConfig(ctx context.Context, dto *milestone.CreateConfigDTO) (milestone.Config, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return milestone.Config{}, newServiceError(http.StatusUnauthorized, "TENANT_REQUIRED", "configuration authoring requires a tenant", err)
	}
	entity, err := dto.ToEntity(tenantID)
	if err != nil {
		return milestone.Config{}, mapProgressError(err)
	}
	created, err := composables.InTenantTxResult(ctx, func(txCtx context.Context) (milestone.Config, error) {
		return s.configs.Create(txCtx, entity)
	})
	if err != nil {
		return milestone.Config{}, mapProgressError(err)
	}
	return created, nil
}
