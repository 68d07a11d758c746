package milestone

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/clachance14/pipetrak/pkg/constants"
	"github.com/clachance14/pipetrak/pkg/serrors"
)

type DefinitionDTO struct {
	Name           string `json:"name" validate:"required"`
	Weight         int    `json:"weight" validate:"min=0,max=100"`
	Order          int    `json:"order" validate:"min=0"`
	IsPartial      bool   `json:"is_partial"`
	RequiresWelder bool   `json:"requires_welder"`
}

type CreateConfigDTO struct {
	Name         string          `json:"name" validate:"required"`
	WorkflowType string          `json:"workflow_type" validate:"required,oneof=discrete hybrid"`
	Definitions  []DefinitionDTO `json:"definitions" validate:"required,min=1,dive"`
}

func (d *CreateConfigDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.WorkflowType = strings.ToLower(strings.TrimSpace(d.WorkflowType))
	for i := range d.Definitions {
		d.Definitions[i].Name = strings.TrimSpace(d.Definitions[i].Name)
	}
}

// Ok runs struct-level validation only. Weight-sum and duplicate-name rules
// live in NewConfig, which ToEntity delegates to.
func (d *CreateConfigDTO) Ok() (map[string]string, bool) {
	d.Normalize()
	errs := constants.Validate.Struct(d)
	if errs == nil {
		return map[string]string{}, true
	}
	validationErrors := serrors.ProcessValidatorErrors(errs.(validator.ValidationErrors))
	return validationErrors.Messages(), false
}

func (d *CreateConfigDTO) ToEntity(tenantID uuid.UUID) (Config, error) {
	defs := make([]Definition, 0, len(d.Definitions))
	for _, dto := range d.Definitions {
		defs = append(defs, Definition{
			Name:           dto.Name,
			Weight:         dto.Weight,
			Order:          dto.Order,
			IsPartial:      dto.IsPartial,
			RequiresWelder: dto.RequiresWelder,
		})
	}
	return NewConfig(tenantID, d.Name, WorkflowType(d.WorkflowType), defs)
}
