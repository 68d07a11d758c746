package component

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/clachance14/pipetrak/pkg/constants"
	"github.com/clachance14/pipetrak/pkg/serrors"
)

type CreateDTO struct {
	ProjectID     uuid.UUID `json:"project_id" validate:"required"`
	DrawingID     uuid.UUID `json:"drawing_id"`
	Identifier    string    `json:"identifier" validate:"required"`
	ComponentType string    `json:"component_type" validate:"required"`
	ConfigID      uuid.UUID `json:"config_id" validate:"required"`
	BudgetedHours float64   `json:"budgeted_hours" validate:"min=0"`
}

func (d *CreateDTO) Normalize() {
	d.Identifier = strings.TrimSpace(d.Identifier)
	d.ComponentType = strings.TrimSpace(d.ComponentType)
}

func (d *CreateDTO) Ok() (map[string]string, bool) {
	d.Normalize()
	errs := constants.Validate.Struct(d)
	if errs == nil {
		return map[string]string{}, true
	}
	validationErrors := serrors.ProcessValidatorErrors(errs.(validator.ValidationErrors))
	return validationErrors.Messages(), false
}

func (d *CreateDTO) ToEntity(tenantID uuid.UUID) Component {
	return New(tenantID, d.ProjectID, d.DrawingID, d.Identifier, d.ComponentType, d.ConfigID, d.BudgetedHours)
}
