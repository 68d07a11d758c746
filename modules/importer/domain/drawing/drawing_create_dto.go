package drawing

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/clachance14/pipetrak/pkg/constants"
	"github.com/clachance14/pipetrak/pkg/serrors"
)

type CreateDTO struct {
	ProjectID uuid.UUID `json:"project_id" validate:"required"`
	Number    string    `json:"number" validate:"required"`
	Title     string    `json:"title"`
}

func (d *CreateDTO) Normalize() {
	d.Number = strings.TrimSpace(d.Number)
	d.Title = strings.TrimSpace(d.Title)
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

func (d *CreateDTO) ToEntity(tenantID uuid.UUID) Drawing {
	return New(tenantID, d.ProjectID, d.Number, d.Title)
}
