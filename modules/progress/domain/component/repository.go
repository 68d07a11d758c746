package component

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/clachance14/pipetrak/modules/progress/domain/milestone"
)

var ErrNotFound = errors.New("component not found")

type FindParams struct {
	ProjectID uuid.UUID
	DrawingID uuid.UUID
	Type      string
	Limit     int
	Offset    int
}

type Repository interface {
	GetByID(ctx context.Context, componentID uuid.UUID) (Component, error)
	GetPaginated(ctx context.Context, params *FindParams) ([]Component, int64, error)
	Create(ctx context.Context, c Component) (Component, error)
	UpdateProgress(ctx context.Context, componentID uuid.UUID, state milestone.State, percent float64) (Component, error)
	Delete(ctx context.Context, componentID uuid.UUID) error
}
