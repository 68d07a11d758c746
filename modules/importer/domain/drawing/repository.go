package drawing

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

var (
	ErrNotFound    = errors.New("drawing not found")
	ErrNumberTaken = errors.New("drawing number already exists for project")
)

type Repository interface {
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]Drawing, error)
	GetByNumber(ctx context.Context, projectID uuid.UUID, number string) (Drawing, error)
	Create(ctx context.Context, d Drawing) (Drawing, error)
}
