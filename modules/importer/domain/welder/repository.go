package welder

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("welder not found")

type Repository interface {
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]Welder, error)
	Create(ctx context.Context, w Welder) (Welder, error)
	SetStatus(ctx context.Context, welderID uuid.UUID, status Status) (Welder, error)
}
