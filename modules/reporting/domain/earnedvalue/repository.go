package earnedvalue

import (
	"context"

	"github.com/google/uuid"
)

// Repository reads component progress aggregates for reporting.
type Repository interface {
	// GroupedByDrawing returns per-drawing earned and allocated hours for a
	// project, ordered by drawing number with the empty key last.
	GroupedByDrawing(ctx context.Context, projectID uuid.UUID) ([]GroupRow, error)
	// ProjectHours returns raw budget/percent pairs for every component of a
	// project.
	ProjectHours(ctx context.Context, projectID uuid.UUID) ([]ComponentHours, error)
}
