package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/clachance14/pipetrak/modules/progress/domain/milestone"
)

// Event is one applied milestone update. Rows are append-only; nothing in
// this module mutates or deletes them.
type Event struct {
	EventID       uuid.UUID
	TenantID      uuid.UUID
	ComponentID   uuid.UUID
	MilestoneName string
	Action        milestone.Action
	PreviousValue milestone.Value
	NewValue      milestone.Value
	UserID        uuid.UUID
	Metadata      map[string]any
	CreatedAt     time.Time
}

type Repository interface {
	Insert(ctx context.Context, e Event) (Event, error)
	ListByComponent(ctx context.Context, componentID uuid.UUID, limit, offset int) ([]Event, error)
}
