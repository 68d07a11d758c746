package weld

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Detail is the weld-specific record hanging off a progress component. The
// component row carries identity and milestone state; the detail carries the
// weld metadata from the import sheet.
type Detail struct {
	DetailID    uuid.UUID
	TenantID    uuid.UUID
	ComponentID uuid.UUID
	ProjectID   uuid.UUID
	WeldType    string
	Size        string
	Schedule    string
	SpecCode    string
	WelderID    uuid.UUID
	DateWelded  *time.Time
	NDEResult   string
	XRayPercent *float64
	Comments    string
	Extra       map[string]string
	CreatedAt   time.Time
}

type Repository interface {
	Insert(ctx context.Context, d Detail) (Detail, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]Detail, error)
}
