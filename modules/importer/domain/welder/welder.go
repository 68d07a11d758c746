package welder

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusVerified Status = "verified"
	// StatusUnverified marks welders auto-created during an import run,
	// pending manual verification.
	StatusUnverified Status = "unverified"
)

type Welder struct {
	tenantID  uuid.UUID
	welderID  uuid.UUID
	projectID uuid.UUID
	stencil   string
	name      string
	status    Status
	createdAt time.Time
}

func New(tenantID, projectID uuid.UUID, stencil, name string, status Status) Welder {
	return Welder{
		tenantID:  tenantID,
		projectID: projectID,
		stencil:   strings.TrimSpace(stencil),
		name:      strings.TrimSpace(name),
		status:    status,
	}
}

func Hydrate(
	tenantID uuid.UUID,
	welderID uuid.UUID,
	projectID uuid.UUID,
	stencil string,
	name string,
	status Status,
	createdAt time.Time,
) Welder {
	return Welder{
		tenantID:  tenantID,
		welderID:  welderID,
		projectID: projectID,
		stencil:   strings.TrimSpace(stencil),
		name:      strings.TrimSpace(name),
		status:    status,
		createdAt: createdAt,
	}
}

func (w Welder) TenantID() uuid.UUID  { return w.tenantID }
func (w Welder) WelderID() uuid.UUID  { return w.welderID }
func (w Welder) ProjectID() uuid.UUID { return w.projectID }
func (w Welder) Stencil() string      { return w.stencil }
func (w Welder) Name() string         { return w.name }
func (w Welder) Status() Status       { return w.status }
func (w Welder) CreatedAt() time.Time { return w.createdAt }
func (w Welder) IsZero() bool         { return w.welderID == uuid.Nil && w.stencil == "" }
