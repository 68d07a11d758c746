package drawing

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Drawing struct {
	tenantID  uuid.UUID
	drawingID uuid.UUID
	projectID uuid.UUID
	number    string
	title     string
	createdAt time.Time
}

func New(tenantID, projectID uuid.UUID, number, title string) Drawing {
	return Drawing{
		tenantID:  tenantID,
		projectID: projectID,
		number:    strings.TrimSpace(number),
		title:     strings.TrimSpace(title),
	}
}

func Hydrate(
	tenantID uuid.UUID,
	drawingID uuid.UUID,
	projectID uuid.UUID,
	number string,
	title string,
	createdAt time.Time,
) Drawing {
	return Drawing{
		tenantID:  tenantID,
		drawingID: drawingID,
		projectID: projectID,
		number:    strings.TrimSpace(number),
		title:     strings.TrimSpace(title),
		createdAt: createdAt,
	}
}

func (d Drawing) TenantID() uuid.UUID  { return d.tenantID }
func (d Drawing) DrawingID() uuid.UUID { return d.drawingID }
func (d Drawing) ProjectID() uuid.UUID { return d.projectID }
func (d Drawing) Number() string       { return d.number }
func (d Drawing) Title() string        { return d.title }
func (d Drawing) CreatedAt() time.Time { return d.createdAt }
func (d Drawing) IsZero() bool         { return d.drawingID == uuid.Nil && d.number == "" }
