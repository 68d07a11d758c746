package component

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clachance14/pipetrak/modules/progress/domain/milestone"
)

type Component struct {
	tenantID        uuid.UUID
	componentID     uuid.UUID
	projectID       uuid.UUID
	drawingID       uuid.UUID
	identifier      string
	componentType   string
	configID        uuid.UUID
	budgetedHours   float64
	state           milestone.State
	percentComplete float64
	createdAt       time.Time
	updatedAt       time.Time
}

func New(
	tenantID uuid.UUID,
	projectID uuid.UUID,
	drawingID uuid.UUID,
	identifier string,
	componentType string,
	configID uuid.UUID,
	budgetedHours float64,
) Component {
	return Component{
		tenantID:      tenantID,
		projectID:     projectID,
		drawingID:     drawingID,
		identifier:    strings.TrimSpace(identifier),
		componentType: strings.TrimSpace(componentType),
		configID:      configID,
		budgetedHours: budgetedHours,
		state:         milestone.State{},
	}
}

func Hydrate(
	tenantID uuid.UUID,
	componentID uuid.UUID,
	projectID uuid.UUID,
	drawingID uuid.UUID,
	identifier string,
	componentType string,
	configID uuid.UUID,
	budgetedHours float64,
	state milestone.State,
	percentComplete float64,
	createdAt time.Time,
	updatedAt time.Time,
) Component {
	if state == nil {
		state = milestone.State{}
	}
	return Component{
		tenantID:        tenantID,
		componentID:     componentID,
		projectID:       projectID,
		drawingID:       drawingID,
		identifier:      strings.TrimSpace(identifier),
		componentType:   strings.TrimSpace(componentType),
		configID:        configID,
		budgetedHours:   budgetedHours,
		state:           state,
		percentComplete: percentComplete,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

func (c Component) TenantID() uuid.UUID      { return c.tenantID }
func (c Component) ComponentID() uuid.UUID   { return c.componentID }
func (c Component) ProjectID() uuid.UUID     { return c.projectID }
func (c Component) DrawingID() uuid.UUID     { return c.drawingID }
func (c Component) Identifier() string       { return c.identifier }
func (c Component) ComponentType() string    { return c.componentType }
func (c Component) ConfigID() uuid.UUID      { return c.configID }
func (c Component) BudgetedHours() float64   { return c.budgetedHours }
func (c Component) State() milestone.State   { return c.state }
func (c Component) PercentComplete() float64 { return c.percentComplete }
func (c Component) CreatedAt() time.Time     { return c.createdAt }
func (c Component) UpdatedAt() time.Time     { return c.updatedAt }
func (c Component) IsZero() bool             { return c.componentID == uuid.Nil && c.identifier == "" }

// WithProgress returns a copy carrying the new milestone state and the
// percent recomputed from it. The receiver is never mutated.
func (c Component) WithProgress(state milestone.State, percent float64) Component {
	out := c
	out.state = state
	out.percentComplete = percent
	return out
}
