package milestone

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clachance14/pipetrak/pkg/serrors"
)

type WorkflowType string

const (
	// WorkflowDiscrete and WorkflowHybrid are descriptive metadata only.
	// Update validation is driven by each definition's IsPartial flag.
	WorkflowDiscrete WorkflowType = "discrete"
	WorkflowHybrid   WorkflowType = "hybrid"
)

var (
	ErrEmptyConfigName = serrors.NewError("PROGRESS_EMPTY_CONFIG_NAME", "configuration name is required")
	ErrNoDefinitions   = serrors.NewError("PROGRESS_NO_DEFINITIONS", "configuration requires at least one milestone definition")
	ErrDuplicateName   = serrors.NewError("PROGRESS_DUPLICATE_MILESTONE", "milestone names must be unique within a configuration")
	ErrBadWeight       = serrors.NewError("PROGRESS_BAD_WEIGHT", "milestone weight must be between 0 and 100")
	ErrBadWeightSum    = serrors.NewError("PROGRESS_BAD_WEIGHT_SUM", "milestone weights must sum to exactly 100")
	ErrBadWorkflowType = serrors.NewError("PROGRESS_BAD_WORKFLOW_TYPE", "workflow type must be discrete or hybrid")
	ErrEmptyDefinition = serrors.NewError("PROGRESS_EMPTY_MILESTONE_DEFINITION", "milestone definition name is required")
)

// Definition is one entry in a component category's progress configuration.
type Definition struct {
	Name           string `json:"name"`
	Weight         int    `json:"weight"`
	Order          int    `json:"order"`
	IsPartial      bool   `json:"is_partial"`
	RequiresWelder bool   `json:"requires_welder"`
}

// Config is a named, versioned set of milestone definitions for one component
// category. It is authored by configuration administrators and read-only to
// the progress engine.
type Config struct {
	id           uuid.UUID
	tenantID     uuid.UUID
	name         string
	version      int
	workflowType WorkflowType
	definitions  []Definition
	createdAt    time.Time
}

// NewConfig validates a configuration at authoring time. Weight-sum and
// uniqueness violations are rejected here, not at update time.
func NewConfig(tenantID uuid.UUID, name string, workflowType WorkflowType, definitions []Definition) (Config, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Config{}, ErrEmptyConfigName
	}
	switch workflowType {
	case WorkflowDiscrete, WorkflowHybrid:
	default:
		return Config{}, ErrBadWorkflowType.Withf("got %q", workflowType)
	}
	if len(definitions) == 0 {
		return Config{}, ErrNoDefinitions
	}

	seen := make(map[string]struct{}, len(definitions))
	sum := 0
	for _, def := range definitions {
		if strings.TrimSpace(def.Name) == "" {
			return Config{}, ErrEmptyDefinition
		}
		if _, dup := seen[def.Name]; dup {
			return Config{}, ErrDuplicateName.Withf("milestone %q", def.Name)
		}
		seen[def.Name] = struct{}{}
		if def.Weight < 0 || def.Weight > 100 {
			return Config{}, ErrBadWeight.Withf("milestone %q has weight %d", def.Name, def.Weight)
		}
		sum += def.Weight
	}
	if sum != 100 {
		return Config{}, ErrBadWeightSum.Withf("got %d", sum)
	}

	return Config{
		tenantID:     tenantID,
		name:         name,
		version:      1,
		workflowType: workflowType,
		definitions:  definitions,
	}, nil
}

func Hydrate(
	id uuid.UUID,
	tenantID uuid.UUID,
	name string,
	version int,
	workflowType WorkflowType,
	definitions []Definition,
	createdAt time.Time,
) Config {
	return Config{
		id:           id,
		tenantID:     tenantID,
		name:         strings.TrimSpace(name),
		version:      version,
		workflowType: workflowType,
		definitions:  definitions,
		createdAt:    createdAt,
	}
}

func (c Config) ID() uuid.UUID              { return c.id }
func (c Config) TenantID() uuid.UUID        { return c.tenantID }
func (c Config) Name() string               { return c.name }
func (c Config) Version() int               { return c.version }
func (c Config) WorkflowType() WorkflowType { return c.workflowType }
func (c Config) Definitions() []Definition  { return c.definitions }
func (c Config) CreatedAt() time.Time       { return c.createdAt }
func (c Config) IsZero() bool               { return c.id == uuid.Nil && c.name == "" }

// Definition looks up a milestone definition by exact, case-sensitive name.
func (c Config) Definition(name string) (Definition, bool) {
	for _, def := range c.definitions {
		if def.Name == name {
			return def, true
		}
	}
	return Definition{}, false
}
