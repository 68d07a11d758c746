package milestone

import (
	"math"
	"strings"

	"github.com/clachance14/pipetrak/pkg/serrors"
)

// Action classifies a milestone change for the audit trail.
type Action string

const (
	ActionComplete Action = "complete"
	ActionRollback Action = "rollback"
	ActionUpdate   Action = "update"
)

var (
	ErrEmptyName    = serrors.NewError("PROGRESS_EMPTY_MILESTONE_NAME", "milestone name is required")
	ErrNotFound     = serrors.NewError("PROGRESS_MILESTONE_NOT_FOUND", "milestone is not defined in the configuration")
	ErrTypeMismatch = serrors.NewError("PROGRESS_TYPE_MISMATCH", "milestone value has the wrong type")
	ErrOutOfRange   = serrors.NewError("PROGRESS_VALUE_OUT_OF_RANGE", "partial milestone value must be between 0 and 100")
)

// ValidateUpdate checks a proposed milestone value against the configuration.
// Milestone names match exactly and case-sensitively. Partial milestones
// accept only finite numbers in [0,100]; discrete milestones accept only
// booleans (numeric 0/1 and string encodings are rejected). A nil return
// means the update is valid.
func ValidateUpdate(cfg Config, name string, value Value) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	def, ok := cfg.Definition(name)
	if !ok {
		return ErrNotFound.Withf("milestone %q", name)
	}
	if def.IsPartial {
		if value.Kind() != KindNumber {
			return ErrTypeMismatch.Withf("milestone %q expects a number, got %s", name, value.TypeName())
		}
		n := value.Float()
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return ErrTypeMismatch.Withf("milestone %q expects a finite number", name)
		}
		if n < 0 || n > 100 {
			return ErrOutOfRange.Withf("milestone %q got %v", name, n)
		}
		return nil
	}
	if value.Kind() != KindBool {
		return ErrTypeMismatch.Withf("milestone %q expects a boolean, got %s", name, value.TypeName())
	}
	return nil
}

// Classify determines the audit action for a change. Discrete milestones may
// be encoded either as booleans or as 0/100 numbers; both classify the same
// way. The rules apply strictly in order:
//
//  1. false -> true is a completion.
//  2. true -> false is a rollback.
//  3. For two numbers, leaving zero is a completion and returning to zero is
//     a rollback; any other numeric change is an update.
//  4. A never-set previous value is a completion.
//  5. Everything else is an update.
func Classify(previous, next Value) Action {
	if previous.Kind() == KindBool && next.Kind() == KindBool {
		if !previous.Boolean() && next.Boolean() {
			return ActionComplete
		}
		if previous.Boolean() && !next.Boolean() {
			return ActionRollback
		}
	}
	if previous.Kind() == KindNumber && next.Kind() == KindNumber {
		if previous.Float() == 0 && next.Float() > 0 {
			return ActionComplete
		}
		if previous.Float() > 0 && next.Float() == 0 {
			return ActionRollback
		}
		return ActionUpdate
	}
	if !previous.IsSet() {
		return ActionComplete
	}
	return ActionUpdate
}

// PercentComplete computes the weighted percent for a milestone state:
// discrete milestones contribute their full weight when satisfied, partial
// milestones contribute weight * value/100. An empty configuration yields 0.
func PercentComplete(state State, cfg Config) float64 {
	total := 0.0
	for _, def := range cfg.Definitions() {
		total += float64(def.Weight) * progressFraction(state.Get(def.Name), def)
	}
	return total
}

func progressFraction(v Value, def Definition) float64 {
	switch v.Kind() {
	case KindBool:
		if v.Boolean() {
			return 1.0
		}
		return 0.0
	case KindNumber:
		n := v.Float()
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0.0
		}
		if def.IsPartial {
			return clamp(n/100.0, 0, 1)
		}
		// 0/100-numeric encoding of a discrete milestone.
		if n > 0 {
			return 1.0
		}
		return 0.0
	default:
		return 0.0
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
