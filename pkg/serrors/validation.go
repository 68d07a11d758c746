package serrors

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ValidationErrors maps a DTO field name to its validation failure.
type ValidationErrors map[string]*BaseError

// Messages flattens the map to field -> human-readable message for API
// responses.
func (v ValidationErrors) Messages() map[string]string {
	out := make(map[string]string, len(v))
	for field, err := range v {
		out[field] = err.Message
	}
	return out
}

// ProcessValidatorErrors converts go-playground validator failures into
// structured per-field errors.
func ProcessValidatorErrors(errs validator.ValidationErrors) ValidationErrors {
	out := make(ValidationErrors, len(errs))
	for _, fe := range errs {
		out[fe.Field()] = &BaseError{
			Code:    fmt.Sprintf("VALIDATION_%s", toScreamingSnake(fe.Tag())),
			Message: fmt.Sprintf("field %s failed on the %q rule", fe.Field(), fe.Tag()),
			Data: map[string]string{
				"field": fe.Field(),
				"tag":   fe.Tag(),
				"param": fe.Param(),
			},
		}
	}
	return out
}

func toScreamingSnake(tag string) string {
	out := make([]rune, 0, len(tag))
	for _, r := range tag {
		switch {
		case r >= 'a' && r <= 'z':
			out = append(out, r-'a'+'A')
		case r == '=' || r == ',' || r == '|':
			out = append(out, '_')
		default:
			out = append(out, r)
		}
	}
	return string(out)
}
