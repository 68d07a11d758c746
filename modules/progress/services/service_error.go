package services

import (
	"fmt"
	"net/http"

	"github.com/go-faster/errors"

	"github.com/clachance14/pipetrak/modules/progress/domain/component"
	"github.com/clachance14/pipetrak/modules/progress/domain/milestone"
	"github.com/clachance14/pipetrak/pkg/serrors"
)

type ServiceError struct {
	Status  int
	Code    string
	Message string
	Cause   error
}

func (e *ServiceError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *ServiceError) Unwrap() error { return e.Cause }

func newServiceError(status int, code, message string, cause error) *ServiceError {
	return &ServiceError{Status: status, Code: code, Message: message, Cause: cause}
}

// mapProgressError converts domain errors into transport-ready service
// errors. Unknown errors pass through untouched so the controller reports
// them as internal failures.
func mapProgressError(err error) error {
	if err == nil {
		return nil
	}
	var base *serrors.BaseError
	if errors.As(err, &base) {
		return newServiceError(http.StatusBadRequest, base.Code, base.Message, err)
	}
	switch {
	case errors.Is(err, component.ErrNotFound):
		return newServiceError(http.StatusNotFound, "COMPONENT_NOT_FOUND", "component not found", err)
	case errors.Is(err, milestone.ErrConfigNotFound):
		return newServiceError(http.StatusNotFound, "PROGRESS_CONFIG_NOT_FOUND", "progress configuration not found", err)
	case errors.Is(err, milestone.ErrConfigNameTaken):
		return newServiceError(http.StatusConflict, "PROGRESS_CONFIG_NAME_TAKEN", "progress configuration name already exists", err)
	}
	return err
}
