package services

import (
	"fmt"
	"net/http"

	"github.com/go-faster/errors"

	"github.com/clachance14/pipetrak/modules/importer/domain/drawing"
	"github.com/clachance14/pipetrak/modules/importer/domain/welder"
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

func mapReferenceError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, drawing.ErrNotFound):
		return newServiceError(http.StatusNotFound, "DRAWING_NOT_FOUND", "drawing not found", err)
	case errors.Is(err, drawing.ErrNumberTaken):
		return newServiceError(http.StatusConflict, "DRAWING_NUMBER_TAKEN", "drawing number already exists for project", err)
	case errors.Is(err, welder.ErrNotFound):
		return newServiceError(http.StatusNotFound, "WELDER_NOT_FOUND", "welder not found", err)
	}
	return err
}
