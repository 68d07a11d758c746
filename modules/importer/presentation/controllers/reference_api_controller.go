package controllers

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/clachance14/pipetrak/modules/importer/domain/drawing"
	"github.com/clachance14/pipetrak/modules/importer/domain/welder"
	"github.com/clachance14/pipetrak/modules/importer/services"
	"github.com/clachance14/pipetrak/pkg/application"
	"github.com/clachance14/pipetrak/pkg/composables"
	"github.com/clachance14/pipetrak/pkg/httpapi"
)

// ReferenceAPIController serves the reference data imports resolve against:
// drawing authoring and the welder verification surface.
type ReferenceAPIController struct {
	app       application.Application
	refs      *services.ReferenceService
	apiPrefix string
}

func NewReferenceAPIController(app application.Application) application.Controller {
	return &ReferenceAPIController{
		app:       app,
		refs:      app.Service(services.ReferenceService{}).(*services.ReferenceService),
		apiPrefix: "/import/api/reference",
	}
}

func (c *ReferenceAPIController) Key() string {
	return c.apiPrefix
}

func (c *ReferenceAPIController) Register(r *mux.Router) {
	api := r.PathPrefix(c.apiPrefix).Subrouter()

	api.HandleFunc("/projects/{id}/drawings", c.CreateDrawing).Methods(http.MethodPost)
	api.HandleFunc("/projects/{id}/drawings", c.ListDrawings).Methods(http.MethodGet)
	api.HandleFunc("/projects/{id}/welders", c.ListWelders).Methods(http.MethodGet)
	api.HandleFunc("/welders/{id}/verify", c.VerifyWelder).Methods(http.MethodPatch)
}

type drawingResponse struct {
	ID        uuid.UUID `json:"id"`
	ProjectID uuid.UUID `json:"project_id"`
	Number    string    `json:"number"`
	Title     string    `json:"title,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type welderResponse struct {
	ID        uuid.UUID `json:"id"`
	ProjectID uuid.UUID `json:"project_id"`
	Stencil   string    `json:"stencil"`
	Name      string    `json:"name,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func toDrawingResponse(d drawing.Drawing) drawingResponse {
	return drawingResponse{
		ID:        d.DrawingID(),
		ProjectID: d.ProjectID(),
		Number:    d.Number(),
		Title:     d.Title(),
		CreatedAt: d.CreatedAt(),
	}
}

func toWelderResponse(w welder.Welder) welderResponse {
	return welderResponse{
		ID:        w.WelderID(),
		ProjectID: w.ProjectID(),
		Stencil:   w.Stencil(),
		Name:      w.Name(),
		Status:    string(w.Status()),
		CreatedAt: w.CreatedAt(),
	}
}

type createDrawingRequest struct {
	Number string `json:"number"`
	Title  string `json:"title,omitempty"`
}

func (c *ReferenceAPIController) CreateDrawing(w http.ResponseWriter, r *http.Request) {
	requestID := composables.UseRequestID(r.Context())
	projectID, ok := pathUUID(w, r, requestID, "id")
	if !ok {
		return
	}
	var req createDrawingRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeAPIError(w, http.StatusBadRequest, requestID, "IMPORT_BAD_REQUEST", "invalid request body: "+err.Error())
		return
	}
	dto := &drawing.CreateDTO{ProjectID: projectID, Number: req.Number, Title: req.Title}
	if fields, ok := dto.Ok(); !ok {
		writeValidationError(w, requestID, fields)
		return
	}

	created, err := c.refs.CreateDrawing(r.Context(), dto)
	if err != nil {
		writeServiceError(w, requestID, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, toDrawingResponse(created))
}

func (c *ReferenceAPIController) ListDrawings(w http.ResponseWriter, r *http.Request) {
	requestID := composables.UseRequestID(r.Context())
	projectID, ok := pathUUID(w, r, requestID, "id")
	if !ok {
		return
	}
	drawings, err := c.refs.ListDrawings(r.Context(), projectID)
	if err != nil {
		writeServiceError(w, requestID, err)
		return
	}
	out := make([]drawingResponse, 0, len(drawings))
	for _, d := range drawings {
		out = append(out, toDrawingResponse(d))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{"drawings": out})
}

func (c *ReferenceAPIController) ListWelders(w http.ResponseWriter, r *http.Request) {
	requestID := composables.UseRequestID(r.Context())
	projectID, ok := pathUUID(w, r, requestID, "id")
	if !ok {
		return
	}
	welders, err := c.refs.ListWelders(r.Context(), projectID)
	if err != nil {
		writeServiceError(w, requestID, err)
		return
	}
	out := make([]welderResponse, 0, len(welders))
	for _, wr := range welders {
		out = append(out, toWelderResponse(wr))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{"welders": out})
}

func (c *ReferenceAPIController) VerifyWelder(w http.ResponseWriter, r *http.Request) {
	requestID := composables.UseRequestID(r.Context())
	welderID, ok := pathUUID(w, r, requestID, "id")
	if !ok {
		return
	}
	updated, err := c.refs.VerifyWelder(r.Context(), welderID)
	if err != nil {
		writeServiceError(w, requestID, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toWelderResponse(updated))
}

func writeServiceError(w http.ResponseWriter, requestID string, err error) {
	var svcErr *services.ServiceError
	if errors.As(err, &svcErr) {
		writeAPIError(w, svcErr.Status, requestID, svcErr.Code, svcErr.Message)
		return
	}
	writeAPIError(w, http.StatusInternalServerError, requestID, "IMPORT_INTERNAL", err.Error())
}

func writeValidationError(w http.ResponseWriter, requestID string, fields map[string]string) {
	meta := map[string]string{}
	if requestID != "" {
		meta["request_id"] = requestID
	}
	for field, message := range fields {
		meta["field:"+field] = message
	}
	_ = httpapi.WriteError(w, http.StatusBadRequest, "IMPORT_VALIDATION", "request validation failed", meta)
}
