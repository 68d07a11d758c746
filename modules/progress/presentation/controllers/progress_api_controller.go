package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/clachance14/pipetrak/modules/progress/domain/audit"
	"github.com/clachance14/pipetrak/modules/progress/domain/component"
	"github.com/clachance14/pipetrak/modules/progress/domain/milestone"
	"github.com/clachance14/pipetrak/modules/progress/services"
	"github.com/clachance14/pipetrak/pkg/application"
	"github.com/clachance14/pipetrak/pkg/composables"
	"github.com/clachance14/pipetrak/pkg/httpapi"
)

type ProgressAPIController struct {
	app       application.Application
	progress  *services.ProgressService
	configs   *services.ConfigService
	apiPrefix string
}

func NewProgressAPIController(app application.Application) application.Controller {
	return &ProgressAPIController{
		app:       app,
		progress:  app.Service(services.ProgressService{}).(*services.ProgressService),
		configs:   app.Service(services.ConfigService{}).(*services.ConfigService),
		apiPrefix: "/progress/api",
	}
}

func (c *ProgressAPIController) Key() string {
	return c.apiPrefix
}

func (c *ProgressAPIController) Register(r *mux.Router) {
	api := r.PathPrefix(c.apiPrefix).Subrouter()

	api.HandleFunc("/components", instrumentAPI("components.list", c.ListComponents)).Methods(http.MethodGet)
	api.HandleFunc("/components", instrumentAPI("components.create", c.CreateComponent)).Methods(http.MethodPost)
	api.HandleFunc("/components/{id}", instrumentAPI("components.get", c.GetComponent)).Methods(http.MethodGet)
	api.HandleFunc("/components/{id}/milestones", instrumentAPI("components.update_milestone", c.UpdateMilestone)).Methods(http.MethodPost)
	api.HandleFunc("/components/{id}/audit", instrumentAPI("components.audit", c.AuditTrail)).Methods(http.MethodGet)

	api.HandleFunc("/configs", instrumentAPI("configs.list", c.ListConfigs)).Methods(http.MethodGet)
	api.HandleFunc("/configs", instrumentAPI("configs.create", c.CreateConfig)).Methods(http.MethodPost)
	api.HandleFunc("/configs/{id}", instrumentAPI("configs.get", c.GetConfig)).Methods(http.MethodGet)
}

type componentResponse struct {
	ID              uuid.UUID       `json:"id"`
	ProjectID       uuid.UUID       `json:"project_id"`
	DrawingID       *uuid.UUID      `json:"drawing_id,omitempty"`
	Identifier      string          `json:"identifier"`
	ComponentType   string          `json:"component_type"`
	ConfigID        uuid.UUID       `json:"config_id"`
	BudgetedHours   float64         `json:"budgeted_hours"`
	MilestoneState  milestone.State `json:"milestone_state"`
	PercentComplete float64         `json:"percent_complete"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func toComponentResponse(c component.Component) componentResponse {
	resp := componentResponse{
		ID:              c.ComponentID(),
		ProjectID:       c.ProjectID(),
		Identifier:      c.Identifier(),
		ComponentType:   c.ComponentType(),
		ConfigID:        c.ConfigID(),
		BudgetedHours:   c.BudgetedHours(),
		MilestoneState:  c.State(),
		PercentComplete: c.PercentComplete(),
		CreatedAt:       c.CreatedAt(),
		UpdatedAt:       c.UpdatedAt(),
	}
	if id := c.DrawingID(); id != uuid.Nil {
		resp.DrawingID = &id
	}
	return resp
}

type configResponse struct {
	ID           uuid.UUID              `json:"id"`
	Name         string                 `json:"name"`
	Version      int                    `json:"version"`
	WorkflowType string                 `json:"workflow_type"`
	Definitions  []milestone.Definition `json:"definitions"`
	CreatedAt    time.Time              `json:"created_at"`
}

func toConfigResponse(cfg milestone.Config) configResponse {
	return configResponse{
		ID:           cfg.ID(),
		Name:         cfg.Name(),
		Version:      cfg.Version(),
		WorkflowType: string(cfg.WorkflowType()),
		Definitions:  cfg.Definitions(),
		CreatedAt:    cfg.CreatedAt(),
	}
}

type updateMilestoneRequest struct {
	MilestoneName string          `json:"milestone_name"`
	NewValue      json.RawMessage `json:"new_value"`
	Metadata      map[string]any  `json:"metadata,omitempty"`
}

type updateMilestoneResponse struct {
	Component          componentResponse `json:"component"`
	PreviousValue      milestone.Value   `json:"previous_value"`
	Action             string            `json:"action"`
	AuditEventID       uuid.UUID         `json:"audit_event_id"`
	NewPercentComplete float64           `json:"new_percent_complete"`
}

func (c *ProgressAPIController) UpdateMilestone(w http.ResponseWriter, r *http.Request) {
	requestID := composables.UseRequestID(r.Context())
	componentID, ok := pathUUID(w, r, requestID, "id")
	if !ok {
		return
	}
	var req updateMilestoneRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeAPIError(w, http.StatusBadRequest, requestID, "PROGRESS_BAD_REQUEST", "invalid request body: "+err.Error())
		return
	}
	res, err := c.progress.UpdateMilestone(r.Context(), services.UpdateMilestoneDTO{
		ComponentID:   componentID,
		MilestoneName: req.MilestoneName,
		NewValue:      req.NewValue,
		Metadata:      req.Metadata,
	})
	if err != nil {
		writeServiceError(w, requestID, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, updateMilestoneResponse{
		Component:          toComponentResponse(res.Component),
		PreviousValue:      res.PreviousValue,
		Action:             string(res.Action),
		AuditEventID:       res.AuditEventID,
		NewPercentComplete: res.NewPercentComplete,
	})
}

func (c *ProgressAPIController) GetComponent(w http.ResponseWriter, r *http.Request) {
	requestID := composables.UseRequestID(r.Context())
	componentID, ok := pathUUID(w, r, requestID, "id")
	if !ok {
		return
	}
	comp, err := c.progress.GetComponent(r.Context(), componentID)
	if err != nil {
		writeServiceError(w, requestID, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toComponentResponse(comp))
}

func (c *ProgressAPIController) ListComponents(w http.ResponseWriter, r *http.Request) {
	requestID := composables.UseRequestID(r.Context())
	params := &component.FindParams{
		Type:   r.URL.Query().Get("type"),
		Limit:  queryInt(r, "limit"),
		Offset: queryInt(r, "offset"),
	}
	if v := r.URL.Query().Get("project_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			writeAPIError(w, http.StatusBadRequest, requestID, "PROGRESS_BAD_REQUEST", "invalid project_id")
			return
		}
		params.ProjectID = id
	}
	if v := r.URL.Query().Get("drawing_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			writeAPIError(w, http.StatusBadRequest, requestID, "PROGRESS_BAD_REQUEST", "invalid drawing_id")
			return
		}
		params.DrawingID = id
	}
	items, total, err := c.progress.GetPaginated(r.Context(), params)
	if err != nil {
		writeServiceError(w, requestID, err)
		return
	}
	out := make([]componentResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toComponentResponse(item))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{
		"items": out,
		"total": total,
	})
}

func (c *ProgressAPIController) CreateComponent(w http.ResponseWriter, r *http.Request) {
	requestID := composables.UseRequestID(r.Context())
	var dto component.CreateDTO
	if err := decodeJSON(r.Body, &dto); err != nil {
		writeAPIError(w, http.StatusBadRequest, requestID, "PROGRESS_BAD_REQUEST", "invalid request body: "+err.Error())
		return
	}
	if fields, ok := dto.Ok(); !ok {
		writeValidationError(w, requestID, fields)
		return
	}
	created, err := c.progress.CreateComponent(r.Context(), &dto)
	if err != nil {
		writeServiceError(w, requestID, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, toComponentResponse(created))
}

type auditEventResponse struct {
	ID            uuid.UUID       `json:"id"`
	ComponentID   uuid.UUID       `json:"component_id"`
	MilestoneName string          `json:"milestone_name"`
	Action        string          `json:"action"`
	PreviousValue milestone.Value `json:"previous_value"`
	NewValue      milestone.Value `json:"new_value"`
	UserID        uuid.UUID       `json:"user_id"`
	Metadata      map[string]any  `json:"metadata,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (c *ProgressAPIController) AuditTrail(w http.ResponseWriter, r *http.Request) {
	requestID := composables.UseRequestID(r.Context())
	componentID, ok := pathUUID(w, r, requestID, "id")
	if !ok {
		return
	}
	events, err := c.progress.AuditTrail(r.Context(), componentID, queryInt(r, "limit"), queryInt(r, "offset"))
	if err != nil {
		writeServiceError(w, requestID, err)
		return
	}
	out := make([]auditEventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, toAuditEventResponse(e))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{"items": out})
}

func toAuditEventResponse(e audit.Event) auditEventResponse {
	return auditEventResponse{
		ID:            e.EventID,
		ComponentID:   e.ComponentID,
		MilestoneName: e.MilestoneName,
		Action:        string(e.Action),
		PreviousValue: e.PreviousValue,
		NewValue:      e.NewValue,
		UserID:        e.UserID,
		Metadata:      e.Metadata,
		CreatedAt:     e.CreatedAt,
	}
}

func (c *ProgressAPIController) CreateConfig(w http.ResponseWriter, r *http.Request) {
	requestID := composables.UseRequestID(r.Context())
	var dto milestone.CreateConfigDTO
	if err := decodeJSON(r.Body, &dto); err != nil {
		writeAPIError(w, http.StatusBadRequest, requestID, "PROGRESS_BAD_REQUEST", "invalid request body: "+err.Error())
		return
	}
	if fields, ok := dto.Ok(); !ok {
		writeValidationError(w, requestID, fields)
		return
	}
	created, err := c.configs.CreateConfig(r.Context(), &dto)
	if err != nil {
		writeServiceError(w, requestID, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, toConfigResponse(created))
}

func (c *ProgressAPIController) GetConfig(w http.ResponseWriter, r *http.Request) {
	requestID := composables.UseRequestID(r.Context())
	configID, ok := pathUUID(w, r, requestID, "id")
	if !ok {
		return
	}
	cfg, err := c.configs.GetConfig(r.Context(), configID)
	if err != nil {
		writeServiceError(w, requestID, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toConfigResponse(cfg))
}

func (c *ProgressAPIController) ListConfigs(w http.ResponseWriter, r *http.Request) {
	requestID := composables.UseRequestID(r.Context())
	cfgs, err := c.configs.ListConfigs(r.Context())
	if err != nil {
		writeServiceError(w, requestID, err)
		return
	}
	out := make([]configResponse, 0, len(cfgs))
	for _, cfg := range cfgs {
		out = append(out, toConfigResponse(cfg))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{"items": out})
}

func pathUUID(w http.ResponseWriter, r *http.Request, requestID, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, requestID, "PROGRESS_BAD_REQUEST", "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(r *http.Request, name string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return v
}

func decodeJSON(body io.ReadCloser, out any) error {
	defer func() { _ = body.Close() }()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}

func writeServiceError(w http.ResponseWriter, requestID string, err error) {
	var svcErr *services.ServiceError
	if errors.As(err, &svcErr) {
		writeAPIError(w, svcErr.Status, requestID, svcErr.Code, svcErr.Message)
		return
	}
	writeAPIError(w, http.StatusInternalServerError, requestID, "PROGRESS_INTERNAL", err.Error())
}

func writeValidationError(w http.ResponseWriter, requestID string, fields map[string]string) {
	meta := map[string]string{}
	if requestID != "" {
		meta["request_id"] = requestID
	}
	for field, message := range fields {
		meta["field:"+field] = message
	}
	_ = httpapi.WriteError(w, http.StatusBadRequest, "PROGRESS_VALIDATION", "request validation failed", meta)
}

func writeAPIError(w http.ResponseWriter, status int, requestID, code, message string) {
	meta := map[string]string{}
	if requestID != "" {
		meta["request_id"] = requestID
	}
	_ = httpapi.WriteError(w, status, code, message, meta)
}
