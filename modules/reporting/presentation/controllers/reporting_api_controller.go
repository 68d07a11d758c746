package controllers

import (
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/clachance14/pipetrak/modules/reporting/services"
	"github.com/clachance14/pipetrak/pkg/application"
	"github.com/clachance14/pipetrak/pkg/composables"
	"github.com/clachance14/pipetrak/pkg/httpapi"
)

type ReportingAPIController struct {
	app       application.Application
	reports   *services.ReportService
	apiPrefix string
}

func NewReportingAPIController(app application.Application) application.Controller {
	return &ReportingAPIController{
		app:       app,
		reports:   app.Service(services.ReportService{}).(*services.ReportService),
		apiPrefix: "/reporting/api",
	}
}

func (c *ReportingAPIController) Key() string {
	return c.apiPrefix
}

func (c *ReportingAPIController) Register(r *mux.Router) {
	api := r.PathPrefix(c.apiPrefix).Subrouter()

	api.HandleFunc("/projects/{id}/manhours", c.Manhours).Methods(http.MethodGet)
	api.HandleFunc("/projects/{id}/summary", c.Summary).Methods(http.MethodGet)
}

type manhourRowResponse struct {
	Drawing        string  `json:"drawing"`
	ComponentCount int     `json:"component_count"`
	EarnedHours    float64 `json:"earned_hours"`
	AllocatedHours float64 `json:"allocated_hours"`
	Percent        float64 `json:"percent"`
}

type manhourReportResponse struct {
	ProjectID   uuid.UUID            `json:"project_id"`
	TotalBudget float64              `json:"total_budget"`
	Rows        []manhourRowResponse `json:"rows"`
	Total       summaryResponse      `json:"total"`
}

type summaryResponse struct {
	EarnedHours    float64 `json:"earned_hours"`
	AllocatedHours float64 `json:"allocated_hours"`
	RemainingHours float64 `json:"remaining_hours"`
	Percent        float64 `json:"percent"`
}

func (c *ReportingAPIController) Manhours(w http.ResponseWriter, r *http.Request) {
	requestID := composables.UseRequestID(r.Context())
	projectID, ok := pathUUID(w, r, requestID, "id")
	if !ok {
		return
	}
	totalBudget, ok := queryBudget(w, r, requestID)
	if !ok {
		return
	}
	format := strings.TrimSpace(r.URL.Query().Get("format"))
	if format != "" && format != "json" && format != "csv" {
		writeAPIError(w, http.StatusBadRequest, requestID, "REPORT_INVALID_QUERY", "format must be json or csv")
		return
	}

	report, err := c.reports.Manhours(r.Context(), services.ManhourReportInput{
		ProjectID:   projectID,
		TotalBudget: totalBudget,
	})
	if err != nil {
		writeServiceError(w, requestID, err)
		return
	}

	if format == "csv" {
		c.exportManhoursCSV(w, report)
		return
	}

	rows := make([]manhourRowResponse, 0, len(report.Rows))
	for _, row := range report.Rows {
		rows = append(rows, manhourRowResponse{
			Drawing:        row.Key,
			ComponentCount: row.ComponentCount,
			EarnedHours:    row.EarnedHours,
			AllocatedHours: row.AllocatedHours,
			Percent:        row.Percent,
		})
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, manhourReportResponse{
		ProjectID:   report.ProjectID,
		TotalBudget: report.TotalBudget,
		Rows:        rows,
		Total: summaryResponse{
			EarnedHours:    report.Total.EarnedHours,
			AllocatedHours: report.Total.AllocatedHours,
			RemainingHours: report.Total.RemainingHours,
			Percent:        report.Total.Percent,
		},
	})
}

func (c *ReportingAPIController) exportManhoursCSV(w http.ResponseWriter, report services.ManhourReport) {
	header := []string{"drawing", "component_count", "earned_hours", "allocated_hours", "percent"}
	rows := make([][]string, 0, 1+len(report.Rows))
	for _, row := range report.Rows {
		rows = append(rows, []string{
			row.Key,
			strconv.Itoa(row.ComponentCount),
			floatToString(row.EarnedHours),
			floatToString(row.AllocatedHours),
			floatToString(row.Percent),
		})
	}
	rows = append(rows, []string{
		"total",
		"",
		floatToString(report.Total.EarnedHours),
		floatToString(report.Total.AllocatedHours),
		floatToString(report.Total.Percent),
	})
	writeCSV(w, header, rows)
}

func (c *ReportingAPIController) Summary(w http.ResponseWriter, r *http.Request) {
	requestID := composables.UseRequestID(r.Context())
	projectID, ok := pathUUID(w, r, requestID, "id")
	if !ok {
		return
	}
	totalBudget, ok := queryBudget(w, r, requestID)
	if !ok {
		return
	}

	summary, err := c.reports.ProjectSummary(r.Context(), projectID, totalBudget)
	if err != nil {
		writeServiceError(w, requestID, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, summaryResponse{
		EarnedHours:    summary.EarnedHours,
		AllocatedHours: summary.AllocatedHours,
		RemainingHours: summary.RemainingHours,
		Percent:        summary.Percent,
	})
}

func queryBudget(w http.ResponseWriter, r *http.Request, requestID string) (*float64, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("total_budget"))
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		writeAPIError(w, http.StatusBadRequest, requestID, "REPORT_INVALID_QUERY", "total_budget is invalid")
		return nil, false
	}
	return &v, true
}

func pathUUID(w http.ResponseWriter, r *http.Request, requestID, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, requestID, "REPORT_BAD_REQUEST", "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func writeServiceError(w http.ResponseWriter, requestID string, err error) {
	var svcErr *services.ServiceError
	if errors.As(err, &svcErr) {
		writeAPIError(w, svcErr.Status, requestID, svcErr.Code, svcErr.Message)
		return
	}
	writeAPIError(w, http.StatusInternalServerError, requestID, "REPORT_INTERNAL", err.Error())
}

func writeAPIError(w http.ResponseWriter, status int, requestID, code, message string) {
	meta := map[string]string{}
	if requestID != "" {
		meta["request_id"] = requestID
	}
	_ = httpapi.WriteError(w, status, code, message, meta)
}

func floatToString(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func writeCSV(w http.ResponseWriter, header []string, rows [][]string) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	_ = cw.Write(header)
	_ = cw.WriteAll(rows)
	cw.Flush()
}
