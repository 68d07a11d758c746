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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/clachance14/pipetrak/modules/importer/domain/weldimport"
	"github.com/clachance14/pipetrak/modules/importer/services"
	"github.com/clachance14/pipetrak/pkg/application"
	"github.com/clachance14/pipetrak/pkg/composables"
	"github.com/clachance14/pipetrak/pkg/configuration"
	"github.com/clachance14/pipetrak/pkg/httpapi"
)

var (
	importRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pipetrak",
		Subsystem: "import_api",
		Name:      "runs_total",
		Help:      "Total number of weld import runs broken down by source and result.",
	}, []string{"source", "result"})

	importRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pipetrak",
		Subsystem: "import_api",
		Name:      "rows_total",
		Help:      "Total imported rows broken down by outcome.",
	}, []string{"outcome"})

	importDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pipetrak",
		Subsystem: "import_api",
		Name:      "duration_seconds",
		Help:      "Wall-clock duration of weld import runs.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"source"})
)

type ImportAPIController struct {
	app       application.Application
	importer  *services.ImportService
	apiPrefix string
}

func NewImportAPIController(app application.Application) application.Controller {
	return &ImportAPIController{
		app:       app,
		importer:  app.Service(services.ImportService{}).(*services.ImportService),
		apiPrefix: "/import/api",
	}
}

func (c *ImportAPIController) Key() string {
	return c.apiPrefix
}

func (c *ImportAPIController) Register(r *mux.Router) {
	api := r.PathPrefix(c.apiPrefix).Subrouter()

	api.HandleFunc("/projects/{id}/welds", c.ImportWelds).Methods(http.MethodPost)
	api.HandleFunc("/projects/{id}/welds/csv", c.ImportWeldsCSV).Methods(http.MethodPost)
}

type importRowRequest struct {
	WeldID        string            `json:"weld_id"`
	DrawingNumber string            `json:"drawing"`
	WeldType      string            `json:"weld_type"`
	Size          string            `json:"size,omitempty"`
	Schedule      string            `json:"schedule,omitempty"`
	SpecCode      string            `json:"spec,omitempty"`
	WelderStencil string            `json:"welder_stencil,omitempty"`
	DateWelded    string            `json:"date_welded,omitempty"`
	NDEResult     string            `json:"nde_result,omitempty"`
	XRayPercent   string            `json:"xray_percent,omitempty"`
	Comments      string            `json:"comments,omitempty"`
	Extra         map[string]string `json:"extra,omitempty"`
}

type importWeldsRequest struct {
	Rows []importRowRequest `json:"rows"`
}

func (c *ImportAPIController) ImportWelds(w http.ResponseWriter, r *http.Request) {
	requestID := composables.UseRequestID(r.Context())
	projectID, ok := pathUUID(w, r, requestID, "id")
	if !ok {
		return
	}
	var req importWeldsRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeAPIError(w, http.StatusBadRequest, requestID, "IMPORT_BAD_REQUEST", "invalid request body: "+err.Error())
		return
	}
	if len(req.Rows) == 0 {
		writeAPIError(w, http.StatusBadRequest, requestID, "IMPORT_NO_ROWS", "no rows to import")
		return
	}
	if max := configuration.Use().Import.MaxRows; len(req.Rows) > max {
		writeAPIError(w, http.StatusRequestEntityTooLarge, requestID, "IMPORT_TOO_MANY_ROWS", "row count exceeds "+strconv.Itoa(max))
		return
	}

	rows := make([]weldimport.Row, 0, len(req.Rows))
	for i, in := range req.Rows {
		rows = append(rows, weldimport.Row{
			Number:        i + 2,
			WeldID:        in.WeldID,
			DrawingNumber: in.DrawingNumber,
			WeldType:      in.WeldType,
			Size:          in.Size,
			Schedule:      in.Schedule,
			SpecCode:      in.SpecCode,
			WelderStencil: in.WelderStencil,
			DateWelded:    in.DateWelded,
			NDEResult:     in.NDEResult,
			XRayPercent:   in.XRayPercent,
			Comments:      in.Comments,
			Extra:         in.Extra,
		})
	}
	c.runImport(w, r, requestID, "json", projectID, rows)
}

func (c *ImportAPIController) ImportWeldsCSV(w http.ResponseWriter, r *http.Request) {
	requestID := composables.UseRequestID(r.Context())
	projectID, ok := pathUUID(w, r, requestID, "id")
	if !ok {
		return
	}
	conf := configuration.Use()
	if err := r.ParseMultipartForm(conf.Import.MaxCSVSize); err != nil {
		writeAPIError(w, http.StatusBadRequest, requestID, "IMPORT_BAD_REQUEST", "invalid multipart form: "+err.Error())
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, requestID, "IMPORT_BAD_REQUEST", `multipart field "file" is required`)
		return
	}
	defer func() { _ = file.Close() }()

	rows, err := weldimport.ReadCSV(io.LimitReader(file, conf.Import.MaxCSVSize))
	if err != nil {
		if errors.Is(err, weldimport.ErrMissingHeaders) {
			importRuns.WithLabelValues("csv", "rejected").Inc()
			writeAPIError(w, http.StatusUnprocessableEntity, requestID, "IMPORT_MISSING_HEADERS", err.Error())
			return
		}
		writeAPIError(w, http.StatusBadRequest, requestID, "IMPORT_BAD_CSV", err.Error())
		return
	}
	if max := conf.Import.MaxRows; len(rows) > max {
		writeAPIError(w, http.StatusRequestEntityTooLarge, requestID, "IMPORT_TOO_MANY_ROWS", "row count exceeds "+strconv.Itoa(max))
		return
	}
	c.runImport(w, r, requestID, "csv", projectID, rows)
}

func (c *ImportAPIController) runImport(w http.ResponseWriter, r *http.Request, requestID, source string, projectID uuid.UUID, rows []weldimport.Row) {
	start := time.Now()
	result, err := c.importer.ImportWelds(r.Context(), projectID, rows)
	importDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	if err != nil {
		importRuns.WithLabelValues(source, "error").Inc()
		writeAPIError(w, http.StatusInternalServerError, requestID, "IMPORT_INTERNAL", err.Error())
		return
	}
	importRuns.WithLabelValues(source, "ok").Inc()
	importRows.WithLabelValues("success").Add(float64(result.SuccessCount))
	importRows.WithLabelValues("error").Add(float64(result.ErrorCount))

	// Partial success is still a 200: the result body carries the tally.
	_ = httpapi.WriteJSON(w, http.StatusOK, result)
}

func pathUUID(w http.ResponseWriter, r *http.Request, requestID, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, requestID, "IMPORT_BAD_REQUEST", "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func decodeJSON(body io.ReadCloser, out any) error {
	defer func() { _ = body.Close() }()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}

func writeAPIError(w http.ResponseWriter, status int, requestID, code, message string) {
	meta := map[string]string{}
	if requestID != "" {
		meta["request_id"] = requestID
	}
	_ = httpapi.WriteError(w, status, code, message, meta)
}
