package controllers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/clachance14/pipetrak/modules/reporting/domain/earnedvalue"
	"github.com/clachance14/pipetrak/modules/reporting/presentation/controllers"
	"github.com/clachance14/pipetrak/modules/reporting/services"
	"github.com/clachance14/pipetrak/pkg/application"
	"github.com/clachance14/pipetrak/pkg/composables"
	"github.com/clachance14/pipetrak/pkg/eventbus"
)

type stubTx struct {
	pgx.Tx
}

type mockReportRepo struct {
	groups []earnedvalue.GroupRow
}

func (m *mockReportRepo) GroupedByDrawing(_ context.Context, _ uuid.UUID) ([]earnedvalue.GroupRow, error) {
	return m.groups, nil
}

func (m *mockReportRepo) ProjectHours(_ context.Context, _ uuid.UUID) ([]earnedvalue.ComponentHours, error) {
	return nil, nil
}

func newTestRouter(t *testing.T, repo earnedvalue.Repository) *mux.Router {
	t.Helper()
	logger := logrus.New()
	app := application.New(&application.ApplicationOptions{
		EventBus: eventbus.NewEventPublisher(logger),
		Logger:   logger,
	})
	app.RegisterServices(services.NewReportService(repo))

	r := mux.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := composables.WithTenantID(req.Context(), uuid.New())
			ctx = composables.WithTx(ctx, stubTx{})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	controllers.NewReportingAPIController(app).Register(r)
	return r
}

func TestManhours_JSON(t *testing.T) {
	router := newTestRouter(t, &mockReportRepo{
		groups: []earnedvalue.GroupRow{
			{Key: "P-35F11", ComponentCount: 2, EarnedHours: 50, AllocatedHours: 100},
			{Key: "P-35F12", ComponentCount: 1, EarnedHours: 100, AllocatedHours: 500},
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/reporting/api/projects/"+uuid.NewString()+"/manhours", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.JSONEq(t, `{
		"earned_hours": 150,
		"allocated_hours": 600,
		"remaining_hours": 450,
		"percent": 25
	}`, extractJSONField(t, rec.Body.String(), "total"))
}

func TestManhours_CSV(t *testing.T) {
	router := newTestRouter(t, &mockReportRepo{
		groups: []earnedvalue.GroupRow{
			{Key: "P-35F11", ComponentCount: 2, EarnedHours: 50, AllocatedHours: 100},
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/reporting/api/projects/"+uuid.NewString()+"/manhours?format=csv", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "drawing,component_count,earned_hours,allocated_hours,percent", lines[0])
	require.Equal(t, "P-35F11,2,50,100,50", lines[1])
	require.Equal(t, "total,,50,100,50", lines[2])
}

func TestManhours_InvalidFormat(t *testing.T) {
	router := newTestRouter(t, &mockReportRepo{})

	req := httptest.NewRequest(http.MethodGet, "/reporting/api/projects/"+uuid.NewString()+"/manhours?format=xml", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "REPORT_INVALID_QUERY")
}

func TestManhours_InvalidProjectID(t *testing.T) {
	router := newTestRouter(t, &mockReportRepo{})

	req := httptest.NewRequest(http.MethodGet, "/reporting/api/projects/not-a-uuid/manhours", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "REPORT_BAD_REQUEST")
}

func TestManhours_ExplicitBudget(t *testing.T) {
	router := newTestRouter(t, &mockReportRepo{
		groups: []earnedvalue.GroupRow{
			{Key: "P-35F11", ComponentCount: 3, EarnedHours: 0, AllocatedHours: 600},
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/reporting/api/projects/"+uuid.NewString()+"/manhours?total_budget=1000", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{
		"earned_hours": 0,
		"allocated_hours": 600,
		"remaining_hours": 1000,
		"percent": 0
	}`, extractJSONField(t, rec.Body.String(), "total"))
}

func extractJSONField(t *testing.T, body, field string) string {
	t.Helper()
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(body), &doc))
	return string(doc[field])
}
