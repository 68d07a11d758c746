package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clachance14/pipetrak/modules/importer/domain/drawing"
	"github.com/clachance14/pipetrak/modules/importer/domain/events"
	"github.com/clachance14/pipetrak/modules/importer/domain/weld"
	"github.com/clachance14/pipetrak/modules/importer/domain/welder"
	"github.com/clachance14/pipetrak/modules/importer/domain/weldimport"
	"github.com/clachance14/pipetrak/modules/progress/domain/component"
	"github.com/clachance14/pipetrak/modules/progress/domain/milestone"
	"github.com/clachance14/pipetrak/pkg/composables"
	"github.com/clachance14/pipetrak/pkg/configuration"
	"github.com/clachance14/pipetrak/pkg/eventbus"
)

// WeldConfigName is the progress configuration every imported weld is bound
// to. It must exist before an import run; a missing config is the fatal
// setup failure that fails the whole file.
const WeldConfigName = "field_weld"

// WeldComponentType tags components created by the weld import pipeline.
const WeldComponentType = "field_weld"

// Milestone names in the field weld configuration.
const (
	MilestoneFitUp   = "Fit-up"
	MilestoneWeld    = "Weld"
	MilestoneNDE     = "NDE"
	MilestonePunch   = "Punch"
	MilestoneRestore = "Restore"
)

// DefaultWeldConfig is the stock field weld configuration, used by the seed
// command for new tenants.
func DefaultWeldConfig(tenantID uuid.UUID) (milestone.Config, error) {
	return milestone.NewConfig(tenantID, WeldConfigName, milestone.WorkflowDiscrete, []milestone.Definition{
		{Name: MilestoneFitUp, Weight: 10, Order: 1, RequiresWelder: false},
		{Name: MilestoneWeld, Weight: 60, Order: 2, RequiresWelder: true},
		{Name: MilestoneNDE, Weight: 15, Order: 3},
		{Name: MilestonePunch, Weight: 10, Order: 4},
		{Name: MilestoneRestore, Weight: 5, Order: 5},
	})
}

type ImportService struct {
	drawings   drawing.Repository
	welders    welder.Repository
	welds      weld.Repository
	components component.Repository
	configs    milestone.ConfigRepository
	publisher  eventbus.EventBus
}

func NewImportService(
	drawings drawing.Repository,
	welders welder.Repository,
	welds weld.Repository,
	components component.Repository,
	configs milestone.ConfigRepository,
	publisher eventbus.EventBus,
) *ImportService {
	return &ImportService{
		drawings:   drawings,
		welders:    welders,
		welds:      welds,
		components: components,
		configs:    configs,
		publisher:  publisher,
	}
}

// EnsureWeldConfig returns the tenant's field weld configuration, creating
// the stock one when none exists yet.
func (s *ImportService) EnsureWeldConfig(ctx context.Context) (milestone.Config, error) {
	cfg, err := s.configs.GetByName(ctx, WeldConfigName)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, milestone.ErrConfigNotFound) {
		return milestone.Config{}, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return milestone.Config{}, err
	}
	stock, err := DefaultWeldConfig(tenantID)
	if err != nil {
		return milestone.Config{}, err
	}
	return s.configs.Create(ctx, stock)
}

// refData is the shared reference context for one import run. It is fetched
// once up front and passed explicitly into each row; the welder map is
// mutated as welders are auto-created. Not safe for concurrent use.
type refData struct {
	cfg      milestone.Config
	drawings map[string]drawing.Drawing
	welders  map[string]welder.Welder
}

// ImportWelds runs the weld import pipeline for one project. Rows commit
// independently: a failing row never aborts the run, and the returned
// Result tallies per-row successes and failures. The only whole-run failure
// is the fatal setup path, which reports every row as failed with the same
// message.
func (s *ImportService) ImportWelds(ctx context.Context, projectID uuid.UUID, rows []weldimport.Row) (weldimport.Result, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return weldimport.Result{}, err
	}
	log := composables.UseLogger(ctx)

	ref, err := s.loadRefData(ctx, projectID)
	if err != nil {
		log.WithError(err).Error("weld import setup failed")
		return fatalResult(rows, fmt.Sprintf("import setup failed: %v", err)), nil
	}

	result := weldimport.Result{}
	valid := make([]weldimport.Row, 0, len(rows))
	invalid := make(map[int]struct{})

	for _, row := range rows {
		if errs := weldimport.ValidateRow(row); len(errs) > 0 {
			result.Errors = append(result.Errors, errs...)
			invalid[row.Number] = struct{}{}
		}
	}
	for _, e := range weldimport.ValidateUniqueness(rows) {
		result.Errors = append(result.Errors, e)
		invalid[e.Row] = struct{}{}
	}
	for _, row := range rows {
		if _, bad := invalid[row.Number]; !bad {
			valid = append(valid, row)
		}
	}

	batchSize := configuration.Use().Import.BatchSize
	for start := 0; start < len(valid); start += batchSize {
		end := start + batchSize
		if end > len(valid) {
			end = len(valid)
		}
		for _, row := range valid[start:end] {
			if rowErr := s.processRow(ctx, ref, tenantID, projectID, row); rowErr != nil {
				result.Errors = append(result.Errors, *rowErr)
			} else {
				result.SuccessCount++
			}
		}
	}

	result.ErrorCount = len(result.Errors)
	log.WithField("project_id", projectID).
		WithField("success_count", result.SuccessCount).
		WithField("error_count", result.ErrorCount).
		Info("weld import finished")

	s.publisher.Publish(events.WeldImportCompletedV1{
		EventID:         uuid.New(),
		EventVersion:    events.EventVersionV1,
		RequestID:       composables.UseRequestID(ctx),
		TenantID:        tenantID,
		ProjectID:       projectID,
		TotalRows:       len(rows),
		SuccessCount:    result.SuccessCount,
		ErrorCount:      result.ErrorCount,
		TransactionTime: time.Now().UTC(),
	})
	return result, nil
}

func (s *ImportService) loadRefData(ctx context.Context, projectID uuid.UUID) (*refData, error) {
	cfg, err := s.configs.GetByName(ctx, WeldConfigName)
	if err != nil {
		return nil, fmt.Errorf("load %q configuration: %w", WeldConfigName, err)
	}
	drawings, err := s.drawings.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load drawings: %w", err)
	}
	welders, err := s.welders.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load welders: %w", err)
	}

	ref := &refData{
		cfg:      cfg,
		drawings: make(map[string]drawing.Drawing, len(drawings)),
		welders:  make(map[string]welder.Welder, len(welders)),
	}
	for _, d := range drawings {
		ref.drawings[weldimport.NormalizeKey(d.Number())] = d
	}
	for _, w := range welders {
		ref.welders[weldimport.NormalizeKey(w.Stencil())] = w
	}
	return ref, nil
}

// processRow commits one row: resolve drawing, resolve or create welder,
// insert component, insert weld detail (compensating component delete on
// failure), then the derived initial milestone state. Panics are caught here
// so a single bad row cannot abort the run.
func (s *ImportService) processRow(ctx context.Context, ref *refData, tenantID, projectID uuid.UUID, row weldimport.Row) (rowErr *weldimport.RowError) {
	// Set after the component insert, cleared once its weld detail lands.
	// A panic in between must undo the component like the error path does.
	orphanID := uuid.Nil
	defer func() {
		if r := recover(); r != nil {
			msg := fmt.Sprintf("unexpected failure: %v", r)
			if orphanID != uuid.Nil {
				if delErr := s.components.Delete(ctx, orphanID); delErr != nil {
					msg = fmt.Sprintf("%s (component cleanup also failed: %v)", msg, delErr)
				}
			}
			rowErr = &weldimport.RowError{Row: row.Number, Message: msg}
		}
	}()

	drawKey := weldimport.NormalizeKey(row.DrawingNumber)
	d, ok := ref.drawings[drawKey]
	if !ok {
		msg := fmt.Sprintf("drawing %q not found", row.DrawingNumber)
		if suggestions := suggestDrawings(ref.drawings, drawKey); len(suggestions) > 0 {
			msg += fmt.Sprintf(" (did you mean: %s)", strings.Join(suggestions, ", "))
		}
		return &weldimport.RowError{Row: row.Number, Column: weldimport.ColumnDrawingNumber, Message: msg}
	}

	welderID := uuid.Nil
	if stencil := weldimport.NormalizeKey(row.WelderStencil); stencil != "" {
		w, ok := ref.welders[stencil]
		if !ok {
			created, err := s.welders.Create(ctx, welder.New(tenantID, projectID, stencil, "", welder.StatusUnverified))
			if err != nil {
				return &weldimport.RowError{Row: row.Number, Column: weldimport.ColumnWelderStencil, Message: fmt.Sprintf("create welder %q: %v", stencil, err)}
			}
			ref.welders[stencil] = created
			w = created
		}
		welderID = w.WelderID()
	}

	created, err := s.components.Create(ctx, component.New(
		tenantID, projectID, d.DrawingID(), row.WeldID, WeldComponentType, ref.cfg.ID(), 0,
	))
	if err != nil {
		return &weldimport.RowError{Row: row.Number, Message: fmt.Sprintf("create component: %v", err)}
	}
	orphanID = created.ComponentID()

	detail := weld.Detail{
		TenantID:    tenantID,
		ComponentID: created.ComponentID(),
		ProjectID:   projectID,
		WeldType:    strings.ToUpper(strings.TrimSpace(row.WeldType)),
		Size:        row.Size,
		Schedule:    row.Schedule,
		SpecCode:    row.SpecCode,
		WelderID:    welderID,
		NDEResult:   strings.ToUpper(strings.TrimSpace(row.NDEResult)),
		Comments:    row.Comments,
		Extra:       row.Extra,
	}
	if weldimport.ValidDate(row.DateWelded) {
		t, _ := time.Parse("2006-01-02", strings.TrimSpace(row.DateWelded))
		detail.DateWelded = &t
	}
	if pct, ok := weldimport.ParsePercent(row.XRayPercent); ok {
		detail.XRayPercent = &pct
	}

	if _, err := s.welds.Insert(ctx, detail); err != nil {
		// No transaction spans the two inserts; undo the component by hand
		// so no orphaned row survives a failed detail insert.
		if delErr := s.components.Delete(ctx, created.ComponentID()); delErr != nil {
			return &weldimport.RowError{Row: row.Number, Message: fmt.Sprintf("insert weld detail: %v (component cleanup also failed: %v)", err, delErr)}
		}
		return &weldimport.RowError{Row: row.Number, Message: fmt.Sprintf("insert weld detail: %v", err)}
	}
	orphanID = uuid.Nil

	state := initialMilestoneState(detail)
	if percent := milestone.PercentComplete(state, ref.cfg); percent > 0 {
		if _, err := s.components.UpdateProgress(ctx, created.ComponentID(), state, percent); err != nil {
			return &weldimport.RowError{Row: row.Number, Message: fmt.Sprintf("apply initial milestones: %v", err)}
		}
	}
	return nil
}

// initialMilestoneState derives the milestones an imported weld has already
// earned: a welded date satisfies Fit-up and Weld; an accepted NDE result
// additionally satisfies NDE.
func initialMilestoneState(detail weld.Detail) milestone.State {
	state := milestone.State{}
	if detail.DateWelded != nil {
		state = state.With(MilestoneFitUp, milestone.Bool(true))
		state = state.With(MilestoneWeld, milestone.Bool(true))
	}
	if detail.NDEResult == weldimport.NDEResultAccept {
		state = state.With(MilestoneFitUp, milestone.Bool(true))
		state = state.With(MilestoneWeld, milestone.Bool(true))
		state = state.With(MilestoneNDE, milestone.Bool(true))
	}
	return state
}

// suggestDrawings returns up to three known drawing numbers sharing a prefix
// with the missing key.
func suggestDrawings(drawings map[string]drawing.Drawing, key string) []string {
	if len(key) < 3 {
		return nil
	}
	prefix := key[:3]
	var out []string
	for k, d := range drawings {
		if strings.HasPrefix(k, prefix) {
			out = append(out, d.Number())
		}
	}
	sort.Strings(out)
	if len(out) > 3 {
		out = out[:3]
	}
	return out
}

func fatalResult(rows []weldimport.Row, message string) weldimport.Result {
	result := weldimport.Result{ErrorCount: len(rows)}
	result.Errors = make([]weldimport.RowError, 0, len(rows))
	for _, row := range rows {
		result.Errors = append(result.Errors, weldimport.RowError{Row: row.Number, Message: message})
	}
	return result
}
