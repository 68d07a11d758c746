package services

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/clachance14/pipetrak/modules/importer/domain/drawing"
	"github.com/clachance14/pipetrak/modules/importer/domain/events"
	"github.com/clachance14/pipetrak/modules/importer/domain/weld"
	"github.com/clachance14/pipetrak/modules/importer/domain/welder"
	"github.com/clachance14/pipetrak/modules/importer/domain/weldimport"
	"github.com/clachance14/pipetrak/modules/progress/domain/component"
	"github.com/clachance14/pipetrak/modules/progress/domain/milestone"
	"github.com/clachance14/pipetrak/pkg/composables"
)

type memDrawingRepo struct {
	items []drawing.Drawing
}

func (m *memDrawingRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]drawing.Drawing, error) {
	return m.items, nil
}

func (m *memDrawingRepo) GetByNumber(ctx context.Context, projectID uuid.UUID, number string) (drawing.Drawing, error) {
	for _, d := range m.items {
		if d.Number() == number {
			return d, nil
		}
	}
	return drawing.Drawing{}, drawing.ErrNotFound
}

func (m *memDrawingRepo) Create(ctx context.Context, d drawing.Drawing) (drawing.Drawing, error) {
	created := drawing.Hydrate(d.TenantID(), uuid.New(), d.ProjectID(), d.Number(), d.Title(), time.Now())
	m.items = append(m.items, created)
	return created, nil
}

type memWelderRepo struct {
	items   []welder.Welder
	created int
}

func (m *memWelderRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]welder.Welder, error) {
	return m.items, nil
}

func (m *memWelderRepo) Create(ctx context.Context, w welder.Welder) (welder.Welder, error) {
	m.created++
	created := welder.Hydrate(w.TenantID(), uuid.New(), w.ProjectID(), w.Stencil(), w.Name(), w.Status(), time.Now())
	m.items = append(m.items, created)
	return created, nil
}

func (m *memWelderRepo) SetStatus(ctx context.Context, welderID uuid.UUID, status welder.Status) (welder.Welder, error) {
	for i, w := range m.items {
		if w.WelderID() == welderID {
			updated := welder.Hydrate(w.TenantID(), w.WelderID(), w.ProjectID(), w.Stencil(), w.Name(), status, w.CreatedAt())
			m.items[i] = updated
			return updated, nil
		}
	}
	return welder.Welder{}, welder.ErrNotFound
}

type memWeldRepo struct {
	inserted []weld.Detail
	failWhen func(weld.Detail) bool
}

func (m *memWeldRepo) Insert(ctx context.Context, d weld.Detail) (weld.Detail, error) {
	if m.failWhen != nil && m.failWhen(d) {
		return weld.Detail{}, errors.New("detail insert refused")
	}
	d.DetailID = uuid.New()
	d.CreatedAt = time.Now()
	m.inserted = append(m.inserted, d)
	return d, nil
}

func (m *memWeldRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]weld.Detail, error) {
	return m.inserted, nil
}

type memComponentRepo struct {
	items     map[uuid.UUID]component.Component
	deleted   int
	createErr error
}

func newMemComponentRepo() *memComponentRepo {
	return &memComponentRepo{items: map[uuid.UUID]component.Component{}}
}

func (m *memComponentRepo) GetByID(ctx context.Context, id uuid.UUID) (component.Component, error) {
	c, ok := m.items[id]
	if !ok {
		return component.Component{}, component.ErrNotFound
	}
	return c, nil
}

func (m *memComponentRepo) GetPaginated(ctx context.Context, params *component.FindParams) ([]component.Component, int64, error) {
	out := make([]component.Component, 0, len(m.items))
	for _, c := range m.items {
		out = append(out, c)
	}
	return out, int64(len(out)), nil
}

func (m *memComponentRepo) Create(ctx context.Context, c component.Component) (component.Component, error) {
	if m.createErr != nil {
		return component.Component{}, m.createErr
	}
	created := component.Hydrate(
		c.TenantID(), uuid.New(), c.ProjectID(), c.DrawingID(), c.Identifier(),
		c.ComponentType(), c.ConfigID(), c.BudgetedHours(), c.State(),
		c.PercentComplete(), time.Now(), time.Now(),
	)
	m.items[created.ComponentID()] = created
	return created, nil
}

func (m *memComponentRepo) UpdateProgress(ctx context.Context, id uuid.UUID, state milestone.State, percent float64) (component.Component, error) {
	c, ok := m.items[id]
	if !ok {
		return component.Component{}, component.ErrNotFound
	}
	c = c.WithProgress(state, percent)
	m.items[id] = c
	return c, nil
}

func (m *memComponentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.items[id]; !ok {
		return component.ErrNotFound
	}
	delete(m.items, id)
	m.deleted++
	return nil
}

type memConfigRepo struct {
	configs map[string]milestone.Config
}

func (m *memConfigRepo) GetByID(ctx context.Context, id uuid.UUID) (milestone.Config, error) {
	for _, cfg := range m.configs {
		if cfg.ID() == id {
			return cfg, nil
		}
	}
	return milestone.Config{}, milestone.ErrConfigNotFound
}

func (m *memConfigRepo) GetByName(ctx context.Context, name string) (milestone.Config, error) {
	cfg, ok := m.configs[name]
	if !ok {
		return milestone.Config{}, milestone.ErrConfigNotFound
	}
	return cfg, nil
}

func (m *memConfigRepo) List(ctx context.Context) ([]milestone.Config, error) {
	out := make([]milestone.Config, 0, len(m.configs))
	for _, cfg := range m.configs {
		out = append(out, cfg)
	}
	return out, nil
}

func (m *memConfigRepo) Create(ctx context.Context, cfg milestone.Config) (milestone.Config, error) {
	if _, taken := m.configs[cfg.Name()]; taken {
		return milestone.Config{}, milestone.ErrConfigNameTaken
	}
	created := milestone.Hydrate(uuid.New(), cfg.TenantID(), cfg.Name(), cfg.Version(), cfg.WorkflowType(), cfg.Definitions(), time.Now())
	if m.configs == nil {
		m.configs = map[string]milestone.Config{}
	}
	m.configs[created.Name()] = created
	return created, nil
}

type capturingPublisher struct {
	published []interface{}
}

func (p *capturingPublisher) Publish(args ...interface{})     { p.published = append(p.published, args...) }
func (p *capturingPublisher) Subscribe(handler interface{})   {}
func (p *capturingPublisher) Unsubscribe(handler interface{}) {}
func (p *capturingPublisher) Clear()                          {}
func (p *capturingPublisher) SubscribersCount() int           { return 0 }

type importFixture struct {
	tenantID   uuid.UUID
	projectID  uuid.UUID
	drawings   *memDrawingRepo
	welders    *memWelderRepo
	welds      *memWeldRepo
	components *memComponentRepo
	configs    *memConfigRepo
	publisher  *capturingPublisher
	svc        *ImportService
	ctx        context.Context
}

func newImportFixture(t *testing.T) *importFixture {
	t.Helper()
	tenantID := uuid.New()
	projectID := uuid.New()

	cfg, err := DefaultWeldConfig(tenantID)
	require.NoError(t, err)
	stored := milestone.Hydrate(uuid.New(), tenantID, cfg.Name(), 1, cfg.WorkflowType(), cfg.Definitions(), time.Now())

	f := &importFixture{
		tenantID:  tenantID,
		projectID: projectID,
		drawings: &memDrawingRepo{items: []drawing.Drawing{
			drawing.Hydrate(tenantID, uuid.New(), projectID, "P-35F11", "", time.Now()),
			drawing.Hydrate(tenantID, uuid.New(), projectID, "P-35F12", "", time.Now()),
		}},
		welders: &memWelderRepo{items: []welder.Welder{
			welder.Hydrate(tenantID, uuid.New(), projectID, "JD-7", "J. Doe", welder.StatusVerified, time.Now()),
		}},
		welds:      &memWeldRepo{},
		components: newMemComponentRepo(),
		configs:    &memConfigRepo{configs: map[string]milestone.Config{stored.Name(): stored}},
		publisher:  &capturingPublisher{},
	}
	f.svc = NewImportService(f.drawings, f.welders, f.welds, f.components, f.configs, f.publisher)
	f.ctx = composables.WithTenantID(context.Background(), tenantID)
	return f
}

func weldRow(n int, weldID, drawingNumber string) weldimport.Row {
	return weldimport.Row{
		Number:        n,
		WeldID:        weldID,
		DrawingNumber: drawingNumber,
		WeldType:      "BW",
		WelderStencil: "JD-7",
	}
}

func TestImportWelds_AllRowsCommit(t *testing.T) {
	f := newImportFixture(t)

	rows := []weldimport.Row{
		weldRow(2, "W-001", "P-35F11"),
		weldRow(3, "W-002", "p-35f12"),
	}
	result, err := f.svc.ImportWelds(f.ctx, f.projectID, rows)
	require.NoError(t, err)
	require.Equal(t, 2, result.SuccessCount)
	require.Zero(t, result.ErrorCount)
	require.Empty(t, result.Errors)
	require.Len(t, f.welds.inserted, 2)
	require.Len(t, f.components.items, 2)

	require.Len(t, f.publisher.published, 1)
	ev, ok := f.publisher.published[0].(events.WeldImportCompletedV1)
	require.True(t, ok)
	require.Equal(t, 2, ev.SuccessCount)
	require.Equal(t, f.projectID, ev.ProjectID)
}

func TestImportWelds_RowIndependence(t *testing.T) {
	f := newImportFixture(t)

	rows := []weldimport.Row{
		weldRow(2, "W-001", "P-35F11"),
		weldRow(3, "W-002", "P-99X99"), // unknown drawing
		weldRow(4, "W-003", "P-35F12"),
	}
	result, err := f.svc.ImportWelds(f.ctx, f.projectID, rows)
	require.NoError(t, err)
	require.Equal(t, 2, result.SuccessCount)
	require.Equal(t, 1, result.ErrorCount)
	require.Equal(t, 3, result.Errors[0].Row)
	require.Contains(t, result.Errors[0].Message, `"P-99X99"`)
	require.Len(t, f.components.items, 2)
}

func TestImportWelds_DrawingSuggestions(t *testing.T) {
	f := newImportFixture(t)

	result, err := f.svc.ImportWelds(f.ctx, f.projectID, []weldimport.Row{
		weldRow(2, "W-001", "P-35F13"),
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.ErrorCount)
	require.Contains(t, result.Errors[0].Message, "did you mean")
	require.Contains(t, result.Errors[0].Message, "P-35F11")
}

func TestImportWelds_MissingWeldTypeNoWrites(t *testing.T) {
	f := newImportFixture(t)

	row := weldRow(2, "W-001", "P-35F11")
	row.WeldType = ""
	result, err := f.svc.ImportWelds(f.ctx, f.projectID, []weldimport.Row{row})
	require.NoError(t, err)
	require.Zero(t, result.SuccessCount)
	require.Equal(t, 1, result.ErrorCount)
	require.Equal(t, weldimport.ColumnWeldType, result.Errors[0].Column)
	require.Empty(t, f.components.items)
	require.Empty(t, f.welds.inserted)
}

func TestImportWelds_DuplicateWeldIDsExcluded(t *testing.T) {
	f := newImportFixture(t)

	rows := []weldimport.Row{
		weldRow(2, "W-001", "P-35F11"),
		weldRow(3, "W-001", "P-35F12"),
		weldRow(4, "W-002", "P-35F11"),
	}
	result, err := f.svc.ImportWelds(f.ctx, f.projectID, rows)
	require.NoError(t, err)
	require.Equal(t, 1, result.SuccessCount)
	require.Equal(t, 2, result.ErrorCount)
	require.Len(t, f.components.items, 1)
}

func TestImportWelds_CompensatingDelete(t *testing.T) {
	f := newImportFixture(t)
	f.welds.failWhen = func(d weld.Detail) bool { return true }

	result, err := f.svc.ImportWelds(f.ctx, f.projectID, []weldimport.Row{
		weldRow(2, "W-001", "P-35F11"),
	})
	require.NoError(t, err)
	require.Zero(t, result.SuccessCount)
	require.Equal(t, 1, result.ErrorCount)
	require.Contains(t, result.Errors[0].Message, "insert weld detail")
	require.Empty(t, f.components.items, "component must not survive a failed detail insert")
	require.Equal(t, 1, f.components.deleted)
}

func TestImportWelds_WelderAutoVivification(t *testing.T) {
	f := newImportFixture(t)

	rowA := weldRow(2, "W-001", "P-35F11")
	rowA.WelderStencil = "zz 9"
	rowB := weldRow(3, "W-002", "P-35F12")
	rowB.WelderStencil = " ZZ  9 "

	result, err := f.svc.ImportWelds(f.ctx, f.projectID, []weldimport.Row{rowA, rowB})
	require.NoError(t, err)
	require.Equal(t, 2, result.SuccessCount)
	require.Equal(t, 1, f.welders.created, "normalized stencil must be created once and reused")

	var created welder.Welder
	for _, w := range f.welders.items {
		if w.Stencil() == "ZZ 9" {
			created = w
		}
	}
	require.False(t, created.IsZero())
	require.Equal(t, welder.StatusUnverified, created.Status())
}

func TestImportWelds_InitialMilestoneState(t *testing.T) {
	f := newImportFixture(t)

	welded := weldRow(2, "W-001", "P-35F11")
	welded.DateWelded = "2026-03-14"
	accepted := weldRow(3, "W-002", "P-35F12")
	accepted.DateWelded = "2026-03-14"
	accepted.NDEResult = "Accept"
	untouched := weldRow(4, "W-003", "P-35F11")

	result, err := f.svc.ImportWelds(f.ctx, f.projectID, []weldimport.Row{welded, accepted, untouched})
	require.NoError(t, err)
	require.Equal(t, 3, result.SuccessCount)

	byIdentifier := map[string]component.Component{}
	for _, c := range f.components.items {
		byIdentifier[c.Identifier()] = c
	}
	// Fit-up 10 + Weld 60.
	require.InDelta(t, 70.0, byIdentifier["W-001"].PercentComplete(), 1e-9)
	// Fit-up 10 + Weld 60 + NDE 15.
	require.InDelta(t, 85.0, byIdentifier["W-002"].PercentComplete(), 1e-9)
	// No derived milestones, no follow-up write.
	require.Zero(t, byIdentifier["W-003"].PercentComplete())
	require.Empty(t, byIdentifier["W-003"].State())
}

func TestImportWelds_FatalSetupFailsEveryRow(t *testing.T) {
	f := newImportFixture(t)
	delete(f.configs.configs, WeldConfigName)

	rows := []weldimport.Row{
		weldRow(2, "W-001", "P-35F11"),
		weldRow(3, "W-002", "P-35F12"),
	}
	result, err := f.svc.ImportWelds(f.ctx, f.projectID, rows)
	require.NoError(t, err)
	require.Zero(t, result.SuccessCount)
	require.Equal(t, 2, result.ErrorCount)
	require.Len(t, result.Errors, 2)
	require.Equal(t, result.Errors[0].Message, result.Errors[1].Message)
	require.Contains(t, result.Errors[0].Message, "import setup failed")
	require.Empty(t, f.components.items)
}

func TestImportWelds_RowPanicIsContained(t *testing.T) {
	f := newImportFixture(t)
	f.welds.failWhen = func(d weld.Detail) bool {
		if d.SpecCode == "BOOM" {
			panic("exploding row")
		}
		return false
	}

	bad := weldRow(2, "W-001", "P-35F11")
	bad.SpecCode = "BOOM"
	good := weldRow(3, "W-002", "P-35F12")

	result, err := f.svc.ImportWelds(f.ctx, f.projectID, []weldimport.Row{bad, good})
	require.NoError(t, err)
	require.Equal(t, 1, result.SuccessCount)
	require.Equal(t, 1, result.ErrorCount)
	require.Equal(t, 2, result.Errors[0].Row)
	require.Contains(t, result.Errors[0].Message, "exploding row")
	// The component created for the panicking row must not survive as an
	// orphan; only the successful row's component remains.
	require.Equal(t, 1, f.components.deleted)
	require.Len(t, f.components.items, 1)
	for _, c := range f.components.items {
		require.Equal(t, "W-002", c.Identifier())
	}
}

func TestEnsureWeldConfig(t *testing.T) {
	f := newImportFixture(t)

	existing, err := f.svc.EnsureWeldConfig(f.ctx)
	require.NoError(t, err)
	require.Equal(t, WeldConfigName, existing.Name())

	delete(f.configs.configs, WeldConfigName)
	created, err := f.svc.EnsureWeldConfig(f.ctx)
	require.NoError(t, err)
	require.Equal(t, WeldConfigName, created.Name())
	require.NotEqual(t, uuid.Nil, created.ID())
	require.Len(t, created.Definitions(), 5)
}
