package projecthttp

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scontainr/quotecenter/internal/catalog"
	"github.com/scontainr/quotecenter/internal/logistics"
	"github.com/scontainr/quotecenter/internal/project"
	"github.com/scontainr/quotecenter/internal/quote"
)

type memRepo struct {
	mu    sync.Mutex
	store *project.Store
}

func (r *memRepo) Init(ctx context.Context) error { return nil }

func (r *memRepo) Load(ctx context.Context) (*project.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.store == nil {
		return nil, project.ErrNotFound
	}
	return r.store, nil
}

func (r *memRepo) Save(ctx context.Context, store *project.Store) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.store = store
	return nil
}

func newTestHandler(t *testing.T) (*project.Service, http.Handler) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := project.NewService(logger, &memRepo{}, nil, time.Hour)
	require.NoError(t, svc.Bootstrap(context.Background()))

	h := NewHandler(logger, svc, nil, catalog.Default(), nil)
	r := chi.NewRouter()
	h.MountRoutes(r)
	return svc, r
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestCreateProject(t *testing.T) {
	_, router := newTestHandler(t)

	rec := doJSON(t, router, http.MethodPost, "/projects/", map[string]string{"name": "Bodega Sur"})
	require.Equal(t, http.StatusCreated, rec.Code)

	p := decode[project.Project](t, rec)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "Bodega Sur", p.Meta.Name)
	assert.Equal(t, project.DefaultInstallmentCount, p.State.InstallmentCount)
}

func TestGetState(t *testing.T) {
	svc, router := newTestHandler(t)
	p := svc.Create("Visible")

	rec := doJSON(t, router, http.MethodGet, "/state/", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	store := decode[project.Store](t, rec)
	require.Len(t, store.Projects, 1)
	assert.Equal(t, p.ID, store.CurrentID)
}

func TestPutProjectStateValidation(t *testing.T) {
	svc, router := newTestHandler(t)
	p := svc.Create("Inválido")

	bad := p.State
	bad.MarginPct = 150
	rec := doJSON(t, router, http.MethodPut, "/projects/"+p.ID+"/state", bad)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "margin_pct")

	bad = p.State
	bad.Lines = []project.OrderLine{{ID: "l", Size: 13, Model: "S1", Finish: catalog.FinishFoldable, Quantity: 1}}
	rec = doJSON(t, router, http.MethodPut, "/projects/"+p.ID+"/state", bad)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPut, "/projects/nope/state", p.State)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPutProjectStateReconcilesOverrides(t *testing.T) {
	svc, router := newTestHandler(t)
	p := svc.Create("Precio")

	st := p.State
	st.MarginPct = 40
	st.Lines = []project.OrderLine{
		{ID: "l1", Size: catalog.Size20, Model: "S1", Finish: catalog.FinishFoldable, Quantity: 1},
	}
	rec := doJSON(t, router, http.MethodPut, "/projects/"+p.ID+"/state", st)
	require.Equal(t, http.StatusOK, rec.Code)

	// An override copying the currently computed price must vanish when the
	// margin moves, while a deliberately different one stays.
	cat := catalog.Default()
	existing, err := svc.Get(p.ID)
	require.NoError(t, err)
	shared := logistics.Compute(&existing.State, cat).SharedTotalUSD
	prevRows, _ := quote.BuildRows(&existing.State, cat, shared)
	require.NotEmpty(t, prevRows)
	stale := prevRows[0].ComputedUnitPrice

	key := project.LineKey{Size: catalog.Size20, Model: "S1", Finish: catalog.FinishFoldable}.String()
	st = decode[project.Project](t, rec).State
	st.MarginPct = 50
	st.PriceOverrides = map[string]float64{key: stale}
	rec = doJSON(t, router, http.MethodPut, "/projects/"+p.ID+"/state", st)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[project.Project](t, rec)
	assert.NotContains(t, got.State.PriceOverrides, key)
	assert.Equal(t, 50.0, got.State.MarginPct)

	st = got.State
	st.MarginPct = 60
	st.PriceOverrides = map[string]float64{key: 2800}
	rec = doJSON(t, router, http.MethodPut, "/projects/"+p.ID+"/state", st)
	require.Equal(t, http.StatusOK, rec.Code)
	got = decode[project.Project](t, rec)
	assert.Equal(t, 2800.0, got.State.PriceOverrides[key])
}

func TestPatchMeta(t *testing.T) {
	svc, router := newTestHandler(t)
	p := svc.Create("Meta")

	rec := doJSON(t, router, http.MethodPatch, "/projects/"+p.ID+"/meta", map[string]string{
		"contact":       "Ana",
		"contact_email": "ana@example.com",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[project.Project](t, rec)
	assert.Equal(t, "Ana", got.Meta.Contact)
	assert.Equal(t, "Meta", got.Meta.Name)

	rec = doJSON(t, router, http.MethodPatch, "/projects/"+p.ID+"/meta", map[string]string{
		"contact_email": "not-an-email",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInstallmentCount(t *testing.T) {
	svc, router := newTestHandler(t)
	p := svc.Create("Plan")

	rec := doJSON(t, router, http.MethodPut, "/projects/"+p.ID+"/installments/count", map[string]int{"count": 4})
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[project.Project](t, rec)
	assert.Len(t, got.State.Installments, 4)

	rec = doJSON(t, router, http.MethodPut, "/projects/"+p.ID+"/installments/count", map[string]int{"count": 7})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMovements(t *testing.T) {
	svc, router := newTestHandler(t)
	p := svc.Create("Caja")

	rec := doJSON(t, router, http.MethodPost, "/projects/"+p.ID+"/movements", map[string]any{
		"kind": "charge", "status": "pending", "category": "sea_freight",
		"amount": 2500, "currency": "USD", "date": "2026-09-15",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	m := decode[project.Movement](t, rec)
	assert.NotEmpty(t, m.ID)

	rec = doJSON(t, router, http.MethodPut, "/projects/"+p.ID+"/movements/"+m.ID, map[string]any{
		"kind": "charge", "status": "paid", "category": "sea_freight",
		"amount": 2600, "currency": "USD",
	})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodPut, "/projects/"+p.ID+"/movements/nope", map[string]any{
		"kind": "charge", "status": "paid", "category": "sea_freight",
		"amount": 1, "currency": "USD",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Unknown enum values never reach the store.
	rec = doJSON(t, router, http.MethodPost, "/projects/"+p.ID+"/movements", map[string]any{
		"kind": "transfer", "status": "pending", "category": "sea_freight",
		"amount": 1, "currency": "USD",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/projects/"+p.ID+"/movements/"+m.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestImportState(t *testing.T) {
	_, router := newTestHandler(t)

	rec := doJSON(t, router, http.MethodPost, "/state/import", map[string]any{
		"projects": []map[string]any{{"id": "imp", "meta": map[string]string{"name": "Importado"}}},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[importResponse](t, rec).Imported)

	rec = doJSON(t, router, http.MethodPost, "/state/import", map[string]any{"foo": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unrecognized Export")
}

func TestSnapshotsWithoutRedis(t *testing.T) {
	_, router := newTestHandler(t)

	rec := doJSON(t, router, http.MethodGet, "/state/snapshots", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[snapshotListResponse](t, rec)
	assert.Empty(t, resp.Snapshots)

	rec = doJSON(t, router, http.MethodPost, "/state/backup", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestDeleteAndDuplicate(t *testing.T) {
	svc, router := newTestHandler(t)
	p := svc.Create("Original")

	rec := doJSON(t, router, http.MethodPost, "/projects/"+p.ID+"/duplicate", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	dup := decode[project.Project](t, rec)
	assert.Equal(t, "Original (copia)", dup.Meta.Name)

	rec = doJSON(t, router, http.MethodDelete, "/projects/"+dup.ID+"/", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/projects/nope/", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
