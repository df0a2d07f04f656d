package project

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memRepo is an in-memory Repository for service tests.
type memRepo struct {
	mu    sync.Mutex
	store *Store
	saves int
}

func (r *memRepo) Init(ctx context.Context) error { return nil }

func (r *memRepo) Load(ctx context.Context) (*Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.store == nil {
		return nil, ErrNotFound
	}
	c := cloneStore(*r.store)
	return &c, nil
}

func (r *memRepo) Save(ctx context.Context, store *Store) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := cloneStore(*store)
	r.store = &c
	r.saves++
	return nil
}

func newTestService(t *testing.T, repo *memRepo) *Service {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	// A huge window keeps the debouncer from firing mid-test; persistence is
	// exercised through Flush.
	svc := NewService(logger, repo, nil, time.Hour)
	require.NoError(t, svc.Bootstrap(context.Background()))
	return svc
}

func TestServiceBootstrapEmpty(t *testing.T) {
	svc := newTestService(t, &memRepo{})
	store := svc.Snapshot()
	assert.Empty(t, store.Projects)
	assert.Empty(t, store.CurrentID)
}

func TestServiceBootstrapPersisted(t *testing.T) {
	p := NewProject("Persistido")
	repo := &memRepo{store: &Store{Projects: []Project{p}}}
	svc := newTestService(t, repo)

	store := svc.Snapshot()
	require.Len(t, store.Projects, 1)
	assert.Equal(t, p.ID, store.CurrentID, "the first project becomes current when none is set")
}

func TestServiceCreate(t *testing.T) {
	svc := newTestService(t, &memRepo{})
	first := svc.Create("Uno")
	second := svc.Create("Dos")

	store := svc.Snapshot()
	require.Len(t, store.Projects, 2)
	assert.Equal(t, second.ID, store.Projects[0].ID, "new projects go in front")
	assert.Equal(t, second.ID, store.CurrentID)
	assert.Equal(t, "Uno", first.Meta.Name)
}

func TestServiceDuplicate(t *testing.T) {
	svc := newTestService(t, &memRepo{})
	src := svc.Create("Original")
	st := src.State
	st.DiscountPct = 12
	st.MarginPct = 40
	_, err := svc.PutState(src.ID, st)
	require.NoError(t, err)

	dup, err := svc.Duplicate(src.ID)
	require.NoError(t, err)
	assert.NotEqual(t, src.ID, dup.ID)
	assert.Equal(t, "Original (copia)", dup.Meta.Name)
	assert.Equal(t, 0.0, dup.State.DiscountPct, "duplicates start without the negotiated discount")
	assert.Equal(t, 40.0, dup.State.MarginPct)

	store := svc.Snapshot()
	assert.Equal(t, dup.ID, store.Projects[0].ID)
	assert.Equal(t, dup.ID, store.CurrentID)

	_, err = svc.Duplicate("nope")
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestServiceDelete(t *testing.T) {
	svc := newTestService(t, &memRepo{})
	a := svc.Create("A")
	b := svc.Create("B") // current

	require.NoError(t, svc.Delete(b.ID))
	store := svc.Snapshot()
	require.Len(t, store.Projects, 1)
	assert.Equal(t, a.ID, store.CurrentID, "deleting the current project promotes the next one")

	assert.ErrorIs(t, svc.Delete("nope"), ErrProjectNotFound)
}

func TestServiceSetCurrent(t *testing.T) {
	svc := newTestService(t, &memRepo{})
	a := svc.Create("A")
	svc.Create("B")

	require.NoError(t, svc.SetCurrent(a.ID))
	cur, ok := svc.Current()
	require.True(t, ok)
	assert.Equal(t, a.ID, cur.ID)

	assert.ErrorIs(t, svc.SetCurrent("nope"), ErrProjectNotFound)
}

func TestServiceUpdateMeta(t *testing.T) {
	svc := newTestService(t, &memRepo{})
	p := svc.Create("Meta")

	got, err := svc.UpdateMeta(p.ID, func(m *Meta) {
		m.Contact = "Ana"
		m.Location = "Monterrey"
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Meta.Contact)
	assert.Equal(t, "Monterrey", got.Meta.Location)
	assert.Equal(t, "Meta", got.Meta.Name, "untouched fields survive")
}

func TestServicePutStateNormalizes(t *testing.T) {
	svc := newTestService(t, &memRepo{})
	p := svc.Create("Estado")

	next := p.State
	next.Installments = nil
	next.InstallmentCount = 0
	next.PriceOverrides = nil
	got, err := svc.PutState(p.ID, next)
	require.NoError(t, err)
	assert.Len(t, got.State.Installments, DefaultInstallmentCount)
	assert.NotNil(t, got.State.PriceOverrides)
}

func TestServiceSetInstallmentCount(t *testing.T) {
	svc := newTestService(t, &memRepo{})
	p := svc.Create("Plan")

	st := p.State
	st.Installments[0].Date = "2026-09-01"
	st.Installments[0].Concept = "Anticipo"
	_, err := svc.PutState(p.ID, st)
	require.NoError(t, err)

	got, err := svc.SetInstallmentCount(p.ID, 4)
	require.NoError(t, err)
	require.Len(t, got.State.Installments, 4)
	assert.Equal(t, 4, got.State.InstallmentCount)
	assert.Equal(t, 40.0, got.State.Installments[0].Pct, "the preset split applies to the new count")
	assert.Equal(t, "2026-09-01", got.State.Installments[0].Date, "typed dates carry over")
	assert.Equal(t, "Anticipo", got.State.Installments[0].Concept)
}

func TestServiceMovements(t *testing.T) {
	svc := newTestService(t, &memRepo{})
	p := svc.Create("Caja")

	m, err := svc.AddMovement(p.ID, Movement{
		Kind: MovementCharge, Status: MovementPending,
		Category: CategorySeaFreight, Amount: 2500, Currency: CurrencyUSD,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, m.ID, "an id is assigned when absent")

	m.Amount = 2600
	m.Status = MovementPaid
	require.NoError(t, svc.UpdateMovement(p.ID, m))
	got, err := svc.Get(p.ID)
	require.NoError(t, err)
	require.Len(t, got.State.Movements, 1)
	assert.Equal(t, 2600.0, got.State.Movements[0].Amount)

	err = svc.UpdateMovement(p.ID, Movement{ID: "nope"})
	assert.ErrorIs(t, err, ErrMovementNotFound)

	require.NoError(t, svc.DeleteMovement(p.ID, m.ID))
	got, err = svc.Get(p.ID)
	require.NoError(t, err)
	assert.Empty(t, got.State.Movements)
}

func TestServiceImport(t *testing.T) {
	svc := newTestService(t, &memRepo{})
	existing := svc.Create("Existente")

	n, err := svc.Import([]byte(`{"projects":[{"id":"imp","meta":{"name":"Importado"}}]}`))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	store := svc.Snapshot()
	require.Len(t, store.Projects, 2)
	assert.Equal(t, "imp", store.Projects[0].ID, "imports land in front")
	assert.Equal(t, "imp", store.CurrentID)
	assert.Equal(t, existing.ID, store.Projects[1].ID)

	_, err = svc.Import([]byte(`{"foo":1}`))
	assert.ErrorIs(t, err, ErrUnrecognizedImport)
}

func TestServiceReplaceAll(t *testing.T) {
	svc := newTestService(t, &memRepo{})
	svc.Create("Viejo")

	out := svc.ReplaceAll(Store{Projects: []Project{{ID: "r1"}, {ID: "r2"}}})
	assert.Equal(t, "r1", out.CurrentID)
	require.Len(t, out.Projects, 2)
	assert.NotEmpty(t, out.Projects[0].Meta.Name, "projects are normalized on the way in")
}

func TestServiceFlushPersists(t *testing.T) {
	repo := &memRepo{}
	svc := newTestService(t, repo)
	p := svc.Create("Persistente")
	svc.Flush()

	repo.mu.Lock()
	defer repo.mu.Unlock()
	require.NotNil(t, repo.store)
	require.Len(t, repo.store.Projects, 1)
	assert.Equal(t, p.ID, repo.store.Projects[0].ID)
	assert.GreaterOrEqual(t, repo.saves, 1)
}

func TestServiceMutationsAreCopies(t *testing.T) {
	svc := newTestService(t, &memRepo{})
	p := svc.Create("Aislado")

	// Mutating a returned copy must not leak into the store.
	p.Meta.Name = "Cambiado"
	p.State.Lines = append(p.State.Lines, OrderLine{ID: "x", Quantity: 1})

	got, err := svc.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Aislado", got.Meta.Name)
	assert.Empty(t, got.State.Lines)
}

func TestDebouncer(t *testing.T) {
	var mu sync.Mutex
	runs := 0
	d := NewDebouncer(20*time.Millisecond, func() {
		mu.Lock()
		runs++
		mu.Unlock()
	})

	d.Trigger()
	d.Trigger()
	d.Trigger()
	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	assert.Equal(t, 1, runs, "a burst collapses into one run")
	mu.Unlock()

	d.Trigger()
	d.Stop()
	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	assert.Equal(t, 1, runs, "Stop cancels the pending run")
	mu.Unlock()

	d.Flush()
	mu.Lock()
	assert.Equal(t, 2, runs, "Flush runs immediately")
	mu.Unlock()
}
