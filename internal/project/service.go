package project

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ErrProjectNotFound is returned for operations on an unknown project id.
var ErrProjectNotFound = errors.New("project: project not found")

// ErrMovementNotFound is returned when a movement id does not exist on the
// project.
var ErrMovementNotFound = errors.New("project: movement not found")

// Service owns the authoritative in-memory state. Every mutation happens
// here under the lock; persistence is best effort and debounced, so a failed
// write never blocks or corrupts an edit.
type Service struct {
	log   *slog.Logger
	repo  Repository
	snaps *SnapshotStore

	mu       sync.RWMutex
	store    Store
	shrinkOK bool

	debounce *Debouncer
}

// NewService wires the service. snaps may be nil when Redis is not
// configured; persistence then goes to Postgres only.
func NewService(log *slog.Logger, repo Repository, snaps *SnapshotStore, debounceWindow time.Duration) *Service {
	s := &Service{log: log, repo: repo, snaps: snaps}
	s.debounce = NewDebouncer(debounceWindow, s.flush)
	return s
}

// Bootstrap loads the persisted state into memory: the Postgres row first,
// the Redis recovery chain when the row is missing, an empty store when
// neither has data.
func (s *Service) Bootstrap(ctx context.Context) error {
	if err := s.repo.Init(ctx); err != nil {
		return err
	}

	store, err := s.repo.Load(ctx)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if store == nil && s.snaps != nil {
		projects, rerr := s.snaps.Recover(ctx)
		if rerr != nil && !errors.Is(rerr, ErrNoSnapshot) {
			s.log.Warn("redis recover failed", "error", rerr)
		}
		if len(projects) > 0 {
			store = &Store{Projects: projects}
			s.log.Info("state recovered from redis", "projects", len(projects))
		}
	}
	if store == nil {
		store = &Store{Projects: []Project{}}
	}
	if store.CurrentID == "" && len(store.Projects) > 0 {
		store.CurrentID = store.Projects[0].ID
	}

	s.mu.Lock()
	s.store = *store
	s.mu.Unlock()
	return nil
}

// Snapshot returns a deep copy of the current store.
func (s *Service) Snapshot() Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneStore(s.store)
}

// Get returns a deep copy of one project.
func (s *Service) Get(id string) (Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.store.Projects {
		if s.store.Projects[i].ID == id {
			return cloneProject(s.store.Projects[i]), nil
		}
	}
	return Project{}, ErrProjectNotFound
}

// Current returns the currently open project, if any.
func (s *Service) Current() (Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.store.Projects {
		if s.store.Projects[i].ID == s.store.CurrentID {
			return cloneProject(s.store.Projects[i]), true
		}
	}
	return Project{}, false
}

// ReplaceAll swaps the whole store, e.g. after a wholesale PUT. Projects are
// normalized on the way in.
func (s *Service) ReplaceAll(store Store) Store {
	for i := range store.Projects {
		Normalize(&store.Projects[i])
	}
	if store.CurrentID == "" && len(store.Projects) > 0 {
		store.CurrentID = store.Projects[0].ID
	}
	s.mu.Lock()
	s.store = cloneStore(store)
	s.shrinkOK = true
	out := cloneStore(s.store)
	s.mu.Unlock()
	s.schedule()
	return out
}

// Import merges projects parsed from an arbitrary export payload in front of
// the existing ones.
func (s *Service) Import(raw []byte) (int, error) {
	projects, err := ExtractProjects(raw)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	s.store.Projects = append(projects, s.store.Projects...)
	s.store.CurrentID = projects[0].ID
	s.mu.Unlock()
	s.schedule()
	return len(projects), nil
}

// Create adds a fresh project in front of the list and makes it current.
func (s *Service) Create(name string) Project {
	p := NewProject(name)
	s.mu.Lock()
	s.store.Projects = append([]Project{p}, s.store.Projects...)
	s.store.CurrentID = p.ID
	s.mu.Unlock()
	s.schedule()
	return cloneProject(p)
}

// Duplicate deep-copies a project under a new id, tags the name, resets the
// discount and makes the copy current.
func (s *Service) Duplicate(id string) (Project, error) {
	s.mu.Lock()
	defer func() {
		s.mu.Unlock()
		s.schedule()
	}()
	src, ok := s.find(id)
	if !ok {
		return Project{}, ErrProjectNotFound
	}
	clone := cloneProject(*src)
	clone.ID = uuid.NewString()
	clone.Meta.Name += " (copia)"
	clone.Meta.CreatedAt = Now().Format("2006-01-02")
	clone.State.DiscountPct = 0
	s.store.Projects = append([]Project{clone}, s.store.Projects...)
	s.store.CurrentID = clone.ID
	return cloneProject(clone), nil
}

// Delete removes a project; the next remaining project becomes current.
func (s *Service) Delete(id string) error {
	s.mu.Lock()
	defer func() {
		s.mu.Unlock()
		s.schedule()
	}()
	idx := -1
	for i := range s.store.Projects {
		if s.store.Projects[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrProjectNotFound
	}
	s.store.Projects = append(s.store.Projects[:idx], s.store.Projects[idx+1:]...)
	s.shrinkOK = true
	if s.store.CurrentID == id {
		s.store.CurrentID = ""
		if len(s.store.Projects) > 0 {
			s.store.CurrentID = s.store.Projects[0].ID
		}
	}
	return nil
}

// SetCurrent switches the open project.
func (s *Service) SetCurrent(id string) error {
	s.mu.Lock()
	defer func() {
		s.mu.Unlock()
		s.schedule()
	}()
	if _, ok := s.find(id); !ok {
		return ErrProjectNotFound
	}
	s.store.CurrentID = id
	return nil
}

// UpdateMeta applies a partial meta update.
func (s *Service) UpdateMeta(id string, apply func(*Meta)) (Project, error) {
	return s.mutate(id, func(p *Project) { apply(&p.Meta) })
}

// PutState replaces a project's state wholesale (the state has already been
// validated and, when pricing parameters changed, reconciled by the caller).
func (s *Service) PutState(id string, state State) (Project, error) {
	return s.mutate(id, func(p *Project) {
		p.State = state
		normalizeState(&p.State)
	})
}

// SetInstallmentCount rebuilds the installment plan with the preset split
// for the new count, keeping dates and concepts the user already typed.
func (s *Service) SetInstallmentCount(id string, count int) (Project, error) {
	return s.mutate(id, func(p *Project) {
		prev := p.State.Installments
		next := BuildInstallments(count)
		for i := range next {
			if i < len(prev) {
				next[i].Date = prev[i].Date
				next[i].Concept = prev[i].Concept
			}
		}
		p.State.InstallmentCount = len(next)
		p.State.Installments = next
	})
}

// AddMovement appends a movement, assigning an id when absent.
func (s *Service) AddMovement(id string, m Movement) (Movement, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	_, err := s.mutate(id, func(p *Project) {
		p.State.Movements = append(p.State.Movements, m)
		normalizeState(&p.State)
	})
	return m, err
}

// UpdateMovement replaces a movement by id.
func (s *Service) UpdateMovement(id string, m Movement) error {
	found := false
	_, err := s.mutate(id, func(p *Project) {
		for i := range p.State.Movements {
			if p.State.Movements[i].ID == m.ID {
				p.State.Movements[i] = m
				found = true
				return
			}
		}
	})
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrMovementNotFound, m.ID)
	}
	return nil
}

// DeleteMovement removes a movement by id.
func (s *Service) DeleteMovement(id, movementID string) error {
	_, err := s.mutate(id, func(p *Project) {
		movs := p.State.Movements[:0]
		for _, m := range p.State.Movements {
			if m.ID != movementID {
				movs = append(movs, m)
			}
		}
		p.State.Movements = movs
	})
	return err
}

// PushSnapshot stores a manual snapshot of the current project list.
func (s *Service) PushSnapshot(ctx context.Context) error {
	if s.snaps == nil {
		return nil
	}
	store := s.Snapshot()
	return s.snaps.PushSnapshot(ctx, store.Projects)
}

// RestoreLatest replaces the in-memory store with the best copy Redis has.
func (s *Service) RestoreLatest(ctx context.Context) (Store, error) {
	if s.snaps == nil {
		return Store{}, ErrNoSnapshot
	}
	projects, err := s.snaps.Recover(ctx)
	if err != nil {
		return Store{}, err
	}
	return s.ReplaceAll(Store{Projects: projects}), nil
}

// Flush persists immediately, bypassing the debounce window. Used on
// shutdown.
func (s *Service) Flush() {
	s.debounce.Flush()
}

func (s *Service) mutate(id string, apply func(*Project)) (Project, error) {
	s.mu.Lock()
	p, ok := s.find(id)
	if !ok {
		s.mu.Unlock()
		return Project{}, ErrProjectNotFound
	}
	apply(p)
	out := cloneProject(*p)
	s.mu.Unlock()
	s.schedule()
	return out, nil
}

// find returns a pointer into the store; callers hold the lock.
func (s *Service) find(id string) (*Project, bool) {
	for i := range s.store.Projects {
		if s.store.Projects[i].ID == id {
			return &s.store.Projects[i], true
		}
	}
	return nil, false
}

func (s *Service) schedule() {
	s.debounce.Trigger()
}

// flush writes the current store to Postgres and mirrors it to Redis
// concurrently. Failures are logged, never surfaced to the edit path. The
// mirror only accepts a shrinking project list right after an operation that
// legitimately removed projects.
func (s *Service) flush() {
	s.mu.Lock()
	store := cloneStore(s.store)
	allowShrink := s.shrinkOK
	s.shrinkOK = false
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.repo.Save(gctx, &store)
	})
	if s.snaps != nil {
		g.Go(func() error {
			return s.snaps.WriteMirror(gctx, store.Projects, allowShrink)
		})
	}
	if err := g.Wait(); err != nil {
		s.log.Error("state persist failed", "error", err)
		return
	}
	s.log.Debug("state persisted", "projects", len(store.Projects))
}

func cloneStore(in Store) Store {
	out := Store{CurrentID: in.CurrentID, Projects: make([]Project, len(in.Projects))}
	for i := range in.Projects {
		out.Projects[i] = cloneProject(in.Projects[i])
	}
	return out
}

// cloneProject deep-copies via JSON; project graphs are small and this keeps
// the copy honest as fields are added.
func cloneProject(in Project) Project {
	raw, err := json.Marshal(in)
	if err != nil {
		return in
	}
	var out Project
	if err := json.Unmarshal(raw, &out); err != nil {
		return in
	}
	return out
}
