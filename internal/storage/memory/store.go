// Package memory is a process-local storage driver with the same semantics as
// the postgres stores: unique source URLs, unique premise links, unique niche
// names and cascading source deletion.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"premise_fetcher/internal/domain"
	"premise_fetcher/internal/query"
)

// Store holds sources, premises and niches behind one lock.
type Store struct {
	mu       sync.RWMutex
	sources  map[string]domain.Source
	premises map[string]domain.Premise
	links    map[string]string
	niches   map[string]domain.Niche
}

func New() *Store {
	return &Store{
		sources:  make(map[string]domain.Source),
		premises: make(map[string]domain.Premise),
		links:    make(map[string]string),
		niches:   make(map[string]domain.Niche),
	}
}

// Sources, Premises and Niches expose the store through the narrower store views.
func (s *Store) Sources() *SourceStore   { return &SourceStore{s} }
func (s *Store) Premises() *PremiseStore { return &PremiseStore{s} }
func (s *Store) Niches() *NicheStore     { return &NicheStore{s} }

type SourceStore struct{ s *Store }

func (st *SourceStore) Create(_ context.Context, source *domain.Source) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	for _, existing := range st.s.sources {
		if existing.URL == source.URL {
			return fmt.Errorf("%w: source %s already registered", domain.ErrConflict, source.URL)
		}
	}
	st.s.sources[source.ID] = *source
	return nil
}

func (st *SourceStore) Get(_ context.Context, id string) (*domain.Source, error) {
	st.s.mu.RLock()
	defer st.s.mu.RUnlock()

	source, ok := st.s.sources[id]
	if !ok {
		return nil, fmt.Errorf("%w: source %s", domain.ErrNotFound, id)
	}
	return &source, nil
}

func (st *SourceStore) GetByURL(_ context.Context, url string) (*domain.Source, error) {
	st.s.mu.RLock()
	defer st.s.mu.RUnlock()

	for _, source := range st.s.sources {
		if source.URL == url {
			return &source, nil
		}
	}
	return nil, fmt.Errorf("%w: source %s", domain.ErrNotFound, url)
}

func (st *SourceStore) List(_ context.Context) ([]domain.Source, error) {
	st.s.mu.RLock()
	defer st.s.mu.RUnlock()

	sources := make([]domain.Source, 0, len(st.s.sources))
	for _, source := range st.s.sources {
		sources = append(sources, source)
	}
	slices.SortFunc(sources, func(a, b domain.Source) int {
		if c := b.RegisteredAt.Compare(a.RegisteredAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return sources, nil
}

func (st *SourceStore) MarkExtracted(_ context.Context, id string, at time.Time) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	source, ok := st.s.sources[id]
	if !ok {
		return fmt.Errorf("%w: source %s", domain.ErrNotFound, id)
	}
	source.LastExtractedAt = &at
	st.s.sources[id] = source
	return nil
}

// Delete removes the source together with its premises.
func (st *SourceStore) Delete(_ context.Context, id string) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	if _, ok := st.s.sources[id]; !ok {
		return fmt.Errorf("%w: source %s", domain.ErrNotFound, id)
	}
	delete(st.s.sources, id)
	st.s.deletePremisesOf(id)
	return nil
}

type PremiseStore struct{ s *Store }

func (st *PremiseStore) ExistsByLink(_ context.Context, link string) (bool, error) {
	st.s.mu.RLock()
	defer st.s.mu.RUnlock()

	_, ok := st.s.links[link]
	return ok, nil
}

func (st *PremiseStore) Insert(_ context.Context, p *domain.Premise) (bool, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	if _, ok := st.s.links[p.Link]; ok {
		return false, nil
	}
	if _, ok := st.s.sources[p.Source.ID]; !ok {
		return false, fmt.Errorf("%w: source %s", domain.ErrNotFound, p.Source.ID)
	}
	st.s.premises[p.ID] = *p
	st.s.links[p.Link] = p.ID
	return true, nil
}

func (st *PremiseStore) Get(_ context.Context, id string) (*domain.Premise, error) {
	st.s.mu.RLock()
	defer st.s.mu.RUnlock()

	p, ok := st.s.premises[id]
	if !ok {
		return nil, fmt.Errorf("%w: premise %s", domain.ErrNotFound, id)
	}
	return &p, nil
}

func (st *PremiseStore) List(_ context.Context, q query.Query) ([]domain.Premise, int, error) {
	st.s.mu.RLock()
	matched := make([]domain.Premise, 0)
	for _, p := range st.s.premises {
		if q.Filter.Matches(&p) {
			matched = append(matched, p)
		}
	}
	st.s.mu.RUnlock()

	slices.SortFunc(matched, func(a, b domain.Premise) int {
		switch {
		case q.Sort.Less(&a, &b):
			return -1
		case q.Sort.Less(&b, &a):
			return 1
		}
		return 0
	})

	total := len(matched)
	start := min(q.Page.Offset(), total)
	end := start + min(max(q.Page.Size, 0), total-start)
	return matched[start:end], total, nil
}

func (st *PremiseStore) SetUsed(_ context.Context, id string, used bool, at time.Time) (*domain.Premise, error) {
	return st.update(id, func(p *domain.Premise) {
		p.Used = used
		p.UpdatedAt = at
	})
}

func (st *PremiseStore) SetCategory(_ context.Context, id string, category domain.Category, at time.Time) (*domain.Premise, error) {
	return st.update(id, func(p *domain.Premise) {
		if category.Niche != nil {
			p.Niche = *category.Niche
		}
		if category.SubNiche != nil {
			p.SubNiche = *category.SubNiche
		}
		p.UpdatedAt = at
	})
}

func (st *PremiseStore) update(id string, fn func(p *domain.Premise)) (*domain.Premise, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	p, ok := st.s.premises[id]
	if !ok {
		return nil, fmt.Errorf("%w: premise %s", domain.ErrNotFound, id)
	}
	fn(&p)
	st.s.premises[id] = p
	return &p, nil
}

func (st *PremiseStore) DeleteBySource(_ context.Context, sourceID string) ([]string, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	return st.s.deletePremisesOf(sourceID), nil
}

func (st *PremiseStore) Delete(_ context.Context, id string) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	p, ok := st.s.premises[id]
	if !ok {
		return fmt.Errorf("%w: premise %s", domain.ErrNotFound, id)
	}
	delete(st.s.premises, id)
	delete(st.s.links, p.Link)
	return nil
}

// deletePremisesOf must be called with the write lock held.
func (s *Store) deletePremisesOf(sourceID string) []string {
	links := []string{}
	for id, p := range s.premises {
		if p.Source.ID == sourceID {
			links = append(links, p.Link)
			delete(s.premises, id)
			delete(s.links, p.Link)
		}
	}
	return links
}

type NicheStore struct{ s *Store }

func (st *NicheStore) List(_ context.Context) ([]domain.Niche, error) {
	st.s.mu.RLock()
	defer st.s.mu.RUnlock()

	niches := make([]domain.Niche, 0, len(st.s.niches))
	for _, n := range st.s.niches {
		niches = append(niches, cloneNiche(n))
	}
	slices.SortFunc(niches, func(a, b domain.Niche) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return niches, nil
}

func (st *NicheStore) Get(_ context.Context, id string) (*domain.Niche, error) {
	st.s.mu.RLock()
	defer st.s.mu.RUnlock()

	n, ok := st.s.niches[id]
	if !ok {
		return nil, fmt.Errorf("%w: niche %s", domain.ErrNotFound, id)
	}
	n = cloneNiche(n)
	return &n, nil
}

func (st *NicheStore) Create(_ context.Context, niche *domain.Niche) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	if st.s.nameTaken(niche.Name, "") {
		return fmt.Errorf("%w: niche %q already exists", domain.ErrConflict, niche.Name)
	}
	st.s.niches[niche.ID] = cloneNiche(*niche)
	return nil
}

func (st *NicheStore) Update(_ context.Context, niche *domain.Niche) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	if _, ok := st.s.niches[niche.ID]; !ok {
		return fmt.Errorf("%w: niche %s", domain.ErrNotFound, niche.ID)
	}
	if st.s.nameTaken(niche.Name, niche.ID) {
		return fmt.Errorf("%w: niche %q already exists", domain.ErrConflict, niche.Name)
	}
	st.s.niches[niche.ID] = cloneNiche(*niche)
	return nil
}

func (st *NicheStore) Delete(_ context.Context, id string) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	if _, ok := st.s.niches[id]; !ok {
		return fmt.Errorf("%w: niche %s", domain.ErrNotFound, id)
	}
	delete(st.s.niches, id)
	return nil
}

func (s *Store) nameTaken(name, exceptID string) bool {
	for id, n := range s.niches {
		if id != exceptID && n.Name == name {
			return true
		}
	}
	return false
}

func cloneNiche(n domain.Niche) domain.Niche {
	n.SubNiches = append([]string{}, n.SubNiches...)
	return n
}

// TransactionManager runs fn directly; each store call is atomic on its own.
type TransactionManager struct{}

func (TransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
