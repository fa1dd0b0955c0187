package problem

import (
	"context"
	"sort"
	"sync"
)

// Repository stores the problem catalogue and who solved what.
type Repository interface {
	GetByIDs(ctx context.Context, ids []int) (map[int]Problem, error)
	Tags(ctx context.Context) (map[int][]string, error)
	ListSolves(ctx context.Context) ([]Solve, error)
	UpsertProblems(ctx context.Context, problems []Problem) error
	AddSolves(ctx context.Context, solves []Solve) error
}

type solveKey struct {
	handle string
	id     int
}

type InMemoryRepository struct {
	mu       sync.RWMutex
	problems map[int]Problem
	solves   []Solve
	seen     map[solveKey]struct{}
}

func NewInMemoryRepository(problems []Problem, solves []Solve) *InMemoryRepository {
	repo := &InMemoryRepository{
		problems: make(map[int]Problem, len(problems)),
		seen:     make(map[solveKey]struct{}, len(solves)),
	}
	for _, p := range problems {
		repo.problems[p.ID] = p
	}
	repo.addSolves(solves)
	return repo
}

func (r *InMemoryRepository) GetByIDs(_ context.Context, ids []int) (map[int]Problem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[int]Problem, len(ids))
	for _, id := range ids {
		if p, ok := r.problems[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (r *InMemoryRepository) Tags(_ context.Context) (map[int][]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[int][]string, len(r.problems))
	for id, p := range r.problems {
		if len(p.Tags) > 0 {
			out[id] = append([]string(nil), p.Tags...)
		}
	}
	return out, nil
}

// ListSolves returns solves in insertion order.
func (r *InMemoryRepository) ListSolves(_ context.Context) ([]Solve, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Solve, len(r.solves))
	copy(out, r.solves)
	return out, nil
}

func (r *InMemoryRepository) UpsertProblems(_ context.Context, problems []Problem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range problems {
		r.problems[p.ID] = p
	}
	return nil
}

// AddSolves appends solves, ignoring pairs already recorded.
func (r *InMemoryRepository) AddSolves(_ context.Context, solves []Solve) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.addSolves(solves)
	return nil
}

func (r *InMemoryRepository) addSolves(solves []Solve) {
	for _, s := range solves {
		k := solveKey{s.Handle, s.ProblemID}
		if _, dup := r.seen[k]; dup {
			continue
		}
		r.seen[k] = struct{}{}
		r.solves = append(r.solves, s)
	}
}

// problemIDs returns every stored problem id in ascending order.
func (r *InMemoryRepository) problemIDs() []int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]int, 0, len(r.problems))
	for id := range r.problems {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
