package tag

import (
	"sort"
	"sync"
)

// Repository provides access to the tag catalogue.
type Repository interface {
	List(limit int) ([]Tag, error)
	Upsert(tags []Tag) error
}

type InMemoryRepository struct {
	mu   sync.RWMutex
	tags map[string]Tag
}

func NewInMemoryRepository(seed []Tag) *InMemoryRepository {
	repo := &InMemoryRepository{tags: make(map[string]Tag, len(seed))}
	for _, t := range seed {
		repo.tags[t.EnShort] = t
	}
	return repo
}

// List returns tags ordered by ord descending, then en_short.
func (r *InMemoryRepository) List(limit int) ([]Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Tag, 0, len(r.tags))
	for _, t := range r.tags {
		out = append(out, t)
	}
	sortTags(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *InMemoryRepository) Upsert(tags []Tag) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range tags {
		if t.EnShort == "" {
			continue
		}
		r.tags[t.EnShort] = t
	}
	return nil
}

func sortTags(tags []Tag) {
	sort.SliceStable(tags, func(i, j int) bool {
		if tags[i].Ord != tags[j].Ord {
			return tags[i].Ord > tags[j].Ord
		}
		return tags[i].EnShort < tags[j].EnShort
	})
}
