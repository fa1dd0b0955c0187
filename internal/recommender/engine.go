package recommender

import (
	"errors"
	"math"
	"sort"
	"sync"
)

var (
	ErrNotTrained = errors.New("recommender: model not trained")
	ErrNoData     = errors.New("recommender: no solve data")
)

const defaultSimilarUsers = 10

// Rating is one solve fed to the engine: user solved item at level.
type Rating struct {
	User  string
	Item  int
	Level float64
}

// Recommendation is a scored problem id.
type Recommendation struct {
	ProblemID int     `json:"problemId"`
	Score     float64 `json:"score"`
}

// Stats summarises one user's solved levels.
type Stats struct {
	TotalSolved       int         `json:"totalSolved"`
	AvgLevel          float64     `json:"avgLevel"`
	MinLevel          float64     `json:"minLevel"`
	MaxLevel          float64     `json:"maxLevel"`
	LevelDistribution map[int]int `json:"levelDistribution"`
}

type vector map[int]float64

type model struct {
	users      []string
	matrix     map[string]vector
	norms      map[string]float64
	similarity map[string]map[string]float64
	tags       map[int][]string
	solves     int
}

// Engine is a user-based collaborative filter over solve levels. It is
// safe for concurrent use; Train swaps in a new model atomically.
type Engine struct {
	mu           sync.RWMutex
	model        *model
	similarUsers int
}

type Option func(*Engine)

// WithSimilarUsers sets how many neighbours contribute to a score.
func WithSimilarUsers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.similarUsers = n
		}
	}
}

func New(opts ...Option) *Engine {
	e := &Engine{similarUsers: defaultSimilarUsers}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Train builds the user-item matrix and pairwise similarities. Duplicate
// (user, item) ratings keep the first level seen. tags maps problem ids to
// their tag names and may be nil.
func (e *Engine) Train(ratings []Rating, tags map[int][]string) error {
	if len(ratings) == 0 {
		return ErrNoData
	}

	m := &model{
		matrix: make(map[string]vector),
		norms:  make(map[string]float64),
		tags:   make(map[int][]string, len(tags)),
	}
	for _, r := range ratings {
		v, ok := m.matrix[r.User]
		if !ok {
			v = make(vector)
			m.matrix[r.User] = v
			m.users = append(m.users, r.User)
		}
		if _, dup := v[r.Item]; dup {
			continue
		}
		v[r.Item] = r.Level
		m.solves++
	}
	sort.Strings(m.users)

	for _, u := range m.users {
		m.norms[u] = norm(m.matrix[u])
	}

	m.similarity = make(map[string]map[string]float64, len(m.users))
	for _, u := range m.users {
		m.similarity[u] = make(map[string]float64, len(m.users)-1)
	}
	for i, u1 := range m.users {
		for _, u2 := range m.users[i+1:] {
			s := cosine(m.matrix[u1], m.matrix[u2], m.norms[u1], m.norms[u2])
			m.similarity[u1][u2] = s
			m.similarity[u2][u1] = s
		}
	}

	for id, names := range tags {
		normalized := make([]string, 0, len(names))
		for _, n := range names {
			normalized = append(normalized, NormalizeTag(n))
		}
		m.tags[id] = normalized
	}

	e.mu.Lock()
	e.model = m
	e.mu.Unlock()
	return nil
}

func (e *Engine) current() (*model, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.model == nil {
		return nil, ErrNotTrained
	}
	return e.model, nil
}

// Trained reports whether a model is loaded.
func (e *Engine) Trained() bool {
	_, err := e.current()
	return err == nil
}

// Size returns the number of users and distinct solves in the model.
func (e *Engine) Size() (users, solves int) {
	m, err := e.current()
	if err != nil {
		return 0, 0
	}
	return len(m.users), m.solves
}

// Knows reports whether handle is part of the trained model.
func (e *Engine) Knows(handle string) bool {
	m, err := e.current()
	if err != nil {
		return false
	}
	_, ok := m.matrix[handle]
	return ok
}

// Solved returns a copy of a known user's problem levels.
func (e *Engine) Solved(handle string) (map[int]float64, bool) {
	m, err := e.current()
	if err != nil {
		return nil, false
	}
	v, ok := m.matrix[handle]
	if !ok {
		return nil, false
	}
	out := make(map[int]float64, len(v))
	for k, x := range v {
		out[k] = x
	}
	return out, true
}

// similarity returns the trained cosine similarity of two known users.
func (e *Engine) similarity(u1, u2 string) (float64, error) {
	m, err := e.current()
	if err != nil {
		return 0, err
	}
	return m.similarity[u1][u2], nil
}

// ForUser recommends up to n problems for a user of the trained model.
// An unknown handle yields an empty result.
func (e *Engine) ForUser(handle string, n int) ([]Recommendation, error) {
	m, err := e.current()
	if err != nil {
		return nil, err
	}
	solved, ok := m.matrix[handle]
	if !ok {
		return []Recommendation{}, nil
	}

	scores := m.score(topNeighbours(m.neighboursOf(handle), e.similarUsers), solved, nil)
	return rank(scores, n), nil
}

// ForUserByTag is ForUser restricted to problems matching tag. When no
// neighbour contributes a matching problem it falls back to PopularByTag.
func (e *Engine) ForUserByTag(handle, tag string, n int) ([]Recommendation, error) {
	m, err := e.current()
	if err != nil {
		return nil, err
	}
	solved, ok := m.matrix[handle]
	if !ok {
		return []Recommendation{}, nil
	}

	filter := m.tagFilter(tag)
	scores := m.score(topNeighbours(m.neighboursOf(handle), e.similarUsers), solved, filter)
	if len(scores) == 0 {
		return m.popular(solved, filter, popularMinCount(tag), n), nil
	}
	return rank(scores, n), nil
}

// ForNewUser recommends for a user outside the model given the levels of
// the problems they solved. When nothing similar is found it falls back
// to Popular.
func (e *Engine) ForNewUser(solved map[int]float64, n int) ([]Recommendation, error) {
	return e.forNewUser(solved, "", n)
}

// ForNewUserByTag is ForNewUser restricted to problems matching tag.
func (e *Engine) ForNewUserByTag(solved map[int]float64, tag string, n int) ([]Recommendation, error) {
	return e.forNewUser(solved, tag, n)
}

func (e *Engine) forNewUser(solved map[int]float64, tag string, n int) ([]Recommendation, error) {
	m, err := e.current()
	if err != nil {
		return nil, err
	}
	if len(solved) == 0 {
		return []Recommendation{}, nil
	}

	v := vector(solved)
	vNorm := norm(v)
	neighbours := make([]neighbour, 0)
	for _, u := range m.users {
		if s := cosine(v, m.matrix[u], vNorm, m.norms[u]); s > 0 {
			neighbours = append(neighbours, neighbour{u, s})
		}
	}

	var filter func(int) bool
	if tag != "" {
		filter = m.tagFilter(tag)
	}
	scores := m.score(topNeighbours(neighbours, e.similarUsers), v, filter)
	if len(scores) == 0 {
		return m.popular(v, filter, popularMinCount(tag), n), nil
	}
	return rank(scores, n), nil
}

// Popular ranks problems not in solved by solver count times average level,
// keeping problems with at least two solvers.
func (e *Engine) Popular(solved map[int]float64, n int) ([]Recommendation, error) {
	m, err := e.current()
	if err != nil {
		return nil, err
	}
	return m.popular(solved, nil, 2, n), nil
}

// PopularByTag is Popular restricted to tag, keeping problems with at
// least one solver.
func (e *Engine) PopularByTag(solved map[int]float64, tag string, n int) ([]Recommendation, error) {
	m, err := e.current()
	if err != nil {
		return nil, err
	}
	return m.popular(solved, m.tagFilter(tag), 1, n), nil
}

// UserStats summarises a known user's solves.
func (e *Engine) UserStats(handle string) (Stats, bool) {
	m, err := e.current()
	if err != nil {
		return Stats{}, false
	}
	v, ok := m.matrix[handle]
	if !ok {
		return Stats{}, false
	}

	stats := Stats{LevelDistribution: make(map[int]int)}
	if len(v) == 0 {
		return stats, true
	}
	stats.MinLevel = math.Inf(1)
	stats.MaxLevel = math.Inf(-1)
	sum := 0.0
	for _, level := range v {
		sum += level
		stats.MinLevel = math.Min(stats.MinLevel, level)
		stats.MaxLevel = math.Max(stats.MaxLevel, level)
		stats.LevelDistribution[int(level)]++
	}
	stats.TotalSolved = len(v)
	stats.AvgLevel = sum / float64(len(v))
	return stats, true
}

func popularMinCount(tag string) int {
	if tag != "" {
		return 1
	}
	return 2
}

type neighbour struct {
	user string
	sim  float64
}

// neighboursOf lists the known users positively similar to handle. The
// handle itself is never among them.
func (m *model) neighboursOf(handle string) []neighbour {
	ns := make([]neighbour, 0, len(m.similarity[handle]))
	for u, s := range m.similarity[handle] {
		if s > 0 {
			ns = append(ns, neighbour{u, s})
		}
	}
	return ns
}

// topNeighbours sorts by similarity desc, then handle, and keeps k.
func topNeighbours(ns []neighbour, k int) []neighbour {
	sort.Slice(ns, func(i, j int) bool {
		if ns[i].sim != ns[j].sim {
			return ns[i].sim > ns[j].sim
		}
		return ns[i].user < ns[j].user
	})
	if len(ns) > k {
		ns = ns[:k]
	}
	return ns
}

func (m *model) score(ns []neighbour, solved vector, filter func(int) bool) map[int]float64 {
	scores := make(map[int]float64)
	for _, nb := range ns {
		for item, level := range m.matrix[nb.user] {
			if _, done := solved[item]; done {
				continue
			}
			if filter != nil && !filter(item) {
				continue
			}
			scores[item] += nb.sim * level
		}
	}
	return scores
}

func (m *model) popular(solved vector, filter func(int) bool, minCount, n int) []Recommendation {
	counts := make(map[int]int)
	sums := make(map[int]float64)
	for _, u := range m.users {
		for item, level := range m.matrix[u] {
			if _, done := solved[item]; done {
				continue
			}
			if filter != nil && !filter(item) {
				continue
			}
			counts[item]++
			sums[item] += level
		}
	}

	scores := make(map[int]float64, len(counts))
	for item, c := range counts {
		if c < minCount {
			continue
		}
		avg := sums[item] / float64(c)
		scores[item] = float64(c) * avg
	}
	return rank(scores, n)
}

// rank orders by score desc with ties on ascending problem id.
func rank(scores map[int]float64, n int) []Recommendation {
	out := make([]Recommendation, 0, len(scores))
	for id, s := range scores {
		out = append(out, Recommendation{ProblemID: id, Score: s})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ProblemID < out[j].ProblemID
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func norm(v vector) float64 {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// cosine takes the dot product over common items and the norms over each
// full vector.
func cosine(a, b vector, normA, normB float64) float64 {
	if normA == 0 || normB == 0 {
		return 0
	}
	if len(b) < len(a) {
		a, b = b, a
	}
	dot := 0.0
	common := false
	for item, x := range a {
		if y, ok := b[item]; ok {
			dot += x * y
			common = true
		}
	}
	if !common {
		return 0
	}
	return dot / (normA * normB)
}
