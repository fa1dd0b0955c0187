package recommended

import (
	"context"
	"strings"

	"github.com/psrec/psrec/internal/problem"
	"github.com/psrec/psrec/internal/recommender"
	"go.uber.org/zap"
)

// SolvedFetcher looks up the problems a handle solved outside the model.
type SolvedFetcher interface {
	SolvedLevels(ctx context.Context, handle string, maxPages int) (map[int]float64, error)
}

type Options struct {
	Limit       int
	SolvedPages int
}

// Service picks the recommendation strategy for a visitor and attaches
// problem titles.
type Service struct {
	engine   *recommender.Engine
	problems problem.Repository
	solved   SolvedFetcher
	log      *zap.Logger
	opts     Options
}

func NewService(engine *recommender.Engine, problems problem.Repository, solved SolvedFetcher, log *zap.Logger, opts Options) *Service {
	if opts.Limit <= 0 {
		opts.Limit = 10
	}
	return &Service{engine: engine, problems: problems, solved: solved, log: log, opts: opts}
}

// ForHandle recommends for a handle; an empty handle means anonymous.
func (s *Service) ForHandle(ctx context.Context, handle string) ([]Item, error) {
	var (
		recs []recommender.Recommendation
		err  error
	)
	switch {
	case handle == "":
		recs, err = s.engine.Popular(nil, s.opts.Limit)
	case s.engine.Knows(handle):
		recs, err = s.engine.ForUser(handle, s.opts.Limit)
		if err == nil && len(recs) == 0 {
			solved, _ := s.engine.Solved(handle)
			recs, err = s.engine.Popular(solved, s.opts.Limit)
		}
	default:
		solved := s.fetchSolved(ctx, handle)
		if len(solved) == 0 {
			recs, err = s.engine.Popular(nil, s.opts.Limit)
		} else {
			recs, err = s.engine.ForNewUser(solved, s.opts.Limit)
		}
	}
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, recs), nil
}

// ForHandleByTag restricts recommendations to tag. An empty tag or
// NoChoice behaves like ForHandle.
func (s *Service) ForHandleByTag(ctx context.Context, handle, tag string) ([]Item, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" || tag == NoChoice {
		return s.ForHandle(ctx, handle)
	}

	var (
		recs []recommender.Recommendation
		err  error
	)
	switch {
	case handle != "" && s.engine.Knows(handle):
		recs, err = s.engine.ForUserByTag(handle, tag, s.opts.Limit)
	default:
		var solved map[int]float64
		if handle != "" {
			solved = s.fetchSolved(ctx, handle)
		}
		if len(solved) == 0 {
			recs, err = s.engine.PopularByTag(nil, tag, s.opts.Limit)
		} else {
			recs, err = s.engine.ForNewUserByTag(solved, tag, s.opts.Limit)
		}
	}
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, recs), nil
}

// Ready reports whether the engine has a trained model.
func (s *Service) Ready() bool {
	return s.engine.Trained()
}

func (s *Service) Stats(handle string) (recommender.Stats, bool) {
	return s.engine.UserStats(handle)
}

// Retrain reloads every solve from storage and rebuilds the model.
func (s *Service) Retrain(ctx context.Context) (users, solves int, err error) {
	rows, err := s.problems.ListSolves(ctx)
	if err != nil {
		return 0, 0, err
	}
	tags, err := s.problems.Tags(ctx)
	if err != nil {
		return 0, 0, err
	}

	ratings := make([]recommender.Rating, 0, len(rows))
	for _, r := range rows {
		ratings = append(ratings, recommender.Rating{User: r.Handle, Item: r.ProblemID, Level: float64(r.Level)})
	}
	if err := s.engine.Train(ratings, tags); err != nil {
		return 0, 0, err
	}

	users, solves = s.engine.Size()
	s.log.Info("recommender trained", zap.Int("users", users), zap.Int("solves", solves))
	return users, solves, nil
}

func (s *Service) fetchSolved(ctx context.Context, handle string) map[int]float64 {
	if s.solved == nil {
		return nil
	}
	solved, err := s.solved.SolvedLevels(ctx, handle, s.opts.SolvedPages)
	if err != nil {
		s.log.Warn("fetching solved problems failed", zap.String("handle", handle), zap.Error(err))
		return nil
	}
	return solved
}

func (s *Service) enrich(ctx context.Context, recs []recommender.Recommendation) []Item {
	ids := make([]int, 0, len(recs))
	for _, r := range recs {
		ids = append(ids, r.ProblemID)
	}

	problems, err := s.problems.GetByIDs(ctx, ids)
	if err != nil {
		s.log.Warn("loading problem titles failed", zap.Error(err))
	}

	items := make([]Item, 0, len(recs))
	for _, r := range recs {
		items = append(items, Item{ProblemID: r.ProblemID, TitleKo: problems[r.ProblemID].TitleKo, Score: r.Score})
	}
	return items
}
