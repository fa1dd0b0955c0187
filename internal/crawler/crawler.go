package crawler

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/psrec/psrec/internal/problem"
	"github.com/psrec/psrec/internal/solvedac"
	"github.com/psrec/psrec/internal/tag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// TagStore receives the tags discovered while crawling.
type TagStore interface {
	Upsert(tags []tag.Tag) error
}

// Options tunes sampling and concurrency.
type Options struct {
	Concurrency int
	// Pages is how many random ranking pages are sampled for handles.
	Pages int
	// PerPage is how many handles are sampled from each ranking page.
	PerPage int
	// MaxPage is the exclusive upper bound on solved-problem pages per
	// handle: pages 1 to MaxPage-1 are fetched.
	MaxPage int
	// MaxUserPage bounds the ranking pages sampled from.
	MaxUserPage int
	Seed        int64
}

func DefaultOptions() Options {
	return Options{
		Concurrency: 4,
		Pages:       5,
		PerPage:     5,
		MaxPage:     249,
		MaxUserPage: 4500,
		Seed:        time.Now().UnixNano(),
	}
}

// Result summarises one crawl run.
type Result struct {
	Handles  int
	Failed   int
	Problems int
	Solves   int
	Tags     int
}

type Crawler struct {
	api      *solvedac.Client
	problems problem.Repository
	tags     TagStore
	log      *zap.Logger
	reporter Reporter
	opts     Options
	rng      *rand.Rand

	mu        sync.Mutex
	tagCounts map[string]tag.Tag
}

func New(api *solvedac.Client, problems problem.Repository, tags TagStore, log *zap.Logger, reporter Reporter, opts Options) *Crawler {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.MaxUserPage <= 1 {
		opts.MaxUserPage = 2
	}
	return &Crawler{
		api:       api,
		problems:  problems,
		tags:      tags,
		log:       log,
		reporter:  reporter,
		opts:      opts,
		rng:       rand.New(rand.NewSource(opts.Seed)),
		tagCounts: make(map[string]tag.Tag),
	}
}

// CrawlProblems pages through the whole problem set until an empty page
// and stores every problem with its tags.
func (c *Crawler) CrawlProblems(ctx context.Context) (Result, error) {
	var res Result
	c.reporter.Start(-1, "problems")
	defer c.reporter.Finish()

	for pageNo := 1; ; pageNo++ {
		items, err := c.api.SearchProblems(ctx, "", pageNo)
		if err != nil {
			return res, err
		}
		if len(items) == 0 {
			break
		}

		batch := make([]problem.Problem, 0, len(items))
		for _, it := range items {
			batch = append(batch, c.convert(it))
		}
		if err := c.problems.UpsertProblems(ctx, batch); err != nil {
			return res, err
		}
		res.Problems += len(batch)
		c.reporter.Update(pageNo, "page")
	}

	n, err := c.flushTags()
	res.Tags = n
	return res, err
}

// CrawlUsers samples handles from the class ranking and stores each
// handle's solved problems. A failing handle is logged and skipped.
func (c *Crawler) CrawlUsers(ctx context.Context) (Result, error) {
	var res Result

	handles, err := c.sampleHandles(ctx)
	if err != nil {
		return res, err
	}
	res.Handles = len(handles)

	c.reporter.Start(len(handles), "handles")
	defer c.reporter.Finish()

	var (
		done     atomic.Int64
		failed   atomic.Int64
		problems atomic.Int64
		solves   atomic.Int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Concurrency)
	for _, h := range handles {
		h := h // per-iteration copy; go directive is 1.21 (pre-1.22 loopvar semantics)
		g.Go(func() error {
			np, ns, err := c.crawlHandle(gctx, h)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				failed.Add(1)
				c.log.Warn("skipping handle", zap.String("handle", h), zap.Error(err))
			}
			problems.Add(int64(np))
			solves.Add(int64(ns))
			c.reporter.Update(int(done.Add(1)), h)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}

	res.Failed = int(failed.Load())
	res.Problems = int(problems.Load())
	res.Solves = int(solves.Load())
	n, err := c.flushTags()
	res.Tags = n
	return res, err
}

func (c *Crawler) sampleHandles(ctx context.Context) ([]string, error) {
	pages := c.rng.Perm(c.opts.MaxUserPage - 1)
	if c.opts.Pages < len(pages) {
		pages = pages[:c.opts.Pages]
	}

	seen := make(map[string]struct{})
	handles := make([]string, 0, len(pages)*c.opts.PerPage)
	for _, p := range pages {
		users, err := c.api.ClassRanking(ctx, p+1)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			c.log.Warn("ranking page failed", zap.Int("page", p+1), zap.Error(err))
			continue
		}
		k := c.opts.PerPage
		if k > len(users) {
			k = len(users)
		}
		for _, idx := range c.rng.Perm(len(users))[:k] {
			h := users[idx].Handle
			if _, dup := seen[h]; dup || h == "" {
				continue
			}
			seen[h] = struct{}{}
			handles = append(handles, h)
		}
	}
	return handles, nil
}

// crawlHandle fetches solved pages until an empty page or MaxPage. A rate
// limit stops the handle; what was fetched so far is still stored.
func (c *Crawler) crawlHandle(ctx context.Context, handle string) (int, int, error) {
	var (
		probs   []problem.Problem
		solves  []problem.Solve
		pageErr error
	)
	for pageNo := 1; c.opts.MaxPage <= 0 || pageNo < c.opts.MaxPage; pageNo++ {
		items, err := c.api.SolvedBy(ctx, handle, pageNo)
		if err != nil {
			pageErr = err
			break
		}
		if len(items) == 0 {
			break
		}
		for _, it := range items {
			p := c.convert(it)
			probs = append(probs, p)
			solves = append(solves, problem.Solve{Handle: handle, ProblemID: p.ID, Level: p.Level})
		}
	}

	if len(probs) > 0 {
		if err := c.problems.UpsertProblems(ctx, probs); err != nil {
			return 0, 0, err
		}
		if err := c.problems.AddSolves(ctx, solves); err != nil {
			return len(probs), 0, err
		}
	}
	return len(probs), len(solves), pageErr
}

func (c *Crawler) convert(it solvedac.Problem) problem.Problem {
	p := problem.Problem{
		ID:      it.ProblemID,
		TitleKo: it.TitleKo,
		Level:   it.Level,
		Tags:    it.TagNames(),
	}

	c.mu.Lock()
	for _, t := range it.Tags {
		short := t.ShortName()
		if short == "" {
			continue
		}
		entry, ok := c.tagCounts[short]
		if !ok {
			entry = tag.Tag{EnShort: short, En: t.EnName(), Ko: t.KoName()}
		}
		entry.Ord++
		c.tagCounts[short] = entry
	}
	c.mu.Unlock()
	return p
}

func (c *Crawler) flushTags() (int, error) {
	c.mu.Lock()
	tags := make([]tag.Tag, 0, len(c.tagCounts))
	for _, t := range c.tagCounts {
		tags = append(tags, t)
	}
	c.mu.Unlock()

	if len(tags) == 0 || c.tags == nil {
		return 0, nil
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].EnShort < tags[j].EnShort })
	return len(tags), c.tags.Upsert(tags)
}
