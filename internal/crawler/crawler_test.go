package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/psrec/psrec/internal/problem"
	"github.com/psrec/psrec/internal/solvedac"
	"github.com/psrec/psrec/internal/tag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func item(id, level int, shorts ...string) string {
	tags := make([]string, 0, len(shorts))
	for _, s := range shorts {
		tags = append(tags, fmt.Sprintf(`{"key":%q,"displayNames":[{"language":"ko","name":"한국어 %s","short":"k"},{"language":"en","name":"%s name","short":%q}]}`, s, s, s, s))
	}
	return fmt.Sprintf(`{"problemId":%d,"titleKo":"문제 %d","level":%d,"tags":[%s]}`, id, id, level, strings.Join(tags, ","))
}

func pageOf(items ...string) string {
	return fmt.Sprintf(`{"count":%d,"items":[%s]}`, len(items), strings.Join(items, ","))
}

func fakeSolvedAC(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case r.URL.Path == "/ranking/class":
			fmt.Fprint(w, `{"count":3,"items":[{"handle":"alpha"},{"handle":"beta"},{"handle":"broken"}]}`)
		case r.URL.Path == "/search/problem" && q.Get("query") == "":
			switch q.Get("page") {
			case "1":
				fmt.Fprint(w, pageOf(item(1000, 1, "implementation"), item(1001, 2, "math")))
			case "2":
				fmt.Fprint(w, pageOf(item(1005, 12, "dp", "topological sorting")))
			default:
				fmt.Fprint(w, pageOf())
			}
		case q.Get("query") == "solved_by:alpha":
			if q.Get("page") == "1" {
				fmt.Fprint(w, pageOf(item(1000, 1, "implementation"), item(1005, 12, "dp")))
				return
			}
			fmt.Fprint(w, pageOf())
		case q.Get("query") == "solved_by:beta":
			if q.Get("page") == "1" {
				fmt.Fprint(w, pageOf(item(1001, 2, "math")))
				return
			}
			fmt.Fprint(w, pageOf())
		case q.Get("query") == "solved_by:broken":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			t.Errorf("unexpected request %s", r.URL.String())
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func newCrawler(srvURL string) (*Crawler, *problem.InMemoryRepository, *tag.InMemoryRepository) {
	problems := problem.NewInMemoryRepository(nil, nil)
	tags := tag.NewInMemoryRepository(nil)
	opts := Options{Concurrency: 2, Pages: 1, PerPage: 3, MaxPage: 5, MaxUserPage: 2, Seed: 1}
	log := zap.NewNop()
	c := New(solvedac.New(srvURL), problems, tags, log, &LogReporter{log: log}, opts)
	return c, problems, tags
}

func TestCrawlProblems(t *testing.T) {
	srv := fakeSolvedAC(t)
	defer srv.Close()

	c, problems, tags := newCrawler(srv.URL)
	res, err := c.CrawlProblems(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, res.Problems)
	assert.Equal(t, 4, res.Tags)

	got, _ := problems.GetByIDs(context.Background(), []int{1005})
	require.Contains(t, got, 1005)
	assert.Equal(t, []string{"dp", "topological_sorting"}, got[1005].Tags)
	assert.Equal(t, 12, got[1005].Level)

	list, _ := tags.List(0)
	shorts := make([]string, 0, len(list))
	for _, tg := range list {
		shorts = append(shorts, tg.EnShort)
	}
	assert.ElementsMatch(t, []string{"implementation", "math", "dp", "topological_sorting"}, shorts)
}

func TestCrawlUsersSkipsFailingHandle(t *testing.T) {
	srv := fakeSolvedAC(t)
	defer srv.Close()

	c, problems, _ := newCrawler(srv.URL)
	res, err := c.CrawlUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, res.Handles)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 3, res.Solves)

	solves, _ := problems.ListSolves(context.Background())
	byHandle := map[string][]int{}
	for _, s := range solves {
		byHandle[s.Handle] = append(byHandle[s.Handle], s.ProblemID)
	}
	assert.ElementsMatch(t, []int{1000, 1005}, byHandle["alpha"])
	assert.ElementsMatch(t, []int{1001}, byHandle["beta"])
	assert.NotContains(t, byHandle, "broken")
}

func TestCrawlUsersCancelled(t *testing.T) {
	srv := fakeSolvedAC(t)
	defer srv.Close()

	c, _, _ := newCrawler(srv.URL)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.CrawlUsers(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCrawlHandleStopsBeforeMaxPage(t *testing.T) {
	var (
		mu    sync.Mutex
		pages []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		mu.Lock()
		pages = append(pages, page)
		mu.Unlock()
		fmt.Fprint(w, pageOf(item(2000+len(page), 3, "math")))
	}))
	defer srv.Close()

	log := zap.NewNop()
	opts := Options{Concurrency: 1, Pages: 1, PerPage: 1, MaxPage: 3, MaxUserPage: 2, Seed: 1}
	c := New(solvedac.New(srv.URL), problem.NewInMemoryRepository(nil, nil), tag.NewInMemoryRepository(nil), log, &LogReporter{log: log}, opts)

	_, _, err := c.crawlHandle(context.Background(), "endless")
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"1", "2"}, pages)
}
