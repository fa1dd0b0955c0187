package solvedac

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is the public solved.ac API v3 root.
const DefaultBaseURL = "https://solved.ac/api/v3"

var ErrRateLimited = errors.New("solvedac: rate limited")

// Client talks to the solved.ac API. Requests are spaced by an optional
// Throttle shared between goroutines.
type Client struct {
	baseURL  string
	http     *http.Client
	throttle *Throttle
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithThrottle(t *Throttle) Option {
	return func(c *Client) { c.throttle = t }
}

func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchProblems returns one page of /search/problem for query. An empty
// query lists every problem.
func (c *Client) SearchProblems(ctx context.Context, query string, pageNo int) ([]Problem, error) {
	var out page[Problem]
	params := url.Values{"query": {query}, "page": {strconv.Itoa(pageNo)}}
	if err := c.get(ctx, "/search/problem", params, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// SolvedBy returns one page of problems solved by handle.
func (c *Client) SolvedBy(ctx context.Context, handle string, pageNo int) ([]Problem, error) {
	return c.SearchProblems(ctx, "solved_by:"+handle, pageNo)
}

// ClassRanking returns one page of /ranking/class.
func (c *Client) ClassRanking(ctx context.Context, pageNo int) ([]User, error) {
	var out page[User]
	params := url.Values{"query": {""}, "page": {strconv.Itoa(pageNo)}}
	if err := c.get(ctx, "/ranking/class", params, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// SolvedLevels pages through a handle's solved problems until an empty
// page or maxPages, returning problem id to level.
func (c *Client) SolvedLevels(ctx context.Context, handle string, maxPages int) (map[int]float64, error) {
	levels := make(map[int]float64)
	for p := 1; maxPages <= 0 || p <= maxPages; p++ {
		items, err := c.SolvedBy(ctx, handle, p)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			break
		}
		for _, it := range items {
			if _, ok := levels[it.ProblemID]; !ok {
				levels[it.ProblemID] = float64(it.Level)
			}
		}
	}
	return levels, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.throttle.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("solvedac %s: %w", path, err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case res.StatusCode < 200 || res.StatusCode > 299:
		return fmt.Errorf("solvedac %s: unexpected status %d", path, res.StatusCode)
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("solvedac %s: decode: %w", path, err)
	}
	return nil
}
