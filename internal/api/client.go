package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	PathLogin               = "/getLogin"
	PathTagList             = "/getTagList"
	PathRecommendation      = "/getRecommendation"
	PathRecommendationByTag = "/getRecommendationByTag"
	PathRunScript           = "/run_python"
)

// Client calls the recommendation site's JSON endpoints.
type Client struct {
	baseURL string
	http    *http.Client
	header  http.Header
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithHeader adds a header to every request, e.g. a forwarded Cookie.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		if value != "" {
			c.header.Add(key, value)
		}
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		header:  make(http.Header),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Login(ctx context.Context) (LoginStatus, error) {
	var env envelope[[]json.RawMessage]
	if err := c.do(ctx, http.MethodGet, PathLogin, nil, &env); err != nil {
		return LoginStatus{}, err
	}
	return decodeLogin(env.Items)
}

func (c *Client) Tags(ctx context.Context) ([]Tag, error) {
	var env envelope[[]Tag]
	if err := c.do(ctx, http.MethodGet, PathTagList, nil, &env); err != nil {
		return nil, err
	}
	return env.Items, nil
}

func (c *Client) Recommendations(ctx context.Context) ([]Recommendation, error) {
	var env envelope[[]Recommendation]
	if err := c.do(ctx, http.MethodGet, PathRecommendation, nil, &env); err != nil {
		return nil, err
	}
	return env.Items, nil
}

// RecommendationsByTag posts {"tag": tag} as JSON.
func (c *Client) RecommendationsByTag(ctx context.Context, tag string) ([]Recommendation, error) {
	var env envelope[[]Recommendation]
	if err := c.do(ctx, http.MethodPost, PathRecommendationByTag, map[string]string{"tag": tag}, &env); err != nil {
		return nil, err
	}
	return env.Items, nil
}

func (c *Client) RunScript(ctx context.Context) (ScriptOutput, error) {
	var out ScriptOutput
	if err := c.do(ctx, http.MethodGet, PathRunScript, nil, &out); err != nil {
		return ScriptOutput{}, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api %s: encode: %w", path, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("api %s: %w", path, err)
	}
	for k, vs := range c.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("api %s: %w", path, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return &StatusError{Path: path, Code: res.StatusCode}
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("api %s: decode: %w", path, err)
	}
	return nil
}
