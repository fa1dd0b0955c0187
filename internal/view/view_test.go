package view

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/psrec/psrec/internal/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

const page = `<!DOCTYPE html><html><body>
<nav><a id="profile_nav">profile</a><a id="login_nav">login</a><span id="handle">guest</span></nav>
<p id="login_error"></p>
<div id="recommendations"></div><p id="rec_error"></p>
<select id="tag"></select><div id="results"><div class="problem">old</div></div><p id="tag_error"></p>
<ul id="ulist"></ul><p id="run_error"></p>
</body></html>`

func parsePage(t *testing.T) *html.Node {
	t.Helper()
	doc, err := Parse(strings.NewReader(page))
	require.NoError(t, err)
	return doc
}

type endpoint struct {
	status int
	body   string
}

type recorded struct {
	method      string
	path        string
	contentType string
	body        string
}

// mockAPI serves fixed bodies per path and records every request.
func mockAPI(t *testing.T, routes map[string]endpoint) (*api.Client, func() []recorded) {
	t.Helper()
	var mu sync.Mutex
	var reqs []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		reqs = append(reqs, recorded{r.Method, r.URL.Path, r.Header.Get("Content-Type"), string(b)})
		mu.Unlock()

		ep, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		if ep.status != 0 {
			w.WriteHeader(ep.status)
		}
		io.WriteString(w, ep.body)
	}))
	t.Cleanup(srv.Close)
	return api.New(srv.URL), func() []recorded {
		mu.Lock()
		defer mu.Unlock()
		return append([]recorded(nil), reqs...)
	}
}

func loginView(doc *html.Node) LoginStatus {
	return LoginStatus{
		Profile: ByID(doc, "profile_nav"),
		Login:   ByID(doc, "login_nav"),
		Handle:  ByID(doc, "handle"),
		Error:   ByID(doc, "login_error"),
	}
}

func TestLoginStatusLoggedIn(t *testing.T) {
	doc := parsePage(t)
	client, _ := mockAPI(t, map[string]endpoint{api.PathLogin: {body: `{"items":[true,"alice"]}`}})
	v := loginView(doc)

	require.NoError(t, v.Render(context.Background(), client))
	assert.True(t, Visible(v.Profile))
	assert.False(t, Visible(v.Login))
	assert.Equal(t, "alice", Text(v.Handle))
}

func TestLoginStatusLoggedOut(t *testing.T) {
	doc := parsePage(t)
	client, _ := mockAPI(t, map[string]endpoint{api.PathLogin: {body: `{"items":[false,""]}`}})
	v := loginView(doc)

	require.NoError(t, v.Render(context.Background(), client))
	assert.False(t, Visible(v.Profile))
	assert.True(t, Visible(v.Login))
	assert.Equal(t, "", Text(v.Handle))
}

func TestLoginStatusFailureOnlyTouchesErrorSlot(t *testing.T) {
	doc := parsePage(t)
	client, _ := mockAPI(t, map[string]endpoint{api.PathLogin: {status: http.StatusInternalServerError}})
	v := loginView(doc)

	err := v.Render(context.Background(), client)
	require.Error(t, err)

	var se *api.StatusError
	assert.ErrorAs(t, err, &se)
	_, styled := Attr(v.Profile, "style")
	assert.False(t, styled)
	_, styled = Attr(v.Login, "style")
	assert.False(t, styled)
	assert.Equal(t, "guest", Text(v.Handle))
	assert.Contains(t, Text(v.Error), "500")
}

func TestLoginStatusMalformed(t *testing.T) {
	doc := parsePage(t)
	client, _ := mockAPI(t, map[string]endpoint{api.PathLogin: {body: `{"items":`}})
	v := loginView(doc)

	assert.Error(t, v.Render(context.Background(), client))
	assert.Equal(t, "guest", Text(v.Handle))
}

func TestRecommendationListRendersLink(t *testing.T) {
	doc := parsePage(t)
	client, _ := mockAPI(t, map[string]endpoint{
		api.PathRecommendation: {body: `{"items":[{"problemId":1000,"titleKo":"A+B"}]}`},
	})
	v := RecommendationList{Container: ByID(doc, "recommendations"), Error: ByID(doc, "rec_error")}

	require.NoError(t, v.Render(context.Background(), client))

	blocks := Children(v.Container, "div")
	require.Len(t, blocks, 1)
	assert.Contains(t, Text(blocks[0]), "1000")

	links := Children(blocks[0], "a")
	require.Len(t, links, 1)
	href, _ := Attr(links[0], "href")
	assert.Equal(t, "https://www.acmicpc.net/problem/1000", href)
	assert.Equal(t, "A+B", Text(links[0]))

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, doc))
	assert.Contains(t, buf.String(), `<a href="https://www.acmicpc.net/problem/1000">A+B</a>`)
}

func TestRecommendationListAppendsOnRepeat(t *testing.T) {
	doc := parsePage(t)
	client, _ := mockAPI(t, map[string]endpoint{
		api.PathRecommendation: {body: `{"items":[{"problemId":"1001","titleKo":"A-B"},{"problemId":1000,"titleKo":"A+B"}]}`},
	})
	v := RecommendationList{Container: ByID(doc, "recommendations")}

	require.NoError(t, v.Render(context.Background(), client))
	require.NoError(t, v.Render(context.Background(), client))

	blocks := Children(v.Container, "div")
	require.Len(t, blocks, 4)
	assert.Contains(t, Text(blocks[0]), "1001")
	assert.Contains(t, Text(blocks[1]), "1000")
}

func tagView(doc *html.Node, sentinel bool) TagSelector {
	return TagSelector{
		Select:   ByID(doc, "tag"),
		Results:  ByID(doc, "results"),
		Error:    ByID(doc, "tag_error"),
		Sentinel: sentinel,
	}
}

func TestTagSelectorLoad(t *testing.T) {
	doc := parsePage(t)
	client, _ := mockAPI(t, map[string]endpoint{
		api.PathTagList: {body: `{"items":[{"en":"dp","ko":"다이나믹 프로그래밍"}]}`},
	})
	v := tagView(doc, false)

	require.NoError(t, v.Load(context.Background(), client))

	options := Children(v.Select, "option")
	require.Len(t, options, 1)
	val, _ := Attr(options[0], "value")
	assert.Equal(t, "dp", val)
	assert.Equal(t, "다이나믹 프로그래밍", Text(options[0]))
}

func TestTagSelectorLoadSentinelAndOrder(t *testing.T) {
	doc := parsePage(t)
	client, _ := mockAPI(t, map[string]endpoint{
		api.PathTagList: {body: `{"items":[{"en":"Greedy","en_short":"greedy","ko":"그리디"},{"en":"dp","ko":"다이나믹 프로그래밍"}]}`},
	})
	v := tagView(doc, true)

	require.NoError(t, v.Load(context.Background(), client))

	var values []string
	for _, o := range Children(v.Select, "option") {
		val, _ := Attr(o, "value")
		values = append(values, val)
	}
	assert.Equal(t, []string{NoChoice, "greedy", "dp"}, values)
	assert.Equal(t, NoChoice, v.Selected())

	assert.True(t, v.Choose("dp"))
	assert.Equal(t, "dp", v.Selected())
	assert.False(t, v.Choose("unknown"))
}

func TestTagSelectorSubmit(t *testing.T) {
	doc := parsePage(t)
	client, requests := mockAPI(t, map[string]endpoint{
		api.PathRecommendationByTag: {body: `{"items":[{"problemId":1003,"titleKo":"피보나치 함수"}]}`},
	})
	v := tagView(doc, false)

	require.NoError(t, v.Submit(context.Background(), client, "dp"))

	reqs := requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPost, reqs[0].method)
	assert.Equal(t, api.PathRecommendationByTag, reqs[0].path)
	assert.Equal(t, "application/json", reqs[0].contentType)

	var body map[string]string
	require.NoError(t, json.Unmarshal([]byte(reqs[0].body), &body))
	assert.Equal(t, map[string]string{"tag": "dp"}, body)

	blocks := Children(v.Results, "div")
	require.Len(t, blocks, 1)
	assert.NotContains(t, Text(v.Results), "old")
	assert.Contains(t, Text(blocks[0]), "1003")
}

func TestTagSelectorSubmitTwiceReplaces(t *testing.T) {
	doc := parsePage(t)
	client, _ := mockAPI(t, map[string]endpoint{
		api.PathRecommendationByTag: {body: `{"items":[{"problemId":1003,"titleKo":"피보나치 함수"},{"problemId":1149,"titleKo":"RGB거리"}]}`},
	})
	v := tagView(doc, false)

	require.NoError(t, v.Submit(context.Background(), client, "dp"))
	require.NoError(t, v.Submit(context.Background(), client, "dp"))
	assert.Len(t, Children(v.Results, "div"), 2)
}

func TestTagSelectorSubmitFailure(t *testing.T) {
	doc := parsePage(t)
	client, _ := mockAPI(t, map[string]endpoint{
		api.PathRecommendationByTag: {status: http.StatusBadRequest, body: `{"message":"bad"}`},
	})
	v := tagView(doc, false)

	require.Error(t, v.Submit(context.Background(), client, "dp"))
	assert.Contains(t, Text(v.Error), "400")
}

func TestScriptOutputAppendsOnEveryRun(t *testing.T) {
	doc := parsePage(t)
	client, _ := mockAPI(t, map[string]endpoint{
		api.PathRunScript: {body: `{"message":"hi","items":["항목 1","항목 2","항목 3"]}`},
	})
	v := ScriptOutput{List: ByID(doc, "ulist"), Error: ByID(doc, "run_error")}

	require.NoError(t, v.Run(context.Background(), client))
	require.NoError(t, v.Run(context.Background(), client))

	items := Children(v.List, "li")
	require.Len(t, items, 6)
	assert.Equal(t, "항목 1", Text(items[0]))
	assert.Equal(t, "항목 1", Text(items[3]))
}

func TestMissingElement(t *testing.T) {
	doc := parsePage(t)
	v := RecommendationList{Container: ByID(doc, "nope"), Error: ByID(doc, "rec_error")}

	err := v.Render(context.Background(), nil)
	assert.ErrorIs(t, err, ErrMissingElement)
	assert.NotEmpty(t, Text(v.Error))
}
