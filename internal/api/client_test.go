package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathLogin, r.URL.Path)
		assert.Equal(t, "token=abc", r.Header.Get("Cookie"))
		fmt.Fprint(w, `{"items":[true,"tourist"]}`)
	}))
	defer srv.Close()

	st, err := New(srv.URL, WithHeader("Cookie", "token=abc")).Login(context.Background())
	require.NoError(t, err)
	assert.Equal(t, LoginStatus{LoggedIn: true, Handle: "tourist"}, st)
}

func TestLoginMalformed(t *testing.T) {
	for _, body := range []string{`{"items":[true]}`, `{"items":["yes","x"]}`, `not json`} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, body)
		}))
		_, err := New(srv.URL).Login(context.Background())
		srv.Close()
		assert.Error(t, err, body)
	}
}

func TestTagsAndValue(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items":[{"en":"Dynamic Programming","en_short":"dp","ko":"다이나믹 프로그래밍"},{"en":"greedy","ko":"그리디"}]}`)
	}))
	defer srv.Close()

	tags, err := New(srv.URL).Tags(context.Background())
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "dp", tags[0].Value())
	assert.Equal(t, "greedy", tags[1].Value())
}

func TestRecommendationsProblemIDForms(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items":[{"problemId":1000,"titleKo":"A+B","score":3.5},{"problemId":"1001","titleKo":"A-B"}]}`)
	}))
	defer srv.Close()

	recs, err := New(srv.URL).Recommendations(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, ProblemID("1000"), recs[0].ProblemID)
	assert.Equal(t, "1001", recs[1].ProblemID.String())
}

func TestRecommendationsByTagPostsJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		b, _ := io.ReadAll(r.Body)
		var body map[string]string
		require.NoError(t, json.Unmarshal(b, &body))
		assert.Equal(t, map[string]string{"tag": "no_choice"}, body)
		fmt.Fprint(w, `{"items":[]}`)
	}))
	defer srv.Close()

	recs, err := New(srv.URL).RecommendationsByTag(context.Background(), "no_choice")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestRunScript(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"message":"hi","items":["a","b"]}`)
	}))
	defer srv.Close()

	out, err := New(srv.URL).RunScript(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, out.Items)
}

func TestStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Recommendations(context.Background())
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, PathRecommendation, se.Path)
	assert.Equal(t, http.StatusServiceUnavailable, se.Code)
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(url).Tags(context.Background())
	assert.Error(t, err)
}
