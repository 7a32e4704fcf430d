package github

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method  string
	path    string
	headers http.Header
	body    map[string]interface{}
}

func newTestClient(t *testing.T, status int, response string) (*Client, *[]recorded) {
	t.Helper()
	var calls []recorded

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{method: r.Method, path: r.URL.Path, headers: r.Header.Clone()}
		data, _ := io.ReadAll(r.Body)
		if len(data) > 0 {
			assert.NoError(t, json.Unmarshal(data, &rec.body))
		}
		calls = append(calls, rec)

		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(Options{
		BaseURL: srv.URL,
		Token:   "ghs_secret",
		Owner:   "ofro",
		Repo:    "pack",
		Logger:  zerolog.Nop(),
	})
	require.NoError(t, err)
	return c, &calls
}

func TestNewClient_RequiresCredentials(t *testing.T) {
	_, err := NewClient(Options{Owner: "o", Repo: "r"})
	assert.Error(t, err)

	_, err = NewClient(Options{Token: "t"})
	assert.Error(t, err)
}

func TestClient_Requests(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		call   func(c *Client) error
		method string
		path   string
		body   map[string]interface{}
	}{
		{
			name:   "comment",
			call:   func(c *Client) error { return c.CommentIssue(ctx, 7, "hello") },
			method: http.MethodPost,
			path:   "/repos/ofro/pack/issues/7/comments",
			body:   map[string]interface{}{"body": "hello"},
		},
		{
			name:   "reaction",
			call:   func(c *Client) error { return c.ReactIssue(ctx, 7, ReactionRocket) },
			method: http.MethodPost,
			path:   "/repos/ofro/pack/issues/7/reactions",
			body:   map[string]interface{}{"content": "rocket"},
		},
		{
			name:   "close",
			call:   func(c *Client) error { return c.CloseIssue(ctx, 7) },
			method: http.MethodPatch,
			path:   "/repos/ofro/pack/issues/7",
			body:   map[string]interface{}{"state": "closed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, calls := newTestClient(t, http.StatusCreated, `{}`)
			require.NoError(t, tt.call(c))

			require.Len(t, *calls, 1)
			got := (*calls)[0]
			assert.Equal(t, tt.method, got.method)
			assert.Equal(t, tt.path, got.path)
			assert.Equal(t, tt.body, got.body)
			assert.Equal(t, "Bearer ghs_secret", got.headers.Get("Authorization"))
			assert.Equal(t, "application/vnd.github+json", got.headers.Get("Accept"))
			assert.Equal(t, "2022-11-28", got.headers.Get("X-GitHub-Api-Version"))
			assert.Equal(t, "packsmith", got.headers.Get("User-Agent"))
		})
	}
}

func TestClient_CreatePullRequest(t *testing.T) {
	c, calls := newTestClient(t, http.StatusCreated, `{"number": 31, "html_url": "https://github.com/ofro/pack/pull/31"}`)

	number, err := c.CreatePullRequest(context.Background(), PullRequest{
		Head: "custom-model/issue-7", Base: "main", Title: "Add ruby", Body: "Closes #7",
	})
	require.NoError(t, err)
	assert.Equal(t, 31, number)

	require.Len(t, *calls, 1)
	assert.Equal(t, "/repos/ofro/pack/pulls", (*calls)[0].path)
	assert.Equal(t, map[string]interface{}{
		"head": "custom-model/issue-7", "base": "main", "title": "Add ruby", "body": "Closes #7",
	}, (*calls)[0].body)
}

func TestClient_APIError(t *testing.T) {
	c, _ := newTestClient(t, http.StatusUnprocessableEntity, `{"message":"Validation Failed"}`)

	err := c.CommentIssue(context.Background(), 1, "x")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Contains(t, err.Error(), "Validation Failed")
}

func TestClient_CanceledContext(t *testing.T) {
	c, calls := newTestClient(t, http.StatusOK, `{}`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, c.CloseIssue(ctx, 1))
	assert.Empty(t, *calls)
}

func TestParseReaction(t *testing.T) {
	for _, name := range ReactionNames() {
		r, err := ParseReaction(name)
		require.NoError(t, err)
		assert.Equal(t, name, r.String())
	}

	r, err := ParseReaction(" Rocket ")
	require.NoError(t, err)
	assert.Equal(t, ReactionRocket, r)

	_, err = ParseReaction("thumbsup")
	assert.Error(t, err)

	var v Reaction
	require.NoError(t, v.Set("-1"))
	assert.Equal(t, ReactionThumbsDown, v)
	assert.Equal(t, "reaction", v.Type())

	data, err := json.Marshal(ReactionHooray)
	require.NoError(t, err)
	assert.JSONEq(t, `"hooray"`, string(data))
	require.NoError(t, json.Unmarshal([]byte(`"eyes"`), &v))
	assert.Equal(t, ReactionEyes, v)
}
