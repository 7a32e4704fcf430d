// Package github is a minimal GitHub REST client for issue automation:
// comments, reactions, closing issues and opening pull requests.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://api.github.com"
	APIVersion     = "2022-11-28"
	mediaType      = "application/vnd.github+json"

	// maxErrorBody bounds how much of a failed response is kept for the error.
	maxErrorBody = 4096
)

// Options configures a Client.
type Options struct {
	BaseURL   string
	Token     string
	Owner     string
	Repo      string
	UserAgent string

	// Timeout bounds each request; zero means 30s
	Timeout time.Duration

	// RateLimit is requests per second; zero disables pacing
	RateLimit float64

	Logger zerolog.Logger

	// HTTPClient overrides the transport, mainly for tests
	HTTPClient *http.Client
}

// Client talks to the issues and pulls endpoints of one repository.
type Client struct {
	baseURL    string
	token      string
	owner      string
	repo       string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     zerolog.Logger
}

// APIError is a non-2xx response.
type APIError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API request failed (%s %s): %d %s: %s",
		e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

// NewClient creates a Client. Token, Owner and Repo are required.
func NewClient(opts Options) (*Client, error) {
	if opts.Token == "" {
		return nil, fmt.Errorf("github token is required (set GITHUB_TOKEN)")
	}
	if opts.Owner == "" || opts.Repo == "" {
		return nil, fmt.Errorf("github repository is required (set GITHUB_REPOSITORY)")
	}

	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "packsmith"
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}

	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		token:      opts.Token,
		owner:      opts.Owner,
		repo:       opts.Repo,
		userAgent:  opts.UserAgent,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, 1),
		logger:     opts.Logger.With().Str("component", "github").Logger(),
	}, nil
}

func (c *Client) issuePath(number int) string {
	return fmt.Sprintf("/repos/%s/%s/issues/%d", c.owner, c.repo, number)
}

// CommentIssue posts a Markdown comment on an issue.
func (c *Client) CommentIssue(ctx context.Context, number int, body string) error {
	payload := map[string]string{"body": body}
	if err := c.do(ctx, http.MethodPost, c.issuePath(number)+"/comments", payload, nil); err != nil {
		return fmt.Errorf("failed to post comment: %w", err)
	}
	c.logger.Info().Int("issue", number).Msg("Comment posted")
	return nil
}

// ReactIssue adds a reaction to an issue.
func (c *Client) ReactIssue(ctx context.Context, number int, reaction Reaction) error {
	payload := map[string]Reaction{"content": reaction}
	if err := c.do(ctx, http.MethodPost, c.issuePath(number)+"/reactions", payload, nil); err != nil {
		return fmt.Errorf("failed to add reaction: %w", err)
	}
	c.logger.Info().Int("issue", number).Stringer("reaction", reaction).Msg("Reaction added")
	return nil
}

// CloseIssue sets an issue's state to closed.
func (c *Client) CloseIssue(ctx context.Context, number int) error {
	payload := map[string]string{"state": "closed"}
	if err := c.do(ctx, http.MethodPatch, c.issuePath(number), payload, nil); err != nil {
		return fmt.Errorf("failed to close issue: %w", err)
	}
	c.logger.Info().Int("issue", number).Msg("Issue closed")
	return nil
}

// PullRequest is the payload of CreatePullRequest.
type PullRequest struct {
	Head  string `json:"head"`
	Base  string `json:"base"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// CreatePullRequest opens a pull request and returns its number.
func (c *Client) CreatePullRequest(ctx context.Context, pr PullRequest) (int, error) {
	var created struct {
		Number  int    `json:"number"`
		HTMLURL string `json:"html_url"`
	}
	path := fmt.Sprintf("/repos/%s/%s/pulls", c.owner, c.repo)
	if err := c.do(ctx, http.MethodPost, path, pr, &created); err != nil {
		return 0, fmt.Errorf("failed to create pull request: %w", err)
	}
	c.logger.Info().Int("number", created.Number).Str("url", created.HTMLURL).Msg("Pull request created")
	return created.Number, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", mediaType)
	req.Header.Set("X-GitHub-Api-Version", APIVersion)
	req.Header.Set("User-Agent", c.userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug().Str("method", method).Str("url", url).Msg("GitHub request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send %s request: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{Method: method, URL: url, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
