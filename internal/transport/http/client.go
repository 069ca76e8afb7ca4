package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"pm-quiz-runner/internal/domain"
)

const (
	// TeamHeader carries the participant identity on every request.
	TeamHeader = "X-Team"
	// SubmissionHeader tags a submit request so retries can be correlated in logs.
	SubmissionHeader = "X-Submission-ID"
)

// Client talks to the quiz backend over its JSON API.
type Client struct {
	baseURL string
	team    string
	http    *http.Client
}

type ClientOption func(*Client)

// WithHTTPClient replaces the default 15s-timeout client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

func NewClient(baseURL, team string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		team:    team,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchQuestions returns the ordered catalog. Transport, status and decoding
// failures all wrap domain.ErrCatalogUnavailable.
func (c *Client) FetchQuestions(ctx context.Context) ([]domain.Question, error) {
	var questions []domain.Question
	if err := c.do(ctx, http.MethodGet, "/api/questions", nil, nil, &questions); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}
	return questions, nil
}

// Submit posts the full AnswerMap. A non-2xx status wraps
// domain.ErrSubmissionRejected.
func (c *Client) Submit(ctx context.Context, answers domain.AnswerMap) (domain.SubmitResult, error) {
	body, err := domain.MarshalAnswers(answers)
	if err != nil {
		return domain.SubmitResult{}, err
	}
	headers := map[string]string{SubmissionHeader: uuid.NewString()}
	var result domain.SubmitResult
	if err := c.do(ctx, http.MethodPost, "/api/submit", body, headers, &result); err != nil {
		return domain.SubmitResult{}, err
	}
	return result, nil
}

func (c *Client) FetchLeaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	var entries []domain.LeaderboardEntry
	if err := c.do(ctx, http.MethodGet, "/api/leaderboard", nil, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) SendFeedback(ctx context.Context, content string) (bool, error) {
	body, err := json.Marshal(feedbackRequest{Content: content})
	if err != nil {
		return false, err
	}
	var resp feedbackResponse
	if err := c.do(ctx, http.MethodPost, "/api/feedback", body, nil, &resp); err != nil {
		return false, err
	}
	return resp.Success, nil
}

// Status asks the backend how many seconds the team has left.
func (c *Client) Status(ctx context.Context) (domain.StatusResult, error) {
	var status domain.StatusResult
	if err := c.do(ctx, http.MethodGet, "/api/status", nil, nil, &status); err != nil {
		return domain.StatusResult{}, err
	}
	return status, nil
}

type statusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

func (e *statusError) Unwrap() error {
	if e.Path == "/api/submit" {
		return domain.ErrSubmissionRejected
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, headers map[string]string, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.team != "" {
		req.Header.Set(TeamHeader, c.team)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &statusError{Method: method, Path: path, Code: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: decode: %w", method, path, err)
	}
	return nil
}
