package restclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"trivia-quiz/internal/domain"
)

// APIError is a non-2xx answer from the quiz server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("quiz api: %d %s", e.Status, e.Message)
}

// Client talks to the quiz REST API on behalf of one authenticated player.
// Requests are never retried: a repeated submission would be scored twice.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// WithHTTPClient swaps the underlying client (tests, custom transports).
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

func (c *Client) Category(ctx context.Context, categoryID string) (domain.Category, error) {
	var category domain.Category
	err := c.do(ctx, http.MethodGet, "/api/categories/"+url.PathEscape(categoryID), nil, &category)
	return category, err
}

func (c *Client) StartQuiz(ctx context.Context, categoryID string) (domain.Attempt, error) {
	var attempt domain.Attempt
	err := c.do(ctx, http.MethodPost, "/api/categories/"+url.PathEscape(categoryID)+"/start", nil, &attempt)
	return attempt, err
}

func (c *Client) SubmitAnswer(ctx context.Context, submission domain.AnswerSubmission) (domain.SubmitResult, error) {
	var res domain.SubmitResult
	err := c.do(ctx, http.MethodPost, "/api/answers", submission, &res)
	return res, err
}

func (c *Client) JokerStatus(ctx context.Context, categoryID string) (domain.JokerStatus, error) {
	var status domain.JokerStatus
	err := c.do(ctx, http.MethodGet, "/api/categories/"+url.PathEscape(categoryID)+"/jokers", nil, &status)
	return status, err
}

func (c *Client) UseElimination(ctx context.Context, categoryID, questionID string) ([]string, error) {
	var out struct {
		EliminatedAnswerIDs []string `json:"eliminatedAnswerIds"`
	}
	err := c.do(ctx, http.MethodPost, "/api/categories/"+url.PathEscape(categoryID)+"/jokers/elimination",
		map[string]string{"questionId": questionID}, &out)
	return out.EliminatedAnswerIDs, err
}

func (c *Client) UseSecondChance(ctx context.Context, categoryID, questionID string) error {
	var out struct {
		Granted bool `json:"granted"`
	}
	err := c.do(ctx, http.MethodPost, "/api/categories/"+url.PathEscape(categoryID)+"/jokers/second-chance",
		map[string]string{"questionId": questionID}, &out)
	if err != nil {
		return err
	}
	if !out.Granted {
		return &APIError{Status: http.StatusConflict, Message: "second chance not granted"}
	}
	return nil
}

func (c *Client) Leaderboard(ctx context.Context, categoryID string) (domain.Leaderboard, error) {
	var lb domain.Leaderboard
	err := c.do(ctx, http.MethodGet, "/api/categories/"+url.PathEscape(categoryID)+"/leaderboard", nil, &lb)
	return lb, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(payload))}
		var decoded struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(payload, &decoded) == nil && decoded.Error != "" {
			apiErr.Message = decoded.Error
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
