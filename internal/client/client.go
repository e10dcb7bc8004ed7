// Package client is the HTTP client used by the CLI to talk to a running
// papercheck server. Progress is poll-only: the client re-requests the
// task snapshot on a fixed interval until the task terminates or the poll
// budget runs out.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/papercheck/papercheck/internal/model"
)

// Client talks to the papercheck HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	interval   time.Duration
	maxPolls   int
	logger     *slog.Logger
}

// New creates a client for the server at baseURL.
func New(baseURL string, poll model.PollConfig, logger *slog.Logger) *Client {
	interval := poll.Interval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	maxPolls := poll.MaxPolls
	if maxPolls <= 0 {
		maxPolls = 300
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		interval:   interval,
		maxPolls:   maxPolls,
		logger:     logger,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// Upload sends a document and returns its id.
func (c *Client) Upload(ctx context.Context, filename string, content []byte) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("build upload: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return "", fmt.Errorf("build upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("build upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/documents", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var resp struct {
		DocumentID string `json:"document_id"`
	}
	if err := c.do(req, http.StatusCreated, &resp); err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}
	return resp.DocumentID, nil
}

// StartAnalysis launches a task and returns its id.
func (c *Client) StartAnalysis(ctx context.Context, docID string, mode model.AnalysisMode) (string, error) {
	payload, _ := json.Marshal(map[string]string{"mode": string(mode)})
	url := fmt.Sprintf("%s/api/documents/%s/analyze", c.baseURL, docID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	var resp struct {
		TaskID string `json:"task_id"`
	}
	if err := c.do(req, http.StatusAccepted, &resp); err != nil {
		return "", fmt.Errorf("start analysis: %w", err)
	}
	return resp.TaskID, nil
}

// WaitForResult polls the task until it terminates and fetches the result.
// A failed poll request counts against the budget but is never treated as
// task failure; only a terminal error status from the task is.
func (c *Client) WaitForResult(ctx context.Context, taskID string) (*model.AnalysisResult, error) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for polls := 0; polls < c.maxPolls; polls++ {
		t, err := c.taskSnapshot(ctx, taskID)
		if err != nil {
			c.logger.Warn("progress poll failed", "task", taskID, "error", err)
		} else {
			c.logger.Debug("progress", "task", taskID, "status", t.Status,
				"processed", t.Progress.Processed, "total", t.Progress.Total)
			switch t.Status {
			case model.StatusCompleted:
				return c.fetchResult(ctx, taskID)
			case model.StatusError:
				return nil, fmt.Errorf("analysis failed: %s", t.Error)
			}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
	return nil, fmt.Errorf("task %s did not finish within %d polls", taskID, c.maxPolls)
}

func (c *Client) taskSnapshot(ctx context.Context, taskID string) (*model.Task, error) {
	url := fmt.Sprintf("%s/api/tasks/%s/progress", c.baseURL, taskID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	var t model.Task
	if err := c.do(req, http.StatusOK, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) fetchResult(ctx context.Context, taskID string) (*model.AnalysisResult, error) {
	url := fmt.Sprintf("%s/api/tasks/%s/result", c.baseURL, taskID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	var result model.AnalysisResult
	if err := c.do(req, http.StatusOK, &result); err != nil {
		return nil, fmt.Errorf("fetch result: %w", err)
	}
	return &result, nil
}

func (c *Client) do(req *http.Request, wantStatus int, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != wantStatus {
		var apiErr errorResponse
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
