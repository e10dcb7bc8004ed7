package client

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papercheck/papercheck/internal/model"
)

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func fastPoll() model.PollConfig {
	return model.PollConfig{Interval: time.Millisecond, MaxPolls: 50}
}

func TestUpload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/documents", r.URL.Path)

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer func() { _ = file.Close() }()
		assert.Equal(t, "paper.txt", header.Filename)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"document_id": "doc-1"})
	}))
	defer srv.Close()

	c := New(srv.URL, fastPoll(), discard())
	id, err := c.Upload(context.Background(), "paper.txt", []byte("hello [1]"))
	require.NoError(t, err)
	assert.Equal(t, "doc-1", id)
}

func TestUploadServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "document is empty"})
	}))
	defer srv.Close()

	c := New(srv.URL, fastPoll(), discard())
	_, err := c.Upload(context.Background(), "paper.txt", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "document is empty")
}

func TestStartAnalysis(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/documents/doc-1/analyze", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "full", body["mode"])

		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(map[string]string{"task_id": "task-1", "status": "pending"})
	}))
	defer srv.Close()

	c := New(srv.URL, fastPoll(), discard())
	taskID, err := c.StartAnalysis(context.Background(), "doc-1", model.ModeFull)
	require.NoError(t, err)
	assert.Equal(t, "task-1", taskID)
}

func TestWaitForResultCompletes(t *testing.T) {
	var polls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tasks/task-1/progress":
			n := polls.Add(1)
			task := model.Task{ID: "task-1", Status: model.StatusRunning}
			if n >= 3 {
				task.Status = model.StatusCompleted
			}
			_ = json.NewEncoder(w).Encode(task)
		case "/api/tasks/task-1/result":
			_ = json.NewEncoder(w).Encode(model.AnalysisResult{
				ReportMarkup: "<h1>Citation Analysis Report</h1>",
				Mode:         model.ModeQuick,
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, fastPoll(), discard())
	result, err := c.WaitForResult(context.Background(), "task-1")
	require.NoError(t, err)
	assert.Contains(t, result.ReportMarkup, "Citation Analysis Report")
	assert.GreaterOrEqual(t, polls.Load(), int32(3))
}

func TestWaitForResultToleratesFailedPolls(t *testing.T) {
	var polls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tasks/task-1/progress":
			if polls.Add(1) == 1 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			_ = json.NewEncoder(w).Encode(model.Task{ID: "task-1", Status: model.StatusCompleted})
		case "/api/tasks/task-1/result":
			_ = json.NewEncoder(w).Encode(model.AnalysisResult{ReportMarkup: "<h1>r</h1>"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, fastPoll(), discard())
	result, err := c.WaitForResult(context.Background(), "task-1")
	require.NoError(t, err)
	assert.NotEmpty(t, result.ReportMarkup)
}

func TestWaitForResultTaskError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(model.Task{
			ID:     "task-1",
			Status: model.StatusError,
			Error:  "analysis was interrupted",
		})
	}))
	defer srv.Close()

	c := New(srv.URL, fastPoll(), discard())
	_, err := c.WaitForResult(context.Background(), "task-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "analysis was interrupted")
}

func TestWaitForResultBudgetExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(model.Task{ID: "task-1", Status: model.StatusRunning})
	}))
	defer srv.Close()

	c := New(srv.URL, model.PollConfig{Interval: time.Millisecond, MaxPolls: 3}, discard())
	_, err := c.WaitForResult(context.Background(), "task-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not finish within 3 polls")
}
