package server

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/papercheck/papercheck/internal/annotate"
	"github.com/papercheck/papercheck/internal/markup"
	"github.com/papercheck/papercheck/internal/model"
	"github.com/papercheck/papercheck/internal/task"
)

// HealthCheck reports liveness.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// UploadDocument accepts a multipart upload under the "file" field, parses
// it and returns the stored document's id and paragraph count.
func UploadDocument(manager *task.Manager, cfg model.ServerConfig, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing file field"})
			return
		}
		if cfg.MaxUploadBytes > 0 && fileHeader.Size > cfg.MaxUploadBytes {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read upload"})
			return
		}
		defer func() { _ = file.Close() }()

		content, err := io.ReadAll(file)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read upload"})
			return
		}

		doc, err := manager.AddDocument(fileHeader.Filename, content)
		if err != nil {
			respondError(c, err)
			return
		}

		logger.Info("document uploaded", "document", doc.ID, "filename", doc.Filename, "paragraphs", len(doc.Paragraphs))
		c.JSON(http.StatusCreated, gin.H{
			"document_id": doc.ID,
			"filename":    doc.Filename,
			"paragraphs":  len(doc.Paragraphs),
		})
	}
}

// GetPreview returns the paragraph markup, annotated once an analysis has
// completed.
func GetPreview(manager *task.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		paragraphs, err := manager.Preview(c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"paragraphs": paragraphs})
	}
}

type analyzeRequest struct {
	Mode string `json:"mode"`
}

// StartAnalysis launches a task for a document and returns its id.
func StartAnalysis(manager *task.Manager, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req analyzeRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		mode := model.AnalysisMode(req.Mode)
		if req.Mode == "" {
			mode = model.ModeQuick
		}

		taskID, err := manager.Start(c.Param("id"), mode)
		if err != nil {
			respondError(c, err)
			return
		}

		logger.Info("analysis started", "document", c.Param("id"), "task", taskID, "mode", mode)
		c.JSON(http.StatusAccepted, gin.H{"task_id": taskID, "status": string(model.StatusPending)})
	}
}

// GetProgress returns a task snapshot for polling.
func GetProgress(manager *task.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, err := manager.Task(c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, t)
	}
}

// GetResult returns the artifact of a completed task.
func GetResult(manager *task.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := manager.Result(c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// ListProblems returns tracked problems, optionally filtered with ?type=.
func ListProblems(manager *task.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := model.ProblemType(c.Query("type"))
		problems, counts, err := manager.Problems(c.Param("id"), filter)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"problems": problems, "counts": counts})
	}
}

// GetReport returns the annotated analysis report markup.
func GetReport(manager *task.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		report, err := manager.Report(c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"report_markup": report})
	}
}

// ExportReport serves the report as a standalone HTML page or plain text
// (?format=html|text, default html).
func ExportReport(manager *task.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		report, err := manager.Report(c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}

		switch c.DefaultQuery("format", "html") {
		case "html":
			c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(exportHTML(report)))
		case "text":
			plain := markup.Strip(annotate.Strip(report)).Text
			c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(plain))
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown format"})
		}
	}
}

type selectRequest struct {
	ProblemID int `json:"problem_id"`
}

// SelectProblem marks one problem as selected for emphasis.
func SelectProblem(manager *task.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req selectRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if err := manager.Select(c.Param("id"), req.ProblemID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"selected_problem_id": req.ProblemID})
	}
}

// ClearSelection removes the current selection.
func ClearSelection(manager *task.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := manager.ClearSelection(c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// GetSelection returns the selected problem id, null when none.
func GetSelection(manager *task.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok, err := manager.Selection(c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		if !ok {
			c.JSON(http.StatusOK, gin.H{"selected_problem_id": nil})
			return
		}
		c.JSON(http.StatusOK, gin.H{"selected_problem_id": id})
	}
}

// respondError maps lifecycle errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, task.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, task.ErrAlreadyRunning):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, task.ErrNotReady):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, task.ErrInvalidDocument):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, task.ErrAnalysisFailed):
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func exportHTML(report string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Citation Analysis Report</title>
<style>
body { font-family: sans-serif; max-width: 52rem; margin: 2rem auto; padding: 0 1rem; }
.context { color: #555; font-size: 0.9em; margin: 0.3rem 0 0.6rem; padding-left: 0.8rem; border-left: 3px solid #ddd; }
.analysis { margin: 0.2rem 0; }
.problem-marker { padding: 0 0.15em; border-radius: 2px; }
.problem-marker--selected { outline: 2px solid #1890ff; }
</style>
</head>
<body>
%s
</body>
</html>
`, report)
}
