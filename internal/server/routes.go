package server

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/papercheck/papercheck/internal/model"
	"github.com/papercheck/papercheck/internal/task"
)

// SetupRoutes registers the HTTP API on the router.
func SetupRoutes(router *gin.Engine, manager *task.Manager, cfg model.ServerConfig, logger *slog.Logger) {
	router.GET("/api/health", HealthCheck)

	api := router.Group("/api")
	{
		documents := api.Group("/documents")
		{
			documents.POST("", UploadDocument(manager, cfg, logger))
			documents.GET("/:id/preview", GetPreview(manager))
			documents.POST("/:id/analyze", StartAnalysis(manager, logger))
			documents.GET("/:id/problems", ListProblems(manager))
			documents.GET("/:id/report", GetReport(manager))
			documents.GET("/:id/report/export", ExportReport(manager))

			selection := documents.Group("/:id/selection")
			{
				selection.GET("", GetSelection(manager))
				selection.POST("", SelectProblem(manager))
				selection.DELETE("", ClearSelection(manager))
			}
		}

		tasks := api.Group("/tasks")
		{
			tasks.GET("/:id/progress", GetProgress(manager))
			tasks.GET("/:id/result", GetResult(manager))
		}
	}
}

// NewRouter builds a gin engine with the API mounted.
func NewRouter(manager *task.Manager, cfg model.ServerConfig, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	SetupRoutes(router, manager, cfg, logger)
	return router
}
