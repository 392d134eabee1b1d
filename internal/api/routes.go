package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes 挂载全部接口
func (h *HTTPHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	if h.metrics != nil {
		r.GET("/internal/metrics", gin.WrapH(h.metrics.Handler()))
	}

	authGroup := r.Group("/auth")
	authGroup.POST("/login", h.Login)
	authGroup.GET("/me", h.AuthMiddleware(), h.Me)

	protected := r.Group("")
	protected.Use(h.AuthMiddleware())

	userAdmin := protected.Group("/users")
	userAdmin.Use(h.RequireAdmin())
	userAdmin.GET("", h.ListUsers)
	userAdmin.POST("", h.CreateUser)
	userAdmin.PATCH("/:id", h.UpdateUser)
	userAdmin.DELETE("/:id", h.DeleteUser)

	datasets := protected.Group("/datasets")
	datasets.GET("", h.ListDatasets)
	datasets.POST("", h.RequireAdmin(), h.CreateDataset)
	datasets.GET("/:id", h.GetDataset)
	datasets.DELETE("/:id", h.RequireAdmin(), h.DeleteDataset)
	datasets.GET("/:id/rules", h.ListRules)
	datasets.POST("/:id/rules", h.RequireAdmin(), h.CreateRule)

	metrics := protected.Group("/metrics")
	metrics.POST("/ingest", h.IngestMetrics)
	metrics.GET("/latest", h.LatestSummary)
	metrics.GET("/timeseries", h.Timeseries)
	metrics.POST("/export", h.ExportSnapshot)

	if h.servesFiles() {
		protected.GET(h.storagePublicBase+"/*filepath", h.DownloadExport)
	}
}
