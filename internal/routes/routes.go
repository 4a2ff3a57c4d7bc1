package routes

import (
	"bank-reconciliation-backend/internal/config"
	handler "bank-reconciliation-backend/internal/handlers"
	"bank-reconciliation-backend/internal/metrics"
	"bank-reconciliation-backend/internal/repository"
	"bank-reconciliation-backend/internal/services/export"
	service "bank-reconciliation-backend/internal/services/reconciliation"
	"bank-reconciliation-backend/internal/services/reports"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Deps struct {
	Config   *config.Config
	Logger   *zap.Logger
	Registry *prometheus.Registry
	// DB is optional. Saved report routes are only mounted when it is set.
	DB *gorm.DB
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	exporter := export.NewService(
		export.Options{MaxRows: d.Config.ExportMaxRows},
		d.Logger,
		metrics.New(d.Registry),
	)
	reconService := service.NewReconciliationService(
		d.Config.ReconcileServiceURL,
		d.Config.ReconcileTimeout,
		d.Logger,
	)

	var reportService *reports.Service
	if d.DB != nil {
		reportService = reports.NewService(repository.NewReportRepository(d.DB))
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))

	reconHandler := handler.NewReconciliationHandler(reconService)
	r.POST("/reconcile", reconHandler.Reconcile)

	if reportService == nil {
		r.POST("/export", handler.NewExportHandler(exporter, nil).Export)
		d.Logger.Warn("DATABASE_URL not set, saved report routes disabled")
		return
	}

	exportHandler := handler.NewExportHandler(exporter, reportService)
	r.POST("/export", exportHandler.Export)

	reportsHandler := handler.NewReportsHandler(reportService)
	saved := r.Group("/reports")
	{
		saved.POST("", reportsHandler.Save)
		saved.GET("", reportsHandler.List)
		saved.GET("/:id", reportsHandler.Get)
		saved.GET("/:id/export", exportHandler.ExportSaved)
	}
}
