package handler

import (
	"context"
	"errors"
	"net/http"

	"bank-reconciliation-backend/internal/logging"
	"bank-reconciliation-backend/internal/metrics"
	"bank-reconciliation-backend/internal/models"
	"bank-reconciliation-backend/internal/services/export"
	"bank-reconciliation-backend/internal/services/reports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const unsupportedFormatLabel = "unsupported"

type reportLoader interface {
	Load(ctx context.Context, id uuid.UUID) (*models.ReconciliationReport, error)
}

type ExportHandler struct {
	exporter *export.Service
	reports  reportLoader
}

// NewExportHandler builds the export endpoints. reports may be nil when
// saved reports are disabled.
func NewExportHandler(exporter *export.Service, reports reportLoader) *ExportHandler {
	return &ExportHandler{exporter: exporter, reports: reports}
}

// Export renders the report in the request body. The type is checked before
// the body is read.
func (h *ExportHandler) Export(c *gin.Context) {
	format, ok := h.format(c)
	if !ok {
		return
	}

	data, err := c.GetRawData()
	if err != nil {
		h.reject(c, format, &models.ValidationError{Reason: "report data is required", Err: err})
		return
	}

	report, err := models.ParseReport(data)
	if err != nil {
		h.reject(c, format, err)
		return
	}

	h.write(c, format, report)
}

// ExportSaved renders a previously saved report.
func (h *ExportHandler) ExportSaved(c *gin.Context) {
	format, ok := h.format(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.exporter.RecordOutcome(format, metrics.OutcomeInvalid)
		c.String(http.StatusBadRequest, "invalid report ID")
		return
	}

	report, err := h.reports.Load(c.Request.Context(), id)
	if errors.Is(err, reports.ErrReportNotFound) {
		h.exporter.RecordOutcome(format, metrics.OutcomeInvalid)
		c.String(http.StatusNotFound, "Report not found.")
		return
	}
	if err != nil {
		h.reject(c, format, err)
		return
	}

	h.write(c, format, report)
}

func (h *ExportHandler) format(c *gin.Context) (export.Format, bool) {
	format, err := export.ParseFormat(c.Query("type"))
	if err != nil {
		h.exporter.RecordOutcome(unsupportedFormatLabel, metrics.OutcomeInvalid)
		c.String(http.StatusBadRequest, "Invalid export type")
		return "", false
	}
	return format, true
}

// reject answers an error raised before any document byte was produced.
func (h *ExportHandler) reject(c *gin.Context, format export.Format, err error) {
	var vErr *models.ValidationError
	if errors.As(err, &vErr) {
		h.exporter.RecordOutcome(format, metrics.OutcomeInvalid)
		c.String(http.StatusBadRequest, vErr.Error())
		return
	}

	_ = c.Error(err)
	h.exporter.RecordOutcome(format, metrics.OutcomeFailed)
	c.String(http.StatusInternalServerError, "Failed to generate report.")
}

func (h *ExportHandler) write(c *gin.Context, format export.Format, report *models.ReconciliationReport) {
	ctx := c.Request.Context()

	sections, err := h.exporter.Prepare(ctx, format, report)
	if err != nil {
		h.reject(c, format, err)
		return
	}

	c.Header("Content-Type", format.ContentType())
	c.Header("Content-Disposition", format.ContentDisposition())

	err = h.exporter.Render(ctx, format, sections, c.Writer)
	if err == nil {
		h.exporter.RecordOutcome(format, metrics.OutcomeSuccess)
		return
	}

	_ = c.Error(err)
	if !c.Writer.Written() {
		c.Writer.Header().Del("Content-Type")
		c.Writer.Header().Del("Content-Disposition")
		h.exporter.RecordOutcome(format, metrics.OutcomeFailed)
		c.String(http.StatusInternalServerError, "Failed to generate report.")
		return
	}

	// Bytes are on the wire already; the client gets a truncated document.
	logging.FromContext(ctx, nil).Error("export aborted after response started",
		zap.String("format", string(format)),
		zap.Error(err),
	)
	h.exporter.RecordOutcome(format, metrics.OutcomeTruncated)
	c.Abort()
}
