package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"bank-reconciliation-backend/internal/logging"
	"bank-reconciliation-backend/internal/models"
	"bank-reconciliation-backend/internal/services/reports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type reportStore interface {
	Save(ctx context.Context, name string, reportData json.RawMessage) (*models.SavedReport, error)
	List(ctx context.Context, page int) (*reports.Page, error)
	Get(ctx context.Context, id uuid.UUID) (*models.SavedReport, error)
}

type ReportsHandler struct {
	service reportStore
}

func NewReportsHandler(s reportStore) *ReportsHandler {
	return &ReportsHandler{service: s}
}

type saveReportRequest struct {
	Name       string          `json:"name"`
	ReportData json.RawMessage `json:"reportData"`
}

func (h *ReportsHandler) Save(c *gin.Context) {
	var req saveReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request payload"})
		return
	}
	if req.Name == "" || isEmptyJSON(req.ReportData) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Report name and data are required."})
		return
	}

	saved, err := h.service.Save(c.Request.Context(), req.Name, req.ReportData)
	var vErr *models.ValidationError
	if errors.As(err, &vErr) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": vErr.Error()})
		return
	}
	if err != nil {
		logging.FromContext(c.Request.Context(), nil).Error("save report failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error while saving report."})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Report saved successfully!",
		"data":    saved,
	})
}

// List returns one page of report summaries, newest first.
func (h *ReportsHandler) List(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	result, err := h.service.List(c.Request.Context(), page)
	if err != nil {
		logging.FromContext(c.Request.Context(), nil).Error("list reports failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error while fetching reports."})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       result.Reports,
		"pagination": result.Pagination,
	})
}

func (h *ReportsHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid report ID"})
		return
	}

	report, err := h.service.Get(c.Request.Context(), id)
	if errors.Is(err, reports.ErrReportNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Report not found."})
		return
	}
	if err != nil {
		logging.FromContext(c.Request.Context(), nil).Error("get report failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error while fetching report."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": report})
}

func isEmptyJSON(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
