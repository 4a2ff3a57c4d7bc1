package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"bank-reconciliation-backend/internal/logging"
	service "bank-reconciliation-backend/internal/services/reconciliation"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Multipart field names accepted from the frontend.
const (
	formBankStatement   = "bankStatement"
	formInternalRecords = "internalRecords"
)

type reconciler interface {
	Reconcile(ctx context.Context, bank, internal service.Upload) (json.RawMessage, error)
}

type ReconciliationHandler struct {
	service reconciler
}

func NewReconciliationHandler(s reconciler) *ReconciliationHandler {
	return &ReconciliationHandler{service: s}
}

// Reconcile proxies the two uploaded statements to the matching service and
// relays its report.
func (h *ReconciliationHandler) Reconcile(c *gin.Context) {
	bankHeader, bankErr := c.FormFile(formBankStatement)
	internalHeader, internalErr := c.FormFile(formInternalRecords)
	if bankErr != nil || internalErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Both 'bankStatement' and 'internalRecords' files are required.",
		})
		return
	}

	bankFile, err := bankHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "cannot read bankStatement"})
		return
	}
	defer bankFile.Close()

	internalFile, err := internalHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "cannot read internalRecords"})
		return
	}
	defer internalFile.Close()

	bank := service.Upload{Filename: bankHeader.Filename, Content: bankFile}
	internal := service.Upload{Filename: internalHeader.Filename, Content: internalFile}

	report, err := h.service.Reconcile(c.Request.Context(), bank, internal)
	if err != nil {
		status, message := reconcileFailure(err)
		logging.FromContext(c.Request.Context(), nil).Error("reconciliation proxy failed", zap.Error(err))
		c.JSON(status, gin.H{"status": "error", "message": message})
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", report)
}

func reconcileFailure(err error) (int, string) {
	if errors.Is(err, service.ErrNotConfigured) {
		return http.StatusInternalServerError, "Server configuration error: AI service URL is missing."
	}

	var upErr *service.UpstreamError
	if errors.As(err, &upErr) {
		message := upErr.Detail
		if message == "" {
			message = "Reconciliation failed due to an internal server error."
		}
		return upErr.StatusCode, message
	}
	return http.StatusInternalServerError, "Reconciliation failed due to an internal server error."
}
