package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bank-reconciliation-backend/internal/metrics"
	"bank-reconciliation-backend/internal/models"
	"bank-reconciliation-backend/internal/services/export"
	"bank-reconciliation-backend/internal/services/reports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const singleMatchBody = `{
	"summary": {"matched_count": 1, "anomaly_count": 0, "unmatched_bank_count": 0},
	"matched_transactions": [
		{"bank": {"Date": "2024-01-01", "Description": "ACME", "Amount": 100}, "internal": {"Vendor": "Acme Corp"}, "confidence": 95}
	],
	"anomalies_detected": [],
	"unmatched_bank_transactions": [],
	"unmatched_internal_records": []
}`

type stubLoader struct {
	report *models.ReconciliationReport
	err    error
}

func (s stubLoader) Load(context.Context, uuid.UUID) (*models.ReconciliationReport, error) {
	return s.report, s.err
}

func newExportRouter(t *testing.T, opts export.Options, loader reportLoader) (*gin.Engine, *metrics.Metrics) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	m := metrics.New(prometheus.NewRegistry())
	h := NewExportHandler(export.NewService(opts, nil, m), loader)

	r := gin.New()
	r.POST("/export", h.Export)
	r.GET("/reports/:id/export", h.ExportSaved)
	return r, m
}

func postExport(r http.Handler, query, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/export"+query, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestExportHandler_Export(t *testing.T) {
	t.Run("unsupported type is rejected without a document", func(t *testing.T) {
		r, m := newExportRouter(t, export.Options{}, nil)

		w := postExport(r, "?type=csv", singleMatchBody)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid export type", w.Body.String())
		assert.Empty(t, w.Header().Get("Content-Disposition"))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.ExportRequests.WithLabelValues(unsupportedFormatLabel, metrics.OutcomeInvalid)))
	})

	t.Run("missing type is rejected", func(t *testing.T) {
		r, _ := newExportRouter(t, export.Options{}, nil)

		w := postExport(r, "", singleMatchBody)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("excel download", func(t *testing.T) {
		r, m := newExportRouter(t, export.Options{}, nil)

		w := postExport(r, "?type=excel", singleMatchBody)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, export.FormatExcel.ContentType(), w.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="reconciliation_report.xlsx"`, w.Header().Get("Content-Disposition"))

		f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
		require.NoError(t, err)
		defer f.Close()

		title, err := f.GetCellValue(export.SheetName, "A1")
		require.NoError(t, err)
		assert.Equal(t, export.TitleMatched, title)

		amount, err := f.GetCellValue(export.SheetName, "C3")
		require.NoError(t, err)
		assert.Equal(t, "$100.00", amount)

		assert.Equal(t, 1.0, testutil.ToFloat64(m.ExportRequests.WithLabelValues("excel", metrics.OutcomeSuccess)))
	})

	t.Run("pdf download", func(t *testing.T) {
		r, _ := newExportRouter(t, export.Options{}, nil)

		w := postExport(r, "?type=pdf", singleMatchBody)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="reconciliation_report.pdf"`, w.Header().Get("Content-Disposition"))
		assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))
	})

	t.Run("pdf download with accented text", func(t *testing.T) {
		r, m := newExportRouter(t, export.Options{}, nil)

		body := `{
			"matched_transactions": [
				{"bank": {"Date": "2024-03-01", "Description": "Café de Flore", "Amount": 12.4}, "internal": {"Vendor": "Zürich AG"}}
			],
			"anomalies_detected": [{"Date": "2024-03-02", "Description": "Señor Pérez", "Amount": 80, "Flagged_Reason": "Duplicado €"}],
			"unmatched_bank_transactions": [],
			"unmatched_internal_records": []
		}`
		w := postExport(r, "?type=pdf", body)

		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.ExportRequests.WithLabelValues("pdf", metrics.OutcomeSuccess)))
	})

	badBodies := []struct {
		name string
		body string
	}{
		{name: "empty body", body: ""},
		{name: "not json", body: "matched"},
		{name: "section is not a list", body: `{"matched_transactions": {}}`},
		{name: "match without bank record", body: `{"matched_transactions": [{"internal": {}}]}`},
	}
	for _, tc := range badBodies {
		t.Run(tc.name, func(t *testing.T) {
			r, m := newExportRouter(t, export.Options{}, nil)

			w := postExport(r, "?type=pdf", tc.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Empty(t, w.Header().Get("Content-Disposition"))
			assert.False(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))
			assert.Equal(t, 1.0, testutil.ToFloat64(m.ExportRequests.WithLabelValues("pdf", metrics.OutcomeInvalid)))
		})
	}

	t.Run("row cap", func(t *testing.T) {
		r, _ := newExportRouter(t, export.Options{MaxRows: 1}, nil)

		body := `{
			"matched_transactions": [],
			"anomalies_detected": [],
			"unmatched_bank_transactions": [{"Amount": 1}, {"Amount": 2}],
			"unmatched_internal_records": []
		}`
		w := postExport(r, "?type=excel", body)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), export.TitleUnmatchedBank)
	})
}

func TestExportHandler_ExportSaved(t *testing.T) {
	report, err := models.ParseReport([]byte(singleMatchBody))
	require.NoError(t, err)

	tests := []struct {
		name     string
		path     string
		loader   stubLoader
		wantCode int
	}{
		{name: "renders stored report", path: "/reports/" + uuid.NewString() + "/export?type=pdf", loader: stubLoader{report: report}, wantCode: http.StatusOK},
		{name: "unknown report", path: "/reports/" + uuid.NewString() + "/export?type=pdf", loader: stubLoader{err: reports.ErrReportNotFound}, wantCode: http.StatusNotFound},
		{name: "malformed id", path: "/reports/abc/export?type=excel", loader: stubLoader{report: report}, wantCode: http.StatusBadRequest},
		{name: "unsupported type", path: "/reports/" + uuid.NewString() + "/export?type=docx", loader: stubLoader{report: report}, wantCode: http.StatusBadRequest},
		{name: "stored data no longer valid", path: "/reports/" + uuid.NewString() + "/export?type=excel", loader: stubLoader{err: &models.ValidationError{Reason: "bad"}}, wantCode: http.StatusBadRequest},
		{name: "store failure", path: "/reports/" + uuid.NewString() + "/export?type=excel", loader: stubLoader{err: assert.AnError}, wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newExportRouter(t, export.Options{}, tt.loader)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode == http.StatusOK {
				assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))
			} else {
				assert.Empty(t, w.Header().Get("Content-Disposition"))
			}
		})
	}
}
