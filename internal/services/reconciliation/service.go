package reconciliation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"bank-reconciliation-backend/internal/logging"

	"go.uber.org/zap"
)

// Multipart field names expected by the matching service.
const (
	FieldBankStatement   = "bank_statement"
	FieldInternalRecords = "internal_records"
)

var ErrNotConfigured = errors.New("reconciliation service URL is not configured")

// Upload is one file forwarded to the matching service.
type Upload struct {
	Filename string
	Content  io.Reader
}

// UpstreamError is a non-2xx answer from the matching service.
type UpstreamError struct {
	StatusCode int
	Detail     string
}

func (e *UpstreamError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("reconciliation service returned %d", e.StatusCode)
	}
	return fmt.Sprintf("reconciliation service returned %d: %s", e.StatusCode, e.Detail)
}

type ReconciliationService struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

func NewReconciliationService(url string, timeout time.Duration, logger *zap.Logger) *ReconciliationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReconciliationService{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Reconcile forwards both statements and returns the matching service's JSON
// report untouched.
func (s *ReconciliationService) Reconcile(ctx context.Context, bank, internal Upload) (json.RawMessage, error) {
	if s.url == "" {
		return nil, ErrNotConfigured
	}

	body, contentType, err := encodeUploads(map[string]Upload{
		FieldBankStatement:   bank,
		FieldInternalRecords: internal,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, body)
	if err != nil {
		return nil, fmt.Errorf("build reconcile request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	logger := logging.FromContext(ctx, s.logger)
	logger.Info("forwarding files to reconciliation service",
		zap.String("url", s.url),
		zap.String("bank_file", bank.Filename),
		zap.String("internal_file", internal.Filename),
	)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call reconciliation service: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read reconciliation response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		upErr := &UpstreamError{StatusCode: resp.StatusCode, Detail: upstreamDetail(data)}
		logger.Warn("reconciliation service rejected request", zap.Error(upErr))
		return nil, upErr
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("reconciliation service returned invalid JSON")
	}
	return json.RawMessage(data), nil
}

// encodeUploads writes the files in a fixed field order so requests are
// reproducible.
func encodeUploads(files map[string]Upload) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, field := range []string{FieldBankStatement, FieldInternalRecords} {
		f := files[field]
		part, err := w.CreateFormFile(field, f.Filename)
		if err != nil {
			return nil, "", fmt.Errorf("create %s part: %w", field, err)
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, "", fmt.Errorf("copy %s: %w", field, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

// upstreamDetail extracts FastAPI's {"detail": ...} message when present.
func upstreamDetail(data []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(payload.Detail, &s); err == nil {
		return s
	}
	return string(payload.Detail)
}
