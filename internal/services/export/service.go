package export

import (
	"context"
	"fmt"
	"io"
	"time"

	"bank-reconciliation-backend/internal/logging"
	"bank-reconciliation-backend/internal/metrics"
	"bank-reconciliation-backend/internal/models"

	"go.uber.org/zap"
)

type Format string

const (
	FormatExcel Format = "excel"
	FormatPDF   Format = "pdf"
)

// ParseFormat maps the ?type= query value to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatExcel, FormatPDF:
		return f, nil
	default:
		return "", &UnsupportedTypeError{Type: s}
	}
}

func (f Format) ContentType() string {
	if f == FormatExcel {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/pdf"
}

func (f Format) Extension() string {
	if f == FormatExcel {
		return "xlsx"
	}
	return "pdf"
}

func (f Format) Filename() string {
	return "reconciliation_report." + f.Extension()
}

func (f Format) ContentDisposition() string {
	return fmt.Sprintf("attachment; filename=%q", f.Filename())
}

type Options struct {
	// MaxRows caps the rows of any single section. Zero disables the cap.
	MaxRows int
}

type Service struct {
	maxRows int
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewService(opts Options, logger *zap.Logger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{maxRows: opts.MaxRows, logger: logger, metrics: m}
}

// Prepare composes the sections of report and enforces the row cap. It never
// writes output, so every error it returns is safe to report before a
// response is started.
func (s *Service) Prepare(ctx context.Context, format Format, report *models.ReconciliationReport) ([]Section, error) {
	if report == nil {
		return nil, &models.ValidationError{Reason: "report data is required"}
	}

	sections := ComposeSections(report)
	if s.maxRows > 0 {
		for _, sec := range sections {
			if len(sec.Rows) > s.maxRows {
				return nil, &models.ValidationError{
					Field:  sec.Title,
					Reason: fmt.Sprintf("%d rows, limit is %d", len(sec.Rows), s.maxRows),
					Err:    ErrReportTooLarge,
				}
			}
		}
	}

	logger := logging.FromContext(ctx, s.logger)
	for _, sec := range sections {
		logger.Debug("composed export section",
			zap.String("format", string(format)),
			zap.String("section", sec.Title),
			zap.Int("rows", len(sec.Rows)),
		)
	}
	return sections, nil
}

// Render writes sections to w in format.
func (s *Service) Render(ctx context.Context, format Format, sections []Section, w io.Writer) error {
	start := time.Now()

	var err error
	switch format {
	case FormatExcel:
		err = RenderSpreadsheet(w, sections)
	case FormatPDF:
		if n := unencodable(sections); n > 0 {
			logging.FromContext(ctx, s.logger).Debug("document drops characters outside cp1252",
				zap.Int("cells", n),
			)
		}
		err = RenderDocument(w, sections)
	default:
		err = &UnsupportedTypeError{Type: string(format)}
	}
	if err != nil {
		logging.FromContext(ctx, s.logger).Error("export render failed",
			zap.String("format", string(format)),
			zap.Error(err),
		)
		return fmt.Errorf("render %s: %w", format, err)
	}

	s.metrics.RecordRender(string(format), TotalRows(sections), time.Since(start))
	return nil
}

// Export prepares and renders report in one call.
func (s *Service) Export(ctx context.Context, format Format, report *models.ReconciliationReport, w io.Writer) error {
	sections, err := s.Prepare(ctx, format, report)
	if err != nil {
		return err
	}
	return s.Render(ctx, format, sections, w)
}

// RecordOutcome counts one export attempt. Prepare and Render never do, since
// only the caller knows how the response ended.
func (s *Service) RecordOutcome(format Format, outcome string) {
	s.metrics.RecordOutcome(string(format), outcome)
}
