package reports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"bank-reconciliation-backend/internal/models"
	"bank-reconciliation-backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const PageSize = 10

var ErrReportNotFound = errors.New("report not found")

// Store persists saved reports. *repository.ReportRepository implements it.
type Store interface {
	Create(ctx context.Context, report *models.SavedReport) error
	List(ctx context.Context, offset, limit int) ([]models.SavedReport, int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.SavedReport, error)
}

type Pagination struct {
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
}

type Page struct {
	Reports    []models.SavedReport
	Pagination Pagination
}

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Save validates name and payload and stores them under a new ID.
func (s *Service) Save(ctx context.Context, name string, reportData json.RawMessage) (*models.SavedReport, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &models.ValidationError{Field: "name", Reason: "Please provide a name for the reconciliation report."}
	}
	if len([]rune(name)) > models.MaxReportNameLength {
		return nil, &models.ValidationError{
			Field:  "name",
			Reason: fmt.Sprintf("Report name cannot be more than %d characters.", models.MaxReportNameLength),
		}
	}
	if _, err := models.ParseReport(reportData); err != nil {
		return nil, err
	}

	report := &models.SavedReport{
		ID:         uuid.New(),
		Name:       name,
		ReportData: datatypes.JSON(reportData),
		CreatedAt:  s.now(),
	}
	if err := s.store.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("save report: %w", err)
	}
	return report, nil
}

// List returns the given 1-based page. Pages below 1 are treated as 1.
func (s *Service) List(ctx context.Context, page int) (*Page, error) {
	if page < 1 {
		page = 1
	}

	items, total, err := s.store.List(ctx, (page-1)*PageSize, PageSize)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	if items == nil {
		items = []models.SavedReport{}
	}

	return &Page{
		Reports: items,
		Pagination: Pagination{
			CurrentPage: page,
			TotalPages:  int(math.Ceil(float64(total) / PageSize)),
		},
	}, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.SavedReport, error) {
	report, err := s.store.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}
	return report, nil
}

// Load returns the decoded reconciliation report stored under id.
func (s *Service) Load(ctx context.Context, id uuid.UUID) (*models.ReconciliationReport, error) {
	saved, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return models.ParseReport(saved.ReportData)
}
