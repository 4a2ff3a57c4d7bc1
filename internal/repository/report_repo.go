package repository

import (
	"context"
	"errors"

	"bank-reconciliation-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create inserts a saved report
func (r *ReportRepository) Create(ctx context.Context, report *models.SavedReport) error {
	return r.db.WithContext(ctx).Create(report).Error
}

// List returns one page of reports, newest first, without their payload
func (r *ReportRepository) List(ctx context.Context, offset, limit int) ([]models.SavedReport, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.SavedReport{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reports []models.SavedReport
	err := r.db.WithContext(ctx).
		Select("id", "name", "created_at").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&reports).Error
	return reports, total, err
}

// GetByID fetch a single report with its payload
func (r *ReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.SavedReport, error) {
	var report models.SavedReport
	err := r.db.WithContext(ctx).First(&report, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}
