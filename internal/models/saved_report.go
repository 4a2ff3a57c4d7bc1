package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const MaxReportNameLength = 100

type SavedReport struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"_id"`
	Name       string         `gorm:"size:100;not null" json:"name"`
	ReportData datatypes.JSON `json:"reportData,omitempty"`
	CreatedAt  time.Time      `gorm:"index" json:"createdAt"`
}
