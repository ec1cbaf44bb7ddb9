package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReportableType string

const (
	ReportableQuestion ReportableType = "question"
	ReportableAnswer   ReportableType = "answer"
	ReportableUser     ReportableType = "user"
)

type ReportStatus string

const (
	ReportPending   ReportStatus = "pending"
	ReportReviewed  ReportStatus = "reviewed"
	ReportResolved  ReportStatus = "resolved"
	ReportDismissed ReportStatus = "dismissed"
)

// Report flags a question, answer or user for moderation. The composite
// unique index rejects a second report of the same target by the same user.
type Report struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ReporterID     uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_reports_unique,priority:1" json:"reporter_id"`
	Reporter       User           `gorm:"foreignKey:ReporterID;constraint:OnDelete:CASCADE" json:"reporter"`
	ReportableType ReportableType `gorm:"size:20;not null;uniqueIndex:idx_reports_unique,priority:2;index:idx_reports_lookup,priority:1" json:"reportable_type"`
	ReportableID   uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_reports_unique,priority:3;index:idx_reports_lookup,priority:2" json:"reportable_id"`
	Reason         string         `gorm:"size:30;not null" json:"reason"`
	Description    *string        `gorm:"type:text" json:"description,omitempty"`
	Status         ReportStatus   `gorm:"size:20;not null;default:pending;index" json:"status"`
	AdminNotes     *string        `gorm:"type:text" json:"admin_notes,omitempty"`
	ReviewerID     *uuid.UUID     `gorm:"type:uuid" json:"reviewer_id"`
	Reviewer       *User          `gorm:"foreignKey:ReviewerID;constraint:OnDelete:SET NULL" json:"reviewer,omitempty"`
	ReviewedAt     *time.Time     `json:"reviewed_at"`
	CreatedAt      time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
}

func (r *Report) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}
