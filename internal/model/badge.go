package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BadgeType string

const (
	BadgeBronze BadgeType = "bronze"
	BadgeSilver BadgeType = "silver"
	BadgeGold   BadgeType = "gold"
)

// BadgeRequirements holds the thresholds a user must reach to earn a badge.
// All present fields must be met (AND semantics); absent fields are ignored.
type BadgeRequirements struct {
	QuestionsCount       *int `json:"questions_count,omitempty"`
	AnswersCount         *int `json:"answers_count,omitempty"`
	AcceptedAnswersCount *int `json:"accepted_answers_count,omitempty"`
	Reputation           *int `json:"reputation,omitempty"`
	TotalVotes           *int `json:"total_votes,omitempty"`
	DaysRegistered       *int `json:"days_registered,omitempty"`
}

type Badge struct {
	ID           uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string            `gorm:"size:100;not null" json:"name"`
	Slug         string            `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Description  string            `gorm:"type:text" json:"description"`
	Icon         string            `gorm:"size:50" json:"icon"`
	Color        string            `gorm:"size:20" json:"color"`
	Type         BadgeType         `gorm:"size:20;not null;default:bronze" json:"type"`
	Requirements BadgeRequirements `gorm:"serializer:json" json:"requirements"`
	IsActive     bool              `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time         `gorm:"autoCreateTime" json:"created_at"`
}

func (b *Badge) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == uuid.Nil {
		b.ID, err = uuid.NewV7()
	}
	return
}

// UserBadge joins users to earned badges. The composite unique index makes
// concurrent award attempts collapse into a single row.
type UserBadge struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_badges_unique,priority:1" json:"user_id"`
	User     User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	BadgeID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_badges_unique,priority:2" json:"badge_id"`
	Badge    Badge     `gorm:"constraint:OnDelete:CASCADE" json:"badge"`
	EarnedAt time.Time `gorm:"not null" json:"earned_at"`
}

func (ub *UserBadge) TableName() string {
	return "user_badges"
}
