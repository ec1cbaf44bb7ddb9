package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Answer struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QuestionID   uuid.UUID `gorm:"type:uuid;not null;index" json:"question_id"`
	Question     *Question `gorm:"constraint:OnDelete:CASCADE" json:"question,omitempty"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User         User      `gorm:"constraint:OnDelete:CASCADE" json:"user"`
	BodyMarkdown string    `gorm:"type:text;not null" json:"body_markdown"`
	BodyHTML     string    `gorm:"type:text" json:"body_html"`
	Score        int       `gorm:"default:0;index" json:"score"`
	// Derived: true iff this answer is the question's accepted answer.
	IsAccepted bool      `gorm:"default:false" json:"is_accepted"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (a *Answer) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID, err = uuid.NewV7()
	}
	return
}
