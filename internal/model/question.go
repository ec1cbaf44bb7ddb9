package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Question struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User         User       `gorm:"constraint:OnDelete:CASCADE" json:"user"`
	Title        string     `gorm:"size:255;not null" json:"title"`
	BodyMarkdown string     `gorm:"type:text;not null" json:"body_markdown"`
	BodyHTML     string     `gorm:"type:text" json:"body_html"`
	Slug         string     `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	// Denormalized cache of the vote ledger sum; never incremented in place.
	Score            int        `gorm:"default:0;index" json:"score"`
	Views            int        `gorm:"default:0" json:"views"`
	AcceptedAnswerID *uuid.UUID `gorm:"type:uuid" json:"accepted_answer_id"`
	IsClosed         bool       `gorm:"default:false" json:"is_closed"`
	Tags             []Tag      `gorm:"many2many:question_tags;constraint:OnDelete:CASCADE" json:"tags,omitempty"`
	Answers          []Answer   `gorm:"foreignKey:QuestionID" json:"answers,omitempty"`
	AnswersCount     int64      `gorm:"-" json:"answers_count"`
	CreatedAt        time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (q *Question) BeforeCreate(tx *gorm.DB) (err error) {
	if q.ID == uuid.Nil {
		q.ID, err = uuid.NewV7()
	}
	return
}
