package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Tag struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name           string     `gorm:"size:100;not null" json:"name"`
	Slug           string     `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Description    *string    `gorm:"type:text" json:"description,omitempty"`
	Questions      []Question `gorm:"many2many:question_tags" json:"-"`
	QuestionsCount int64      `gorm:"-" json:"questions_count"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (t *Tag) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID, err = uuid.NewV7()
	}
	return
}
