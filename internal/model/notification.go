package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	NotificationAnswerAccepted = "answer_accepted"
	NotificationNewAnswer      = "new_answer"
)

// NotificationPayload is the structured data rendered by clients.
type NotificationPayload struct {
	Message       string    `json:"message"`
	ActorName     string    `json:"actor_name"`
	ActorAvatar   *string   `json:"actor_avatar,omitempty"`
	QuestionID    uuid.UUID `json:"question_id"`
	QuestionSlug  string    `json:"question_slug"`
	QuestionTitle string    `json:"question_title"`
	AnswerID      uuid.UUID `json:"answer_id"`
}

type Notification struct {
	ID        uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID           `gorm:"type:uuid;not null;index" json:"user_id"` // recipient
	ActorID   uuid.UUID           `gorm:"type:uuid;not null" json:"actor_id"`      // who triggered it
	Type      string              `gorm:"size:50;not null" json:"type"`
	Payload   NotificationPayload `gorm:"serializer:json" json:"payload"`
	ReadAt    *time.Time          `json:"read_at"`
	CreatedAt time.Time           `gorm:"autoCreateTime;index" json:"created_at"`

	Actor *User `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID, err = uuid.NewV7()
	}
	return
}
