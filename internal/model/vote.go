package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VotableType discriminates which entity table a vote points at.
type VotableType string

const (
	VotableQuestion VotableType = "question"
	VotableAnswer   VotableType = "answer"
)

// VotableRef is a tagged reference to a question or an answer.
type VotableRef struct {
	Type VotableType
	ID   uuid.UUID
}

// Vote is the ledger row: one user's stance on one votable.
// The composite unique index is the enforcement mechanism for
// at-most-one-vote-per-(voter, votable); application code relies on it
// rather than re-checking under a lock.
type Vote struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	VoterID     uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_votes_unique,priority:1" json:"voter_id"`
	Voter       User        `gorm:"foreignKey:VoterID;constraint:OnDelete:CASCADE" json:"-"`
	VotableType VotableType `gorm:"size:20;not null;uniqueIndex:idx_votes_unique,priority:2;index:idx_votes_lookup,priority:1" json:"votable_type"`
	VotableID   uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_votes_unique,priority:3;index:idx_votes_lookup,priority:2" json:"votable_id"`
	Value       int         `gorm:"not null" json:"value"` // +1 or -1
	CreatedAt   time.Time   `gorm:"autoCreateTime" json:"created_at"`
}

func (v *Vote) TableName() string {
	return "votes"
}

func (v *Vote) BeforeCreate(tx *gorm.DB) (err error) {
	if v.ID == uuid.Nil {
		v.ID, err = uuid.NewV7()
	}
	return
}

// VoteAction is the externally requested mutation on a vote.
type VoteAction string

const (
	VoteActionUp     VoteAction = "up"
	VoteActionDown   VoteAction = "down"
	VoteActionRemove VoteAction = "remove"
)
