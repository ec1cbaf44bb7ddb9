package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/knowshare/knowshare-api/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VoteRepository is the vote ledger: the authoritative record that cached
// scores are derived from.
type VoteRepository interface {
	Upsert(ctx context.Context, vote *model.Vote) error
	Delete(ctx context.Context, voterID uuid.UUID, ref model.VotableRef) error
	SumForVotable(ctx context.Context, ref model.VotableRef) (int, error)
	FindDirection(ctx context.Context, voterID uuid.UUID, ref model.VotableRef) (int, error)
	SumForAuthorByType(ctx context.Context, userID uuid.UUID, votableType model.VotableType) (int, error)
	CountForVotable(ctx context.Context, voterID uuid.UUID, ref model.VotableRef) (int64, error)
}

type voteRepository struct {
	db *gorm.DB
}

func NewVoteRepository(db *gorm.DB) VoteRepository {
	return &voteRepository{db: db}
}

// Upsert inserts a vote or flips the value of the existing row in place.
// The unique index on (voter_id, votable_type, votable_id) serializes
// concurrent votes by the same user on the same votable.
func (r *voteRepository) Upsert(ctx context.Context, vote *model.Vote) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "voter_id"}, {Name: "votable_type"}, {Name: "votable_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"value"}),
		}).
		Create(vote).Error
}

func (r *voteRepository) Delete(ctx context.Context, voterID uuid.UUID, ref model.VotableRef) error {
	return r.db.WithContext(ctx).
		Where("voter_id = ? AND votable_type = ? AND votable_id = ?", voterID, ref.Type, ref.ID).
		Delete(&model.Vote{}).Error
}

func (r *voteRepository) SumForVotable(ctx context.Context, ref model.VotableRef) (int, error) {
	var sum int64
	err := r.db.WithContext(ctx).
		Model(&model.Vote{}).
		Select("COALESCE(SUM(value), 0)").
		Where("votable_type = ? AND votable_id = ?", ref.Type, ref.ID).
		Scan(&sum).Error
	return int(sum), err
}

// FindDirection returns -1, 0 or +1 for the voter's current stance.
func (r *voteRepository) FindDirection(ctx context.Context, voterID uuid.UUID, ref model.VotableRef) (int, error) {
	var vote model.Vote
	err := r.db.WithContext(ctx).
		Where("voter_id = ? AND votable_type = ? AND votable_id = ?", voterID, ref.Type, ref.ID).
		First(&vote).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, nil
		}
		return 0, err
	}
	return vote.Value, nil
}

// SumForAuthorByType sums vote values across every votable of the given type
// written by the user. Feeds the total_votes badge metric and reputation.
func (r *voteRepository) SumForAuthorByType(ctx context.Context, userID uuid.UUID, votableType model.VotableType) (int, error) {
	owned := r.db.Model(&model.Question{}).Select("id").Where("user_id = ?", userID)
	if votableType == model.VotableAnswer {
		owned = r.db.Model(&model.Answer{}).Select("id").Where("user_id = ?", userID)
	}

	var sum int64
	err := r.db.WithContext(ctx).
		Model(&model.Vote{}).
		Select("COALESCE(SUM(value), 0)").
		Where("votable_type = ? AND votable_id IN (?)", votableType, owned).
		Scan(&sum).Error
	return int(sum), err
}

func (r *voteRepository) CountForVotable(ctx context.Context, voterID uuid.UUID, ref model.VotableRef) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Vote{}).
		Where("voter_id = ? AND votable_type = ? AND votable_id = ?", voterID, ref.Type, ref.ID).
		Count(&count).Error
	return count, err
}
