package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/knowshare/knowshare-api/internal/model"
	"github.com/knowshare/knowshare-api/internal/repository"
	"github.com/knowshare/knowshare-api/pkg/apperror"
	"gorm.io/gorm"
)

// VoteResult is the vote endpoint response contract.
type VoteResult struct {
	Score  int `json:"score"`
	MyVote int `json:"my_vote"`
}

type VoteService interface {
	// Apply performs an up/down/remove action for one voter on one votable.
	// The ledger mutation, the score recompute and the reputation recompute
	// commit as a single transaction.
	Apply(ctx context.Context, voterID uuid.UUID, ref model.VotableRef, action model.VoteAction) (*VoteResult, error)
	// MyVote reports the voter's current stance: -1, 0 or +1.
	MyVote(ctx context.Context, voterID uuid.UUID, ref model.VotableRef) (int, error)
}

type voteService struct {
	db           *gorm.DB
	badgeService BadgeService
}

func NewVoteService(db *gorm.DB, badgeService BadgeService) VoteService {
	return &voteService{
		db:           db,
		badgeService: badgeService,
	}
}

func (s *voteService) Apply(ctx context.Context, voterID uuid.UUID, ref model.VotableRef, action model.VoteAction) (*VoteResult, error) {
	switch action {
	case model.VoteActionUp, model.VoteActionDown, model.VoteActionRemove:
	default:
		return nil, fmt.Errorf("unknown vote action %q: %w", action, apperror.ErrInvalidInput)
	}

	var (
		result   VoteResult
		authorID uuid.UUID
	)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		votes := repository.NewVoteRepository(tx)

		var err error
		authorID, err = resolveVotableAuthor(ctx, tx, ref)
		if err != nil {
			return err
		}

		switch action {
		case model.VoteActionUp:
			err = votes.Upsert(ctx, &model.Vote{
				VoterID:     voterID,
				VotableType: ref.Type,
				VotableID:   ref.ID,
				Value:       1,
			})
		case model.VoteActionDown:
			err = votes.Upsert(ctx, &model.Vote{
				VoterID:     voterID,
				VotableType: ref.Type,
				VotableID:   ref.ID,
				Value:       -1,
			})
		case model.VoteActionRemove:
			// removing a vote that does not exist is a no-op
			err = votes.Delete(ctx, voterID, ref)
		}
		if err != nil {
			return fmt.Errorf("mutate vote ledger: %w", err)
		}

		// The ledger is the source of truth; the score column is a cache
		// that is always overwritten with the full sum, never adjusted.
		score, err := votes.SumForVotable(ctx, ref)
		if err != nil {
			return fmt.Errorf("recompute score: %w", err)
		}
		if err := persistScore(ctx, tx, ref, score); err != nil {
			return fmt.Errorf("persist score: %w", err)
		}
		result.Score = score

		myVote, err := votes.FindDirection(ctx, voterID, ref)
		if err != nil {
			return err
		}
		result.MyVote = myVote

		return recomputeReputation(ctx, tx, authorID)
	})
	if err != nil {
		return nil, err
	}

	// The author's total_votes / reputation metrics may have crossed a badge
	// threshold. Awarding is idempotent, so a failed check is only logged.
	if _, err := s.badgeService.CheckAndAward(ctx, authorID); err != nil {
		log.Printf("badge check after vote failed for user %s: %v", authorID, err)
	}

	return &result, nil
}

func (s *voteService) MyVote(ctx context.Context, voterID uuid.UUID, ref model.VotableRef) (int, error) {
	return repository.NewVoteRepository(s.db).FindDirection(ctx, voterID, ref)
}

func resolveVotableAuthor(ctx context.Context, tx *gorm.DB, ref model.VotableRef) (uuid.UUID, error) {
	switch ref.Type {
	case model.VotableQuestion:
		question, err := repository.NewQuestionRepository(tx).FindByID(ctx, ref.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return uuid.Nil, fmt.Errorf("question %s: %w", ref.ID, apperror.ErrNotFound)
			}
			return uuid.Nil, err
		}
		return question.UserID, nil
	case model.VotableAnswer:
		answer, err := repository.NewAnswerRepository(tx).FindByID(ctx, ref.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return uuid.Nil, fmt.Errorf("answer %s: %w", ref.ID, apperror.ErrNotFound)
			}
			return uuid.Nil, err
		}
		return answer.UserID, nil
	default:
		return uuid.Nil, fmt.Errorf("unknown votable type %q: %w", ref.Type, apperror.ErrInvalidInput)
	}
}

func persistScore(ctx context.Context, tx *gorm.DB, ref model.VotableRef, score int) error {
	if ref.Type == model.VotableQuestion {
		return repository.NewQuestionRepository(tx).UpdateScore(ctx, ref.ID, score)
	}
	return repository.NewAnswerRepository(tx).UpdateScore(ctx, ref.ID, score)
}
