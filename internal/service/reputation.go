package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/knowshare/knowshare-api/internal/model"
	"github.com/knowshare/knowshare-api/internal/repository"
	"gorm.io/gorm"
)

// Reputation weights. Reputation is a pure derivation from the vote ledger
// and the acceptance state, recomputed in full whenever either changes.
const (
	reputationPerQuestionVote = 5
	reputationPerAnswerVote   = 10
	reputationPerAcceptance   = 15
)

func recomputeReputation(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	votes := repository.NewVoteRepository(tx)
	answers := repository.NewAnswerRepository(tx)

	questionVotes, err := votes.SumForAuthorByType(ctx, userID, model.VotableQuestion)
	if err != nil {
		return fmt.Errorf("sum question votes: %w", err)
	}
	answerVotes, err := votes.SumForAuthorByType(ctx, userID, model.VotableAnswer)
	if err != nil {
		return fmt.Errorf("sum answer votes: %w", err)
	}
	accepted, err := answers.CountAcceptedByAuthor(ctx, userID)
	if err != nil {
		return fmt.Errorf("count accepted answers: %w", err)
	}

	reputation := reputationPerQuestionVote*questionVotes +
		reputationPerAnswerVote*answerVotes +
		reputationPerAcceptance*int(accepted)

	return repository.NewUserRepository(tx).UpdateReputation(ctx, userID, reputation)
}
