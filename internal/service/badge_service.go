package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/knowshare/knowshare-api/internal/model"
	"github.com/knowshare/knowshare-api/internal/repository"
	"github.com/knowshare/knowshare-api/pkg/apperror"
	"gorm.io/gorm"
)

type BadgeService interface {
	// CheckAndAward evaluates every active badge the user does not hold yet
	// against freshly computed aggregates and returns only the badges awarded
	// by this call.
	CheckAndAward(ctx context.Context, userID uuid.UUID) ([]model.Badge, error)
	ListActive(ctx context.Context) ([]model.Badge, error)
	ListActiveByType(ctx context.Context, badgeType model.BadgeType) ([]model.Badge, error)
	GetBySlug(ctx context.Context, slug string) (*model.Badge, error)
	Stats(ctx context.Context) (repository.BadgeStats, error)
	ListUserBadges(ctx context.Context, userID uuid.UUID) ([]model.UserBadge, error)
}

type badgeService struct {
	badgeRepo    repository.BadgeRepository
	questionRepo repository.QuestionRepository
	answerRepo   repository.AnswerRepository
	voteRepo     repository.VoteRepository
	userRepo     repository.UserRepository
}

func NewBadgeService(
	badgeRepo repository.BadgeRepository,
	questionRepo repository.QuestionRepository,
	answerRepo repository.AnswerRepository,
	voteRepo repository.VoteRepository,
	userRepo repository.UserRepository,
) BadgeService {
	return &badgeService{
		badgeRepo:    badgeRepo,
		questionRepo: questionRepo,
		answerRepo:   answerRepo,
		voteRepo:     voteRepo,
		userRepo:     userRepo,
	}
}

// userMetrics are the live aggregates badge requirements are checked against.
type userMetrics struct {
	questionsCount       int
	answersCount         int
	acceptedAnswersCount int
	reputation           int
	totalVotes           int
	daysRegistered       int
}

func (s *badgeService) CheckAndAward(ctx context.Context, userID uuid.UUID) ([]model.Badge, error) {
	candidates, err := s.badgeRepo.ListUnheld(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list candidate badges: %w", err)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	metrics, err := s.collectMetrics(ctx, userID)
	if err != nil {
		return nil, err
	}

	var awarded []model.Badge
	for _, badge := range candidates {
		if !meetsRequirements(badge.Requirements, metrics) {
			continue
		}
		// The unique index on (user_id, badge_id) is the backstop for
		// concurrent evaluations; the loser of the race sees inserted=false.
		inserted, err := s.badgeRepo.Award(ctx, userID, badge.ID, time.Now())
		if err != nil {
			return awarded, fmt.Errorf("award badge %s: %w", badge.Slug, err)
		}
		if inserted {
			awarded = append(awarded, badge)
		}
	}
	return awarded, nil
}

func (s *badgeService) collectMetrics(ctx context.Context, userID uuid.UUID) (userMetrics, error) {
	var metrics userMetrics

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return metrics, fmt.Errorf("user %s: %w", userID, apperror.ErrNotFound)
		}
		return metrics, err
	}

	questions, err := s.questionRepo.CountByAuthor(ctx, userID)
	if err != nil {
		return metrics, err
	}
	answers, err := s.answerRepo.CountByAuthor(ctx, userID)
	if err != nil {
		return metrics, err
	}
	accepted, err := s.answerRepo.CountAcceptedByAuthor(ctx, userID)
	if err != nil {
		return metrics, err
	}
	questionVotes, err := s.voteRepo.SumForAuthorByType(ctx, userID, model.VotableQuestion)
	if err != nil {
		return metrics, err
	}
	answerVotes, err := s.voteRepo.SumForAuthorByType(ctx, userID, model.VotableAnswer)
	if err != nil {
		return metrics, err
	}

	metrics.questionsCount = int(questions)
	metrics.answersCount = int(answers)
	metrics.acceptedAnswersCount = int(accepted)
	metrics.reputation = user.Reputation
	metrics.totalVotes = questionVotes + answerVotes
	metrics.daysRegistered = int(time.Since(user.CreatedAt).Hours() / 24)

	return metrics, nil
}

// meetsRequirements applies AND semantics over the thresholds present in the
// requirements record; absent thresholds are ignored.
func meetsRequirements(req model.BadgeRequirements, metrics userMetrics) bool {
	if req.QuestionsCount != nil && metrics.questionsCount < *req.QuestionsCount {
		return false
	}
	if req.AnswersCount != nil && metrics.answersCount < *req.AnswersCount {
		return false
	}
	if req.AcceptedAnswersCount != nil && metrics.acceptedAnswersCount < *req.AcceptedAnswersCount {
		return false
	}
	if req.Reputation != nil && metrics.reputation < *req.Reputation {
		return false
	}
	if req.TotalVotes != nil && metrics.totalVotes < *req.TotalVotes {
		return false
	}
	if req.DaysRegistered != nil && metrics.daysRegistered < *req.DaysRegistered {
		return false
	}
	return true
}

func (s *badgeService) ListActive(ctx context.Context) ([]model.Badge, error) {
	return s.badgeRepo.ListActive(ctx)
}

func (s *badgeService) ListActiveByType(ctx context.Context, badgeType model.BadgeType) ([]model.Badge, error) {
	switch badgeType {
	case model.BadgeBronze, model.BadgeSilver, model.BadgeGold:
	default:
		return nil, fmt.Errorf("unknown badge type %q: %w", badgeType, apperror.ErrInvalidInput)
	}
	return s.badgeRepo.ListActiveByType(ctx, badgeType)
}

func (s *badgeService) GetBySlug(ctx context.Context, slug string) (*model.Badge, error) {
	badge, err := s.badgeRepo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("badge %s: %w", slug, apperror.ErrNotFound)
		}
		return nil, err
	}
	return badge, nil
}

func (s *badgeService) Stats(ctx context.Context) (repository.BadgeStats, error) {
	return s.badgeRepo.Stats(ctx)
}

func (s *badgeService) ListUserBadges(ctx context.Context, userID uuid.UUID) ([]model.UserBadge, error) {
	return s.badgeRepo.ListByUser(ctx, userID)
}
