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
	"github.com/knowshare/knowshare-api/pkg/markdown"
	"gorm.io/gorm"
)

type CreateAnswerRequest struct {
	BodyMarkdown string `json:"body_markdown" binding:"required"`
}

type UpdateAnswerRequest struct {
	BodyMarkdown string `json:"body_markdown" binding:"required"`
}

type AnswerService interface {
	Create(ctx context.Context, questionID uuid.UUID, userID uuid.UUID, req CreateAnswerRequest) (*model.Answer, error)
	Update(ctx context.Context, id uuid.UUID, userID uuid.UUID, req UpdateAnswerRequest) (*model.Answer, error)
	Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) error
	ListByAuthor(ctx context.Context, userID uuid.UUID) ([]model.Answer, error)
}

type answerService struct {
	answerRepo          repository.AnswerRepository
	questionRepo        repository.QuestionRepository
	userRepo            repository.UserRepository
	notificationService NotificationService
	badgeService        BadgeService
}

func NewAnswerService(
	answerRepo repository.AnswerRepository,
	questionRepo repository.QuestionRepository,
	userRepo repository.UserRepository,
	notificationService NotificationService,
	badgeService BadgeService,
) AnswerService {
	return &answerService{
		answerRepo:          answerRepo,
		questionRepo:        questionRepo,
		userRepo:            userRepo,
		notificationService: notificationService,
		badgeService:        badgeService,
	}
}

func (s *answerService) Create(ctx context.Context, questionID uuid.UUID, userID uuid.UUID, req CreateAnswerRequest) (*model.Answer, error) {
	question, err := s.questionRepo.FindByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("question %s: %w", questionID, apperror.ErrNotFound)
		}
		return nil, err
	}

	answer := &model.Answer{
		QuestionID:   question.ID,
		UserID:       userID,
		BodyMarkdown: req.BodyMarkdown,
		BodyHTML:     markdown.ToSafeHTML(req.BodyMarkdown),
	}
	if err := s.answerRepo.Create(ctx, answer); err != nil {
		return nil, fmt.Errorf("create answer: %w", err)
	}

	if question.UserID != userID {
		s.notifyNewAnswer(ctx, question, answer)
	}

	// Answer creation changes the answers_count metric, so re-evaluate
	// badges for the author right away.
	if _, err := s.badgeService.CheckAndAward(ctx, userID); err != nil {
		log.Printf("badge check after answer create failed for user %s: %v", userID, err)
	}

	return answer, nil
}

func (s *answerService) notifyNewAnswer(ctx context.Context, question *model.Question, answer *model.Answer) {
	author, err := s.userRepo.FindByID(ctx, answer.UserID)
	if err != nil {
		log.Printf("load answer author %s for notification failed: %v", answer.UserID, err)
		return
	}

	notification := &model.Notification{
		UserID:  question.UserID,
		ActorID: answer.UserID,
		Type:    model.NotificationNewAnswer,
		Payload: model.NotificationPayload{
			Message:       fmt.Sprintf("%s answered your question: %s", author.Name, question.Title),
			ActorName:     author.Name,
			ActorAvatar:   author.AvatarURL,
			QuestionID:    question.ID,
			QuestionSlug:  question.Slug,
			QuestionTitle: question.Title,
			AnswerID:      answer.ID,
		},
	}
	if err := s.notificationService.Emit(ctx, notification); err != nil {
		log.Printf("emit new_answer notification failed: %v", err)
	}
}

func (s *answerService) Update(ctx context.Context, id uuid.UUID, userID uuid.UUID, req UpdateAnswerRequest) (*model.Answer, error) {
	answer, err := s.answerRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("answer %s: %w", id, apperror.ErrNotFound)
		}
		return nil, err
	}
	if answer.UserID != userID {
		return nil, fmt.Errorf("only the answer owner can edit it: %w", apperror.ErrForbidden)
	}

	answer.BodyMarkdown = req.BodyMarkdown
	answer.BodyHTML = markdown.ToSafeHTML(req.BodyMarkdown)
	if err := s.answerRepo.Update(ctx, answer); err != nil {
		return nil, err
	}
	return answer, nil
}

func (s *answerService) Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	answer, err := s.answerRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("answer %s: %w", id, apperror.ErrNotFound)
		}
		return err
	}
	if answer.UserID != userID {
		return fmt.Errorf("only the answer owner can delete it: %w", apperror.ErrForbidden)
	}
	return s.answerRepo.Delete(ctx, id)
}

func (s *answerService) ListByAuthor(ctx context.Context, userID uuid.UUID) ([]model.Answer, error) {
	return s.answerRepo.ListByAuthor(ctx, userID)
}
