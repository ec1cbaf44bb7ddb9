package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/knowshare/knowshare-api/internal/model"
	"github.com/knowshare/knowshare-api/internal/repository"
	"github.com/knowshare/knowshare-api/pkg/apperror"
	"github.com/knowshare/knowshare-api/pkg/markdown"
	"gorm.io/gorm"
)

const maxAutoTags = 5

type CreateQuestionRequest struct {
	Title        string   `json:"title" binding:"required,max=255"`
	BodyMarkdown string   `json:"body_markdown" binding:"required"`
	Tags         []string `json:"tags"`
}

type UpdateQuestionRequest struct {
	Title        *string `json:"title" binding:"omitempty,max=255"`
	BodyMarkdown *string `json:"body_markdown"`
}

type PagedQuestions struct {
	Items []model.Question `json:"items"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

type QuestionService interface {
	Create(ctx context.Context, userID uuid.UUID, req CreateQuestionRequest) (*model.Question, error)
	List(ctx context.Context, filter repository.QuestionFilter) (*PagedQuestions, error)
	GetByIDOrSlug(ctx context.Context, idOrSlug string, viewerID *uuid.UUID) (*model.Question, error)
	Update(ctx context.Context, id uuid.UUID, userID uuid.UUID, req UpdateQuestionRequest) (*model.Question, error)
	Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) error
	// SetBestAnswer marks one answer of the question as accepted. Only the
	// question owner may do this; re-acceptance of a different answer is
	// allowed any number of times.
	SetBestAnswer(ctx context.Context, questionID uuid.UUID, answerID uuid.UUID, actingUserID uuid.UUID) (*model.Question, error)
	ListByAuthor(ctx context.Context, userID uuid.UUID) ([]model.Question, error)
}

type questionService struct {
	db                  *gorm.DB
	questionRepo        repository.QuestionRepository
	tagRepo             repository.TagRepository
	userRepo            repository.UserRepository
	notificationService NotificationService
	badgeService        BadgeService
	viewService         ViewService
}

func NewQuestionService(
	db *gorm.DB,
	questionRepo repository.QuestionRepository,
	tagRepo repository.TagRepository,
	userRepo repository.UserRepository,
	notificationService NotificationService,
	badgeService BadgeService,
	viewService ViewService,
) QuestionService {
	return &questionService{
		db:                  db,
		questionRepo:        questionRepo,
		tagRepo:             tagRepo,
		userRepo:            userRepo,
		notificationService: notificationService,
		badgeService:        badgeService,
		viewService:         viewService,
	}
}

func (s *questionService) Create(ctx context.Context, userID uuid.UUID, req CreateQuestionRequest) (*model.Question, error) {
	question := &model.Question{
		UserID:       userID,
		Title:        req.Title,
		BodyMarkdown: req.BodyMarkdown,
		BodyHTML:     markdown.ToSafeHTML(req.BodyMarkdown),
		Slug:         makeSlug(req.Title),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		questions := repository.NewQuestionRepository(tx)
		if err := questions.Create(ctx, question); err != nil {
			return fmt.Errorf("create question: %w", err)
		}

		tags, err := s.resolveTags(ctx, repository.NewTagRepository(tx), req)
		if err != nil {
			return err
		}
		if len(tags) > 0 {
			if err := questions.ReplaceTags(ctx, question, tags); err != nil {
				return fmt.Errorf("attach tags: %w", err)
			}
			question.Tags = tags
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.badgeService.CheckAndAward(ctx, userID); err != nil {
		log.Printf("badge check after question create failed for user %s: %v", userID, err)
	}

	return question, nil
}

// resolveTags maps the requested tag slugs to existing tags. When no tags
// were requested, fall back to matching known tag names against the title
// and body, capped at maxAutoTags.
func (s *questionService) resolveTags(ctx context.Context, tagRepo repository.TagRepository, req CreateQuestionRequest) ([]model.Tag, error) {
	slugs := make([]string, 0, len(req.Tags))
	seen := make(map[string]bool)
	for _, slug := range req.Tags {
		slug = strings.TrimSpace(slug)
		if slug == "" || seen[slug] {
			continue
		}
		seen[slug] = true
		slugs = append(slugs, slug)
	}

	if len(slugs) > 0 {
		return tagRepo.FindBySlugs(ctx, slugs)
	}

	all, err := tagRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	haystack := strings.ToLower(req.Title + " " + req.BodyMarkdown)
	var matched []model.Tag
	for _, tag := range all {
		if strings.Contains(haystack, strings.ToLower(tag.Slug)) ||
			strings.Contains(haystack, strings.ToLower(tag.Name)) {
			matched = append(matched, tag)
			if len(matched) == maxAutoTags {
				break
			}
		}
	}
	return matched, nil
}

func (s *questionService) List(ctx context.Context, filter repository.QuestionFilter) (*PagedQuestions, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}

	questions, total, err := s.questionRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range questions {
		count, err := s.questionRepo.CountAnswers(ctx, questions[i].ID)
		if err != nil {
			return nil, err
		}
		questions[i].AnswersCount = count
	}

	return &PagedQuestions{
		Items: questions,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *questionService) GetByIDOrSlug(ctx context.Context, idOrSlug string, viewerID *uuid.UUID) (*model.Question, error) {
	question, err := s.questionRepo.FindByIDOrSlug(ctx, idOrSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("question %s: %w", idOrSlug, apperror.ErrNotFound)
		}
		return nil, err
	}

	count, err := s.questionRepo.CountAnswers(ctx, question.ID)
	if err != nil {
		return nil, err
	}
	question.AnswersCount = count

	if s.viewService != nil && viewerID != nil {
		if err := s.viewService.IncrementView(ctx, question.ID, *viewerID); err != nil {
			log.Printf("view increment failed for question %s: %v", question.ID, err)
		}
	}

	return question, nil
}

func (s *questionService) Update(ctx context.Context, id uuid.UUID, userID uuid.UUID, req UpdateQuestionRequest) (*model.Question, error) {
	question, err := s.questionRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("question %s: %w", id, apperror.ErrNotFound)
		}
		return nil, err
	}
	if question.UserID != userID {
		return nil, fmt.Errorf("only the question owner can edit it: %w", apperror.ErrForbidden)
	}

	if req.Title != nil {
		question.Title = *req.Title
	}
	if req.BodyMarkdown != nil {
		question.BodyMarkdown = *req.BodyMarkdown
		question.BodyHTML = markdown.ToSafeHTML(*req.BodyMarkdown)
	}

	if err := s.questionRepo.Update(ctx, question); err != nil {
		return nil, err
	}
	return question, nil
}

func (s *questionService) Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	question, err := s.questionRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("question %s: %w", id, apperror.ErrNotFound)
		}
		return err
	}
	if question.UserID != userID {
		return fmt.Errorf("only the question owner can delete it: %w", apperror.ErrForbidden)
	}
	return s.questionRepo.Delete(ctx, id)
}

func (s *questionService) SetBestAnswer(ctx context.Context, questionID uuid.UUID, answerID uuid.UUID, actingUserID uuid.UUID) (*model.Question, error) {
	var (
		question     *model.Question
		answerAuthor uuid.UUID
	)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		questions := repository.NewQuestionRepository(tx)
		answers := repository.NewAnswerRepository(tx)

		var err error
		question, err = questions.FindByID(ctx, questionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("question %s: %w", questionID, apperror.ErrNotFound)
			}
			return err
		}
		if question.UserID != actingUserID {
			return fmt.Errorf("only the question owner can accept an answer: %w", apperror.ErrForbidden)
		}
		previousAnswerID := question.AcceptedAnswerID

		answer, err := answers.FindByID(ctx, answerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("answer %s: %w", answerID, apperror.ErrNotFound)
			}
			return err
		}
		if answer.QuestionID != question.ID {
			return fmt.Errorf("answer does not belong to this question: %w", apperror.ErrBadRequest)
		}
		answerAuthor = answer.UserID

		// Clear-then-set keeps at most one accepted answer per question,
		// and the whole flip commits atomically with accepted_answer_id.
		if err := answers.ClearAccepted(ctx, question.ID); err != nil {
			return err
		}
		if err := answers.MarkAccepted(ctx, answer.ID); err != nil {
			return err
		}
		if err := questions.SetAcceptedAnswer(ctx, question.ID, answer.ID); err != nil {
			return err
		}
		question.AcceptedAnswerID = &answer.ID

		// A switched acceptance takes the share away from the previous
		// answer's author, so their reputation needs recomputing as well.
		if previousAnswerID != nil && *previousAnswerID != answer.ID {
			previous, err := answers.FindByID(ctx, *previousAnswerID)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			if err == nil && previous.UserID != answerAuthor {
				if err := recomputeReputation(ctx, tx, previous.UserID); err != nil {
					return err
				}
			}
		}

		return recomputeReputation(ctx, tx, answerAuthor)
	})
	if err != nil {
		return nil, err
	}

	if answerAuthor != actingUserID {
		s.notifyAccepted(ctx, question, answerID, answerAuthor, actingUserID)
	}

	// The answer author's accepted-answer count may have crossed a threshold.
	if _, err := s.badgeService.CheckAndAward(ctx, answerAuthor); err != nil {
		log.Printf("badge check after acceptance failed for user %s: %v", answerAuthor, err)
	}

	return question, nil
}

func (s *questionService) notifyAccepted(ctx context.Context, question *model.Question, answerID uuid.UUID, recipientID uuid.UUID, actorID uuid.UUID) {
	actor, err := s.userRepo.FindByID(ctx, actorID)
	if err != nil {
		log.Printf("load actor %s for notification failed: %v", actorID, err)
		return
	}

	notification := &model.Notification{
		UserID:  recipientID,
		ActorID: actorID,
		Type:    model.NotificationAnswerAccepted,
		Payload: model.NotificationPayload{
			Message:       fmt.Sprintf("%s accepted your answer to: %s", actor.Name, question.Title),
			ActorName:     actor.Name,
			ActorAvatar:   actor.AvatarURL,
			QuestionID:    question.ID,
			QuestionSlug:  question.Slug,
			QuestionTitle: question.Title,
			AnswerID:      answerID,
		},
	}
	if err := s.notificationService.Emit(ctx, notification); err != nil {
		log.Printf("emit answer_accepted notification failed: %v", err)
	}
}

func (s *questionService) ListByAuthor(ctx context.Context, userID uuid.UUID) ([]model.Question, error) {
	return s.questionRepo.ListByAuthor(ctx, userID)
}
