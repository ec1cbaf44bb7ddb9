package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/knowshare/knowshare-api/internal/model"
	"github.com/knowshare/knowshare-api/internal/repository"
	"github.com/knowshare/knowshare-api/pkg/apperror"
	"gorm.io/gorm"
)

// TagDetail pairs a tag with a page of its questions.
type TagDetail struct {
	Tag       *model.Tag       `json:"tag"`
	Questions []model.Question `json:"questions"`
	Total     int64            `json:"total"`
	Page      int              `json:"page"`
	Limit     int              `json:"limit"`
}

type TagService interface {
	List(ctx context.Context, search string) ([]model.Tag, error)
	Popular(ctx context.Context, limit int) ([]model.Tag, error)
	GetBySlug(ctx context.Context, slug string, page, limit int) (*TagDetail, error)
}

type tagService struct {
	tagRepo repository.TagRepository
}

func NewTagService(tagRepo repository.TagRepository) TagService {
	return &tagService{tagRepo: tagRepo}
}

func (s *tagService) List(ctx context.Context, search string) ([]model.Tag, error) {
	tags, err := s.tagRepo.List(ctx, search)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

func (s *tagService) Popular(ctx context.Context, limit int) ([]model.Tag, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	tags, err := s.tagRepo.Popular(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("popular tags: %w", err)
	}
	return tags, nil
}

func (s *tagService) GetBySlug(ctx context.Context, slug string, page, limit int) (*TagDetail, error) {
	tag, err := s.tagRepo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("tag not found: %w", apperror.ErrNotFound)
		}
		return nil, fmt.Errorf("find tag: %w", err)
	}

	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	questions, total, err := s.tagRepo.QuestionsForTag(ctx, tag.ID, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("questions for tag: %w", err)
	}

	count, err := s.tagRepo.CountQuestions(ctx, tag.ID)
	if err != nil {
		return nil, fmt.Errorf("count tag questions: %w", err)
	}
	tag.QuestionsCount = count

	return &TagDetail{
		Tag:       tag,
		Questions: questions,
		Total:     total,
		Page:      page,
		Limit:     limit,
	}, nil
}
