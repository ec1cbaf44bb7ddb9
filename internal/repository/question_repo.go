package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/knowshare/knowshare-api/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuestionFilter struct {
	Search   string
	TagSlugs []string
	Sort     string // "new", "top", "unanswered"
	Page     int
	Limit    int
}

type QuestionRepository interface {
	Create(ctx context.Context, question *model.Question) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Question, error)
	FindByIDOrSlug(ctx context.Context, idOrSlug string) (*model.Question, error)
	List(ctx context.Context, filter QuestionFilter) ([]model.Question, int64, error)
	ListByAuthor(ctx context.Context, userID uuid.UUID) ([]model.Question, error)
	Update(ctx context.Context, question *model.Question) error
	Delete(ctx context.Context, id uuid.UUID) error
	ReplaceTags(ctx context.Context, question *model.Question, tags []model.Tag) error
	UpdateScore(ctx context.Context, id uuid.UUID, score int) error
	SetAcceptedAnswer(ctx context.Context, questionID uuid.UUID, answerID uuid.UUID) error
	CountByAuthor(ctx context.Context, userID uuid.UUID) (int64, error)
	CountAnswers(ctx context.Context, questionID uuid.UUID) (int64, error)
	AddViews(ctx context.Context, id uuid.UUID, delta int) error
}

type questionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) Create(ctx context.Context, question *model.Question) error {
	return r.db.WithContext(ctx).Create(question).Error
}

func (r *questionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	var question model.Question
	err := r.db.WithContext(ctx).First(&question, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &question, nil
}

// FindByIDOrSlug loads a question with author, tags and answers. Answers are
// ordered by score descending, ties broken by age.
func (r *questionRepository) FindByIDOrSlug(ctx context.Context, idOrSlug string) (*model.Question, error) {
	query := r.db.WithContext(ctx).
		Preload("User").
		Preload("Tags").
		Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("score DESC").Order("created_at ASC")
		}).
		Preload("Answers.User")

	if id, err := uuid.Parse(idOrSlug); err == nil {
		query = query.Where("id = ?", id)
	} else {
		query = query.Where("slug = ?", idOrSlug)
	}

	var question model.Question
	if err := query.First(&question).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *questionRepository) List(ctx context.Context, filter QuestionFilter) ([]model.Question, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Question{})

	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where(
			"title LIKE ? OR body_markdown LIKE ? OR body_html LIKE ?",
			like, like, like,
		)
	}

	if len(filter.TagSlugs) > 0 {
		tagged := r.db.Model(&model.Tag{}).
			Select("question_tags.question_id").
			Joins("JOIN question_tags ON question_tags.tag_id = tags.id").
			Where("tags.slug IN ?", filter.TagSlugs)
		query = query.Where("id IN (?)", tagged)
	}

	switch filter.Sort {
	case "top":
		query = query.Order("score DESC")
	case "unanswered":
		answered := r.db.Model(&model.Answer{}).Select("question_id")
		query = query.Where("accepted_answer_id IS NULL").
			Where("id NOT IN (?)", answered).
			Order("created_at DESC")
	default:
		query = query.Order("created_at DESC")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	var questions []model.Question
	err := query.
		Preload("User").
		Preload("Tags").
		Limit(filter.Limit).
		Offset(offset).
		Find(&questions).Error
	return questions, total, err
}

func (r *questionRepository) ListByAuthor(ctx context.Context, userID uuid.UUID) ([]model.Question, error) {
	var questions []model.Question
	err := r.db.WithContext(ctx).
		Preload("Tags").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&questions).Error
	return questions, err
}

func (r *questionRepository) Update(ctx context.Context, question *model.Question) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(question).Error
}

func (r *questionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Question{}, "id = ?", id).Error
}

func (r *questionRepository) ReplaceTags(ctx context.Context, question *model.Question, tags []model.Tag) error {
	return r.db.WithContext(ctx).Model(question).Association("Tags").Replace(tags)
}

// UpdateScore persists a recomputed ledger sum onto the cached score column.
func (r *questionRepository) UpdateScore(ctx context.Context, id uuid.UUID, score int) error {
	return r.db.WithContext(ctx).
		Model(&model.Question{}).
		Where("id = ?", id).
		Update("score", score).Error
}

func (r *questionRepository) SetAcceptedAnswer(ctx context.Context, questionID uuid.UUID, answerID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.Question{}).
		Where("id = ?", questionID).
		Update("accepted_answer_id", answerID).Error
}

func (r *questionRepository) CountByAuthor(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Question{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *questionRepository) CountAnswers(ctx context.Context, questionID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Answer{}).
		Where("question_id = ?", questionID).
		Count(&count).Error
	return count, err
}

func (r *questionRepository) AddViews(ctx context.Context, id uuid.UUID, delta int) error {
	return r.db.WithContext(ctx).
		Model(&model.Question{}).
		Where("id = ?", id).
		Update("views", gorm.Expr("views + ?", delta)).Error
}
