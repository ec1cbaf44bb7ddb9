package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/knowshare/knowshare-api/internal/model"
	"gorm.io/gorm"
)

type TagRepository interface {
	List(ctx context.Context, search string) ([]model.Tag, error)
	ListAll(ctx context.Context) ([]model.Tag, error)
	Popular(ctx context.Context, limit int) ([]model.Tag, error)
	FindBySlug(ctx context.Context, slug string) (*model.Tag, error)
	FindBySlugs(ctx context.Context, slugs []string) ([]model.Tag, error)
	QuestionsForTag(ctx context.Context, tagID uuid.UUID, limit, offset int) ([]model.Question, int64, error)
	CountQuestions(ctx context.Context, tagID uuid.UUID) (int64, error)
}

type tagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) List(ctx context.Context, search string) ([]model.Tag, error) {
	query := r.db.WithContext(ctx).Model(&model.Tag{})
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR slug LIKE ?", like, like)
	}

	var tags []model.Tag
	if err := query.Order("name ASC").Find(&tags).Error; err != nil {
		return nil, err
	}
	return r.fillCounts(ctx, tags)
}

func (r *tagRepository) ListAll(ctx context.Context) ([]model.Tag, error) {
	var tags []model.Tag
	err := r.db.WithContext(ctx).Find(&tags).Error
	return tags, err
}

func (r *tagRepository) Popular(ctx context.Context, limit int) ([]model.Tag, error) {
	var tags []model.Tag
	if err := r.db.WithContext(ctx).Find(&tags).Error; err != nil {
		return nil, err
	}
	tags, err := r.fillCounts(ctx, tags)
	if err != nil {
		return nil, err
	}

	// keep only tags attached to at least one question, most used first
	popular := make([]model.Tag, 0, len(tags))
	for _, tag := range tags {
		if tag.QuestionsCount > 0 {
			popular = append(popular, tag)
		}
	}
	for i := 0; i < len(popular); i++ {
		for j := i + 1; j < len(popular); j++ {
			if popular[j].QuestionsCount > popular[i].QuestionsCount {
				popular[i], popular[j] = popular[j], popular[i]
			}
		}
	}
	if len(popular) > limit {
		popular = popular[:limit]
	}
	return popular, nil
}

func (r *tagRepository) FindBySlug(ctx context.Context, slug string) (*model.Tag, error) {
	var tag model.Tag
	err := r.db.WithContext(ctx).First(&tag, "slug = ?", slug).Error
	if err != nil {
		return nil, err
	}
	count, err := r.CountQuestions(ctx, tag.ID)
	if err != nil {
		return nil, err
	}
	tag.QuestionsCount = count
	return &tag, nil
}

func (r *tagRepository) FindBySlugs(ctx context.Context, slugs []string) ([]model.Tag, error) {
	var tags []model.Tag
	err := r.db.WithContext(ctx).Where("slug IN ?", slugs).Find(&tags).Error
	return tags, err
}

func (r *tagRepository) QuestionsForTag(ctx context.Context, tagID uuid.UUID, limit, offset int) ([]model.Question, int64, error) {
	base := r.db.WithContext(ctx).
		Model(&model.Question{}).
		Joins("JOIN question_tags ON question_tags.question_id = questions.id").
		Where("question_tags.tag_id = ?", tagID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var questions []model.Question
	err := base.
		Preload("User").
		Preload("Tags").
		Order("questions.score DESC").
		Order("questions.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&questions).Error
	return questions, total, err
}

func (r *tagRepository) CountQuestions(ctx context.Context, tagID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("question_tags").
		Where("tag_id = ?", tagID).
		Count(&count).Error
	return count, err
}

func (r *tagRepository) fillCounts(ctx context.Context, tags []model.Tag) ([]model.Tag, error) {
	type tagCount struct {
		TagID uuid.UUID
		Total int64
	}
	var counts []tagCount
	err := r.db.WithContext(ctx).
		Table("question_tags").
		Select("tag_id, COUNT(*) as total").
		Group("tag_id").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]int64, len(counts))
	for _, c := range counts {
		byID[c.TagID] = c.Total
	}
	for i := range tags {
		tags[i].QuestionsCount = byID[tags[i].ID]
	}
	return tags, nil
}
