package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/knowshare/knowshare-api/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AnswerRepository interface {
	Create(ctx context.Context, answer *model.Answer) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Answer, error)
	ListByAuthor(ctx context.Context, userID uuid.UUID) ([]model.Answer, error)
	Update(ctx context.Context, answer *model.Answer) error
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateScore(ctx context.Context, id uuid.UUID, score int) error
	ClearAccepted(ctx context.Context, questionID uuid.UUID) error
	MarkAccepted(ctx context.Context, id uuid.UUID) error
	CountByAuthor(ctx context.Context, userID uuid.UUID) (int64, error)
	CountAcceptedByAuthor(ctx context.Context, userID uuid.UUID) (int64, error)
}

type answerRepository struct {
	db *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) AnswerRepository {
	return &answerRepository{db: db}
}

func (r *answerRepository) Create(ctx context.Context, answer *model.Answer) error {
	return r.db.WithContext(ctx).Create(answer).Error
}

func (r *answerRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Answer, error) {
	var answer model.Answer
	err := r.db.WithContext(ctx).
		Preload("User").
		First(&answer, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &answer, nil
}

func (r *answerRepository) ListByAuthor(ctx context.Context, userID uuid.UUID) ([]model.Answer, error) {
	var answers []model.Answer
	err := r.db.WithContext(ctx).
		Preload("Question").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&answers).Error
	return answers, err
}

func (r *answerRepository) Update(ctx context.Context, answer *model.Answer) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(answer).Error
}

func (r *answerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Answer{}, "id = ?", id).Error
}

func (r *answerRepository) UpdateScore(ctx context.Context, id uuid.UUID, score int) error {
	return r.db.WithContext(ctx).
		Model(&model.Answer{}).
		Where("id = ?", id).
		Update("score", score).Error
}

// ClearAccepted resets is_accepted across all answers of the question. Paired
// with MarkAccepted inside one transaction to keep the at-most-one invariant.
func (r *answerRepository) ClearAccepted(ctx context.Context, questionID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.Answer{}).
		Where("question_id = ?", questionID).
		Update("is_accepted", false).Error
}

func (r *answerRepository) MarkAccepted(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.Answer{}).
		Where("id = ?", id).
		Update("is_accepted", true).Error
}

func (r *answerRepository) CountByAuthor(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Answer{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *answerRepository) CountAcceptedByAuthor(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Answer{}).
		Where("user_id = ? AND is_accepted = ?", userID, true).
		Count(&count).Error
	return count, err
}
