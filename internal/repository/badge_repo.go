package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/knowshare/knowshare-api/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BadgeStats struct {
	TotalBadges  int64 `json:"total_badges"`
	BronzeBadges int64 `json:"bronze_badges"`
	SilverBadges int64 `json:"silver_badges"`
	GoldBadges   int64 `json:"gold_badges"`
}

type BadgeRepository interface {
	ListActive(ctx context.Context) ([]model.Badge, error)
	ListActiveByType(ctx context.Context, badgeType model.BadgeType) ([]model.Badge, error)
	FindBySlug(ctx context.Context, slug string) (*model.Badge, error)
	ListUnheld(ctx context.Context, userID uuid.UUID) ([]model.Badge, error)
	Award(ctx context.Context, userID uuid.UUID, badgeID uuid.UUID, earnedAt time.Time) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.UserBadge, error)
	Stats(ctx context.Context) (BadgeStats, error)
}

type badgeRepository struct {
	db *gorm.DB
}

func NewBadgeRepository(db *gorm.DB) BadgeRepository {
	return &badgeRepository{db: db}
}

func (r *badgeRepository) ListActive(ctx context.Context) ([]model.Badge, error) {
	var badges []model.Badge
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("type ASC").
		Order("name ASC").
		Find(&badges).Error
	return badges, err
}

func (r *badgeRepository) ListActiveByType(ctx context.Context, badgeType model.BadgeType) ([]model.Badge, error) {
	var badges []model.Badge
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND type = ?", true, badgeType).
		Order("name ASC").
		Find(&badges).Error
	return badges, err
}

func (r *badgeRepository) FindBySlug(ctx context.Context, slug string) (*model.Badge, error) {
	var badge model.Badge
	err := r.db.WithContext(ctx).First(&badge, "slug = ?", slug).Error
	if err != nil {
		return nil, err
	}
	return &badge, nil
}

// ListUnheld returns the active badges the user has not earned yet.
func (r *badgeRepository) ListUnheld(ctx context.Context, userID uuid.UUID) ([]model.Badge, error) {
	held := r.db.Model(&model.UserBadge{}).
		Select("badge_id").
		Where("user_id = ?", userID)

	var badges []model.Badge
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("id NOT IN (?)", held).
		Find(&badges).Error
	return badges, err
}

// Award inserts the (user, badge) pair. A concurrent award of the same pair
// hits the unique index and is reported as not-awarded rather than an error.
func (r *badgeRepository) Award(ctx context.Context, userID uuid.UUID, badgeID uuid.UUID, earnedAt time.Time) (bool, error) {
	userBadge := model.UserBadge{
		UserID:   userID,
		BadgeID:  badgeID,
		EarnedAt: earnedAt,
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "badge_id"}},
			DoNothing: true,
		}).
		Create(&userBadge)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListByUser orders earned badges gold, silver, bronze, then most recent first.
func (r *badgeRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.UserBadge, error) {
	var userBadges []model.UserBadge
	err := r.db.WithContext(ctx).
		Joins("JOIN badges ON badges.id = user_badges.badge_id").
		Where("user_badges.user_id = ?", userID).
		Order("CASE badges.type WHEN 'gold' THEN 0 WHEN 'silver' THEN 1 ELSE 2 END").
		Order("user_badges.earned_at DESC").
		Preload("Badge").
		Find(&userBadges).Error
	return userBadges, err
}

func (r *badgeRepository) Stats(ctx context.Context) (BadgeStats, error) {
	var stats BadgeStats
	base := r.db.WithContext(ctx).Model(&model.Badge{}).Where("is_active = ?", true)

	if err := base.Session(&gorm.Session{}).Count(&stats.TotalBadges).Error; err != nil {
		return stats, err
	}
	if err := base.Session(&gorm.Session{}).Where("type = ?", model.BadgeBronze).Count(&stats.BronzeBadges).Error; err != nil {
		return stats, err
	}
	if err := base.Session(&gorm.Session{}).Where("type = ?", model.BadgeSilver).Count(&stats.SilverBadges).Error; err != nil {
		return stats, err
	}
	err := base.Session(&gorm.Session{}).Where("type = ?", model.BadgeGold).Count(&stats.GoldBadges).Error
	return stats, err
}
