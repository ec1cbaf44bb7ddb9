package service

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/knowshare/knowshare-api/internal/model"
	"github.com/knowshare/knowshare-api/internal/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// In-memory sqlite gives every pooled connection its own database,
	// so keep the pool at a single connection.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.Role{},
		&model.User{},
		&model.Tag{},
		&model.Question{},
		&model.Answer{},
		&model.Vote{},
		&model.Badge{},
		&model.UserBadge{},
		&model.Notification{},
		&model.Report{},
	))

	return db
}

func newTestBadgeService(db *gorm.DB) BadgeService {
	return NewBadgeService(
		repository.NewBadgeRepository(db),
		repository.NewQuestionRepository(db),
		repository.NewAnswerRepository(db),
		repository.NewVoteRepository(db),
		repository.NewUserRepository(db),
	)
}

func createTestUser(t *testing.T, db *gorm.DB, name string) *model.User {
	t.Helper()

	user := &model.User{
		Name:         name,
		Email:        name + "@example.com",
		PasswordHash: "not-a-real-hash",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestQuestion(t *testing.T, db *gorm.DB, author *model.User, title string) *model.Question {
	t.Helper()

	question := &model.Question{
		UserID:       author.ID,
		Title:        title,
		Slug:         makeSlug(title),
		BodyMarkdown: "body of " + title,
		BodyHTML:     "<p>body of " + title + "</p>",
	}
	require.NoError(t, db.Create(question).Error)
	return question
}

func createTestAnswer(t *testing.T, db *gorm.DB, question *model.Question, author *model.User) *model.Answer {
	t.Helper()

	answer := &model.Answer{
		QuestionID:   question.ID,
		UserID:       author.ID,
		BodyMarkdown: "an answer",
		BodyHTML:     "<p>an answer</p>",
	}
	require.NoError(t, db.Create(answer).Error)
	return answer
}

func createTestBadge(t *testing.T, db *gorm.DB, slug string, badgeType model.BadgeType, req model.BadgeRequirements) *model.Badge {
	t.Helper()

	badge := &model.Badge{
		Name:         slug,
		Slug:         slug,
		Type:         badgeType,
		Requirements: req,
		IsActive:     true,
	}
	require.NoError(t, db.Create(badge).Error)
	return badge
}

func countVoteRows(t *testing.T, db *gorm.DB, voterID uuid.UUID, ref model.VotableRef) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(&model.Vote{}).
		Where("voter_id = ? AND votable_type = ? AND votable_id = ?", voterID, ref.Type, ref.ID).
		Count(&count).Error)
	return count
}
