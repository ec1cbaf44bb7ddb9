package service

import (
	"context"
	"testing"

	"github.com/knowshare/knowshare-api/internal/model"
	"github.com/knowshare/knowshare-api/internal/repository"
	"github.com/knowshare/knowshare-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedTagWithQuestions(t *testing.T, db *gorm.DB, slug string, questions int) *model.Tag {
	t.Helper()

	tag := &model.Tag{Name: slug, Slug: slug}
	require.NoError(t, db.Create(tag).Error)

	author := createTestUser(t, db, "author-"+slug)
	for i := 0; i < questions; i++ {
		question := createTestQuestion(t, db, author, slug+" question")
		require.NoError(t, db.Model(question).Association("Tags").Append(tag))
	}
	return tag
}

func TestTagGetBySlug(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTagService(repository.NewTagRepository(db))
	ctx := context.Background()

	seedTagWithQuestions(t, db, "golang", 3)

	detail, err := svc.GetBySlug(ctx, "golang", 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, detail.Total)
	assert.Len(t, detail.Questions, 2)
	assert.EqualValues(t, 3, detail.Tag.QuestionsCount)

	_, err = svc.GetBySlug(ctx, "missing", 1, 20)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestTagPopularOrdersByUsage(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTagService(repository.NewTagRepository(db))
	ctx := context.Background()

	seedTagWithQuestions(t, db, "busy", 3)
	seedTagWithQuestions(t, db, "quiet", 1)
	require.NoError(t, db.Create(&model.Tag{Name: "unused", Slug: "unused"}).Error)

	popular, err := svc.Popular(ctx, 10)
	require.NoError(t, err)
	require.Len(t, popular, 2)
	assert.Equal(t, "busy", popular[0].Slug)
	assert.Equal(t, "quiet", popular[1].Slug)
}
