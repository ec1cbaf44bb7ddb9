package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/knowshare/knowshare-api/internal/model"
	"github.com/knowshare/knowshare-api/internal/repository"
	"github.com/knowshare/knowshare-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestQuestionService(db *gorm.DB) QuestionService {
	return NewQuestionService(
		db,
		repository.NewQuestionRepository(db),
		repository.NewTagRepository(db),
		repository.NewUserRepository(db),
		NewNotificationService(repository.NewNotificationRepository(db), nil),
		newTestBadgeService(db),
		nil,
	)
}

func TestCreateQuestionRendersAndSlugs(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestQuestionService(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")

	question, err := svc.Create(ctx, author.ID, CreateQuestionRequest{
		Title:        "How do I parse JSON in Go?",
		BodyMarkdown: "Use **encoding/json**.<script>alert(1)</script>",
	})
	require.NoError(t, err)

	assert.Contains(t, question.Slug, "how-do-i-parse-json-in-go")
	assert.Contains(t, question.BodyHTML, "<strong>encoding/json</strong>")
	assert.NotContains(t, question.BodyHTML, "<script>")
}

func TestCreateQuestionAttachesRequestedTags(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestQuestionService(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&model.Tag{Name: "Go", Slug: "go"}).Error)
	require.NoError(t, db.Create(&model.Tag{Name: "JSON", Slug: "json"}).Error)
	require.NoError(t, db.Create(&model.Tag{Name: "Rust", Slug: "rust"}).Error)

	author := createTestUser(t, db, "author")

	question, err := svc.Create(ctx, author.ID, CreateQuestionRequest{
		Title:        "Tagged question",
		BodyMarkdown: "body",
		Tags:         []string{"go", "json", "does-not-exist"},
	})
	require.NoError(t, err)

	slugs := make([]string, 0, len(question.Tags))
	for _, tag := range question.Tags {
		slugs = append(slugs, tag.Slug)
	}
	assert.ElementsMatch(t, []string{"go", "json"}, slugs)
}

func TestUpdateQuestionOwnerOnly(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestQuestionService(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	intruder := createTestUser(t, db, "intruder")
	question := createTestQuestion(t, db, author, "Guarded question")

	newTitle := "Hijacked"
	_, err := svc.Update(ctx, question.ID, intruder.ID, UpdateQuestionRequest{Title: &newTitle})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	updated, err := svc.Update(ctx, question.ID, author.ID, UpdateQuestionRequest{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, "Hijacked", updated.Title)
}

func TestDeleteQuestionOwnerOnly(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestQuestionService(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	intruder := createTestUser(t, db, "intruder")
	question := createTestQuestion(t, db, author, "Deletable")

	err := svc.Delete(ctx, question.ID, intruder.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	require.NoError(t, svc.Delete(ctx, question.ID, author.ID))

	_, err = svc.GetByIDOrSlug(ctx, question.ID.String(), nil)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestSetBestAnswer(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestQuestionService(db)
	ctx := context.Background()

	asker := createTestUser(t, db, "asker")
	answerer := createTestUser(t, db, "answerer")
	question := createTestQuestion(t, db, asker, "Pick the best")
	answer := createTestAnswer(t, db, question, answerer)

	updated, err := svc.SetBestAnswer(ctx, question.ID, answer.ID, asker.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.AcceptedAnswerID)
	assert.Equal(t, answer.ID, *updated.AcceptedAnswerID)

	var gotAnswer model.Answer
	require.NoError(t, db.First(&gotAnswer, "id = ?", answer.ID).Error)
	assert.True(t, gotAnswer.IsAccepted)

	// Acceptance is worth reputation for the answer author.
	var gotAuthor model.User
	require.NoError(t, db.First(&gotAuthor, "id = ?", answerer.ID).Error)
	assert.Equal(t, 15, gotAuthor.Reputation)

	// The answer author is told their answer was accepted.
	var notifications []model.Notification
	require.NoError(t, db.Where("user_id = ?", answerer.ID).Find(&notifications).Error)
	require.Len(t, notifications, 1)
	assert.Equal(t, model.NotificationAnswerAccepted, notifications[0].Type)
	assert.Equal(t, asker.ID, notifications[0].ActorID)
}

func TestSetBestAnswerSwitchesAcceptance(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestQuestionService(db)
	ctx := context.Background()

	asker := createTestUser(t, db, "asker")
	first := createTestUser(t, db, "first")
	second := createTestUser(t, db, "second")
	question := createTestQuestion(t, db, asker, "Changed my mind")
	answerA := createTestAnswer(t, db, question, first)
	answerB := createTestAnswer(t, db, question, second)

	_, err := svc.SetBestAnswer(ctx, question.ID, answerA.ID, asker.ID)
	require.NoError(t, err)
	_, err = svc.SetBestAnswer(ctx, question.ID, answerB.ID, asker.ID)
	require.NoError(t, err)

	var accepted []model.Answer
	require.NoError(t, db.Where("question_id = ? AND is_accepted = ?", question.ID, true).Find(&accepted).Error)
	require.Len(t, accepted, 1)
	assert.Equal(t, answerB.ID, accepted[0].ID)

	// The dethroned author loses the acceptance share again.
	var gotFirst model.User
	require.NoError(t, db.First(&gotFirst, "id = ?", first.ID).Error)
	assert.Equal(t, 0, gotFirst.Reputation)

	var gotSecond model.User
	require.NoError(t, db.First(&gotSecond, "id = ?", second.ID).Error)
	assert.Equal(t, 15, gotSecond.Reputation)
}

func TestSetBestAnswerGuards(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestQuestionService(db)
	ctx := context.Background()

	asker := createTestUser(t, db, "asker")
	answerer := createTestUser(t, db, "answerer")
	bystander := createTestUser(t, db, "bystander")
	question := createTestQuestion(t, db, asker, "Guarded acceptance")
	otherQuestion := createTestQuestion(t, db, bystander, "Unrelated")
	answer := createTestAnswer(t, db, question, answerer)
	strayAnswer := createTestAnswer(t, db, otherQuestion, answerer)

	// Only the question owner may accept.
	_, err := svc.SetBestAnswer(ctx, question.ID, answer.ID, bystander.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	// The answer must belong to the question.
	_, err = svc.SetBestAnswer(ctx, question.ID, strayAnswer.ID, asker.ID)
	assert.ErrorIs(t, err, apperror.ErrBadRequest)

	_, err = svc.SetBestAnswer(ctx, question.ID, uuid.New(), asker.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	// Nothing was accepted along the way.
	var got model.Question
	require.NoError(t, db.First(&got, "id = ?", question.ID).Error)
	assert.Nil(t, got.AcceptedAnswerID)
}

func TestSetBestAnswerSelfAcceptSkipsNotification(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestQuestionService(db)
	ctx := context.Background()

	asker := createTestUser(t, db, "asker")
	question := createTestQuestion(t, db, asker, "Answering myself")
	answer := createTestAnswer(t, db, question, asker)

	_, err := svc.SetBestAnswer(ctx, question.ID, answer.ID, asker.ID)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&model.Notification{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestGetByIDOrSlug(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestQuestionService(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	question := createTestQuestion(t, db, author, "Lookup")
	createTestAnswer(t, db, question, author)

	bySlug, err := svc.GetByIDOrSlug(ctx, question.Slug, nil)
	require.NoError(t, err)
	assert.Equal(t, question.ID, bySlug.ID)
	assert.EqualValues(t, 1, bySlug.AnswersCount)

	byID, err := svc.GetByIDOrSlug(ctx, question.ID.String(), nil)
	require.NoError(t, err)
	assert.Equal(t, question.ID, byID.ID)

	_, err = svc.GetByIDOrSlug(ctx, "no-such-slug", nil)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
