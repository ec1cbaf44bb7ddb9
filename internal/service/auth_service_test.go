package service

import (
	"context"
	"testing"
	"time"

	"github.com/knowshare/knowshare-api/internal/repository"
	"github.com/knowshare/knowshare-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestAuthService(db *gorm.DB) AuthService {
	return NewAuthService(
		repository.NewUserRepository(db),
		repository.NewQuestionRepository(db),
		repository.NewAnswerRepository(db),
		repository.NewBadgeRepository(db),
		"test-secret",
		time.Hour,
	)
}

func TestRegisterAndLogin(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(db)
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterRequest{
		Name:     "Dana",
		Email:    "dana@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, registered.Token)
	assert.NotEqual(t, "supersecret", registered.User.PasswordHash)

	loggedIn, err := svc.Login(ctx, LoginRequest{
		Email:    "dana@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, loggedIn.User.ID)

	subject, err := svc.ParseToken(loggedIn.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, subject)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(db)
	ctx := context.Background()

	req := RegisterRequest{Name: "Dana", Email: "dana@example.com", Password: "supersecret"}
	_, err := svc.Register(ctx, req)
	require.NoError(t, err)

	_, err = svc.Register(ctx, req)
	assert.ErrorIs(t, err, apperror.ErrDuplicate)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(db)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{
		Name:     "Dana",
		Email:    "dana@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{Email: "dana@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	_, err = svc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "supersecret"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestParseTokenRejectsForgedToken(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(db)

	_, err := svc.ParseToken("not-a-token")
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	other := NewAuthService(
		repository.NewUserRepository(db),
		repository.NewQuestionRepository(db),
		repository.NewAnswerRepository(db),
		repository.NewBadgeRepository(db),
		"different-secret",
		time.Hour,
	)
	registered, err := other.Register(context.Background(), RegisterRequest{
		Name:     "Eve",
		Email:    "eve@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)

	_, err = svc.ParseToken(registered.Token)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestMeAggregatesActivity(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(db)
	ctx := context.Background()

	user := createTestUser(t, db, "dana")
	other := createTestUser(t, db, "other")
	question := createTestQuestion(t, db, user, "My question")
	otherQuestion := createTestQuestion(t, db, other, "Their question")
	createTestAnswer(t, db, otherQuestion, user)
	accepted := createTestAnswer(t, db, question, user)
	require.NoError(t, db.Model(accepted).Update("is_accepted", true).Error)

	profile, err := svc.Me(ctx, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, profile.QuestionsCount)
	assert.EqualValues(t, 2, profile.AnswersCount)
	assert.EqualValues(t, 1, profile.AcceptedAnswersCount)
}

func TestUpdateMe(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(db)
	ctx := context.Background()

	user := createTestUser(t, db, "dana")

	bio := "Gopher since 2015"
	updated, err := svc.UpdateMe(ctx, user.ID, UpdateProfileRequest{Bio: &bio})
	require.NoError(t, err)
	require.NotNil(t, updated.Bio)
	assert.Equal(t, bio, *updated.Bio)
	assert.Equal(t, "dana", updated.Name)
}
