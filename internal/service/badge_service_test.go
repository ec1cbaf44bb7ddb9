package service

import (
	"context"
	"testing"

	"github.com/knowshare/knowshare-api/internal/model"
	"github.com/knowshare/knowshare-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intRef(n int) *int {
	return &n
}

func TestCheckAndAwardFirstAnswer(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestBadgeService(db)
	ctx := context.Background()

	badge := createTestBadge(t, db, "first-answer", model.BadgeBronze,
		model.BadgeRequirements{AnswersCount: intRef(1)})

	asker := createTestUser(t, db, "asker")
	answerer := createTestUser(t, db, "answerer")
	question := createTestQuestion(t, db, asker, "Awardable")
	createTestAnswer(t, db, question, answerer)

	awarded, err := svc.CheckAndAward(ctx, answerer.ID)
	require.NoError(t, err)
	require.Len(t, awarded, 1)
	assert.Equal(t, badge.Slug, awarded[0].Slug)

	// A second evaluation never re-awards.
	awarded, err = svc.CheckAndAward(ctx, answerer.ID)
	require.NoError(t, err)
	assert.Empty(t, awarded)

	var count int64
	require.NoError(t, db.Model(&model.UserBadge{}).
		Where("user_id = ? AND badge_id = ?", answerer.ID, badge.ID).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCheckAndAwardRequiresAllThresholds(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestBadgeService(db)
	ctx := context.Background()

	createTestBadge(t, db, "established", model.BadgeGold, model.BadgeRequirements{
		QuestionsCount: intRef(1),
		Reputation:     intRef(1000),
	})

	asker := createTestUser(t, db, "asker")
	createTestQuestion(t, db, asker, "One question is not enough")

	awarded, err := svc.CheckAndAward(ctx, asker.ID)
	require.NoError(t, err)
	assert.Empty(t, awarded)

	// Crossing the remaining threshold completes the award.
	require.NoError(t, db.Model(&model.User{}).
		Where("id = ?", asker.ID).
		Update("reputation", 1000).Error)

	awarded, err = svc.CheckAndAward(ctx, asker.ID)
	require.NoError(t, err)
	require.Len(t, awarded, 1)
	assert.Equal(t, "established", awarded[0].Slug)
}

func TestCheckAndAwardIgnoresInactiveBadges(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestBadgeService(db)
	ctx := context.Background()

	badge := createTestBadge(t, db, "retired", model.BadgeBronze,
		model.BadgeRequirements{QuestionsCount: intRef(1)})
	require.NoError(t, db.Model(badge).Update("is_active", false).Error)

	asker := createTestUser(t, db, "asker")
	createTestQuestion(t, db, asker, "No retired badges")

	awarded, err := svc.CheckAndAward(ctx, asker.ID)
	require.NoError(t, err)
	assert.Empty(t, awarded)
}

func TestCheckAndAwardTotalVotesMetric(t *testing.T) {
	db := setupTestDB(t)
	badgeSvc := newTestBadgeService(db)
	voteSvc := NewVoteService(db, badgeSvc)
	ctx := context.Background()

	createTestBadge(t, db, "liked", model.BadgeSilver,
		model.BadgeRequirements{TotalVotes: intRef(2)})

	author := createTestUser(t, db, "author")
	question := createTestQuestion(t, db, author, "Vote totals span both types")
	answer := createTestAnswer(t, db, question, author)

	v1 := createTestUser(t, db, "v1")
	v2 := createTestUser(t, db, "v2")

	_, err := voteSvc.Apply(ctx, v1.ID, model.VotableRef{Type: model.VotableQuestion, ID: question.ID}, model.VoteActionUp)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&model.UserBadge{}).Where("user_id = ?", author.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count)

	// The second upvote lands on the answer; the metric sums across types.
	_, err = voteSvc.Apply(ctx, v2.ID, model.VotableRef{Type: model.VotableAnswer, ID: answer.ID}, model.VoteActionUp)
	require.NoError(t, err)

	require.NoError(t, db.Model(&model.UserBadge{}).Where("user_id = ?", author.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestListActiveByTypeValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestBadgeService(db)
	ctx := context.Background()

	createTestBadge(t, db, "bronze-one", model.BadgeBronze, model.BadgeRequirements{})
	createTestBadge(t, db, "gold-one", model.BadgeGold, model.BadgeRequirements{})

	badges, err := svc.ListActiveByType(ctx, model.BadgeGold)
	require.NoError(t, err)
	require.Len(t, badges, 1)
	assert.Equal(t, "gold-one", badges[0].Slug)

	_, err = svc.ListActiveByType(ctx, model.BadgeType("platinum"))
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestListUserBadgesOrdersGoldFirst(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestBadgeService(db)
	ctx := context.Background()

	createTestBadge(t, db, "starter", model.BadgeBronze,
		model.BadgeRequirements{QuestionsCount: intRef(1)})
	createTestBadge(t, db, "legend", model.BadgeGold,
		model.BadgeRequirements{QuestionsCount: intRef(1)})

	asker := createTestUser(t, db, "asker")
	createTestQuestion(t, db, asker, "Both badges at once")

	_, err := svc.CheckAndAward(ctx, asker.ID)
	require.NoError(t, err)

	held, err := svc.ListUserBadges(ctx, asker.ID)
	require.NoError(t, err)
	require.Len(t, held, 2)
	assert.Equal(t, "legend", held[0].Badge.Slug)
	assert.Equal(t, "starter", held[1].Badge.Slug)
}
