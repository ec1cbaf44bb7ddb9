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

func newTestNotificationService(db *gorm.DB) NotificationService {
	return NewNotificationService(repository.NewNotificationRepository(db), nil)
}

func emitTestNotification(t *testing.T, svc NotificationService, recipient, actor *model.User) *model.Notification {
	t.Helper()

	notification := &model.Notification{
		UserID:  recipient.ID,
		ActorID: actor.ID,
		Type:    model.NotificationNewAnswer,
		Payload: model.NotificationPayload{Message: "someone answered"},
	}
	require.NoError(t, svc.Emit(context.Background(), notification))
	return notification
}

func TestMarkAsRead(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestNotificationService(db)
	ctx := context.Background()

	recipient := createTestUser(t, db, "recipient")
	actor := createTestUser(t, db, "actor")
	notification := emitTestNotification(t, svc, recipient, actor)

	count, err := svc.UnreadCount(ctx, recipient.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	require.NoError(t, svc.MarkAsRead(ctx, notification.ID, recipient.ID))

	count, err = svc.UnreadCount(ctx, recipient.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)

	// Already-read notifications stay read; repeating is a no-op.
	require.NoError(t, svc.MarkAsRead(ctx, notification.ID, recipient.ID))
}

func TestMarkAsReadGuards(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestNotificationService(db)
	ctx := context.Background()

	recipient := createTestUser(t, db, "recipient")
	actor := createTestUser(t, db, "actor")
	stranger := createTestUser(t, db, "stranger")
	notification := emitTestNotification(t, svc, recipient, actor)

	err := svc.MarkAsRead(ctx, notification.ID, stranger.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	err = svc.MarkAsRead(ctx, uuid.New(), recipient.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestMarkAllAsRead(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestNotificationService(db)
	ctx := context.Background()

	recipient := createTestUser(t, db, "recipient")
	actor := createTestUser(t, db, "actor")
	bystander := createTestUser(t, db, "bystander")

	emitTestNotification(t, svc, recipient, actor)
	emitTestNotification(t, svc, recipient, actor)
	emitTestNotification(t, svc, bystander, actor)

	require.NoError(t, svc.MarkAllAsRead(ctx, recipient.ID))

	count, err := svc.UnreadCount(ctx, recipient.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)

	// Other users' notifications are untouched.
	count, err = svc.UnreadCount(ctx, bystander.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestListNotifications(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestNotificationService(db)
	ctx := context.Background()

	recipient := createTestUser(t, db, "recipient")
	actor := createTestUser(t, db, "actor")

	first := emitTestNotification(t, svc, recipient, actor)
	emitTestNotification(t, svc, recipient, actor)
	require.NoError(t, svc.MarkAsRead(ctx, first.ID, recipient.ID))

	all, err := svc.List(ctx, recipient.ID, false, 20, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	unread, err := svc.List(ctx, recipient.ID, true, 20, 0)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.NotEqual(t, first.ID, unread[0].ID)
}
