package service

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/knowshare/knowshare-api/internal/repository"
	"github.com/redis/go-redis/v9"
)

// ViewService counts question views. With Redis available, views are deduped
// per (question, viewer) for an hour and flushed to the database by a
// background worker; without Redis every view hits the database directly.
type ViewService interface {
	IncrementView(ctx context.Context, questionID uuid.UUID, viewerID uuid.UUID) error
	StartViewSyncWorker(ctx context.Context)
}

type viewService struct {
	redisClient  *redis.Client
	questionRepo repository.QuestionRepository
}

func NewViewService(redisClient *redis.Client, questionRepo repository.QuestionRepository) ViewService {
	return &viewService{
		redisClient:  redisClient,
		questionRepo: questionRepo,
	}
}

const pendingViewsKey = "pending:question_views"

func (s *viewService) IncrementView(ctx context.Context, questionID uuid.UUID, viewerID uuid.UUID) error {
	if s.redisClient == nil {
		return s.questionRepo.AddViews(ctx, questionID, 1)
	}

	userViewKey := fmt.Sprintf("question:user_view:%s:%s", questionID, viewerID)
	exists, err := s.redisClient.Exists(ctx, userViewKey).Result()
	if err != nil {
		return fmt.Errorf("check user view: %w", err)
	}
	if exists == 1 {
		return nil
	}

	viewKey := fmt.Sprintf("question:views:%s", questionID)
	if err := s.redisClient.Incr(ctx, viewKey).Err(); err != nil {
		return fmt.Errorf("increment view: %w", err)
	}
	if err := s.redisClient.SAdd(ctx, pendingViewsKey, questionID.String()).Err(); err != nil {
		return fmt.Errorf("add to pending: %w", err)
	}
	if err := s.redisClient.SetEx(ctx, userViewKey, "viewed", time.Hour).Err(); err != nil {
		return fmt.Errorf("mark user view: %w", err)
	}

	return nil
}

func (s *viewService) syncViewsToDB(ctx context.Context) {
	questionIDs, err := s.redisClient.SMembers(ctx, pendingViewsKey).Result()
	if err != nil {
		log.Printf("get pending question views: %v", err)
		return
	}
	if len(questionIDs) == 0 {
		return
	}

	for _, idStr := range questionIDs {
		questionID, err := uuid.Parse(idStr)
		if err != nil {
			log.Printf("invalid question id in pending views: %s: %v", idStr, err)
			continue
		}

		viewKey := fmt.Sprintf("question:views:%s", questionID)
		countStr, err := s.redisClient.Get(ctx, viewKey).Result()
		if err != nil && err != redis.Nil {
			log.Printf("get view count for question %s: %v", questionID, err)
			continue
		}
		if countStr == "" {
			continue
		}

		count, err := strconv.Atoi(countStr)
		if err != nil || count <= 0 {
			continue
		}

		if err := s.questionRepo.AddViews(ctx, questionID, count); err != nil {
			log.Printf("flush views for question %s: %v", questionID, err)
			continue
		}
		if err := s.redisClient.Del(ctx, viewKey).Err(); err != nil {
			log.Printf("reset view counter for question %s: %v", questionID, err)
		}
	}

	if err := s.redisClient.Del(ctx, pendingViewsKey).Err(); err != nil {
		log.Printf("clear pending view set: %v", err)
	}
}

func (s *viewService) StartViewSyncWorker(ctx context.Context) {
	if s.redisClient == nil {
		return
	}

	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.syncViewsToDB(ctx)
		case <-ctx.Done():
			return
		}
	}
}
