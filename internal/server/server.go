package server

import (
	"context"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/knowshare/knowshare-api/internal/config"
	"github.com/knowshare/knowshare-api/internal/handler"
	"github.com/knowshare/knowshare-api/internal/middleware"
	"github.com/knowshare/knowshare-api/internal/repository"
	"github.com/knowshare/knowshare-api/internal/service"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	userRepo := repository.NewUserRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	answerRepo := repository.NewAnswerRepository(db)
	voteRepo := repository.NewVoteRepository(db)
	tagRepo := repository.NewTagRepository(db)
	badgeRepo := repository.NewBadgeRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	reportRepo := repository.NewReportRepository(db)

	badgeSvc := service.NewBadgeService(badgeRepo, questionRepo, answerRepo, voteRepo, userRepo)
	notificationSvc := service.NewNotificationService(notificationRepo, redisClient)
	voteSvc := service.NewVoteService(db, badgeSvc)
	viewSvc := service.NewViewService(redisClient, questionRepo)
	questionSvc := service.NewQuestionService(db, questionRepo, tagRepo, userRepo, notificationSvc, badgeSvc, viewSvc)
	answerSvc := service.NewAnswerService(answerRepo, questionRepo, userRepo, notificationSvc, badgeSvc)
	tagSvc := service.NewTagService(tagRepo)
	reportSvc := service.NewReportService(db, reportRepo)
	authSvc := service.NewAuthService(userRepo, questionRepo, answerRepo, badgeRepo, cfg.JWTSecret, cfg.TokenTTL)

	if redisClient != nil {
		go viewSvc.StartViewSyncWorker(context.Background())
	}

	authHandler := handler.NewAuthHandler(authSvc)
	accountHandler := handler.NewAccountHandler(authSvc, questionSvc, answerSvc, badgeSvc)
	questionHandler := handler.NewQuestionHandler(questionSvc, voteSvc)
	answerHandler := handler.NewAnswerHandler(answerSvc, voteSvc)
	tagHandler := handler.NewTagHandler(tagSvc)
	badgeHandler := handler.NewBadgeHandler(badgeSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)
	reportHandler := handler.NewReportHandler(reportSvc)

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	authMiddleware := middleware.NewAuthMiddleware(userRepo, cfg.JWTSecret)

	api := router.Group("/api")

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	public := api.Group("")
	public.Use(authMiddleware.OptionalAuth())
	{
		public.GET("/questions", questionHandler.List)
		public.GET("/questions/:id", questionHandler.Get)

		public.GET("/tags", tagHandler.List)
		public.GET("/tags/popular", tagHandler.Popular)
		public.GET("/tags/:slug", tagHandler.Get)

		public.GET("/badges", badgeHandler.List)
		public.GET("/badges/stats", badgeHandler.Stats)
		public.GET("/badges/type/:type", badgeHandler.ListByType)
		public.GET("/badges/:slug", badgeHandler.Get)
	}

	// Protected routes (apply auth middleware explicitly)
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		// Admin routes
		adminGroup := protected.Group("/admin")
		adminGroup.Use(authMiddleware.RequireAdmin())
		{
			adminGroup.GET("/reports", reportHandler.List)
			adminGroup.PUT("/reports/:id", reportHandler.Review)
			adminGroup.DELETE("/reports/:id", reportHandler.Delete)
		}

		// Account routes
		protected.GET("/me", accountHandler.Me)
		protected.PUT("/me", accountHandler.UpdateMe)
		protected.GET("/me/questions", accountHandler.MyQuestions)
		protected.GET("/me/answers", accountHandler.MyAnswers)
		protected.GET("/me/badges", accountHandler.MyBadges)

		// Question routes
		protected.POST("/questions", questionHandler.Create)
		protected.PUT("/questions/:id", questionHandler.Update)
		protected.DELETE("/questions/:id", questionHandler.Delete)
		protected.POST("/questions/:id/vote", questionHandler.Vote)
		protected.POST("/questions/:id/best-answer/:answerId", questionHandler.SetBestAnswer)
		protected.POST("/questions/:id/answers", answerHandler.Create)

		// Answer routes
		protected.PUT("/answers/:id", answerHandler.Update)
		protected.DELETE("/answers/:id", answerHandler.Delete)
		protected.POST("/answers/:id/vote", answerHandler.Vote)

		// Notification routes
		protected.GET("/notifications", notificationHandler.List)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)

		// Report routes
		protected.POST("/reports", reportHandler.Create)
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	origins := []string{"http://localhost:3000"}
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
