package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/knowshare/knowshare-api/internal/service"
	"github.com/knowshare/knowshare-api/pkg/response"
	"github.com/knowshare/knowshare-api/pkg/validator"
)

// AccountHandler serves the authenticated user's own resources.
type AccountHandler struct {
	authService     service.AuthService
	questionService service.QuestionService
	answerService   service.AnswerService
	badgeService    service.BadgeService
}

func NewAccountHandler(
	authService service.AuthService,
	questionService service.QuestionService,
	answerService service.AnswerService,
	badgeService service.BadgeService,
) *AccountHandler {
	return &AccountHandler{
		authService:     authService,
		questionService: questionService,
		answerService:   answerService,
		badgeService:    badgeService,
	}
}

func (h *AccountHandler) Me(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	profile, err := h.authService.Me(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *AccountHandler) UpdateMe(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req service.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	user, err := h.authService.UpdateMe(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *AccountHandler) MyQuestions(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	questions, err := h.questionService.ListByAuthor(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": questions})
}

func (h *AccountHandler) MyAnswers(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	answers, err := h.answerService.ListByAuthor(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": answers})
}

func (h *AccountHandler) MyBadges(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	badges, err := h.badgeService.ListUserBadges(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": badges})
}
