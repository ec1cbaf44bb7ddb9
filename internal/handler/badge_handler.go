package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/knowshare/knowshare-api/internal/model"
	"github.com/knowshare/knowshare-api/internal/service"
	"github.com/knowshare/knowshare-api/pkg/response"
)

type BadgeHandler struct {
	service service.BadgeService
}

func NewBadgeHandler(service service.BadgeService) *BadgeHandler {
	return &BadgeHandler{service: service}
}

func (h *BadgeHandler) List(c *gin.Context) {
	badges, err := h.service.ListActive(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": badges})
}

func (h *BadgeHandler) ListByType(c *gin.Context) {
	badges, err := h.service.ListActiveByType(c.Request.Context(), model.BadgeType(c.Param("type")))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": badges})
}

func (h *BadgeHandler) Get(c *gin.Context) {
	badge, err := h.service.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, badge)
}

func (h *BadgeHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
