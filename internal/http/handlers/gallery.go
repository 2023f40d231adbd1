package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/artspace-backend/internal/http/response"
	"github.com/yungbote/artspace-backend/internal/platform/dbctx"
	"github.com/yungbote/artspace-backend/internal/platform/logger"
	"github.com/yungbote/artspace-backend/internal/services"
)

type GalleryHandler struct {
	log       *logger.Logger
	galleries services.GalleryService
}

func NewGalleryHandler(log *logger.Logger, galleries services.GalleryService) *GalleryHandler {
	return &GalleryHandler{log: log.With("handler", "GalleryHandler"), galleries: galleries}
}

// POST /api/galleries
func (h *GalleryHandler) CreateGallery(c *gin.Context) {
	var req services.CreateGalleryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, h.log, bindError(err))
		return
	}
	g, err := h.galleries.Create(dbctx.Context{Ctx: c.Request.Context()}, req)
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"gallery": g})
}

// GET /api/galleries
func (h *GalleryHandler) ListGalleries(c *gin.Context) {
	list, err := h.galleries.List(dbctx.Context{Ctx: c.Request.Context()})
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"galleries": list})
}

// GET /api/galleries/:id
func (h *GalleryHandler) GetGallery(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	g, err := h.galleries.Get(dbctx.Context{Ctx: c.Request.Context()}, id)
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"gallery": g})
}
