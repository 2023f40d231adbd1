package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/artspace-backend/internal/http/response"
	"github.com/yungbote/artspace-backend/internal/platform/apierr"
	"github.com/yungbote/artspace-backend/internal/platform/dbctx"
	"github.com/yungbote/artspace-backend/internal/platform/logger"
	"github.com/yungbote/artspace-backend/internal/services"
)

type ArtHandler struct {
	log  *logger.Logger
	arts services.ArtService
}

func NewArtHandler(log *logger.Logger, arts services.ArtService) *ArtHandler {
	return &ArtHandler{log: log.With("handler", "ArtHandler"), arts: arts}
}

// POST /api/arts
func (h *ArtHandler) CreateArt(c *gin.Context) {
	var req services.CreateArtInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, h.log, bindError(err))
		return
	}
	a, err := h.arts.Create(dbctx.Context{Ctx: c.Request.Context()}, req)
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"art": a})
}

// GET /api/arts/:id
func (h *ArtHandler) GetArt(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	a, err := h.arts.Get(dbctx.Context{Ctx: c.Request.Context()}, id)
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"art": a})
}

// POST /api/arts/:id/image (multipart field "file")
func (h *ArtHandler) UploadImage(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		response.RespondAPIError(c, h.log, apierr.BadRequest("multipart field \"file\" is required"))
		return
	}
	if fh.Size > services.MaxArtImageBytes {
		response.RespondAPIError(c, h.log, apierr.BadRequest("file exceeds %d MB", services.MaxArtImageBytes>>20))
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	defer f.Close()

	a, err := h.arts.UploadImage(dbctx.Context{Ctx: c.Request.Context()}, id, f)
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"art": a})
}
