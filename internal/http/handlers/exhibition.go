package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/artspace-backend/internal/http/response"
	"github.com/yungbote/artspace-backend/internal/platform/dbctx"
	"github.com/yungbote/artspace-backend/internal/platform/logger"
	"github.com/yungbote/artspace-backend/internal/services"
)

type ExhibitionHandler struct {
	log         *logger.Logger
	exhibitions services.ExhibitionService
	arts        services.ArtService
}

func NewExhibitionHandler(log *logger.Logger, exhibitions services.ExhibitionService, arts services.ArtService) *ExhibitionHandler {
	return &ExhibitionHandler{
		log:         log.With("handler", "ExhibitionHandler"),
		exhibitions: exhibitions,
		arts:        arts,
	}
}

type createExhibitionReq struct {
	GalleryID   uint   `json:"gallery_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	ImagePath   string `json:"image_path"`
}

// POST /api/exhibitions
func (h *ExhibitionHandler) CreateExhibition(c *gin.Context) {
	var req createExhibitionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, h.log, bindError(err))
		return
	}
	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	end, err := parseDate("end_date", req.EndDate)
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	e, err := h.exhibitions.Create(dbctx.Context{Ctx: c.Request.Context()}, services.CreateExhibitionInput{
		GalleryID:   req.GalleryID,
		Title:       req.Title,
		Description: req.Description,
		StartDate:   start,
		EndDate:     end,
		ImagePath:   req.ImagePath,
	})
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"exhibition": e})
}

// GET /api/exhibitions?gallery_name=a,b&sort=latest|ending|popular
func (h *ExhibitionHandler) ListExhibitions(c *gin.Context) {
	list, err := h.exhibitions.List(c.Request.Context(), c.Query("gallery_name"), c.Query("sort"))
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"exhibitions": list})
}

// GET /api/exhibitions/:id
func (h *ExhibitionHandler) GetExhibition(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	e, err := h.exhibitions.Get(dbctx.Context{Ctx: c.Request.Context()}, id)
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"exhibition": e})
}

// GET /api/exhibitions/:id/arts
func (h *ExhibitionHandler) ListArts(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	arts, err := h.arts.ListByExhibition(dbctx.Context{Ctx: c.Request.Context()}, id)
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"arts": arts})
}

// POST /api/exhibitions/:id/like
func (h *ExhibitionHandler) ToggleLike(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	res, err := h.exhibitions.ToggleLike(dbctx.Context{Ctx: c.Request.Context()}, id)
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, res)
}
