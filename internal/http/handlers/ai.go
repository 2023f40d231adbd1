package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/artspace-backend/internal/http/response"
	"github.com/yungbote/artspace-backend/internal/platform/dbctx"
	"github.com/yungbote/artspace-backend/internal/platform/logger"
	"github.com/yungbote/artspace-backend/internal/services"
)

type AIHandler struct {
	log *logger.Logger
	ai  services.AIContentService
}

func NewAIHandler(log *logger.Logger, ai services.AIContentService) *AIHandler {
	return &AIHandler{log: log.With("handler", "AIHandler"), ai: ai}
}

type chatReq struct {
	Message string `json:"message"`
}

// POST /api/ai/chat
func (h *AIHandler) Chat(c *gin.Context) {
	var req chatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, h.log, bindError(err))
		return
	}
	reply, err := h.ai.Chat(c.Request.Context(), req.Message)
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"reply": reply})
}

// POST /api/exhibitions/:id/invitation
func (h *AIHandler) Invitation(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	text, err := h.ai.Invitation(dbctx.Context{Ctx: c.Request.Context()}, id)
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"text": text})
}

// POST /api/exhibitions/:id/poster
func (h *AIHandler) Poster(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	url, err := h.ai.Poster(dbctx.Context{Ctx: c.Request.Context()}, id)
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"poster_url": url})
}
