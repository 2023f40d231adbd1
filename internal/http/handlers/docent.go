package handlers

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/artspace-backend/internal/http/response"
	"github.com/yungbote/artspace-backend/internal/platform/dbctx"
	"github.com/yungbote/artspace-backend/internal/platform/logger"
	"github.com/yungbote/artspace-backend/internal/services"
)

type DocentHandler struct {
	log    *logger.Logger
	docent services.DocentService
}

func NewDocentHandler(log *logger.Logger, docent services.DocentService) *DocentHandler {
	return &DocentHandler{log: log.With("handler", "DocentHandler"), docent: docent}
}

// bindDocent allows an empty body, which means an audio run with defaults.
func bindDocent(c *gin.Context) (uint, services.GenerateDocentInput, error) {
	var in services.GenerateDocentInput
	id, err := uintParam(c, "id")
	if err != nil {
		return 0, in, err
	}
	if err := c.ShouldBindJSON(&in); err != nil && !errors.Is(err, io.EOF) {
		return 0, in, bindError(err)
	}
	return id, in, nil
}

// POST /api/arts/:id/docent
func (h *DocentHandler) Generate(c *gin.Context) {
	id, in, err := bindDocent(c)
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	out, err := h.docent.Generate(c.Request.Context(), id, in)
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, out)
}

// POST /api/arts/:id/docent/jobs
func (h *DocentHandler) Enqueue(c *gin.Context) {
	id, in, err := bindDocent(c)
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	job, err := h.docent.Enqueue(dbctx.Context{Ctx: c.Request.Context()}, id, in)
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondAccepted(c, gin.H{"job": job})
}

// GET /api/arts/:id/docent
func (h *DocentHandler) Get(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	out, err := h.docent.Get(dbctx.Context{Ctx: c.Request.Context()}, id)
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, out)
}
