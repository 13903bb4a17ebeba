package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kuweni/kuweni-ai/internal/gen"
)

type voiceReq struct {
	Prompt string `json:"prompt"`
	Voice  string `json:"voice"`
}

func (h *Handler) GenerateVoice(c *gin.Context) {
	var req voiceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Prompt is required")
		return
	}

	res, err := h.Voice.Generate(c.Request.Context(), req.Prompt, req.Voice)
	if err != nil {
		if gen.IsValidation(err) {
			fail(c, http.StatusBadRequest, validationMessage(err))
			return
		}
		slog.Error("voice generation failed", "err", err)
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, res)
}
