package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kuweni/kuweni-ai/internal/chat"
	"github.com/kuweni/kuweni-ai/internal/gen"
)

type chatReq struct {
	Message   string `json:"message"`
	Model     string `json:"model"`
	SessionID string `json:"sessionId"`
}

// Chat answers a chat turn. Without a sessionId it is a stateless adapter
// call; with one, the turn is recorded in that session's transcript (the
// user message sticks even when the upstream fails — the failure becomes an
// assistant entry).
func (h *Handler) Chat(c *gin.Context) {
	var req chatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Message is required")
		return
	}

	ctx := c.Request.Context()

	if req.SessionID == "" {
		res, err := h.Text.Generate(ctx, req.Message, req.Model)
		if err != nil {
			h.chatError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
		return
	}

	result, err := h.ChatSvc.SendMessage(ctx, req.SessionID, req.Message, req.Model)
	if err != nil {
		h.chatError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"response": result.Reply,
		"model":    result.Model,
	})
}

func (h *Handler) chatError(c *gin.Context, err error) {
	switch {
	case gen.IsValidation(err):
		fail(c, http.StatusBadRequest, validationMessage(err))
	case errors.Is(err, gorm.ErrRecordNotFound):
		fail(c, http.StatusNotFound, "session not found")
	case errors.Is(err, chat.ErrBusy):
		fail(c, http.StatusConflict, err.Error())
	default:
		slog.Error("chat generation failed", "err", err)
		fail(c, http.StatusInternalServerError, err.Error())
	}
}
