package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func (h *Handler) CreateSession(c *gin.Context) {
	sess, err := h.Store.CreateSession(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to create session")
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *Handler) ListSessions(c *gin.Context) {
	sessions, err := h.Store.ListSessions(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to list sessions")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"sessions":  sessions,
		"currentId": h.Store.Current(),
	})
}

// SelectSession makes a session current. Selecting an unknown id is a no-op,
// matching the store contract.
func (h *Handler) SelectSession(c *gin.Context) {
	if err := h.Store.SelectSession(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, http.StatusInternalServerError, "failed to select session")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) DeleteSession(c *gin.Context) {
	err := h.Store.DeleteSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "session not found")
			return
		}
		fail(c, http.StatusInternalServerError, "failed to delete session")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListSessionMessages(c *gin.Context) {
	msgs, err := h.Store.Messages(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "session not found")
			return
		}
		fail(c, http.StatusInternalServerError, "failed to list messages")
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

func (h *Handler) DeleteSessionMessage(c *gin.Context) {
	err := h.Store.DeleteMessage(c.Request.Context(), c.Param("id"), c.Param("message_id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "message not found")
			return
		}
		fail(c, http.StatusInternalServerError, "failed to delete message")
		return
	}
	c.Status(http.StatusNoContent)
}
