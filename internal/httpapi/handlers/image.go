package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kuweni/kuweni-ai/internal/common"
	"github.com/kuweni/kuweni-ai/internal/gen"
)

type imageReq struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model"`
}

func (h *Handler) GenerateImage(c *gin.Context) {
	var req imageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Prompt is required")
		return
	}

	res, err := h.Image.Generate(c.Request.Context(), req.Prompt, req.Model)
	if err != nil {
		if gen.IsValidation(err) {
			fail(c, http.StatusBadRequest, validationMessage(err))
			return
		}
		slog.Error("image generation failed", "err", err)
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, res)
}

// ProxyImage re-serves an external image from this origin so the browser can
// render and download it without CORS trouble.
func (h *Handler) ProxyImage(c *gin.Context) {
	rawURL := c.Query("url")
	if rawURL == "" {
		fail(c, http.StatusBadRequest, "Image URL is required")
		return
	}

	body, contentType, err := h.fetchImage(c, rawURL)
	if err != nil {
		h.proxyError(c, err)
		return
	}

	setProxyHeaders(c, len(body))
	c.Data(http.StatusOK, contentType, body)
}

// DownloadImage is the attachment variant of ProxyImage: same fetch, plus a
// Content-Disposition that names the file after the download moment.
func (h *Handler) DownloadImage(c *gin.Context) {
	rawURL := c.Query("url")
	if rawURL == "" {
		fail(c, http.StatusBadRequest, "Image URL is required")
		return
	}

	body, contentType, err := h.fetchImage(c, rawURL)
	if err != nil {
		h.proxyError(c, err)
		return
	}

	setProxyHeaders(c, len(body))
	c.Header("Content-Disposition",
		fmt.Sprintf("attachment; filename=%s", common.ImageFilename(time.Now())))
	c.Data(http.StatusOK, contentType, body)
}

func (h *Handler) fetchImage(c *gin.Context, rawURL string) ([]byte, string, error) {
	ctx := c.Request.Context()

	if body, contentType, ok := h.Cache.GetImage(ctx, rawURL); ok {
		return body, contentType, nil
	}

	p, err := h.Proxy.Fetch(ctx, rawURL)
	if err != nil {
		return nil, "", err
	}
	h.Cache.SetImage(ctx, rawURL, p.Body, p.ContentType)
	return p.Body, p.ContentType, nil
}

func (h *Handler) proxyError(c *gin.Context, err error) {
	slog.Error("proxy image failed", "err", err)
	status := http.StatusInternalServerError
	if gen.IsTimeout(err) {
		status = http.StatusGatewayTimeout
	}
	c.JSON(status, gin.H{
		"error":   err.Error(),
		"details": "The image could not be loaded. This might be due to network issues or the image service being temporarily unavailable.",
	})
}

func setProxyHeaders(c *gin.Context, size int) {
	c.Header("Content-Length", strconv.Itoa(size))
	c.Header("Cache-Control", "public, max-age=3600")
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Methods", "GET, HEAD, OPTIONS")
	c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")
}
