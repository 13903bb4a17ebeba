package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gorm.io/gorm"

	"github.com/kuweni/kuweni-ai/internal/chat"
	"github.com/kuweni/kuweni-ai/internal/config"
	"github.com/kuweni/kuweni-ai/internal/gen"
	"github.com/kuweni/kuweni-ai/internal/store/redisstore"
)

type Handler struct {
	Cfg     config.Config
	Store   *chat.Store
	ChatSvc *chat.Service
	Text    *gen.TextClient
	Image   *gen.ImageClient
	Voice   *gen.VoiceClient
	Proxy   *gen.ProxyClient
	Cache   *redisstore.Store
}

func NewHandler(db *gorm.DB, cfg config.Config, cache *redisstore.Store) *Handler {
	store := chat.NewStore(chat.NewRepo(db))
	text := gen.NewTextClient(cfg.TextBaseURL, cfg.TextTimeout)

	return &Handler{
		Cfg:     cfg,
		Store:   store,
		ChatSvc: chat.NewService(store, text),
		Text:    text,
		Image:   gen.NewImageClient(cfg.ImageBaseURL, cfg.ProbeTimeout),
		Voice:   gen.NewVoiceClient(cfg.TextBaseURL, cfg.DefaultVoice, cfg.ProbeTimeout),
		Proxy:   gen.NewProxyClient(cfg.ProxyTimeout),
		Cache:   cache,
	}
}

func (h *Handler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

// validationMessage unwraps the first field message from an ozzo validation
// error so the response matches the documented contract ("Message is
// required") instead of ozzo's "field: message." rendering.
func validationMessage(err error) string {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		for _, fieldErr := range verrs {
			return fieldErr.Error()
		}
	}
	return err.Error()
}
