package httpapi

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kuweni/kuweni-ai/internal/config"
	"github.com/kuweni/kuweni-ai/internal/httpapi/handlers"
	"github.com/kuweni/kuweni-ai/internal/httpapi/middleware"
	"github.com/kuweni/kuweni-ai/internal/store/redisstore"
)

func NewRouter(db *gorm.DB, cfg config.Config, cache *redisstore.Store) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "HEAD", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
	}))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})

	h := handlers.NewHandler(db, cfg, cache)

	r.GET("/ping", h.Ping)

	api := r.Group("/api")
	api.POST("/chat", h.Chat)
	api.POST("/generate-image", h.GenerateImage)
	api.POST("/generate-voice", h.GenerateVoice)
	api.GET("/proxy-image", h.ProxyImage)
	api.GET("/download-image", h.DownloadImage)

	api.POST("/sessions", h.CreateSession)
	api.GET("/sessions", h.ListSessions)
	api.POST("/sessions/:id/select", h.SelectSession)
	api.DELETE("/sessions/:id", h.DeleteSession)
	api.GET("/sessions/:id/messages", h.ListSessionMessages)
	api.DELETE("/sessions/:id/messages/:message_id", h.DeleteSessionMessage)

	return r
}
