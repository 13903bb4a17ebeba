package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/kuweni/kuweni-ai/internal/chat"
	"github.com/kuweni/kuweni-ai/internal/config"
	"github.com/kuweni/kuweni-ai/internal/db"
	"github.com/kuweni/kuweni-ai/internal/httpapi"
	"github.com/kuweni/kuweni-ai/internal/store/redisstore"
)

func main() {
	// .env is optional; real env vars win either way.
	_ = godotenv.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg := config.Load()

	gdb := db.Connect(cfg.DBDSN, &chat.Session{}, &chat.Message{})

	cache := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if cache != nil {
		defer cache.Close()
		slog.Info("proxied image cache enabled", "addr", cfg.RedisAddr)
	}

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: httpapi.NewRouter(gdb, cfg, cache),
	}

	go func() {
		slog.Info("listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	slog.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown", "err", err)
	}
}
