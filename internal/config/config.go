package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr string

	// DB_DSN defaults to a process-lifetime in-memory sqlite database;
	// sessions are intentionally not durable.
	DBDSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Upstream generation endpoints.
	TextBaseURL  string
	ImageBaseURL string

	DefaultVoice string

	ProbeTimeout time.Duration
	ProxyTimeout time.Duration
	TextTimeout  time.Duration
}

func Load() Config {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "file::memory:?cache=shared"
	}

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			redisDB = n
		}
	}

	textBase := os.Getenv("TEXT_BASE_URL")
	if textBase == "" {
		textBase = "https://text.pollinations.ai"
	}

	imageBase := os.Getenv("IMAGE_BASE_URL")
	if imageBase == "" {
		imageBase = "https://image.pollinations.ai"
	}

	voice := os.Getenv("DEFAULT_VOICE")
	if voice == "" {
		voice = "alloy"
	}

	return Config{
		HTTPAddr: addr,
		DBDSN:    dsn,

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,

		TextBaseURL:  textBase,
		ImageBaseURL: imageBase,
		DefaultVoice: voice,

		ProbeTimeout: durationEnv("PROBE_TIMEOUT", 5*time.Second),
		ProxyTimeout: durationEnv("PROXY_TIMEOUT", 10*time.Second),
		TextTimeout:  durationEnv("TEXT_TIMEOUT", 90*time.Second),
	}
}

func durationEnv(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
