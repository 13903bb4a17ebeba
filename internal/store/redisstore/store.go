package redisstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// cacheTTL mirrors the Cache-Control max-age the proxy endpoint advertises.
const cacheTTL = time.Hour

// Store caches proxied image bytes so repeated renders and downloads of the
// same locator skip the upstream fetch. A nil *Store is a valid no-op cache.
type Store struct {
	rdb *redis.Client
}

// New connects to redis, or returns nil when no address is configured.
func New(addr, password string, db int) *Store {
	if addr == "" {
		return nil
	}
	return &Store{rdb: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

func key(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return "proxyimg:" + hex.EncodeToString(sum[:])
}

// GetImage returns cached bytes and content type for the locator, if present.
func (s *Store) GetImage(ctx context.Context, rawURL string) ([]byte, string, bool) {
	if s == nil {
		return nil, "", false
	}
	vals, err := s.rdb.HMGet(ctx, key(rawURL), "body", "content_type").Result()
	if err != nil || len(vals) != 2 || vals[0] == nil || vals[1] == nil {
		return nil, "", false
	}
	body, okB := vals[0].(string)
	ct, okC := vals[1].(string)
	if !okB || !okC || body == "" {
		return nil, "", false
	}
	return []byte(body), ct, true
}

// SetImage stores the bytes with the proxy's 1-hour lifetime. Failures are
// logged and ignored; the cache is best-effort.
func (s *Store) SetImage(ctx context.Context, rawURL string, body []byte, contentType string) {
	if s == nil {
		return
	}
	k := key(rawURL)
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, k, "body", body, "content_type", contentType)
	pipe.Expire(ctx, k, cacheTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		slog.Warn("image cache write failed", "err", err)
	}
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.rdb.Close()
}
