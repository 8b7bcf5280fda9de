package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go-derma/internal/shared/apperror"
	"go-derma/internal/shared/contextutil"
	"go-derma/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	IdempotencyKeyHeader = "Idempotency-Key"
	idempotencyLockTTL   = 30 * time.Second
	idempotencyResultTTL = 24 * time.Hour
)

type cachedResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

type bodyRecorder struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

// replayStored writes the stored response for cacheKey, if any, and aborts
// the chain. A missing key is not an error.
func replayStored(c *gin.Context, rdb *redis.Client, cacheKey string) (bool, error) {
	val, err := rdb.Get(c.Request.Context(), cacheKey).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	var cached cachedResponse
	if json.Unmarshal([]byte(val), &cached) != nil {
		return false, nil
	}
	c.Header("Idempotent-Replay", "true")
	c.Data(cached.Status, "application/json; charset=utf-8", cached.Body)
	c.Abort()
	return true, nil
}

func IdempotencyCacheKey(path, userID, key string) string {
	return fmt.Sprintf("idemp:%s:%s:%s", path, userID, key)
}

// Idempotency replays the stored response for a repeated POST carrying the
// same Idempotency-Key, and rejects a duplicate that arrives while the first
// is still in flight. A nil client disables it.
func Idempotency(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		idempKey := c.GetHeader(IdempotencyKeyHeader)
		if rdb == nil || idempKey == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		log := contextutil.GetLogger(ctx, zap.L()).Named("middleware.idempotency")
		cacheKey := IdempotencyCacheKey(c.FullPath(), c.GetString(ContextUserID), idempKey)
		lockKey := cacheKey + ":lock"

		// 1. Sudah pernah diproses: kirim ulang hasil sebelumnya
		replayed, err := replayStored(c, rdb, cacheKey)
		if err != nil {
			log.Warn("idempotency lookup failed, continuing without it", zap.Error(err))
			c.Next()
			return
		}
		if replayed {
			return
		}

		// 2. Atomic lock supaya request ganda yang paralel ditolak
		acquired, err := rdb.SetNX(ctx, lockKey, "locked", idempotencyLockTTL).Result()
		if err != nil {
			log.Warn("idempotency lock failed, continuing without it", zap.Error(err))
			c.Next()
			return
		}
		if !acquired {
			response.Error(c, apperror.ErrConflict.HTTPStatus, apperror.ErrConflict.Code, "Request is already being processed", nil)
			c.Abort()
			return
		}

		// 3. Request pertama bisa selesai di antara Get dan SetNX, cek ulang
		// setelah lock dipegang
		replayed, err = replayStored(c, rdb, cacheKey)
		if err == nil && replayed {
			if err := rdb.Del(ctx, lockKey).Err(); err != nil {
				log.Warn("idempotency unlock failed", zap.Error(err))
			}
			return
		}

		rec := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = rec

		c.Next()

		status := rec.Status()
		if status >= 200 && status < 300 {
			payload, err := json.Marshal(cachedResponse{Status: status, Body: rec.buf.Bytes()})
			if err == nil {
				err = rdb.Set(ctx, cacheKey, payload, idempotencyResultTTL).Err()
			}
			if err != nil {
				log.Warn("idempotency store failed", zap.Error(err))
			}
		}
		if err := rdb.Del(ctx, lockKey).Err(); err != nil {
			log.Warn("idempotency unlock failed", zap.Error(err))
		}
	}
}
