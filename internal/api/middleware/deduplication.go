package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"sync"
	"time"

	"meal-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Deduplication rejects identical POST bodies arriving within window of
// each other. Recipe searches fan out to external APIs and the model, so
// an accidental double-submit is worth stopping at the door.
func Deduplication(window time.Duration) gin.HandlerFunc {
	if window <= 0 {
		window = time.Second
	}

	var mu sync.Mutex
	seen := make(map[string]time.Time)

	// Periodic sweep so the fingerprint map doesn't grow unbounded.
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			now := time.Now()
			mu.Lock()
			for k, t := range seen {
				if now.Sub(t) > 10*window {
					delete(seen, k)
				}
			}
			mu.Unlock()
		}
	}()

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		bodyHash := ""
		if c.Request.Body != nil {
			body, err := io.ReadAll(c.Request.Body)
			if err != nil {
				common.LogError("failed to read request body", zap.Error(err))
				c.Next()
				return
			}
			hash := sha256.Sum256(body)
			bodyHash = hex.EncodeToString(hash[:])
			c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
		}

		fingerprint := c.Request.Method + ":" + c.Request.URL.Path
		if bodyHash != "" {
			fingerprint += ":" + bodyHash
		}

		now := time.Now()
		mu.Lock()
		last, exists := seen[fingerprint]
		if exists && now.Sub(last) <= window {
			mu.Unlock()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Duplicate request",
				"code":  common.ErrCodeTooManyRequests,
			})
			return
		}
		seen[fingerprint] = now
		mu.Unlock()

		c.Next()
	}
}
