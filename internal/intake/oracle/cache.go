package oracle

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	stderrors "errors"
	"time"

	"github.com/redis/go-redis/v9"

	"loan-intake/internal/common/logger"
	"loan-intake/internal/common/metrics"
	"loan-intake/pkg/registry"
)

// Cached memoizes oracle answers in Redis. Identical task, template and text
// give an identical answer, so repeated turns skip the model. Any Redis
// failure falls through to the wrapped oracle.
type Cached struct {
	next   Oracle
	client redis.Cmdable
	prefix string
	ttl    time.Duration
	logger logger.Logger
}

func NewCached(next Oracle, client redis.Cmdable, prefix string, ttl time.Duration, log logger.Logger) *Cached {
	return &Cached{
		next:   next,
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "oracle-cache"}),
	}
}

// CacheKey is prefix + "oracle:" + hex(sha256(name, template, text)).
func CacheKey(prefix string, task registry.Task, text string) string {
	h := sha256.New()
	for _, part := range []string{task.Name, task.Template, text} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return prefix + "oracle:" + hex.EncodeToString(h.Sum(nil))
}

func (c *Cached) Extract(ctx context.Context, task registry.Task, text string) (string, error) {
	key := CacheKey(c.prefix, task, text)

	cached, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		metrics.OracleCacheLookups.WithLabelValues("hit").Inc()
		return cached, nil
	case stderrors.Is(err, redis.Nil):
		metrics.OracleCacheLookups.WithLabelValues("miss").Inc()
	default:
		metrics.OracleCacheLookups.WithLabelValues("error").Inc()
		c.logger.Warn("Oracle cache read failed", map[string]interface{}{
			"task":  task.Name,
			"error": err,
		})
	}

	answer, err := c.next.Extract(ctx, task, text)
	if err != nil {
		return "", err
	}

	if err := c.client.Set(ctx, key, answer, c.ttl).Err(); err != nil {
		c.logger.Warn("Oracle cache write failed", map[string]interface{}{
			"task":  task.Name,
			"error": err,
		})
	}
	return answer, nil
}
