package oracle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-intake/internal/common/logger"
	"loan-intake/pkg/registry"
)

type countingOracle struct {
	calls  int
	answer string
	err    error
}

func (c *countingOracle) Extract(_ context.Context, _ registry.Task, _ string) (string, error) {
	c.calls++
	return c.answer, c.err
}

func TestCacheKey(t *testing.T) {
	task := registry.Task{Name: "credit", Template: "Text: {{.text}}"}

	k1 := CacheKey("loan-intake:", task, "score 720")
	k2 := CacheKey("loan-intake:", task, "score 720")
	k3 := CacheKey("loan-intake:", task, "score 721")
	tuned := task
	tuned.Template = "Extract: {{.text}}"
	k4 := CacheKey("loan-intake:", tuned, "score 720")

	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)
	assert.NotEqual(t, k1, k4)
	assert.Regexp(t, `^loan-intake:oracle:[0-9a-f]{64}$`, k1)
}

func TestCached_MissThenHit(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	next := &countingOracle{answer: `{"credit_score": 720}`}
	cached := NewCached(next, client, "test:", time.Hour, logger.NewTestLogger(t))
	task := creditTask(t)
	ctx := context.Background()

	first, err := cached.Extract(ctx, task, "score 720")
	require.NoError(t, err)
	second, err := cached.Extract(ctx, task, "score 720")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, next.calls)

	key := CacheKey("test:", task, "score 720")
	assert.True(t, mr.Exists(key))
	assert.Equal(t, time.Hour, mr.TTL(key))

	mr.FastForward(2 * time.Hour)
	_, err = cached.Extract(ctx, task, "score 720")
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestCached_OracleErrorNotCached(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	next := &countingOracle{err: errors.New("model down")}
	cached := NewCached(next, client, "test:", time.Hour, logger.NewNoOpLogger())

	_, err = cached.Extract(context.Background(), creditTask(t), "score 720")
	require.Error(t, err)
	assert.Empty(t, mr.Keys())
}

func TestCached_RedisFailuresFallThrough(t *testing.T) {
	client, redisMock := redismock.NewClientMock()
	task := creditTask(t)
	key := CacheKey("test:", task, "score 720")

	redisMock.ExpectGet(key).SetErr(errors.New("connection reset"))
	redisMock.ExpectSet(key, "{}", time.Minute).SetErr(errors.New("connection reset"))

	next := &countingOracle{answer: "{}"}
	cached := NewCached(next, client, "test:", time.Minute, logger.NewTestLogger(t))

	answer, err := cached.Extract(context.Background(), task, "score 720")
	require.NoError(t, err)
	assert.Equal(t, "{}", answer)
	assert.Equal(t, 1, next.calls)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestCached_HitFromMock(t *testing.T) {
	client, redisMock := redismock.NewClientMock()
	task := creditTask(t)
	key := CacheKey("p:", task, "hello")

	redisMock.ExpectGet(key).SetVal(`{"has_defaults": false}`)

	next := &countingOracle{}
	cached := NewCached(next, client, "p:", time.Minute, logger.NewNoOpLogger())

	answer, err := cached.Extract(context.Background(), task, "hello")
	require.NoError(t, err)
	assert.Equal(t, `{"has_defaults": false}`, answer)
	assert.Zero(t, next.calls)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}
