package testutil

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisLockKeyFmt = "citation-poller:testutil:db_lock:%d"
	redisLockTTL    = 30 * time.Minute
)

// redisCandidates are tried in order when REDIS_ADDR is unset: compose service name,
// a default local install, then the local test profile.
var redisCandidates = []string{"redis:6379", "localhost:6379", "localhost:56379"}

// SetupTestRedis returns a client on an empty Redis DB reserved for this test.
// The test is skipped when no Redis is reachable, unless TEST_REQUIRE_REDIS is set.
func SetupTestRedis(t TestingTB) *redis.Client {
	t.Helper()

	addr, err := findTestRedis()
	if err != nil {
		if requireRedis() {
			t.Fatal("redis not available for testing:", err)
		}
		t.Skip("redis not available for testing:", err)
	}

	client := redis.NewClient(&redis.Options{Addr: addr, DB: reserveRedisDB(t, addr)})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.FlushDB(ctx).Err(); err != nil {
		closeQuietly(t, "redis client", client)
		t.Fatalf("flush test redis db at %s: %v", addr, err)
	}
	return client
}

func findTestRedis() (string, error) {
	candidates := redisCandidates
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		candidates = []string{addr}
	}

	var lastErr error
	for _, addr := range candidates {
		if lastErr = pingRedis(addr); lastErr == nil {
			return addr, nil
		}
	}
	return "", lastErr
}

func pingRedis(addr string) error {
	c := redis.NewClient(&redis.Options{Addr: addr})
	defer c.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%s: %w", addr, err)
	}
	return nil
}

// reserveRedisDB picks the DB index for a test. TEST_REDIS_DB wins; otherwise a DB in 1..15 is
// reserved with a SETNX lock held in DB 0 so that parallel packages never flush each other.
func reserveRedisDB(t TestingTB, addr string) int {
	if v := os.Getenv("TEST_REDIS_DB"); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i >= 0 {
			return i
		}
		t.Logf("ignoring invalid TEST_REDIS_DB=%q", v)
	}

	meta := redis.NewClient(&redis.Options{Addr: addr, DB: 0})
	defer closeQuietly(t, "redis meta client", meta)

	owner := fmt.Sprintf("%d:%d", os.Getpid(), time.Now().UnixNano())
	for i := 1; i <= 15; i++ {
		key := fmt.Sprintf(redisLockKeyFmt, i)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		ok, err := meta.SetNX(ctx, key, owner, redisLockTTL).Result()
		cancel()
		if err != nil || !ok {
			continue
		}
		releaseOnCleanup(t, addr, key)
		return i
	}

	t.Logf("no free redis test DB at %s, sharing DB 1", addr)
	return 1
}

func releaseOnCleanup(t TestingTB, addr, key string) {
	tc, ok := any(t).(interface{ Cleanup(func()) })
	if !ok {
		return
	}
	tc.Cleanup(func() {
		c := redis.NewClient(&redis.Options{Addr: addr, DB: 0})
		defer closeQuietly(t, "redis cleanup client", c)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := c.Del(ctx, key).Err(); err != nil {
			t.Logf("warning: release redis db lock %s: %v", key, err)
		}
	})
}
