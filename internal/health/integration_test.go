//go:build integration

package health

import (
	"context"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// Run with: go test -tags=integration ./internal/health/... -run TestCollect_RealRedis -v
func TestCollect_RealRedis(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set, skipping integration test")
	}
	opt, err := redis.ParseURL(url)
	require.NoError(t, err)
	rdb := redis.NewClient(opt)
	defer rdb.Close()

	report := Collect(context.Background(), rdb, nil, nil)
	require.Equal(t, "connected", report.Dependencies["redis"].Status)
	require.NotNil(t, report.Dependencies["redis"].PingMs)
	require.Equal(t, StatusIssue, report.Status)
}
