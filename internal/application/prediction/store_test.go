package prediction

import (
	"context"
	"testing"
	"time"

	"digital-advisor/internal/domain"
	"digital-advisor/internal/infrastructure/database"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return &Store{DB: db, Redis: rdb, TTL: time.Hour}, mr
}

func TestStore_SaveFirstWriterWins(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()
	target := time.Date(2025, 3, 3, 15, 1, 0, 0, time.UTC)

	created, err := store.Save(ctx, &domain.Prediction{Ticker: "TSLA", Timestamp: target, PredictedPrice: 301.25})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = store.Save(ctx, &domain.Prediction{Ticker: "TSLA", Timestamp: target, PredictedPrice: 999})
	require.NoError(t, err)
	assert.False(t, created)

	got, err := store.Get(ctx, "TSLA", target)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 301.25, got.PredictedPrice)

	val, err := mr.Get(cacheKey("TSLA", target))
	require.NoError(t, err)
	assert.Equal(t, "301.25", val)
	assert.Equal(t, time.Hour, mr.TTL(cacheKey("TSLA", target)))

	var n int64
	store.DB.Model(&domain.Prediction{}).Count(&n)
	assert.EqualValues(t, 1, n)
}

func TestStore_GetMissAndWarm(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()
	target := time.Date(2025, 3, 3, 15, 2, 0, 0, time.UTC)

	got, err := store.Get(ctx, "META", target)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, store.DB.Create(&domain.Prediction{Ticker: "META", Timestamp: target, PredictedPrice: 512.5}).Error)
	assert.False(t, mr.Exists(cacheKey("META", target)))

	got, err = store.Get(ctx, "META", target)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, mr.Exists(cacheKey("META", target)))
}

func TestStore_RedisDownFallsBackToDB(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()
	target := time.Date(2025, 3, 3, 15, 3, 0, 0, time.UTC)
	require.NoError(t, store.DB.Create(&domain.Prediction{Ticker: "PEP", Timestamp: target, PredictedPrice: 170.1}).Error)

	mr.Close()
	got, err := store.Get(ctx, "PEP", target)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 170.1, got.PredictedPrice)
}

func TestStore_Latest(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 3, 15, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := store.Save(ctx, &domain.Prediction{Ticker: "NVDA", Timestamp: base.Add(time.Duration(i) * time.Minute), PredictedPrice: float64(i)})
		require.NoError(t, err)
	}

	got, err := store.Latest(ctx, "NVDA", 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 4.0, got[0].PredictedPrice)
	assert.Equal(t, 2.0, got[2].PredictedPrice)
}
