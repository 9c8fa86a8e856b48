package holdings

import (
	"context"
	"testing"

	"digital-advisor/internal/domain"
	"digital-advisor/internal/infrastructure/database"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewPortfolio(t *testing.T) {
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	userID := uuid.New()
	require.NoError(t, db.Create(&domain.Account{UserID: userID, Balance: decimal.NewFromInt(42)}).Error)
	require.NoError(t, db.Create(&domain.Holding{UserID: userID, Ticker: "TSLA", Volume: decimal.NewFromInt(2)}).Error)
	require.NoError(t, db.Create(&domain.Holding{UserID: userID, Ticker: "AAPL", Volume: decimal.NewFromInt(1)}).Error)
	require.NoError(t, db.Create(&domain.Holding{UserID: uuid.New(), Ticker: "META", Volume: decimal.NewFromInt(9)}).Error)

	svc := &Service{DB: db}
	p, err := svc.ViewPortfolio(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, p.Holdings, 2)
	assert.Equal(t, "AAPL", p.Holdings[0].Ticker)
	assert.Equal(t, "TSLA", p.Holdings[1].Ticker)
	assert.True(t, p.CashBalance.Equal(decimal.NewFromInt(42)))
}

func TestViewPortfolio_UnknownUser(t *testing.T) {
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	_, err = (&Service{DB: db}).ViewPortfolio(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
