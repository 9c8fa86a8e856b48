package trading

import (
	"context"
	"errors"
	"sync"
	"testing"

	"digital-advisor/internal/application/transactions"
	"digital-advisor/internal/domain"
	"digital-advisor/internal/infrastructure/database"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTradingTest(t *testing.T, start int64) (*Service, *gorm.DB, uuid.UUID) {
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	user := domain.User{Username: "trader", Email: "trader@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)
	require.NoError(t, db.Create(&domain.Account{UserID: user.UserID, Balance: decimal.NewFromInt(start)}).Error)

	return NewService(db, transactions.NewRecorder()), db, user.UserID
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func loadBalance(t *testing.T, db *gorm.DB, userID uuid.UUID) decimal.Decimal {
	var acct domain.Account
	require.NoError(t, db.Where("user_id = ?", userID).First(&acct).Error)
	return acct.Balance
}

func TestBuy_CreatesThenIncrementsHolding(t *testing.T) {
	svc, db, userID := setupTradingTest(t, 1000)
	ctx := context.Background()

	h, bal, err := svc.Buy(ctx, userID, "aapl", d("2"), d("100"))
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.Equal(t, "AAPL", h.Ticker)
	assert.True(t, h.Volume.Equal(d("2")))
	assert.True(t, bal.Equal(d("800")))

	h, bal, err = svc.Buy(ctx, userID, "AAPL", d("1.5"), d("100"))
	require.NoError(t, err)
	assert.True(t, h.Volume.Equal(d("3.5")), h.Volume.String())
	assert.True(t, bal.Equal(d("650")))

	var count int64
	require.NoError(t, db.Model(&domain.Holding{}).Where("user_id = ?", userID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestBuy_InsufficientFundsRollsBack(t *testing.T) {
	svc, db, userID := setupTradingTest(t, 100)

	_, _, err := svc.Buy(context.Background(), userID, "NVDA", d("3"), d("50"))
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
	var fundsErr *domain.InsufficientFundsError
	require.ErrorAs(t, err, &fundsErr)
	assert.True(t, fundsErr.Requested.Equal(d("150")))
	assert.True(t, fundsErr.Available.Equal(d("100")))

	assert.True(t, loadBalance(t, db, userID).Equal(d("100")))
	var holdings, txs int64
	db.Model(&domain.Holding{}).Count(&holdings)
	db.Model(&domain.Transaction{}).Count(&txs)
	assert.Zero(t, holdings)
	assert.Zero(t, txs)
}

func TestBuy_RejectsInvalidInput(t *testing.T) {
	svc, _, userID := setupTradingTest(t, 100)
	ctx := context.Background()

	_, _, err := svc.Buy(ctx, userID, "TSLA", d("0"), d("10"))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, _, err = svc.Buy(ctx, userID, "TSLA", d("1"), d("-1"))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, _, err = svc.Buy(ctx, userID, "  ", d("1"), d("1"))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, _, err = svc.Buy(ctx, uuid.New(), "TSLA", d("1"), d("1"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSell_PartialKeepsHolding(t *testing.T) {
	svc, _, userID := setupTradingTest(t, 1000)
	ctx := context.Background()
	_, _, err := svc.Buy(ctx, userID, "PEP", d("5"), d("10"))
	require.NoError(t, err)

	h, bal, err := svc.Sell(ctx, userID, "PEP", d("2"), d("12"))
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.True(t, h.Volume.Equal(d("3")))
	assert.True(t, bal.Equal(d("974")))
}

func TestSell_MissingHolding(t *testing.T) {
	svc, _, userID := setupTradingTest(t, 1000)
	_, _, err := svc.Sell(context.Background(), userID, "META", d("1"), d("10"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.EqualError(t, err, "Ticker 'META' not found in user's portfolio.")
}

func TestSell_MoreThanHeldChangesNothing(t *testing.T) {
	svc, db, userID := setupTradingTest(t, 1000)
	ctx := context.Background()
	_, _, err := svc.Buy(ctx, userID, "BKNG", d("2"), d("100"))
	require.NoError(t, err)

	_, _, err = svc.Sell(ctx, userID, "BKNG", d("3"), d("100"))
	require.ErrorIs(t, err, domain.ErrInsufficientHoldings)
	assert.Equal(t, "Not enough volume of BKNG to sell. Available: 2.0000, Attempted: 3.0000", err.Error())

	assert.True(t, loadBalance(t, db, userID).Equal(d("800")))
	var h domain.Holding
	require.NoError(t, db.Where("user_id = ? AND ticker = ?", userID, "BKNG").First(&h).Error)
	assert.True(t, h.Volume.Equal(d("2")))
	var txs int64
	db.Model(&domain.Transaction{}).Where("user_id = ?", userID).Count(&txs)
	assert.EqualValues(t, 1, txs)
}

func TestBuySellScenario(t *testing.T) {
	svc, db, userID := setupTradingTest(t, 1000)
	ctx := context.Background()

	h, bal, err := svc.Buy(ctx, userID, "TSLA", d("2"), d("300"))
	require.NoError(t, err)
	assert.True(t, bal.Equal(d("400")))
	assert.True(t, h.Volume.Equal(d("2")))

	h, bal, err = svc.Sell(ctx, userID, "TSLA", d("2"), d("320"))
	require.NoError(t, err)
	assert.Nil(t, h)
	assert.True(t, bal.Equal(d("1040")))

	var remaining int64
	db.Model(&domain.Holding{}).Where("user_id = ? AND ticker = ?", userID, "TSLA").Count(&remaining)
	assert.Zero(t, remaining)

	txs, err := (&transactions.Service{DB: db}).ViewTransactions(ctx, userID)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, domain.TransactionSell, txs[0].Type)
	assert.True(t, txs[0].TotalAmount().Equal(d("640")))
	assert.Equal(t, domain.TransactionBuy, txs[1].Type)
	assert.True(t, txs[1].TotalAmount().Equal(d("600")))
}

func TestBuy_ConcurrentNoLostUpdates(t *testing.T) {
	svc, db, userID := setupTradingTest(t, 10000)
	const n = 20
	v := d("1.25")

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := svc.Buy(context.Background(), userID, "PLTR", v, d("10"))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var h domain.Holding
	require.NoError(t, db.Where("user_id = ? AND ticker = ?", userID, "PLTR").First(&h).Error)
	assert.True(t, h.Volume.Equal(v.Mul(decimal.NewFromInt(n))), h.Volume.String())
	assert.True(t, loadBalance(t, db, userID).Equal(d("9750")))
}

func TestBuy_RejectsVolumeOutsideLedgerPrecision(t *testing.T) {
	svc, db, userID := setupTradingTest(t, 1000)
	ctx := context.Background()

	for _, v := range []string{"0.333333333", "0.000000001"} {
		_, _, err := svc.Buy(ctx, userID, "TSLA", d(v), d("10"))
		assert.ErrorIs(t, err, domain.ErrInvalidArgument, v)
	}
	_, _, err := svc.Sell(ctx, userID, "TSLA", d("1"), d("10.123456789"))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	assert.True(t, loadBalance(t, db, userID).Equal(d("1000")))
	var txs int64
	db.Model(&domain.Transaction{}).Where("user_id = ?", userID).Count(&txs)
	assert.Zero(t, txs)
}

func TestFractionalRoundTripRestoresBalance(t *testing.T) {
	svc, db, userID := setupTradingTest(t, 1000)
	ctx := context.Background()
	volume, price := d("0.33333333"), d("287.49")
	cost := d("95.82999904")

	h, bal, err := svc.Buy(ctx, userID, "BKNG", volume, price)
	require.NoError(t, err)
	assert.True(t, h.Volume.Equal(volume))
	assert.True(t, bal.Equal(d("1000").Sub(cost)), bal.String())
	assert.True(t, loadBalance(t, db, userID).Equal(bal))

	h, bal, err = svc.Sell(ctx, userID, "BKNG", volume, price)
	require.NoError(t, err)
	assert.Nil(t, h)
	assert.True(t, bal.Equal(d("1000")), bal.String())

	txs, err := (&transactions.Service{DB: db}).ViewTransactions(ctx, userID)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.True(t, txs[0].TotalAmount().Equal(cost))
	assert.True(t, txs[1].TotalAmount().Equal(cost))
}

func TestSell_ConcurrentNeverOversells(t *testing.T) {
	svc, db, userID := setupTradingTest(t, 100)
	ctx := context.Background()
	_, _, err := svc.Buy(ctx, userID, "NVDA", d("5"), d("20"))
	require.NoError(t, err)

	const n = 10
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := svc.Sell(ctx, userID, "NVDA", d("1"), d("30"))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	ok := 0
	for err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.True(t, errors.Is(err, domain.ErrInsufficientHoldings) || errors.Is(err, domain.ErrNotFound), err.Error())
	}
	assert.Equal(t, 5, ok)

	var left int64
	db.Model(&domain.Holding{}).Where("user_id = ? AND ticker = ?", userID, "NVDA").Count(&left)
	assert.Zero(t, left)
	assert.True(t, loadBalance(t, db, userID).Equal(d("150")))

	var sells int64
	db.Model(&domain.Transaction{}).Where("user_id = ? AND transaction_type = ?", userID, domain.TransactionSell).Count(&sells)
	assert.EqualValues(t, 5, sells)
}

func TestBuySell_ConcurrentMixKeepsLedgerConsistent(t *testing.T) {
	svc, db, userID := setupTradingTest(t, 100)
	ctx := context.Background()
	_, _, err := svc.Buy(ctx, userID, "META", d("2"), d("10"))
	require.NoError(t, err)

	const rounds = 8
	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		bought, sold int64
	)
	for i := 0; i < rounds; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, _, err := svc.Buy(ctx, userID, "META", d("1"), d("10")); err == nil {
				mu.Lock()
				bought++
				mu.Unlock()
			}
		}()
		go func() {
			defer wg.Done()
			if _, _, err := svc.Sell(ctx, userID, "META", d("1"), d("10")); err == nil {
				mu.Lock()
				sold++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	want := decimal.NewFromInt(2 + bought - sold)
	var h domain.Holding
	err = db.Where("user_id = ? AND ticker = ?", userID, "META").First(&h).Error
	if want.IsZero() {
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	} else {
		require.NoError(t, err)
		assert.True(t, h.Volume.Equal(want), h.Volume.String())
	}
	balance := loadBalance(t, db, userID)
	assert.True(t, balance.Equal(decimal.NewFromInt(80-10*bought+10*sold)), balance.String())
	assert.False(t, balance.IsNegative())
}
