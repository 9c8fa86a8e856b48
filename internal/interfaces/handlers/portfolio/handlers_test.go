package portfolio

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"digital-advisor/internal/application/holdings"
	"digital-advisor/internal/application/prices"
	"digital-advisor/internal/application/trading"
	"digital-advisor/internal/application/transactions"
	"digital-advisor/internal/domain"
	"digital-advisor/internal/infrastructure/database"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var quoteTime = time.Date(2025, 3, 3, 15, 59, 0, 0, time.UTC)

func setupPortfolioApp(t *testing.T, oracle PriceOracle) (*fiber.App, *gorm.DB) {
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	user := domain.User{Username: "trader", Email: "trader@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)
	require.NoError(t, db.Create(&domain.Account{UserID: user.UserID, Balance: decimal.NewFromInt(1000)}).Error)

	if oracle == nil {
		oracle = &prices.Service{DB: db}
	}
	recorder := transactions.NewRecorder()
	h := &Handlers{
		Holdings: &holdings.Service{DB: db},
		Trading:  trading.NewService(db, recorder),
		Prices:   oracle,
	}
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", user.UserID)
		return c.Next()
	})
	app.Get("/portfolio", h.Get)
	app.Post("/portfolio/buy", h.Buy)
	app.Post("/portfolio/sell", h.Sell)
	return app, db
}

func quote(t *testing.T, db *gorm.DB, ticker string, at time.Time, close float64) {
	require.NoError(t, db.Create(&domain.DataPoint{Ticker: ticker, Timestamp: at, Close: close}).Error)
}

func call(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &out))
	return resp.StatusCode, out
}

func data(out map[string]interface{}) map[string]interface{} {
	d, _ := out["data"].(map[string]interface{})
	return d
}

func errMsg(out map[string]interface{}) string {
	e, _ := out["error"].(map[string]interface{})
	s, _ := e["message"].(string)
	return s
}

func TestBuyThenSellAtNewPrice(t *testing.T) {
	app, db := setupPortfolioApp(t, nil)
	quote(t, db, "TSLA", quoteTime, 600)

	code, out := call(t, app, "POST", "/portfolio/buy", `{"ticker":"tsla","volume":1}`)
	require.Equal(t, fiber.StatusOK, code, errMsg(out))
	assert.Equal(t, "Buy successful", out["message"])
	assert.Equal(t, "400", data(out)["new_balance"])
	holding := data(out)["holding"].(map[string]interface{})
	assert.Equal(t, "TSLA", holding["ticker"])
	assert.Equal(t, "1", holding["volume"])

	quote(t, db, "TSLA", quoteTime.Add(time.Minute), 640)

	code, out = call(t, app, "POST", "/portfolio/sell", `{"ticker":"TSLA","volume":1}`)
	require.Equal(t, fiber.StatusOK, code, errMsg(out))
	assert.Equal(t, "Sell successful", out["message"])
	assert.Nil(t, data(out)["holding"])
	assert.Equal(t, "1040", data(out)["new_balance"])

	code, out = call(t, app, "GET", "/portfolio", "")
	require.Equal(t, fiber.StatusOK, code)
	assert.Empty(t, data(out)["holdings"])
	assert.Equal(t, "1040", data(out)["cash_balance"])
}

func TestBuy_UnknownPrice(t *testing.T) {
	app, _ := setupPortfolioApp(t, nil)

	code, out := call(t, app, "POST", "/portfolio/buy", `{"ticker":"nvda","volume":1}`)
	assert.Equal(t, fiber.StatusNotFound, code)
	assert.Equal(t, "Price for ticker NVDA not found.", errMsg(out))
}

func TestBuy_InsufficientFunds(t *testing.T) {
	app, db := setupPortfolioApp(t, nil)
	quote(t, db, "META", quoteTime, 600)

	code, out := call(t, app, "POST", "/portfolio/buy", `{"ticker":"META","volume":2}`)
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, "Insufficient funds. Requested: 1200.00, Available: 1000.00", errMsg(out))
}

func TestSell_NotHeld(t *testing.T) {
	app, db := setupPortfolioApp(t, nil)
	quote(t, db, "PEP", quoteTime, 170)

	code, out := call(t, app, "POST", "/portfolio/sell", `{"ticker":"PEP","volume":1}`)
	assert.Equal(t, fiber.StatusNotFound, code)
	assert.Equal(t, "Ticker 'PEP' not found in user's portfolio.", errMsg(out))
}

func TestTrade_ValidatesBody(t *testing.T) {
	app, _ := setupPortfolioApp(t, nil)

	code, out := call(t, app, "POST", "/portfolio/buy", `{"volume":1}`)
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, "Ticker is required.", out["error"].(map[string]interface{})["details"].(map[string]interface{})["ticker"])

	code, out = call(t, app, "POST", "/portfolio/buy", `{"ticker":"TOOLONGTICKER","volume":1}`)
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, "Invalid input", errMsg(out))

	code, _ = call(t, app, "POST", "/portfolio/sell", `{"ticker":"TSLA"}`)
	assert.Equal(t, fiber.StatusBadRequest, code)
}

type failingOracle struct{}

func (failingOracle) LatestPrice(context.Context, string) (float64, bool, error) {
	return 0, false, domain.Unavailable(errors.New("db down"), "Price data is temporarily unavailable.")
}

func TestBuy_OracleUnavailable(t *testing.T) {
	app, _ := setupPortfolioApp(t, failingOracle{})

	req := httptest.NewRequest("POST", "/portfolio/buy", strings.NewReader(`{"ticker":"TSLA","volume":1}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}
