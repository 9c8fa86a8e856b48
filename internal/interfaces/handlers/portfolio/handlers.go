package portfolio

import (
	"context"

	"digital-advisor/internal/application/holdings"
	"digital-advisor/internal/application/trading"
	"digital-advisor/internal/domain"
	"digital-advisor/internal/middleware"
	"digital-advisor/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const maxTickerLength = 8

// PriceOracle quotes the latest known close for a ticker.
type PriceOracle interface {
	LatestPrice(ctx context.Context, ticker string) (float64, bool, error)
}

type Handlers struct {
	Holdings *holdings.Service
	Trading  *trading.Service
	Prices   PriceOracle
}

type tradeRequest struct {
	Ticker string           `json:"ticker"`
	Volume *decimal.Decimal `json:"volume"`
}

type tradeFunc func(ctx context.Context, userID uuid.UUID, ticker string, volume, price decimal.Decimal) (*domain.Holding, decimal.Decimal, error)

// Get GET /portfolio
func (h *Handlers) Get(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}
	p, err := h.Holdings.ViewPortfolio(c.UserContext(), userID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Portfolio retrieved", p, nil)
}

// Buy POST /portfolio/buy
func (h *Handlers) Buy(c *fiber.Ctx) error {
	return h.trade(c, h.Trading.Buy, "Buy successful")
}

// Sell POST /portfolio/sell. The holding is null once fully sold.
func (h *Handlers) Sell(c *fiber.Ctx) error {
	return h.trade(c, h.Trading.Sell, "Sell successful")
}

func (h *Handlers) trade(c *fiber.Ctx, fn tradeFunc, message string) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}
	var body tradeRequest
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid input", fiber.StatusBadRequest, nil)
	}
	ticker := trading.NormalizeTicker(body.Ticker)
	errs := fiber.Map{}
	if ticker == "" {
		errs["ticker"] = "Ticker is required."
	} else if len(ticker) > maxTickerLength {
		errs["ticker"] = "Ticker must be at most 8 characters."
	}
	if body.Volume == nil {
		errs["volume"] = "Volume is required."
	}
	if len(errs) > 0 {
		return response.Error(c, "Invalid input", fiber.StatusBadRequest, errs)
	}

	ctx := c.UserContext()
	price, found, err := h.Prices.LatestPrice(ctx, ticker)
	if err != nil {
		return response.FromError(c, err)
	}
	if !found {
		return response.FromError(c, domain.NotFound("Price for ticker %s not found.", ticker))
	}

	holding, balance, err := fn(ctx, userID, ticker, *body.Volume, decimal.NewFromFloat(price).Round(domain.AmountScale))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, message, fiber.Map{
		"holding":     holding,
		"new_balance": balance,
	}, nil)
}
