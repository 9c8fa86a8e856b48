package prices

import (
	"strings"

	pricesvc "digital-advisor/internal/application/prices"
	"digital-advisor/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *pricesvc.Service
}

// Latest GET /prices?tickers=A,B. Unknown tickers are absent from the result.
func (h *Handlers) Latest(c *fiber.Ctx) error {
	raw := strings.TrimSpace(c.Query("tickers"))
	if raw == "" {
		return response.Error(c, "Missing tickers query parameter", fiber.StatusBadRequest, nil)
	}
	prices, err := h.Service.LatestPrices(c.UserContext(), strings.Split(raw, ","))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Latest prices", prices, nil)
}
