package balance

import (
	balancesvc "digital-advisor/internal/application/balance"
	"digital-advisor/internal/middleware"
	"digital-advisor/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type Handlers struct {
	Service *balancesvc.Service
}

type amountRequest struct {
	Amount *decimal.Decimal `json:"amount"`
}

func parseAmount(c *fiber.Ctx) (decimal.Decimal, bool) {
	var body amountRequest
	if err := c.BodyParser(&body); err != nil || body.Amount == nil {
		return decimal.Zero, false
	}
	return *body.Amount, true
}

func invalidAmount(c *fiber.Ctx) error {
	return response.Error(c, "Invalid input", fiber.StatusBadRequest, fiber.Map{"amount": "Amount is required."})
}

// Deposit POST /balance/deposit
func (h *Handlers) Deposit(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}
	amount, ok := parseAmount(c)
	if !ok {
		return invalidAmount(c)
	}
	balance, err := h.Service.Deposit(c.UserContext(), userID, amount)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Deposit successful", fiber.Map{"new_balance": balance}, nil)
}

// Withdraw POST /balance/withdraw
func (h *Handlers) Withdraw(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}
	amount, ok := parseAmount(c)
	if !ok {
		return invalidAmount(c)
	}
	balance, err := h.Service.Withdraw(c.UserContext(), userID, amount)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Withdrawal successful", fiber.Map{"new_balance": balance}, nil)
}

// Get GET /balance
func (h *Handlers) Get(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}
	balance, err := h.Service.ViewBalance(c.UserContext(), userID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Balance retrieved", fiber.Map{"balance": balance}, nil)
}
