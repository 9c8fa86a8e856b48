package transactions

import (
	txsvc "digital-advisor/internal/application/transactions"
	"digital-advisor/internal/middleware"
	"digital-advisor/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *txsvc.Service
}

// List GET /transactions, most recent first.
func (h *Handlers) List(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}
	list, err := h.Service.ViewTransactions(c.UserContext(), userID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Transactions retrieved", fiber.Map{"transactions": list}, nil)
}
