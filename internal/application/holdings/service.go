package holdings

import (
	"context"

	"digital-advisor/internal/application/ledger"
	"digital-advisor/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service encapsulates read-only portfolio queries.
type Service struct {
	DB *gorm.DB
}

// Portfolio is a user's holdings together with their cash balance.
type Portfolio struct {
	Holdings    []domain.Holding `json:"holdings"`
	CashBalance decimal.Decimal  `json:"cash_balance"`
}

// ViewPortfolio returns every holding of a user ordered by ticker.
func (s *Service) ViewPortfolio(ctx context.Context, userID uuid.UUID) (*Portfolio, error) {
	if userID == uuid.Nil {
		return nil, domain.InvalidArgument("user_id is required")
	}

	acct, err := ledger.GetAccount(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}

	holdings := []domain.Holding{}
	if err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("ticker ASC").
		Find(&holdings).Error; err != nil {
		return nil, err
	}

	return &Portfolio{Holdings: holdings, CashBalance: acct.Balance}, nil
}
