package trading

import (
	"context"
	"strings"

	"digital-advisor/internal/application/ledger"
	"digital-advisor/internal/application/transactions"
	"digital-advisor/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service buys and sells tickers against a user's cash balance. Each trade
// is one atomic unit over the account, the holding and a ledger entry.
type Service struct {
	DB       *gorm.DB
	Recorder *transactions.Recorder
}

func NewService(db *gorm.DB, recorder *transactions.Recorder) *Service {
	return &Service{DB: db, Recorder: recorder}
}

// NormalizeTicker upper-cases and trims a ticker symbol.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

func validateTrade(side, ticker string, volume, price decimal.Decimal) error {
	if ticker == "" {
		return domain.InvalidArgument("Ticker is required.")
	}
	if !volume.IsPositive() {
		return domain.InvalidArgument("%s volume must be greater than zero.", side)
	}
	if !price.IsPositive() {
		return domain.InvalidArgument("Price per unit must be greater than zero.")
	}
	if err := domain.CheckAmount(side+" volume", volume); err != nil {
		return err
	}
	return domain.CheckAmount("Price per unit", price)
}

// Buy debits volume*price and adds volume to the holding, creating it on the
// first purchase. Returns the holding and the new balance.
func (s *Service) Buy(ctx context.Context, userID uuid.UUID, ticker string, volume, price decimal.Decimal) (*domain.Holding, decimal.Decimal, error) {
	ticker = NormalizeTicker(ticker)
	if err := validateTrade("Buy", ticker, volume, price); err != nil {
		return nil, decimal.Zero, err
	}
	totalCost := domain.CashValue(volume, price)

	var (
		holding    *domain.Holding
		newBalance decimal.Decimal
	)
	err := ledger.WithTransaction(ctx, s.DB, func(tx *gorm.DB) error {
		acct, err := ledger.LockAccount(tx, userID)
		if err != nil {
			return err
		}
		if acct.Balance.LessThan(totalCost) {
			return &domain.InsufficientFundsError{Requested: totalCost, Available: acct.Balance}
		}
		acct.Balance = acct.Balance.Sub(totalCost)
		if err := ledger.SaveBalance(tx, acct); err != nil {
			return err
		}

		h, err := ledger.LockHolding(tx, userID, ticker)
		if err != nil {
			return err
		}
		if h == nil {
			h = &domain.Holding{UserID: userID, Ticker: ticker, Volume: volume}
			if err := tx.Create(h).Error; err != nil {
				return err
			}
		} else {
			h.Volume = h.Volume.Add(volume)
			if err := domain.CheckAmount("Resulting holding volume", h.Volume); err != nil {
				return err
			}
			if err := tx.Model(h).Update("volume", h.Volume).Error; err != nil {
				return err
			}
		}

		t := ticker
		if _, err := s.Recorder.Record(tx, userID, domain.TransactionBuy, volume, price, &t); err != nil {
			return err
		}
		holding = h
		newBalance = acct.Balance
		return nil
	})
	if err != nil {
		return nil, decimal.Zero, err
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("ticker", ticker).
		Str("volume", volume.String()).
		Str("price", price.String()).
		Str("balance", newBalance.String()).
		Msg("buy committed")
	return holding, newBalance, nil
}

// Sell credits volume*price and reduces the holding. A holding that reaches
// zero is deleted and nil is returned in its place.
func (s *Service) Sell(ctx context.Context, userID uuid.UUID, ticker string, volume, price decimal.Decimal) (*domain.Holding, decimal.Decimal, error) {
	ticker = NormalizeTicker(ticker)
	if err := validateTrade("Sell", ticker, volume, price); err != nil {
		return nil, decimal.Zero, err
	}
	revenue := domain.CashValue(volume, price)

	var (
		holding    *domain.Holding
		newBalance decimal.Decimal
	)
	err := ledger.WithTransaction(ctx, s.DB, func(tx *gorm.DB) error {
		acct, err := ledger.LockAccount(tx, userID)
		if err != nil {
			return err
		}
		h, err := ledger.LockHolding(tx, userID, ticker)
		if err != nil {
			return err
		}
		if h == nil {
			return domain.NotFound("Ticker '%s' not found in user's portfolio.", ticker)
		}
		if h.Volume.LessThan(volume) {
			return &domain.InsufficientHoldingsError{Ticker: ticker, Available: h.Volume, Attempted: volume}
		}

		acct.Balance = acct.Balance.Add(revenue)
		if err := domain.CheckAmount("Resulting balance", acct.Balance); err != nil {
			return err
		}
		if err := ledger.SaveBalance(tx, acct); err != nil {
			return err
		}

		h.Volume = h.Volume.Sub(volume)
		if h.Volume.Sign() <= 0 {
			if err := tx.Delete(h).Error; err != nil {
				return err
			}
			h = nil
		} else if err := tx.Model(h).Update("volume", h.Volume).Error; err != nil {
			return err
		}

		t := ticker
		if _, err := s.Recorder.Record(tx, userID, domain.TransactionSell, volume, price, &t); err != nil {
			return err
		}
		holding = h
		newBalance = acct.Balance
		return nil
	})
	if err != nil {
		return nil, decimal.Zero, err
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("ticker", ticker).
		Str("volume", volume.String()).
		Str("price", price.String()).
		Bool("liquidated", holding == nil).
		Str("balance", newBalance.String()).
		Msg("sell committed")
	return holding, newBalance, nil
}
