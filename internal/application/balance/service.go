package balance

import (
	"context"

	"digital-advisor/internal/application/ledger"
	"digital-advisor/internal/application/transactions"
	"digital-advisor/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service moves cash in and out of an account.
type Service struct {
	DB       *gorm.DB
	Recorder *transactions.Recorder
}

func NewService(db *gorm.DB, recorder *transactions.Recorder) *Service {
	return &Service{DB: db, Recorder: recorder}
}

// Deposit credits amount and records a DEPOSIT entry. Returns the new balance.
func (s *Service) Deposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, domain.InvalidArgument("Deposit amount must be greater than zero.")
	}
	if err := domain.CheckAmount("Deposit amount", amount); err != nil {
		return decimal.Zero, err
	}

	var newBalance decimal.Decimal
	err := ledger.WithTransaction(ctx, s.DB, func(tx *gorm.DB) error {
		acct, err := ledger.LockAccount(tx, userID)
		if err != nil {
			return err
		}
		acct.Balance = acct.Balance.Add(amount)
		if err := domain.CheckAmount("Resulting balance", acct.Balance); err != nil {
			return err
		}
		if err := ledger.SaveBalance(tx, acct); err != nil {
			return err
		}
		if _, err := s.Recorder.Record(tx, userID, domain.TransactionDeposit, amount, transactions.CashPrice, nil); err != nil {
			return err
		}
		newBalance = acct.Balance
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("amount", amount.String()).
		Str("balance", newBalance.String()).
		Msg("deposit committed")
	return newBalance, nil
}

// Withdraw debits amount and records a WITHDRAW entry. Returns the new balance.
func (s *Service) Withdraw(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, domain.InvalidArgument("Withdrawal amount must be greater than zero.")
	}
	if err := domain.CheckAmount("Withdrawal amount", amount); err != nil {
		return decimal.Zero, err
	}

	var newBalance decimal.Decimal
	err := ledger.WithTransaction(ctx, s.DB, func(tx *gorm.DB) error {
		acct, err := ledger.LockAccount(tx, userID)
		if err != nil {
			return err
		}
		if acct.Balance.LessThan(amount) {
			return &domain.InsufficientFundsError{Requested: amount, Available: acct.Balance}
		}
		acct.Balance = acct.Balance.Sub(amount)
		if err := ledger.SaveBalance(tx, acct); err != nil {
			return err
		}
		if _, err := s.Recorder.Record(tx, userID, domain.TransactionWithdraw, amount, transactions.CashPrice, nil); err != nil {
			return err
		}
		newBalance = acct.Balance
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("amount", amount.String()).
		Str("balance", newBalance.String()).
		Msg("withdrawal committed")
	return newBalance, nil
}

// ViewBalance returns the current cash balance.
func (s *Service) ViewBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	acct, err := ledger.GetAccount(ctx, s.DB, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return acct.Balance, nil
}
