package transactions

import (
	"context"
	"time"

	"digital-advisor/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CashPrice is the unit price recorded for DEPOSIT and WITHDRAW entries.
var CashPrice = decimal.NewFromInt(1)

// Recorder appends ledger entries inside the caller's transaction. It never
// commits and never touches balances or holdings.
type Recorder struct {
	Now func() time.Time
}

func NewRecorder() *Recorder {
	return &Recorder{Now: time.Now}
}

// Record validates and appends one entry. The total is derived from volume and
// price, so it cannot be passed in.
func (r *Recorder) Record(tx *gorm.DB, userID uuid.UUID, typ domain.TransactionType, volume, pricePerUnit decimal.Decimal, ticker *string) (*domain.Transaction, error) {
	if !volume.IsPositive() {
		return nil, domain.InvalidArgument("Transaction volume/amount must be greater than zero.")
	}
	if !pricePerUnit.IsPositive() {
		return nil, domain.InvalidArgument("Transaction price per unit must be greater than zero.")
	}
	if err := domain.CheckAmount("Transaction volume/amount", volume); err != nil {
		return nil, err
	}
	if err := domain.CheckAmount("Transaction price per unit", pricePerUnit); err != nil {
		return nil, err
	}
	if !typ.Valid() {
		return nil, domain.InvalidArgument("Invalid transaction type %q. Must be one of BUY, SELL, DEPOSIT, WITHDRAW.", string(typ))
	}

	now := time.Now
	if r != nil && r.Now != nil {
		now = r.Now
	}
	entry := &domain.Transaction{
		UserID:       userID,
		Ticker:       ticker,
		Type:         typ,
		Volume:       volume,
		PricePerUnit: pricePerUnit,
		Timestamp:    now().UTC(),
	}
	if err := tx.Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

type Service struct {
	DB *gorm.DB
}

// ViewTransactions returns a user's ledger entries, most recent first.
func (s *Service) ViewTransactions(ctx context.Context, userID uuid.UUID) ([]domain.Transaction, error) {
	if userID == uuid.Nil {
		return nil, domain.InvalidArgument("user_id is required")
	}
	txs := []domain.Transaction{}
	if err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC").
		Order("transaction_id DESC").
		Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}
