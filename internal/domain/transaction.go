package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionBuy      TransactionType = "BUY"
	TransactionSell     TransactionType = "SELL"
	TransactionDeposit  TransactionType = "DEPOSIT"
	TransactionWithdraw TransactionType = "WITHDRAW"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TransactionBuy, TransactionSell, TransactionDeposit, TransactionWithdraw:
		return true
	}
	return false
}

// Transaction is an append-only ledger entry. The total is derived from
// volume and price on every read and is never stored.
type Transaction struct {
	TransactionID uint            `gorm:"column:transaction_id;primaryKey;autoIncrement" json:"transaction_id"`
	UserID        uuid.UUID       `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	Ticker        *string         `gorm:"column:ticker;type:varchar(10)" json:"ticker"`
	Type          TransactionType `gorm:"column:transaction_type;type:varchar(10);not null" json:"transaction_type"`
	Volume        decimal.Decimal `gorm:"column:volume;type:decimal(20,8);not null;check:volume > 0" json:"volume"`
	PricePerUnit  decimal.Decimal `gorm:"column:price_per_unit;type:decimal(20,8);not null;check:price_per_unit > 0" json:"price_per_unit"`
	Timestamp     time.Time       `gorm:"column:timestamp;not null;index" json:"timestamp"`
}

func (Transaction) TableName() string {
	return "transactions"
}

func (t Transaction) TotalAmount() decimal.Decimal {
	return CashValue(t.Volume, t.PricePerUnit)
}

func (t Transaction) MarshalJSON() ([]byte, error) {
	type plain Transaction
	return json.Marshal(struct {
		plain
		TotalAmount decimal.Decimal `json:"total_amount"`
	}{plain(t), t.TotalAmount()})
}
