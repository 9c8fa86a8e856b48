package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account holds a user's cash balance. Only the balance and trading services mutate it.
type Account struct {
	UserID    uuid.UUID       `gorm:"column:user_id;type:uuid;primaryKey" json:"user_id"`
	Balance   decimal.Decimal `gorm:"column:balance;type:decimal(20,8);not null;default:0;check:balance >= 0" json:"balance"`
	CreatedAt time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

func (Account) TableName() string {
	return "accounts"
}
