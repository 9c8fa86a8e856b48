package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Holding is a user's owned volume of one ticker. A row exists only while volume > 0.
type Holding struct {
	HoldingID uuid.UUID       `gorm:"column:holding_id;type:uuid;primaryKey" json:"holding_id"`
	UserID    uuid.UUID       `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_holdings_user_ticker" json:"user_id"`
	Ticker    string          `gorm:"column:ticker;type:varchar(10);not null;uniqueIndex:idx_holdings_user_ticker" json:"ticker"`
	Volume    decimal.Decimal `gorm:"column:volume;type:decimal(20,8);not null;check:volume > 0" json:"volume"`
	CreatedAt time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

func (Holding) TableName() string {
	return "holdings"
}

// BeforeCreate: never insert zero UUID for primary key; generate random when not set.
func (h *Holding) BeforeCreate(tx *gorm.DB) error {
	if h.HoldingID == uuid.Nil {
		h.HoldingID = uuid.New()
	}
	return nil
}
