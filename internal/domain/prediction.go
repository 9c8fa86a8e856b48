package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Prediction caches a model output for one ticker at one future minute.
// Timestamp is the instant being predicted, not the creation time.
type Prediction struct {
	PredictionID   uint              `gorm:"column:prediction_id;primaryKey;autoIncrement" json:"prediction_id"`
	Ticker         string            `gorm:"column:ticker;type:varchar(10);not null;uniqueIndex:idx_predictions_ticker_timestamp" json:"ticker"`
	Timestamp      time.Time         `gorm:"column:timestamp;not null;uniqueIndex:idx_predictions_ticker_timestamp" json:"timestamp"`
	PredictedPrice float64           `gorm:"column:predicted_price;not null" json:"predicted_price"`
	Meta           datatypes.JSONMap `gorm:"column:meta" json:"meta,omitempty"`
	CreatedAt      time.Time         `gorm:"column:created_at" json:"created_at"`
}

func (Prediction) TableName() string {
	return "predictions"
}
