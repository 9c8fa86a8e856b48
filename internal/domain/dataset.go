package domain

import "time"

// DataPoint is one minute of cleaned market and macro data for a ticker.
type DataPoint struct {
	Ticker               string    `gorm:"column:company_prefix;type:varchar(10);primaryKey" json:"ticker"`
	Timestamp            time.Time `gorm:"column:date_value;primaryKey" json:"timestamp"`
	Open                 float64   `gorm:"column:open_value;not null" json:"open"`
	High                 float64   `gorm:"column:high_value;not null" json:"high"`
	Low                  float64   `gorm:"column:low_value;not null" json:"low"`
	Close                float64   `gorm:"column:close_value;not null" json:"close"`
	Volume               int64     `gorm:"column:volume;not null" json:"volume"`
	GDPGrowth            *float64  `gorm:"column:gdp_growth" json:"gdp_growth"`
	CPI                  *float64  `gorm:"column:consumer_price_index_for_all_urban_consumers" json:"cpi"`
	RetailSales          *float64  `gorm:"column:retail_sales_data_excluding_food_services" json:"retail_sales"`
	CrudeOilPrice        *float64  `gorm:"column:crude_oil_price" json:"crude_oil_price"`
	InterestRate         *float64  `gorm:"column:interest_rate_fed_funds" json:"interest_rate"`
	VIX                  *float64  `gorm:"column:stock_market_volatility_vix_index" json:"vix"`
	TenYearTreasuryYield *float64  `gorm:"column:10_year_treasury_yield" json:"ten_year_treasury_yield"`
}

func (DataPoint) TableName() string {
	return "cleaned_dataset"
}

// Models lists every table owned by the service, in migration order.
func Models() []interface{} {
	return []interface{}{&User{}, &Account{}, &Holding{}, &Transaction{}, &Prediction{}, &DataPoint{}}
}
