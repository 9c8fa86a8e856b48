package domain

// Model input features, in the column order the scalers were fitted with.
const (
	FeatureClose        = "close_value"
	FeatureVolume       = "volume"
	FeatureMA10         = "ma10"
	FeatureMA30         = "ma30"
	FeatureVolatility   = "volatility"
	FeatureGDPGrowth    = "gdp_growth"
	FeatureCPI          = "consumer_price_index_for_all_urban_consumers"
	FeatureRetailSales  = "retail_sales_data_excluding_food_services"
	FeatureCrudeOil     = "crude_oil_price"
	FeatureInterestRate = "interest_rate_fed_funds"
	FeatureVIX          = "stock_market_volatility_vix_index"
	FeatureTreasury10Y  = "ten_year_treasury_yield"
)

// FeatureNames is the fixed model input layout.
var FeatureNames = []string{
	FeatureClose,
	FeatureVolume,
	FeatureMA10,
	FeatureMA30,
	FeatureVolatility,
	FeatureGDPGrowth,
	FeatureCPI,
	FeatureRetailSales,
	FeatureCrudeOil,
	FeatureInterestRate,
	FeatureVIX,
	FeatureTreasury10Y,
}

// FeatureSet maps a feature name to its oldest-first sequence.
type FeatureSet map[string][]float64

// Validate checks that every model feature is present with exactly seqLength values.
func (f FeatureSet) Validate(seqLength int) error {
	for _, name := range FeatureNames {
		if got := len(f[name]); got != seqLength {
			return InvalidArgument("Feature '%s' length %d does not match sequence length %d.", name, got, seqLength)
		}
	}
	return nil
}

// Matrix lays the set out as seqLength rows of len(FeatureNames) columns.
// Call Validate first.
func (f FeatureSet) Matrix(seqLength int) [][]float64 {
	rows := make([][]float64, seqLength)
	for i := range rows {
		row := make([]float64, len(FeatureNames))
		for j, name := range FeatureNames {
			row[j] = f[name][i]
		}
		rows[i] = row
	}
	return rows
}
