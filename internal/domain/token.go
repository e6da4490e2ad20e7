package domain

// TokenSnapshot is the token and market state captured once at the start
// of a session. It is never mutated; a new session re-fetches.
// Numeric fields are nullable because the upstream data providers
// routinely omit them for young or illiquid tokens.
type TokenSnapshot struct {
	Address           ContractAddress
	Name              string
	TotalSupply       *float64
	CirculatingSupply *float64
	PriceUSD          *float64
	PriceNative       *float64
	LiquidityUSD      *float64
	Volume24hUSD      *float64
	HolderCount       *float64

	// SecurityFlags and TradingFlags carry raw provider values
	// (typically "0"/"1" or numeric strings) keyed by flag name.
	// Interpretation belongs to the report checklist tables.
	SecurityFlags map[string]string
	TradingFlags  map[string]string
}

// MarketCapUSD derives market cap from circulating supply and USD price.
// Returns nil when either input is missing.
func (s *TokenSnapshot) MarketCapUSD() *float64 {
	if s.CirculatingSupply == nil || s.PriceUSD == nil {
		return nil
	}
	v := *s.CirculatingSupply * *s.PriceUSD
	return &v
}
