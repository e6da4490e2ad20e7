package report

import (
	"fmt"
	"strings"

	"blockrover/internal/domain"
)

// Significant digits per rendered field.
const (
	sigSupply    = 4
	sigPrice     = 5
	sigVolume    = 5
	sigLiquidity = 4
	sigHolders   = 2
)

// MarketSection renders the market statistics block. Field order is
// fixed: supply, circulating supply, market cap, price, 24h volume,
// liquidity, holder count. Missing values render as Unknown.
func MarketSection(snap *domain.TokenSnapshot) string {
	var b strings.Builder

	name := snap.Name
	if name == "" {
		name = snap.Address.String()
	}
	fmt.Fprintf(&b, "📊 *%s*\n\n", name)

	fmt.Fprintf(&b, "Total Supply: %s\n", AbbrevPtr(snap.TotalSupply, sigSupply))
	fmt.Fprintf(&b, "Circulating Supply: %s\n", AbbrevPtr(snap.CirculatingSupply, sigSupply))
	fmt.Fprintf(&b, "Market Cap: %s\n", dollar(snap.MarketCapUSD(), sigPrice))
	fmt.Fprintf(&b, "Price: %s\n", dollar(snap.PriceUSD, sigPrice))
	fmt.Fprintf(&b, "24h Volume: %s\n", dollar(snap.Volume24hUSD, sigVolume))
	fmt.Fprintf(&b, "Liquidity: %s\n", dollar(snap.LiquidityUSD, sigLiquidity))
	fmt.Fprintf(&b, "Holders: %s", AbbrevPtr(snap.HolderCount, sigHolders))

	return b.String()
}

// dollar renders a nullable USD amount with a currency prefix.
func dollar(v *float64, sig int) string {
	if v == nil {
		return Unknown
	}
	return "$" + Abbrev(*v, sig)
}
