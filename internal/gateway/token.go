package gateway

import (
	"context"
	"fmt"

	"blockrover/internal/domain"
)

// TokenStaticData is the static token payload: identity, supply and the
// raw security/trading flag maps used by the report checklists.
type TokenStaticData struct {
	Name              string
	TotalSupply       *float64
	CirculatingSupply *float64
	HolderCount       *float64
	SecurityFlags     map[string]string
	TradingFlags      map[string]string
}

// MarketData is the live market payload for a token.
type MarketData struct {
	PriceUSD     *float64
	PriceNative  *float64
	LiquidityUSD *float64
	Volume24hUSD *float64
}

// tokenResponse is the raw provider payload for the token endpoint.
type tokenResponse struct {
	Name              string            `json:"name"`
	TotalSupply       *float64          `json:"total_supply"`
	CirculatingSupply *float64          `json:"circulating_supply"`
	HolderCount       *float64          `json:"holder_count"`
	SecurityFlags     map[string]string `json:"security"`
	TradingFlags      map[string]string `json:"trading"`
}

// TokenData fetches static token data. Returns ErrNotFound when the token
// is unknown to the provider.
func (c *Client) TokenData(ctx context.Context, addr domain.ContractAddress) (*TokenStaticData, error) {
	var raw tokenResponse
	if err := c.getJSON(ctx, "/token/"+addr.String(), &raw); err != nil {
		return nil, fmt.Errorf("fetch token data: %w", err)
	}

	return &TokenStaticData{
		Name:              raw.Name,
		TotalSupply:       raw.TotalSupply,
		CirculatingSupply: raw.CirculatingSupply,
		HolderCount:       raw.HolderCount,
		SecurityFlags:     raw.SecurityFlags,
		TradingFlags:      raw.TradingFlags,
	}, nil
}

// marketResponse is the raw provider payload for the market endpoint.
type marketResponse struct {
	PriceUSD     *float64 `json:"price_usd"`
	PriceNative  *float64 `json:"price_native"`
	LiquidityUSD *float64 `json:"liquidity_usd"`
	Volume24hUSD *float64 `json:"volume_24h_usd"`
}

// MarketData fetches live market data for a token.
func (c *Client) MarketData(ctx context.Context, addr domain.ContractAddress) (*MarketData, error) {
	var raw marketResponse
	if err := c.getJSON(ctx, "/market/"+addr.String(), &raw); err != nil {
		return nil, fmt.Errorf("fetch market data: %w", err)
	}

	return &MarketData{
		PriceUSD:     raw.PriceUSD,
		PriceNative:  raw.PriceNative,
		LiquidityUSD: raw.LiquidityUSD,
		Volume24hUSD: raw.Volume24hUSD,
	}, nil
}

// Snapshot fetches token and market data and combines them into an
// immutable TokenSnapshot for the session.
func (c *Client) Snapshot(ctx context.Context, addr domain.ContractAddress) (*domain.TokenSnapshot, error) {
	token, err := c.TokenData(ctx, addr)
	if err != nil {
		return nil, err
	}
	market, err := c.MarketData(ctx, addr)
	if err != nil {
		return nil, err
	}

	return &domain.TokenSnapshot{
		Address:           addr,
		Name:              token.Name,
		TotalSupply:       token.TotalSupply,
		CirculatingSupply: token.CirculatingSupply,
		HolderCount:       token.HolderCount,
		SecurityFlags:     token.SecurityFlags,
		TradingFlags:      token.TradingFlags,
		PriceUSD:          market.PriceUSD,
		PriceNative:       market.PriceNative,
		LiquidityUSD:      market.LiquidityUSD,
		Volume24hUSD:      market.Volume24hUSD,
	}, nil
}
