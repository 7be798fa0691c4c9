package wallet

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/AlexZinkM/tron-wallet/internal/common"
	"github.com/AlexZinkM/tron-wallet/internal/model"
)

// coinIDs maps asset symbols to CoinGecko ids
var coinIDs = map[string]string{
	"TRX":  "tron",
	"USDT": "tether",
	"SOL":  "solana",
	"USDC": "usd-coin",
}

// GetBalance gets token and native balances of account
func (s *Service) GetBalance(ctx context.Context, account model.Account) (*model.Balance, error) {
	native, token := s.chain.Assets()

	tokenRaw, err := s.AssetBalance(ctx, account, token)
	if err != nil {
		return nil, err
	}
	nativeRaw, err := s.AssetBalance(ctx, account, native)
	if err != nil {
		return nil, err
	}

	// Convert to display strings (no float precision loss)
	balance := &model.Balance{
		Address:     account.Address.Base58,
		Native:      native,
		Token:       token,
		NativeRaw:   nativeRaw,
		TokenRaw:    tokenRaw,
		NativeValue: common.FormatUnits(nativeRaw, native.Decimals),
		TokenValue:  common.FormatUnits(tokenRaw, token.Decimals),
	}

	if s.prices != nil && s.fiatCurrency != "" {
		s.estimateFiat(ctx, balance)
	}
	return balance, nil
}

// estimateFiat fills the fiat fields; a failed lookup only leaves them empty
func (s *Service) estimateFiat(ctx context.Context, b *model.Balance) {
	var ids []string
	for _, symbol := range []string{b.Native.Symbol, b.Token.Symbol} {
		if id, ok := coinIDs[strings.ToUpper(symbol)]; ok {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return
	}

	prices, err := s.prices.GetPrices(ctx, ids, s.fiatCurrency)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to get rate")
		return
	}

	// Use float only for display, not for critical operations
	var total float64
	var priced bool
	for _, part := range []struct {
		symbol string
		value  string
	}{{b.Native.Symbol, b.NativeValue}, {b.Token.Symbol, b.TokenValue}} {
		price, ok := prices[coinIDs[strings.ToUpper(part.symbol)]]
		if !ok {
			continue
		}
		v, _ := strconv.ParseFloat(part.value, 64)
		total += v * price
		priced = true
	}
	if !priced {
		return
	}

	b.Fiat = fmt.Sprintf("%.2f", total)
	b.FiatSymbol = strings.ToUpper(s.fiatCurrency)
}
