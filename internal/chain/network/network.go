// Package network builds the chain client selected by WALLET_NETWORK
package network

import (
	"fmt"

	"github.com/AlexZinkM/tron-wallet/internal/chain"
	"github.com/AlexZinkM/tron-wallet/internal/chain/solana"
	"github.com/AlexZinkM/tron-wallet/internal/chain/tron"
	"github.com/AlexZinkM/tron-wallet/internal/config"

	"github.com/rs/zerolog"
)

// New returns the client of cfg.Network
func New(cfg *config.Config, log zerolog.Logger) (chain.Client, error) {
	switch cfg.Network {
	case config.NetworkTron:
		c, err := tron.NewClient(tron.Config{
			RPCURL:        cfg.TronRPCURL,
			APIKey:        cfg.TronAPIKey,
			TokenContract: cfg.TronTokenContract,
			TokenSymbol:   cfg.TronTokenSymbol,
			TokenDecimals: cfg.TokenDecimals,
			FeeLimit:      cfg.TronFeeLimit,
			Timeout:       cfg.HTTPTimeout,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create tron client: %w", err)
		}
		return c, nil
	case config.NetworkSolana:
		c, err := solana.NewClient(solana.Config{
			RPCURL:        cfg.SolanaRPCURL,
			TokenMint:     cfg.SolanaTokenMint,
			TokenSymbol:   cfg.SolanaTokenSymbol,
			TokenDecimals: cfg.TokenDecimals,
			Timeout:       cfg.HTTPTimeout,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create solana client: %w", err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unsupported network %q", cfg.Network)
	}
}
