package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	NetworkTron   = "tron"
	NetworkSolana = "solana"
)

// Config contains all configuration parameters for the application.
// Values come from WALLET_* environment variables.
// Passwords are never part of the configuration, they are prompted for every operation.
type Config struct {
	VaultPath string `envconfig:"VAULT_PATH" default:"config/accounts.json"`
	Network   string `envconfig:"NETWORK" default:"tron"`

	TronRPCURL        string `envconfig:"TRON_RPC_URL" default:"https://api.trongrid.io"`
	TronAPIKey        string `envconfig:"TRON_API_KEY"`
	TronTokenContract string `envconfig:"TRON_TOKEN_CONTRACT" default:"TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t"` // USDT
	TronTokenSymbol   string `envconfig:"TRON_TOKEN_SYMBOL" default:"USDT"`
	TronFeeLimit      int64  `envconfig:"TRON_FEE_LIMIT" default:"30000000"` // sun, max burn for a token transfer

	SolanaRPCURL      string `envconfig:"SOLANA_RPC_URL" default:"https://api.mainnet-beta.solana.com"`
	SolanaTokenMint   string `envconfig:"SOLANA_TOKEN_MINT" default:"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"` // USDC
	SolanaTokenSymbol string `envconfig:"SOLANA_TOKEN_SYMBOL" default:"USDC"`

	TokenDecimals int           `envconfig:"TOKEN_DECIMALS" default:"6"`
	HTTPTimeout   time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`
	FiatCurrency  string        `envconfig:"FIAT_CURRENCY"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"warn"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
	LogFile   string `envconfig:"LOG_FILE"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("wallet", cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values envconfig cannot check by itself
func (c *Config) Validate() error {
	switch c.Network {
	case NetworkTron, NetworkSolana:
	default:
		return fmt.Errorf("unsupported network %q: use %q or %q", c.Network, NetworkTron, NetworkSolana)
	}
	if c.VaultPath == "" {
		return fmt.Errorf("vault path must not be empty")
	}
	if c.TokenDecimals < 0 || c.TokenDecimals > 18 {
		return fmt.Errorf("token decimals must be between 0 and 18, got %d", c.TokenDecimals)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be positive")
	}
	if c.TronFeeLimit <= 0 {
		return fmt.Errorf("tron fee limit must be positive")
	}
	return nil
}
