package solana

import (
	"context"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/AlexZinkM/tron-wallet/internal/chain"
	"github.com/AlexZinkM/tron-wallet/internal/common"
	"github.com/AlexZinkM/tron-wallet/internal/model"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rs/zerolog"
)

const nativeSymbol = "SOL"

// Config is the endpoint and token setup of a Client
type Config struct {
	RPCURL        string
	TokenMint     string
	TokenSymbol   string
	TokenDecimals int
	Timeout       time.Duration
}

var _ chain.Client = (*Client)(nil)

// Client is a client for working with Solana RPC
type Client struct {
	rpcClient     *rpc.Client
	mintPublicKey solana.PublicKey
	tokenAsset    model.Asset
	timeout       time.Duration
	log           zerolog.Logger
}

// NewClient creates a new Solana client
func NewClient(cfg Config, log zerolog.Logger) (*Client, error) {
	mintPubKey, err := solana.PublicKeyFromBase58(cfg.TokenMint)
	if err != nil {
		return nil, fmt.Errorf("invalid token mint address: %w", err)
	}
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("solana rpc url is empty")
	}

	return &Client{
		rpcClient:     rpc.New(cfg.RPCURL),
		mintPublicKey: mintPubKey,
		tokenAsset: model.Asset{
			Kind:     model.AssetToken,
			Symbol:   cfg.TokenSymbol,
			Decimals: cfg.TokenDecimals,
		},
		timeout: cfg.Timeout,
		log:     log.With().Str("module", "solana").Logger(),
	}, nil
}

// Assets returns SOL and the configured SPL token
func (c *Client) Assets() (native, token model.Asset) {
	return model.Asset{Kind: model.AssetNative, Symbol: nativeSymbol, Decimals: common.SOLDecimals}, c.tokenAsset
}

// CreateAccount generates a new ed25519 keypair.
// PrivateKey is the base58 text of the full 64-byte Solana private key.
func (c *Client) CreateAccount(ctx context.Context) (*model.KeyPair, error) {
	wallet := solana.NewWallet()
	defer clear(wallet.PrivateKey)

	pub := wallet.PublicKey()
	return &model.KeyPair{
		Address: model.Address{
			Base58: pub.String(),
			Hex:    hex.EncodeToString(pub.Bytes()),
		},
		PublicKey:  pub.String(),
		PrivateKey: []byte(wallet.PrivateKey.String()),
	}, nil
}

// AddressFromPrivateKey derives the address of a base58 private key
func (c *Client) AddressFromPrivateKey(privateKey []byte) (string, error) {
	key, err := parsePrivateKey(privateKey)
	if err != nil {
		return "", err
	}
	defer clear(key)
	return key.PublicKey().String(), nil
}

// ValidateAddress validates a Solana address
func (c *Client) ValidateAddress(address string) error {
	if _, err := solana.PublicKeyFromBase58(address); err != nil {
		return fmt.Errorf("%w: %v", chain.ErrInvalidAddress, err)
	}
	return nil
}

// NativeBalance gets SOL balance in lamports
func (c *Client) NativeBalance(ctx context.Context, address string) (uint64, error) {
	owner, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", chain.ErrInvalidAddress, err)
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	balance, err := c.rpcClient.GetBalance(ctx, owner, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, fmt.Errorf("failed to get SOL balance: %w", err)
	}
	return balance.Value, nil
}

// TokenBalance gets the SPL token balance in base units.
// A missing associated token account means the owner never held the token: zero.
func (c *Client) TokenBalance(ctx context.Context, address string) (uint64, error) {
	owner, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", chain.ErrInvalidAddress, err)
	}

	ataAddress, _, err := solana.FindAssociatedTokenAddress(owner, c.mintPublicKey)
	if err != nil {
		return 0, fmt.Errorf("failed to find associated token account address: %w", err)
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	balance, err := c.rpcClient.GetTokenAccountBalance(ctx, ataAddress, rpc.CommitmentConfirmed)
	if err != nil {
		if isATANotFoundError(err) {
			c.log.Debug().Str("owner", address).Msg("token account not found, balance is zero")
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get token account balance: %w", err)
	}

	if balance.Value == nil {
		return 0, nil
	}

	amount, err := strconv.ParseUint(balance.Value.Amount, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s balance amount: %w", c.tokenAsset.Symbol, err)
	}

	return amount, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// parsePrivateKey accepts the base58 text form stored in the vault
func parsePrivateKey(privateKey []byte) (solana.PrivateKey, error) {
	key, err := solana.PrivateKeyFromBase58(strings.TrimSpace(string(privateKey)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", chain.ErrInvalidPrivateKey, err)
	}
	// Validate private key (full 64-byte key)
	if len(key) != 64 {
		clear(key)
		return nil, fmt.Errorf("%w: expected 64 bytes", chain.ErrInvalidPrivateKey)
	}
	return key, nil
}

// isATANotFoundError checks if error indicates that token account doesn't exist
func isATANotFoundError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "could not find account") ||
		strings.Contains(errStr, "not found")
}
