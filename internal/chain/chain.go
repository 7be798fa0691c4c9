// Package chain defines what the wallet needs from a blockchain network.
//
// Implementations hold their endpoint and token configuration; callers only
// pass account addresses, amounts in base units and, for transfers, the
// plaintext private key, which implementations must not retain or log.
package chain

//go:generate mockgen -destination=mocks/mock_chain.go -package=mocks github.com/AlexZinkM/tron-wallet/internal/chain Client

import (
	"context"
	"errors"

	"github.com/AlexZinkM/tron-wallet/internal/model"
)

var (
	ErrInvalidAddress    = errors.New("invalid address")
	ErrInvalidPrivateKey = errors.New("invalid private key")
)

// Client performs all network operations for one chain
type Client interface {
	// CreateAccount derives a new keypair locally
	CreateAccount(ctx context.Context) (*model.KeyPair, error)

	// NativeBalance returns the base coin balance in base units
	NativeBalance(ctx context.Context, address string) (uint64, error)

	// TokenBalance returns the configured token balance in base units
	TokenBalance(ctx context.Context, address string) (uint64, error)

	// SendNative signs and broadcasts a base coin transfer, returns the transaction id
	SendNative(ctx context.Context, from, to string, amount uint64, privateKey []byte) (string, error)

	// SendToken signs and broadcasts a token transfer, returns the transaction id
	SendToken(ctx context.Context, from, to string, amount uint64, privateKey []byte) (string, error)

	// AddressFromPrivateKey derives the base58 address that privateKey controls
	AddressFromPrivateKey(privateKey []byte) (string, error)

	// ValidateAddress checks the recipient format without network access
	ValidateAddress(address string) error

	// Assets describes the native coin and the configured token
	Assets() (native, token model.Asset)
}
