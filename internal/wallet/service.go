// Package wallet implements the wallet use cases on top of the vault,
// the password cipher and a chain client: create, unlock, balance and pay.
package wallet

import (
	"context"

	"github.com/AlexZinkM/tron-wallet/internal/chain"
	"github.com/AlexZinkM/tron-wallet/internal/model"

	"github.com/rs/zerolog"
)

// Vault is the account storage used by the service
type Vault interface {
	Load() []model.Account
	Append(account model.Account) error
}

// Cipher seals private keys under the operator password
type Cipher interface {
	Encrypt(password, plaintext []byte) (string, error)
	Decrypt(password []byte, ciphertext string) ([]byte, error)
}

// PriceSource returns fiat prices by CoinGecko coin id
type PriceSource interface {
	GetPrices(ctx context.Context, coinIDs []string, vsCurrency string) (map[string]float64, error)
}

// Service runs wallet operations for one network
type Service struct {
	chain  chain.Client
	vault  Vault
	cipher Cipher
	log    zerolog.Logger

	prices       PriceSource
	fiatCurrency string
}

// NewService creates a wallet service
func NewService(client chain.Client, vault Vault, cipher Cipher, log zerolog.Logger) *Service {
	return &Service{
		chain:  client,
		vault:  vault,
		cipher: cipher,
		log:    log.With().Str("module", "wallet").Logger(),
	}
}

// WithPrices enables the fiat estimate in GetBalance
func (s *Service) WithPrices(prices PriceSource, currency string) *Service {
	s.prices = prices
	s.fiatCurrency = currency
	return s
}

// Accounts returns the vault records in insertion order
func (s *Service) Accounts() []model.Account {
	return s.vault.Load()
}

// Assets returns the native coin and the token of the network
func (s *Service) Assets() (native, token model.Asset) {
	return s.chain.Assets()
}

// ValidateAddress checks a recipient address
func (s *Service) ValidateAddress(address string) error {
	return s.chain.ValidateAddress(address)
}
