package wallet

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AlexZinkM/tron-wallet/internal/model"

	"github.com/skip2/go-qrcode"
)

var ErrEmptyName = errors.New("wallet name is empty")

// GenerateWallet creates a new keypair, encrypts its private key and appends
// the account to the vault. Returns the stored record.
// password must be []byte for security (caller should zero it after use)
func (s *Service) GenerateWallet(ctx context.Context, name string, password []byte) (*model.Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	// Generate new keypair
	kp, err := s.chain.CreateAccount(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	defer clear(kp.PrivateKey)

	ciphertext, err := s.cipher.Encrypt(password, kp.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt private key: %w", err)
	}

	account := model.Account{
		Address:    kp.Address,
		PrivateKey: ciphertext,
		PublicKey:  kp.PublicKey,
		Name:       name,
	}

	if err := s.vault.Append(account); err != nil {
		return nil, fmt.Errorf("failed to save wallet: %w", err)
	}

	s.log.Info().Str("address", account.Address.Base58).Msg("wallet created")
	return &account, nil
}

// AddressQR renders address as a QR code made of half-block characters
func AddressQR(address string) (string, error) {
	qr, err := qrcode.New(address, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("failed to create QR code: %w", err)
	}
	return qr.ToSmallString(false), nil
}
