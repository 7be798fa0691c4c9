package wallet

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AlexZinkM/tron-wallet/internal/common"
	"github.com/AlexZinkM/tron-wallet/internal/model"
)

var (
	// ErrKeyMismatch means the decrypted key does not control the stored address
	ErrKeyMismatch = errors.New("decrypted key does not match wallet address")

	ErrAmountNotPositive    = errors.New("amount must be greater than 0")
	ErrAmountExceedsBalance = errors.New("amount exceeds balance")
)

// Unlock decrypts the private key of account and checks that it derives
// the stored address.
// The returned key must be zeroed by the caller after use.
func (s *Service) Unlock(account model.Account, password []byte) ([]byte, error) {
	key, err := s.cipher.Decrypt(password, account.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt wallet: %w", err)
	}

	address, err := s.chain.AddressFromPrivateKey(key)
	if err != nil {
		clear(key)
		return nil, fmt.Errorf("%w: %v", ErrKeyMismatch, err)
	}
	if address != account.Address.Base58 {
		clear(key)
		return nil, ErrKeyMismatch
	}
	return key, nil
}

// AssetBalance fetches the balance of one asset in base units
func (s *Service) AssetBalance(ctx context.Context, account model.Account, asset model.Asset) (uint64, error) {
	var (
		balance uint64
		err     error
	)
	switch asset.Kind {
	case model.AssetNative:
		balance, err = s.chain.NativeBalance(ctx, account.Address.Base58)
	case model.AssetToken:
		balance, err = s.chain.TokenBalance(ctx, account.Address.Base58)
	default:
		return 0, fmt.Errorf("unknown asset %q", asset.Symbol)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to check %s balance: %w", asset.Symbol, err)
	}
	return balance, nil
}

// ParseAmount converts operator input to base units and checks 0 < amount <= balance
func ParseAmount(input string, balance uint64, decimals int) (uint64, error) {
	input = strings.TrimSpace(input)
	if negative, ok := strings.CutPrefix(input, "-"); ok {
		if _, err := common.ParseUnits(negative, decimals); err == nil {
			return 0, ErrAmountNotPositive
		}
	}

	amount, err := common.ParseUnits(input, decimals)
	if err != nil {
		return 0, fmt.Errorf("invalid amount: %w", err)
	}
	if amount == 0 {
		return 0, ErrAmountNotPositive
	}
	if amount > balance {
		return 0, fmt.Errorf("%w: max %s", ErrAmountExceedsBalance, common.HumanUnits(balance, decimals))
	}
	return amount, nil
}

// Pay unlocks account and sends req.Amount of req.Asset to req.ToAddress.
// The decrypted key is wiped before returning.
// password must be []byte for security (caller should zero it after use)
func (s *Service) Pay(ctx context.Context, account model.Account, req model.PayRequest, password []byte) (*model.PayResult, error) {
	if err := s.chain.ValidateAddress(req.ToAddress); err != nil {
		return nil, err
	}
	if req.Amount == 0 {
		return nil, ErrAmountNotPositive
	}

	key, err := s.Unlock(account, password)
	if err != nil {
		return nil, err
	}
	// Always clear private key from memory
	defer clear(key)

	var txID string
	switch req.Asset.Kind {
	case model.AssetNative:
		txID, err = s.chain.SendNative(ctx, account.Address.Base58, req.ToAddress, req.Amount, key)
	case model.AssetToken:
		txID, err = s.chain.SendToken(ctx, account.Address.Base58, req.ToAddress, req.Amount, key)
	default:
		return nil, fmt.Errorf("unknown asset %q", req.Asset.Symbol)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to send transaction: %w", err)
	}

	s.log.Info().
		Str("from", account.Address.Base58).
		Str("to", req.ToAddress).
		Str("asset", req.Asset.Symbol).
		Uint64("amount", req.Amount).
		Str("txid", txID).
		Msg("transfer sent")

	return &model.PayResult{
		TxID:   txID,
		Amount: common.HumanUnits(req.Amount, req.Asset.Decimals),
		Symbol: req.Asset.Symbol,
	}, nil
}
