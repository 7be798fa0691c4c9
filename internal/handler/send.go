package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AlexZinkM/tron-wallet/internal/common"
	"github.com/AlexZinkM/tron-wallet/internal/model"
	"github.com/AlexZinkM/tron-wallet/internal/wallet"
)

// checkBalance prints token and native balances, token first
func (h *Handler) checkBalance(ctx context.Context, account model.Account) error {
	b, err := h.wallet.GetBalance(ctx, account)
	if err != nil {
		return err
	}

	fmt.Fprintf(h.out, "%s Balance: %s\n", b.Token.Symbol, common.HumanUnits(b.TokenRaw, b.Token.Decimals))
	fmt.Fprintf(h.out, "%s Balance: %s\n", b.Native.Symbol, common.HumanUnits(b.NativeRaw, b.Native.Decimals))
	if b.Fiat != "" {
		fmt.Fprintf(h.out, "Estimated value: %s %s\n", b.Fiat, b.FiatSymbol)
	}

	return h.pause()
}

// sendToken asks for asset, recipient, amount and password and sends the transfer
func (h *Handler) sendToken(ctx context.Context, account model.Account) error {
	native, token := h.wallet.Assets()
	assets := []model.Asset{token, native}

	idx, err := h.prompt.Select("Select token to send", []string{token.Symbol, native.Symbol})
	if err != nil {
		return err
	}
	asset := assets[idx]

	balance, err := h.wallet.AssetBalance(ctx, account, asset)
	if err != nil {
		return err
	}
	fmt.Fprintf(h.out, "Available: %s %s\n", common.HumanUnits(balance, asset.Decimals), asset.Symbol)

	recipient, err := h.prompt.Input("Enter recipient address", func(s string) error {
		if err := h.wallet.ValidateAddress(strings.TrimSpace(s)); err != nil {
			return errors.New("Please enter a valid address.")
		}
		return nil
	})
	if err != nil {
		return err
	}
	recipient = strings.TrimSpace(recipient)

	input, err := h.prompt.Input("Enter amount to send", func(s string) error {
		_, err := wallet.ParseAmount(s, balance, asset.Decimals)
		return amountMessage(err, balance, asset.Decimals)
	})
	if err != nil {
		return err
	}
	amount, err := wallet.ParseAmount(input, balance, asset.Decimals)
	if err != nil {
		return err
	}

	password, err := h.prompt.Password("Enter wallet password")
	if err != nil {
		return err
	}
	// Always clear password from memory
	defer clear(password)

	res, err := h.wallet.Pay(ctx, account, model.PayRequest{
		Asset:     asset,
		ToAddress: recipient,
		Amount:    amount,
	}, password)
	if err != nil {
		return err
	}

	h.success.Fprintf(h.out, "Transaction sent: %s\n", res.TxID)
	fmt.Fprintf(h.out, "Amount: %s %s to %s\n", res.Amount, res.Symbol, recipient)

	return h.pause()
}

// amountMessage is the inline validation text shown under the amount prompt
func amountMessage(err error, balance uint64, decimals int) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, wallet.ErrAmountExceedsBalance):
		return fmt.Errorf("Amount must be less than or equal to %s.", common.HumanUnits(balance, decimals))
	case errors.Is(err, wallet.ErrAmountNotPositive):
		return errors.New("Amount must be greater than 0.")
	case errors.Is(err, common.ErrTooManyDecimals):
		return fmt.Errorf("Amount can have at most %d decimal places.", decimals)
	default:
		return errors.New("Please enter a valid number.")
	}
}
