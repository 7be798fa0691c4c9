package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AlexZinkM/tron-wallet/internal/model"
	"github.com/AlexZinkM/tron-wallet/internal/wallet"
)

const (
	actionBalance = "Check balance"
	actionSend    = "Send token"
	actionCancel  = "Cancel"
)

var sessionMenu = []string{actionBalance, actionSend, actionCancel}

// createWallet asks for a name and a confirmed password and stores a new account
func (h *Handler) createWallet(ctx context.Context) error {
	name, err := h.prompt.Input("Enter a name for this wallet", func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New("Please enter a name.")
		}
		return nil
	})
	if err != nil {
		return err
	}

	password, err := h.askForPassword()
	if err != nil {
		return err
	}
	// Always clear password from memory
	defer clear(password)

	account, err := h.wallet.GenerateWallet(ctx, name, password)
	if err != nil {
		return err
	}

	h.success.Fprintln(h.out, "Wallet created successfully.")
	fmt.Fprintf(h.out, "Name:    %s\n", account.Name)
	fmt.Fprintf(h.out, "Address: %s\n", account.Address.Base58)

	qr, err := wallet.AddressQR(account.Address.Base58)
	if err != nil {
		h.log.Warn().Err(err).Msg("failed to render address QR code")
	} else {
		fmt.Fprint(h.out, qr)
	}

	return h.pause()
}

// askForPassword reads a password and its confirmation until both match
func (h *Handler) askForPassword() ([]byte, error) {
	for {
		password, err := h.prompt.Password("Enter a password")
		if err != nil {
			return nil, err
		}

		confirmation, err := h.prompt.Password("Confirm your password")
		if err != nil {
			clear(password)
			return nil, err
		}

		match := bytes.Equal(password, confirmation)
		clear(confirmation)

		switch {
		case len(password) == 0:
			h.failure.Fprintln(h.out, "Password cannot be empty.")
		case !match:
			h.failure.Fprintln(h.out, "Passwords do not match, try again.")
		default:
			return password, nil
		}
		clear(password)
	}
}

// selectWallet returns the chosen account or nil when the vault is empty
func (h *Handler) selectWallet() (*model.Account, error) {
	accounts := h.wallet.Accounts()
	if len(accounts) == 0 {
		fmt.Fprintln(h.out, "No accounts available.")
		return nil, nil
	}

	labels := make([]string, len(accounts))
	for i, a := range accounts {
		labels[i] = a.Label()
	}

	idx, err := h.prompt.Select("Select a wallet", labels)
	if err != nil {
		return nil, err
	}
	return &accounts[idx], nil
}

// manageWallet runs the session menu of one account
func (h *Handler) manageWallet(ctx context.Context) error {
	account, err := h.selectWallet()
	if err != nil {
		return err
	}
	if account == nil {
		fmt.Fprintln(h.out, "No wallet selected.")
		return h.pause()
	}

	for {
		h.prompt.Clear()
		choice, err := h.prompt.Select(actionLabel, sessionMenu)
		if err != nil {
			return err
		}

		h.prompt.Clear()
		switch sessionMenu[choice] {
		case actionBalance:
			err = h.checkBalance(ctx, *account)
		case actionSend:
			err = h.sendToken(ctx, *account)
		default:
			return nil
		}

		if err != nil {
			if interrupted(ctx, err) {
				return err
			}
			h.report(err)
			if err := h.pause(); err != nil {
				return err
			}
		}
	}
}
