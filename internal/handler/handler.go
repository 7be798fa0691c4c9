// Package handler drives the interactive menus of the wallet.
//
// Every flow reports its own failures and returns to the menu it was
// started from; only an operator interrupt or a cancelled context ends Run.
package handler

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/AlexZinkM/tron-wallet/internal/crypto"
	"github.com/AlexZinkM/tron-wallet/internal/prompt"
	"github.com/AlexZinkM/tron-wallet/internal/wallet"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

const (
	menuCreate = "Create new wallet"
	menuManage = "Manage existing wallet"
	menuExit   = "Exit"

	actionLabel = "What do you want to do?"
)

var mainMenu = []string{menuCreate, menuManage, menuExit}

// Handler holds the collaborators of the interactive program
type Handler struct {
	wallet *wallet.Service
	prompt prompt.Prompter
	out    io.Writer
	log    zerolog.Logger

	success *color.Color
	failure *color.Color
	notice  *color.Color
}

// New creates a Handler writing its output to out
func New(svc *wallet.Service, p prompt.Prompter, out io.Writer, log zerolog.Logger) *Handler {
	return &Handler{
		wallet:  svc,
		prompt:  p,
		out:     out,
		log:     log.With().Str("module", "handler").Logger(),
		success: color.New(color.FgGreen),
		failure: color.New(color.FgRed),
		notice:  color.New(color.FgYellow),
	}
}

// Run shows the top-level menu until the operator exits.
// An interrupt or a cancelled ctx is a normal exit.
func (h *Handler) Run(ctx context.Context) error {
	for {
		h.prompt.Clear()
		choice, err := h.prompt.Select(actionLabel, mainMenu)
		if err != nil {
			return h.exit(ctx, err)
		}

		h.prompt.Clear()
		switch mainMenu[choice] {
		case menuCreate:
			err = h.createWallet(ctx)
		case menuManage:
			err = h.manageWallet(ctx)
		default:
			h.sayGoodbye()
			return nil
		}

		if err != nil {
			if interrupted(ctx, err) {
				return h.exit(ctx, err)
			}
			h.report(err)
			if err := h.pause(); err != nil {
				return h.exit(ctx, err)
			}
		}
	}
}

// exit turns an interrupt into a clean stop and returns any other error
func (h *Handler) exit(ctx context.Context, err error) error {
	if interrupted(ctx, err) {
		h.log.Debug().Err(err).Msg("interrupted by operator")
		h.sayGoodbye()
		return nil
	}
	return err
}

func (h *Handler) sayGoodbye() {
	h.notice.Fprintln(h.out, "Exiting wallet operations.")
}

func interrupted(ctx context.Context, err error) bool {
	return errors.Is(err, prompt.ErrInterrupt) || ctx.Err() != nil
}

// report prints a failed flow
func (h *Handler) report(err error) {
	h.log.Debug().Err(err).Msg("flow failed")

	switch {
	case errors.Is(err, crypto.ErrInvalidPassword), errors.Is(err, wallet.ErrKeyMismatch):
		h.failure.Fprintln(h.out, "Wrong password, nothing was sent.")
	default:
		h.failure.Fprintf(h.out, "Error: %v\n", err)
	}
}

func (h *Handler) pause() error {
	fmt.Fprintln(h.out)
	if err := h.prompt.Pause(); err != nil {
		return err
	}
	h.prompt.Clear()
	return nil
}
