// Interactive wallet: create accounts, check balances and send the native coin or the configured token.
// Usage: go run ./cmd/wallet
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/AlexZinkM/tron-wallet/internal/chain/network"
	"github.com/AlexZinkM/tron-wallet/internal/client"
	"github.com/AlexZinkM/tron-wallet/internal/config"
	"github.com/AlexZinkM/tron-wallet/internal/crypto"
	"github.com/AlexZinkM/tron-wallet/internal/handler"
	"github.com/AlexZinkM/tron-wallet/internal/logger"
	"github.com/AlexZinkM/tron-wallet/internal/prompt"
	"github.com/AlexZinkM/tron-wallet/internal/vault"
	"github.com/AlexZinkM/tron-wallet/internal/wallet"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, closer, err := logger.New(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		return err
	}
	defer closer.Close()

	terminal := prompt.NewTerminal()
	if !terminal.IsInteractive() {
		return fmt.Errorf("stdin is not a terminal: run the wallet interactively")
	}

	chainClient, err := network.New(cfg, log)
	if err != nil {
		return err
	}

	store := vault.NewStore(cfg.VaultPath, log)
	svc := wallet.NewService(chainClient, store, crypto.NewCipher(crypto.DefaultParams), log)
	if cfg.FiatCurrency != "" {
		svc.WithPrices(client.NewCoinGeckoClient(), cfg.FiatCurrency)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		// a second signal kills the process even while a prompt is blocking
		<-ctx.Done()
		stop()
	}()

	log.Info().
		Str("network", cfg.Network).
		Str("vault", store.Path()).
		Int("accounts", len(store.Load())).
		Msg("wallet started")

	return handler.New(svc, terminal, os.Stdout, log).Run(ctx)
}
