// Read-only vault inspection: list stored accounts with their cipher scheme and
// check that a password unlocks an account and derives its stored address.
// Usage: go run ./cmd/vault_check list | verify <index>
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/AlexZinkM/tron-wallet/internal/chain/network"
	"github.com/AlexZinkM/tron-wallet/internal/config"
	"github.com/AlexZinkM/tron-wallet/internal/crypto"
	"github.com/AlexZinkM/tron-wallet/internal/logger"
	"github.com/AlexZinkM/tron-wallet/internal/model"
	"github.com/AlexZinkM/tron-wallet/internal/vault"
	"github.com/AlexZinkM/tron-wallet/internal/wallet"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := newCLI().rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// CLI wires the vault commands to the configured network
type CLI struct {
	rootCmd *cobra.Command

	cfg *config.Config
	log zerolog.Logger
}

func newCLI() *CLI {
	cli := &CLI{}

	rootCmd := &cobra.Command{
		Use:          "vault_check",
		Short:        "Inspect the wallet vault without changing it",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			// commands are short-lived, logs go to stderr only
			log, _, err := logger.New(cfg.LogLevel, cfg.LogFormat, "")
			if err != nil {
				return err
			}
			cli.cfg = cfg
			cli.log = log
			return nil
		},
	}

	rootCmd.AddCommand(cli.listCmd())
	rootCmd.AddCommand(cli.verifyCmd())

	cli.rootCmd = rootCmd
	return cli
}

func (cli *CLI) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored accounts and the scheme protecting each key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			accounts := vault.NewStore(cli.cfg.VaultPath, cli.log).Load()
			if len(accounts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No accounts available.")
				return nil
			}
			return printAccounts(cmd.OutOrStdout(), accounts)
		},
	}
}

func (cli *CLI) verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <index>",
		Short: "Check that a password unlocks the account at index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := vault.NewStore(cli.cfg.VaultPath, cli.log)
			account, err := pickAccount(store.Load(), args[0])
			if err != nil {
				return err
			}

			client, err := network.New(cli.cfg, cli.log)
			if err != nil {
				return err
			}
			svc := wallet.NewService(client, store, crypto.NewCipher(crypto.DefaultParams), cli.log)

			password, err := readPassword()
			if err != nil {
				return err
			}
			defer clear(password)

			key, err := svc.Unlock(account, password)
			if err != nil {
				color.New(color.FgRed).Fprintf(cmd.OutOrStdout(), "%s: %v\n", account.Name, err)
				return errors.New("verification failed")
			}
			clear(key)

			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "%s: key unlocks %s\n", account.Name, account.Address.Base58)
			return nil
		},
	}
}

func printAccounts(out io.Writer, accounts []model.Account) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tNAME\tADDRESS\tCIPHER")
	for i, a := range accounts {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i, a.Name, a.Address.Base58, crypto.Describe(a.PrivateKey))
	}
	return w.Flush()
}

func pickAccount(accounts []model.Account, arg string) (model.Account, error) {
	idx, err := strconv.Atoi(arg)
	if err != nil {
		return model.Account{}, fmt.Errorf("index must be a number, got %q", arg)
	}
	if idx < 0 || idx >= len(accounts) {
		return model.Account{}, fmt.Errorf("no account at index %d (vault holds %d)", idx, len(accounts))
	}
	return accounts[idx], nil
}

// readPassword reads the password without echo.
// Caller must zero the returned slice after use.
func readPassword() ([]byte, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, errors.New("stdin is not a terminal: run the command interactively to enter password")
	}
	fmt.Fprint(os.Stderr, "Enter wallet password: ")
	defer fmt.Fprintln(os.Stderr)

	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	if len(raw) == 0 {
		return nil, errors.New("password cannot be empty")
	}
	return raw, nil
}
