package solana

import (
	"context"
	"fmt"

	"github.com/AlexZinkM/tron-wallet/internal/chain"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
)

// SendNative creates, signs and sends a SOL transfer.
// privateKey is the base58 text form (caller should zero it after use)
func (c *Client) SendNative(ctx context.Context, from, to string, amount uint64, privateKey []byte) (string, error) {
	wallet, owner, err := c.signerFor(from, privateKey)
	if err != nil {
		return "", err
	}
	defer clear(wallet)

	toPubkey, err := solana.PublicKeyFromBase58(to)
	if err != nil {
		return "", fmt.Errorf("invalid to address: %w", chain.ErrInvalidAddress)
	}

	transferInstruction := system.NewTransferInstruction(
		amount,
		owner,
		toPubkey,
	).Build()

	return c.signAndSend(ctx, wallet, owner, []solana.Instruction{transferInstruction})
}

// SendToken creates, signs and sends a transfer of the configured SPL token.
// The recipient's associated token account is created when it does not exist yet.
// privateKey is the base58 text form (caller should zero it after use)
func (c *Client) SendToken(ctx context.Context, from, to string, amount uint64, privateKey []byte) (string, error) {
	wallet, owner, err := c.signerFor(from, privateKey)
	if err != nil {
		return "", err
	}
	defer clear(wallet)

	toPubkey, err := solana.PublicKeyFromBase58(to)
	if err != nil {
		return "", fmt.Errorf("invalid to address: %w", chain.ErrInvalidAddress)
	}

	// Get source ATA address
	sourceTokenAccount, _, err := solana.FindAssociatedTokenAddress(owner, c.mintPublicKey)
	if err != nil {
		return "", fmt.Errorf("failed to find source token account address: %w", err)
	}

	destTokenAccount, _, err := solana.FindAssociatedTokenAddress(toPubkey, c.mintPublicKey)
	if err != nil {
		return "", fmt.Errorf("failed to find destination token account: %w", err)
	}

	rctx, cancel := c.withTimeout(ctx)
	destAccountInfo, err := c.rpcClient.GetAccountInfo(rctx, destTokenAccount)
	cancel()
	if err != nil && !isATANotFoundError(err) {
		return "", fmt.Errorf("failed to get destination account info: %w", err)
	}

	instructions := make([]solana.Instruction, 0, 2)
	if isATANotFoundError(err) || destAccountInfo == nil || destAccountInfo.Value == nil {
		instructions = append(instructions, associatedtokenaccount.NewCreateInstruction(
			owner,           // payer
			toPubkey,        // owner
			c.mintPublicKey, // mint
		).Build())
	}

	instructions = append(instructions, token.NewTransferCheckedInstruction(
		amount,
		uint8(c.tokenAsset.Decimals),
		sourceTokenAccount,
		c.mintPublicKey,
		destTokenAccount,
		owner,
		[]solana.PublicKey{},
	).Build())

	return c.signAndSend(ctx, wallet, owner, instructions)
}

// signerFor parses the key and checks it controls from
func (c *Client) signerFor(from string, privateKey []byte) (solana.PrivateKey, solana.PublicKey, error) {
	owner, err := solana.PublicKeyFromBase58(from)
	if err != nil {
		return nil, solana.PublicKey{}, fmt.Errorf("invalid from address: %w", chain.ErrInvalidAddress)
	}

	wallet, err := parsePrivateKey(privateKey)
	if err != nil {
		return nil, solana.PublicKey{}, err
	}

	// Verify wallet matches from address
	if !wallet.PublicKey().Equals(owner) {
		clear(wallet)
		return nil, solana.PublicKey{}, fmt.Errorf("private key does not match address %s", from)
	}
	return wallet, owner, nil
}

func (c *Client) signAndSend(ctx context.Context, wallet solana.PrivateKey, payer solana.PublicKey, instructions []solana.Instruction) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	// Get latest blockhash (GetRecentBlockhash is deprecated, use GetLatestBlockhash)
	recent, err := c.rpcClient.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return "", fmt.Errorf("failed to get recent blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(
		instructions,
		recent.Value.Blockhash,
		solana.TransactionPayer(payer),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create transaction: %w", err)
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if wallet.PublicKey().Equals(key) {
			return &wallet
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}

	sig, err := c.rpcClient.SendTransactionWithOpts(
		ctx,
		tx,
		rpc.TransactionOpts{
			SkipPreflight:       false, // Transaction validation before node
			PreflightCommitment: rpc.CommitmentFinalized,
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to send transaction: %w", err)
	}

	c.log.Info().Str("txid", sig.String()).Msg("transaction sent")
	return sig.String(), nil
}
