package tron

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	addressType, _ = abi.NewType("address", "", nil)
	uint256Type, _ = abi.NewType("uint256", "", nil)

	balanceOfArgs = abi.Arguments{{Type: addressType}}
	transferArgs  = abi.Arguments{{Type: addressType}, {Type: uint256Type}}

	// ErrTxMismatch is returned when the node hands back a transaction
	// that is not the one requested. Such a transaction is never signed.
	ErrTxMismatch = errors.New("node returned an unexpected transaction")
)

func packBalanceOf(owner common.Address) ([]byte, error) {
	param, err := balanceOfArgs.Pack(owner)
	if err != nil {
		return nil, fmt.Errorf("failed to encode balanceOf call: %w", err)
	}
	return param, nil
}

func packTransfer(to common.Address, amount uint64) ([]byte, error) {
	param, err := transferArgs.Pack(to, new(big.Int).SetUint64(amount))
	if err != nil {
		return nil, fmt.Errorf("failed to encode transfer call: %w", err)
	}
	return param, nil
}

// transaction is the node's JSON form of an unsigned or signed transaction
type transaction struct {
	Visible    bool            `json:"visible"`
	TxID       string          `json:"txID"`
	RawData    json.RawMessage `json:"raw_data"`
	RawDataHex string          `json:"raw_data_hex"`
	Signature  []string        `json:"signature,omitempty"`
	Error      string          `json:"Error,omitempty"`
}

type rawData struct {
	Contract []struct {
		Type      string `json:"type"`
		Parameter struct {
			Value json.RawMessage `json:"value"`
		} `json:"parameter"`
	} `json:"contract"`
}

type transferValue struct {
	Amount       int64  `json:"amount"`
	OwnerAddress string `json:"owner_address"`
	ToAddress    string `json:"to_address"`
}

type triggerValue struct {
	Data            string `json:"data"`
	OwnerAddress    string `json:"owner_address"`
	ContractAddress string `json:"contract_address"`
}

type createTransactionRequest struct {
	OwnerAddress string `json:"owner_address"`
	ToAddress    string `json:"to_address"`
	Amount       int64  `json:"amount"`
	Visible      bool   `json:"visible"`
}

type triggerSmartResponse struct {
	Result      triggerResult `json:"result"`
	Transaction transaction   `json:"transaction"`
}

type broadcastResponse struct {
	Result  bool   `json:"result"`
	TxID    string `json:"txid"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SendNative creates, signs and broadcasts a TRX transfer.
// privateKey is the hex text form (caller should zero it after use)
func (c *Client) SendNative(ctx context.Context, from, to string, amount uint64, privateKey []byte) (string, error) {
	key, err := c.signerFor(from, privateKey)
	if err != nil {
		return "", err
	}
	if err := c.ValidateAddress(to); err != nil {
		return "", fmt.Errorf("invalid to address: %w", err)
	}
	if amount == 0 || amount > math.MaxInt64 {
		return "", fmt.Errorf("invalid amount %d", amount)
	}

	req := createTransactionRequest{
		OwnerAddress: from,
		ToAddress:    to,
		Amount:       int64(amount),
		Visible:      true,
	}

	var tx transaction
	if err := c.post(ctx, "/wallet/createtransaction", req, &tx); err != nil {
		return "", fmt.Errorf("failed to create transaction: %w", err)
	}
	if tx.Error != "" {
		return "", fmt.Errorf("failed to create transaction: %s", tx.Error)
	}

	if err := verifyNativeTransfer(&tx, from, to, amount); err != nil {
		return "", err
	}

	return c.signAndBroadcast(ctx, &tx, key)
}

// SendToken creates, signs and broadcasts a TRC20 transfer of the configured token.
// privateKey is the hex text form (caller should zero it after use)
func (c *Client) SendToken(ctx context.Context, from, to string, amount uint64, privateKey []byte) (string, error) {
	key, err := c.signerFor(from, privateKey)
	if err != nil {
		return "", err
	}
	toAddr, err := decodeAddress(to)
	if err != nil {
		return "", fmt.Errorf("invalid to address: %w", err)
	}
	if amount == 0 {
		return "", fmt.Errorf("invalid amount %d", amount)
	}

	param, err := packTransfer(toAddr, amount)
	if err != nil {
		return "", err
	}

	req := triggerRequest{
		OwnerAddress:     from,
		ContractAddress:  c.token,
		FunctionSelector: transferSelector,
		Parameter:        hex.EncodeToString(param),
		FeeLimit:         c.feeLimit,
		CallValue:        0,
		Visible:          true,
	}

	var resp triggerSmartResponse
	if err := c.post(ctx, "/wallet/triggersmartcontract", req, &resp); err != nil {
		return "", fmt.Errorf("failed to create token transaction: %w", err)
	}
	if !resp.Result.Result {
		return "", fmt.Errorf("failed to create token transaction: %s", nodeMessage(resp.Result.Code, resp.Result.Message))
	}

	selector := crypto.Keccak256([]byte(transferSelector))[:4]
	data := append(selector, param...)
	if err := verifyTokenTransfer(&resp.Transaction, from, c.token, data); err != nil {
		return "", err
	}

	return c.signAndBroadcast(ctx, &resp.Transaction, key)
}

// signerFor parses the key and checks it controls from
func (c *Client) signerFor(from string, privateKey []byte) (*ecdsa.PrivateKey, error) {
	key, err := parsePrivateKey(privateKey)
	if err != nil {
		return nil, err
	}
	if addressFromPublicKey(&key.PublicKey).Base58 != from {
		return nil, fmt.Errorf("private key does not match address %s", from)
	}
	return key, nil
}

// signAndBroadcast checks txID == sha256(raw_data), signs it and submits the transaction
func (c *Client) signAndBroadcast(ctx context.Context, tx *transaction, key *ecdsa.PrivateKey) (string, error) {
	raw, err := hex.DecodeString(tx.RawDataHex)
	if err != nil {
		return "", fmt.Errorf("%w: bad raw_data_hex", ErrTxMismatch)
	}
	hash := sha256.Sum256(raw)
	if !strings.EqualFold(hex.EncodeToString(hash[:]), tx.TxID) {
		return "", fmt.Errorf("%w: txID does not match raw data", ErrTxMismatch)
	}

	sig, err := crypto.Sign(hash[:], key)
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}
	sig[64] += 27
	tx.Signature = []string{hex.EncodeToString(sig)}

	var resp broadcastResponse
	if err := c.post(ctx, "/wallet/broadcasttransaction", tx, &resp); err != nil {
		return "", fmt.Errorf("failed to send transaction: %w", err)
	}
	if !resp.Result {
		return "", fmt.Errorf("failed to send transaction: %s", nodeMessage(resp.Code, resp.Message))
	}

	txID := resp.TxID
	if txID == "" {
		txID = tx.TxID
	}
	c.log.Info().Str("txid", txID).Msg("transaction broadcast")
	return txID, nil
}

func singleContract(tx *transaction, wantType string) (json.RawMessage, error) {
	var rd rawData
	if err := json.Unmarshal(tx.RawData, &rd); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTxMismatch, err)
	}
	if len(rd.Contract) != 1 || rd.Contract[0].Type != wantType {
		return nil, fmt.Errorf("%w: expected one %s", ErrTxMismatch, wantType)
	}
	return rd.Contract[0].Parameter.Value, nil
}

// verifyNativeTransfer checks the node built the transfer that was asked for
func verifyNativeTransfer(tx *transaction, from, to string, amount uint64) error {
	value, err := singleContract(tx, "TransferContract")
	if err != nil {
		return err
	}

	var v transferValue
	if err := json.Unmarshal(value, &v); err != nil {
		return fmt.Errorf("%w: %v", ErrTxMismatch, err)
	}
	if v.OwnerAddress != from || v.ToAddress != to || v.Amount != int64(amount) {
		return fmt.Errorf("%w: transfer fields differ", ErrTxMismatch)
	}
	return nil
}

// verifyTokenTransfer checks contract, owner and call data of a TRC20 transfer
func verifyTokenTransfer(tx *transaction, from, contract string, data []byte) error {
	value, err := singleContract(tx, "TriggerSmartContract")
	if err != nil {
		return err
	}

	var v triggerValue
	if err := json.Unmarshal(value, &v); err != nil {
		return fmt.Errorf("%w: %v", ErrTxMismatch, err)
	}
	got, err := hex.DecodeString(v.Data)
	if err != nil || !bytes.Equal(got, data) {
		return fmt.Errorf("%w: call data differs", ErrTxMismatch)
	}
	if v.OwnerAddress != from || v.ContractAddress != contract {
		return fmt.Errorf("%w: contract fields differ", ErrTxMismatch)
	}
	return nil
}
