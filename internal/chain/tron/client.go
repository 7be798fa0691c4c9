package tron

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/AlexZinkM/tron-wallet/internal/chain"
	"github.com/AlexZinkM/tron-wallet/internal/common"
	"github.com/AlexZinkM/tron-wallet/internal/model"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rs/zerolog"
)

const (
	nativeSymbol = "TRX"

	balanceOfSelector = "balanceOf(address)"
	transferSelector  = "transfer(address,uint256)"
)

// Config is the endpoint and token setup of a Client
type Config struct {
	RPCURL        string
	APIKey        string // optional TronGrid key, sent as TRON-PRO-API-KEY
	TokenContract string
	TokenSymbol   string
	TokenDecimals int
	FeeLimit      int64 // sun
	Timeout       time.Duration
}

var _ chain.Client = (*Client)(nil)

// Client talks to a Tron full node over its HTTP wallet API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	token      string
	tokenAsset model.Asset
	feeLimit   int64
	log        zerolog.Logger
}

// NewClient creates a new Tron client
func NewClient(cfg Config, log zerolog.Logger) (*Client, error) {
	if _, err := decodeAddress(cfg.TokenContract); err != nil {
		return nil, fmt.Errorf("invalid token contract address: %w", err)
	}
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("tron rpc url is empty")
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.RPCURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		token: cfg.TokenContract,
		tokenAsset: model.Asset{
			Kind:     model.AssetToken,
			Symbol:   cfg.TokenSymbol,
			Decimals: cfg.TokenDecimals,
		},
		feeLimit: cfg.FeeLimit,
		log:      log.With().Str("module", "tron").Logger(),
	}, nil
}

// Assets returns TRX and the configured TRC20 token
func (c *Client) Assets() (native, token model.Asset) {
	return model.Asset{Kind: model.AssetNative, Symbol: nativeSymbol, Decimals: common.TRXDecimals}, c.tokenAsset
}

// CreateAccount generates a new secp256k1 keypair.
// PrivateKey is the upper-case hex text of the 32-byte scalar.
func (c *Client) CreateAccount(ctx context.Context) (*model.KeyPair, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}

	raw := crypto.FromECDSA(key)
	defer clear(raw)

	privHex := make([]byte, hex.EncodedLen(len(raw)))
	hex.Encode(privHex, raw)

	return &model.KeyPair{
		Address:    addressFromPublicKey(&key.PublicKey),
		PublicKey:  strings.ToUpper(hex.EncodeToString(crypto.FromECDSAPub(&key.PublicKey))),
		PrivateKey: bytes.ToUpper(privHex),
	}, nil
}

// AddressFromPrivateKey derives the base58 address of a hex private key
func (c *Client) AddressFromPrivateKey(privateKey []byte) (string, error) {
	key, err := parsePrivateKey(privateKey)
	if err != nil {
		return "", err
	}
	return addressFromPublicKey(&key.PublicKey).Base58, nil
}

// ValidateAddress checks base58check encoding and the mainnet prefix
func (c *Client) ValidateAddress(address string) error {
	_, err := decodeAddress(address)
	return err
}

type getAccountRequest struct {
	Address string `json:"address"`
	Visible bool   `json:"visible"`
}

type getAccountResponse struct {
	Balance int64  `json:"balance"`
	Error   string `json:"Error"`
}

// NativeBalance gets TRX balance in sun.
// A never-activated address has no account on chain and reads as zero.
func (c *Client) NativeBalance(ctx context.Context, address string) (uint64, error) {
	if err := c.ValidateAddress(address); err != nil {
		return 0, err
	}

	var resp getAccountResponse
	if err := c.post(ctx, "/wallet/getaccount", getAccountRequest{Address: address, Visible: true}, &resp); err != nil {
		return 0, fmt.Errorf("failed to get TRX balance: %w", err)
	}
	if resp.Error != "" {
		return 0, fmt.Errorf("failed to get TRX balance: %s", resp.Error)
	}
	if resp.Balance < 0 {
		return 0, fmt.Errorf("failed to get TRX balance: negative balance %d", resp.Balance)
	}
	return uint64(resp.Balance), nil
}

type triggerRequest struct {
	OwnerAddress     string `json:"owner_address"`
	ContractAddress  string `json:"contract_address"`
	FunctionSelector string `json:"function_selector"`
	Parameter        string `json:"parameter"`
	FeeLimit         int64  `json:"fee_limit,omitempty"`
	CallValue        int64  `json:"call_value"`
	Visible          bool   `json:"visible"`
}

type triggerResult struct {
	Result  bool   `json:"result"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type triggerConstantResponse struct {
	ConstantResult []string      `json:"constant_result"`
	Result         triggerResult `json:"result"`
}

// TokenBalance gets the TRC20 balance in the token's base units
func (c *Client) TokenBalance(ctx context.Context, address string) (uint64, error) {
	owner, err := decodeAddress(address)
	if err != nil {
		return 0, err
	}

	param, err := packBalanceOf(owner)
	if err != nil {
		return 0, err
	}

	req := triggerRequest{
		OwnerAddress:     address,
		ContractAddress:  c.token,
		FunctionSelector: balanceOfSelector,
		Parameter:        hex.EncodeToString(param),
		Visible:          true,
	}

	var resp triggerConstantResponse
	if err := c.post(ctx, "/wallet/triggerconstantcontract", req, &resp); err != nil {
		return 0, fmt.Errorf("failed to get %s balance: %w", c.tokenAsset.Symbol, err)
	}
	if !resp.Result.Result {
		return 0, fmt.Errorf("failed to get %s balance: %s", c.tokenAsset.Symbol, nodeMessage(resp.Result.Code, resp.Result.Message))
	}
	if len(resp.ConstantResult) == 0 {
		return 0, fmt.Errorf("failed to get %s balance: empty result", c.tokenAsset.Symbol)
	}

	raw, err := hex.DecodeString(resp.ConstantResult[0])
	if err != nil {
		return 0, fmt.Errorf("failed to decode %s balance: %w", c.tokenAsset.Symbol, err)
	}
	balance := new(big.Int).SetBytes(raw)
	if !balance.IsUint64() {
		return 0, fmt.Errorf("%s balance %s out of range", c.tokenAsset.Symbol, balance)
	}
	return balance.Uint64(), nil
}

// post sends a JSON request to the node and decodes the JSON answer
func (c *Client) post(ctx context.Context, path string, reqBody, respBody any) error {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("TRON-PRO-API-KEY", c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	c.log.Debug().Str("path", path).Int("status", resp.StatusCode).Dur("took", time.Since(start)).Msg("node call")

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("request %s failed: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

// nodeMessage renders a node error; messages are usually hex-encoded text
func nodeMessage(code, message string) string {
	if decoded, err := hex.DecodeString(message); err == nil && len(decoded) > 0 {
		message = string(decoded)
	}
	switch {
	case code != "" && message != "":
		return code + ": " + message
	case code != "":
		return code
	case message != "":
		return message
	default:
		return "rejected by node"
	}
}
