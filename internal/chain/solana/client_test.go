package solana

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/AlexZinkM/tron-wallet/internal/chain"
	"github.com/AlexZinkM/tron-wallet/internal/model"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const usdcMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"

type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

// fakeRPC answers JSON-RPC calls from a per-method table
type fakeRPC struct {
	t *testing.T

	mu      sync.Mutex
	results map[string]any
	errors  map[string]string
	calls   []rpcRequest
}

func newFakeRPC(t *testing.T) (*fakeRPC, *httptest.Server) {
	f := &fakeRPC{t: t, results: map[string]any{}, errors: map[string]string{}}
	srv := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeRPC) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var req rpcRequest
	assert.NoError(f.t, json.NewDecoder(r.Body).Decode(&req))
	f.calls = append(f.calls, req)

	resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
	if msg, ok := f.errors[req.Method]; ok {
		resp["error"] = map[string]any{"code": -32602, "message": msg}
	} else if result, ok := f.results[req.Method]; ok {
		resp["result"] = result
	} else {
		resp["error"] = map[string]any{"code": -32601, "message": "Method not found"}
	}

	w.Header().Set("Content-Type", "application/json")
	assert.NoError(f.t, json.NewEncoder(w).Encode(resp))
}

func (f *fakeRPC) methods() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.Method)
	}
	return out
}

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	c, err := NewClient(Config{
		RPCURL:        url,
		TokenMint:     usdcMint,
		TokenSymbol:   "USDC",
		TokenDecimals: 6,
		Timeout:       5 * time.Second,
	}, zerolog.Nop())
	require.NoError(t, err)
	return c
}

func withContext(value any) map[string]any {
	return map[string]any{"context": map[string]any{"slot": 1}, "value": value}
}

func TestNewClientRejectsBadConfig(t *testing.T) {
	_, err := NewClient(Config{RPCURL: "http://localhost", TokenMint: "not-a-mint"}, zerolog.Nop())
	assert.Error(t, err)

	_, err = NewClient(Config{TokenMint: usdcMint}, zerolog.Nop())
	assert.Error(t, err)
}

func TestAssets(t *testing.T) {
	c := newTestClient(t, "http://localhost")
	native, token := c.Assets()
	assert.Equal(t, model.Asset{Kind: model.AssetNative, Symbol: "SOL", Decimals: 9}, native)
	assert.Equal(t, model.Asset{Kind: model.AssetToken, Symbol: "USDC", Decimals: 6}, token)
}

func TestCreateAccount(t *testing.T) {
	c := newTestClient(t, "http://localhost")

	kp, err := c.CreateAccount(context.Background())
	require.NoError(t, err)

	assert.Equal(t, kp.Address.Base58, kp.PublicKey)
	require.NoError(t, c.ValidateAddress(kp.Address.Base58))
	assert.Len(t, kp.Address.Hex, 64)

	addr, err := c.AddressFromPrivateKey(kp.PrivateKey)
	require.NoError(t, err)
	assert.Equal(t, kp.Address.Base58, addr)

	other, err := c.CreateAccount(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, kp.Address.Base58, other.Address.Base58)
}

func TestAddressFromPrivateKeyRejectsGarbage(t *testing.T) {
	c := newTestClient(t, "http://localhost")

	for _, key := range []string{"", "0OIl", "3yZe7d"} {
		_, err := c.AddressFromPrivateKey([]byte(key))
		assert.ErrorIs(t, err, chain.ErrInvalidPrivateKey, key)
	}
}

func TestValidateAddress(t *testing.T) {
	c := newTestClient(t, "http://localhost")
	assert.NoError(t, c.ValidateAddress(usdcMint))
	assert.ErrorIs(t, c.ValidateAddress("TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t0"), chain.ErrInvalidAddress)
	assert.ErrorIs(t, c.ValidateAddress(""), chain.ErrInvalidAddress)
}

func TestNativeBalance(t *testing.T) {
	rpcSrv, srv := newFakeRPC(t)
	rpcSrv.results["getBalance"] = withContext(2_500_000_000)
	c := newTestClient(t, srv.URL)

	bal, err := c.NativeBalance(context.Background(), usdcMint)
	require.NoError(t, err)
	assert.Equal(t, uint64(2_500_000_000), bal)
	assert.Equal(t, []string{"getBalance"}, rpcSrv.methods())

	_, err = c.NativeBalance(context.Background(), "bad")
	assert.ErrorIs(t, err, chain.ErrInvalidAddress)
}

func TestTokenBalance(t *testing.T) {
	rpcSrv, srv := newFakeRPC(t)
	rpcSrv.results["getTokenAccountBalance"] = withContext(map[string]any{
		"amount":         "1234567",
		"decimals":       6,
		"uiAmountString": "1.234567",
	})
	c := newTestClient(t, srv.URL)

	bal, err := c.TokenBalance(context.Background(), usdcMint)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_234_567), bal)
}

func TestTokenBalanceMissingAccountIsZero(t *testing.T) {
	rpcSrv, srv := newFakeRPC(t)
	rpcSrv.errors["getTokenAccountBalance"] = "Invalid param: could not find account"
	c := newTestClient(t, srv.URL)

	bal, err := c.TokenBalance(context.Background(), usdcMint)
	require.NoError(t, err)
	assert.Zero(t, bal)
}

func TestTokenBalanceRPCError(t *testing.T) {
	rpcSrv, srv := newFakeRPC(t)
	rpcSrv.errors["getTokenAccountBalance"] = "Node is behind"
	c := newTestClient(t, srv.URL)

	_, err := c.TokenBalance(context.Background(), usdcMint)
	assert.ErrorContains(t, err, "Node is behind")
}

func TestSendNative(t *testing.T) {
	rpcSrv, srv := newFakeRPC(t)
	blockhash := solana.Hash{1, 2, 3, 4}
	rpcSrv.results["getLatestBlockhash"] = withContext(map[string]any{
		"blockhash":            blockhash.String(),
		"lastValidBlockHeight": 100,
	})
	signature := solana.Signature{9, 9, 9}
	rpcSrv.results["sendTransaction"] = signature.String()
	c := newTestClient(t, srv.URL)

	sender, err := c.CreateAccount(context.Background())
	require.NoError(t, err)
	recipient, err := c.CreateAccount(context.Background())
	require.NoError(t, err)

	txID, err := c.SendNative(context.Background(), sender.Address.Base58, recipient.Address.Base58, 1_000, sender.PrivateKey)
	require.NoError(t, err)
	assert.Equal(t, signature.String(), txID)
	assert.Equal(t, []string{"getLatestBlockhash", "sendTransaction"}, rpcSrv.methods())

	var encoded string
	require.NoError(t, json.Unmarshal(rpcSrv.calls[1].Params[0], &encoded))
	tx, err := solana.TransactionFromBase64(encoded)
	require.NoError(t, err)
	assert.Equal(t, blockhash, tx.Message.RecentBlockhash)
	require.Len(t, tx.Signatures, 1)
	assert.NoError(t, tx.VerifySignatures())
}

// sentTransaction decodes the transaction of the last sendTransaction call
func (f *fakeRPC) sentTransaction(t *testing.T) *solana.Transaction {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := len(f.calls) - 1; i >= 0; i-- {
		if f.calls[i].Method != "sendTransaction" {
			continue
		}
		var encoded string
		require.NoError(t, json.Unmarshal(f.calls[i].Params[0], &encoded))
		tx, err := solana.TransactionFromBase64(encoded)
		require.NoError(t, err)
		return tx
	}
	t.Fatal("no transaction was sent")
	return nil
}

func programs(t *testing.T, tx *solana.Transaction) []solana.PublicKey {
	t.Helper()
	out := make([]solana.PublicKey, 0, len(tx.Message.Instructions))
	for _, inst := range tx.Message.Instructions {
		program, err := tx.Message.Program(inst.ProgramIDIndex)
		require.NoError(t, err)
		out = append(out, program)
	}
	return out
}

func assertTransferChecked(t *testing.T, data []byte, amount uint64, decimals uint8) {
	t.Helper()
	require.Len(t, data, 10)
	assert.Equal(t, byte(token.Instruction_TransferChecked), data[0])
	assert.Equal(t, amount, binary.LittleEndian.Uint64(data[1:9]))
	assert.Equal(t, decimals, data[9])
}

func mockSendResults(f *fakeRPC) solana.Signature {
	f.results["getLatestBlockhash"] = withContext(map[string]any{
		"blockhash":            solana.Hash{7}.String(),
		"lastValidBlockHeight": 100,
	})
	signature := solana.Signature{4, 2}
	f.results["sendTransaction"] = signature.String()
	return signature
}

func TestSendTokenCreatesRecipientAccount(t *testing.T) {
	rpcSrv, srv := newFakeRPC(t)
	rpcSrv.results["getAccountInfo"] = withContext(nil)
	signature := mockSendResults(rpcSrv)
	c := newTestClient(t, srv.URL)

	sender, err := c.CreateAccount(context.Background())
	require.NoError(t, err)
	recipient, err := c.CreateAccount(context.Background())
	require.NoError(t, err)

	txID, err := c.SendToken(context.Background(), sender.Address.Base58, recipient.Address.Base58, 2_500_000, sender.PrivateKey)
	require.NoError(t, err)
	assert.Equal(t, signature.String(), txID)
	assert.Equal(t, []string{"getAccountInfo", "getLatestBlockhash", "sendTransaction"}, rpcSrv.methods())

	tx := rpcSrv.sentTransaction(t)
	assert.NoError(t, tx.VerifySignatures())
	assert.Equal(t, []solana.PublicKey{solana.SPLAssociatedTokenAccountProgramID, solana.TokenProgramID}, programs(t, tx))
	assertTransferChecked(t, tx.Message.Instructions[1].Data, 2_500_000, 6)

	mint := solana.MustPublicKeyFromBase58(usdcMint)
	destATA, _, err := solana.FindAssociatedTokenAddress(solana.MustPublicKeyFromBase58(recipient.Address.Base58), mint)
	require.NoError(t, err)
	assert.Contains(t, tx.Message.AccountKeys, destATA)
}

func TestSendTokenToExistingAccount(t *testing.T) {
	rpcSrv, srv := newFakeRPC(t)
	rpcSrv.results["getAccountInfo"] = withContext(map[string]any{
		"lamports":   2_039_280,
		"owner":      solana.TokenProgramID.String(),
		"data":       []any{"", "base64"},
		"executable": false,
		"rentEpoch":  0,
		"space":      165,
	})
	mockSendResults(rpcSrv)
	c := newTestClient(t, srv.URL)

	sender, err := c.CreateAccount(context.Background())
	require.NoError(t, err)
	recipient, err := c.CreateAccount(context.Background())
	require.NoError(t, err)

	_, err = c.SendToken(context.Background(), sender.Address.Base58, recipient.Address.Base58, 1_000_000, sender.PrivateKey)
	require.NoError(t, err)

	tx := rpcSrv.sentTransaction(t)
	assert.Equal(t, []solana.PublicKey{solana.TokenProgramID}, programs(t, tx))
	assertTransferChecked(t, tx.Message.Instructions[0].Data, 1_000_000, 6)
}

func TestSendTokenAccountLookupError(t *testing.T) {
	rpcSrv, srv := newFakeRPC(t)
	rpcSrv.errors["getAccountInfo"] = "Node is behind"
	c := newTestClient(t, srv.URL)

	sender, err := c.CreateAccount(context.Background())
	require.NoError(t, err)

	_, err = c.SendToken(context.Background(), sender.Address.Base58, usdcMint, 1, sender.PrivateKey)
	assert.ErrorContains(t, err, "Node is behind")
	assert.Equal(t, []string{"getAccountInfo"}, rpcSrv.methods())
}

func TestSendRefusesForeignKey(t *testing.T) {
	rpcSrv, srv := newFakeRPC(t)
	c := newTestClient(t, srv.URL)

	owner, err := c.CreateAccount(context.Background())
	require.NoError(t, err)
	intruder, err := c.CreateAccount(context.Background())
	require.NoError(t, err)

	_, err = c.SendNative(context.Background(), owner.Address.Base58, usdcMint, 1, intruder.PrivateKey)
	assert.ErrorContains(t, err, "does not match")
	_, err = c.SendToken(context.Background(), owner.Address.Base58, usdcMint, 1, intruder.PrivateKey)
	assert.ErrorContains(t, err, "does not match")
	assert.Empty(t, rpcSrv.methods())
}
