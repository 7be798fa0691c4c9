package wallet

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/AlexZinkM/tron-wallet/internal/chain/mocks"
	"github.com/AlexZinkM/tron-wallet/internal/chain/tron"
	"github.com/AlexZinkM/tron-wallet/internal/common"
	"github.com/AlexZinkM/tron-wallet/internal/crypto"
	"github.com/AlexZinkM/tron-wallet/internal/model"
	"github.com/AlexZinkM/tron-wallet/internal/vault"

	"github.com/golang/mock/gomock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	aliceAddress = "TJRabPrwbZy45sbavfcjinPJC18kjpRTv8"
	bobAddress   = "TNPeeaaFB7K9cmo4uQpcU32zGK8G1NYqeL"
)

var (
	trx  = model.Asset{Kind: model.AssetNative, Symbol: "TRX", Decimals: 6}
	usdt = model.Asset{Kind: model.AssetToken, Symbol: "USDT", Decimals: 6}
)

func newTestService(t *testing.T, client *mocks.MockClient) (*Service, *vault.Store) {
	t.Helper()
	store := vault.NewStore(filepath.Join(t.TempDir(), "config", "accounts.json"), zerolog.Nop())
	cipher := crypto.NewCipher(crypto.Params{LogN: 10, R: 8, P: 1})
	return NewService(client, store, cipher, zerolog.Nop()), store
}

// storedAccount encrypts key under password the way GenerateWallet does
func storedAccount(t *testing.T, s *Service, address, key, password string) model.Account {
	t.Helper()
	ct, err := s.cipher.Encrypt([]byte(password), []byte(key))
	require.NoError(t, err)
	return model.Account{
		Address:    model.Address{Base58: address},
		PrivateKey: ct,
		PublicKey:  "04AB",
		Name:       "Alice",
	}
}

func TestGenerateWalletWithTronKeys(t *testing.T) {
	client, err := tron.NewClient(tron.Config{
		RPCURL:        "http://127.0.0.1:1",
		TokenContract: "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t",
		TokenSymbol:   "USDT",
		TokenDecimals: 6,
		Timeout:       time.Second,
	}, zerolog.Nop())
	require.NoError(t, err)

	store := vault.NewStore(filepath.Join(t.TempDir(), "accounts.json"), zerolog.Nop())
	cipher := crypto.NewCipher(crypto.Params{LogN: 10, R: 8, P: 1})
	s := NewService(client, store, cipher, zerolog.Nop())

	require.Empty(t, s.Accounts())

	account, err := s.GenerateWallet(context.Background(), "  Alice ", []byte("secret1"))
	require.NoError(t, err)

	accounts := s.Accounts()
	require.Len(t, accounts, 1)
	assert.Equal(t, *account, accounts[0])
	assert.Equal(t, "Alice", accounts[0].Name)
	assert.NotEmpty(t, accounts[0].PublicKey)
	assert.Equal(t, "Alice @ "+account.Address.Base58, accounts[0].Label())

	key, err := cipher.Decrypt([]byte("secret1"), accounts[0].PrivateKey)
	require.NoError(t, err)
	derived, err := client.AddressFromPrivateKey(key)
	require.NoError(t, err)
	assert.Equal(t, account.Address.Base58, derived)

	unlocked, err := s.Unlock(accounts[0], []byte("secret1"))
	require.NoError(t, err)
	assert.Equal(t, key, unlocked)

	_, err = s.Unlock(accounts[0], []byte("secret2"))
	assert.ErrorIs(t, err, crypto.ErrInvalidPassword)

	second, err := s.GenerateWallet(context.Background(), "Bob", []byte("pw"))
	require.NoError(t, err)
	accounts = s.Accounts()
	require.Len(t, accounts, 2)
	assert.Equal(t, "Alice", accounts[0].Name)
	assert.Equal(t, second.Address, accounts[1].Address)
}

func TestGenerateWalletWipesPlaintextKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	s, store := newTestService(t, client)

	kp := &model.KeyPair{
		Address:    model.Address{Base58: aliceAddress, Hex: "41ABCD"},
		PublicKey:  "04AB",
		PrivateKey: []byte("B8E3A9E1F0C36A8E"),
	}
	client.EXPECT().CreateAccount(gomock.Any()).Return(kp, nil)

	account, err := s.GenerateWallet(context.Background(), "Alice", []byte("secret1"))
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 16), kp.PrivateKey)
	assert.NotContains(t, account.PrivateKey, "B8E3A9E1F0C36A8E")

	key, err := s.cipher.Decrypt([]byte("secret1"), store.Load()[0].PrivateKey)
	require.NoError(t, err)
	assert.Equal(t, "B8E3A9E1F0C36A8E", string(key))
}

func TestGenerateWalletErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	s, store := newTestService(t, client)

	_, err := s.GenerateWallet(context.Background(), "   ", []byte("pw"))
	assert.ErrorIs(t, err, ErrEmptyName)

	boom := errors.New("entropy exhausted")
	client.EXPECT().CreateAccount(gomock.Any()).Return(nil, boom)
	_, err = s.GenerateWallet(context.Background(), "Alice", []byte("pw"))
	assert.ErrorIs(t, err, boom)

	assert.Empty(t, store.Load())
}

func TestUnlock(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	s, _ := newTestService(t, client)
	account := storedAccount(t, s, aliceAddress, "alice-key", "secret1")

	client.EXPECT().AddressFromPrivateKey([]byte("alice-key")).Return(aliceAddress, nil)
	key, err := s.Unlock(account, []byte("secret1"))
	require.NoError(t, err)
	assert.Equal(t, "alice-key", string(key))
}

func TestUnlockWrongPasswordNeverReturnsKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	s, _ := newTestService(t, client)
	account := storedAccount(t, s, aliceAddress, "alice-key", "secret1")

	key, err := s.Unlock(account, []byte("secret2"))
	assert.ErrorIs(t, err, crypto.ErrInvalidPassword)
	assert.Nil(t, key)
}

func TestUnlockKeyMismatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	s, _ := newTestService(t, client)
	account := storedAccount(t, s, aliceAddress, "bob-key", "secret1")

	client.EXPECT().AddressFromPrivateKey(gomock.Any()).Return(bobAddress, nil)
	_, err := s.Unlock(account, []byte("secret1"))
	assert.ErrorIs(t, err, ErrKeyMismatch)

	client.EXPECT().AddressFromPrivateKey(gomock.Any()).Return("", errors.New("invalid private key"))
	_, err = s.Unlock(account, []byte("secret1"))
	assert.ErrorIs(t, err, ErrKeyMismatch)
}

func TestParseAmount(t *testing.T) {
	const balance = 12_500_000 // 12.5

	tests := []struct {
		name    string
		input   string
		want    uint64
		wantErr error
	}{
		{name: "whole balance", input: "12.5", want: balance},
		{name: "half balance", input: "6.25", want: 6_250_000},
		{name: "smallest unit", input: "0.000001", want: 1},
		{name: "zero", input: "0", wantErr: ErrAmountNotPositive},
		{name: "zero with decimals", input: "0.000", wantErr: ErrAmountNotPositive},
		{name: "balance plus a cent", input: "12.51", wantErr: ErrAmountExceedsBalance},
		{name: "negative", input: "-1", wantErr: ErrAmountNotPositive},
		{name: "negative garbage", input: "-x", wantErr: common.ErrInvalidAmount},
		{name: "text", input: "ten", wantErr: common.ErrInvalidAmount},
		{name: "empty", input: " ", wantErr: common.ErrEmptyAmount},
		{name: "too precise", input: "1.0000001", wantErr: common.ErrTooManyDecimals},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input, balance, 6)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAmountExceedsMessage(t *testing.T) {
	_, err := ParseAmount("3", 2_500_000, 6)
	assert.EqualError(t, err, "amount exceeds balance: max 2.5")
}

func TestPaySendsTokenAndWipesKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	s, _ := newTestService(t, client)
	account := storedAccount(t, s, aliceAddress, "alice-key", "secret1")

	var usedKey []byte
	gomock.InOrder(
		client.EXPECT().ValidateAddress(bobAddress).Return(nil),
		client.EXPECT().AddressFromPrivateKey(gomock.Any()).Return(aliceAddress, nil),
		client.EXPECT().SendToken(gomock.Any(), aliceAddress, bobAddress, uint64(1_500_000), gomock.Any()).
			DoAndReturn(func(_ context.Context, _, _ string, _ uint64, key []byte) (string, error) {
				assert.Equal(t, "alice-key", string(key))
				usedKey = key
				return "f00d", nil
			}),
	)

	res, err := s.Pay(context.Background(), account, model.PayRequest{Asset: usdt, ToAddress: bobAddress, Amount: 1_500_000}, []byte("secret1"))
	require.NoError(t, err)
	assert.Equal(t, &model.PayResult{TxID: "f00d", Amount: "1.5", Symbol: "USDT"}, res)
	assert.Equal(t, make([]byte, len("alice-key")), usedKey)
}

func TestPaySendsNative(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	s, _ := newTestService(t, client)
	account := storedAccount(t, s, aliceAddress, "alice-key", "secret1")

	client.EXPECT().ValidateAddress(bobAddress).Return(nil)
	client.EXPECT().AddressFromPrivateKey(gomock.Any()).Return(aliceAddress, nil)
	client.EXPECT().SendNative(gomock.Any(), aliceAddress, bobAddress, uint64(7), gomock.Any()).Return("beef", nil)

	res, err := s.Pay(context.Background(), account, model.PayRequest{Asset: trx, ToAddress: bobAddress, Amount: 7}, []byte("secret1"))
	require.NoError(t, err)
	assert.Equal(t, "beef", res.TxID)
	assert.Equal(t, "0.000007", res.Amount)
}

func TestPayRefusals(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	s, _ := newTestService(t, client)
	account := storedAccount(t, s, aliceAddress, "alice-key", "secret1")
	ctx := context.Background()

	// bad recipient
	client.EXPECT().ValidateAddress("nope").Return(errors.New("invalid address"))
	_, err := s.Pay(ctx, account, model.PayRequest{Asset: trx, ToAddress: "nope", Amount: 1}, []byte("secret1"))
	assert.Error(t, err)

	// wrong password: nothing reaches the network
	client.EXPECT().ValidateAddress(bobAddress).Return(nil).Times(3)
	_, err = s.Pay(ctx, account, model.PayRequest{Asset: trx, ToAddress: bobAddress, Amount: 1}, []byte("wrong"))
	assert.ErrorIs(t, err, crypto.ErrInvalidPassword)

	// zero amount
	_, err = s.Pay(ctx, account, model.PayRequest{Asset: trx, ToAddress: bobAddress, Amount: 0}, []byte("secret1"))
	assert.ErrorIs(t, err, ErrAmountNotPositive)

	// broadcast failure is wrapped
	boom := errors.New("SIGERROR")
	client.EXPECT().AddressFromPrivateKey(gomock.Any()).Return(aliceAddress, nil)
	client.EXPECT().SendNative(gomock.Any(), aliceAddress, bobAddress, uint64(1), gomock.Any()).Return("", boom)
	_, err = s.Pay(ctx, account, model.PayRequest{Asset: trx, ToAddress: bobAddress, Amount: 1}, []byte("secret1"))
	assert.ErrorIs(t, err, boom)
}

type fakePrices struct {
	prices map[string]float64
	err    error
	calls  [][]string
}

func (f *fakePrices) GetPrices(_ context.Context, ids []string, vs string) (map[string]float64, error) {
	f.calls = append(f.calls, append(append([]string{}, ids...), vs))
	return f.prices, f.err
}

func expectBalances(client *mocks.MockClient, native, token uint64) {
	client.EXPECT().Assets().Return(trx, usdt)
	client.EXPECT().TokenBalance(gomock.Any(), aliceAddress).Return(token, nil)
	client.EXPECT().NativeBalance(gomock.Any(), aliceAddress).Return(native, nil)
}

func TestGetBalance(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	s, _ := newTestService(t, client)
	account := model.Account{Address: model.Address{Base58: aliceAddress}, Name: "Alice"}

	expectBalances(client, 2_000_000, 15_250_000)

	b, err := s.GetBalance(context.Background(), account)
	require.NoError(t, err)
	assert.Equal(t, "2.000000", b.NativeValue)
	assert.Equal(t, "15.250000", b.TokenValue)
	assert.Equal(t, uint64(2_000_000), b.NativeRaw)
	assert.Equal(t, uint64(15_250_000), b.TokenRaw)
	assert.Empty(t, b.Fiat)
}

func TestGetBalanceFiatEstimate(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	s, _ := newTestService(t, client)
	account := model.Account{Address: model.Address{Base58: aliceAddress}}

	prices := &fakePrices{prices: map[string]float64{"tron": 0.25, "tether": 1}}
	s.WithPrices(prices, "usd")

	expectBalances(client, 4_000_000, 10_000_000)
	b, err := s.GetBalance(context.Background(), account)
	require.NoError(t, err)
	assert.Equal(t, "11.00", b.Fiat)
	assert.Equal(t, "USD", b.FiatSymbol)
	assert.Equal(t, [][]string{{"tron", "tether", "usd"}}, prices.calls)

	// price failures never fail the balance
	prices.err = errors.New("status 429")
	expectBalances(client, 4_000_000, 10_000_000)
	b, err = s.GetBalance(context.Background(), account)
	require.NoError(t, err)
	assert.Empty(t, b.Fiat)
	assert.Equal(t, "10.000000", b.TokenValue)
}

func TestGetBalanceChainError(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	s, _ := newTestService(t, client)
	account := model.Account{Address: model.Address{Base58: aliceAddress}}

	boom := errors.New("timeout")
	client.EXPECT().Assets().Return(trx, usdt)
	client.EXPECT().TokenBalance(gomock.Any(), aliceAddress).Return(uint64(0), boom)

	_, err := s.GetBalance(context.Background(), account)
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "USDT")
}

func TestAddressQR(t *testing.T) {
	qr, err := AddressQR(aliceAddress)
	require.NoError(t, err)
	assert.Contains(t, qr, "█")
	assert.Contains(t, qr, "\n")
}
