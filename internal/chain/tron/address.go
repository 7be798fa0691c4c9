package tron

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/AlexZinkM/tron-wallet/internal/chain"
	"github.com/AlexZinkM/tron-wallet/internal/model"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// addressPrefix is the version byte of mainnet Tron addresses ("T..." in base58)
const addressPrefix byte = 0x41

// addressFromPublicKey builds both address forms: 0x41 || keccak256(pub)[12:]
func addressFromPublicKey(pub *ecdsa.PublicKey) model.Address {
	eth := crypto.PubkeyToAddress(*pub)
	raw := append([]byte{addressPrefix}, eth.Bytes()...)
	return model.Address{
		Base58: base58.CheckEncode(eth.Bytes(), addressPrefix),
		Hex:    strings.ToUpper(hex.EncodeToString(raw)),
	}
}

// decodeAddress parses a base58check Tron address into its 20-byte account id
func decodeAddress(address string) (common.Address, error) {
	payload, version, err := base58.CheckDecode(strings.TrimSpace(address))
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", chain.ErrInvalidAddress, err)
	}
	if version != addressPrefix || len(payload) != common.AddressLength {
		return common.Address{}, fmt.Errorf("%w: not a Tron address", chain.ErrInvalidAddress)
	}
	return common.BytesToAddress(payload), nil
}

// parsePrivateKey accepts the hex text form stored in the vault
func parsePrivateKey(privateKey []byte) (*ecdsa.PrivateKey, error) {
	text := strings.TrimSpace(string(privateKey))
	if len(text) != 64 {
		return nil, fmt.Errorf("%w: expected 64 hex characters", chain.ErrInvalidPrivateKey)
	}

	raw, err := hex.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("%w: not hex", chain.ErrInvalidPrivateKey)
	}
	defer clear(raw)

	key, err := crypto.ToECDSA(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", chain.ErrInvalidPrivateKey, err)
	}
	return key, nil
}
