package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/scrypt"
)

const (
	// scrypt parameters for local wallet
	// Security is prioritized over performance
	//
	// N=2^18 (~256MB RAM, 0.5-2s) - optimal balance:
	//   - Maximum security while remaining usable on small machines
	//   - Brute-force attacks remain extremely expensive
	//
	// Note: N=2^20 (~1GB) offers the highest security but is too heavy
	// for an interactive prompt on low-memory hosts
	defaultLogN  = 18
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 32
	saltLen      = 32
	nonceLen     = 12

	// upper bound accepted when decoding, stops a crafted vault from demanding gigabytes
	maxLogN = 22
)

// magic prefix of the current ciphertext layout:
// "VLT1" | logN | r | p | salt(32) | nonce(12) | sealed
var magic = []byte("VLT1")

const headerLen = 4 + 3 + saltLen + nonceLen

var (
	ErrInvalidPassword = errors.New("invalid password")
	ErrUnknownFormat   = errors.New("unknown ciphertext format")
)

// Params are the scrypt cost parameters used when encrypting.
// Decryption always uses the parameters recorded in the ciphertext.
type Params struct {
	LogN uint8
	R    uint8
	P    uint8
}

// DefaultParams are used by the interactive wallet
var DefaultParams = Params{LogN: defaultLogN, R: scryptR, P: scryptP}

// Cipher encrypts and decrypts private keys with a password
type Cipher struct {
	params Params
	rand   io.Reader
}

// NewCipher creates a Cipher that encrypts with the given scrypt parameters
func NewCipher(params Params) *Cipher {
	return &Cipher{params: params, rand: rand.Reader}
}

// Encrypt seals plaintext under a key derived from password.
// password must be []byte for security (caller should zero it after use)
func (c *Cipher) Encrypt(password, plaintext []byte) (string, error) {
	if c.params.LogN == 0 || c.params.LogN > maxLogN {
		return "", fmt.Errorf("invalid scrypt cost 2^%d", c.params.LogN)
	}

	// Generate salt and nonce
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(c.rand, salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	nonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(c.rand, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	aesGCM, err := newGCM(password, salt, c.params)
	if err != nil {
		return "", err
	}

	out := make([]byte, 0, headerLen+len(plaintext)+aesGCM.Overhead())
	out = append(out, magic...)
	out = append(out, c.params.LogN, c.params.R, c.params.P)
	out = append(out, salt...)
	out = append(out, nonce...)
	out = aesGCM.Seal(out, nonce, plaintext, nil)

	return base64.StdEncoding.EncodeToString(out), nil
}

// newGCM derives the AES-256 key from password and returns the AEAD
func newGCM(password, salt []byte, params Params) (cipher.AEAD, error) {
	key, err := scrypt.Key(password, salt, 1<<params.LogN, int(params.R), int(params.P), scryptKeyLen)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	defer clear(key)

	// Create AES cipher
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	// Create GCM
	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aesGCM, nil
}
