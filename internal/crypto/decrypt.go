package crypto

import (
	"bytes"
	"encoding/base64"
	"fmt"
)

// Decrypt opens a ciphertext produced by Encrypt or by the legacy
// CryptoJS-based wallet. A wrong password always yields ErrInvalidPassword,
// never a plausible-looking key.
// Caller should zero the returned plaintext after use.
func (c *Cipher) Decrypt(password []byte, ciphertext string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, err)
	}

	switch {
	case bytes.HasPrefix(raw, magic):
		return decryptCurrent(password, raw)
	case bytes.HasPrefix(raw, legacyMagic):
		return decryptLegacy(password, raw)
	default:
		return nil, ErrUnknownFormat
	}
}

func decryptCurrent(password, raw []byte) ([]byte, error) {
	if len(raw) < headerLen {
		return nil, fmt.Errorf("%w: truncated ciphertext", ErrUnknownFormat)
	}

	params := Params{LogN: raw[4], R: raw[5], P: raw[6]}
	if params.LogN == 0 || params.LogN > maxLogN || params.R == 0 || params.P == 0 {
		return nil, fmt.Errorf("%w: bad scrypt parameters", ErrUnknownFormat)
	}

	salt := raw[7 : 7+saltLen]
	nonce := raw[7+saltLen : headerLen]
	sealed := raw[headerLen:]

	aesGCM, err := newGCM(password, salt, params)
	if err != nil {
		return nil, err
	}

	plaintext, err := aesGCM.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, ErrInvalidPassword
	}
	return plaintext, nil
}

// Describe names the scheme of a ciphertext without decrypting it
func Describe(ciphertext string) string {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "unknown"
	}
	switch {
	case bytes.HasPrefix(raw, magic) && len(raw) >= headerLen:
		return fmt.Sprintf("scrypt 2^%d r=%d p=%d, AES-256-GCM", raw[4], raw[5], raw[6])
	case bytes.HasPrefix(raw, legacyMagic):
		return "legacy EVP_BytesToKey(MD5), AES-256-CBC"
	default:
		return "unknown"
	}
}
