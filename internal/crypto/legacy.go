package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"fmt"
	"unicode/utf8"
)

// Ciphertexts written by the first (CryptoJS) version of the wallet use the
// OpenSSL "Salted__" layout: AES-256-CBC, PKCS#7 padding, key and IV from
// EVP_BytesToKey with MD5 and a single iteration.
var legacyMagic = []byte("Salted__")

const legacySaltLen = 8

func decryptLegacy(password, raw []byte) ([]byte, error) {
	if len(raw) < len(legacyMagic)+legacySaltLen+aes.BlockSize {
		return nil, fmt.Errorf("%w: truncated legacy ciphertext", ErrUnknownFormat)
	}

	salt := raw[len(legacyMagic) : len(legacyMagic)+legacySaltLen]
	body := raw[len(legacyMagic)+legacySaltLen:]
	if len(body)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: legacy ciphertext is not block aligned", ErrUnknownFormat)
	}

	key, iv := evpBytesToKey(password, salt, 32, aes.BlockSize)
	defer clear(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	plaintext := make([]byte, len(body))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, body)

	out, ok := unpadPKCS7(plaintext)
	if !ok || !utf8.Valid(out) {
		clear(plaintext)
		return nil, ErrInvalidPassword
	}
	return out, nil
}

// evpBytesToKey is OpenSSL's EVP_BytesToKey with MD5 and one round
func evpBytesToKey(password, salt []byte, keyLen, ivLen int) (key, iv []byte) {
	var (
		derived []byte
		prev    []byte
	)
	for len(derived) < keyLen+ivLen {
		h := md5.New()
		h.Write(prev)
		h.Write(password)
		h.Write(salt)
		prev = h.Sum(nil)
		derived = append(derived, prev...)
	}
	return derived[:keyLen], derived[keyLen : keyLen+ivLen]
}

func unpadPKCS7(b []byte) ([]byte, bool) {
	if len(b) == 0 {
		return nil, false
	}
	n := int(b[len(b)-1])
	if n == 0 || n > aes.BlockSize || n > len(b) {
		return nil, false
	}
	for _, p := range b[len(b)-n:] {
		if int(p) != n {
			return nil, false
		}
	}
	return b[:len(b)-n], true
}
