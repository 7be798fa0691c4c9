package model

// KeyPair is a freshly derived account as returned by a chain client.
// PrivateKey holds plaintext key material (caller should zero it after use).
type KeyPair struct {
	Address    Address
	PublicKey  string
	PrivateKey []byte
}
