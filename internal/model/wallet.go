package model

// Address is the public chain address of an account.
// Base58 is the form shown to the operator and used for all chain calls.
type Address struct {
	Base58 string `json:"base58"`
	Hex    string `json:"hex,omitempty"`
}

// Account represents one record of the vault file.
// Field order matches the on-disk layout and must not change.
type Account struct {
	Address    Address `json:"address"`
	PrivateKey string  `json:"privateKey"` // ciphertext, never the raw key
	PublicKey  string  `json:"publicKey"`
	Name       string  `json:"name"`
}

// Label is how the account is shown in selection lists
func (a Account) Label() string {
	return a.Name + " @ " + a.Address.Base58
}
