package model

// PayRequest is a validated transfer order
type PayRequest struct {
	Asset     Asset
	ToAddress string
	Amount    uint64 // base units
}

// PayResult is returned after broadcast
type PayResult struct {
	TxID   string
	Amount string
	Symbol string
}
