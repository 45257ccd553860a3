package models

import "time"

// TransferRequest is the body of POST /v1/coupons/transfer.
// The sender is the authenticated wallet; From is only checked against it.
type TransferRequest struct {
	From   string `json:"from,omitempty"`
	To     string `json:"to" binding:"required"`
	Amount string `json:"amount" binding:"required"`
}

// Transfer is a validated coupon transfer ready for the ledger
type Transfer struct {
	From        string    `json:"from"`
	To          string    `json:"to"`
	AmountCents int64     `json:"amount_cents"`
	CreatedAt   time.Time `json:"created_at"`
}

// TransferResult is returned after the ledger accepts a transfer
type TransferResult struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	Amount    string    `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}

// Balance is the coupon balance held by a phone number
type Balance struct {
	Phone        string `json:"phone"`
	BalanceCents int64  `json:"balance_cents"`
	Balance      string `json:"balance"`
}
