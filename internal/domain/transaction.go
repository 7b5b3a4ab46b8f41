package domain

import (
	"time"
)

// Transaction is one financial transaction supplied by the caller. The
// engine never mutates it; a detection run treats the whole collection as
// an immutable input window.
//
// Amount is signed: positive means money OUT (an expense or subscription
// charge), negative means money IN (salary, refunds, recurring income).
type Transaction struct {
	ID                  string    `json:"id"`
	AccountID           string    `json:"account_id"`
	MerchantDescription string    `json:"merchant_description"`
	Amount              float64   `json:"amount"`
	Date                time.Time `json:"date"`
}

// Valid reports whether the transaction carries enough information to take
// part in pattern detection. Invalid rows are skipped, never fatal.
func (t Transaction) Valid() bool {
	return t.MerchantDescription != "" && t.Amount != 0 && !t.Date.IsZero()
}
