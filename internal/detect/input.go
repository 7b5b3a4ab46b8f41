package detect

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dvloznov/finance-insights/internal/domain"
)

// rawTransaction is the wire shape accepted by DecodeTransactions. Dates
// are ISO "YYYY-MM-DD" or RFC 3339.
type rawTransaction struct {
	ID                  string  `json:"id"`
	AccountID           string  `json:"account_id"`
	MerchantDescription string  `json:"merchant_description"`
	Amount              float64 `json:"amount"`
	Date                string  `json:"date"`
}

// DecodeTransactions reads a JSON array of transactions. A collection that
// is not an array at all is a fatal *InputError; individually malformed
// rows are skipped and do not abort the call.
func DecodeTransactions(r io.Reader) ([]domain.Transaction, error) {
	var raw []rawTransaction
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, &InputError{Reason: "expected a JSON array of transactions", Err: err}
	}

	txs := make([]domain.Transaction, 0, len(raw))
	for _, rt := range raw {
		date, err := parseDate(rt.Date)
		if err != nil {
			continue
		}
		txs = append(txs, domain.Transaction{
			ID:                  rt.ID,
			AccountID:           rt.AccountID,
			MerchantDescription: rt.MerchantDescription,
			Amount:              rt.Amount,
			Date:                date,
		})
	}
	return txs, nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
