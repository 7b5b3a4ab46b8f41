package detect

import (
	"errors"
	"strings"
	"testing"
)

func TestDecodeTransactions(t *testing.T) {
	input := `[
		{"id": "t1", "account_id": "a1", "merchant_description": "NETFLIX.COM", "amount": 15.99, "date": "2025-01-15"},
		{"id": "t2", "account_id": "a1", "merchant_description": "NETFLIX.COM", "amount": 15.99, "date": "not-a-date"},
		{"id": "t3", "account_id": "a1", "merchant_description": "PAYROLL", "amount": -2000, "date": "2025-01-31T00:00:00Z"}
	]`

	txs, err := DecodeTransactions(strings.NewReader(input))
	if err != nil {
		t.Fatalf("DecodeTransactions failed: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("expected 2 decodable rows (bad date skipped), got %d", len(txs))
	}
	if txs[0].ID != "t1" || txs[1].ID != "t3" {
		t.Errorf("unexpected rows survived: %q, %q", txs[0].ID, txs[1].ID)
	}
}

func TestDecodeTransactions_WrongShape(t *testing.T) {
	cases := []string{
		`{"transactions": []}`,
		`"just a string"`,
		`not json at all`,
	}
	for _, input := range cases {
		_, err := DecodeTransactions(strings.NewReader(input))
		var inputErr *InputError
		if !errors.As(err, &inputErr) {
			t.Errorf("DecodeTransactions(%q) = %v, want *InputError", input, err)
		}
	}
}

func TestDecodeTransactions_EmptyArray(t *testing.T) {
	txs, err := DecodeTransactions(strings.NewReader(`[]`))
	if err != nil {
		t.Fatalf("empty array must not be an error: %v", err)
	}
	if len(txs) != 0 {
		t.Errorf("expected no transactions, got %d", len(txs))
	}
}
