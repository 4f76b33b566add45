package portfolio

import (
	"bytes"
	"strings"
	"testing"
)

const canonicalLedger = `{"type":"deposit","date":"2025-01-02","account":"broker","quantity":0,"price":0,"fee":0,"amount":10000}
{"type":"buy","date":"2025-01-10","account":"broker","security":"ACME","quantity":100,"price":150,"fee":5,"amount":0}
{"type":"dividend","date":"2025-02-01","account":"broker","security":"ACME","quantity":0,"price":0,"fee":0,"amount":120}
{"type":"sell","date":"2025-03-10","account":"broker","security":"ACME","quantity":-25,"price":160,"fee":0,"amount":0}
{"type":"fee","date":"2025-04-01","account":"broker","quantity":0,"price":0,"fee":0,"amount":10,"currency":"EUR"}
{"type":"withdraw","date":"2025-05-01","account":"broker","quantity":0,"price":0,"fee":0,"amount":500,"memo":"rent"}
`

func TestLedger_RoundTrip(t *testing.T) {
	ledger, err := DecodeLedger(strings.NewReader(canonicalLedger), "USD")
	if err != nil {
		t.Fatalf("DecodeLedger() error = %v", err)
	}
	if ledger.Len() != 6 {
		t.Fatalf("Len() = %d, want 6", ledger.Len())
	}

	var buf bytes.Buffer
	if err := EncodeLedger(&buf, ledger); err != nil {
		t.Fatalf("EncodeLedger() error = %v", err)
	}
	if got := buf.String(); got != canonicalLedger {
		t.Errorf("round trip altered the ledger:\ngot:\n%swant:\n%s", got, canonicalLedger)
	}
}

func TestDecodeLedger_SortsByDate(t *testing.T) {
	input := `{"type":"buy","date":"2025-03-10","account":"a","security":"X","quantity":1,"price":10,"fee":0,"amount":0}
{"type":"deposit","date":"2025-01-02","account":"a","quantity":0,"price":0,"fee":0,"amount":100}
`
	ledger, err := DecodeLedger(strings.NewReader(input), "USD")
	if err != nil {
		t.Fatalf("DecodeLedger() error = %v", err)
	}
	var types []TxType
	for tx := range ledger.All() {
		types = append(types, tx.Type)
	}
	if types[0] != TxDeposit || types[1] != TxBuy {
		t.Errorf("transactions not sorted by date: %v", types)
	}
}

func TestDecodeLedger_SkipsEmptyLines(t *testing.T) {
	input := "\n" + `{"type":"deposit","date":"2025-01-02","account":"a","quantity":0,"price":0,"fee":0,"amount":100}` + "\n\n"
	ledger, err := DecodeLedger(strings.NewReader(input), "USD")
	if err != nil {
		t.Fatalf("DecodeLedger() error = %v", err)
	}
	if ledger.Len() != 1 {
		t.Errorf("Len() = %d, want 1", ledger.Len())
	}
}

func TestDecodeLedger_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"malformed json", `{"type":"buy",`},
		{"zero quantity buy", `{"type":"buy","date":"2025-01-10","account":"a","security":"X","quantity":0,"price":10,"fee":0,"amount":0}`},
		{"positive quantity sell", `{"type":"sell","date":"2025-01-10","account":"a","security":"X","quantity":5,"price":10,"fee":0,"amount":0}`},
		{"missing date", `{"type":"deposit","account":"a","quantity":0,"price":0,"fee":0,"amount":100}`},
		{"unknown type", `{"type":"transfer","date":"2025-01-10","account":"a","quantity":0,"price":0,"fee":0,"amount":100}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeLedger(strings.NewReader(tt.input+"\n"), "USD"); err == nil {
				t.Error("DecodeLedger() should fail")
			} else if !strings.Contains(err.Error(), "line 1") {
				t.Errorf("error %q does not name the offending line", err)
			}
		})
	}
}

func TestDecodeLedger_CurrencyFallback(t *testing.T) {
	input := `{"type":"deposit","date":"2025-01-02","account":"a","quantity":0,"price":0,"fee":0,"amount":100}
{"type":"fee","date":"2025-02-01","account":"a","quantity":0,"price":0,"fee":0,"amount":10,"currency":"EUR"}
`
	ledger, err := DecodeLedger(strings.NewReader(input), "USD")
	if err != nil {
		t.Fatalf("DecodeLedger() error = %v", err)
	}
	var currencies []string
	for tx := range ledger.All() {
		currencies = append(currencies, tx.Amount.Currency())
	}
	if currencies[0] != "USD" {
		t.Errorf("fallback currency = %s, want USD", currencies[0])
	}
	if currencies[1] != "EUR" {
		t.Errorf("explicit currency = %s, want EUR", currencies[1])
	}
}
