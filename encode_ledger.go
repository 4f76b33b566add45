package portfolio

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// jsonTx is the wire shape of a transaction: one flat JSON object per line,
// monetary fields as bare decimals plus a single currency code.
type jsonTx struct {
	Type     TxType          `json:"type"`
	Date     Date            `json:"date"`
	Account  string          `json:"account,omitempty"`
	Security string          `json:"security,omitempty"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Fee      decimal.Decimal `json:"fee"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency,omitempty"`
	Reinvest bool            `json:"reinvest,omitempty"`
	Memo     string          `json:"memo,omitempty"`
}

func (j jsonTx) transaction(fallbackCurrency string) Transaction {
	cur := j.Currency
	if cur == "" {
		cur = fallbackCurrency
	}
	return Transaction{
		Type:     j.Type,
		Date:     j.Date,
		Account:  j.Account,
		Security: j.Security,
		Quantity: Q(j.Quantity),
		Price:    M(j.Price, cur),
		Fee:      M(j.Fee, cur),
		Amount:   M(j.Amount, cur),
		Reinvest: j.Reinvest,
		Memo:     j.Memo,
	}
}

func newJSONTx(tx Transaction, ledgerCurrency string) jsonTx {
	j := jsonTx{
		Type:     tx.Type,
		Date:     tx.Date,
		Account:  tx.Account,
		Security: tx.Security,
		Quantity: tx.Quantity.value,
		Price:    tx.Price.value,
		Fee:      tx.Fee.value,
		Amount:   tx.Amount.value,
		Reinvest: tx.Reinvest,
		Memo:     tx.Memo,
	}
	// Only write the currency when it differs from the ledger's.
	for _, c := range []string{tx.Price.Currency(), tx.Fee.Currency(), tx.Amount.Currency()} {
		if c != "" && c != ledgerCurrency {
			j.Currency = c
			break
		}
	}
	return j
}

// DecodeLedger reads transactions from a stream of JSONL data, one JSON
// object per line, and returns a date-sorted Ledger in the given reporting
// currency.
func DecodeLedger(r io.Reader, currency string) (*Ledger, error) {
	ledger := NewLedger(currency)
	scanner := bufio.NewScanner(r)

	line := 0
	for scanner.Scan() {
		line++
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue // Skip empty lines
		}
		var j jsonTx
		if err := json.Unmarshal(lineBytes, &j); err != nil {
			return nil, fmt.Errorf("line %d: could not decode transaction: %w", line, err)
		}
		if err := ledger.Append(j.transaction(currency)); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading ledger: %w", err)
	}
	return ledger, nil
}

// EncodeTransaction marshals a single transaction to JSON and writes it to
// the writer, followed by a newline, in JSONL format.
func EncodeTransaction(w io.Writer, tx Transaction, ledgerCurrency string) error {
	data, err := json.Marshal(newJSONTx(tx, ledgerCurrency))
	if err != nil {
		return fmt.Errorf("failed to marshal transaction: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write transaction: %w", err)
	}
	return nil
}

// EncodeLedger writes the ledger to an io.Writer in JSONL format, in date
// order. Encoding a decoded ledger reproduces canonical input byte for byte.
func EncodeLedger(w io.Writer, ledger *Ledger) error {
	for tx := range ledger.All() {
		if err := EncodeTransaction(w, tx, ledger.currency); err != nil {
			return err
		}
	}
	return nil
}
