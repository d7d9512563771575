package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ledenadmin/ledenadmin/internal/model"
	"github.com/ledenadmin/ledenadmin/internal/period"
)

// Header is the CSV header for transactions.csv.
const Header = "id,date,type,category,amount,method,description,counterparty,reference,source"

const (
	numFields   = 10
	colID       = 0
	colDate     = 1
	colType     = 2
	colCategory = 3
	colAmount   = 4
	colMethod   = 5
	colDesc     = 6
	colCparty   = 7
	colRef      = 8
	colSource   = 9
)

// ReadTransactions reads all transactions from a transactions.csv reader.
func ReadTransactions(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading transactions CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	txs := make([]model.Transaction, 0, len(records)-1)
	for i, rec := range records[1:] {
		tx, err := UnmarshalTransaction(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// WriteTransactions writes transactions including the header.
func WriteTransactions(w io.Writer, txs []model.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	return writeRows(cw, txs)
}

// AppendTransactions writes transactions without a header.
func AppendTransactions(w io.Writer, txs []model.Transaction) error {
	return writeRows(csv.NewWriter(w), txs)
}

func writeRows(cw *csv.Writer, txs []model.Transaction) error {
	for i, tx := range txs {
		if err := cw.Write(MarshalTransaction(tx)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalTransaction converts a Transaction to a CSV row.
func MarshalTransaction(tx model.Transaction) []string {
	row := make([]string, numFields)
	row[colID] = tx.ID
	row[colDate] = period.ToISO(tx.Date)
	row[colType] = string(tx.Type)
	row[colCategory] = tx.Category
	row[colAmount] = tx.Amount.StringFixed(2)
	row[colMethod] = string(tx.Method)
	row[colDesc] = tx.Description
	row[colCparty] = tx.Counterparty
	row[colRef] = tx.Reference
	row[colSource] = tx.Source
	return row
}

// UnmarshalTransaction converts a CSV row to a Transaction.
func UnmarshalTransaction(record []string) (model.Transaction, error) {
	if len(record) != numFields {
		return model.Transaction{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	date, err := period.FromISO(record[colDate])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}
	typ, err := model.ParseTransactionType(record[colType])
	if err != nil {
		return model.Transaction{}, err
	}
	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}
	var method model.PaymentMethod
	if record[colMethod] != "" {
		if method, err = model.ParsePaymentMethod(record[colMethod]); err != nil {
			return model.Transaction{}, err
		}
	}

	return model.Transaction{
		ID:           record[colID],
		Date:         date,
		Type:         typ,
		Category:     record[colCategory],
		Amount:       amount,
		Method:       method,
		Description:  record[colDesc],
		Counterparty: record[colCparty],
		Reference:    record[colRef],
		Source:       record[colSource],
	}, nil
}
