package importer

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ledenadmin/ledenadmin/internal/id"
	"github.com/ledenadmin/ledenadmin/internal/model"
)

const codaRecordLen = 128

var codaHeaders = []string{
	ColDate, ColValueDate, ColAmount, ColDebitCredit, ColCounterparty,
	ColCounterpartyIBAN, ColCommunication, ColReference, ColAccount,
}

// CODAFormat parses Belgian CODA (coded statement of account) files.
type CODAFormat struct{}

// Name returns the format name.
func (CODAFormat) Name() string { return FormatCODA }

// DefaultMethod returns the method for bank-native statements.
func (CODAFormat) DefaultMethod() model.PaymentMethod { return model.MethodSEPA }

// Parse implements Format.
func (CODAFormat) Parse(content string) ParseResult { return ParseCODA(content) }

type codaMovement struct {
	seq, detail   string
	row           Row
	communication strings.Builder
}

// ParseCODA reads 128-column CODA records. Each movement record 2.1 with
// detail number 0000 becomes one row; records 2.2 and 2.3 with the same
// sequence number add the communication, counterparty name and account.
// Detail records of globalised movements are skipped so amounts are not
// counted twice.
func ParseCODA(content string) ParseResult {
	lines := splitLines(strings.TrimPrefix(content, bom))

	var (
		rows      []Row
		account   string
		mv        *codaMovement
		sawHeader bool
	)
	flush := func() {
		if mv == nil {
			return
		}
		if mv.row[ColCommunication] == "" {
			mv.row[ColCommunication] = collapseSpaces(mv.communication.String())
		}
		rows = append(rows, mv.row)
		mv = nil
	}

	for n, raw := range lines {
		lineNo := n + 1
		line := []rune(strings.TrimRight(raw, " "))
		if len(line) == 0 {
			continue
		}
		if len(line) > codaRecordLen {
			return failf("line %d: record longer than %d characters", lineNo, codaRecordLen)
		}
		rec := newCodaRecord(line)

		if !sawHeader {
			if rec.kind() != '0' {
				return failf("line %d: not a CODA file, missing header record", lineNo)
			}
			sawHeader = true
			continue
		}

		switch {
		case rec.kind() == '0':
			// A new statement in the same file.
			flush()
		case rec.kind() == '1':
			flush()
			account = codaAccount(rec)
		case rec.is("21"):
			flush()
			seq, detail := rec.field(2, 6), rec.field(6, 10)
			if detail != "0000" {
				continue
			}
			row, ok := codaMovementRow(rec)
			if !ok {
				return failf("line %d: invalid movement amount %q", lineNo, rec.field(32, 47))
			}
			row[ColAccount] = account
			mv = &codaMovement{seq: seq, detail: detail, row: row}
			if rec[61] == '0' {
				mv.communication.WriteString(rec.field(62, 115))
			}
		case rec.is("22"):
			if !mv.continues(rec) {
				continue
			}
			if mv.row[ColCommunication] == "" {
				mv.communication.WriteString(rec.field(10, 63))
			}
			if ref := strings.TrimSpace(rec.field(63, 98)); ref != "" && mv.row[ColReference] == "" {
				mv.row[ColReference] = ref
			}
		case rec.is("23"):
			if !mv.continues(rec) {
				continue
			}
			if f := strings.Fields(rec.field(10, 47)); len(f) > 0 {
				mv.row[ColCounterpartyIBAN] = f[0]
			}
			mv.row[ColCounterparty] = strings.TrimSpace(rec.field(47, 82))
			if mv.row[ColCommunication] == "" {
				mv.communication.WriteString(rec.field(82, 125))
			}
		case rec.kind() == '8', rec.kind() == '9':
			flush()
		}
	}
	flush()

	if !sawHeader {
		return failf("file is empty")
	}
	return ParseResult{Success: true, Headers: append([]string(nil), codaHeaders...), Rows: rows}
}

// codaRecord is one record padded to 128 characters. Positions count
// characters, not bytes, so decoded accented names keep their columns.
type codaRecord []rune

func newCodaRecord(line []rune) codaRecord {
	rec := make(codaRecord, codaRecordLen)
	for i := range rec {
		rec[i] = ' '
	}
	copy(rec, line)
	return rec
}

func (r codaRecord) kind() rune { return r[0] }

func (r codaRecord) is(prefix string) bool { return r.field(0, len(prefix)) == prefix }

// field returns the zero-based half-open column range [from, to).
func (r codaRecord) field(from, to int) string { return string(r[from:to]) }

// continues reports whether rec is a 2.2 or 2.3 record of the current movement.
func (mv *codaMovement) continues(rec codaRecord) bool {
	return mv != nil && rec.field(2, 6) == mv.seq && rec.field(6, 10) == mv.detail
}

func codaMovementRow(rec codaRecord) (Row, bool) {
	amount, ok := codaAmount(rec.field(32, 47))
	if !ok {
		return nil, false
	}
	flag := "C"
	if rec[31] == '1' {
		flag = "D"
	}

	valueDate := codaDate(rec.field(47, 53))
	date := codaDate(rec.field(115, 121))
	if date == "" {
		date = valueDate
	}

	row := Row{
		ColDate:             date,
		ColValueDate:        valueDate,
		ColAmount:           commaAmount(amount),
		ColDebitCredit:      flag,
		ColCounterparty:     "",
		ColCounterpartyIBAN: "",
		ColCommunication:    "",
		ColReference:        strings.TrimSpace(rec.field(10, 31)),
	}
	// Structured communication: type 101 or 102 followed by twelve digits.
	if rec[61] == '1' {
		typ, digits := rec.field(62, 65), rec.field(65, 77)
		if typ == "101" || typ == "102" {
			row[ColCommunication] = id.FormatStructured(digits)
		} else {
			row[ColCommunication] = collapseSpaces(rec.field(65, 115))
		}
	}
	return row, true
}

// codaAmount reads 15 digits with three implied decimals.
func codaAmount(s string) (decimal.Decimal, bool) {
	if len(s) != 15 || !allDigits(s) {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s[:12] + "." + s[12:])
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// codaDate turns DDMMYY into DD/MM/YYYY; all zeros or garbage yields "".
func codaDate(s string) string {
	if len(s) != 6 || !allDigits(s) || s == "000000" {
		return ""
	}
	return s[0:2] + "/" + s[2:4] + "/20" + s[4:6]
}

// codaAccount reads the account number of an old-balance record according
// to its account structure digit.
func codaAccount(rec codaRecord) string {
	switch rec[1] {
	case '0':
		return strings.TrimSpace(rec.field(5, 17))
	case '2':
		return strings.TrimSpace(rec.field(5, 21))
	default:
		if f := strings.Fields(rec.field(5, 39)); len(f) > 0 {
			return f[0]
		}
		return ""
	}
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
