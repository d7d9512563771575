package importer

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ledenadmin/ledenadmin/internal/model"
)

// MT940 row columns.
const (
	ColDate             = "Datum"
	ColValueDate        = "Valutadatum"
	ColAmount           = "Bedrag"
	ColDebitCredit      = "Debet/Credit"
	ColType             = "Type"
	ColReference        = "Referentie"
	ColDescription      = "Omschrijving"
	ColCommunication    = "Mededeling"
	ColCounterparty     = "Tegenpartij"
	ColCounterpartyIBAN = "Rekening tegenpartij"
	ColAccount          = "Rekening"
)

var mt940Headers = []string{
	ColDate, ColValueDate, ColAmount, ColDebitCredit, ColType,
	ColReference, ColDescription, ColCounterparty, ColCounterpartyIBAN, ColAccount,
}

// MT940Format parses SWIFT MT940 customer statements.
type MT940Format struct{}

// Name returns the format name.
func (MT940Format) Name() string { return FormatMT940 }

// DefaultMethod returns the method for bank-native statements.
func (MT940Format) DefaultMethod() model.PaymentMethod { return model.MethodSEPA }

// Parse implements Format.
func (MT940Format) Parse(content string) ParseResult { return ParseMT940(content) }

// :61: value date YYMMDD, optional entry date MMDD, debit/credit mark
// (C, D, RC, RD), optional funds code, amount with comma decimals,
// transaction type, owner reference, optional //bank reference.
var stmtLineRe = regexp.MustCompile(`^(\d{2})(\d{2})(\d{2})(\d{2})?(\d{2})?(RC|RD|C|D)([A-Z])?(\d+,\d{0,2})([NSF][A-Z0-9]{3})?(.*?)(?://(.*))?$`)

type mt940Field struct {
	tag   string
	value string
}

// ParseMT940 extracts one row per :61: statement line. The :86: field that
// follows a statement line becomes its description; structured :86: content
// (/NAME/, /REMI/, /IBAN/ and the ING /CNTP/ layout) fills the counterparty columns.
func ParseMT940(content string) ParseResult {
	fields := mt940Fields(strings.TrimPrefix(content, bom))
	if len(fields) == 0 {
		return failf("no MT940 fields found")
	}

	var (
		rows    []Row
		account string
		current Row
		sawStmt bool
	)
	flush := func() {
		if current != nil {
			rows = append(rows, current)
			current = nil
		}
	}

	for _, f := range fields {
		switch f.tag {
		case "20":
			sawStmt = true
		case "25":
			flush()
			account = strings.TrimSpace(firstLine(f.value))
		case "61":
			flush()
			row, ok := parseStatementLine(f.value)
			if !ok {
				return failf("cannot parse :61: statement line %q", firstLine(f.value))
			}
			row[ColAccount] = account
			current = row
		case "86":
			if current == nil {
				continue
			}
			info := parseInfo86(f.value)
			current[ColDescription] = info.description
			if info.name != "" {
				current[ColCounterparty] = info.name
			}
			if info.iban != "" {
				current[ColCounterpartyIBAN] = info.iban
			}
		case "62F", "62M", "64", "65":
			flush()
		}
	}
	flush()

	if !sawStmt && len(rows) == 0 {
		return failf("no MT940 statement found")
	}
	return ParseResult{Success: true, Headers: append([]string(nil), mt940Headers...), Rows: rows}
}

// mt940Fields splits content into tagged fields. Lines that do not start a
// tag continue the previous field; SWIFT block envelopes are skipped.
func mt940Fields(content string) []mt940Field {
	var fields []mt940Field
	for _, line := range splitLines(content) {
		trimmed := strings.TrimRight(line, " ")
		if i := strings.Index(trimmed, "{4:"); i >= 0 {
			trimmed = trimmed[i+3:]
		}
		if trimmed == "" || trimmed == "-" || strings.HasPrefix(trimmed, "-}") || strings.HasPrefix(trimmed, "{") {
			continue
		}
		if tag, value, ok := cutTag(trimmed); ok {
			fields = append(fields, mt940Field{tag: tag, value: value})
			continue
		}
		if len(fields) > 0 {
			fields[len(fields)-1].value += "\n" + trimmed
		}
	}
	return fields
}

// cutTag splits ":61:rest" into "61" and "rest".
func cutTag(line string) (tag, value string, ok bool) {
	if len(line) < 4 || line[0] != ':' {
		return "", "", false
	}
	end := strings.IndexByte(line[1:], ':')
	if end < 2 || end > 3 {
		return "", "", false
	}
	tag = line[1 : end+1]
	if tag[0] < '0' || tag[0] > '9' || tag[1] < '0' || tag[1] > '9' {
		return "", "", false
	}
	return tag, line[end+2:], true
}

func parseStatementLine(value string) (Row, bool) {
	m := stmtLineRe.FindStringSubmatch(firstLine(value))
	if m == nil {
		return nil, false
	}
	yy, mm, dd := m[1], m[2], m[3]
	entryMM, entryDD := m[4], m[5]
	mark := m[6]

	num := strings.Replace(m[8], ",", ".", 1)
	if strings.HasSuffix(num, ".") {
		num += "00"
	}
	amount, err := decimal.NewFromString(num)
	if err != nil {
		return nil, false
	}

	// RC reverses a credit (money leaves), RD reverses a debit.
	debit := mark == "D" || mark == "RC"
	flag := "C"
	if debit {
		flag = "D"
	}

	valueDate := dd + "/" + mm + "/20" + yy
	date := valueDate
	if entryMM != "" && entryDD != "" {
		date = entryDD + "/" + entryMM + "/" + entryYear(yy, mm, entryMM)
	}

	ref := strings.TrimSpace(m[10])
	if bankRef := strings.TrimSpace(m[11]); ref == "" || ref == "NONREF" {
		if bankRef != "" {
			ref = bankRef
		}
	}

	return Row{
		ColDate:             date,
		ColValueDate:        valueDate,
		ColAmount:           commaAmount(amount),
		ColDebitCredit:      flag,
		ColType:             m[9],
		ColReference:        ref,
		ColDescription:      "",
		ColCounterparty:     "",
		ColCounterpartyIBAN: "",
	}, true
}

// entryYear places the MMDD entry date in the year closest to the value
// date, so a 31 December booking of a 2 January value date stays in the
// previous year.
func entryYear(yy, valueMM, entryMM string) string {
	year := 2000 + atoi2(yy)
	switch {
	case valueMM == "01" && entryMM == "12":
		year--
	case valueMM == "12" && entryMM == "01":
		year++
	}
	return itoa4(year)
}

type info86 struct {
	description string
	name        string
	iban        string
}

var info86Codes = []string{"TRTP", "IBAN", "BIC", "NAME", "REMI", "EREF", "CSID", "MARF", "CNTP", "ORDP", "BENM", "ADDR", "PREF", "RTRN", "ID"}

// parseInfo86 reads the :86: information field. Unstructured text becomes
// the description as-is, with line breaks joined by spaces.
func parseInfo86(value string) info86 {
	text := strings.Join(strings.Split(value, "\n"), "")
	plain := strings.Join(strings.Fields(strings.ReplaceAll(value, "\n", " ")), " ")

	codes := subfields86(text)
	if len(codes) == 0 {
		return info86{description: plain}
	}

	info := info86{}
	if remi, ok := codes["REMI"]; ok {
		remi = strings.TrimPrefix(remi, "USTD//")
		remi = strings.TrimPrefix(remi, "USTD/")
		remi = strings.TrimPrefix(remi, "STRD/CUR/")
		remi = strings.TrimPrefix(remi, "STRD/")
		info.description = strings.Trim(remi, "/ ")
	}
	info.name = strings.Trim(codes["NAME"], "/ ")
	info.iban = strings.Trim(codes["IBAN"], "/ ")

	// ING: /CNTP/<iban>/<bic>/<name>/<city>/
	if cntp, ok := codes["CNTP"]; ok {
		parts := strings.Split(cntp, "/")
		if len(parts) > 0 && info.iban == "" {
			info.iban = strings.TrimSpace(parts[0])
		}
		if len(parts) > 2 && info.name == "" {
			info.name = strings.TrimSpace(parts[2])
		}
	}
	if info.description == "" {
		info.description = plain
	}
	return info
}

// subfields86 finds /CODE/value pairs for the known codes.
func subfields86(text string) map[string]string {
	type mark struct {
		code       string
		start, end int
	}
	var marks []mark
	for i := 0; i < len(text); i++ {
		if text[i] != '/' {
			continue
		}
		for _, c := range info86Codes {
			tok := "/" + c + "/"
			if strings.HasPrefix(text[i:], tok) {
				marks = append(marks, mark{code: c, start: i, end: i + len(tok)})
				i += len(tok) - 2
				break
			}
		}
	}
	if len(marks) == 0 {
		return nil
	}
	out := make(map[string]string, len(marks))
	for i, mk := range marks {
		stop := len(text)
		if i+1 < len(marks) {
			stop = marks[i+1].start
		}
		if _, dup := out[mk.code]; !dup {
			out[mk.code] = text[mk.end:stop]
		}
	}
	return out
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

// commaAmount renders an amount with at least two decimals and a comma
// separator, without thousands grouping. Precision beyond cents is kept.
func commaAmount(d decimal.Decimal) string {
	s := d.StringFixed(2)
	if !d.Equal(d.Round(2)) {
		s = d.String()
	}
	return strings.Replace(s, ".", ",", 1)
}

func atoi2(s string) int {
	if len(s) != 2 {
		return 0
	}
	return int(s[0]-'0')*10 + int(s[1]-'0')
}

func itoa4(n int) string {
	b := []byte{'0', '0', '0', '0'}
	for i := 3; i >= 0; i-- {
		b[i] = byte('0' + n%10)
		n /= 10
	}
	return string(b)
}
