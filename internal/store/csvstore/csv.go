package csvstore

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledenadmin/ledenadmin/internal/model"
	"github.com/ledenadmin/ledenadmin/internal/period"
)

// MemberHeader is the CSV header for members.csv.
const MemberHeader = "id,first_name,last_name,email,phone,iban,mandate_id,mandate_signed,joined_on,active"

// FeeHeader is the CSV header for fees.csv.
const FeeHeader = "id,member_id,amount,term,start,end,method,status,reference,paid_on,notes"

const (
	memberFields     = 10
	colMemberID      = 0
	colFirstName     = 1
	colLastName      = 2
	colEmail         = 3
	colPhone         = 4
	colIBAN          = 5
	colMandateID     = 6
	colMandateSigned = 7
	colJoinedOn      = 8
	colActive        = 9

	feeFields    = 11
	colFeeID     = 0
	colFeeMember = 1
	colAmount    = 2
	colTerm      = 3
	colStart     = 4
	colEnd       = 5
	colMethod    = 6
	colStatus    = 7
	colReference = 8
	colPaidOn    = 9
	colNotes     = 10
)

// MarshalMember converts a Member to a CSV row.
func MarshalMember(m model.Member) []string {
	row := make([]string, memberFields)
	row[colMemberID] = m.ID
	row[colFirstName] = m.FirstName
	row[colLastName] = m.LastName
	row[colEmail] = m.Email
	row[colPhone] = m.Phone
	row[colIBAN] = m.IBAN
	row[colMandateID] = m.MandateID
	row[colMandateSigned] = optionalDate(m.MandateSigned)
	row[colJoinedOn] = optionalDate(m.JoinedOn)
	row[colActive] = strconv.FormatBool(m.Active)
	return row
}

// UnmarshalMember converts a CSV row to a Member.
func UnmarshalMember(record []string) (model.Member, error) {
	if len(record) != memberFields {
		return model.Member{}, fmt.Errorf("expected %d fields, got %d", memberFields, len(record))
	}
	signed, err := parseOptionalDate("mandate_signed", record[colMandateSigned])
	if err != nil {
		return model.Member{}, err
	}
	joined, err := parseOptionalDate("joined_on", record[colJoinedOn])
	if err != nil {
		return model.Member{}, err
	}
	active, err := strconv.ParseBool(record[colActive])
	if err != nil {
		return model.Member{}, fmt.Errorf("parsing active %q: %w", record[colActive], err)
	}
	return model.Member{
		ID:            record[colMemberID],
		FirstName:     record[colFirstName],
		LastName:      record[colLastName],
		Email:         record[colEmail],
		Phone:         record[colPhone],
		IBAN:          record[colIBAN],
		MandateID:     record[colMandateID],
		MandateSigned: signed,
		JoinedOn:      joined,
		Active:        active,
	}, nil
}

// MarshalFee converts a Fee to a CSV row.
func MarshalFee(f model.Fee) []string {
	row := make([]string, feeFields)
	row[colFeeID] = f.ID
	row[colFeeMember] = f.MemberID
	row[colAmount] = f.Amount.StringFixed(2)
	row[colTerm] = string(f.Term)
	row[colStart] = period.ToISO(f.Start)
	row[colEnd] = period.ToISO(f.End)
	row[colMethod] = string(f.Method)
	row[colStatus] = string(f.Status)
	row[colReference] = f.Reference
	row[colPaidOn] = optionalDate(f.PaidOn)
	row[colNotes] = f.Notes
	return row
}

// UnmarshalFee converts a CSV row to a Fee.
func UnmarshalFee(record []string) (model.Fee, error) {
	if len(record) != feeFields {
		return model.Fee{}, fmt.Errorf("expected %d fields, got %d", feeFields, len(record))
	}
	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return model.Fee{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}
	term, err := period.ParseTerm(record[colTerm])
	if err != nil {
		return model.Fee{}, err
	}
	start, err := period.FromISO(record[colStart])
	if err != nil {
		return model.Fee{}, fmt.Errorf("parsing start %q: %w", record[colStart], err)
	}
	end, err := period.FromISO(record[colEnd])
	if err != nil {
		return model.Fee{}, fmt.Errorf("parsing end %q: %w", record[colEnd], err)
	}
	method, err := model.ParsePaymentMethod(record[colMethod])
	if err != nil {
		return model.Fee{}, err
	}
	status, err := model.ParseFeeStatus(record[colStatus])
	if err != nil {
		return model.Fee{}, err
	}
	paidOn, err := parseOptionalDate("paid_on", record[colPaidOn])
	if err != nil {
		return model.Fee{}, err
	}
	return model.Fee{
		ID:        record[colFeeID],
		MemberID:  record[colFeeMember],
		Amount:    amount,
		Term:      term,
		Start:     start,
		End:       end,
		Method:    method,
		Status:    status,
		Reference: record[colReference],
		PaidOn:    paidOn,
		Notes:     record[colNotes],
	}, nil
}

func optionalDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return period.ToISO(t)
}

func parseOptionalDate(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := period.FromISO(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing %s %q: %w", field, s, err)
	}
	return t, nil
}

// readRecords reads a CSV file with a header and fixed field count.
func readRecords(r io.Reader, fields int) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = fields
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) <= 1 {
		return nil, nil
	}
	return records[1:], nil
}

func writeRecords(w io.Writer, header string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(strings.Split(header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
