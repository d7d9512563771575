// Package sepa writes SEPA Core direct-debit batches (pain.008.001.02) for
// open membership fees.
package sepa

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledenadmin/ledenadmin/internal/logging"
	"github.com/ledenadmin/ledenadmin/internal/model"
	"github.com/ledenadmin/ledenadmin/internal/money"
	"github.com/ledenadmin/ledenadmin/internal/period"
)

// Sequence types.
const (
	SequenceFirst     = "FRST"
	SequenceRecurring = "RCUR"
	SequenceOneOff    = "OOFF"
	SequenceFinal     = "FNAL"
)

// ErrNoCollections is returned when no fee qualifies for the batch.
var ErrNoCollections = errors.New("no fees to collect")

// Creditor is the collecting association.
type Creditor struct {
	Name       string
	IBAN       string
	BIC        string
	CreditorID string // SEPA creditor identifier, e.g. BE69ZZZ0123456789
}

// Validate checks that the creditor can sign a batch.
func (c Creditor) Validate() error {
	var problems []string
	if strings.TrimSpace(c.Name) == "" {
		problems = append(problems, "name is required")
	}
	if !money.ValidIBAN(c.IBAN) {
		problems = append(problems, fmt.Sprintf("IBAN %q is not valid", c.IBAN))
	}
	if strings.TrimSpace(c.CreditorID) == "" {
		problems = append(problems, "creditor ID is required")
	}
	if len(problems) > 0 {
		return fmt.Errorf("creditor: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Collection is one fee to collect from one member.
type Collection struct {
	Fee    model.Fee
	Member model.Member
}

// Skipped is a fee left out of the batch.
type Skipped struct {
	FeeID  string
	Reason string
}

// Options controls Build.
type Options struct {
	SequenceType   string    // defaults to RCUR
	CollectionDate time.Time // requested collection date
	Now            time.Time // creation timestamp, defaults to time.Now
	NewID          func() string
}

// Batch is a built direct-debit file.
type Batch struct {
	MessageID string
	Count     int
	Total     decimal.Decimal
	Skipped   []Skipped
	doc       document
}

// Eligible reports why c cannot be collected, or "" when it can.
func Eligible(c Collection) string {
	switch {
	case c.Fee.Method != model.MethodSEPA:
		return "payment method is " + string(c.Fee.Method)
	case c.Fee.Status != model.FeeOpen:
		return "fee is " + string(c.Fee.Status)
	case !c.Fee.Amount.IsPositive():
		return "amount is not positive"
	case !money.ValidIBAN(c.Member.IBAN):
		return "member has no valid IBAN"
	case !c.Member.HasMandate():
		return "member has no signed mandate"
	}
	return ""
}

// Build assembles a batch from collections, skipping the ineligible ones.
func Build(ctx context.Context, creditor Creditor, collections []Collection, opts Options) (*Batch, error) {
	if err := creditor.Validate(); err != nil {
		return nil, err
	}
	if opts.CollectionDate.IsZero() {
		return nil, fmt.Errorf("collection date is required")
	}
	seq := strings.ToUpper(opts.SequenceType)
	if seq == "" {
		seq = SequenceRecurring
	}
	switch seq {
	case SequenceFirst, SequenceRecurring, SequenceOneOff, SequenceFinal:
	default:
		return nil, fmt.Errorf("unknown sequence type %q", opts.SequenceType)
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	b := &Batch{MessageID: compactID(newID()), Total: decimal.Zero}
	var txs []transaction
	for _, c := range collections {
		if reason := Eligible(c); reason != "" {
			b.Skipped = append(b.Skipped, Skipped{FeeID: c.Fee.ID, Reason: reason})
			continue
		}
		txs = append(txs, transaction{
			EndToEndID: c.Fee.ID,
			InstdAmt:   amount{Ccy: "EUR", Value: c.Fee.Amount.StringFixed(2)},
			Mandate: mandate{
				MndtID:    c.Member.MandateID,
				DtOfSgntr: period.ToISO(c.Member.MandateSigned),
			},
			DbtrAgt:  agent{Other: "NOTPROVIDED"},
			Dbtr:     party{Nm: truncate(c.Member.FullName(), 70)},
			DbtrAcct: account{IBAN: money.NormalizeIBAN(c.Member.IBAN)},
			RmtInf:   remittanceInf{Ustrd: truncate(remittance(c.Fee), 140)},
		})
		b.Total = b.Total.Add(c.Fee.Amount)
	}
	b.Count = len(txs)

	log := logging.FromContext(ctx)
	for _, s := range b.Skipped {
		log.Debug().Str("fee", s.FeeID).Str("reason", s.Reason).Msg("fee skipped for SEPA batch")
	}
	if b.Count == 0 {
		return nil, ErrNoCollections
	}

	creditorAgent := agent{BIC: strings.ToUpper(strings.TrimSpace(creditor.BIC))}
	if creditorAgent.BIC == "" {
		creditorAgent = agent{Other: "NOTPROVIDED"}
	}
	b.doc = document{
		Xmlns: painNamespace,
		Initn: initn{
			GrpHdr: groupHeader{
				MsgID:    b.MessageID,
				CreDtTm:  now.Format("2006-01-02T15:04:05"),
				NbOfTxs:  b.Count,
				CtrlSum:  b.Total.StringFixed(2),
				InitgPty: party{Nm: truncate(creditor.Name, 70)},
			},
			PmtInf: paymentInfo{
				PmtInfID:     b.MessageID + "-1",
				PmtMtd:       "DD",
				BtchBookg:    true,
				NbOfTxs:      b.Count,
				CtrlSum:      b.Total.StringFixed(2),
				PmtTpInf:     paymentType{SvcLvl: code{Cd: "SEPA"}, LclInstrm: code{Cd: "CORE"}, SeqTp: seq},
				ReqdColltnDt: period.ToISO(opts.CollectionDate),
				Cdtr:         party{Nm: truncate(creditor.Name, 70)},
				CdtrAcct:     account{IBAN: money.NormalizeIBAN(creditor.IBAN)},
				CdtrAgt:      creditorAgent,
				ChrgBr:       "SLEV",
				CdtrSchmeID:  schemeID{ID: strings.ToUpper(strings.TrimSpace(creditor.CreditorID)), Scheme: "SEPA"},
				DrctDbtTxInf: txs,
			},
		},
	}

	log.Info().
		Str("message_id", b.MessageID).
		Int("count", b.Count).
		Str("total", b.Total.StringFixed(2)).
		Int("skipped", len(b.Skipped)).
		Msg("SEPA batch built")
	return b, nil
}

// WriteTo writes the batch as indented XML.
func (b *Batch) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	if _, err := io.WriteString(cw, xml.Header); err != nil {
		return cw.n, err
	}
	enc := xml.NewEncoder(cw)
	enc.Indent("", "  ")
	if err := enc.Encode(b.doc); err != nil {
		return cw.n, fmt.Errorf("encoding pain.008: %w", err)
	}
	if _, err := io.WriteString(cw, "\n"); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

// remittance is the unstructured remittance line: the fee's structured
// communication followed by its period.
func remittance(f model.Fee) string {
	parts := []string{}
	if f.Reference != "" {
		parts = append(parts, f.Reference)
	}
	parts = append(parts, "Lidgeld "+period.FormatDateBE(f.Start)+" - "+period.FormatDateBE(f.End))
	return strings.Join(parts, " ")
}

// compactID strips dashes so the ID fits the 35-character limit.
func compactID(id string) string {
	return truncate(strings.ReplaceAll(id, "-", ""), 35)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
