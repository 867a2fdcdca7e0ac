package reports

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MarselKurniawan/erp-system/internal/shared"
)

// AgingKind selects receivables or payables.
type AgingKind string

const (
	AgingReceivables AgingKind = "receivables"
	AgingPayables    AgingKind = "payables"
)

// ParseAgingKind validates a kind taken from a URL.
func ParseAgingKind(raw string) (AgingKind, error) {
	switch kind := AgingKind(strings.ToLower(strings.TrimSpace(raw))); kind {
	case AgingReceivables, AgingPayables:
		return kind, nil
	}
	return "", fmt.Errorf("%w: unknown aging kind %q", shared.ErrValidation, raw)
}

// AgingBucket names an overdue range.
type AgingBucket string

const (
	BucketCurrent AgingBucket = "current"
	Bucket1To30   AgingBucket = "1-30"
	Bucket31To60  AgingBucket = "31-60"
	Bucket61To90  AgingBucket = "61-90"
	BucketOver90  AgingBucket = "over_90"
)

// AgingFilter scopes an aging report.
type AgingFilter struct {
	CompanyID int64
	Kind      AgingKind
	AsOf      time.Time
	// PartyID limits the report to one customer or supplier when non-zero.
	PartyID int64
}

// BucketFor maps days overdue to a bucket. An invoice due today is current.
func BucketFor(daysOverdue int) AgingBucket {
	switch {
	case daysOverdue <= 0:
		return BucketCurrent
	case daysOverdue <= 30:
		return Bucket1To30
	case daysOverdue <= 60:
		return Bucket31To60
	case daysOverdue <= 90:
		return Bucket61To90
	default:
		return BucketOver90
	}
}

// BuildAging places every invoice with a positive balance due into exactly
// one bucket. Invoices dated after asOf are ignored.
func BuildAging(kind AgingKind, invoices []InvoiceRow, asOf time.Time) AgingReport {
	asOf = shared.DateOnly(asOf)
	report := AgingReport{
		Kind:    kind,
		AsOf:    asOf.Format(shared.DateLayout),
		Entries: []AgingEntry{},
		Summary: AgingSummary{
			Current: decimal.Zero, Days1To30: decimal.Zero, Days31To60: decimal.Zero,
			Days61To90: decimal.Zero, Over90: decimal.Zero, GrandTotal: decimal.Zero,
		},
	}
	for _, inv := range invoices {
		if shared.DateOnly(inv.InvoiceDate).After(asOf) {
			continue
		}
		due := inv.Total.Sub(inv.Paid)
		if !due.IsPositive() {
			continue
		}
		days := shared.DaysBetween(inv.DueDate, asOf)
		bucket := BucketFor(days)
		report.Entries = append(report.Entries, AgingEntry{
			InvoiceID:     inv.ID,
			PartyID:       inv.PartyID,
			PartyName:     inv.PartyName,
			InvoiceNumber: inv.Number,
			InvoiceDate:   inv.InvoiceDate.Format(shared.DateLayout),
			DueDate:       inv.DueDate.Format(shared.DateLayout),
			Total:         inv.Total,
			Paid:          inv.Paid,
			BalanceDue:    due,
			DaysOverdue:   days,
			Bucket:        bucket,
		})
		report.Summary.add(bucket, due)
	}
	sort.SliceStable(report.Entries, func(i, j int) bool {
		a, b := report.Entries[i], report.Entries[j]
		if a.DaysOverdue != b.DaysOverdue {
			return a.DaysOverdue > b.DaysOverdue
		}
		return a.InvoiceNumber < b.InvoiceNumber
	})
	return report
}

func (s *AgingSummary) add(bucket AgingBucket, amount decimal.Decimal) {
	switch bucket {
	case BucketCurrent:
		s.Current = s.Current.Add(amount)
	case Bucket1To30:
		s.Days1To30 = s.Days1To30.Add(amount)
	case Bucket31To60:
		s.Days31To60 = s.Days31To60.Add(amount)
	case Bucket61To90:
		s.Days61To90 = s.Days61To90.Add(amount)
	default:
		s.Over90 = s.Over90.Add(amount)
	}
	s.GrandTotal = s.GrandTotal.Add(amount)
}
