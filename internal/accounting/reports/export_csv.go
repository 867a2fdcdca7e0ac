package reports

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"
)

const (
	csvFlushEvery = 200
	csvBufferSize = 32 * 1024
)

type csvStreamer struct {
	buf          *bufio.Writer
	csv          *csv.Writer
	flushEvery   int
	pendingLines int
}

func newCSVStreamer(w io.Writer) *csvStreamer {
	buf := bufio.NewWriterSize(w, csvBufferSize)
	writer := csv.NewWriter(buf)
	writer.UseCRLF = true
	return &csvStreamer{buf: buf, csv: writer, flushEvery: csvFlushEvery}
}

func (s *csvStreamer) writeComment(line string) error {
	_, err := s.buf.WriteString(line + "\r\n")
	return err
}

func (s *csvStreamer) writeRow(row ...string) error {
	if err := s.csv.Write(row); err != nil {
		return err
	}
	s.pendingLines++
	if s.flushEvery > 0 && s.pendingLines >= s.flushEvery {
		return s.Flush()
	}
	return nil
}

func (s *csvStreamer) Flush() error {
	s.csv.Flush()
	if err := s.csv.Error(); err != nil {
		return err
	}
	if err := s.buf.Flush(); err != nil {
		return err
	}
	s.pendingLines = 0
	return nil
}

// WriteTrialBalanceCSV streams a trial balance as CSV.
func WriteTrialBalanceCSV(w io.Writer, companyID int64, tb TrialBalance) error {
	s := newCSVStreamer(w)
	if err := s.writeComment("# Report: Trial Balance"); err != nil {
		return err
	}
	if err := s.writeComment(fmt.Sprintf("# Company: %d | As of: %s", companyID, tb.AsOf)); err != nil {
		return err
	}
	if err := s.writeRow("Account Code", "Account Name", "Type", "Debit", "Credit"); err != nil {
		return err
	}
	for _, e := range tb.Entries {
		if err := s.writeRow(e.Code, e.Name, string(e.Type), formatAmount(e.DebitBalance), formatAmount(e.CreditBalance)); err != nil {
			return err
		}
	}
	if err := s.writeRow("", "Total", "", formatAmount(tb.TotalDebits), formatAmount(tb.TotalCredits)); err != nil {
		return err
	}
	if err := s.writeRow("", "Balanced", "", strconv.FormatBool(tb.Balanced), ""); err != nil {
		return err
	}
	return s.Flush()
}

// WriteGeneralLedgerCSV streams a general ledger as CSV, one row per line.
func WriteGeneralLedgerCSV(w io.Writer, companyID int64, gl GeneralLedger) error {
	s := newCSVStreamer(w)
	if err := s.writeComment("# Report: General Ledger"); err != nil {
		return err
	}
	if err := s.writeComment(fmt.Sprintf("# Company: %d | Period: %s to %s", companyID, gl.Start, gl.End)); err != nil {
		return err
	}
	if err := s.writeRow("Account Code", "Account Name", "Date", "Number", "Description", "Debit", "Credit", "Balance"); err != nil {
		return err
	}
	for _, acc := range gl.Accounts {
		if err := s.writeRow(acc.Code, acc.Name, gl.Start, "", "Opening balance", "", "", formatAmount(acc.OpeningBalance)); err != nil {
			return err
		}
		for _, e := range acc.Entries {
			if err := s.writeRow(acc.Code, acc.Name, e.Date, e.Number, e.Description,
				formatAmount(e.Debit), formatAmount(e.Credit), formatAmount(e.RunningBalance)); err != nil {
				return err
			}
		}
		if err := s.writeRow(acc.Code, acc.Name, gl.End, "", "Closing balance",
			formatAmount(acc.PeriodDebit), formatAmount(acc.PeriodCredit), formatAmount(acc.ClosingBalance)); err != nil {
			return err
		}
	}
	return s.Flush()
}

func formatAmount(v decimal.Decimal) string {
	return v.StringFixed(2)
}
