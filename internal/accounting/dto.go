package accounting

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MarselKurniawan/erp-system/internal/shared"
)

type journalLineRequest struct {
	AccountID   int64           `json:"accountId" validate:"required,gt=0"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description" validate:"max=255"`
}

type createJournalRequest struct {
	Date          string               `json:"date" validate:"required,datetime=2006-01-02"`
	Description   string               `json:"description" validate:"max=500"`
	ReferenceType string               `json:"referenceType" validate:"omitempty,max=64"`
	ReferenceID   string               `json:"referenceId" validate:"omitempty,max=128"`
	Status        string               `json:"status" validate:"omitempty,oneof=DRAFT POSTED"`
	Lines         []journalLineRequest `json:"lines" validate:"required,min=1,dive"`
}

func (req createJournalRequest) toInput(companyID int64) (PostingInput, error) {
	date, err := shared.ParseDate(req.Date)
	if err != nil {
		return PostingInput{}, err
	}
	in := PostingInput{
		CompanyID:     companyID,
		Date:          date,
		Description:   strings.TrimSpace(req.Description),
		ReferenceType: strings.TrimSpace(req.ReferenceType),
		ReferenceID:   strings.TrimSpace(req.ReferenceID),
		Status:        JournalStatus(req.Status),
		Lines:         make([]PostingLineInput, 0, len(req.Lines)),
	}
	for _, line := range req.Lines {
		in.Lines = append(in.Lines, PostingLineInput{
			AccountID:   line.AccountID,
			Debit:       line.Debit,
			Credit:      line.Credit,
			Description: strings.TrimSpace(line.Description),
		})
	}
	return in, nil
}

type postJournalResponse struct {
	ID          int64           `json:"id"`
	Number      string          `json:"number"`
	TotalDebit  decimal.Decimal `json:"totalDebit"`
	TotalCredit decimal.Decimal `json:"totalCredit"`
	Status      JournalStatus   `json:"status"`
}

func newPostJournalResponse(entry JournalEntry) postJournalResponse {
	return postJournalResponse{
		ID:          entry.ID,
		Number:      entry.Number,
		TotalDebit:  entry.TotalDebit,
		TotalCredit: entry.TotalCredit,
		Status:      entry.Status,
	}
}
