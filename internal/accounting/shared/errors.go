package shared

import (
	"errors"
	"fmt"

	base "github.com/MarselKurniawan/erp-system/internal/shared"
)

var (
	// ErrUnbalanced indicates debit != credit beyond tolerance.
	ErrUnbalanced = fmt.Errorf("%w: accounting: journal lines must balance", base.ErrValidation)
	// ErrNoLines indicates an entry without lines.
	ErrNoLines = fmt.Errorf("%w: accounting: journal requires at least one line", base.ErrValidation)
	// ErrInvalidLine indicates a line with missing or negative data.
	ErrInvalidLine = fmt.Errorf("%w: accounting: invalid journal line", base.ErrValidation)
	// ErrInvalidEntry indicates missing header data.
	ErrInvalidEntry = fmt.Errorf("%w: accounting: invalid journal entry", base.ErrValidation)
	// ErrInvalidStatus indicates action can't proceed.
	ErrInvalidStatus = fmt.Errorf("%w: accounting: invalid status transition", base.ErrValidation)
	// ErrJournalNotFound indicates missing entry.
	ErrJournalNotFound = fmt.Errorf("%w: accounting: journal entry", base.ErrNotFound)
	// ErrAccountNotFound indicates a line references an unknown account.
	ErrAccountNotFound = fmt.Errorf("%w: accounting: account", base.ErrNotFound)
	// ErrMappingNotFound indicates account mapping missing.
	ErrMappingNotFound = fmt.Errorf("%w: accounting: account mapping", base.ErrNotFound)
	// ErrReferenceConflict indicates the reference is already linked to an entry.
	ErrReferenceConflict = fmt.Errorf("%w: accounting: reference already posted", base.ErrConflict)
	// ErrPostingFailed hides storage failures from callers; nothing was committed.
	ErrPostingFailed = errors.New("accounting: journal posting failed")
)
