package finance

import (
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BalanceTolerance is the largest debit/credit difference still treated as balanced
var BalanceTolerance = decimal.New(1, -2)

// Journal validation error codes
const (
	ErrCodeJournalNoLines         = "JOURNAL_NO_LINES"
	ErrCodeJournalAccountRequired = "JOURNAL_LINE_ACCOUNT_REQUIRED"
	ErrCodeJournalLineAmount      = "JOURNAL_LINE_AMOUNT"
	ErrCodeJournalUnbalanced      = "JOURNAL_UNBALANCED"
)

// LineInput is one debit or credit against an account
type LineInput struct {
	AccountID uuid.UUID
	Debit     decimal.Decimal
	Credit    decimal.Decimal
	Memo      string
}

// Totals sums the debit and credit sides of lines
func Totals(lines []LineInput) (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, l := range lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit, credit
}

// IsBalanced reports whether debit and credit are equal within BalanceTolerance
func IsBalanced(debit, credit decimal.Decimal) bool {
	return debit.Sub(credit).Abs().LessThanOrEqual(BalanceTolerance)
}

// ValidateLines checks a set of journal lines:
//   - there are at least two lines
//   - every line references an account
//   - every line carries exactly one non-zero, non-negative side
//   - total debits equal total credits within BalanceTolerance
func ValidateLines(lines []LineInput) error {
	if len(lines) < 2 {
		return shared.NewDomainError(ErrCodeJournalNoLines, "Journal entry requires at least two lines")
	}

	for i, l := range lines {
		n := i + 1
		if l.AccountID == uuid.Nil {
			return shared.NewDomainErrorf(ErrCodeJournalAccountRequired, "Line %d: account is required", n)
		}
		if l.Debit.IsNegative() || l.Credit.IsNegative() {
			return shared.NewDomainErrorf(ErrCodeJournalLineAmount, "Line %d: amounts cannot be negative", n)
		}
		if l.Debit.IsZero() == l.Credit.IsZero() {
			return shared.NewDomainErrorf(ErrCodeJournalLineAmount, "Line %d: exactly one of debit or credit must be non-zero", n)
		}
	}

	debit, credit := Totals(lines)
	if !IsBalanced(debit, credit) {
		return shared.NewDomainErrorf(ErrCodeJournalUnbalanced,
			"Debits (%s) do not equal credits (%s)", debit.StringFixed(2), credit.StringFixed(2))
	}
	return nil
}
