package finance

import (
	"errors"
	"testing"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func debitLine(amount string) LineInput {
	return LineInput{AccountID: uuid.New(), Debit: d(amount), Credit: decimal.Zero}
}

func creditLine(amount string) LineInput {
	return LineInput{AccountID: uuid.New(), Debit: decimal.Zero, Credit: d(amount)}
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr), "expected domain error, got %v", err)
	assert.Equal(t, code, domainErr.Code)
}

func TestValidateLines(t *testing.T) {
	t.Run("accepts balanced lines", func(t *testing.T) {
		err := ValidateLines([]LineInput{debitLine("100.00"), creditLine("60.00"), creditLine("40.00")})
		assert.NoError(t, err)
	})

	t.Run("accepts difference within tolerance", func(t *testing.T) {
		err := ValidateLines([]LineInput{debitLine("100.00"), creditLine("99.99")})
		assert.NoError(t, err)
	})

	t.Run("accepts fractional cents that round to balance", func(t *testing.T) {
		err := ValidateLines([]LineInput{debitLine("33.333"), debitLine("33.333"), debitLine("33.334"), creditLine("100")})
		assert.NoError(t, err)
	})

	t.Run("rejects difference above tolerance", func(t *testing.T) {
		err := ValidateLines([]LineInput{debitLine("100.00"), creditLine("99.98")})
		requireCode(t, err, ErrCodeJournalUnbalanced)
		assert.Contains(t, err.Error(), "100.00")
		assert.Contains(t, err.Error(), "99.98")
	})

	t.Run("rejects empty and single line sets", func(t *testing.T) {
		requireCode(t, ValidateLines(nil), ErrCodeJournalNoLines)
		requireCode(t, ValidateLines([]LineInput{debitLine("0.01")}), ErrCodeJournalNoLines)
	})

	t.Run("rejects line without account", func(t *testing.T) {
		missing := debitLine("10")
		missing.AccountID = uuid.Nil
		err := ValidateLines([]LineInput{creditLine("10"), missing})
		requireCode(t, err, ErrCodeJournalAccountRequired)
		assert.Contains(t, err.Error(), "Line 2")
	})

	t.Run("rejects line with both sides set", func(t *testing.T) {
		both := LineInput{AccountID: uuid.New(), Debit: d("5"), Credit: d("5")}
		err := ValidateLines([]LineInput{both, debitLine("1"), creditLine("1")})
		requireCode(t, err, ErrCodeJournalLineAmount)
	})

	t.Run("rejects line with neither side set", func(t *testing.T) {
		empty := LineInput{AccountID: uuid.New(), Debit: decimal.Zero, Credit: decimal.Zero}
		err := ValidateLines([]LineInput{debitLine("1"), creditLine("1"), empty})
		requireCode(t, err, ErrCodeJournalLineAmount)
	})

	t.Run("rejects negative amounts", func(t *testing.T) {
		err := ValidateLines([]LineInput{debitLine("-10"), creditLine("-10")})
		requireCode(t, err, ErrCodeJournalLineAmount)
	})
}

func TestIsBalanced(t *testing.T) {
	assert.True(t, IsBalanced(d("10.00"), d("10.01")))
	assert.True(t, IsBalanced(d("10.01"), d("10.00")))
	assert.False(t, IsBalanced(d("10.00"), d("10.011")))
}

func TestTotals(t *testing.T) {
	debit, credit := Totals([]LineInput{debitLine("1.10"), debitLine("2.20"), creditLine("3.30")})
	assert.Equal(t, "3.3", debit.String())
	assert.Equal(t, "3.3", credit.String())
}
