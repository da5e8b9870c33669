package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	cases := map[string]string{
		"":             "DESC",
		"asc":          "ASC",
		"  Asc ":       "ASC",
		"desc":         "DESC",
		"sideways":     "DESC",
		"ASC; DELETE":  "DESC",
		"asc nulls up": "DESC",
	}
	for input, want := range cases {
		assert.Equal(t, want, ValidateSortOrder(input), "input %q", input)
	}
}

func TestValidateSortField(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		fallback string
		expected string
	}{
		{"blank falls back", "  ", "entry_date", "entry_date"},
		{"whitelisted", "entry_number", "entry_date", "entry_number"},
		{"trimmed", " status ", "entry_date", "status"},
		{"case matters", "STATUS", "entry_date", "entry_date"},
		{"unknown column", "memo", "entry_date", "entry_date"},
		{"no fallback", "memo", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortField(tt.field, JournalEntrySortFields, tt.fallback))
		})
	}
}

func TestSortFields_IncludeCommonColumns(t *testing.T) {
	for name, fields := range map[string]map[string]bool{
		"accounts":       AccountSortFields,
		"journalEntries": JournalEntrySortFields,
		"categories":     CategorySortFields,
		"products":       ProductSortFields,
		"attributes":     AttributeSortFields,
		"partners":       PartnerSortFields,
		"movements":      MovementSortFields,
		"sales":          SaleSortFields,
	} {
		for column := range CommonSortFields {
			assert.True(t, fields[column], "%s lacks %s", name, column)
		}
	}
	assert.True(t, SaleSortFields["sale_date"])
	assert.False(t, SaleSortFields["code"])
}

func TestValidateSortField_RejectsExpressions(t *testing.T) {
	payloads := []string{
		"code; DROP TABLE accounts;--",
		"code' OR '1'='1",
		"code UNION SELECT * FROM accounts",
		"balance, (SELECT 1)",
		"CASE WHEN 1=1 THEN code ELSE name END",
		"code\n; DELETE FROM accounts",
	}
	for _, payload := range payloads {
		assert.Equal(t, "code", ValidateSortField(payload, AccountSortFields, "code"), payload)
		assert.Equal(t, "DESC", ValidateSortOrder(payload), payload)
	}
}
