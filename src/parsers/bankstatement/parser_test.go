package bankstatement

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectLayout(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		want   Layout
	}{
		{"account has Details and Type", []string{"Details", "Posting Date", "Description", "Amount", "Type"}, LayoutAccount},
		{"credit card has neither", []string{"Transaction Date", "Post Date", "Description", "Category", "Amount"}, LayoutCreditCard},
		{"Details alone is not enough", []string{"Details", "Date", "Description", "Amount"}, LayoutCreditCard},
		{"Type alone is not enough", []string{"Type", "Date", "Description", "Amount"}, LayoutCreditCard},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, detectLayout(tt.header))
		})
	}
}

func TestParseCreditCardStatement(t *testing.T) {
	csv := "Transaction Date,Description,Category,Amount\n" +
		"01/15/2024,STARBUCKS COFFEE,Food & Drink,-5.75\n" +
		"01/16/2024,PAYROLL DEPOSIT,,2500.00\n"

	stmt, err := Parse(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, LayoutCreditCard, stmt.Layout)
	require.Len(t, stmt.Rows, 2)
	assert.Empty(t, stmt.RowErrors)

	first := stmt.Rows[0]
	assert.Equal(t, 2, first.Num)
	assert.Equal(t, "STARBUCKS COFFEE", first.Description)
	assert.Equal(t, "Food & Drink", first.CategoryHint)
	assert.Equal(t, "2024-01-15", first.Date.Format("2006-01-02"))
	assert.True(t, first.Amount.Equal(decimal.RequireFromString("-5.75")))

	second := stmt.Rows[1]
	assert.Equal(t, 3, second.Num)
	assert.Empty(t, second.CategoryHint)
	assert.True(t, second.Amount.Equal(decimal.RequireFromString("2500")))
}

func TestParseAccountStatement(t *testing.T) {
	csv := "Details,Posting Date,Description,Amount,Type,Balance\n" +
		"DEBIT,03/01/2024,ACH PAYMENT T-MOBILE,-80.00,ACH_DEBIT,1200.00\n"

	stmt, err := Parse(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, LayoutAccount, stmt.Layout)
	require.Len(t, stmt.Rows, 1)

	row := stmt.Rows[0]
	assert.Equal(t, "ACH PAYMENT T-MOBILE", row.Description)
	// Account layout hints come from the Type column.
	assert.Equal(t, "ACH_DEBIT", row.CategoryHint)
	assert.Equal(t, "2024-03-01", row.Date.Format("2006-01-02"))
}

func TestParseDateFormats(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"01/15/2024", "2024-01-15"}, // MM/DD/YYYY tried first
		{"2024-01-15", "2024-01-15"},
		{"25/12/2024", "2024-12-25"}, // only valid as DD/MM/YYYY
		{"2024/01/15", "2024-01-15"},
	}
	for _, tt := range tests {
		date, ok := parseDate(tt.input)
		require.True(t, ok, "parseDate(%q)", tt.input)
		assert.Equal(t, tt.want, date.Format("2006-01-02"), "parseDate(%q)", tt.input)
	}

	_, ok := parseDate("Jan 15 2024")
	assert.False(t, ok)
}

func TestParseAmountCleaning(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"$1,234.56", "1234.56", true},
		{"-45.00", "-45", true},
		{" $ 99.99 ", "99.99", true},
		{"-$12.50", "-12.50", true},
		{"abc", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		amount, ok := parseAmount(tt.input)
		assert.Equal(t, tt.ok, ok, "parseAmount(%q)", tt.input)
		if tt.ok {
			assert.True(t, amount.Equal(decimal.RequireFromString(tt.want)), "parseAmount(%q) = %s", tt.input, amount)
		}
	}
}

func TestParseCollectsRowErrors(t *testing.T) {
	csv := "Transaction Date,Description,Amount\n" +
		"01/15/2024,GOOD ROW,-5.00\n" +
		",MISSING DATE,-1.00\n" +
		"not-a-date,BAD DATE,-2.00\n" +
		"01/18/2024,BAD AMOUNT,abc\n"

	stmt, err := Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, stmt.Rows, 1)
	require.Len(t, stmt.RowErrors, 3)

	assert.Equal(t, "Row 3: Missing required fields (date, description, amount)", stmt.RowErrors[0].String())
	assert.Equal(t, "Row 4: Invalid date format. Supported formats: MM/DD/YYYY, YYYY-MM-DD, DD/MM/YYYY", stmt.RowErrors[1].String())
	assert.Equal(t, "Row 5: Invalid amount format", stmt.RowErrors[2].String())
}

func TestParseHeaderOnlyAndEmptyFiles(t *testing.T) {
	stmt, err := Parse(strings.NewReader("Transaction Date,Description,Amount\n"))
	require.NoError(t, err)
	assert.Empty(t, stmt.Rows)
	assert.Empty(t, stmt.RowErrors)

	stmt, err = Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, stmt.Rows)
}

func TestParseStripsBOMFromHeader(t *testing.T) {
	csv := "\uFEFFTransaction Date,Description,Amount\n01/15/2024,COFFEE,-3.00\n"
	stmt, err := Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, stmt.Rows, 1)
	assert.Equal(t, "COFFEE", stmt.Rows[0].Description)
}

func TestRowKeepsRawColumnValues(t *testing.T) {
	csv := "Transaction Date,Description,Amount\n" +
		"01/15/2024, PADDED DESC ,-45.00\n"

	stmt, err := Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, stmt.Rows, 1)

	row := stmt.Rows[0]
	assert.Equal(t, "PADDED DESC", row.Description)
	assert.Equal(t, " PADDED DESC ", row.RawDescription)
	assert.Equal(t, "01/15/2024", row.RawDate)
	assert.Equal(t, "-45.00", row.RawAmount)
}

func TestResolveColumnAliasOrder(t *testing.T) {
	fields := map[string]string{
		"Posting Date": "01/02/2024",
		"Post Date":    "01/03/2024",
		"date":         "01/04/2024",
	}
	assert.Equal(t, "01/02/2024", resolveColumn(fields, accountDateAliases))

	// A blank value falls through to the next alias.
	fields["Posting Date"] = "   "
	assert.Equal(t, "01/03/2024", resolveColumn(fields, accountDateAliases))
}
