package bankstatement

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Layout identifies which CSV shape a statement file uses. It determines
// the column aliases tried per field and the transaction type stamped on
// imported rows.
type Layout string

const (
	LayoutAccount    Layout = "account"
	LayoutCreditCard Layout = "credit_card"
)

// Column aliases per logical field, tried in order. The first alias whose
// trimmed value is non-empty wins.
var (
	accountDateAliases    = []string{"Posting Date", "Post Date", "date", "Date"}
	creditCardDateAliases = []string{"Transaction Date", "Post Date", "date", "Date"}
	descriptionAliases    = []string{"Description", "description", "desc"}
	amountAliases         = []string{"Amount", "amount", "amt"}
	accountHintAliases    = []string{"Type", "type"}
	creditCardHintAliases = []string{"Category", "category", "cat"}
)

var dateFormats = []string{"01/02/2006", "2006-01-02", "02/01/2006", "2006/01/02"}

// Row is one successfully normalized data row of a statement file.
// The Raw* fields hold the column values exactly as read, before any
// trimming, and are what duplicate fingerprints are computed from.
type Row struct {
	Num          int // 1-indexed; the header is row 1, so the first data row is 2
	DateText     string
	Description  string
	AmountText   string
	CategoryHint string
	Date         time.Time
	Amount       decimal.Decimal

	RawDate        string
	RawDescription string
	RawAmount      string
}

// RowError is a per-row parse failure. The batch continues past it.
type RowError struct {
	Num    int
	Reason string
}

func (e RowError) String() string {
	return fmt.Sprintf("Row %d: %s", e.Num, e.Reason)
}

// Statement is the parsed form of one uploaded CSV file.
type Statement struct {
	Layout    Layout
	Rows      []Row
	RowErrors []RowError
}

// Parse reads a whole bank statement CSV. Per-row failures are collected
// in Statement.RowErrors; only a file that cannot be read as CSV at all
// returns an error.
func Parse(r io.Reader) (*Statement, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Allow variable number of fields per record

	header, err := reader.Read()
	if err == io.EOF {
		// No header row at all: an empty statement, not a failure.
		return &Statement{Layout: LayoutCreditCard}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("bankstatement parser: failed to read CSV header: %w", err)
	}

	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\uFEFF"))
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("bankstatement parser: failed to read CSV records: %w", err)
	}

	stmt := &Statement{Layout: detectLayout(header)}

	dateAliases := creditCardDateAliases
	hintAliases := creditCardHintAliases
	if stmt.Layout == LayoutAccount {
		dateAliases = accountDateAliases
		hintAliases = accountHintAliases
	}

	for i, record := range records {
		rowNum := i + 2 // header counts as row 1
		fields := zipRecord(header, record)

		rawDate := resolveColumn(fields, dateAliases)
		rawDescription := resolveColumn(fields, descriptionAliases)
		rawAmount := resolveColumn(fields, amountAliases)
		categoryHint := strings.TrimSpace(resolveColumn(fields, hintAliases))

		if rawDate == "" || rawDescription == "" || rawAmount == "" {
			stmt.RowErrors = append(stmt.RowErrors, RowError{
				Num:    rowNum,
				Reason: "Missing required fields (date, description, amount)",
			})
			continue
		}

		date, ok := parseDate(strings.TrimSpace(rawDate))
		if !ok {
			stmt.RowErrors = append(stmt.RowErrors, RowError{
				Num:    rowNum,
				Reason: "Invalid date format. Supported formats: MM/DD/YYYY, YYYY-MM-DD, DD/MM/YYYY",
			})
			continue
		}

		amount, ok := parseAmount(rawAmount)
		if !ok {
			stmt.RowErrors = append(stmt.RowErrors, RowError{
				Num:    rowNum,
				Reason: "Invalid amount format",
			})
			continue
		}

		stmt.Rows = append(stmt.Rows, Row{
			Num:            rowNum,
			DateText:       strings.TrimSpace(rawDate),
			Description:    strings.TrimSpace(rawDescription),
			AmountText:     strings.TrimSpace(rawAmount),
			CategoryHint:   categoryHint,
			Date:           date,
			Amount:         amount,
			RawDate:        rawDate,
			RawDescription: rawDescription,
			RawAmount:      rawAmount,
		})
	}

	return stmt, nil
}

// detectLayout treats a file whose header carries both "Details" and
// "Type" as an account export; everything else is a credit card export.
func detectLayout(header []string) Layout {
	hasDetails, hasType := false, false
	for _, h := range header {
		switch h {
		case "Details":
			hasDetails = true
		case "Type":
			hasType = true
		}
	}
	if hasDetails && hasType {
		return LayoutAccount
	}
	return LayoutCreditCard
}

// zipRecord maps header names to the record's values. Short records leave
// trailing columns absent, extra values are ignored.
func zipRecord(header, record []string) map[string]string {
	fields := make(map[string]string, len(header))
	for i, name := range header {
		if i < len(record) {
			fields[name] = record[i]
		}
	}
	return fields
}

// resolveColumn returns the raw value of the first alias whose trimmed
// value is non-empty, or "" when no alias resolves.
func resolveColumn(fields map[string]string, aliases []string) string {
	for _, name := range aliases {
		if value, ok := fields[name]; ok && strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func parseDate(s string) (time.Time, bool) {
	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseAmount strips the currency symbol, thousands separators and
// whitespace, then parses a signed decimal. The sign is preserved.
func parseAmount(s string) (decimal.Decimal, bool) {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(strings.TrimSpace(s))
	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return amount, true
}
