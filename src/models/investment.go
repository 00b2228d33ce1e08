package models

import (
	"database/sql"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Investment types.
const (
	InvestmentTypeStock       = "stock"
	InvestmentTypeBond        = "bond"
	InvestmentTypeETF         = "etf"
	InvestmentTypeCrypto      = "crypto"
	InvestmentTypeMutualFund  = "mutual_fund"
	InvestmentTypeFixedIncome = "fixed_income"
)

// Compounding frequencies for fixed income investments.
const (
	CompoundingAnnual     = "annual"
	CompoundingSemiAnnual = "semi_annual"
	CompoundingQuarterly  = "quarterly"
	CompoundingMonthly    = "monthly"
)

// Investment is a holding of stocks, bonds, crypto or a fixed income
// position. The fixed income specific fields are null for other types.
type Investment struct {
	ID             int64               `json:"id"`
	UserID         int64               `json:"-"`
	Symbol         string              `json:"symbol"`
	Name           string              `json:"name"`
	InvestmentType string              `json:"investment_type"`
	Quantity       decimal.Decimal     `json:"quantity"`
	PurchasePrice  decimal.Decimal     `json:"purchase_price"`
	CurrentPrice   decimal.NullDecimal `json:"current_price"`
	PurchaseDate   string              `json:"purchase_date"` // YYYY-MM-DD
	// Fixed income specific fields
	PrincipalAmount      decimal.NullDecimal `json:"principal_amount"`
	InterestRate         decimal.NullDecimal `json:"interest_rate"` // annual rate in percent, e.g. 8.00
	CompoundingFrequency string              `json:"compounding_frequency,omitempty"`
	TermYears            decimal.NullDecimal `json:"term_years"`
	Notes                string              `json:"notes,omitempty"`
}

// TotalInvested is the total amount paid in.
func (i Investment) TotalInvested() decimal.Decimal {
	if i.InvestmentType == InvestmentTypeFixedIncome {
		if i.PrincipalAmount.Valid {
			return i.PrincipalAmount.Decimal
		}
		return decimal.Zero
	}
	return i.Quantity.Mul(i.PurchasePrice)
}

// CurrentValue is the current total value. Fixed income positions accrue
// compound interest; other types fall back to the purchase cost when no
// current price is known.
func (i Investment) CurrentValue() decimal.Decimal {
	if i.InvestmentType == InvestmentTypeFixedIncome {
		return i.compoundValue()
	}
	if i.CurrentPrice.Valid {
		return i.Quantity.Mul(i.CurrentPrice.Decimal)
	}
	return i.TotalInvested()
}

// compoundValue applies A = P(1 + r/n)^(nt). The exponentiation runs in
// float64 and the result is rounded back to cents.
func (i Investment) compoundValue() decimal.Decimal {
	if !i.PrincipalAmount.Valid || !i.InterestRate.Valid || !i.TermYears.Valid {
		if i.PrincipalAmount.Valid {
			return i.PrincipalAmount.Decimal
		}
		return decimal.Zero
	}

	principal, _ := i.PrincipalAmount.Decimal.Float64()
	rate, _ := i.InterestRate.Decimal.Float64()
	rate /= 100 // percentage to decimal
	years, _ := i.TermYears.Decimal.Float64()

	var n float64
	switch i.CompoundingFrequency {
	case CompoundingSemiAnnual:
		n = 2
	case CompoundingQuarterly:
		n = 4
	case CompoundingMonthly:
		n = 12
	default:
		n = 1
	}

	value := principal * math.Pow(1+rate/n, n*years)
	return decimal.NewFromFloat(value).Round(2)
}

// GainLoss is CurrentValue - TotalInvested.
func (i Investment) GainLoss() decimal.Decimal {
	return i.CurrentValue().Sub(i.TotalInvested())
}

// GainLossPercentage is the gain or loss relative to the invested amount.
func (i Investment) GainLossPercentage() decimal.Decimal {
	invested := i.TotalInvested()
	if invested.IsZero() {
		return decimal.Zero
	}
	return i.GainLoss().Div(invested).Mul(decimal.NewFromInt(100)).Round(2)
}

// DueDate is the maturity date of a fixed income position, or "" when the
// position has no term.
func (i Investment) DueDate() string {
	if i.InvestmentType != InvestmentTypeFixedIncome || i.PurchaseDate == "" || !i.TermYears.Valid {
		return ""
	}
	purchased, err := time.Parse("2006-01-02", i.PurchaseDate)
	if err != nil {
		return ""
	}
	years := int(i.TermYears.Decimal.IntPart())
	return purchased.AddDate(years, 0, 0).Format("2006-01-02")
}

// InvestmentView is the API representation of an Investment with the
// derived fields included.
type InvestmentView struct {
	Investment
	TotalInvested      decimal.Decimal `json:"total_invested"`
	CurrentValue       decimal.Decimal `json:"current_value"`
	GainLoss           decimal.Decimal `json:"gain_loss"`
	GainLossPercentage decimal.Decimal `json:"gain_loss_percentage"`
	DueDate            string          `json:"due_date,omitempty"`
}

// View builds the API representation.
func (i Investment) View() InvestmentView {
	return InvestmentView{
		Investment:         i,
		TotalInvested:      i.TotalInvested(),
		CurrentValue:       i.CurrentValue(),
		GainLoss:           i.GainLoss(),
		GainLossPercentage: i.GainLossPercentage(),
		DueDate:            i.DueDate(),
	}
}

// nullString maps "" to NULL for nullable text columns.
func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func (i *Investment) Create(db *sql.DB) error {
	res, err := db.Exec(`
		INSERT INTO investments (user_id, symbol, name, investment_type, quantity, purchase_price,
			current_price, purchase_date, principal_amount, interest_rate, compounding_frequency, term_years, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		i.UserID, i.Symbol, i.Name, i.InvestmentType, i.Quantity, i.PurchasePrice,
		i.CurrentPrice, i.PurchaseDate, i.PrincipalAmount, i.InterestRate,
		nullString(i.CompoundingFrequency), i.TermYears, nullString(i.Notes))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	i.ID = id
	return nil
}

func (i *Investment) Update(db *sql.DB) error {
	res, err := db.Exec(`
		UPDATE investments SET symbol = ?, name = ?, investment_type = ?, quantity = ?, purchase_price = ?,
			current_price = ?, purchase_date = ?, principal_amount = ?, interest_rate = ?,
			compounding_frequency = ?, term_years = ?, notes = ?
		WHERE id = ? AND user_id = ?`,
		i.Symbol, i.Name, i.InvestmentType, i.Quantity, i.PurchasePrice,
		i.CurrentPrice, i.PurchaseDate, i.PrincipalAmount, i.InterestRate,
		nullString(i.CompoundingFrequency), i.TermYears, nullString(i.Notes),
		i.ID, i.UserID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func scanInvestment(row interface{ Scan(...interface{}) error }) (*Investment, error) {
	var i Investment
	err := row.Scan(&i.ID, &i.UserID, &i.Symbol, &i.Name, &i.InvestmentType, &i.Quantity,
		&i.PurchasePrice, &i.CurrentPrice, &i.PurchaseDate, &i.PrincipalAmount,
		&i.InterestRate, &i.CompoundingFrequency, &i.TermYears, &i.Notes)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

const investmentColumns = `id, user_id, symbol, name, investment_type, quantity, purchase_price,
	current_price, purchase_date, principal_amount, interest_rate,
	COALESCE(compounding_frequency, ''), term_years, COALESCE(notes, '')`

func GetInvestmentByID(db *sql.DB, userID, id int64) (*Investment, error) {
	row := db.QueryRow(`
		SELECT `+investmentColumns+`
		FROM investments
		WHERE id = ? AND user_id = ?`, id, userID)
	return scanInvestment(row)
}

func ListInvestmentsByUser(db *sql.DB, userID int64) ([]Investment, error) {
	rows, err := db.Query(`
		SELECT `+investmentColumns+`
		FROM investments
		WHERE user_id = ?
		ORDER BY symbol`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	investments := []Investment{}
	for rows.Next() {
		inv, err := scanInvestment(rows)
		if err != nil {
			return nil, err
		}
		investments = append(investments, *inv)
	}
	return investments, rows.Err()
}

func DeleteInvestment(db *sql.DB, userID, id int64) error {
	res, err := db.Exec(`DELETE FROM investments WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
