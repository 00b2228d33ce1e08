package models

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// Retirement account types.
const (
	AccountTypeTraditional401k = "traditional_401k"
	AccountTypeRoth401k        = "roth_401k"
	AccountTypeTraditionalIRA  = "traditional_ira"
	AccountTypeRothIRA         = "roth_ira"
	AccountTypeSepIRA          = "sep_ira"
	AccountTypeSimpleIRA       = "simple_ira"
	AccountTypePension         = "pension"
	AccountTypeAnnuity         = "annuity"
	AccountTypeOther           = "other"
)

// Risk levels.
const (
	RiskConservative   = "conservative"
	RiskModerate       = "moderate"
	RiskAggressive     = "aggressive"
	RiskVeryAggressive = "very_aggressive"
)

// RetirementAccount is a 401(k), IRA, pension or similar account.
type RetirementAccount struct {
	ID                      int64           `json:"id"`
	UserID                  int64           `json:"-"`
	Name                    string          `json:"name"`
	AccountType             string          `json:"account_type"`
	Provider                string          `json:"provider"`
	AccountNumber           string          `json:"account_number,omitempty"` // last 4 digits only
	CurrentBalance          decimal.Decimal `json:"current_balance"`
	MonthlyContribution     decimal.Decimal `json:"monthly_contribution"`
	EmployerMatchPercentage decimal.Decimal `json:"employer_match_percentage"` // e.g. 0.50 for 50%
	EmployerMatchLimit      decimal.Decimal `json:"employer_match_limit"`      // max match per year
	RiskLevel               string          `json:"risk_level"`
	TargetRetirementAge     int             `json:"target_retirement_age"`
	Notes                   string          `json:"notes,omitempty"`
}

// AnnualContribution is twelve months of contributions.
func (a RetirementAccount) AnnualContribution() decimal.Decimal {
	return a.MonthlyContribution.Mul(decimal.NewFromInt(12))
}

// EmployerMatchAmount is the yearly employer match, capped at the limit.
func (a RetirementAccount) EmployerMatchAmount() decimal.Decimal {
	return decimal.Min(a.AnnualContribution().Mul(a.EmployerMatchPercentage), a.EmployerMatchLimit)
}

// TotalAnnualContribution is own contributions plus the employer match.
func (a RetirementAccount) TotalAnnualContribution() decimal.Decimal {
	return a.AnnualContribution().Add(a.EmployerMatchAmount())
}

// RetirementAccountView is the API representation of a RetirementAccount
// with the derived fields included.
type RetirementAccountView struct {
	RetirementAccount
	AnnualContribution      decimal.Decimal `json:"annual_contribution"`
	EmployerMatchAmount     decimal.Decimal `json:"employer_match_amount"`
	TotalAnnualContribution decimal.Decimal `json:"total_annual_contribution"`
}

// View builds the API representation.
func (a RetirementAccount) View() RetirementAccountView {
	return RetirementAccountView{
		RetirementAccount:       a,
		AnnualContribution:      a.AnnualContribution(),
		EmployerMatchAmount:     a.EmployerMatchAmount(),
		TotalAnnualContribution: a.TotalAnnualContribution(),
	}
}

func (a *RetirementAccount) Create(db *sql.DB) error {
	res, err := db.Exec(`
		INSERT INTO retirement_accounts (user_id, name, account_type, provider, account_number,
			current_balance, monthly_contribution, employer_match_percentage, employer_match_limit,
			risk_level, target_retirement_age, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.UserID, a.Name, a.AccountType, a.Provider, nullString(a.AccountNumber),
		a.CurrentBalance, a.MonthlyContribution, a.EmployerMatchPercentage, a.EmployerMatchLimit,
		a.RiskLevel, a.TargetRetirementAge, nullString(a.Notes))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = id
	return nil
}

func (a *RetirementAccount) Update(db *sql.DB) error {
	res, err := db.Exec(`
		UPDATE retirement_accounts SET name = ?, account_type = ?, provider = ?, account_number = ?,
			current_balance = ?, monthly_contribution = ?, employer_match_percentage = ?,
			employer_match_limit = ?, risk_level = ?, target_retirement_age = ?, notes = ?
		WHERE id = ? AND user_id = ?`,
		a.Name, a.AccountType, a.Provider, nullString(a.AccountNumber),
		a.CurrentBalance, a.MonthlyContribution, a.EmployerMatchPercentage, a.EmployerMatchLimit,
		a.RiskLevel, a.TargetRetirementAge, nullString(a.Notes),
		a.ID, a.UserID)
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

func scanRetirementAccount(row interface{ Scan(...interface{}) error }) (*RetirementAccount, error) {
	var a RetirementAccount
	err := row.Scan(&a.ID, &a.UserID, &a.Name, &a.AccountType, &a.Provider, &a.AccountNumber,
		&a.CurrentBalance, &a.MonthlyContribution, &a.EmployerMatchPercentage, &a.EmployerMatchLimit,
		&a.RiskLevel, &a.TargetRetirementAge, &a.Notes)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

const retirementAccountColumns = `id, user_id, name, account_type, provider, COALESCE(account_number, ''),
	current_balance, monthly_contribution, employer_match_percentage, employer_match_limit,
	risk_level, target_retirement_age, COALESCE(notes, '')`

func GetRetirementAccountByID(db *sql.DB, userID, id int64) (*RetirementAccount, error) {
	row := db.QueryRow(`
		SELECT `+retirementAccountColumns+`
		FROM retirement_accounts
		WHERE id = ? AND user_id = ?`, id, userID)
	return scanRetirementAccount(row)
}

func ListRetirementAccountsByUser(db *sql.DB, userID int64) ([]RetirementAccount, error) {
	rows, err := db.Query(`
		SELECT `+retirementAccountColumns+`
		FROM retirement_accounts
		WHERE user_id = ?
		ORDER BY name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := []RetirementAccount{}
	for rows.Next() {
		acct, err := scanRetirementAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *acct)
	}
	return accounts, rows.Err()
}

func DeleteRetirementAccount(db *sql.DB, userID, id int64) error {
	res, err := db.Exec(`DELETE FROM retirement_accounts WHERE id = ? AND user_id = ?`, id, userID)
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
