package models

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// Heritage (real estate) types.
const (
	HeritageTypeLand       = "land"
	HeritageTypeHouse      = "house"
	HeritageTypeApartment  = "apartment"
	HeritageTypeCommercial = "commercial"
	HeritageTypeOffice     = "office"
	HeritageTypeWarehouse  = "warehouse"
	HeritageTypeOther      = "other"
)

// Heritage is a real estate holding.
type Heritage struct {
	ID                  int64               `json:"id"`
	UserID              int64               `json:"-"`
	Name                string              `json:"name"`
	HeritageType        string              `json:"heritage_type"`
	Address             string              `json:"address"`
	Area                decimal.NullDecimal `json:"area"`
	AreaUnit            string              `json:"area_unit"`
	PurchasePrice       decimal.Decimal     `json:"purchase_price"`
	CurrentValue        decimal.NullDecimal `json:"current_value"`
	PurchaseDate        string              `json:"purchase_date"` // YYYY-MM-DD
	MonthlyRentalIncome decimal.Decimal     `json:"monthly_rental_income"`
	Notes               string              `json:"notes,omitempty"`
}

// GainLoss is CurrentValue - PurchasePrice, or zero when no current value
// has been recorded.
func (h Heritage) GainLoss() decimal.Decimal {
	if !h.CurrentValue.Valid {
		return decimal.Zero
	}
	return h.CurrentValue.Decimal.Sub(h.PurchasePrice)
}

// GainLossPercentage is the gain or loss relative to the purchase price.
func (h Heritage) GainLossPercentage() decimal.Decimal {
	if h.PurchasePrice.IsZero() {
		return decimal.Zero
	}
	return h.GainLoss().Div(h.PurchasePrice).Mul(decimal.NewFromInt(100)).Round(2)
}

// AnnualRentalIncome is twelve months of rent.
func (h Heritage) AnnualRentalIncome() decimal.Decimal {
	return h.MonthlyRentalIncome.Mul(decimal.NewFromInt(12))
}

// RentalYieldPercentage is annual rent over current value.
func (h Heritage) RentalYieldPercentage() decimal.Decimal {
	if !h.CurrentValue.Valid || !h.CurrentValue.Decimal.IsPositive() {
		return decimal.Zero
	}
	return h.AnnualRentalIncome().Div(h.CurrentValue.Decimal).Mul(decimal.NewFromInt(100)).Round(2)
}

// HeritageView is the API representation of a Heritage with the derived
// fields included.
type HeritageView struct {
	Heritage
	GainLoss              decimal.Decimal `json:"gain_loss"`
	GainLossPercentage    decimal.Decimal `json:"gain_loss_percentage"`
	AnnualRentalIncome    decimal.Decimal `json:"annual_rental_income"`
	RentalYieldPercentage decimal.Decimal `json:"rental_yield_percentage"`
}

// View builds the API representation.
func (h Heritage) View() HeritageView {
	return HeritageView{
		Heritage:              h,
		GainLoss:              h.GainLoss(),
		GainLossPercentage:    h.GainLossPercentage(),
		AnnualRentalIncome:    h.AnnualRentalIncome(),
		RentalYieldPercentage: h.RentalYieldPercentage(),
	}
}

func (h *Heritage) Create(db *sql.DB) error {
	res, err := db.Exec(`
		INSERT INTO heritages (user_id, name, heritage_type, address, area, area_unit,
			purchase_price, current_value, purchase_date, monthly_rental_income, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		h.UserID, h.Name, h.HeritageType, h.Address, h.Area, h.AreaUnit,
		h.PurchasePrice, h.CurrentValue, h.PurchaseDate, h.MonthlyRentalIncome, nullString(h.Notes))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	h.ID = id
	return nil
}

func (h *Heritage) Update(db *sql.DB) error {
	res, err := db.Exec(`
		UPDATE heritages SET name = ?, heritage_type = ?, address = ?, area = ?, area_unit = ?,
			purchase_price = ?, current_value = ?, purchase_date = ?, monthly_rental_income = ?, notes = ?
		WHERE id = ? AND user_id = ?`,
		h.Name, h.HeritageType, h.Address, h.Area, h.AreaUnit,
		h.PurchasePrice, h.CurrentValue, h.PurchaseDate, h.MonthlyRentalIncome, nullString(h.Notes),
		h.ID, h.UserID)
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

func scanHeritage(row interface{ Scan(...interface{}) error }) (*Heritage, error) {
	var h Heritage
	err := row.Scan(&h.ID, &h.UserID, &h.Name, &h.HeritageType, &h.Address, &h.Area, &h.AreaUnit,
		&h.PurchasePrice, &h.CurrentValue, &h.PurchaseDate, &h.MonthlyRentalIncome, &h.Notes)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

const heritageColumns = `id, user_id, name, heritage_type, address, area, area_unit,
	purchase_price, current_value, purchase_date, monthly_rental_income, COALESCE(notes, '')`

func GetHeritageByID(db *sql.DB, userID, id int64) (*Heritage, error) {
	row := db.QueryRow(`
		SELECT `+heritageColumns+`
		FROM heritages
		WHERE id = ? AND user_id = ?`, id, userID)
	return scanHeritage(row)
}

func ListHeritagesByUser(db *sql.DB, userID int64) ([]Heritage, error) {
	rows, err := db.Query(`
		SELECT `+heritageColumns+`
		FROM heritages
		WHERE user_id = ?
		ORDER BY name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	heritages := []Heritage{}
	for rows.Next() {
		h, err := scanHeritage(rows)
		if err != nil {
			return nil, err
		}
		heritages = append(heritages, *h)
	}
	return heritages, rows.Err()
}

func DeleteHeritage(db *sql.DB, userID, id int64) error {
	res, err := db.Exec(`DELETE FROM heritages WHERE id = ? AND user_id = ?`, id, userID)
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
