package models

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// Category classifications.
const (
	ClassificationSpend  = "spend"
	ClassificationIncome = "income"
)

// Category is a budget bucket owned by one user. Categories are created
// explicitly through the API or implicitly by the statement importer.
type Category struct {
	ID             int64           `json:"id"`
	UserID         int64           `json:"-"`
	Name           string          `json:"name"`
	Classification string          `json:"classification"`
	MonthlyBudget  decimal.Decimal `json:"monthly_budget"`
}

// ClassificationForAmount returns the classification implied by a
// transaction amount: positive amounts are income, everything else spend.
func ClassificationForAmount(amount decimal.Decimal) string {
	if amount.IsPositive() {
		return ClassificationIncome
	}
	return ClassificationSpend
}

func (c *Category) Create(db *sql.DB) error {
	res, err := db.Exec(`
		INSERT INTO categories (user_id, name, classification, monthly_budget)
		VALUES (?, ?, ?, ?)`,
		c.UserID, c.Name, c.Classification, c.MonthlyBudget)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

func (c *Category) Update(db *sql.DB) error {
	res, err := db.Exec(`
		UPDATE categories SET name = ?, classification = ?, monthly_budget = ?
		WHERE id = ? AND user_id = ?`,
		c.Name, c.Classification, c.MonthlyBudget, c.ID, c.UserID)
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

func GetCategoryByID(db *sql.DB, userID, id int64) (*Category, error) {
	row := db.QueryRow(`
		SELECT id, user_id, name, classification, monthly_budget
		FROM categories
		WHERE id = ? AND user_id = ?`, id, userID)
	var c Category
	if err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Classification, &c.MonthlyBudget); err != nil {
		return nil, err
	}
	return &c, nil
}

func ListCategoriesByUser(db *sql.DB, userID int64) ([]Category, error) {
	rows, err := db.Query(`
		SELECT id, user_id, name, classification, monthly_budget
		FROM categories
		WHERE user_id = ?
		ORDER BY name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Classification, &c.MonthlyBudget); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func DeleteCategory(db *sql.DB, userID, id int64) error {
	res, err := db.Exec(`DELETE FROM categories WHERE id = ? AND user_id = ?`, id, userID)
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
