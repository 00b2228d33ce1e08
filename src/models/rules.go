package models

import (
	"database/sql"
	"time"
)

// ReclassificationRule moves transactions from one category to another
// during cleanup runs. At most one rule per source category per user.
type ReclassificationRule struct {
	ID               int64     `json:"id"`
	UserID           int64     `json:"-"`
	FromCategoryID   int64     `json:"from_category"`
	ToCategoryID     int64     `json:"to_category"`
	FromCategoryName string    `json:"from_category_name,omitempty"`
	ToCategoryName   string    `json:"to_category_name,omitempty"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
}

// CategoryDeletionRule marks a category whose transactions get purged
// during cleanup runs.
type CategoryDeletionRule struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"-"`
	CategoryID   int64     `json:"category"`
	CategoryName string    `json:"category_name,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

func (r *ReclassificationRule) Create(db *sql.DB) error {
	r.CreatedAt = time.Now()
	res, err := db.Exec(`
		INSERT INTO reclassification_rules (user_id, from_category_id, to_category_id, is_active, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		r.UserID, r.FromCategoryID, r.ToCategoryID, r.IsActive, r.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	r.ID = id
	return nil
}

func (r *ReclassificationRule) Update(db *sql.DB) error {
	res, err := db.Exec(`
		UPDATE reclassification_rules SET from_category_id = ?, to_category_id = ?, is_active = ?
		WHERE id = ? AND user_id = ?`,
		r.FromCategoryID, r.ToCategoryID, r.IsActive, r.ID, r.UserID)
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

const reclassificationRuleColumns = `r.id, r.user_id, r.from_category_id, r.to_category_id,
	cf.name, ct.name, r.is_active, r.created_at`

const reclassificationRuleJoins = `
	FROM reclassification_rules r
	JOIN categories cf ON cf.id = r.from_category_id
	JOIN categories ct ON ct.id = r.to_category_id`

func scanReclassificationRule(row interface{ Scan(...interface{}) error }) (*ReclassificationRule, error) {
	var r ReclassificationRule
	err := row.Scan(&r.ID, &r.UserID, &r.FromCategoryID, &r.ToCategoryID,
		&r.FromCategoryName, &r.ToCategoryName, &r.IsActive, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func GetReclassificationRuleByID(db *sql.DB, userID, id int64) (*ReclassificationRule, error) {
	row := db.QueryRow(`
		SELECT `+reclassificationRuleColumns+reclassificationRuleJoins+`
		WHERE r.id = ? AND r.user_id = ?`, id, userID)
	return scanReclassificationRule(row)
}

func ListReclassificationRulesByUser(db *sql.DB, userID int64) ([]ReclassificationRule, error) {
	rows, err := db.Query(`
		SELECT `+reclassificationRuleColumns+reclassificationRuleJoins+`
		WHERE r.user_id = ?
		ORDER BY r.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rules := []ReclassificationRule{}
	for rows.Next() {
		r, err := scanReclassificationRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, *r)
	}
	return rules, rows.Err()
}

func DeleteReclassificationRule(db *sql.DB, userID, id int64) error {
	res, err := db.Exec(`DELETE FROM reclassification_rules WHERE id = ? AND user_id = ?`, id, userID)
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

func (r *CategoryDeletionRule) Create(db *sql.DB) error {
	r.CreatedAt = time.Now()
	res, err := db.Exec(`
		INSERT INTO category_deletion_rules (user_id, category_id, is_active, created_at)
		VALUES (?, ?, ?, ?)`,
		r.UserID, r.CategoryID, r.IsActive, r.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	r.ID = id
	return nil
}

func (r *CategoryDeletionRule) Update(db *sql.DB) error {
	res, err := db.Exec(`
		UPDATE category_deletion_rules SET category_id = ?, is_active = ?
		WHERE id = ? AND user_id = ?`,
		r.CategoryID, r.IsActive, r.ID, r.UserID)
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

const categoryDeletionRuleColumns = `r.id, r.user_id, r.category_id, c.name, r.is_active, r.created_at`

const categoryDeletionRuleJoins = `
	FROM category_deletion_rules r
	JOIN categories c ON c.id = r.category_id`

func scanCategoryDeletionRule(row interface{ Scan(...interface{}) error }) (*CategoryDeletionRule, error) {
	var r CategoryDeletionRule
	err := row.Scan(&r.ID, &r.UserID, &r.CategoryID, &r.CategoryName, &r.IsActive, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func GetCategoryDeletionRuleByID(db *sql.DB, userID, id int64) (*CategoryDeletionRule, error) {
	row := db.QueryRow(`
		SELECT `+categoryDeletionRuleColumns+categoryDeletionRuleJoins+`
		WHERE r.id = ? AND r.user_id = ?`, id, userID)
	return scanCategoryDeletionRule(row)
}

func ListCategoryDeletionRulesByUser(db *sql.DB, userID int64) ([]CategoryDeletionRule, error) {
	rows, err := db.Query(`
		SELECT `+categoryDeletionRuleColumns+categoryDeletionRuleJoins+`
		WHERE r.user_id = ?
		ORDER BY r.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rules := []CategoryDeletionRule{}
	for rows.Next() {
		r, err := scanCategoryDeletionRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, *r)
	}
	return rules, rows.Err()
}

func DeleteCategoryDeletionRule(db *sql.DB, userID, id int64) error {
	res, err := db.Exec(`DELETE FROM category_deletion_rules WHERE id = ? AND user_id = ?`, id, userID)
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
