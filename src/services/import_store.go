package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/username/budgetfolio/backend/src/models"
)

// sqlImportStore is the sqlite-backed ImportStore.
type sqlImportStore struct {
	db *sql.DB
}

// NewSQLImportStore wraps a database handle as an ImportStore.
func NewSQLImportStore(db *sql.DB) ImportStore {
	return &sqlImportStore{db: db}
}

func (s *sqlImportStore) FindTransactionByReference(userID int64, referenceID string) (*models.Transaction, error) {
	row := s.db.QueryRow(`
		SELECT id, user_id, date, amount, description, category_id, transaction_type,
		       COALESCE(import_source, ''), import_date, COALESCE(reference_id, '')
		FROM transactions
		WHERE user_id = ? AND reference_id = ?`, userID, referenceID)

	var tx models.Transaction
	err := row.Scan(&tx.ID, &tx.UserID, &tx.Date, &tx.Amount, &tx.Description, &tx.CategoryID,
		&tx.TransactionType, &tx.ImportSource, &tx.ImportDate, &tx.ReferenceID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying transaction by reference: %w", err)
	}
	return &tx, nil
}

func (s *sqlImportStore) CreateTransaction(tx *models.Transaction) error {
	tx.ImportDate = time.Now()

	var referenceArg interface{}
	if tx.ReferenceID != "" {
		referenceArg = tx.ReferenceID
	}
	var sourceArg interface{}
	if tx.ImportSource != "" {
		sourceArg = tx.ImportSource
	}

	res, err := s.db.Exec(`
		INSERT INTO transactions (user_id, date, amount, description, category_id, transaction_type, import_source, import_date, reference_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.UserID, tx.Date, tx.Amount, tx.Description, tx.CategoryID, tx.TransactionType,
		sourceArg, tx.ImportDate, referenceArg,
	)
	if err != nil {
		return fmt.Errorf("inserting transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	tx.ID = id
	return nil
}

// GetOrCreateCategory is a single conditional insert followed by a read,
// so concurrent imports cannot create the same category twice.
func (s *sqlImportStore) GetOrCreateCategory(userID int64, name, defaultClassification string) (models.Category, bool, error) {
	res, err := s.db.Exec(`
		INSERT INTO categories (user_id, name, classification)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id, name) DO NOTHING`,
		userID, name, defaultClassification,
	)
	if err != nil {
		return models.Category{}, false, fmt.Errorf("inserting category %q: %w", name, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.Category{}, false, err
	}
	created := affected == 1

	row := s.db.QueryRow(`
		SELECT id, user_id, name, classification, monthly_budget
		FROM categories
		WHERE user_id = ? AND name = ?`, userID, name)
	var category models.Category
	if err := row.Scan(&category.ID, &category.UserID, &category.Name, &category.Classification, &category.MonthlyBudget); err != nil {
		return models.Category{}, false, fmt.Errorf("reading category %q: %w", name, err)
	}
	return category, created, nil
}

func (s *sqlImportStore) UpdateCategoryClassification(categoryID int64, classification string) error {
	_, err := s.db.Exec(`UPDATE categories SET classification = ? WHERE id = ?`, classification, categoryID)
	if err != nil {
		return fmt.Errorf("updating category classification: %w", err)
	}
	return nil
}
