package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction types.
const (
	TransactionTypeCreditCard = "credit_card"
	TransactionTypeAccount    = "account"
)

// ImportSourceBankStatement tags transactions created by the statement importer.
const ImportSourceBankStatement = "bank_statement"

// Transaction is a single dated money movement. Sign encodes direction:
// positive amounts are income, negative amounts are spending.
// ReferenceID is only set for imported rows and is unique when present;
// it is the sole duplicate-prevention mechanism.
type Transaction struct {
	ID              int64           `json:"id"`
	UserID          int64           `json:"-"`
	Date            string          `json:"date"` // YYYY-MM-DD
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	CategoryID      int64           `json:"category"`
	TransactionType string          `json:"transaction_type"`
	ImportSource    string          `json:"import_source,omitempty"`
	ImportDate      time.Time       `json:"import_date"`
	ReferenceID     string          `json:"reference_id,omitempty"`
}

const transactionColumns = `id, user_id, date, amount, description, category_id, transaction_type,
	COALESCE(import_source, ''), import_date, COALESCE(reference_id, '')`

func scanTransaction(row interface{ Scan(...interface{}) error }) (*Transaction, error) {
	var tx Transaction
	err := row.Scan(&tx.ID, &tx.UserID, &tx.Date, &tx.Amount, &tx.Description, &tx.CategoryID,
		&tx.TransactionType, &tx.ImportSource, &tx.ImportDate, &tx.ReferenceID)
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func (t *Transaction) Create(db *sql.DB) error {
	if t.ImportDate.IsZero() {
		t.ImportDate = time.Now()
	}
	var referenceArg interface{}
	if t.ReferenceID != "" {
		referenceArg = t.ReferenceID
	}
	var sourceArg interface{}
	if t.ImportSource != "" {
		sourceArg = t.ImportSource
	}
	res, err := db.Exec(`
		INSERT INTO transactions (user_id, date, amount, description, category_id, transaction_type, import_source, import_date, reference_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.UserID, t.Date, t.Amount, t.Description, t.CategoryID, t.TransactionType,
		sourceArg, t.ImportDate, referenceArg)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = id
	return nil
}

// Update rewrites the editable fields. Import metadata is immutable.
func (t *Transaction) Update(db *sql.DB) error {
	res, err := db.Exec(`
		UPDATE transactions SET date = ?, amount = ?, description = ?, category_id = ?, transaction_type = ?
		WHERE id = ? AND user_id = ?`,
		t.Date, t.Amount, t.Description, t.CategoryID, t.TransactionType, t.ID, t.UserID)
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

func GetTransactionByID(db *sql.DB, userID, id int64) (*Transaction, error) {
	row := db.QueryRow(`
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE id = ? AND user_id = ?`, id, userID)
	return scanTransaction(row)
}

func ListTransactionsByUser(db *sql.DB, userID int64) ([]Transaction, error) {
	rows, err := db.Query(`
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE user_id = ?
		ORDER BY date DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := []Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *tx)
	}
	return transactions, rows.Err()
}

func DeleteTransaction(db *sql.DB, userID, id int64) error {
	res, err := db.Exec(`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
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
