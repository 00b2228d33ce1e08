package services

import (
	"errors"
	"io"

	"github.com/shopspring/decimal"
	"github.com/username/budgetfolio/backend/src/models"
)

// Define common service errors
var (
	ErrParsingFailed = errors.New("csv parsing failed")
	ErrInvalidPeriod = errors.New("invalid period")
)

// ImportStore is the persistence boundary of the statement importer.
// GetOrCreateCategory must be atomic (a single conditional insert) so two
// concurrent imports cannot both create the same category.
type ImportStore interface {
	// FindTransactionByReference returns the user's transaction carrying the
	// given reference fingerprint, or nil when none exists.
	FindTransactionByReference(userID int64, referenceID string) (*models.Transaction, error)
	CreateTransaction(tx *models.Transaction) error
	// GetOrCreateCategory returns the user's category with that name,
	// creating it with the default classification when absent. The bool
	// reports whether a new row was created.
	GetOrCreateCategory(userID int64, name, defaultClassification string) (models.Category, bool, error)
	UpdateCategoryClassification(categoryID int64, classification string) error
}

// CreatedTransaction is one accepted row in an import report.
type CreatedTransaction struct {
	ID          int64           `json:"id"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
}

// SkippedTransaction is one duplicate row in an import report.
type SkippedTransaction struct {
	Row         int    `json:"row"`
	Description string `json:"description"`
	Reason      string `json:"reason"`
}

// ImportSummary carries the per-outcome counts of one import.
type ImportSummary struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}

// ImportReport is the full result of processing one statement file. It is
// returned for any readable CSV, whether or not any row succeeded.
type ImportReport struct {
	Message             string               `json:"message"`
	TransactionsCreated []CreatedTransaction `json:"transactions_created"`
	TransactionsSkipped []SkippedTransaction `json:"transactions_skipped"`
	Errors              []string             `json:"errors"`
	Summary             ImportSummary        `json:"summary"`
}

// ImportService processes uploaded bank statement files.
type ImportService interface {
	ProcessBankStatement(fileReader io.Reader, userID int64) (*ImportReport, error)
}

// ReportService serves the period aggregation endpoints.
type ReportService interface {
	Balance(userID int64, period string) (decimal.Decimal, error)
	CategorySpending(userID int64, period string) (*models.CategorySpendingResult, error)
	InvalidateUserReports(userID int64)
}
