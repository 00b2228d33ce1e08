package services

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/username/budgetfolio/backend/src/logger"
	"github.com/username/budgetfolio/backend/src/models"
	"github.com/username/budgetfolio/backend/src/parsers/bankstatement"
)

const skipReasonDuplicate = "Duplicate transaction"

type importServiceImpl struct {
	store       ImportStore
	categorizer *Categorizer
}

// NewImportService builds the statement importer over a persistence store
// and a keyword table.
func NewImportService(store ImportStore, keywordTable []KeywordRule) ImportService {
	return &importServiceImpl{
		store:       store,
		categorizer: NewCategorizer(store, keywordTable),
	}
}

// ProcessBankStatement parses a whole statement file and imports its rows
// sequentially. Per-row failures become report entries; only a file that
// cannot be read at all returns an error.
func (s *importServiceImpl) ProcessBankStatement(fileReader io.Reader, userID int64) (*ImportReport, error) {
	stmt, err := bankstatement.Parse(fileReader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}
	logger.L.Info("Processing bank statement", "userID", userID, "layout", stmt.Layout,
		"rows", len(stmt.Rows), "parseErrors", len(stmt.RowErrors))

	report := &ImportReport{
		TransactionsCreated: []CreatedTransaction{},
		TransactionsSkipped: []SkippedTransaction{},
		Errors:              []string{},
	}

	transactionType := models.TransactionTypeCreditCard
	if stmt.Layout == bankstatement.LayoutAccount {
		transactionType = models.TransactionTypeAccount
	}

	// Rows and parse errors are each ordered by row number; merge them so
	// the report lists outcomes in file order.
	ri, ei := 0, 0
	for ri < len(stmt.Rows) || ei < len(stmt.RowErrors) {
		if ei >= len(stmt.RowErrors) || (ri < len(stmt.Rows) && stmt.Rows[ri].Num < stmt.RowErrors[ei].Num) {
			s.importRow(userID, transactionType, stmt.Rows[ri], report)
			ri++
		} else {
			report.Errors = append(report.Errors, stmt.RowErrors[ei].String())
			ei++
		}
	}

	report.Message = fmt.Sprintf("Processed %d transactions successfully", len(report.TransactionsCreated))
	report.Summary = ImportSummary{
		Created: len(report.TransactionsCreated),
		Skipped: len(report.TransactionsSkipped),
		Errors:  len(report.Errors),
	}
	return report, nil
}

// importRow runs dedup, categorization and persistence for one row. Any
// failure, including a panic, is converted into an error entry so a single
// bad row never aborts the batch.
func (s *importServiceImpl) importRow(userID int64, transactionType string, row bankstatement.Row, report *ImportReport) {
	skipped, err := s.tryImportRow(userID, transactionType, row, report)
	if err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("Row %d: %v", row.Num, err))
		return
	}
	if skipped {
		report.TransactionsSkipped = append(report.TransactionsSkipped, SkippedTransaction{
			Row:         row.Num,
			Description: row.Description,
			Reason:      skipReasonDuplicate,
		})
	}
}

func (s *importServiceImpl) tryImportRow(userID int64, transactionType string, row bankstatement.Row, report *ImportReport) (skipped bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()

	referenceID := Fingerprint(row.RawDate, row.RawDescription, row.RawAmount)

	existing, err := s.store.FindTransactionByReference(userID, referenceID)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return true, nil
	}

	category, err := s.categorizer.Categorize(userID, row.CategoryHint, row.Description, row.Amount)
	if err != nil {
		return false, err
	}

	tx := &models.Transaction{
		UserID:          userID,
		Date:            row.Date.Format("2006-01-02"),
		Amount:          row.Amount,
		Description:     row.Description,
		CategoryID:      category.ID,
		TransactionType: transactionType,
		ImportSource:    models.ImportSourceBankStatement,
		ReferenceID:     referenceID,
	}
	// Two concurrent imports can both pass the reference check and race on
	// the unique constraint here; the loser's insert failure stays a
	// per-row error.
	if err := s.store.CreateTransaction(tx); err != nil {
		return false, err
	}

	report.TransactionsCreated = append(report.TransactionsCreated, CreatedTransaction{
		ID:          tx.ID,
		Date:        row.DateText,
		Description: row.Description,
		Amount:      row.Amount,
		Category:    category.Name,
	})
	return false, nil
}

// Fingerprint computes the duplicate-detection reference for a statement
// row from the raw date, description and amount texts exactly as read from
// the file. Identical raw strings always collide; values that merely parse
// to the same number do not.
func Fingerprint(rawDate, rawDescription, rawAmount string) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%s-%s-%s", rawDate, rawDescription, rawAmount)))
	return hex.EncodeToString(sum[:])
}
