package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/budgetfolio/backend/src/database"
	"github.com/username/budgetfolio/backend/src/logger"
	"github.com/username/budgetfolio/backend/src/models"
	"github.com/username/budgetfolio/backend/src/security/validation"
	"github.com/username/budgetfolio/backend/src/services"
	"github.com/username/budgetfolio/backend/src/utils"
)

type TransactionHandler struct {
	reportService services.ReportService
}

func NewTransactionHandler(reportService services.ReportService) *TransactionHandler {
	return &TransactionHandler{reportService: reportService}
}

type transactionRequest struct {
	Date            string          `json:"date"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	CategoryID      int64           `json:"category"`
	TransactionType string          `json:"transaction_type"`
}

func (req *transactionRequest) validate() error {
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", validation.ErrValidationFailed)
	}
	req.Description = validation.SanitizeText(req.Description)
	if err := validation.ValidateStringNotEmpty(req.Description, "description"); err != nil {
		return err
	}
	if err := validation.ValidateStringMaxLength(req.Description, validation.MaxDescriptionLength, "description"); err != nil {
		return err
	}
	if req.TransactionType == "" {
		req.TransactionType = models.TransactionTypeAccount
	}
	return validation.ValidateOneOf(req.TransactionType, "transaction_type",
		models.TransactionTypeAccount, models.TransactionTypeCreditCard)
}

func (h *TransactionHandler) HandleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	transactions, err := models.ListTransactionsByUser(database.DB, userID)
	if err != nil {
		logger.L.Error("Error listing transactions", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to list transactions", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, transactions, http.StatusOK)
}

func (h *TransactionHandler) HandleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.validate(); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	// The target category must belong to the caller.
	if _, err := models.GetCategoryByID(database.DB, userID, req.CategoryID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.SendJSONError(w, "Category not found", http.StatusBadRequest)
			return
		}
		logger.L.Error("Error checking category ownership", "userID", userID, "categoryID", req.CategoryID, "error", err)
		utils.SendJSONError(w, "Failed to create transaction", http.StatusInternalServerError)
		return
	}

	tx := models.Transaction{
		UserID:          userID,
		Date:            req.Date,
		Amount:          req.Amount,
		Description:     req.Description,
		CategoryID:      req.CategoryID,
		TransactionType: req.TransactionType,
	}
	if err := tx.Create(database.DB); err != nil {
		logger.L.Error("Error creating transaction", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to create transaction", http.StatusInternalServerError)
		return
	}

	h.reportService.InvalidateUserReports(userID)
	utils.SendJSON(w, tx, http.StatusCreated)
}

func (h *TransactionHandler) HandleGetTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	id, err := idParam(r)
	if err != nil {
		utils.SendJSONError(w, "Invalid transaction ID", http.StatusBadRequest)
		return
	}

	tx, err := models.GetTransactionByID(database.DB, userID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.SendJSONError(w, "Transaction not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Error fetching transaction", "userID", userID, "transactionID", id, "error", err)
		utils.SendJSONError(w, "Failed to fetch transaction", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, tx, http.StatusOK)
}

func (h *TransactionHandler) HandleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	id, err := idParam(r)
	if err != nil {
		utils.SendJSONError(w, "Invalid transaction ID", http.StatusBadRequest)
		return
	}

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.validate(); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, err := models.GetCategoryByID(database.DB, userID, req.CategoryID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.SendJSONError(w, "Category not found", http.StatusBadRequest)
			return
		}
		logger.L.Error("Error checking category ownership", "userID", userID, "categoryID", req.CategoryID, "error", err)
		utils.SendJSONError(w, "Failed to update transaction", http.StatusInternalServerError)
		return
	}

	tx := models.Transaction{
		ID:              id,
		UserID:          userID,
		Date:            req.Date,
		Amount:          req.Amount,
		Description:     req.Description,
		CategoryID:      req.CategoryID,
		TransactionType: req.TransactionType,
	}
	if err := tx.Update(database.DB); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.SendJSONError(w, "Transaction not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Error updating transaction", "userID", userID, "transactionID", id, "error", err)
		utils.SendJSONError(w, "Failed to update transaction", http.StatusInternalServerError)
		return
	}

	h.reportService.InvalidateUserReports(userID)
	utils.SendJSON(w, tx, http.StatusOK)
}

func (h *TransactionHandler) HandleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	id, err := idParam(r)
	if err != nil {
		utils.SendJSONError(w, "Invalid transaction ID", http.StatusBadRequest)
		return
	}

	if err := models.DeleteTransaction(database.DB, userID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.SendJSONError(w, "Transaction not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Error deleting transaction", "userID", userID, "transactionID", id, "error", err)
		utils.SendJSONError(w, "Failed to delete transaction", http.StatusInternalServerError)
		return
	}

	h.reportService.InvalidateUserReports(userID)
	w.WriteHeader(http.StatusNoContent)
}

type bulkReclassifyRequest struct {
	FromCategoryID int64 `json:"from_category_id"`
	ToCategoryID   int64 `json:"to_category_id"`
}

// HandleBulkReclassifyTransactions moves every transaction from one of the
// caller's categories to another in a single statement.
func (h *TransactionHandler) HandleBulkReclassifyTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req bulkReclassifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.FromCategoryID == req.ToCategoryID {
		utils.SendJSONError(w, "Source and target categories must differ", http.StatusBadRequest)
		return
	}

	fromCategory, err := models.GetCategoryByID(database.DB, userID, req.FromCategoryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.SendJSONError(w, "Source category not found", http.StatusBadRequest)
			return
		}
		utils.SendJSONError(w, "Failed to reclassify transactions", http.StatusInternalServerError)
		return
	}
	toCategory, err := models.GetCategoryByID(database.DB, userID, req.ToCategoryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.SendJSONError(w, "Target category not found", http.StatusBadRequest)
			return
		}
		utils.SendJSONError(w, "Failed to reclassify transactions", http.StatusInternalServerError)
		return
	}

	result, err := database.DB.Exec(`
		UPDATE transactions SET category_id = ?
		WHERE user_id = ? AND category_id = ?`,
		req.ToCategoryID, userID, req.FromCategoryID)
	if err != nil {
		logger.L.Error("Error bulk reclassifying transactions", "userID", userID,
			"fromCategoryID", req.FromCategoryID, "toCategoryID", req.ToCategoryID, "error", err)
		utils.SendJSONError(w, "Failed to reclassify transactions", http.StatusInternalServerError)
		return
	}
	updated, _ := result.RowsAffected()

	logger.L.Info("Bulk reclassified transactions", "userID", userID,
		"fromCategory", fromCategory.Name, "toCategory", toCategory.Name, "updated", updated)
	h.reportService.InvalidateUserReports(userID)

	utils.SendJSON(w, map[string]interface{}{
		"message":              fmt.Sprintf("Reclassified %d transactions from '%s' to '%s'", updated, fromCategory.Name, toCategory.Name),
		"transactions_updated": updated,
		"from_category":        fromCategory.Name,
		"to_category":          toCategory.Name,
	}, http.StatusOK)
}

type bulkDeleteRequest struct {
	CategoryIDs []int64 `json:"category_ids"`
}

// HandleBulkDeleteTransactions deletes every transaction in the given
// categories. The categories themselves survive.
func (h *TransactionHandler) HandleBulkDeleteTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req bulkDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.CategoryIDs) == 0 {
		utils.SendJSONError(w, "category_ids cannot be empty", http.StatusBadRequest)
		return
	}

	query := `DELETE FROM transactions WHERE user_id = ? AND category_id IN (?` +
		strings.Repeat(",?", len(req.CategoryIDs)-1) + `)`
	args := make([]interface{}, 0, len(req.CategoryIDs)+1)
	args = append(args, userID)
	for _, id := range req.CategoryIDs {
		args = append(args, id)
	}

	result, err := database.DB.Exec(query, args...)
	if err != nil {
		logger.L.Error("Error bulk deleting transactions", "userID", userID, "categoryIDs", req.CategoryIDs, "error", err)
		utils.SendJSONError(w, "Failed to delete transactions", http.StatusInternalServerError)
		return
	}
	deleted, _ := result.RowsAffected()

	logger.L.Info("Bulk deleted transactions", "userID", userID, "categories", len(req.CategoryIDs), "deleted", deleted)
	h.reportService.InvalidateUserReports(userID)

	utils.SendJSON(w, map[string]interface{}{
		"message":              fmt.Sprintf("Deleted %d transactions across %d categories", deleted, len(req.CategoryIDs)),
		"transactions_deleted": deleted,
		"categories_processed": len(req.CategoryIDs),
	}, http.StatusOK)
}
