package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/username/budgetfolio/backend/src/database"
	"github.com/username/budgetfolio/backend/src/logger"
	"github.com/username/budgetfolio/backend/src/models"
	"github.com/username/budgetfolio/backend/src/security/validation"
	"github.com/username/budgetfolio/backend/src/services"
	"github.com/username/budgetfolio/backend/src/utils"
)

// idParam reads the {id} URL parameter.
func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

type CategoryHandler struct {
	reportService services.ReportService
}

func NewCategoryHandler(reportService services.ReportService) *CategoryHandler {
	return &CategoryHandler{reportService: reportService}
}

type categoryRequest struct {
	Name           string          `json:"name"`
	Classification string          `json:"classification"`
	MonthlyBudget  decimal.Decimal `json:"monthly_budget"`
}

func (req *categoryRequest) validate() error {
	req.Name = validation.SanitizeText(req.Name)
	if err := validation.ValidateStringNotEmpty(req.Name, "name"); err != nil {
		return err
	}
	if err := validation.ValidateStringMaxLength(req.Name, validation.DefaultMaxStringLength, "name"); err != nil {
		return err
	}
	if req.Classification == "" {
		req.Classification = models.ClassificationSpend
	}
	return validation.ValidateOneOf(req.Classification, "classification",
		models.ClassificationSpend, models.ClassificationIncome)
}

func (h *CategoryHandler) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	categories, err := models.ListCategoriesByUser(database.DB, userID)
	if err != nil {
		logger.L.Error("Error listing categories", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to list categories", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, categories, http.StatusOK)
}

func (h *CategoryHandler) HandleCreateCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.validate(); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	category := models.Category{
		UserID:         userID,
		Name:           req.Name,
		Classification: req.Classification,
		MonthlyBudget:  req.MonthlyBudget,
	}
	if err := category.Create(database.DB); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			utils.SendJSONError(w, "A category with this name already exists", http.StatusConflict)
			return
		}
		logger.L.Error("Error creating category", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to create category", http.StatusInternalServerError)
		return
	}

	h.reportService.InvalidateUserReports(userID)
	utils.SendJSON(w, category, http.StatusCreated)
}

func (h *CategoryHandler) HandleGetCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	id, err := idParam(r)
	if err != nil {
		utils.SendJSONError(w, "Invalid category ID", http.StatusBadRequest)
		return
	}

	category, err := models.GetCategoryByID(database.DB, userID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.SendJSONError(w, "Category not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Error fetching category", "userID", userID, "categoryID", id, "error", err)
		utils.SendJSONError(w, "Failed to fetch category", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, category, http.StatusOK)
}

func (h *CategoryHandler) HandleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	id, err := idParam(r)
	if err != nil {
		utils.SendJSONError(w, "Invalid category ID", http.StatusBadRequest)
		return
	}

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.validate(); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	category := models.Category{
		ID:             id,
		UserID:         userID,
		Name:           req.Name,
		Classification: req.Classification,
		MonthlyBudget:  req.MonthlyBudget,
	}
	if err := category.Update(database.DB); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.SendJSONError(w, "Category not found", http.StatusNotFound)
			return
		}
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			utils.SendJSONError(w, "A category with this name already exists", http.StatusConflict)
			return
		}
		logger.L.Error("Error updating category", "userID", userID, "categoryID", id, "error", err)
		utils.SendJSONError(w, "Failed to update category", http.StatusInternalServerError)
		return
	}

	h.reportService.InvalidateUserReports(userID)
	utils.SendJSON(w, category, http.StatusOK)
}

// HandleDeleteCategory removes the category and, through the foreign key
// cascade, every transaction filed under it.
func (h *CategoryHandler) HandleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	id, err := idParam(r)
	if err != nil {
		utils.SendJSONError(w, "Invalid category ID", http.StatusBadRequest)
		return
	}

	if err := models.DeleteCategory(database.DB, userID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.SendJSONError(w, "Category not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Error deleting category", "userID", userID, "categoryID", id, "error", err)
		utils.SendJSONError(w, "Failed to delete category", http.StatusInternalServerError)
		return
	}

	h.reportService.InvalidateUserReports(userID)
	w.WriteHeader(http.StatusNoContent)
}
