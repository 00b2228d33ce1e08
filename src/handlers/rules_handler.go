package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/username/budgetfolio/backend/src/database"
	"github.com/username/budgetfolio/backend/src/logger"
	"github.com/username/budgetfolio/backend/src/models"
	"github.com/username/budgetfolio/backend/src/utils"
)

// RulesHandler serves the reclassification and deletion rule endpoints.
type RulesHandler struct{}

func NewRulesHandler() *RulesHandler {
	return &RulesHandler{}
}

type reclassificationRuleRequest struct {
	FromCategoryID int64 `json:"from_category"`
	ToCategoryID   int64 `json:"to_category"`
	IsActive       *bool `json:"is_active"`
}

func (req *reclassificationRuleRequest) active() bool {
	if req.IsActive == nil {
		return true
	}
	return *req.IsActive
}

// checkRuleCategories verifies both categories exist and belong to the
// caller, and that the rule does not map a category onto itself.
func checkRuleCategories(w http.ResponseWriter, userID, fromID, toID int64) bool {
	if fromID == toID {
		utils.SendJSONError(w, "Source and target categories must differ", http.StatusBadRequest)
		return false
	}
	for _, id := range []int64{fromID, toID} {
		if _, err := models.GetCategoryByID(database.DB, userID, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				utils.SendJSONError(w, "Category not found", http.StatusBadRequest)
				return false
			}
			logger.L.Error("Error checking rule categories", "userID", userID, "categoryID", id, "error", err)
			utils.SendJSONError(w, "Failed to validate rule", http.StatusInternalServerError)
			return false
		}
	}
	return true
}

func (h *RulesHandler) HandleListReclassificationRules(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	rules, err := models.ListReclassificationRulesByUser(database.DB, userID)
	if err != nil {
		logger.L.Error("Error listing reclassification rules", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to list reclassification rules", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, rules, http.StatusOK)
}

func (h *RulesHandler) HandleCreateReclassificationRule(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req reclassificationRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if !checkRuleCategories(w, userID, req.FromCategoryID, req.ToCategoryID) {
		return
	}

	rule := models.ReclassificationRule{
		UserID:         userID,
		FromCategoryID: req.FromCategoryID,
		ToCategoryID:   req.ToCategoryID,
		IsActive:       req.active(),
	}
	if err := rule.Create(database.DB); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			utils.SendJSONError(w, "A rule for this source category already exists", http.StatusConflict)
			return
		}
		logger.L.Error("Error creating reclassification rule", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to create reclassification rule", http.StatusInternalServerError)
		return
	}

	created, err := models.GetReclassificationRuleByID(database.DB, userID, rule.ID)
	if err != nil {
		logger.L.Error("Error reading back reclassification rule", "userID", userID, "ruleID", rule.ID, "error", err)
		utils.SendJSON(w, rule, http.StatusCreated)
		return
	}
	utils.SendJSON(w, created, http.StatusCreated)
}

func (h *RulesHandler) HandleGetReclassificationRule(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	id, err := idParam(r)
	if err != nil {
		utils.SendJSONError(w, "Invalid rule ID", http.StatusBadRequest)
		return
	}

	rule, err := models.GetReclassificationRuleByID(database.DB, userID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.SendJSONError(w, "Rule not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Error fetching reclassification rule", "userID", userID, "ruleID", id, "error", err)
		utils.SendJSONError(w, "Failed to fetch rule", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, rule, http.StatusOK)
}

func (h *RulesHandler) HandleUpdateReclassificationRule(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	id, err := idParam(r)
	if err != nil {
		utils.SendJSONError(w, "Invalid rule ID", http.StatusBadRequest)
		return
	}

	var req reclassificationRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if !checkRuleCategories(w, userID, req.FromCategoryID, req.ToCategoryID) {
		return
	}

	rule := models.ReclassificationRule{
		ID:             id,
		UserID:         userID,
		FromCategoryID: req.FromCategoryID,
		ToCategoryID:   req.ToCategoryID,
		IsActive:       req.active(),
	}
	if err := rule.Update(database.DB); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.SendJSONError(w, "Rule not found", http.StatusNotFound)
			return
		}
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			utils.SendJSONError(w, "A rule for this source category already exists", http.StatusConflict)
			return
		}
		logger.L.Error("Error updating reclassification rule", "userID", userID, "ruleID", id, "error", err)
		utils.SendJSONError(w, "Failed to update rule", http.StatusInternalServerError)
		return
	}

	updated, err := models.GetReclassificationRuleByID(database.DB, userID, id)
	if err != nil {
		utils.SendJSON(w, rule, http.StatusOK)
		return
	}
	utils.SendJSON(w, updated, http.StatusOK)
}

func (h *RulesHandler) HandleDeleteReclassificationRule(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	id, err := idParam(r)
	if err != nil {
		utils.SendJSONError(w, "Invalid rule ID", http.StatusBadRequest)
		return
	}

	if err := models.DeleteReclassificationRule(database.DB, userID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.SendJSONError(w, "Rule not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Error deleting reclassification rule", "userID", userID, "ruleID", id, "error", err)
		utils.SendJSONError(w, "Failed to delete rule", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type categoryDeletionRuleRequest struct {
	CategoryID int64 `json:"category"`
	IsActive   *bool `json:"is_active"`
}

func (req *categoryDeletionRuleRequest) active() bool {
	if req.IsActive == nil {
		return true
	}
	return *req.IsActive
}

func (h *RulesHandler) HandleListCategoryDeletionRules(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	rules, err := models.ListCategoryDeletionRulesByUser(database.DB, userID)
	if err != nil {
		logger.L.Error("Error listing category deletion rules", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to list category deletion rules", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, rules, http.StatusOK)
}

func (h *RulesHandler) HandleCreateCategoryDeletionRule(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req categoryDeletionRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if _, err := models.GetCategoryByID(database.DB, userID, req.CategoryID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.SendJSONError(w, "Category not found", http.StatusBadRequest)
			return
		}
		logger.L.Error("Error checking rule category", "userID", userID, "categoryID", req.CategoryID, "error", err)
		utils.SendJSONError(w, "Failed to validate rule", http.StatusInternalServerError)
		return
	}

	rule := models.CategoryDeletionRule{
		UserID:     userID,
		CategoryID: req.CategoryID,
		IsActive:   req.active(),
	}
	if err := rule.Create(database.DB); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			utils.SendJSONError(w, "A rule for this category already exists", http.StatusConflict)
			return
		}
		logger.L.Error("Error creating category deletion rule", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to create category deletion rule", http.StatusInternalServerError)
		return
	}

	created, err := models.GetCategoryDeletionRuleByID(database.DB, userID, rule.ID)
	if err != nil {
		utils.SendJSON(w, rule, http.StatusCreated)
		return
	}
	utils.SendJSON(w, created, http.StatusCreated)
}

func (h *RulesHandler) HandleGetCategoryDeletionRule(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	id, err := idParam(r)
	if err != nil {
		utils.SendJSONError(w, "Invalid rule ID", http.StatusBadRequest)
		return
	}

	rule, err := models.GetCategoryDeletionRuleByID(database.DB, userID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.SendJSONError(w, "Rule not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Error fetching category deletion rule", "userID", userID, "ruleID", id, "error", err)
		utils.SendJSONError(w, "Failed to fetch rule", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, rule, http.StatusOK)
}

func (h *RulesHandler) HandleUpdateCategoryDeletionRule(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	id, err := idParam(r)
	if err != nil {
		utils.SendJSONError(w, "Invalid rule ID", http.StatusBadRequest)
		return
	}

	var req categoryDeletionRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if _, err := models.GetCategoryByID(database.DB, userID, req.CategoryID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.SendJSONError(w, "Category not found", http.StatusBadRequest)
			return
		}
		utils.SendJSONError(w, "Failed to validate rule", http.StatusInternalServerError)
		return
	}

	rule := models.CategoryDeletionRule{
		ID:         id,
		UserID:     userID,
		CategoryID: req.CategoryID,
		IsActive:   req.active(),
	}
	if err := rule.Update(database.DB); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.SendJSONError(w, "Rule not found", http.StatusNotFound)
			return
		}
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			utils.SendJSONError(w, "A rule for this category already exists", http.StatusConflict)
			return
		}
		logger.L.Error("Error updating category deletion rule", "userID", userID, "ruleID", id, "error", err)
		utils.SendJSONError(w, "Failed to update rule", http.StatusInternalServerError)
		return
	}

	updated, err := models.GetCategoryDeletionRuleByID(database.DB, userID, id)
	if err != nil {
		utils.SendJSON(w, rule, http.StatusOK)
		return
	}
	utils.SendJSON(w, updated, http.StatusOK)
}

func (h *RulesHandler) HandleDeleteCategoryDeletionRule(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	id, err := idParam(r)
	if err != nil {
		utils.SendJSONError(w, "Invalid rule ID", http.StatusBadRequest)
		return
	}

	if err := models.DeleteCategoryDeletionRule(database.DB, userID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.SendJSONError(w, "Rule not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Error deleting category deletion rule", "userID", userID, "ruleID", id, "error", err)
		utils.SendJSONError(w, "Failed to delete rule", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
