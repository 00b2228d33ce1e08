package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/username/budgetfolio/backend/src/database"
	"github.com/username/budgetfolio/backend/src/logger"
	"github.com/username/budgetfolio/backend/src/models"
	"github.com/username/budgetfolio/backend/src/security/validation"
	"github.com/username/budgetfolio/backend/src/utils"
)

type RetirementHandler struct{}

func NewRetirementHandler() *RetirementHandler {
	return &RetirementHandler{}
}

type retirementAccountRequest struct {
	Name                    string          `json:"name"`
	AccountType             string          `json:"account_type"`
	Provider                string          `json:"provider"`
	AccountNumber           string          `json:"account_number"`
	CurrentBalance          decimal.Decimal `json:"current_balance"`
	MonthlyContribution     decimal.Decimal `json:"monthly_contribution"`
	EmployerMatchPercentage decimal.Decimal `json:"employer_match_percentage"`
	EmployerMatchLimit      decimal.Decimal `json:"employer_match_limit"`
	RiskLevel               string          `json:"risk_level"`
	TargetRetirementAge     int             `json:"target_retirement_age"`
	Notes                   string          `json:"notes"`
}

func (req *retirementAccountRequest) validate() error {
	req.Name = validation.SanitizeText(req.Name)
	req.Provider = validation.SanitizeText(req.Provider)
	req.AccountNumber = validation.SanitizeText(req.AccountNumber)
	req.Notes = validation.SanitizeText(req.Notes)
	if err := validation.ValidateStringNotEmpty(req.Name, "name"); err != nil {
		return err
	}
	if err := validation.ValidateStringNotEmpty(req.Provider, "provider"); err != nil {
		return err
	}
	if err := validation.ValidateStringMaxLength(req.Notes, validation.MaxNotesLength, "notes"); err != nil {
		return err
	}
	if req.AccountType == "" {
		req.AccountType = models.AccountTypeTraditional401k
	}
	if err := validation.ValidateOneOf(req.AccountType, "account_type",
		models.AccountTypeTraditional401k, models.AccountTypeRoth401k,
		models.AccountTypeTraditionalIRA, models.AccountTypeRothIRA,
		models.AccountTypeSepIRA, models.AccountTypeSimpleIRA,
		models.AccountTypePension, models.AccountTypeAnnuity, models.AccountTypeOther); err != nil {
		return err
	}
	if req.RiskLevel == "" {
		req.RiskLevel = models.RiskModerate
	}
	if err := validation.ValidateOneOf(req.RiskLevel, "risk_level",
		models.RiskConservative, models.RiskModerate,
		models.RiskAggressive, models.RiskVeryAggressive); err != nil {
		return err
	}
	if req.TargetRetirementAge == 0 {
		req.TargetRetirementAge = 65
	}
	return nil
}

func (req *retirementAccountRequest) toModel(userID, id int64) models.RetirementAccount {
	return models.RetirementAccount{
		ID:                      id,
		UserID:                  userID,
		Name:                    req.Name,
		AccountType:             req.AccountType,
		Provider:                req.Provider,
		AccountNumber:           req.AccountNumber,
		CurrentBalance:          req.CurrentBalance,
		MonthlyContribution:     req.MonthlyContribution,
		EmployerMatchPercentage: req.EmployerMatchPercentage,
		EmployerMatchLimit:      req.EmployerMatchLimit,
		RiskLevel:               req.RiskLevel,
		TargetRetirementAge:     req.TargetRetirementAge,
		Notes:                   req.Notes,
	}
}

func (h *RetirementHandler) HandleListRetirementAccounts(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	accounts, err := models.ListRetirementAccountsByUser(database.DB, userID)
	if err != nil {
		logger.L.Error("Error listing retirement accounts", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to list retirement accounts", http.StatusInternalServerError)
		return
	}

	views := make([]models.RetirementAccountView, 0, len(accounts))
	for _, acct := range accounts {
		views = append(views, acct.View())
	}
	utils.SendJSON(w, views, http.StatusOK)
}

func (h *RetirementHandler) HandleCreateRetirementAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req retirementAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.validate(); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	account := req.toModel(userID, 0)
	if err := account.Create(database.DB); err != nil {
		logger.L.Error("Error creating retirement account", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to create retirement account", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, account.View(), http.StatusCreated)
}

func (h *RetirementHandler) HandleGetRetirementAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	id, err := idParam(r)
	if err != nil {
		utils.SendJSONError(w, "Invalid retirement account ID", http.StatusBadRequest)
		return
	}

	account, err := models.GetRetirementAccountByID(database.DB, userID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.SendJSONError(w, "Retirement account not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Error fetching retirement account", "userID", userID, "accountID", id, "error", err)
		utils.SendJSONError(w, "Failed to fetch retirement account", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, account.View(), http.StatusOK)
}

func (h *RetirementHandler) HandleUpdateRetirementAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	id, err := idParam(r)
	if err != nil {
		utils.SendJSONError(w, "Invalid retirement account ID", http.StatusBadRequest)
		return
	}

	var req retirementAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.validate(); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	account := req.toModel(userID, id)
	if err := account.Update(database.DB); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.SendJSONError(w, "Retirement account not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Error updating retirement account", "userID", userID, "accountID", id, "error", err)
		utils.SendJSONError(w, "Failed to update retirement account", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, account.View(), http.StatusOK)
}

func (h *RetirementHandler) HandleDeleteRetirementAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	id, err := idParam(r)
	if err != nil {
		utils.SendJSONError(w, "Invalid retirement account ID", http.StatusBadRequest)
		return
	}

	if err := models.DeleteRetirementAccount(database.DB, userID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.SendJSONError(w, "Retirement account not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Error deleting retirement account", "userID", userID, "accountID", id, "error", err)
		utils.SendJSONError(w, "Failed to delete retirement account", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
