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
	"github.com/username/budgetfolio/backend/src/utils"
)

type InvestmentHandler struct{}

func NewInvestmentHandler() *InvestmentHandler {
	return &InvestmentHandler{}
}

type investmentRequest struct {
	Symbol               string              `json:"symbol"`
	Name                 string              `json:"name"`
	InvestmentType       string              `json:"investment_type"`
	Quantity             decimal.Decimal     `json:"quantity"`
	PurchasePrice        decimal.Decimal     `json:"purchase_price"`
	CurrentPrice         decimal.NullDecimal `json:"current_price"`
	PurchaseDate         string              `json:"purchase_date"`
	PrincipalAmount      decimal.NullDecimal `json:"principal_amount"`
	InterestRate         decimal.NullDecimal `json:"interest_rate"`
	CompoundingFrequency string              `json:"compounding_frequency"`
	TermYears            decimal.NullDecimal `json:"term_years"`
	Notes                string              `json:"notes"`
}

func (req *investmentRequest) validate() error {
	req.Symbol = validation.SanitizeText(req.Symbol)
	req.Name = validation.SanitizeText(req.Name)
	req.Notes = validation.SanitizeText(req.Notes)
	if err := validation.ValidateStringNotEmpty(req.Symbol, "symbol"); err != nil {
		return err
	}
	if err := validation.ValidateStringNotEmpty(req.Name, "name"); err != nil {
		return err
	}
	if err := validation.ValidateStringMaxLength(req.Notes, validation.MaxNotesLength, "notes"); err != nil {
		return err
	}
	if req.InvestmentType == "" {
		req.InvestmentType = models.InvestmentTypeStock
	}
	if err := validation.ValidateOneOf(req.InvestmentType, "investment_type",
		models.InvestmentTypeStock, models.InvestmentTypeBond, models.InvestmentTypeETF,
		models.InvestmentTypeCrypto, models.InvestmentTypeMutualFund, models.InvestmentTypeFixedIncome); err != nil {
		return err
	}
	if _, err := time.Parse("2006-01-02", req.PurchaseDate); err != nil {
		return fmt.Errorf("%w: purchase_date must be YYYY-MM-DD", validation.ErrValidationFailed)
	}
	if req.CompoundingFrequency != "" {
		if err := validation.ValidateOneOf(req.CompoundingFrequency, "compounding_frequency",
			models.CompoundingAnnual, models.CompoundingSemiAnnual,
			models.CompoundingQuarterly, models.CompoundingMonthly); err != nil {
			return err
		}
	}
	return nil
}

func (req *investmentRequest) toModel(userID, id int64) models.Investment {
	return models.Investment{
		ID:                   id,
		UserID:               userID,
		Symbol:               req.Symbol,
		Name:                 req.Name,
		InvestmentType:       req.InvestmentType,
		Quantity:             req.Quantity,
		PurchasePrice:        req.PurchasePrice,
		CurrentPrice:         req.CurrentPrice,
		PurchaseDate:         req.PurchaseDate,
		PrincipalAmount:      req.PrincipalAmount,
		InterestRate:         req.InterestRate,
		CompoundingFrequency: req.CompoundingFrequency,
		TermYears:            req.TermYears,
		Notes:                req.Notes,
	}
}

func (h *InvestmentHandler) HandleListInvestments(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	investments, err := models.ListInvestmentsByUser(database.DB, userID)
	if err != nil {
		logger.L.Error("Error listing investments", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to list investments", http.StatusInternalServerError)
		return
	}

	views := make([]models.InvestmentView, 0, len(investments))
	for _, inv := range investments {
		views = append(views, inv.View())
	}
	utils.SendJSON(w, views, http.StatusOK)
}

func (h *InvestmentHandler) HandleCreateInvestment(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req investmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.validate(); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	investment := req.toModel(userID, 0)
	if err := investment.Create(database.DB); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			utils.SendJSONError(w, "An investment with this symbol already exists", http.StatusConflict)
			return
		}
		logger.L.Error("Error creating investment", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to create investment", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, investment.View(), http.StatusCreated)
}

func (h *InvestmentHandler) HandleGetInvestment(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	id, err := idParam(r)
	if err != nil {
		utils.SendJSONError(w, "Invalid investment ID", http.StatusBadRequest)
		return
	}

	investment, err := models.GetInvestmentByID(database.DB, userID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.SendJSONError(w, "Investment not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Error fetching investment", "userID", userID, "investmentID", id, "error", err)
		utils.SendJSONError(w, "Failed to fetch investment", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, investment.View(), http.StatusOK)
}

func (h *InvestmentHandler) HandleUpdateInvestment(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	id, err := idParam(r)
	if err != nil {
		utils.SendJSONError(w, "Invalid investment ID", http.StatusBadRequest)
		return
	}

	var req investmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.validate(); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	investment := req.toModel(userID, id)
	if err := investment.Update(database.DB); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.SendJSONError(w, "Investment not found", http.StatusNotFound)
			return
		}
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			utils.SendJSONError(w, "An investment with this symbol already exists", http.StatusConflict)
			return
		}
		logger.L.Error("Error updating investment", "userID", userID, "investmentID", id, "error", err)
		utils.SendJSONError(w, "Failed to update investment", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, investment.View(), http.StatusOK)
}

func (h *InvestmentHandler) HandleDeleteInvestment(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	id, err := idParam(r)
	if err != nil {
		utils.SendJSONError(w, "Invalid investment ID", http.StatusBadRequest)
		return
	}

	if err := models.DeleteInvestment(database.DB, userID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.SendJSONError(w, "Investment not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Error deleting investment", "userID", userID, "investmentID", id, "error", err)
		utils.SendJSONError(w, "Failed to delete investment", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
