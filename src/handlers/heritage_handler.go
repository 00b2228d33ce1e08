package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/budgetfolio/backend/src/database"
	"github.com/username/budgetfolio/backend/src/logger"
	"github.com/username/budgetfolio/backend/src/models"
	"github.com/username/budgetfolio/backend/src/security/validation"
	"github.com/username/budgetfolio/backend/src/utils"
)

type HeritageHandler struct{}

func NewHeritageHandler() *HeritageHandler {
	return &HeritageHandler{}
}

type heritageRequest struct {
	Name                string              `json:"name"`
	HeritageType        string              `json:"heritage_type"`
	Address             string              `json:"address"`
	Area                decimal.NullDecimal `json:"area"`
	AreaUnit            string              `json:"area_unit"`
	PurchasePrice       decimal.Decimal     `json:"purchase_price"`
	CurrentValue        decimal.NullDecimal `json:"current_value"`
	PurchaseDate        string              `json:"purchase_date"`
	MonthlyRentalIncome decimal.Decimal     `json:"monthly_rental_income"`
	Notes               string              `json:"notes"`
}

func (req *heritageRequest) validate() error {
	req.Name = validation.SanitizeText(req.Name)
	req.Address = validation.SanitizeText(req.Address)
	req.Notes = validation.SanitizeText(req.Notes)
	if err := validation.ValidateStringNotEmpty(req.Name, "name"); err != nil {
		return err
	}
	if err := validation.ValidateStringNotEmpty(req.Address, "address"); err != nil {
		return err
	}
	if err := validation.ValidateStringMaxLength(req.Notes, validation.MaxNotesLength, "notes"); err != nil {
		return err
	}
	if req.HeritageType == "" {
		req.HeritageType = models.HeritageTypeHouse
	}
	if err := validation.ValidateOneOf(req.HeritageType, "heritage_type",
		models.HeritageTypeLand, models.HeritageTypeHouse, models.HeritageTypeApartment,
		models.HeritageTypeCommercial, models.HeritageTypeOffice, models.HeritageTypeWarehouse,
		models.HeritageTypeOther); err != nil {
		return err
	}
	if req.AreaUnit == "" {
		req.AreaUnit = "sq_m"
	}
	if _, err := time.Parse("2006-01-02", req.PurchaseDate); err != nil {
		return fmt.Errorf("%w: purchase_date must be YYYY-MM-DD", validation.ErrValidationFailed)
	}
	return nil
}

func (req *heritageRequest) toModel(userID, id int64) models.Heritage {
	return models.Heritage{
		ID:                  id,
		UserID:              userID,
		Name:                req.Name,
		HeritageType:        req.HeritageType,
		Address:             req.Address,
		Area:                req.Area,
		AreaUnit:            req.AreaUnit,
		PurchasePrice:       req.PurchasePrice,
		CurrentValue:        req.CurrentValue,
		PurchaseDate:        req.PurchaseDate,
		MonthlyRentalIncome: req.MonthlyRentalIncome,
		Notes:               req.Notes,
	}
}

func (h *HeritageHandler) HandleListHeritages(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	heritages, err := models.ListHeritagesByUser(database.DB, userID)
	if err != nil {
		logger.L.Error("Error listing heritages", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to list heritages", http.StatusInternalServerError)
		return
	}

	views := make([]models.HeritageView, 0, len(heritages))
	for _, hg := range heritages {
		views = append(views, hg.View())
	}
	utils.SendJSON(w, views, http.StatusOK)
}

func (h *HeritageHandler) HandleCreateHeritage(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req heritageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.validate(); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	heritage := req.toModel(userID, 0)
	if err := heritage.Create(database.DB); err != nil {
		logger.L.Error("Error creating heritage", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to create heritage", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, heritage.View(), http.StatusCreated)
}

func (h *HeritageHandler) HandleGetHeritage(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	id, err := idParam(r)
	if err != nil {
		utils.SendJSONError(w, "Invalid heritage ID", http.StatusBadRequest)
		return
	}

	heritage, err := models.GetHeritageByID(database.DB, userID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.SendJSONError(w, "Heritage not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Error fetching heritage", "userID", userID, "heritageID", id, "error", err)
		utils.SendJSONError(w, "Failed to fetch heritage", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, heritage.View(), http.StatusOK)
}

func (h *HeritageHandler) HandleUpdateHeritage(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	id, err := idParam(r)
	if err != nil {
		utils.SendJSONError(w, "Invalid heritage ID", http.StatusBadRequest)
		return
	}

	var req heritageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.validate(); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	heritage := req.toModel(userID, id)
	if err := heritage.Update(database.DB); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.SendJSONError(w, "Heritage not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Error updating heritage", "userID", userID, "heritageID", id, "error", err)
		utils.SendJSONError(w, "Failed to update heritage", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, heritage.View(), http.StatusOK)
}

func (h *HeritageHandler) HandleDeleteHeritage(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	id, err := idParam(r)
	if err != nil {
		utils.SendJSONError(w, "Invalid heritage ID", http.StatusBadRequest)
		return
	}

	if err := models.DeleteHeritage(database.DB, userID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.SendJSONError(w, "Heritage not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Error deleting heritage", "userID", userID, "heritageID", id, "error", err)
		utils.SendJSONError(w, "Failed to delete heritage", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
