package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/username/budgetfolio/backend/src/logger"
	"github.com/username/budgetfolio/backend/src/services"
	"github.com/username/budgetfolio/backend/src/utils"
)

type ReportHandler struct {
	reportService services.ReportService
}

func NewReportHandler(reportService services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// HandleGetBalance returns the signed transaction total for a predefined
// period, keyed as "balance_<period>".
func (h *ReportHandler) HandleGetBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	period := chi.URLParam(r, "period")

	balance, err := h.reportService.Balance(userID, period)
	if err != nil {
		if errors.Is(err, services.ErrInvalidPeriod) {
			utils.SendJSONError(w, "Invalid period. Use: week, month, quarter, or year", http.StatusBadRequest)
			return
		}
		logger.L.Error("Error computing balance", "userID", userID, "period", period, "error", err)
		utils.SendJSONError(w, "Failed to compute balance", http.StatusInternalServerError)
		return
	}

	utils.SendJSON(w, map[string]decimal.Decimal{"balance_" + period: balance}, http.StatusOK)
}

// HandleGetCategorySpending returns per-category budget usage for a
// predefined period or a YYYY-MM month.
func (h *ReportHandler) HandleGetCategorySpending(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	period := chi.URLParam(r, "period")

	result, err := h.reportService.CategorySpending(userID, period)
	if err != nil {
		if errors.Is(err, services.ErrInvalidPeriod) {
			utils.SendJSONError(w, "Invalid period. Use: week, month, quarter, year, or YYYY-MM", http.StatusBadRequest)
			return
		}
		logger.L.Error("Error computing category spending", "userID", userID, "period", period, "error", err)
		utils.SendJSONError(w, "Failed to compute category spending", http.StatusInternalServerError)
		return
	}

	utils.SendJSON(w, result, http.StatusOK)
}
