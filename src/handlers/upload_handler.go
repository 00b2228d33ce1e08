package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/username/budgetfolio/backend/src/config"
	"github.com/username/budgetfolio/backend/src/logger"
	"github.com/username/budgetfolio/backend/src/security/validation"
	"github.com/username/budgetfolio/backend/src/services"
	"github.com/username/budgetfolio/backend/src/utils"
)

type UploadHandler struct {
	importService services.ImportService
	reportService services.ReportService
}

func NewUploadHandler(importService services.ImportService, reportService services.ReportService) *UploadHandler {
	return &UploadHandler{
		importService: importService,
		reportService: reportService,
	}
}

// HandleUploadBankStatement ingests one bank statement CSV and responds
// with a full per-row report. Per-row failures never fail the request; a
// file with zero valid rows still returns 200.
func (h *UploadHandler) HandleUploadBankStatement(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		logger.L.Warn("Failed to parse multipart form or request too large", "userID", userID, "error", err, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("Failed to parse upload or file too large (max %d MB)", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		logger.L.Warn("Upload request missing file", "userID", userID, "error", err)
		utils.SendJSONError(w, "No file provided", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if !strings.HasSuffix(fileHeader.Filename, ".csv") {
		logger.L.Warn("Upload rejected: not a CSV", "userID", userID, "filename", fileHeader.Filename)
		utils.SendJSONError(w, "File must be a CSV", http.StatusBadRequest)
		return
	}

	if err := validation.ValidateTextFileContent(file); err != nil {
		logger.L.Warn("Upload content validation failed", "userID", userID, "filename", fileHeader.Filename, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	logger.L.Info("Processing bank statement upload", "userID", userID, "filename", fileHeader.Filename, "size", fileHeader.Size)

	report, err := h.importService.ProcessBankStatement(file, userID)
	if err != nil {
		logger.L.Error("Bank statement processing failed", "userID", userID, "filename", fileHeader.Filename, "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Failed to process file: %v", err), http.StatusInternalServerError)
		return
	}

	if report.Summary.Created > 0 {
		h.reportService.InvalidateUserReports(userID)
	}

	utils.SendJSON(w, report, http.StatusOK)
}
