package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/budgetfolio/backend/src/config"
	"github.com/username/budgetfolio/backend/src/logger"
	"github.com/username/budgetfolio/backend/src/models"
	"github.com/username/budgetfolio/backend/src/services"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	config.Cfg = &config.AppConfig{
		MaxUploadSizeBytes: 10 * 1024 * 1024,
	}
	os.Exit(m.Run())
}

type fakeImportService struct {
	report    *services.ImportReport
	err       error
	gotUserID int64
}

func (f *fakeImportService) ProcessBankStatement(fileReader io.Reader, userID int64) (*services.ImportReport, error) {
	f.gotUserID = userID
	if f.err != nil {
		return nil, f.err
	}
	return f.report, nil
}

type fakeReportService struct {
	invalidated []int64
}

func (f *fakeReportService) Balance(userID int64, period string) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (f *fakeReportService) CategorySpending(userID int64, period string) (*models.CategorySpendingResult, error) {
	return &models.CategorySpendingResult{Period: period}, nil
}

func (f *fakeReportService) InvalidateUserReports(userID int64) {
	f.invalidated = append(f.invalidated, userID)
}

func multipartBody(t *testing.T, fieldName, fileName, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(fieldName, fileName)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func uploadRequest(t *testing.T, fieldName, fileName, content string) *http.Request {
	t.Helper()
	body, contentType := multipartBody(t, fieldName, fileName, content)
	req := httptest.NewRequest(http.MethodPost, "/api/upload-bank-statement", body)
	req.Header.Set("Content-Type", contentType)
	return req.WithContext(ContextWithUserID(req.Context(), 42))
}

func TestUploadRejectsMissingFile(t *testing.T) {
	handler := NewUploadHandler(&fakeImportService{}, &fakeReportService{})

	body, contentType := multipartBody(t, "wrong_field", "statement.csv", "a,b\n")
	req := httptest.NewRequest(http.MethodPost, "/api/upload-bank-statement", body)
	req.Header.Set("Content-Type", contentType)
	req = req.WithContext(ContextWithUserID(req.Context(), 42))
	rec := httptest.NewRecorder()

	handler.HandleUploadBankStatement(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "No file provided")
}

func TestUploadRejectsNonCSVExtension(t *testing.T) {
	handler := NewUploadHandler(&fakeImportService{}, &fakeReportService{})

	tests := []string{"statement.txt", "statement.CSV", "statement"}
	for _, name := range tests {
		rec := httptest.NewRecorder()
		handler.HandleUploadBankStatement(rec, uploadRequest(t, "file", name, "a,b\n"))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "filename %q", name)
		assert.Contains(t, rec.Body.String(), "File must be a CSV", "filename %q", name)
	}
}

func TestUploadRejectsBinaryContent(t *testing.T) {
	handler := NewUploadHandler(&fakeImportService{}, &fakeReportService{})

	rec := httptest.NewRecorder()
	handler.HandleUploadBankStatement(rec, uploadRequest(t, "file", "statement.csv", "PK\x03\x04\x00\x00binary"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadRequiresAuthentication(t *testing.T) {
	handler := NewUploadHandler(&fakeImportService{}, &fakeReportService{})

	body, contentType := multipartBody(t, "file", "statement.csv", "a,b\n")
	req := httptest.NewRequest(http.MethodPost, "/api/upload-bank-statement", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.HandleUploadBankStatement(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUploadReturnsImportReport(t *testing.T) {
	importService := &fakeImportService{
		report: &services.ImportReport{
			Message: "Processed 1 transactions successfully",
			TransactionsCreated: []services.CreatedTransaction{
				{ID: 1, Date: "01/15/2024", Description: "COFFEE", Category: "Food & Drink"},
			},
			TransactionsSkipped: []services.SkippedTransaction{},
			Errors:              []string{},
			Summary:             services.ImportSummary{Created: 1},
		},
	}
	reportService := &fakeReportService{}
	handler := NewUploadHandler(importService, reportService)

	rec := httptest.NewRecorder()
	csv := "Transaction Date,Description,Amount\n01/15/2024,COFFEE,-5.00\n"
	handler.HandleUploadBankStatement(rec, uploadRequest(t, "file", "statement.csv", csv))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(42), importService.gotUserID)

	var got services.ImportReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Processed 1 transactions successfully", got.Message)
	require.Len(t, got.TransactionsCreated, 1)
	assert.Equal(t, "COFFEE", got.TransactionsCreated[0].Description)

	// A successful import stales the cached reports.
	assert.Equal(t, []int64{42}, reportService.invalidated)
}

func TestUploadProcessingFailureIs500(t *testing.T) {
	importService := &fakeImportService{err: services.ErrParsingFailed}
	handler := NewUploadHandler(importService, &fakeReportService{})

	rec := httptest.NewRecorder()
	handler.HandleUploadBankStatement(rec, uploadRequest(t, "file", "statement.csv", "a,b\n"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Failed to process file")
}
