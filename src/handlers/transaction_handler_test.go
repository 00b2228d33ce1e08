package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/budgetfolio/backend/src/database"
	"github.com/username/budgetfolio/backend/src/services"
	_ "modernc.org/sqlite"
)

// newHandlerTestDB swaps database.DB for an in-memory instance carrying
// just the tables these handlers touch.
func newHandlerTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE categories (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			classification TEXT NOT NULL DEFAULT 'spend',
			monthly_budget TEXT NOT NULL DEFAULT '0'
		);
		CREATE UNIQUE INDEX idx_categories_user_name ON categories(user_id, name);
		CREATE TABLE transactions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			date TEXT NOT NULL,
			amount TEXT NOT NULL,
			description TEXT NOT NULL,
			category_id INTEGER NOT NULL,
			transaction_type TEXT NOT NULL DEFAULT 'account',
			import_source TEXT,
			import_date TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			reference_id TEXT UNIQUE
		);`)
	require.NoError(t, err)

	previous := database.DB
	database.DB = db
	t.Cleanup(func() {
		database.DB = previous
		db.Close()
	})
	return db
}

func insertCategory(t *testing.T, db *sql.DB, userID int64, name string) int64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO categories (user_id, name) VALUES (?, ?)`, userID, name)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

func insertTransaction(t *testing.T, db *sql.DB, userID int64, categoryID int64, amount string) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO transactions (user_id, date, amount, description, category_id)
		VALUES (?, '2024-01-15', ?, 'test', ?)`, userID, amount, categoryID)
	require.NoError(t, err)
}

func authedJSONRequest(t *testing.T, method, target, body string, userID int64) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req.WithContext(ContextWithUserID(req.Context(), userID))
}

func TestBulkReclassifyTransactions(t *testing.T) {
	db := newHandlerTestDB(t)
	handler := NewTransactionHandler(services.NewReportService(db, cache.New(services.DefaultCacheExpiration, services.CacheCleanupInterval)))

	fromID := insertCategory(t, db, 1, "Shopping")
	toID := insertCategory(t, db, 1, "Home")
	insertTransaction(t, db, 1, fromID, "-10.00")
	insertTransaction(t, db, 1, fromID, "-20.00")
	insertTransaction(t, db, 1, toID, "-5.00")
	// Another user's transaction in a category with the same name.
	otherFrom := insertCategory(t, db, 2, "Shopping")
	insertTransaction(t, db, 2, otherFrom, "-99.00")

	body := `{"from_category_id": ` + jsonInt(fromID) + `, "to_category_id": ` + jsonInt(toID) + `}`
	rec := httptest.NewRecorder()
	handler.HandleBulkReclassifyTransactions(rec, authedJSONRequest(t, http.MethodPost, "/api/bulk-reclassify-transactions", body, 1))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Message             string `json:"message"`
		TransactionsUpdated int    `json:"transactions_updated"`
		FromCategory        string `json:"from_category"`
		ToCategory          string `json:"to_category"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.TransactionsUpdated)
	assert.Equal(t, "Shopping", resp.FromCategory)
	assert.Equal(t, "Home", resp.ToCategory)

	var remaining int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM transactions WHERE category_id = ?`, fromID).Scan(&remaining))
	assert.Equal(t, 0, remaining)
	var moved int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM transactions WHERE category_id = ?`, toID).Scan(&moved))
	assert.Equal(t, 3, moved)
	// User 2 untouched.
	var other int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM transactions WHERE category_id = ?`, otherFrom).Scan(&other))
	assert.Equal(t, 1, other)
}

func TestBulkReclassifyRejectsSameCategory(t *testing.T) {
	db := newHandlerTestDB(t)
	handler := NewTransactionHandler(services.NewReportService(db, cache.New(services.DefaultCacheExpiration, services.CacheCleanupInterval)))
	id := insertCategory(t, db, 1, "Shopping")

	body := `{"from_category_id": ` + jsonInt(id) + `, "to_category_id": ` + jsonInt(id) + `}`
	rec := httptest.NewRecorder()
	handler.HandleBulkReclassifyTransactions(rec, authedJSONRequest(t, http.MethodPost, "/api/bulk-reclassify-transactions", body, 1))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBulkReclassifyRejectsForeignCategory(t *testing.T) {
	db := newHandlerTestDB(t)
	handler := NewTransactionHandler(services.NewReportService(db, cache.New(services.DefaultCacheExpiration, services.CacheCleanupInterval)))

	theirs := insertCategory(t, db, 2, "Theirs")
	mine := insertCategory(t, db, 1, "Mine")

	body := `{"from_category_id": ` + jsonInt(theirs) + `, "to_category_id": ` + jsonInt(mine) + `}`
	rec := httptest.NewRecorder()
	handler.HandleBulkReclassifyTransactions(rec, authedJSONRequest(t, http.MethodPost, "/api/bulk-reclassify-transactions", body, 1))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBulkDeleteTransactions(t *testing.T) {
	db := newHandlerTestDB(t)
	handler := NewTransactionHandler(services.NewReportService(db, cache.New(services.DefaultCacheExpiration, services.CacheCleanupInterval)))

	a := insertCategory(t, db, 1, "A")
	b := insertCategory(t, db, 1, "B")
	keep := insertCategory(t, db, 1, "Keep")
	insertTransaction(t, db, 1, a, "-1.00")
	insertTransaction(t, db, 1, a, "-2.00")
	insertTransaction(t, db, 1, b, "-3.00")
	insertTransaction(t, db, 1, keep, "-4.00")

	body := `{"category_ids": [` + jsonInt(a) + `, ` + jsonInt(b) + `]}`
	rec := httptest.NewRecorder()
	handler.HandleBulkDeleteTransactions(rec, authedJSONRequest(t, http.MethodPost, "/api/bulk-delete-transactions", body, 1))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		TransactionsDeleted int `json:"transactions_deleted"`
		CategoriesProcessed int `json:"categories_processed"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.TransactionsDeleted)
	assert.Equal(t, 2, resp.CategoriesProcessed)

	var remaining int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM transactions WHERE user_id = 1`).Scan(&remaining))
	assert.Equal(t, 1, remaining)
}

func TestBulkDeleteRequiresCategoryIDs(t *testing.T) {
	newHandlerTestDB(t)
	handler := NewTransactionHandler(&fakeReportService{})

	rec := httptest.NewRecorder()
	handler.HandleBulkDeleteTransactions(rec, authedJSONRequest(t, http.MethodPost, "/api/bulk-delete-transactions", `{"category_ids": []}`, 1))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReportHandlerPeriodRouting(t *testing.T) {
	db := newHandlerTestDB(t)
	reportService := services.NewReportService(db, cache.New(services.DefaultCacheExpiration, services.CacheCleanupInterval))
	handler := NewReportHandler(reportService)

	categoryID := insertCategory(t, db, 1, "Misc")
	insertTransaction(t, db, 1, categoryID, "-10.00")

	router := chi.NewRouter()
	router.Get("/api/balance/{period}", handler.HandleGetBalance)
	router.Get("/api/category-spending/{period}", handler.HandleGetCategorySpending)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/balance/week", nil)
	router.ServeHTTP(rec, req.WithContext(ContextWithUserID(req.Context(), 1)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var balance map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &balance))
	_, ok := balance["balance_week"]
	assert.True(t, ok, "response %s", rec.Body.String())

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/balance/fortnight", nil)
	router.ServeHTTP(rec, req.WithContext(ContextWithUserID(req.Context(), 1)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/category-spending/2024-01", nil)
	router.ServeHTTP(rec, req.WithContext(ContextWithUserID(req.Context(), 1)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"2024-01-01"`)
}

func jsonInt(v int64) string {
	return strconv.FormatInt(v, 10)
}
