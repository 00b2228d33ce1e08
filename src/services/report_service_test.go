package services

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestPeriodStart(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		period string
		want   string
	}{
		{"week", "2024-06-08"},
		{"month", "2024-05-16"},
		{"quarter", "2024-03-17"},
		{"year", "2023-06-16"},
	}
	for _, tt := range tests {
		start, err := periodStart(tt.period, now)
		require.NoError(t, err, "period %q", tt.period)
		assert.Equal(t, tt.want, start.Format("2006-01-02"), "period %q", tt.period)
	}

	_, err := periodStart("decade", now)
	assert.ErrorIs(t, err, ErrInvalidPeriod)
	_, err = periodStart("", now)
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestMonthRange(t *testing.T) {
	start, end, err := monthRange("2024-02")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-01", start.Format("2006-01-02"))
	assert.Equal(t, "2024-02-29", end.Format("2006-01-02")) // leap year

	start, end, err = monthRange("2023-12")
	require.NoError(t, err)
	assert.Equal(t, "2023-12-01", start.Format("2006-01-02"))
	assert.Equal(t, "2023-12-31", end.Format("2006-01-02"))

	for _, bad := range []string{"2024-13", "2024-00", "2024/02", "24-02", "abcd-ef"} {
		_, _, err := monthRange(bad)
		assert.ErrorIs(t, err, ErrInvalidPeriod, "monthRange(%q)", bad)
	}
}

func newReportTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE categories (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			classification TEXT NOT NULL DEFAULT 'spend',
			monthly_budget TEXT NOT NULL DEFAULT '0'
		);
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
	return db
}

func insertTestTransaction(t *testing.T, db *sql.DB, userID int64, date, amount string, categoryID int64) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO transactions (user_id, date, amount, description, category_id)
		VALUES (?, ?, ?, 'test', ?)`, userID, date, amount, categoryID)
	require.NoError(t, err)
}

func TestBalanceSumsSignedAmounts(t *testing.T) {
	db := newReportTestDB(t)
	svc := NewReportService(db, cache.New(DefaultCacheExpiration, CacheCleanupInterval))

	_, err := db.Exec(`INSERT INTO categories (user_id, name) VALUES (1, 'Misc')`)
	require.NoError(t, err)

	today := time.Now().Format("2006-01-02")
	insertTestTransaction(t, db, 1, today, "100.00", 1)
	insertTestTransaction(t, db, 1, today, "-170.00", 1)
	// Another user's transaction must not leak in.
	insertTestTransaction(t, db, 2, today, "999.00", 1)
	// Outside the window.
	old := time.Now().AddDate(0, 0, -60).Format("2006-01-02")
	insertTestTransaction(t, db, 1, old, "-500.00", 1)

	balance, err := svc.Balance(1, "month")
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("-70")), "balance = %s", balance)

	_, err = svc.Balance(1, "fortnight")
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestBalanceUsesCacheUntilInvalidated(t *testing.T) {
	db := newReportTestDB(t)
	svc := NewReportService(db, cache.New(DefaultCacheExpiration, CacheCleanupInterval))

	_, err := db.Exec(`INSERT INTO categories (user_id, name) VALUES (1, 'Misc')`)
	require.NoError(t, err)

	today := time.Now().Format("2006-01-02")
	insertTestTransaction(t, db, 1, today, "50.00", 1)

	balance, err := svc.Balance(1, "week")
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("50")))

	insertTestTransaction(t, db, 1, today, "25.00", 1)

	// Cached value survives the write.
	balance, err = svc.Balance(1, "week")
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("50")))

	svc.InvalidateUserReports(1)

	balance, err = svc.Balance(1, "week")
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("75")))
}

func TestCategorySpendingBudgetMath(t *testing.T) {
	db := newReportTestDB(t)
	svc := NewReportService(db, cache.New(DefaultCacheExpiration, CacheCleanupInterval))

	res, err := db.Exec(`INSERT INTO categories (user_id, name, monthly_budget) VALUES (1, 'Groceries', '400')`)
	require.NoError(t, err)
	groceriesID, _ := res.LastInsertId()
	res, err = db.Exec(`INSERT INTO categories (user_id, name, monthly_budget) VALUES (1, 'Fun', '0')`)
	require.NoError(t, err)
	funID, _ := res.LastInsertId()

	insertTestTransaction(t, db, 1, "2024-02-10", "-100.00", groceriesID)
	insertTestTransaction(t, db, 1, "2024-02-20", "-50.00", groceriesID)
	insertTestTransaction(t, db, 1, "2024-03-01", "-999.00", groceriesID) // next month
	insertTestTransaction(t, db, 1, "2024-02-14", "-30.00", funID)

	result, err := svc.CategorySpending(1, "2024-02")
	require.NoError(t, err)
	assert.Equal(t, "2024-02", result.Period)
	assert.Equal(t, "2024-02-01", result.StartDate)
	assert.Equal(t, "2024-02-29", result.EndDate)
	require.Len(t, result.Categories, 2)

	groceries := result.Categories[0]
	assert.Equal(t, "Groceries", groceries.Name)
	assert.True(t, groceries.Spending.Equal(decimal.RequireFromString("-150")), "spending = %s", groceries.Spending)
	assert.True(t, groceries.Balance.Equal(decimal.RequireFromString("550")), "balance = %s", groceries.Balance)
	assert.True(t, groceries.PercentageUsed.Equal(decimal.RequireFromString("-37.5")), "pct = %s", groceries.PercentageUsed)

	fun := result.Categories[1]
	// Zero budget: percentage stays zero rather than dividing by zero.
	assert.True(t, fun.PercentageUsed.IsZero())

	_, err = svc.CategorySpending(1, "soon")
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestInvalidateUserReportsScopesToUser(t *testing.T) {
	reportCache := cache.New(DefaultCacheExpiration, CacheCleanupInterval)
	svc := NewReportService(nil, reportCache)

	reportCache.Set(fmt.Sprintf(ckBalance, int64(1), "week"), decimal.Zero, DefaultCacheExpiration)
	reportCache.Set(fmt.Sprintf(ckBalance, int64(2), "week"), decimal.Zero, DefaultCacheExpiration)

	svc.InvalidateUserReports(1)

	_, found := reportCache.Get(fmt.Sprintf(ckBalance, int64(1), "week"))
	assert.False(t, found)
	_, found = reportCache.Get(fmt.Sprintf(ckBalance, int64(2), "week"))
	assert.True(t, found)
}
