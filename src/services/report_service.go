package services

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"github.com/username/budgetfolio/backend/src/logger"
	"github.com/username/budgetfolio/backend/src/models"
)

const (
	ckBalance              = "agg_balance_user_%d_period_%s"
	ckCategorySpending     = "agg_category_spending_user_%d_period_%s"
	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

type reportServiceImpl struct {
	db          *sql.DB
	reportCache *cache.Cache
}

// NewReportService builds the aggregation service over a database handle
// and a shared report cache.
func NewReportService(db *sql.DB, reportCache *cache.Cache) ReportService {
	return &reportServiceImpl{db: db, reportCache: reportCache}
}

// periodStart resolves a predefined period name to its start date,
// counting back from now.
func periodStart(period string, now time.Time) (time.Time, error) {
	switch period {
	case "week":
		return now.AddDate(0, 0, -7), nil
	case "month":
		return now.AddDate(0, 0, -30), nil
	case "quarter":
		return now.AddDate(0, 0, -90), nil
	case "year":
		return now.AddDate(0, 0, -365), nil
	}
	return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidPeriod, period)
}

// monthRange resolves a YYYY-MM period to the first and last day of that month.
func monthRange(period string) (time.Time, time.Time, error) {
	if len(period) != 7 || period[4] != '-' {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %s", ErrInvalidPeriod, period)
	}
	year, errY := strconv.Atoi(period[:4])
	month, errM := strconv.Atoi(period[5:])
	if errY != nil || errM != nil || month < 1 || month > 12 {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid year-month format", ErrInvalidPeriod)
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return start, end, nil
}

func (s *reportServiceImpl) Balance(userID int64, period string) (decimal.Decimal, error) {
	cacheKey := fmt.Sprintf(ckBalance, userID, period)
	if cached, found := s.reportCache.Get(cacheKey); found {
		return cached.(decimal.Decimal), nil
	}

	start, err := periodStart(period, time.Now())
	if err != nil {
		return decimal.Zero, err
	}

	total, err := s.sumAmounts(userID, start.Format("2006-01-02"), "")
	if err != nil {
		return decimal.Zero, err
	}

	s.reportCache.Set(cacheKey, total, DefaultCacheExpiration)
	return total, nil
}

func (s *reportServiceImpl) CategorySpending(userID int64, period string) (*models.CategorySpendingResult, error) {
	cacheKey := fmt.Sprintf(ckCategorySpending, userID, period)
	if cached, found := s.reportCache.Get(cacheKey); found {
		return cached.(*models.CategorySpendingResult), nil
	}

	now := time.Now()
	var start, end time.Time
	if len(period) == 7 && period[4] == '-' {
		var err error
		start, end, err = monthRange(period)
		if err != nil {
			return nil, err
		}
	} else {
		var err error
		start, err = periodStart(period, now)
		if err != nil {
			return nil, err
		}
		end = now
	}
	startStr := start.Format("2006-01-02")
	endStr := end.Format("2006-01-02")

	spendingByCategory, err := s.sumAmountsByCategory(userID, startStr, endStr)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`SELECT id, name, monthly_budget FROM categories WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	defer rows.Close()

	result := &models.CategorySpendingResult{
		Period:     period,
		StartDate:  startStr,
		EndDate:    endStr,
		Categories: []models.CategorySpendingEntry{},
	}
	hundred := decimal.NewFromInt(100)
	for rows.Next() {
		var entry models.CategorySpendingEntry
		if err := rows.Scan(&entry.ID, &entry.Name, &entry.Budget); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		entry.Spending = spendingByCategory[entry.ID]
		entry.Balance = entry.Budget.Sub(entry.Spending)
		if entry.Budget.IsPositive() {
			entry.PercentageUsed = entry.Spending.Div(entry.Budget).Mul(hundred).Round(2)
		} else {
			entry.PercentageUsed = decimal.Zero
		}
		result.Categories = append(result.Categories, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	s.reportCache.Set(cacheKey, result, DefaultCacheExpiration)
	return result, nil
}

// InvalidateUserReports drops every cached report belonging to the user.
func (s *reportServiceImpl) InvalidateUserReports(userID int64) {
	prefix := fmt.Sprintf("_user_%d_", userID)
	for key := range s.reportCache.Items() {
		if strings.Contains(key, prefix) {
			s.reportCache.Delete(key)
		}
	}
	logger.L.Debug("Report cache invalidated", "userID", userID)
}

// sumAmounts totals the user's transaction amounts with date >= start and,
// when endDate is non-empty, date <= end. Sums run in Go to keep decimal
// exactness; amounts are stored as text.
func (s *reportServiceImpl) sumAmounts(userID int64, startDate, endDate string) (decimal.Decimal, error) {
	query := `SELECT amount FROM transactions WHERE user_id = ? AND date >= ?`
	args := []interface{}{userID, startDate}
	if endDate != "" {
		query += ` AND date <= ?`
		args = append(args, endDate)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return decimal.Zero, fmt.Errorf("querying amounts: %w", err)
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var amount decimal.Decimal
		if err := rows.Scan(&amount); err != nil {
			return decimal.Zero, err
		}
		total = total.Add(amount)
	}
	return total, rows.Err()
}

func (s *reportServiceImpl) sumAmountsByCategory(userID int64, startDate, endDate string) (map[int64]decimal.Decimal, error) {
	rows, err := s.db.Query(`
		SELECT category_id, amount FROM transactions
		WHERE user_id = ? AND date >= ? AND date <= ?`, userID, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("querying amounts by category: %w", err)
	}
	defer rows.Close()

	sums := make(map[int64]decimal.Decimal)
	for rows.Next() {
		var categoryID int64
		var amount decimal.Decimal
		if err := rows.Scan(&categoryID, &amount); err != nil {
			return nil, err
		}
		sums[categoryID] = sums[categoryID].Add(amount)
	}
	return sums, rows.Err()
}
