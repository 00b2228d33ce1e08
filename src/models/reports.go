package models

import "github.com/shopspring/decimal"

// CategorySpendingEntry is one category's budget versus actual spending
// within a reporting period.
type CategorySpendingEntry struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	Budget         decimal.Decimal `json:"budget"`
	Spending       decimal.Decimal `json:"spending"`
	Balance        decimal.Decimal `json:"balance"`
	PercentageUsed decimal.Decimal `json:"percentage_used"`
}

// CategorySpendingResult is the category-spending report envelope.
type CategorySpendingResult struct {
	Period     string                  `json:"period"`
	StartDate  string                  `json:"start_date"`
	EndDate    string                  `json:"end_date"`
	Categories []CategorySpendingEntry `json:"categories"`
}
