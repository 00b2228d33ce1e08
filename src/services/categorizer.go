package services

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/username/budgetfolio/backend/src/models"
)

// KeywordRule maps a category name to the description keywords that select
// it. Rules are evaluated in order; the first rule with a substring match
// wins, so broader keywords belong further down the table.
type KeywordRule struct {
	Category string
	Keywords []string
}

// DefaultKeywordTable returns the shipped auto-categorization table.
func DefaultKeywordTable() []KeywordRule {
	return []KeywordRule{
		{Category: "Food & Drink", Keywords: []string{
			"restaurant", "food", "grocery", "supermarket", "cafe", "coffee",
			"pizza", "burger", "mcdonald", "chick-fil-a", "donut", "sq *",
			"golden corral",
		}},
		{Category: "Groceries", Keywords: []string{"fiesta mart", "foodland", "wm supercenter", "paypal *walmart"}},
		{Category: "Gas", Keywords: []string{"chevron", "exxon", "murphy", "love's", "super fuels", "7-eleven"}},
		{Category: "Health & Wellness", Keywords: []string{"bswhealth", "texas digestive", "cvs/pharmacy", "pharmacy"}},
		{Category: "Travel", Keywords: []string{"ntta", "aeroenlaces", "vivaaerob", "parking", "gaston garage"}},
		{Category: "Bills & Utilities", Keywords: []string{"metrob", "t-mobile", "eqt*swhp", "paypal *netflix"}},
		{Category: "Shopping", Keywords: []string{"dd's discount", "adobe", "home depot"}},
		{Category: "Home", Keywords: []string{"home depot"}},
		{Category: "Income", Keywords: []string{"salary", "payroll", "deposit", "transfer in", "income"}},
	}
}

// incomeCategoryName is the only auto-created keyword category that gets
// the income classification.
const incomeCategoryName = "Income"

// fallbackCategoryName catches rows no hint or keyword resolves.
const fallbackCategoryName = "Uncategorized"

// Categorizer assigns a category to an imported transaction: an explicit
// column hint first, then the keyword table, then the catch-all category.
// It may create categories as a side effect.
type Categorizer struct {
	store ImportStore
	table []KeywordRule
}

// NewCategorizer builds a Categorizer over the given store and keyword table.
func NewCategorizer(store ImportStore, table []KeywordRule) *Categorizer {
	return &Categorizer{store: store, table: table}
}

// Categorize resolves the category for one accepted row.
func (c *Categorizer) Categorize(userID int64, hint, description string, amount decimal.Decimal) (models.Category, error) {
	if hint != "" {
		return c.categorizeByHint(userID, hint, amount)
	}
	if category, ok, err := c.categorizeByKeyword(userID, description); err != nil || ok {
		return category, err
	}
	category, _, err := c.store.GetOrCreateCategory(userID, fallbackCategoryName, models.ClassificationSpend)
	return category, err
}

func (c *Categorizer) categorizeByHint(userID int64, hint string, amount decimal.Decimal) (models.Category, error) {
	classification := models.ClassificationForAmount(amount)
	category, created, err := c.store.GetOrCreateCategory(userID, hint, classification)
	if err != nil {
		return models.Category{}, err
	}
	if !created {
		if err := c.applyLastWriteWinsClassification(&category, classification); err != nil {
			return models.Category{}, err
		}
	}
	return category, nil
}

// applyLastWriteWinsClassification overwrites an existing category's
// classification with the one implied by the current transaction's sign.
// Whichever transaction imports last wins, so a single refund can flip a
// payroll category to spend. Kept as a separate policy function so it can
// be swapped out.
func (c *Categorizer) applyLastWriteWinsClassification(category *models.Category, classification string) error {
	if category.Classification == classification {
		return nil
	}
	if err := c.store.UpdateCategoryClassification(category.ID, classification); err != nil {
		return err
	}
	category.Classification = classification
	return nil
}

func (c *Categorizer) categorizeByKeyword(userID int64, description string) (models.Category, bool, error) {
	lowerDescription := strings.ToLower(description)
	for _, rule := range c.table {
		for _, keyword := range rule.Keywords {
			if strings.Contains(lowerDescription, keyword) {
				classification := models.ClassificationSpend
				if rule.Category == incomeCategoryName {
					classification = models.ClassificationIncome
				}
				category, _, err := c.store.GetOrCreateCategory(userID, rule.Category, classification)
				if err != nil {
					return models.Category{}, false, err
				}
				return category, true, nil
			}
		}
	}
	return models.Category{}, false, nil
}
