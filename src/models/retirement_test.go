package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRetirementContributionMath(t *testing.T) {
	acct := RetirementAccount{
		MonthlyContribution:     decimal.RequireFromString("500"),
		EmployerMatchPercentage: decimal.RequireFromString("0.50"),
		EmployerMatchLimit:      decimal.RequireFromString("2000"),
	}

	assert.True(t, acct.AnnualContribution().Equal(decimal.RequireFromString("6000")))
	// 50% of 6000 is 3000, capped at the 2000 limit.
	assert.True(t, acct.EmployerMatchAmount().Equal(decimal.RequireFromString("2000")))
	assert.True(t, acct.TotalAnnualContribution().Equal(decimal.RequireFromString("8000")))
}

func TestRetirementMatchBelowLimit(t *testing.T) {
	acct := RetirementAccount{
		MonthlyContribution:     decimal.RequireFromString("200"),
		EmployerMatchPercentage: decimal.RequireFromString("0.50"),
		EmployerMatchLimit:      decimal.RequireFromString("5000"),
	}

	// 50% of 2400 stays under the cap.
	assert.True(t, acct.EmployerMatchAmount().Equal(decimal.RequireFromString("1200")))
	assert.True(t, acct.TotalAnnualContribution().Equal(decimal.RequireFromString("3600")))
}

func TestRetirementNoEmployerMatch(t *testing.T) {
	acct := RetirementAccount{
		MonthlyContribution: decimal.RequireFromString("300"),
	}
	assert.True(t, acct.EmployerMatchAmount().IsZero())
	assert.True(t, acct.TotalAnnualContribution().Equal(decimal.RequireFromString("3600")))
}

func TestRetirementViewIncludesDerivedFields(t *testing.T) {
	acct := RetirementAccount{
		Name:                    "Work 401k",
		MonthlyContribution:     decimal.RequireFromString("100"),
		EmployerMatchPercentage: decimal.RequireFromString("1.00"),
		EmployerMatchLimit:      decimal.RequireFromString("600"),
	}
	view := acct.View()
	assert.True(t, view.AnnualContribution.Equal(decimal.RequireFromString("1200")))
	assert.True(t, view.EmployerMatchAmount.Equal(decimal.RequireFromString("600")))
	assert.True(t, view.TotalAnnualContribution.Equal(decimal.RequireFromString("1800")))
}

func TestClassificationForAmount(t *testing.T) {
	assert.Equal(t, ClassificationIncome, ClassificationForAmount(decimal.RequireFromString("0.01")))
	assert.Equal(t, ClassificationSpend, ClassificationForAmount(decimal.RequireFromString("-0.01")))
	assert.Equal(t, ClassificationSpend, ClassificationForAmount(decimal.Zero))
}
