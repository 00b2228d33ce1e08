package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestHeritageGainLoss(t *testing.T) {
	h := Heritage{
		PurchasePrice: decimal.RequireFromString("200000"),
		CurrentValue:  nd("260000"),
	}
	assert.True(t, h.GainLoss().Equal(decimal.RequireFromString("60000")))
	assert.True(t, h.GainLossPercentage().Equal(decimal.RequireFromString("30")))

	// No appraisal recorded yet.
	h.CurrentValue = decimal.NullDecimal{}
	assert.True(t, h.GainLoss().IsZero())
	assert.True(t, h.GainLossPercentage().IsZero())
}

func TestHeritageGainLossPercentageZeroPurchasePrice(t *testing.T) {
	h := Heritage{CurrentValue: nd("50000")}
	assert.True(t, h.GainLossPercentage().IsZero())
}

func TestHeritageRentalYield(t *testing.T) {
	h := Heritage{
		PurchasePrice:       decimal.RequireFromString("200000"),
		CurrentValue:        nd("240000"),
		MonthlyRentalIncome: decimal.RequireFromString("1500"),
	}
	assert.True(t, h.AnnualRentalIncome().Equal(decimal.RequireFromString("18000")))
	assert.True(t, h.RentalYieldPercentage().Equal(decimal.RequireFromString("7.5")))

	// Yield needs a positive current value.
	h.CurrentValue = decimal.NullDecimal{}
	assert.True(t, h.RentalYieldPercentage().IsZero())
}

func TestHeritageViewIncludesDerivedFields(t *testing.T) {
	h := Heritage{
		Name:                "Rental unit",
		PurchasePrice:       decimal.RequireFromString("100000"),
		CurrentValue:        nd("110000"),
		MonthlyRentalIncome: decimal.RequireFromString("1000"),
	}
	view := h.View()
	assert.True(t, view.GainLoss.Equal(decimal.RequireFromString("10000")))
	assert.True(t, view.GainLossPercentage.Equal(decimal.RequireFromString("10")))
	assert.True(t, view.AnnualRentalIncome.Equal(decimal.RequireFromString("12000")))
	assert.True(t, view.RentalYieldPercentage.Equal(decimal.RequireFromString("10.91")))
}
