package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func nd(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.RequireFromString(s), Valid: true}
}

func TestInvestmentMarketPosition(t *testing.T) {
	inv := Investment{
		InvestmentType: InvestmentTypeStock,
		Quantity:       decimal.RequireFromString("10"),
		PurchasePrice:  decimal.RequireFromString("150.00"),
		CurrentPrice:   nd("180.00"),
	}

	assert.True(t, inv.TotalInvested().Equal(decimal.RequireFromString("1500")))
	assert.True(t, inv.CurrentValue().Equal(decimal.RequireFromString("1800")))
	assert.True(t, inv.GainLoss().Equal(decimal.RequireFromString("300")))
	assert.True(t, inv.GainLossPercentage().Equal(decimal.RequireFromString("20")))
}

func TestInvestmentWithoutCurrentPrice(t *testing.T) {
	inv := Investment{
		InvestmentType: InvestmentTypeETF,
		Quantity:       decimal.RequireFromString("5"),
		PurchasePrice:  decimal.RequireFromString("100"),
	}

	// No market price yet: current value falls back to cost, gain is zero.
	assert.True(t, inv.CurrentValue().Equal(decimal.RequireFromString("500")))
	assert.True(t, inv.GainLoss().IsZero())
	assert.True(t, inv.GainLossPercentage().IsZero())
}

func TestFixedIncomeCompoundValue(t *testing.T) {
	tests := []struct {
		name      string
		frequency string
		want      string
	}{
		// 10000 at 8% over 2 years: A = P(1 + r/n)^(nt)
		{"annual", CompoundingAnnual, "11664"},
		{"semi annual", CompoundingSemiAnnual, "11698.59"},
		{"quarterly", CompoundingQuarterly, "11716.59"},
		{"monthly", CompoundingMonthly, "11728.88"},
		{"unset defaults to annual", "", "11664"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := Investment{
				InvestmentType:       InvestmentTypeFixedIncome,
				PrincipalAmount:      nd("10000"),
				InterestRate:         nd("8"),
				TermYears:            nd("2"),
				CompoundingFrequency: tt.frequency,
			}
			assert.True(t, inv.CurrentValue().Equal(decimal.RequireFromString(tt.want)),
				"CurrentValue() = %s, want %s", inv.CurrentValue(), tt.want)
		})
	}
}

func TestFixedIncomeMissingTermsFallsBackToPrincipal(t *testing.T) {
	inv := Investment{
		InvestmentType:  InvestmentTypeFixedIncome,
		PrincipalAmount: nd("10000"),
	}
	assert.True(t, inv.CurrentValue().Equal(decimal.RequireFromString("10000")))
	assert.True(t, inv.TotalInvested().Equal(decimal.RequireFromString("10000")))
}

func TestInvestmentDueDate(t *testing.T) {
	inv := Investment{
		InvestmentType:  InvestmentTypeFixedIncome,
		PurchaseDate:    "2024-03-15",
		PrincipalAmount: nd("1000"),
		InterestRate:    nd("5"),
		TermYears:       nd("3"),
	}
	assert.Equal(t, "2027-03-15", inv.DueDate())

	inv.TermYears = decimal.NullDecimal{}
	assert.Equal(t, "", inv.DueDate())

	stock := Investment{InvestmentType: InvestmentTypeStock, PurchaseDate: "2024-03-15"}
	assert.Equal(t, "", stock.DueDate())
}

func TestInvestmentViewIncludesDerivedFields(t *testing.T) {
	inv := Investment{
		InvestmentType: InvestmentTypeStock,
		Quantity:       decimal.RequireFromString("2"),
		PurchasePrice:  decimal.RequireFromString("50"),
		CurrentPrice:   nd("60"),
	}
	view := inv.View()
	assert.True(t, view.TotalInvested.Equal(decimal.RequireFromString("100")))
	assert.True(t, view.CurrentValue.Equal(decimal.RequireFromString("120")))
	assert.True(t, view.GainLoss.Equal(decimal.RequireFromString("20")))
	assert.Equal(t, "", view.DueDate)
}
