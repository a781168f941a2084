package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func newSplitInput(txns []*Transaction) SplitInput {
	effective := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return SplitInput{
		Transactions: txns,
		PointsOfSale: map[int64]PointOfSale{
			1: {ID: 1, LegalName: "Norte SRL", CBU: "2850590940090418135201", BusinessUnitID: 10},
		},
		Units: map[int64]BusinessUnit{
			10: {ID: 10, Name: "Baterias Norte", CBU: "2850590940090418135299"},
		},
		SplitRates: map[int64][]SplitRate{
			1: {{PointOfSaleID: 1, PDVPercent: decimal.NewFromInt(90), EffectiveDate: effective, Status: SplitRateApproved}},
		},
		SubsidyRates: []SubsidyRate{
			{Name: "Subsidio Fabricante", Percent: decimal.NewFromInt(2), EffectiveDate: effective},
		},
		VATPercent: decimal.NewFromInt(21),
	}
}

func TestComputeSettlementReferenceVector(t *testing.T) {
	// gross 1000.00, PDV split 90%, subsidy 2%, VAT 21%:
	// PDV share 900.00, subsidy deduction 1000*0.02*1.21 = 24.20,
	// manufacturer net 100.00 - 24.20 = 75.80.
	paymentDate := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	in := newSplitInput([]*Transaction{
		{
			TransactionNumber: 5001,
			PaymentDate:       paymentDate,
			GrossAmount:       decimal.NewFromInt(1000),
			NetAmount:         decimal.NewFromInt(1000),
			PointOfSaleID:     1,
			BusinessUnitID:    10,
		},
	})

	breakdown, err := ComputeSettlement(in)
	assert.NoError(t, err)

	assert.Len(t, breakdown.PDVTransfers, 1)
	assert.Equal(t, "900.00", breakdown.PDVTransfers[0].Amount.StringFixed(2))
	assert.Len(t, breakdown.UnitTransfers, 1)
	assert.Equal(t, "75.80", breakdown.UnitTransfers[0].Amount.StringFixed(2))
	assert.Equal(t, "975.80", breakdown.TotalAmount.StringFixed(2))
	assert.True(t, breakdown.TotalAmount.LessThanOrEqual(decimal.NewFromInt(1000)))
	assert.Equal(t, []int64{5001}, breakdown.PDVTransfers[0].TransactionIDs)
}

func TestComputeSettlementSkipsProcessedLegs(t *testing.T) {
	paymentDate := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	in := newSplitInput([]*Transaction{
		{
			TransactionNumber: 5002,
			PaymentDate:       paymentDate,
			GrossAmount:       decimal.NewFromInt(500),
			NetAmount:         decimal.NewFromInt(500),
			PointOfSaleID:     1,
			BusinessUnitID:    10,
			PDVProcessed:      true, // PDV leg already paid out
		},
	})

	breakdown, err := ComputeSettlement(in)
	assert.NoError(t, err)

	assert.Empty(t, breakdown.PDVTransfers)
	assert.Len(t, breakdown.UnitTransfers, 1)
	assert.True(t, breakdown.PDVTotal.IsZero())
}

func TestComputeSettlementEmptyInput(t *testing.T) {
	in := newSplitInput(nil)
	breakdown, err := ComputeSettlement(in)
	assert.NoError(t, err)
	assert.True(t, breakdown.IsEmpty())
	assert.Empty(t, breakdown.PDVTransfers)
	assert.Empty(t, breakdown.UnitTransfers)
}

func TestComputeSettlementMissingSplitRate(t *testing.T) {
	paymentDate := time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC) // before any effective date
	in := newSplitInput([]*Transaction{
		{
			TransactionNumber: 5003,
			PaymentDate:       paymentDate,
			GrossAmount:       decimal.NewFromInt(100),
			NetAmount:         decimal.NewFromInt(100),
			PointOfSaleID:     1,
			BusinessUnitID:    10,
		},
	})

	_, err := ComputeSettlement(in)
	assert.Error(t, err)
	var missing *MissingSplitRateError
	assert.ErrorAs(t, err, &missing)
	assert.Equal(t, int64(1), missing.PointOfSaleID)
}

func TestComputeSettlementNegativeManufacturerAmount(t *testing.T) {
	paymentDate := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	in := newSplitInput([]*Transaction{
		{
			TransactionNumber: 5004,
			PaymentDate:       paymentDate,
			// Subsidy is charged on gross; a gross far above net drives
			// the manufacturer share below zero.
			GrossAmount:    decimal.NewFromInt(100000),
			NetAmount:      decimal.NewFromInt(1000),
			PointOfSaleID:  1,
			BusinessUnitID: 10,
		},
	})

	_, err := ComputeSettlement(in)
	assert.Error(t, err)
	var negative *NegativeUnitAmountError
	assert.ErrorAs(t, err, &negative)
	assert.Equal(t, "Baterias Norte", negative.UnitName)
}

func TestEffectiveSplitRatePicksLatestApproved(t *testing.T) {
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	jun := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	rates := []SplitRate{
		{PDVPercent: decimal.NewFromInt(90), EffectiveDate: jan, Status: SplitRateApproved},
		{PDVPercent: decimal.NewFromInt(85), EffectiveDate: mar, Status: SplitRateApproved},
		{PDVPercent: decimal.NewFromInt(80), EffectiveDate: jun, Status: "Draft"},
	}

	rate, ok := EffectiveSplitRate(rates, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC))
	assert.True(t, ok)
	// Draft record is ignored even though its date is later.
	assert.Equal(t, "85", rate.PDVPercent.String())

	rate, ok = EffectiveSplitRate(rates, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	assert.True(t, ok)
	assert.Equal(t, "90", rate.PDVPercent.String())

	_, ok = EffectiveSplitRate(rates, time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC))
	assert.False(t, ok)
}

func TestRoundingHelpers(t *testing.T) {
	assert.Equal(t, "24.20", RoundMoney(decimal.RequireFromString("24.2000")).StringFixed(2))
	assert.Equal(t, "10.13", RoundMoney(decimal.RequireFromString("10.125")).StringFixed(2))
	assert.Equal(t, "10.12", TruncateMoney(decimal.RequireFromString("10.129")).StringFixed(2))
	assert.Equal(t, "-10.12", TruncateMoney(decimal.RequireFromString("-10.129")).StringFixed(2))
}
