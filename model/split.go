package model

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// MissingSplitRateError is returned when a pending transaction has no
// approved split record in force at its payment date. Money cannot be
// partitioned without one, so the whole computation fails.
type MissingSplitRateError struct {
	PointOfSaleID int64
}

func (e *MissingSplitRateError) Error() string {
	return fmt.Sprintf("no approved split rate in force for point of sale %d", e.PointOfSaleID)
}

// NegativeUnitAmountError is returned when the subsidy deduction exceeds
// a business unit's manufacturer share. This is a configuration fault and
// is never clamped to zero.
type NegativeUnitAmountError struct {
	UnitName string
	Amount   decimal.Decimal
}

func (e *NegativeUnitAmountError) Error() string {
	return fmt.Sprintf("computed manufacturer amount for unit %q is negative (%s); check split and subsidy configuration", e.UnitName, e.Amount.StringFixed(2))
}

// SplitInput carries everything the fund split calculator needs for one
// settlement date: the pending transactions and the reference data they
// resolve against.
type SplitInput struct {
	Transactions []*Transaction
	PointsOfSale map[int64]PointOfSale
	Units        map[int64]BusinessUnit
	SplitRates   map[int64][]SplitRate
	SubsidyRates []SubsidyRate
	VATPercent   decimal.Decimal
}

// RoundMoney rounds to 2 decimal places, half away from zero. Used for
// all intermediate commission and VAT figures.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// TruncateMoney truncates toward zero at 2 decimal places. Used for
// residual 90%-style splits so a liability is never rounded upward.
func TruncateMoney(d decimal.Decimal) decimal.Decimal {
	return d.RoundDown(2)
}

// ComputeSettlement partitions each pending transaction's net amount into
// a PDV share and a manufacturer share, deducts the subsidy plus its VAT
// from the manufacturer side, and aggregates per destination.
//
// A transaction contributes to a leg only while that leg's processed flag
// is false, which is what makes re-running a partially failed date safe.
func ComputeSettlement(in SplitInput) (*SettlementBreakdown, error) {
	pdvTotals := make(map[int64]decimal.Decimal)
	pdvTxns := make(map[int64][]int64)
	unitTotals := make(map[int64]decimal.Decimal)
	unitTxns := make(map[int64][]int64)

	vatFactor := decimal.NewFromInt(1).Add(in.VATPercent.Div(oneHundred))

	var allIDs []int64
	for _, txn := range in.Transactions {
		if txn.PDVProcessed && txn.ManufacturerPushed {
			continue
		}

		rate, ok := EffectiveSplitRate(in.SplitRates[txn.PointOfSaleID], txn.PaymentDate)
		if !ok {
			return nil, &MissingSplitRateError{PointOfSaleID: txn.PointOfSaleID}
		}

		pdvShare := RoundMoney(txn.NetAmount.Mul(rate.PDVPercent).Div(oneHundred))
		mfrShare := RoundMoney(txn.NetAmount.Mul(oneHundred.Sub(rate.PDVPercent)).Div(oneHundred))

		subsidyPercent := EffectiveSubsidyRate(in.SubsidyRates, txn.PaymentDate)
		deduction := RoundMoney(txn.GrossAmount.Mul(subsidyPercent).Div(oneHundred).Mul(vatFactor))

		if !txn.PDVProcessed {
			pdvTotals[txn.PointOfSaleID] = pdvTotals[txn.PointOfSaleID].Add(pdvShare)
			pdvTxns[txn.PointOfSaleID] = append(pdvTxns[txn.PointOfSaleID], txn.TransactionNumber)
		}
		if !txn.ManufacturerPushed {
			unitID := txn.BusinessUnitID
			unitTotals[unitID] = unitTotals[unitID].Add(mfrShare.Sub(deduction))
			unitTxns[unitID] = append(unitTxns[unitID], txn.TransactionNumber)
		}
		allIDs = append(allIDs, txn.TransactionNumber)
	}

	breakdown := &SettlementBreakdown{TransactionIDs: allIDs}

	pdvIDs := sortedKeys(pdvTotals)
	for _, id := range pdvIDs {
		pdv := in.PointsOfSale[id]
		unitName := in.Units[pdv.BusinessUnitID].Name
		breakdown.PDVTransfers = append(breakdown.PDVTransfers, PDVTransfer{
			PointOfSaleID:  id,
			LegalName:      pdv.LegalName,
			UnitName:       unitName,
			CBU:            pdv.CBU,
			Amount:         pdvTotals[id],
			TransactionIDs: pdvTxns[id],
		})
		breakdown.PDVTotal = breakdown.PDVTotal.Add(pdvTotals[id])
	}

	unitIDs := sortedKeys(unitTotals)
	for _, id := range unitIDs {
		unit := in.Units[id]
		amount := unitTotals[id]
		if amount.IsNegative() {
			return nil, &NegativeUnitAmountError{UnitName: unit.Name, Amount: amount}
		}
		breakdown.UnitTransfers = append(breakdown.UnitTransfers, UnitTransfer{
			BusinessUnitID: id,
			UnitName:       unit.Name,
			CBU:            unit.CBU,
			Amount:         amount,
			TransactionIDs: unitTxns[id],
		})
		breakdown.ManufacturerTotal = breakdown.ManufacturerTotal.Add(amount)
	}

	breakdown.TotalAmount = breakdown.PDVTotal.Add(breakdown.ManufacturerTotal)
	return breakdown, nil
}

func sortedKeys(m map[int64]decimal.Decimal) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
