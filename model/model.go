package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GenerateUUIDWithSuffix generates a UUID with a given module name as a prefix.
// This is useful for creating unique identifiers with context-specific prefixes.
func GenerateUUIDWithSuffix(module string) string {
	id := uuid.New()
	uuidStr := id.String()
	idWithSuffix := fmt.Sprintf("%s_%s", module, uuidStr)
	return idWithSuffix
}

// PointOfSale is a merchant destination. Transfers for the PDV leg are
// sent to its CBU/CVU account.
type PointOfSale struct {
	ID             int64  `json:"id"`
	LegalName      string `json:"legal_name"`
	CBU            string `json:"cbu"`
	BusinessUnitID int64  `json:"business_unit_id"`
}

// BusinessUnit is a manufacturer destination. The manufacturer leg pays
// each unit the aggregate of its PDVs' manufacturer shares.
type BusinessUnit struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	CBU  string `json:"cbu"`
}

// SplitRate is a time-versioned percentage split for a point of sale.
// The effective record for a payment date is the approved one with the
// latest effective date not after that payment date.
type SplitRate struct {
	ID            int64           `json:"id"`
	PointOfSaleID int64           `json:"point_of_sale_id"`
	PDVPercent    decimal.Decimal `json:"pdv_percent"`
	EffectiveDate time.Time       `json:"effective_date"`
	Status        string          `json:"status"`
}

const SplitRateApproved = "Approved"

// SubsidyRate is a time-versioned subsidy percentage applied to the
// transaction gross amount and deducted, VAT included, from the
// manufacturer share.
type SubsidyRate struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Percent       decimal.Decimal `json:"percent"`
	EffectiveDate time.Time       `json:"effective_date"`
}

// EffectiveSplitRate returns the approved split record with the latest
// effective date not after the payment date, or false when none applies.
func EffectiveSplitRate(rates []SplitRate, paymentDate time.Time) (SplitRate, bool) {
	var best SplitRate
	found := false
	for _, r := range rates {
		if r.Status != SplitRateApproved {
			continue
		}
		if r.EffectiveDate.After(paymentDate) {
			continue
		}
		if !found || r.EffectiveDate.After(best.EffectiveDate) {
			best = r
			found = true
		}
	}
	return best, found
}

// EffectiveSubsidyRate returns the subsidy percentage in force at the
// payment date. A date with no subsidy configured yields zero.
func EffectiveSubsidyRate(rates []SubsidyRate, paymentDate time.Time) decimal.Decimal {
	var best *SubsidyRate
	for i := range rates {
		r := &rates[i]
		if r.EffectiveDate.After(paymentDate) {
			continue
		}
		if best == nil || r.EffectiveDate.After(best.EffectiveDate) {
			best = r
		}
	}
	if best == nil {
		return decimal.Zero
	}
	return best.Percent
}
