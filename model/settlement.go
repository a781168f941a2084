package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SettlementLot is the durable record of one orchestration run for a
// settlement date. It is the idempotency gate and the audit trail: lots
// are mutated only by the orchestrator and never deleted.
type SettlementLot struct {
	ID                 int64           `json:"-"`
	LotID              string          `json:"lot_id"`
	SettlementDate     time.Time       `json:"settlement_date"`
	RequestedAmount    decimal.Decimal `json:"requested_amount"`
	PDVAmount          decimal.Decimal `json:"pdv_amount"`
	ManufacturerAmount decimal.Decimal `json:"manufacturer_amount"`
	PDVStatus          LegStatus       `json:"pdv_status"`
	ManufacturerStatus LegStatus       `json:"manufacturer_status"`
	UnitDetail         map[string]string `json:"unit_detail,omitempty"`
	TransactionIDs     []int64         `json:"transaction_ids,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
}

// DebinRequest tracks one debit-pull attempt against the funding account
// in the pull-then-push deployment model. A RECHAZADO record never blocks
// a new pull for the same date; any other record does.
type DebinRequest struct {
	ID                 int64           `json:"-"`
	DebinID            string          `json:"debin_id"`
	SettlementDate     time.Time       `json:"settlement_date"`
	ComprobanteID      string          `json:"comprobante_id"`
	PDVAmount          decimal.Decimal `json:"pdv_amount"`
	ManufacturerAmount decimal.Decimal `json:"manufacturer_amount"`
	Status             DebinStatus     `json:"status"`
	ProcessedPush      bool            `json:"processed_push"`
	TransactionIDs     []int64         `json:"transaction_ids"`
	CreatedAt          time.Time       `json:"created_at"`
}

// PDVTransfer is a computed per-destination transfer order for the PDV leg.
type PDVTransfer struct {
	PointOfSaleID  int64           `json:"point_of_sale_id"`
	LegalName      string          `json:"legal_name"`
	UnitName       string          `json:"unit_name"`
	CBU            string          `json:"cbu"`
	Amount         decimal.Decimal `json:"amount"`
	TransactionIDs []int64         `json:"transaction_ids"`
}

// UnitTransfer is a computed per-destination transfer order for the
// manufacturer leg, one per business unit.
type UnitTransfer struct {
	BusinessUnitID int64           `json:"business_unit_id"`
	UnitName       string          `json:"unit_name"`
	CBU            string          `json:"cbu"`
	Amount         decimal.Decimal `json:"amount"`
	TransactionIDs []int64         `json:"transaction_ids"`
}

// SettlementBreakdown is the fund split calculator output for one
// settlement date.
type SettlementBreakdown struct {
	TotalAmount        decimal.Decimal `json:"total_amount"`
	PDVTotal           decimal.Decimal `json:"pdv_total"`
	ManufacturerTotal  decimal.Decimal `json:"manufacturer_total"`
	PDVTransfers       []PDVTransfer   `json:"pdv_transfers"`
	UnitTransfers      []UnitTransfer  `json:"unit_transfers"`
	TransactionIDs     []int64         `json:"transaction_ids"`
}

// IsEmpty reports whether the date has nothing to settle.
func (b *SettlementBreakdown) IsEmpty() bool {
	return b.TotalAmount.LessThanOrEqual(decimal.Zero)
}

// DestinationOutcome is the per-destination result inside a leg run,
// keyed by destination name in the lot's detail map.
type DestinationOutcome string

const (
	OutcomeSent      DestinationOutcome = "SENT"
	OutcomeSimulated DestinationOutcome = "SIMULATED"
	OutcomeOmitted   DestinationOutcome = "OMITTED_ZERO"
	OutcomeNoAccount DestinationOutcome = "ERROR_NO_ACCOUNT"
	OutcomeError     DestinationOutcome = "ERROR"
)

// SweepLot records one balance-sweep run: the origin balance found, the
// retained commission and VAT, and the two outgoing distribution amounts.
type SweepLot struct {
	ID               int64           `json:"-"`
	SweepID          string          `json:"sweep_id"`
	InitialBalance   decimal.Decimal `json:"initial_balance"`
	CommissionAmount decimal.Decimal `json:"commission_amount"`
	VATAmount        decimal.Decimal `json:"vat_amount"`
	NetAmount        decimal.Decimal `json:"net_amount"`
	PartnerAmount    decimal.Decimal `json:"partner_amount"`
	PlatformAmount   decimal.Decimal `json:"platform_amount"`
	Status           string          `json:"status"`
	ErrorDetail      string          `json:"error_detail,omitempty"`
	References       map[string]string `json:"references,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// MonthlySweepSummary aggregates a month of successful sweeps for the
// monthly report email.
type MonthlySweepSummary struct {
	Period          time.Time       `json:"period"`
	LotCount        int             `json:"lot_count"`
	GrossTotal      decimal.Decimal `json:"gross_total"`
	CommissionTotal decimal.Decimal `json:"commission_total"`
	VATTotal        decimal.Decimal `json:"vat_total"`
	NetTotal        decimal.Decimal `json:"net_total"`
	PartnerTotal    decimal.Decimal `json:"partner_total"`
	PlatformTotal   decimal.Decimal `json:"platform_total"`
}
