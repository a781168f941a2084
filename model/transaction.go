package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is an immutable card-payment record. The two processed
// flags are independent: once a leg's flag is true that leg is never
// recomputed or re-sent for this transaction.
type Transaction struct {
	ID                 int64           `json:"-"`
	TransactionNumber  int64           `json:"transaction_number"`
	PaymentDate        time.Time       `json:"payment_date"`
	GrossAmount        decimal.Decimal `json:"gross_amount"`
	NetAmount          decimal.Decimal `json:"net_amount"`
	PointOfSaleID      int64           `json:"point_of_sale_id"`
	BusinessUnitID     int64           `json:"business_unit_id"`
	PDVProcessed       bool            `json:"pdv_transfer_processed"`
	PDVStatus          string          `json:"pdv_transfer_status,omitempty"`
	PDVReference       string          `json:"pdv_transfer_reference,omitempty"`
	ManufacturerPushed bool            `json:"manufacturer_transfer_processed"`
	GatewayResponse    string          `json:"gateway_response,omitempty"`
	TransferredAt      *time.Time      `json:"transferred_at,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
}

func (transaction *Transaction) ToJSON() ([]byte, error) {
	return json.Marshal(transaction)
}
