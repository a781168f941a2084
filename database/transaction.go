package database

import (
	"context"
	"time"

	"github.com/lib/pq"

	"github.com/nicoegiaian/AutomatizacionDeTransferenciasFinPay/internal/apierror"
	"github.com/nicoegiaian/AutomatizacionDeTransferenciasFinPay/model"
)

// GetPendingTransactions retrieves the transactions for a payment date
// that still have at least one unprocessed leg. Fully settled
// transactions never reappear here, which is what makes a re-run after a
// partial failure pick up exactly the remainder.
func (d Datasource) GetPendingTransactions(ctx context.Context, settlementDate time.Time) ([]*model.Transaction, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT id, transaction_number, payment_date, gross_amount, net_amount,
		       point_of_sale_id, business_unit_id,
		       pdv_transfer_processed, COALESCE(pdv_transfer_status, ''), COALESCE(pdv_transfer_reference, ''),
		       manufacturer_transfer_processed, COALESCE(gateway_response, ''), transferred_at, created_at
		FROM transactions
		WHERE payment_date = $1
		  AND (pdv_transfer_processed = FALSE OR manufacturer_transfer_processed = FALSE)
		ORDER BY id
	`, settlementDate)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrPersistence, "Failed to retrieve pending transactions", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// MarkPDVLegProcessed flags the merchant leg processed for the given
// transaction numbers, recording the outcome and the gateway reference.
func (d Datasource) MarkPDVLegProcessed(ctx context.Context, ids []int64, status, reference, response string) error {
	_, err := d.Conn.ExecContext(ctx, `
		UPDATE transactions
		SET pdv_transfer_processed = TRUE,
		    pdv_transfer_status = $2,
		    pdv_transfer_reference = $3,
		    gateway_response = $4,
		    transferred_at = NOW()
		WHERE transaction_number = ANY($1)
	`, pq.Array(ids), status, reference, response)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrPersistence, "Failed to mark PDV leg processed", err)
	}
	return nil
}

// MarkManufacturerLegProcessed flags the manufacturer leg processed for
// the given transaction numbers.
func (d Datasource) MarkManufacturerLegProcessed(ctx context.Context, ids []int64, response string) error {
	_, err := d.Conn.ExecContext(ctx, `
		UPDATE transactions
		SET manufacturer_transfer_processed = TRUE,
		    gateway_response = $2,
		    transferred_at = NOW()
		WHERE transaction_number = ANY($1)
	`, pq.Array(ids), response)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrPersistence, "Failed to mark manufacturer leg processed", err)
	}
	return nil
}

type rowScanner interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

func scanTransactions(rows rowScanner) ([]*model.Transaction, error) {
	transactions := []*model.Transaction{}
	for rows.Next() {
		txn := model.Transaction{}
		err := rows.Scan(
			&txn.ID, &txn.TransactionNumber, &txn.PaymentDate, &txn.GrossAmount, &txn.NetAmount,
			&txn.PointOfSaleID, &txn.BusinessUnitID,
			&txn.PDVProcessed, &txn.PDVStatus, &txn.PDVReference,
			&txn.ManufacturerPushed, &txn.GatewayResponse, &txn.TransferredAt, &txn.CreatedAt,
		)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrPersistence, "Failed to scan transaction data", err)
		}
		transactions = append(transactions, &txn)
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrPersistence, "Error occurred while iterating over transactions", err)
	}
	return transactions, nil
}
