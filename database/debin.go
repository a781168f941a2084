package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/nicoegiaian/AutomatizacionDeTransferenciasFinPay/internal/apierror"
	"github.com/nicoegiaian/AutomatizacionDeTransferenciasFinPay/model"
)

// GetActiveDebin retrieves the non-rejected pull for the date. Only a
// RECHAZADO record frees the date for a new pull.
func (d Datasource) GetActiveDebin(ctx context.Context, settlementDate time.Time) (*model.DebinRequest, error) {
	row := d.Conn.QueryRowContext(ctx, `
		SELECT id, debin_id, settlement_date, COALESCE(comprobante_id, ''), pdv_amount, manufacturer_amount,
		       status, processed_push, transaction_ids, created_at
		FROM debin_requests
		WHERE settlement_date = $1 AND status <> 'RECHAZADO'
		ORDER BY id DESC
		LIMIT 1
	`, settlementDate)

	req, err := scanDebin(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, apierror.NewAPIError(apierror.ErrPersistence, "Failed to retrieve active debin", err)
	}
	return req, nil
}

// CreateDebin inserts a new pull record. The partial unique index
// surfaces a concurrent non-rejected pull for the same date as a
// conflict.
func (d Datasource) CreateDebin(ctx context.Context, req *model.DebinRequest) (*model.DebinRequest, error) {
	req.DebinID = model.GenerateUUIDWithSuffix("deb")
	req.CreatedAt = time.Now()

	err := d.Conn.QueryRowContext(ctx, `
		INSERT INTO debin_requests (debin_id, settlement_date, comprobante_id, pdv_amount, manufacturer_amount, status, processed_push, transaction_ids)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, req.DebinID, req.SettlementDate, req.ComprobanteID, req.PDVAmount, req.ManufacturerAmount,
		req.Status, req.ProcessedPush, pq.Array(req.TransactionIDs)).Scan(&req.ID)

	if err != nil {
		pqErr, ok := err.(*pq.Error)
		if ok && pqErr.Code.Name() == "unique_violation" {
			return nil, apierror.NewAPIError(apierror.ErrConflict, "A pending debin already exists for this settlement date", err)
		}
		return nil, apierror.NewAPIError(apierror.ErrPersistence, "Failed to create debin request", err)
	}
	return req, nil
}

// UpdateDebinStatus updates the pull status after polling the gateway.
func (d Datasource) UpdateDebinStatus(ctx context.Context, debinID string, status model.DebinStatus) error {
	_, err := d.Conn.ExecContext(ctx, `
		UPDATE debin_requests SET status = $2 WHERE debin_id = $1
	`, debinID, status)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrPersistence, "Failed to update debin status", err)
	}
	return nil
}

// MarkDebinPushed flags the push phase as dispatched so the monitor
// never double-pushes a settled pull.
func (d Datasource) MarkDebinPushed(ctx context.Context, debinID string) error {
	_, err := d.Conn.ExecContext(ctx, `
		UPDATE debin_requests SET processed_push = TRUE WHERE debin_id = $1
	`, debinID)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrPersistence, "Failed to mark debin pushed", err)
	}
	return nil
}

// GetPendingDebins retrieves pulls that still await settlement or push.
func (d Datasource) GetPendingDebins(ctx context.Context) ([]*model.DebinRequest, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT id, debin_id, settlement_date, COALESCE(comprobante_id, ''), pdv_amount, manufacturer_amount,
		       status, processed_push, transaction_ids, created_at
		FROM debin_requests
		WHERE processed_push = FALSE AND status NOT IN ('RECHAZADO', 'UNKNOWN_FOREVER')
		ORDER BY id
	`)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrPersistence, "Failed to retrieve pending debins", err)
	}
	defer rows.Close()

	requests := []*model.DebinRequest{}
	for rows.Next() {
		req, err := scanDebin(rows)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrPersistence, "Failed to scan debin data", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrPersistence, "Error occurred while iterating over debins", err)
	}
	return requests, nil
}

func scanDebin(row singleRowScanner) (*model.DebinRequest, error) {
	req := model.DebinRequest{}
	var transactionIDs pq.Int64Array

	err := row.Scan(
		&req.ID, &req.DebinID, &req.SettlementDate, &req.ComprobanteID, &req.PDVAmount, &req.ManufacturerAmount,
		&req.Status, &req.ProcessedPush, &transactionIDs, &req.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	req.TransactionIDs = transactionIDs
	return &req, nil
}
