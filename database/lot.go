package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/nicoegiaian/AutomatizacionDeTransferenciasFinPay/internal/apierror"
	"github.com/nicoegiaian/AutomatizacionDeTransferenciasFinPay/model"
)

// GetActiveLot retrieves the lot that blocks a new run for the date.
// Lots with both legs in a terminal failure status do not block.
func (d Datasource) GetActiveLot(ctx context.Context, settlementDate time.Time) (*model.SettlementLot, error) {
	row := d.Conn.QueryRowContext(ctx, `
		SELECT id, lot_id, settlement_date, requested_amount, pdv_amount, manufacturer_amount,
		       pdv_status, manufacturer_status, unit_detail, transaction_ids, created_at
		FROM settlement_lots
		WHERE settlement_date = $1
		  AND (pdv_status IN ('PROCESSING', 'COMPLETED', 'AUDIT_COMPLETED')
		       OR manufacturer_status IN ('PROCESSING', 'COMPLETED', 'AUDIT_COMPLETED'))
		ORDER BY id DESC
		LIMIT 1
	`, settlementDate)

	lot, err := scanLot(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, apierror.NewAPIError(apierror.ErrPersistence, "Failed to retrieve active lot", err)
	}
	return lot, nil
}

// CreateLot inserts a new lot in PROCESSING state on both legs. A unique
// violation on the active-lot index means a concurrent run already holds
// the date and is surfaced as a conflict.
func (d Datasource) CreateLot(ctx context.Context, lot *model.SettlementLot) (*model.SettlementLot, error) {
	lot.LotID = model.GenerateUUIDWithSuffix("lot")
	lot.CreatedAt = time.Now()

	err := d.Conn.QueryRowContext(ctx, `
		INSERT INTO settlement_lots (lot_id, settlement_date, requested_amount, pdv_amount, manufacturer_amount, pdv_status, manufacturer_status, transaction_ids)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, lot.LotID, lot.SettlementDate, lot.RequestedAmount, lot.PDVAmount, lot.ManufacturerAmount,
		lot.PDVStatus, lot.ManufacturerStatus, pq.Array(lot.TransactionIDs)).Scan(&lot.ID)

	if err != nil {
		pqErr, ok := err.(*pq.Error)
		if ok && pqErr.Code.Name() == "unique_violation" {
			return nil, apierror.NewAPIError(apierror.ErrConflict, "An active lot already exists for this settlement date", err)
		}
		return nil, apierror.NewAPIError(apierror.ErrPersistence, "Failed to create settlement lot", err)
	}
	return lot, nil
}

// UpdateLotAmounts records the computed split amounts and the covered
// transactions on the lot.
func (d Datasource) UpdateLotAmounts(ctx context.Context, lotID string, requested, pdv, manufacturer decimal.Decimal, transactionIDs []int64) error {
	_, err := d.Conn.ExecContext(ctx, `
		UPDATE settlement_lots
		SET requested_amount = $2, pdv_amount = $3, manufacturer_amount = $4, transaction_ids = $5
		WHERE lot_id = $1
	`, lotID, requested, pdv, manufacturer, pq.Array(transactionIDs))
	if err != nil {
		return apierror.NewAPIError(apierror.ErrPersistence, "Failed to update lot amounts", err)
	}
	return nil
}

// UpdateLegStatus updates both leg statuses.
func (d Datasource) UpdateLegStatus(ctx context.Context, lotID string, pdvStatus, manufacturerStatus model.LegStatus) error {
	_, err := d.Conn.ExecContext(ctx, `
		UPDATE settlement_lots
		SET pdv_status = $2, manufacturer_status = $3
		WHERE lot_id = $1
	`, lotID, pdvStatus, manufacturerStatus)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrPersistence, "Failed to update lot status", err)
	}
	return nil
}

// CloseLot finalizes the lot with its leg statuses and the
// per-destination outcome detail.
func (d Datasource) CloseLot(ctx context.Context, lotID string, pdvStatus, manufacturerStatus model.LegStatus, unitDetail map[string]string) error {
	detailJSON, err := json.Marshal(unitDetail)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to marshal unit detail", err)
	}
	_, err = d.Conn.ExecContext(ctx, `
		UPDATE settlement_lots
		SET pdv_status = $2, manufacturer_status = $3, unit_detail = $4
		WHERE lot_id = $1
	`, lotID, pdvStatus, manufacturerStatus, detailJSON)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrPersistence, "Failed to close lot", err)
	}
	return nil
}

// GetLotsByDate retrieves every lot recorded for the date, newest first.
func (d Datasource) GetLotsByDate(ctx context.Context, settlementDate time.Time) ([]*model.SettlementLot, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT id, lot_id, settlement_date, requested_amount, pdv_amount, manufacturer_amount,
		       pdv_status, manufacturer_status, unit_detail, transaction_ids, created_at
		FROM settlement_lots
		WHERE settlement_date = $1
		ORDER BY id DESC
	`, settlementDate)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrPersistence, "Failed to retrieve lots", err)
	}
	defer rows.Close()

	lots := []*model.SettlementLot{}
	for rows.Next() {
		lot, err := scanLot(rows)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrPersistence, "Failed to scan lot data", err)
		}
		lots = append(lots, lot)
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrPersistence, "Error occurred while iterating over lots", err)
	}
	return lots, nil
}

type singleRowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLot(row singleRowScanner) (*model.SettlementLot, error) {
	lot := model.SettlementLot{}
	var detailJSON []byte
	var transactionIDs pq.Int64Array

	err := row.Scan(
		&lot.ID, &lot.LotID, &lot.SettlementDate, &lot.RequestedAmount, &lot.PDVAmount, &lot.ManufacturerAmount,
		&lot.PDVStatus, &lot.ManufacturerStatus, &detailJSON, &transactionIDs, &lot.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(detailJSON) > 0 {
		if err := json.Unmarshal(detailJSON, &lot.UnitDetail); err != nil {
			return nil, err
		}
	}
	lot.TransactionIDs = transactionIDs
	return &lot, nil
}
