package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nicoegiaian/AutomatizacionDeTransferenciasFinPay/internal/apierror"
	"github.com/nicoegiaian/AutomatizacionDeTransferenciasFinPay/model"
)

// RecordSweep inserts a sweep audit record.
func (d Datasource) RecordSweep(ctx context.Context, lot *model.SweepLot) (*model.SweepLot, error) {
	lot.SweepID = model.GenerateUUIDWithSuffix("swp")
	lot.CreatedAt = time.Now()

	err := d.Conn.QueryRowContext(ctx, `
		INSERT INTO sweep_lots (sweep_id, initial_balance, commission_amount, vat_amount, net_amount, partner_amount, platform_amount, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, lot.SweepID, lot.InitialBalance, lot.CommissionAmount, lot.VATAmount, lot.NetAmount,
		lot.PartnerAmount, lot.PlatformAmount, lot.Status).Scan(&lot.ID)

	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrPersistence, "Failed to record sweep", err)
	}
	return lot, nil
}

// UpdateSweep finalizes a sweep record with its outcome and the gateway
// references of the outgoing transfers.
func (d Datasource) UpdateSweep(ctx context.Context, sweepID, status, errorDetail string, references map[string]string) error {
	refJSON, err := json.Marshal(references)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to marshal sweep references", err)
	}
	_, err = d.Conn.ExecContext(ctx, `
		UPDATE sweep_lots
		SET status = $2, error_detail = $3, reference_detail = $4
		WHERE sweep_id = $1
	`, sweepID, status, errorDetail, refJSON)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrPersistence, "Failed to update sweep", err)
	}
	return nil
}

// GetMonthlySweepSummary aggregates the successful sweeps of the
// calendar month containing period.
func (d Datasource) GetMonthlySweepSummary(ctx context.Context, period time.Time) (*model.MonthlySweepSummary, error) {
	monthStart := time.Date(period.Year(), period.Month(), 1, 0, 0, 0, 0, period.Location())
	monthEnd := monthStart.AddDate(0, 1, 0)

	row := d.Conn.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(initial_balance), 0),
		       COALESCE(SUM(commission_amount), 0),
		       COALESCE(SUM(vat_amount), 0),
		       COALESCE(SUM(net_amount), 0),
		       COALESCE(SUM(partner_amount), 0),
		       COALESCE(SUM(platform_amount), 0)
		FROM sweep_lots
		WHERE status = 'COMPLETED' AND created_at >= $1 AND created_at < $2
	`, monthStart, monthEnd)

	summary := model.MonthlySweepSummary{Period: monthStart}
	var gross, commission, vat, net, partner, platform decimal.Decimal
	err := row.Scan(&summary.LotCount, &gross, &commission, &vat, &net, &partner, &platform)
	if err != nil {
		if err == sql.ErrNoRows {
			return &summary, nil
		}
		return nil, apierror.NewAPIError(apierror.ErrPersistence, "Failed to aggregate monthly sweeps", err)
	}
	summary.GrossTotal = gross
	summary.CommissionTotal = commission
	summary.VATTotal = vat
	summary.NetTotal = net
	summary.PartnerTotal = partner
	summary.PlatformTotal = platform
	return &summary, nil
}
