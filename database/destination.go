package database

import (
	"context"

	"github.com/nicoegiaian/AutomatizacionDeTransferenciasFinPay/internal/apierror"
	"github.com/nicoegiaian/AutomatizacionDeTransferenciasFinPay/model"
)

// GetPointsOfSale retrieves every merchant destination keyed by id.
func (d Datasource) GetPointsOfSale(ctx context.Context) (map[int64]model.PointOfSale, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT id, legal_name, COALESCE(cbu, ''), business_unit_id
		FROM points_of_sale
		ORDER BY id
	`)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrPersistence, "Failed to retrieve points of sale", err)
	}
	defer rows.Close()

	result := map[int64]model.PointOfSale{}
	for rows.Next() {
		pos := model.PointOfSale{}
		if err := rows.Scan(&pos.ID, &pos.LegalName, &pos.CBU, &pos.BusinessUnitID); err != nil {
			return nil, apierror.NewAPIError(apierror.ErrPersistence, "Failed to scan point of sale data", err)
		}
		result[pos.ID] = pos
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrPersistence, "Error occurred while iterating over points of sale", err)
	}
	return result, nil
}

// GetBusinessUnits retrieves every manufacturer destination keyed by id.
func (d Datasource) GetBusinessUnits(ctx context.Context) (map[int64]model.BusinessUnit, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT id, name, COALESCE(cbu, '')
		FROM business_units
		ORDER BY id
	`)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrPersistence, "Failed to retrieve business units", err)
	}
	defer rows.Close()

	result := map[int64]model.BusinessUnit{}
	for rows.Next() {
		unit := model.BusinessUnit{}
		if err := rows.Scan(&unit.ID, &unit.Name, &unit.CBU); err != nil {
			return nil, apierror.NewAPIError(apierror.ErrPersistence, "Failed to scan business unit data", err)
		}
		result[unit.ID] = unit
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrPersistence, "Error occurred while iterating over business units", err)
	}
	return result, nil
}

// GetSplitRates retrieves the full split rate history keyed by point of
// sale. Effective-date resolution happens in the calculator, not in SQL,
// so a single load serves every transaction in the run.
func (d Datasource) GetSplitRates(ctx context.Context) (map[int64][]model.SplitRate, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT id, point_of_sale_id, pdv_percent, effective_date, status
		FROM split_rates
		ORDER BY point_of_sale_id, effective_date
	`)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrPersistence, "Failed to retrieve split rates", err)
	}
	defer rows.Close()

	result := map[int64][]model.SplitRate{}
	for rows.Next() {
		rate := model.SplitRate{}
		if err := rows.Scan(&rate.ID, &rate.PointOfSaleID, &rate.PDVPercent, &rate.EffectiveDate, &rate.Status); err != nil {
			return nil, apierror.NewAPIError(apierror.ErrPersistence, "Failed to scan split rate data", err)
		}
		result[rate.PointOfSaleID] = append(result[rate.PointOfSaleID], rate)
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrPersistence, "Error occurred while iterating over split rates", err)
	}
	return result, nil
}

// GetSubsidyRates retrieves the named subsidy rate history.
func (d Datasource) GetSubsidyRates(ctx context.Context, name string) ([]model.SubsidyRate, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT id, name, percent, effective_date
		FROM subsidy_rates
		WHERE name = $1
		ORDER BY effective_date
	`, name)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrPersistence, "Failed to retrieve subsidy rates", err)
	}
	defer rows.Close()

	result := []model.SubsidyRate{}
	for rows.Next() {
		rate := model.SubsidyRate{}
		if err := rows.Scan(&rate.ID, &rate.Name, &rate.Percent, &rate.EffectiveDate); err != nil {
			return nil, apierror.NewAPIError(apierror.ErrPersistence, "Failed to scan subsidy rate data", err)
		}
		result = append(result, rate)
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrPersistence, "Error occurred while iterating over subsidy rates", err)
	}
	return result, nil
}
