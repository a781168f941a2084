package database

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/nicoegiaian/AutomatizacionDeTransferenciasFinPay/internal/apierror"
	"github.com/nicoegiaian/AutomatizacionDeTransferenciasFinPay/model"
)

func newTestDatasource(t *testing.T) (Datasource, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return Datasource{Conn: db}, mock
}

func lotColumns() []string {
	return []string{
		"id", "lot_id", "settlement_date", "requested_amount", "pdv_amount", "manufacturer_amount",
		"pdv_status", "manufacturer_status", "unit_detail", "transaction_ids", "created_at",
	}
}

func TestGetActiveLotFound(t *testing.T) {
	ds, mock := newTestDatasource(t)
	date := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM settlement_lots")).
		WithArgs(date).
		WillReturnRows(sqlmock.NewRows(lotColumns()).AddRow(
			1, "lot_abc", date, "975.80", "900.00", "75.80",
			"COMPLETED", "COMPLETED", []byte(`{"PDV-Norte":"SENT"}`), []byte(`{10,11}`), time.Now(),
		))

	lot, err := ds.GetActiveLot(context.Background(), date)
	assert.NoError(t, err)
	assert.NotNil(t, lot)
	assert.Equal(t, model.LegCompleted, lot.PDVStatus)
	assert.Equal(t, "SENT", lot.UnitDetail["PDV-Norte"])
	assert.Equal(t, []int64{10, 11}, lot.TransactionIDs)
}

func TestGetActiveLotNone(t *testing.T) {
	ds, mock := newTestDatasource(t)
	date := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM settlement_lots")).
		WithArgs(date).
		WillReturnRows(sqlmock.NewRows(lotColumns()))

	lot, err := ds.GetActiveLot(context.Background(), date)
	assert.NoError(t, err)
	assert.Nil(t, lot)
}

func TestCreateLotConflictOnConcurrentRun(t *testing.T) {
	ds, mock := newTestDatasource(t)
	date := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO settlement_lots")).
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := ds.CreateLot(context.Background(), &model.SettlementLot{
		SettlementDate:     date,
		PDVStatus:          model.LegProcessing,
		ManufacturerStatus: model.LegProcessing,
	})
	assert.Error(t, err)
	assert.True(t, apierror.Is(err, apierror.ErrConflict))
}

func TestCreateLot(t *testing.T) {
	ds, mock := newTestDatasource(t)
	date := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO settlement_lots")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	lot, err := ds.CreateLot(context.Background(), &model.SettlementLot{
		SettlementDate:     date,
		PDVStatus:          model.LegProcessing,
		ManufacturerStatus: model.LegProcessing,
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(7), lot.ID)
	assert.Contains(t, lot.LotID, "lot_")
}

func TestUpdateLotAmounts(t *testing.T) {
	ds, mock := newTestDatasource(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE settlement_lots")).
		WithArgs("lot_abc", decimal.RequireFromString("975.80"), decimal.RequireFromString("900.00"),
			decimal.RequireFromString("75.80"), pq.Array([]int64{10, 11})).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := ds.UpdateLotAmounts(context.Background(), "lot_abc",
		decimal.RequireFromString("975.80"), decimal.RequireFromString("900.00"),
		decimal.RequireFromString("75.80"), []int64{10, 11})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateLegStatus(t *testing.T) {
	ds, mock := newTestDatasource(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE settlement_lots")).
		WithArgs("lot_abc", model.LegPartialError, model.LegProcessing).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := ds.UpdateLegStatus(context.Background(), "lot_abc", model.LegPartialError, model.LegProcessing)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCloseLotPersistsDetail(t *testing.T) {
	ds, mock := newTestDatasource(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE settlement_lots")).
		WithArgs("lot_abc", model.LegPartialError, model.LegError, []byte(`{"PDV-Norte":"SENT","PDV-Sur":"ERROR"}`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := ds.CloseLot(context.Background(), "lot_abc", model.LegPartialError, model.LegError,
		map[string]string{"PDV-Norte": "SENT", "PDV-Sur": "ERROR"})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
