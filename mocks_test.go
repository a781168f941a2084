package finpay

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/nicoegiaian/AutomatizacionDeTransferenciasFinPay/gateway"
	"github.com/nicoegiaian/AutomatizacionDeTransferenciasFinPay/model"
)

type mockDataSource struct {
	mock.Mock
}

func (m *mockDataSource) GetPendingTransactions(ctx context.Context, settlementDate time.Time) ([]*model.Transaction, error) {
	args := m.Called(ctx, settlementDate)
	return args.Get(0).([]*model.Transaction), args.Error(1)
}

func (m *mockDataSource) MarkPDVLegProcessed(ctx context.Context, ids []int64, status, reference, response string) error {
	args := m.Called(ctx, ids, status, reference, response)
	return args.Error(0)
}

func (m *mockDataSource) MarkManufacturerLegProcessed(ctx context.Context, ids []int64, response string) error {
	args := m.Called(ctx, ids, response)
	return args.Error(0)
}

func (m *mockDataSource) GetActiveLot(ctx context.Context, settlementDate time.Time) (*model.SettlementLot, error) {
	args := m.Called(ctx, settlementDate)
	if lot, ok := args.Get(0).(*model.SettlementLot); ok {
		return lot, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDataSource) CreateLot(ctx context.Context, lot *model.SettlementLot) (*model.SettlementLot, error) {
	args := m.Called(ctx, lot)
	if err := args.Error(1); err != nil {
		return nil, err
	}
	lot.LotID = "lot_test"
	return lot, nil
}

func (m *mockDataSource) UpdateLotAmounts(ctx context.Context, lotID string, requested, pdv, manufacturer decimal.Decimal, transactionIDs []int64) error {
	args := m.Called(ctx, lotID, requested, pdv, manufacturer, transactionIDs)
	return args.Error(0)
}

func (m *mockDataSource) UpdateLegStatus(ctx context.Context, lotID string, pdvStatus, manufacturerStatus model.LegStatus) error {
	args := m.Called(ctx, lotID, pdvStatus, manufacturerStatus)
	return args.Error(0)
}

func (m *mockDataSource) CloseLot(ctx context.Context, lotID string, pdvStatus, manufacturerStatus model.LegStatus, unitDetail map[string]string) error {
	args := m.Called(ctx, lotID, pdvStatus, manufacturerStatus, unitDetail)
	return args.Error(0)
}

func (m *mockDataSource) GetLotsByDate(ctx context.Context, settlementDate time.Time) ([]*model.SettlementLot, error) {
	args := m.Called(ctx, settlementDate)
	return args.Get(0).([]*model.SettlementLot), args.Error(1)
}

func (m *mockDataSource) GetActiveDebin(ctx context.Context, settlementDate time.Time) (*model.DebinRequest, error) {
	args := m.Called(ctx, settlementDate)
	if req, ok := args.Get(0).(*model.DebinRequest); ok {
		return req, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDataSource) CreateDebin(ctx context.Context, req *model.DebinRequest) (*model.DebinRequest, error) {
	args := m.Called(ctx, req)
	if err := args.Error(1); err != nil {
		return nil, err
	}
	req.DebinID = "deb_test"
	return req, nil
}

func (m *mockDataSource) UpdateDebinStatus(ctx context.Context, debinID string, status model.DebinStatus) error {
	args := m.Called(ctx, debinID, status)
	return args.Error(0)
}

func (m *mockDataSource) MarkDebinPushed(ctx context.Context, debinID string) error {
	args := m.Called(ctx, debinID)
	return args.Error(0)
}

func (m *mockDataSource) GetPendingDebins(ctx context.Context) ([]*model.DebinRequest, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*model.DebinRequest), args.Error(1)
}

func (m *mockDataSource) GetPointsOfSale(ctx context.Context) (map[int64]model.PointOfSale, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[int64]model.PointOfSale), args.Error(1)
}

func (m *mockDataSource) GetBusinessUnits(ctx context.Context) (map[int64]model.BusinessUnit, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[int64]model.BusinessUnit), args.Error(1)
}

func (m *mockDataSource) GetSplitRates(ctx context.Context) (map[int64][]model.SplitRate, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[int64][]model.SplitRate), args.Error(1)
}

func (m *mockDataSource) GetSubsidyRates(ctx context.Context, name string) ([]model.SubsidyRate, error) {
	args := m.Called(ctx, name)
	return args.Get(0).([]model.SubsidyRate), args.Error(1)
}

func (m *mockDataSource) RecordSweep(ctx context.Context, lot *model.SweepLot) (*model.SweepLot, error) {
	args := m.Called(ctx, lot)
	if err := args.Error(1); err != nil {
		return nil, err
	}
	lot.SweepID = "swp_test"
	return lot, nil
}

func (m *mockDataSource) UpdateSweep(ctx context.Context, sweepID, status, errorDetail string, references map[string]string) error {
	args := m.Called(ctx, sweepID, status, errorDetail, references)
	return args.Error(0)
}

func (m *mockDataSource) GetMonthlySweepSummary(ctx context.Context, period time.Time) (*model.MonthlySweepSummary, error) {
	args := m.Called(ctx, period)
	return args.Get(0).(*model.MonthlySweepSummary), args.Error(1)
}

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) GetAccountBalance(ctx context.Context, account string) (decimal.Decimal, error) {
	args := m.Called(ctx, account)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *mockGateway) TransferToThirdParty(ctx context.Context, destination string, amount decimal.Decimal, origin string, live bool) (*gateway.TransferResult, error) {
	args := m.Called(ctx, destination, amount, origin, live)
	if result, ok := args.Get(0).(*gateway.TransferResult); ok {
		return result, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGateway) InitiateDebin(ctx context.Context, amount decimal.Decimal, reference string) (*gateway.DebinResult, error) {
	args := m.Called(ctx, amount, reference)
	if result, ok := args.Get(0).(*gateway.DebinResult); ok {
		return result, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGateway) GetDebinStatus(ctx context.Context, comprobanteID string) (model.DebinStatus, error) {
	args := m.Called(ctx, comprobanteID)
	return args.Get(0).(model.DebinStatus), args.Error(1)
}
