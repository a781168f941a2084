package finpay

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/nicoegiaian/AutomatizacionDeTransferenciasFinPay/config"
	"github.com/nicoegiaian/AutomatizacionDeTransferenciasFinPay/database"
	"github.com/nicoegiaian/AutomatizacionDeTransferenciasFinPay/gateway"
	"github.com/nicoegiaian/AutomatizacionDeTransferenciasFinPay/model"
)

// PaymentGateway is the funds-movement surface the orchestrator depends
// on. gateway.Client is the production implementation.
type PaymentGateway interface {
	GetAccountBalance(ctx context.Context, account string) (decimal.Decimal, error)
	TransferToThirdParty(ctx context.Context, destination string, amount decimal.Decimal, origin string, live bool) (*gateway.TransferResult, error)
	InitiateDebin(ctx context.Context, amount decimal.Decimal, reference string) (*gateway.DebinResult, error)
	GetDebinStatus(ctx context.Context, comprobanteID string) (model.DebinStatus, error)
}

// Finpay represents the main struct for the settlement application.
type Finpay struct {
	datasource  database.IDataSource
	gateway     PaymentGateway
	live        bool
	vatPercent  decimal.Decimal
	subsidyName string
	sweep       config.SweepConfig
}

// NewFinpay initializes a new instance of Finpay with the provided
// database datasource. It fetches the configuration and wires the
// payment gateway client behind an explicit token provider.
func NewFinpay(db database.IDataSource) (*Finpay, error) {
	configuration, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	tokens := gateway.NewTokenProvider(
		configuration.Gateway.TokenURL,
		configuration.Gateway.ClientID,
		configuration.Gateway.ClientSecret,
		configuration.Gateway.Scope,
		time.Duration(configuration.Gateway.TokenTTLSeconds)*time.Second,
	)
	client := gateway.NewClient(configuration.Gateway.APIURL, configuration.Gateway.OriginCVU, tokens)

	return &Finpay{
		datasource:  db,
		gateway:     client,
		live:        configuration.Gateway.EnableRealTransfer,
		vatPercent:  decimal.NewFromFloat(configuration.Settlement.VATPercent),
		subsidyName: configuration.Settlement.SubsidyName,
		sweep:       configuration.Sweep,
	}, nil
}

// GetLotsByDate retrieves every lot recorded for a settlement date.
func (f *Finpay) GetLotsByDate(ctx context.Context, settlementDate time.Time) ([]*model.SettlementLot, error) {
	return f.datasource.GetLotsByDate(ctx, settlementDate)
}

// computeBreakdown loads the pending transactions and reference data for
// a settlement date and runs the fund split calculator over them.
func (f *Finpay) computeBreakdown(ctx context.Context, settlementDate time.Time) (*model.SettlementBreakdown, error) {
	transactions, err := f.datasource.GetPendingTransactions(ctx, settlementDate)
	if err != nil {
		return nil, errors.Wrap(err, "loading pending transactions")
	}
	pointsOfSale, err := f.datasource.GetPointsOfSale(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "loading points of sale")
	}
	units, err := f.datasource.GetBusinessUnits(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "loading business units")
	}
	splitRates, err := f.datasource.GetSplitRates(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "loading split rates")
	}
	subsidyRates, err := f.datasource.GetSubsidyRates(ctx, f.subsidyName)
	if err != nil {
		return nil, errors.Wrap(err, "loading subsidy rates")
	}

	return model.ComputeSettlement(model.SplitInput{
		Transactions: transactions,
		PointsOfSale: pointsOfSale,
		Units:        units,
		SplitRates:   splitRates,
		SubsidyRates: subsidyRates,
		VATPercent:   f.vatPercent,
	})
}
