package database

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nicoegiaian/AutomatizacionDeTransferenciasFinPay/model"
)

// IDataSource defines the interface for data source operations, grouping related functionalities.
type IDataSource interface {
	transaction // Interface for transaction-related operations
	lot         // Interface for settlement lot operations
	debin       // Interface for debit-pull tracking operations
	destination // Interface for destination and rate lookups
	sweep       // Interface for balance-sweep operations
}

// transaction defines methods for handling settlement transactions.
type transaction interface {
	GetPendingTransactions(ctx context.Context, settlementDate time.Time) ([]*model.Transaction, error)         // Retrieves transactions with at least one unprocessed leg
	MarkPDVLegProcessed(ctx context.Context, ids []int64, status, reference, response string) error              // Flags the merchant leg processed for a set of transactions
	MarkManufacturerLegProcessed(ctx context.Context, ids []int64, response string) error                        // Flags the manufacturer leg processed for a set of transactions
}

// lot defines methods for handling settlement lots.
type lot interface {
	GetActiveLot(ctx context.Context, settlementDate time.Time) (*model.SettlementLot, error)                  // Retrieves the lot blocking a new run for the date, if any
	CreateLot(ctx context.Context, lot *model.SettlementLot) (*model.SettlementLot, error)                     // Inserts a new lot; a unique violation means a concurrent run won
	UpdateLotAmounts(ctx context.Context, lotID string, requested, pdv, manufacturer decimal.Decimal, transactionIDs []int64) error // Records the computed split on the lot
	UpdateLegStatus(ctx context.Context, lotID string, pdvStatus, manufacturerStatus model.LegStatus) error    // Updates both leg statuses
	CloseLot(ctx context.Context, lotID string, pdvStatus, manufacturerStatus model.LegStatus, unitDetail map[string]string) error // Finalizes the lot with per-destination detail
	GetLotsByDate(ctx context.Context, settlementDate time.Time) ([]*model.SettlementLot, error)               // Retrieves every lot recorded for the date
}

// debin defines methods for handling debit-pull requests.
type debin interface {
	GetActiveDebin(ctx context.Context, settlementDate time.Time) (*model.DebinRequest, error)   // Retrieves the non-rejected pull for the date, if any
	CreateDebin(ctx context.Context, req *model.DebinRequest) (*model.DebinRequest, error)       // Inserts a new pull record
	UpdateDebinStatus(ctx context.Context, debinID string, status model.DebinStatus) error       // Updates the pull status after polling
	MarkDebinPushed(ctx context.Context, debinID string) error                                   // Flags the push phase as dispatched
	GetPendingDebins(ctx context.Context) ([]*model.DebinRequest, error)                         // Retrieves pulls awaiting settlement or push
}

// destination defines methods for destination and rate lookups.
type destination interface {
	GetPointsOfSale(ctx context.Context) (map[int64]model.PointOfSale, error)  // Retrieves all merchant destinations keyed by id
	GetBusinessUnits(ctx context.Context) (map[int64]model.BusinessUnit, error) // Retrieves all manufacturer destinations keyed by id
	GetSplitRates(ctx context.Context) (map[int64][]model.SplitRate, error)    // Retrieves split rate history keyed by point of sale
	GetSubsidyRates(ctx context.Context, name string) ([]model.SubsidyRate, error) // Retrieves the named subsidy rate history
}

// sweep defines methods for handling balance sweeps.
type sweep interface {
	RecordSweep(ctx context.Context, lot *model.SweepLot) (*model.SweepLot, error)              // Inserts a sweep audit record
	UpdateSweep(ctx context.Context, sweepID, status, errorDetail string, references map[string]string) error // Finalizes a sweep record
	GetMonthlySweepSummary(ctx context.Context, period time.Time) (*model.MonthlySweepSummary, error) // Aggregates successful sweeps for a calendar month
}
