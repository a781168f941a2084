package database

import (
	"database/sql"
	"log"
	"sync"

	_ "github.com/lib/pq"

	"github.com/nicoegiaian/AutomatizacionDeTransferenciasFinPay/config"
)

// Declare a package-level variable to hold the singleton instance.
// Ensure the instance is not accessible outside the package.
var instance *Datasource
var once sync.Once

type Datasource struct {
	Conn *sql.DB
}

func NewDataSource(configuration *config.Configuration) (IDataSource, error) {
	con, err := GetDBConnection(configuration)
	if err != nil {
		return nil, err
	}
	return con, nil
}

// GetDBConnection provides a global access point to the instance and initializes it if it's not already.
func GetDBConnection(configuration *config.Configuration) (*Datasource, error) {
	var err error
	once.Do(func() {
		con, errConn := ConnectDB(configuration.DataSource.Dns)
		if errConn != nil {
			err = errConn
			return
		}
		instance = &Datasource{Conn: con}
	})
	if err != nil {
		return nil, err
	}
	return instance, nil
}

func ConnectDB(dns string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dns)
	if err != nil {
		return nil, err
	}
	err = db.Ping()
	if err != nil {
		log.Printf("database connection error ❌: %v", err)
		return nil, err
	}
	err = createBusinessUnitTable(db)
	if err != nil {
		return nil, err
	}
	err = createPointOfSaleTable(db)
	if err != nil {
		return nil, err
	}
	err = createRateTables(db)
	if err != nil {
		return nil, err
	}
	err = createTransactionTable(db)
	if err != nil {
		return nil, err
	}
	err = createSettlementLotTable(db)
	if err != nil {
		return nil, err
	}
	err = createDebinRequestTable(db)
	if err != nil {
		return nil, err
	}
	err = createSweepLotTable(db)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// createBusinessUnitTable creates a PostgreSQL table for the BusinessUnit struct
func createBusinessUnitTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS business_units (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			cbu TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

// createPointOfSaleTable creates a PostgreSQL table for the PointOfSale struct
func createPointOfSaleTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS points_of_sale (
			id SERIAL PRIMARY KEY,
			legal_name TEXT NOT NULL,
			cbu TEXT,
			business_unit_id BIGINT NOT NULL REFERENCES business_units(id),
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

// createRateTables creates the time-versioned split and subsidy rate tables.
func createRateTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS split_rates (
			id SERIAL PRIMARY KEY,
			point_of_sale_id BIGINT NOT NULL REFERENCES points_of_sale(id),
			pdv_percent NUMERIC(8,4) NOT NULL,
			effective_date DATE NOT NULL,
			status TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return err
	}
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS subsidy_rates (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			percent NUMERIC(8,4) NOT NULL,
			effective_date DATE NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

// createTransactionTable creates a PostgreSQL table for the Transaction struct
func createTransactionTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS transactions (
			id SERIAL PRIMARY KEY,
			transaction_number BIGINT NOT NULL UNIQUE,
			payment_date DATE NOT NULL,
			gross_amount NUMERIC(18,2) NOT NULL,
			net_amount NUMERIC(18,2) NOT NULL,
			point_of_sale_id BIGINT NOT NULL REFERENCES points_of_sale(id),
			business_unit_id BIGINT NOT NULL REFERENCES business_units(id),
			pdv_transfer_processed BOOLEAN NOT NULL DEFAULT FALSE,
			pdv_transfer_status TEXT,
			pdv_transfer_reference TEXT,
			manufacturer_transfer_processed BOOLEAN NOT NULL DEFAULT FALSE,
			gateway_response TEXT,
			transferred_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

// createSettlementLotTable creates the settlement lot table. The partial
// unique index is the mutual exclusion mechanism for concurrent runs:
// only one lot per date may sit in a non-failed status, so the second of
// two racing inserts fails with a unique violation.
func createSettlementLotTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS settlement_lots (
			id SERIAL PRIMARY KEY,
			lot_id TEXT NOT NULL UNIQUE,
			settlement_date DATE NOT NULL,
			requested_amount NUMERIC(18,2) NOT NULL DEFAULT 0,
			pdv_amount NUMERIC(18,2) NOT NULL DEFAULT 0,
			manufacturer_amount NUMERIC(18,2) NOT NULL DEFAULT 0,
			pdv_status TEXT NOT NULL,
			manufacturer_status TEXT NOT NULL,
			unit_detail JSONB,
			transaction_ids BIGINT[],
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return err
	}
	_, err = db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_settlement_lots_active
		ON settlement_lots (settlement_date)
		WHERE pdv_status IN ('PROCESSING', 'COMPLETED', 'AUDIT_COMPLETED')
		   OR manufacturer_status IN ('PROCESSING', 'COMPLETED', 'AUDIT_COMPLETED')
	`)
	return err
}

// createDebinRequestTable creates the debit-pull tracking table. The
// partial unique index allows a new pull for a date only after every
// earlier pull for that date was rejected.
func createDebinRequestTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS debin_requests (
			id SERIAL PRIMARY KEY,
			debin_id TEXT NOT NULL UNIQUE,
			settlement_date DATE NOT NULL,
			comprobante_id TEXT,
			pdv_amount NUMERIC(18,2) NOT NULL DEFAULT 0,
			manufacturer_amount NUMERIC(18,2) NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			processed_push BOOLEAN NOT NULL DEFAULT FALSE,
			transaction_ids BIGINT[],
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return err
	}
	_, err = db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_debin_requests_active
		ON debin_requests (settlement_date)
		WHERE status <> 'RECHAZADO'
	`)
	return err
}

// createSweepLotTable creates the balance-sweep audit table
func createSweepLotTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS sweep_lots (
			id SERIAL PRIMARY KEY,
			sweep_id TEXT NOT NULL UNIQUE,
			initial_balance NUMERIC(18,2) NOT NULL,
			commission_amount NUMERIC(18,2) NOT NULL,
			vat_amount NUMERIC(18,2) NOT NULL,
			net_amount NUMERIC(18,2) NOT NULL,
			partner_amount NUMERIC(18,2) NOT NULL,
			platform_amount NUMERIC(18,2) NOT NULL,
			status TEXT NOT NULL,
			error_detail TEXT,
			reference_detail JSONB,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	return err
}
