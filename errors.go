package finpay

import (
	"fmt"
	"time"

	"github.com/nicoegiaian/AutomatizacionDeTransferenciasFinPay/model"
)

// DuplicateRunError is returned when an orchestration run is requested
// for a date that already has an active lot or a pending debit pull.
// Only terminal failure states free a date for another attempt.
type DuplicateRunError struct {
	SettlementDate time.Time
	LotID          string
	Status         model.LegStatus
}

func (e *DuplicateRunError) Error() string {
	if e.LotID == "" {
		return fmt.Sprintf("a run for %s is already in progress", e.SettlementDate.Format("2006-01-02"))
	}
	return fmt.Sprintf("lot %s already covers %s (status %s)", e.LotID, e.SettlementDate.Format("2006-01-02"), e.Status)
}

// ConfigIntegrityError is returned when the reference data makes a
// correct split impossible: a missing approved rate or a subsidy that
// eats past a unit's share. No money moves; the lot closes in ERROR on
// both legs and an operator has to fix the configuration.
type ConfigIntegrityError struct {
	Cause error
}

func (e *ConfigIntegrityError) Error() string {
	return fmt.Sprintf("settlement configuration fault: %v", e.Cause)
}

func (e *ConfigIntegrityError) Unwrap() error {
	return e.Cause
}
