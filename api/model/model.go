package model

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const dateLayout = "2006-01-02"

// RunSettlement is the request body for starting a settlement run or a
// debit pull for one date.
type RunSettlement struct {
	SettlementDate string `json:"settlement_date"`
}

func (r *RunSettlement) ValidateRunSettlement() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.SettlementDate, validation.Required, validation.By(func(value interface{}) error {
			return validateDateFormat(dateLayout, value.(string))
		})),
	)
}

func (r *RunSettlement) ToDate() (time.Time, error) {
	return time.Parse(dateLayout, r.SettlementDate)
}

// MonthlyReportQuery is the request body for the monthly sweep report.
type MonthlyReportQuery struct {
	Period string `json:"period"`
}

func (q *MonthlyReportQuery) ValidateMonthlyReportQuery() error {
	return validation.ValidateStruct(q,
		validation.Field(&q.Period, validation.Required, validation.By(func(value interface{}) error {
			return validateDateFormat("2006-01", value.(string))
		})),
	)
}

func (q *MonthlyReportQuery) ToPeriod() (time.Time, error) {
	return time.Parse("2006-01", q.Period)
}

func validateDateFormat(format, value string) error {
	_, err := time.Parse(format, value)
	if err != nil {
		return errors.New("please format the date as '" + format + "'")
	}
	return nil
}
