package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	finpay "github.com/nicoegiaian/AutomatizacionDeTransferenciasFinPay"
)

func parseDateFlag(raw string) (time.Time, error) {
	if raw == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Parse("2006-01-02", raw)
}

func settleCommands(app *appInstance) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "settle",
		Short: "run the two-leg fund distribution for a settlement date",
		RunE: func(cmd *cobra.Command, args []string) error {
			settlementDate, err := parseDateFlag(date)
			if err != nil {
				return fmt.Errorf("invalid --date, expected YYYY-MM-DD: %v", err)
			}

			lot, err := app.service.ExecuteSettlement(context.Background(), settlementDate)
			if err != nil {
				var dup *finpay.DuplicateRunError
				if errors.As(err, &dup) {
					fmt.Printf("nothing to do: %v\n", dup)
					return nil
				}
				return err
			}

			fmt.Printf("lot %s closed: PDV=%s manufacturer=%s amount=%s\n",
				lot.LotID, lot.PDVStatus, lot.ManufacturerStatus, lot.RequestedAmount.StringFixed(2))
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "settlement date (YYYY-MM-DD), defaults to today")

	return cmd
}
