package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	finpay "github.com/nicoegiaian/AutomatizacionDeTransferenciasFinPay"
)

func debinCommands(app *appInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "debin",
		Short: "manage debit pulls against the funding account",
	}
	cmd.AddCommand(debinPullCommand(app))
	cmd.AddCommand(debinMonitorCommand(app))
	return cmd
}

func debinPullCommand(app *appInstance) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "pull",
		Short: "initiate the debit pull for a settlement date",
		RunE: func(cmd *cobra.Command, args []string) error {
			settlementDate, err := parseDateFlag(date)
			if err != nil {
				return fmt.Errorf("invalid --date, expected YYYY-MM-DD: %v", err)
			}

			req, err := app.service.InitiateDebinPull(context.Background(), settlementDate)
			if err != nil {
				var dup *finpay.DuplicateRunError
				if errors.As(err, &dup) {
					fmt.Printf("nothing to do: %v\n", dup)
					return nil
				}
				return err
			}
			if req == nil {
				fmt.Println("nothing pending for this date")
				return nil
			}

			fmt.Printf("pull %s initiated: comprobante=%s status=%s\n", req.DebinID, req.ComprobanteID, req.Status)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "settlement date (YYYY-MM-DD), defaults to today")

	return cmd
}

// debinMonitorCommand runs one polling cycle. Meant to be invoked from
// cron every few minutes while pulls are open.
func debinMonitorCommand(app *appInstance) *cobra.Command {
	return &cobra.Command{
		Use:   "monitor",
		Short: "poll open pulls and dispatch the ones that settled",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.service.MonitorPendingPulls(context.Background())
		},
	}
}
