package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func sweepCommands(app *appInstance) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "drain the funding account into the partner and platform accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			lot, err := app.service.ExecuteSweep(context.Background())
			if err != nil {
				return err
			}
			if lot == nil {
				fmt.Println("nothing to sweep")
				return nil
			}

			fmt.Printf("sweep %s completed: swept=%s partner=%s platform=%s\n",
				lot.SweepID, lot.InitialBalance.StringFixed(2),
				lot.PartnerAmount.StringFixed(2), lot.PlatformAmount.StringFixed(2))
			return nil
		},
	}
}

func reportCommands(app *appInstance) *cobra.Command {
	var period string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "email the monthly sweep summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := time.Now().AddDate(0, -1, 0)
			if period != "" {
				parsed, err := time.Parse("2006-01", period)
				if err != nil {
					return fmt.Errorf("invalid --period, expected YYYY-MM: %v", err)
				}
				p = parsed
			}
			return app.service.SendMonthlyReport(context.Background(), p)
		},
	}
	cmd.Flags().StringVar(&period, "period", "", "report month (YYYY-MM), defaults to last month")

	return cmd
}
