package main

import (
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	finpay "github.com/nicoegiaian/AutomatizacionDeTransferenciasFinPay"
	"github.com/nicoegiaian/AutomatizacionDeTransferenciasFinPay/config"
	"github.com/nicoegiaian/AutomatizacionDeTransferenciasFinPay/database"
	"github.com/nicoegiaian/AutomatizacionDeTransferenciasFinPay/internal/notification"
)

// CLI encapsulates the root Cobra command.
type CLI struct {
	cmd *cobra.Command
}

// appInstance holds the service instance and its configuration, shared
// by every subcommand through the persistent pre-run hook.
type appInstance struct {
	service *finpay.Finpay
	cnf     *config.Configuration
}

func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

func preRun(app *appInstance, configFile *string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := config.InitConfig(*configFile)
		if err != nil {
			log.Fatal("error loading config", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}

		service, err := setupService(cnf)
		if err != nil {
			notification.NotifyError(err)
			log.Fatal(err)
		}

		app.service = service
		app.cnf = cnf
		return nil
	}
}

func setupService(cfg *config.Configuration) (*finpay.Finpay, error) {
	db, err := database.NewDataSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("error getting datasource: %v", err)
	}

	service, err := finpay.NewFinpay(db)
	if err != nil {
		return nil, fmt.Errorf("error creating settlement service: %v", err)
	}
	return service, nil
}

// NewCLI creates the command-line interface for the settlement engine.
func NewCLI() *CLI {
	var configFile string
	app := &appInstance{}

	var rootCmd = &cobra.Command{
		Use:   "finpay",
		Short: "End-of-day settlement and fund distribution engine",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./finpay.json", "Configuration file for the settlement engine")
	rootCmd.PersistentPreRunE = preRun(app, &configFile)

	rootCmd.AddCommand(serverCommands(app))
	rootCmd.AddCommand(settleCommands(app))
	rootCmd.AddCommand(debinCommands(app))
	rootCmd.AddCommand(sweepCommands(app))
	rootCmd.AddCommand(reportCommands(app))

	return &CLI{cmd: rootCmd}
}

func (w CLI) executeCLI() {
	if err := w.cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()

	cli := NewCLI()
	cli.executeCLI()
}
