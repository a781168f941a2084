package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nicoegiaian/AutomatizacionDeTransferenciasFinPay/api"
)

func serveAPI(app *appInstance) error {
	router := api.NewAPI(app.service).Router()
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", app.cnf.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("serving settlement api on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// In-flight settlement runs finish on their own detached context;
	// the shutdown window only covers request plumbing.
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}

func serverCommands(app *appInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "start the settlement api server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveAPI(app)
		},
	}
	return cmd
}
