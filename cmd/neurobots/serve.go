package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yungbote/neurobots-backend/internal/app"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := app.New(ctx)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			a.Close(shutdownCtx)
		}()
		if err := a.Start(); err != nil {
			return err
		}

		addr := serveAddr
		if addr == "" {
			addr = ":" + a.Cfg.Port
		}
		errCh := make(chan error, 1)
		go func() { errCh <- a.Run(addr) }()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
			a.Log.Info("shutdown signal received")
			return nil
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (defaults to :$PORT)")
}
