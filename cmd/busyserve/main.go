package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/busylight-go/busylight/internal/config"
	"github.com/busylight-go/busylight/internal/server"
	"github.com/busylight-go/busylight/pkg/light"

	_ "github.com/busylight-go/busylight/pkg/light/blinkstick"
	_ "github.com/busylight-go/busylight/pkg/light/embrava"
	_ "github.com/busylight-go/busylight/pkg/light/kuando"
	_ "github.com/busylight-go/busylight/pkg/light/luxafor"
	_ "github.com/busylight-go/busylight/pkg/light/thingm"
)

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM, syscall.SIGINT,
	)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "busyserve: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		host    string
		port    int
		cfgPath string
		debug   bool
	)

	cmd := &cobra.Command{
		Use:           "busyserve",
		Short:         "Serve the light control HTTP API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if debug {
				cfg.Log.Level = "debug"
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&host, "host", "0.0.0.0", "address to bind")
	cmd.Flags().IntVar(&port, "port", 8000, "port to listen on")
	cmd.Flags().StringVar(&cfgPath, "config", "", "path to a YAML config file")
	cmd.Flags().BoolVarP(&debug, "debug", "D", false, "enable debug logging")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	log := cfg.Logger()
	slog.SetDefault(log)

	manager, err := light.NewManager(nil)
	if err != nil {
		return fmt.Errorf("open lights: %w", err)
	}
	defer manager.Release()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           server.New(ctx, &server.Options{Manager: manager, Config: cfg, Logger: log}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", slog.String("addr", cfg.Addr()))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
