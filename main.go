package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/spf13/cobra"

	"promotions/config"
	"promotions/handler"
	"promotions/router"
	"promotions/server"
	"promotions/store"
)

const shutdownTimeout = 10 * time.Second

type app struct {
	cfg    config.Config
	logger *slog.Logger
}

func newRootCmd(cfg config.Config) *cobra.Command {
	a := &app{cfg: cfg}

	root := &cobra.Command{
		Use:          "promotions",
		Short:        "Gift card and promo code API",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := config.NewLogger(cmd.ErrOrStderr(), a.cfg.LogLevel, a.cfg.LogFormat)
			if err != nil {
				return err
			}
			a.logger = logger
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfg.Addr, "addr", cfg.Addr, "Address to listen on")
	flags.StringVar(&a.cfg.Backend, "backend", cfg.Backend, "Table backend: dynamodb or local")
	flags.StringVar(&a.cfg.Region, "region", cfg.Region, "AWS region")
	flags.StringVar(&a.cfg.Endpoint, "endpoint", cfg.Endpoint, "DynamoDB endpoint override")
	flags.StringVar(&a.cfg.GiftCardTable, "gift-card-table", cfg.GiftCardTable, "Gift card table name")
	flags.StringVar(&a.cfg.PromoCodeTable, "promo-code-table", cfg.PromoCodeTable, "Promo code table name")
	flags.StringVar(&a.cfg.PersistDir, "persist-dir", cfg.PersistDir, "Directory for local table snapshots")
	flags.IntVar(&a.cfg.PageSize, "page-size", cfg.PageSize, "Max items per local Scan page (0 = unlimited)")
	flags.BoolVar(&a.cfg.ReusePort, "reuse-port", cfg.ReusePort, "Listen with SO_REUSEPORT")
	flags.StringVar(&a.cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	flags.StringVar(&a.cfg.LogFormat, "log-format", cfg.LogFormat, "text or json")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Serve the API over HTTP",
		Args:  cobra.NoArgs,
		RunE:  a.serve,
	})
	root.AddCommand(&cobra.Command{
		Use:   "create-tables",
		Short: "Create the gift card and promo code tables",
		Args:  cobra.NoArgs,
		RunE:  a.createTables,
	})

	var eventFile string
	invoke := &cobra.Command{
		Use:   "invoke",
		Short: "Dispatch one API Gateway event and print the response",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.invoke(cmd, eventFile)
		},
	}
	invoke.Flags().StringVar(&eventFile, "event", "", "Event JSON file (default stdin)")
	root.AddCommand(invoke)

	return root
}

func (a *app) tables() []string {
	return []string{a.cfg.GiftCardTable, a.cfg.PromoCodeTable}
}

func (a *app) backend(ctx context.Context) (store.Backend, error) {
	return store.NewBackend(ctx, a.cfg.Backend, store.BackendOptions{
		Logger: a.logger,
		Client: store.ClientOptions{
			Region:          a.cfg.Region,
			Endpoint:        a.cfg.Endpoint,
			AccessKeyID:     a.cfg.AccessKeyID,
			SecretAccessKey: a.cfg.SecretAccessKey,
		},
		Tables:     a.tables(),
		PersistDir: a.cfg.PersistDir,
		PageSize:   a.cfg.PageSize,
	})
}

func (a *app) router(api store.API) (*router.Router, error) {
	return router.New(router.Options{
		Logger: a.logger,
		GiftCards: handler.New(handler.Options{
			Logger:    a.logger,
			Records:   store.NewCollection(api, a.cfg.GiftCardTable, a.logger),
			ListField: "giftCards",
		}),
		PromoCodes: handler.New(handler.Options{
			Logger:    a.logger,
			Records:   store.NewCollection(api, a.cfg.PromoCodeTable, a.logger),
			ListField: "promoCodes",
		}),
	})
}

func (a *app) serve(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := a.backend(ctx)
	if err != nil {
		return err
	}
	for _, table := range a.tables() {
		err := store.CheckTable(ctx, backend, table)
		if err != nil {
			a.logger.Warn("Table is not ready", "table", table, "err", err)
		}
	}

	r, err := a.router(backend)
	if err != nil {
		return err
	}

	var lc net.ListenConfig
	if a.cfg.ReusePort {
		lc.Control = reusePortControl
	}
	listener, err := lc.Listen(ctx, "tcp", a.cfg.Addr)
	if err != nil {
		return err
	}

	srv := server.New(r.Handler())
	errs := make(chan error, 1)
	go func() {
		errs <- srv.Serve(listener)
	}()
	a.logger.Info("Listening", "addr", listener.Addr().String(), "backend", a.cfg.Backend)

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err = srv.Shutdown(shutdownCtx)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func reusePortControl(network, address string, conn syscall.RawConn) error {
	var sockErr error
	err := conn.Control(func(fd uintptr) {
		sockErr = setSockopt(fd)
	})
	if err != nil {
		return err
	}
	return sockErr
}

func (a *app) createTables(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	backend, err := a.backend(ctx)
	if err != nil {
		return err
	}

	for _, table := range a.tables() {
		created, err := store.CreateTable(ctx, backend, table)
		if err != nil {
			return err
		}
		if created {
			fmt.Fprintln(cmd.OutOrStdout(), "Created", table)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Exists", table)
		}
	}
	return nil
}

func (a *app) invoke(cmd *cobra.Command, eventFile string) error {
	var in io.Reader = cmd.InOrStdin()
	if eventFile != "" && eventFile != "-" {
		f, err := os.Open(eventFile)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	var event router.Event
	err := json.NewDecoder(in).Decode(&event)
	if err != nil {
		return fmt.Errorf("decoding event: %w", err)
	}

	ctx := cmd.Context()
	backend, err := a.backend(ctx)
	if err != nil {
		return err
	}

	r, err := a.router(backend)
	if err != nil {
		return err
	}
	resp := r.Dispatch(ctx, event)
	requestID := event.RequestContext.RequestID
	if requestID == "" {
		requestID = uuid.Must(uuid.NewV4()).String()
	}
	resp.Headers[server.RequestIDHeader] = requestID

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

func main() {
	cfg, err := config.Load(config.DefaultEnvFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	err = newRootCmd(cfg).ExecuteContext(context.Background())
	if err != nil {
		os.Exit(1)
	}
}
