package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/nikolayk812/orderflow/internal/api"
	"github.com/nikolayk812/orderflow/internal/catalog"
	"github.com/nikolayk812/orderflow/internal/config"
	"github.com/nikolayk812/orderflow/internal/db"
	"github.com/nikolayk812/orderflow/internal/logger"
	"go.uber.org/zap"
)

const usage = `usage: orderflow <command> [-config path]

commands:
  serve           run the HTTP API and the auto-complete loop
  migrate         apply the database schema
  auto-complete   complete overdue shipped orders once
  purge-products  delete every product after typed confirmation
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cmd := os.Args[1]

	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	configPath := fs.String("config", os.Getenv("ORDERFLOW_CONFIG"), "path to a YAML config file")
	_ = fs.Parse(os.Args[2:])

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cmd, *configPath, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "orderflow:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd, configPath string, in io.Reader, out io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("logger.New: %w", err)
	}
	defer func() { _ = log.Sync() }()

	switch cmd {
	case "serve":
		return serve(ctx, cfg, log)
	case "migrate":
		return migrate(ctx, cfg, log)
	case "auto-complete":
		return autoComplete(ctx, cfg, log)
	case "purge-products":
		return purgeProducts(ctx, cfg, log, in, out)
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
}

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	router, err := api.NewRouter(api.Deps{
		Engine:   a.engine,
		Returns:  a.returns,
		Inbox:    a.inbox,
		Catalog:  a.catalog,
		Products: a.products,
		Metrics:  a.metrics,
		Logger:   log,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	if cfg.AutoComplete.Enabled {
		go a.autoCompleter.Run(ctx, cfg.AutoComplete.Interval)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

func migrate(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	if cfg.Database.Driver != config.DriverPostgres {
		return errors.New("migrate needs the postgres driver")
	}

	pool, err := newPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		return err
	}

	log.Info("schema applied")
	return nil
}

func autoComplete(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	n, err := a.autoCompleter.RunOnce(ctx)
	if err != nil {
		return err
	}

	log.Info("auto-complete finished", zap.Int("completed", n))
	return nil
}

func purgeProducts(ctx context.Context, cfg *config.Config, log *zap.Logger, in io.Reader, out io.Writer) error {
	fmt.Fprintf(out, "This removes every product. Products referenced by orders are deactivated instead.\n")
	fmt.Fprintf(out, "Type %q to continue: ", catalog.PurgeConfirmation)

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read confirmation: %w", err)
	}
	if strings.TrimRight(line, "\r\n") != catalog.PurgeConfirmation {
		return errors.New("confirmation did not match, nothing was deleted")
	}

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.catalog.DeleteAllReferenced(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s: %d products, %d media failures\n", result.Outcome, result.Affected, result.MediaFailures)
	return nil
}
