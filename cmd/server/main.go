package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"treasurehunt/config"
	"treasurehunt/network"
	"treasurehunt/session"
	"treasurehunt/storage/sqlite"
	"treasurehunt/telemetry"
)

const shutdownTimeout = 5 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], nil); err != nil {
		log.Fatalf("%v", err)
	}
}

// parseConfig loads env defaults and then applies flags.
func parseConfig(args []string) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if port, err := config.GetEnvVariable("PORT"); err == nil {
		cfg.Addr = ":" + port
	}

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "sqlite results path (empty disables results)")
	if err := fs.Parse(args); err != nil {
		return config.Config{}, err
	}
	return cfg, cfg.Validate()
}

// run serves until ctx is done. ready, when set, receives the bound address.
func run(ctx context.Context, args []string, ready chan<- string) error {
	cfg, err := parseConfig(args)
	if err != nil {
		return err
	}

	shutdownTracing, err := telemetry.Setup(ctx, cfg.ServiceName, cfg.OTelEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Printf("otel shutdown: %v", err)
		}
	}()

	opts := session.Options{
		Tuning:      cfg.Tuning(),
		TickHz:      cfg.TickHz,
		BroadcastHz: cfg.BroadcastHz,
		Seed:        cfg.Seed,
		Tracer:      telemetry.NewSessionTracer(nil),
	}
	netCfg := network.Config{AllowedOrigins: cfg.AllowedOrigins}

	if cfg.DBPath != "" {
		store, err := sqlite.Open(ctx, cfg.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()
		opts.Recorder = store
		netCfg.Results = store
		log.Printf("results stored in %s", cfg.DBPath)
	}

	manager := session.NewManager(opts)
	// Runs before store.Close: waits for results still being written.
	defer manager.Close()

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Addr, err)
	}
	srv := &http.Server{
		Handler:           network.NewServer(manager, netCfg).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	log.Printf("listening on %s (ws endpoint: /ws)", ln.Addr())
	if ready != nil {
		ready <- ln.Addr().String()
	}

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
