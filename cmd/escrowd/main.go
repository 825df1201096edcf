package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"escrowmarket/config"
	"escrowmarket/core/events"
	"escrowmarket/native/escrow"
	"escrowmarket/native/token"
	"escrowmarket/observability/logging"
	"escrowmarket/rpc"
	"escrowmarket/state"
	"escrowmarket/storage"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("ESCROWD_ENV"))

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.Setup("escrowd", env, cfg.LogFile, cfg.LogMaxSizeMB)

	db, err := openDatabase(cfg)
	if err != nil {
		logger.Error("open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	contract, err := cfg.Contract()
	if err != nil {
		logger.Error("parse contract address", slog.Any("error", err))
		os.Exit(1)
	}

	manager := state.NewManager(db)

	engine := escrow.NewEngine(contract)
	engine.SetState(manager)
	engine.SetParams(escrow.Params{
		MinListingWindow: cfg.MinListingWindow,
		AcceptTimeout:    cfg.AcceptTimeoutBlocks,
		DisputeTimeout:   cfg.DisputeTimeoutBlocks,
	})

	recorder := events.NewRecorder(cfg.EventHistorySize)
	engine.SetEmitter(recorder)

	ledger := token.NewLedger(manager)
	drip, err := cfg.FaucetDrip()
	if err != nil {
		logger.Error("parse faucet amount", slog.Any("error", err))
		os.Exit(1)
	}
	faucet := token.NewFaucet(manager, ledger, drip, cfg.FaucetCooldownBlocks)

	server := rpc.NewServer(engine, ledger, faucet, recorder, logger)

	srv := &http.Server{
		Addr:    cfg.ListenAddress,
		Handler: server,
	}

	go func() {
		logger.Info("escrow marketplace listening",
			slog.String("address", cfg.ListenAddress),
			slog.String("network", cfg.NetworkName),
			slog.String("backend", cfg.StorageBackend))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("listen", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info("shutting down escrow marketplace")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "graceful shutdown failed: %v\n", err)
	}
}

func openDatabase(cfg *config.Config) (storage.Database, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.StorageBackend)) {
	case "leveldb":
		return storage.NewLevelDB(cfg.DataDir)
	case "bolt":
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, err
		}
		return storage.NewBoltDB(filepath.Join(cfg.DataDir, "state.db"))
	case "memory":
		return storage.NewMemDB(), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.StorageBackend)
	}
}
