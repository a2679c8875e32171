package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"cinechain/config"
	"cinechain/core"
	"cinechain/observability/logging"
	"cinechain/rpc"
	"cinechain/storage"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("CINECHAIN_ENV"))

	cfg, err := config.Load(*configFile)
	if err != nil {
		logging.Setup("cinechaind", env, logging.Options{}).
			Error("Failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := logging.Setup("cinechaind", env, logging.Options{
		FilePath:   cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
	})

	admin, err := cfg.Admin()
	if err != nil {
		logger.Error("Invalid admin address", slog.Any("error", err))
		os.Exit(1)
	}
	wallet, err := cfg.Platform()
	if err != nil {
		logger.Error("Invalid platform wallet", slog.Any("error", err))
		os.Exit(1)
	}
	alloc, err := cfg.Alloc()
	if err != nil {
		logger.Error("Invalid genesis allocation", slog.Any("error", err))
		os.Exit(1)
	}

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		logger.Error("Failed to open database", slog.String("path", cfg.DataDir), slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	node := core.NewNode(db, core.Config{
		Admin:                admin,
		PlatformWallet:       wallet,
		PlatformFeeBps:       cfg.PlatformFeeBps,
		CertificateMaxSupply: cfg.CertificateMaxSupply,
		PausedModules:        cfg.Pauses.Modules(),
		EventReplay:          cfg.EventReplay,
	})

	if len(alloc) > 0 {
		if err := node.ApplyGenesisAlloc(alloc); err != nil {
			logger.Error("Failed to apply genesis allocation", slog.Any("error", err))
			os.Exit(1)
		}
	}

	token := cfg.RPCToken()
	if token == "" {
		logger.Warn("RPC auth token not configured; administrative methods disabled",
			slog.String("env", cfg.RPCTokenEnv))
	}

	server := rpc.NewServer(node, token, cfg.NetworkName)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("JSON-RPC server starting", slog.String("address", cfg.RPCAddress))
		errCh <- server.Start(cfg.RPCAddress)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("RPC server failed", slog.Any("error", err))
			os.Exit(1)
		}
	case s := <-sig:
		logger.Info("Shutting down", slog.String("signal", s.String()))
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Graceful shutdown failed", slog.Any("error", err))
		}
	}
}
