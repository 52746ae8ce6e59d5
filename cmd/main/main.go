package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"market-sync/src/bank"
	"market-sync/src/client"
	"market-sync/src/config"
	"market-sync/src/coordinator"
	"market-sync/src/derived"
	"market-sync/src/interfaces"
	"market-sync/src/logger"
	"market-sync/src/network"
	"market-sync/src/portfolio"
	"market-sync/src/server"
	"market-sync/src/session"
	"market-sync/src/social"
	"market-sync/src/storage"
	"market-sync/src/stream"
	"market-sync/src/utils"
)

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	flag.Parse()

	// Load config from YAML file
	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	appLogger := logger.NewLogger(cfg.LogLevel, cfg.Name)

	// 2. Token vault
	var vault interfaces.ITokenVault

	switch cfg.Storage.DBType {
	case "postgres":
		vault, err = storage.NewPostgresVault(cfg.MConfig, appLogger)
	default:
		// Default to SQLite
		vault, err = storage.NewSQLiteVault(cfg.MConfig, appLogger)
	}

	if err != nil {
		appLogger.Critical("Failed to init vault: %v", err)
	}
	if err := vault.Initialize(); err != nil {
		appLogger.Critical("Failed to migrate vault: %v", err)
	}
	defer vault.Close()

	// 3. Upstream plumbing. The network manager reads its bearer token from
	// the session store, which in turn uses the network manager through the
	// API client, so the token provider closes over the store variable.
	var sessionStore *session.Store

	netMgr := network.NewAuthNetworkManager(cfg.MConfig, appLogger, func() string {
		if sessionStore == nil {
			return ""
		}
		return sessionStore.Token()
	})

	api := client.NewAPIClient(netMgr, appLogger)

	refreshInterval := time.Duration(cfg.Sync.SessionRefreshSeconds) * time.Second
	sessionStore = session.NewStore(api, vault, refreshInterval, appLogger)

	// Auth rejection anywhere tears the session down system-wide
	netMgr.SetUnauthorizedHook(sessionStore.Teardown)

	// 4. Push channel
	transport := stream.NewWSTransport(time.Duration(cfg.Network.RequestTimeout) * time.Second)
	normalizer := stream.NewNormalizer(appLogger)
	streamURL := stream.WSURLFromBase(cfg.Upstream.BaseURL, cfg.Upstream.WSPath)
	reconnectDelay := time.Duration(cfg.Sync.ReconnectDelayMs) * time.Millisecond
	connMgr := stream.NewConnectionManager(transport, normalizer, streamURL, reconnectDelay, appLogger)

	// 5. Derived state and secondary trackers
	engine := derived.NewEngine()
	history := utils.NewHistoryKeeper(512, cfg.Sync.HistoryPoints, appLogger) // 512MB heap budget
	leaderboard := social.NewTracker(api, time.Duration(cfg.Sync.LeaderboardRefreshSeconds)*time.Second, appLogger)
	freeze := bank.NewFreezeMonitor(api, appLogger)
	holdings := portfolio.NewTracker(api, engine, appLogger)

	// 6. Local surface for UI shells
	srv := server.NewSyncServer(cfg.MConfig, server.Deps{
		Session: sessionStore,
		API:     api,
		Engine:  engine,
		History: history,
		Social:  leaderboard,
		Bank:    freeze,
	}, appLogger)

	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Error("Server failed: %v", err)
		}
	}()

	// 7. Wire the pipeline
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wrapWg := &sync.WaitGroup{}

	coord := coordinator.NewCoordinator(sessionStore, connMgr, engine, history, leaderboard, freeze, holdings, srv, appLogger)
	if err := coord.Start(ctx, wrapWg); err != nil {
		appLogger.Critical("Failed to start sync pipeline: %v", err)
	}

	// 8. Foreground resume on SIGUSR1 (shells poke the daemon when the device
	// returns to the foreground); SIGINT/SIGTERM shut down.
	resume := make(chan os.Signal, 1)
	signal.Notify(resume, syscall.SIGUSR1)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	appLogger.Info("Sync pipeline running")

	for {
		select {
		case <-resume:
			coord.Resume()

		case <-quit:
			appLogger.Info("Shutting down...")
			coord.Stop()
			srv.Stop()
			cancel()
			wrapWg.Wait()
			return
		}
	}
}
