package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/mahiraziiz/primetrade.ai/internal/server"
	"github.com/mahiraziiz/primetrade.ai/repository/db"
	"github.com/mahiraziiz/primetrade.ai/repository/inmemory"
)

func main() {
	log.SetFormatter(&log.JSONFormatter{})

	log.Info("starting task service...")

	cfg := server.ReadConfig()
	if cfg.Environment == server.EnvProduction && (cfg.AccessSecret == "" || cfg.RefreshSecret == "") {
		log.Fatal("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET are required in production")
	}

	var userRepo server.UserRepository
	var taskRepo server.TaskRepository

	if err := db.Migration(cfg.DBStr, cfg.MigratePath); err != nil {
		log.Warnf("failed to apply migrations: %v", err)
	}

	dbStorage, err := db.NewStorage(cfg.DBStr)
	if err != nil {
		log.Warnf("database unavailable, falling back to in-memory storage: %v", err)
		inmem := inmemory.NewStorage()
		userRepo = inmem
		taskRepo = inmem
	} else {
		defer dbStorage.Close()
		userRepo = dbStorage
		taskRepo = dbStorage
	}

	api := server.NewTaskAPI(userRepo, taskRepo, cfg)
	if api == nil {
		log.Fatal("failed to initialize API")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		log.Infof("service listening on %s:%d", cfg.Addr, cfg.Port)
		if err := api.Start(); err != nil {
			serverErr <- err
		}
	}()

	select {
	case sig := <-sigChan:
		log.Infof("received signal %v, starting graceful shutdown...", sig)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := api.Shutdown(shutdownCtx); err != nil {
			log.Errorf("graceful shutdown failed: %v", err)
		} else {
			log.Info("graceful shutdown complete")
		}

	case err := <-serverErr:
		log.Errorf("server error: %v", err)
	}

	log.Info("service stopped")
}
