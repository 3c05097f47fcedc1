package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ramonehamilton/Riftbound-Companion/internal/api"
	"github.com/ramonehamilton/Riftbound-Companion/internal/config"
	"github.com/ramonehamilton/Riftbound-Companion/internal/storage"
)

func runServe(args []string) error {
	flags := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := flags.String("config", "", "Config file (default: ~/.riftbound-companion/config.toml)")
	if err := flags.Parse(args); err != nil {
		return err
	}

	path := *configPath
	if path == "" {
		var err error
		if path, err = config.Path(); err != nil {
			return err
		}
	}

	cfg, err := loadConfig(path)
	if err != nil {
		return err
	}
	if cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret or %s must be set", config.EnvJWTSecret)
	}

	services, closeDB, err := openServices(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer closeDB()

	requestTimeout, err := cfg.GetAPIRequestTimeout()
	if err != nil {
		return err
	}
	tokenTTL, err := cfg.GetTokenTTL()
	if err != nil {
		return err
	}

	server := api.NewServer(&api.Config{
		Port:           cfg.API.Port,
		AllowedOrigins: cfg.API.AllowedOrigins,
		RequestTimeout: requestTimeout,
		JWTSecret:      []byte(cfg.Auth.JWTSecret),
		TokenTTL:       tokenTTL,
	}, services)
	if err := server.Start(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Rule changes in the config file apply without a restart.
	go func() {
		err := config.Watch(ctx, path, func(updated *config.Config) {
			if err := services.Rules.Set(updated.ToRules()); err != nil {
				log.Printf("Ignoring rule change: %v", err)
				return
			}
			log.Printf("Deck construction rules reloaded")
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Config watcher stopped: %v", err)
		}
	}()

	if err := startBackupScheduler(ctx, cfg); err != nil {
		log.Printf("Scheduled backups disabled: %v", err)
	}

	fmt.Printf("API server running at http://localhost:%d\n", server.Port())
	fmt.Println("Press Ctrl+C to stop")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	fmt.Println("API server stopped.")
	return nil
}

// startBackupScheduler takes periodic backups in the background until ctx ends.
func startBackupScheduler(ctx context.Context, cfg *config.Config) error {
	interval, err := cfg.GetBackupInterval()
	if err != nil {
		return err
	}
	if interval == 0 {
		return nil
	}
	dbPath, err := cfg.DBPath()
	if err != nil {
		return err
	}

	scheduler, err := storage.NewBackupScheduler(storage.NewBackupManager(dbPath), storage.SchedulerConfig{
		Interval: interval,
		Backup: storage.BackupOptions{
			Dir:      cfg.Storage.BackupDir,
			Password: os.Getenv(config.EnvBackupPassword),
		},
		Keep: cfg.Storage.BackupKeep,
		OnBackupComplete: func(path string, err error) {
			if err != nil {
				log.Printf("Scheduled backup failed: %v", err)
				return
			}
			log.Printf("Scheduled backup written to %s", path)
		},
	})
	if err != nil {
		return err
	}

	go func() {
		if err := scheduler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Backup scheduler stopped: %v", err)
		}
	}()
	log.Printf("Backing up the database every %s", interval)
	return nil
}
