package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ramonehamilton/Riftbound-Companion/internal/storage"
)

func runMigrate(args []string) error {
	if len(args) < 1 {
		printMigrationUsage()
		os.Exit(1)
	}

	cfg, err := loadConfig("")
	if err != nil {
		return err
	}
	dbPath, err := cfg.DBPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	mgr, err := storage.NewMigrationManager(dbPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := mgr.Close(); err != nil {
			log.Printf("Error closing migration manager: %v", err)
		}
	}()

	switch args[0] {
	case "up":
		fmt.Println("Applying all pending migrations...")
		if err := mgr.Up(); err != nil {
			return err
		}
		printVersion(mgr)
		fmt.Println("All migrations applied successfully!")

	case "down":
		fmt.Println("Rolling back last migration...")
		if err := mgr.Steps(-1); err != nil {
			return err
		}
		printVersion(mgr)
		fmt.Println("Migration rolled back successfully!")

	case "status", "version":
		printVersion(mgr)

	case "force":
		if len(args) < 2 {
			fmt.Println("Usage: riftbound-companion migrate force <version>")
			os.Exit(1)
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid version number: %w", err)
		}
		fmt.Println("WARNING: This does not run migrations, only sets the version.")
		if err := mgr.Force(version); err != nil {
			return err
		}
		fmt.Println("Version forced successfully!")

	default:
		fmt.Printf("Unknown migrate command: %s\n", args[0])
		printMigrationUsage()
		os.Exit(1)
	}
	return nil
}

func printVersion(mgr *storage.MigrationManager) {
	version, dirty, err := mgr.Version()
	if err != nil {
		log.Printf("Error getting version: %v", err)
		return
	}
	if dirty {
		fmt.Printf("Current version: %d (dirty - migration failed or interrupted)\n", version)
		fmt.Println("Use 'migrate force <version>' to recover")
		return
	}
	fmt.Printf("Current version: %d\n", version)
}

func printMigrationUsage() {
	fmt.Println("Usage: riftbound-companion migrate <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  up              Apply all pending migrations")
	fmt.Println("  down            Roll back the last migration")
	fmt.Println("  version         Show the current schema version")
	fmt.Println("  force <version> Set the version without running migrations")
}
