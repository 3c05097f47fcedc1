// Package main is the Riftbound Companion command line: it runs the API
// server, manages the database schema and works with deck exports.
package main

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/ramonehamilton/Riftbound-Companion/internal/assistant"
	"github.com/ramonehamilton/Riftbound-Companion/internal/config"
	"github.com/ramonehamilton/Riftbound-Companion/internal/facade"
	"github.com/ramonehamilton/Riftbound-Companion/internal/riftbound/cards"
	"github.com/ramonehamilton/Riftbound-Companion/internal/storage"
	"github.com/ramonehamilton/Riftbound-Companion/internal/storage/repository"
	"github.com/ramonehamilton/Riftbound-Companion/internal/version"
)

func main() {
	config.LoadDotEnv()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(os.Args[2:])
	case "migrate":
		err = runMigrate(os.Args[2:])
	case "validate":
		err = runValidate(os.Args[2:], os.Stdout)
	case "import":
		err = runImport(os.Args[2:], os.Stdout)
	case "export":
		err = runExport(os.Args[2:], os.Stdout)
	case "cards":
		err = runCards(os.Args[2:], os.Stdout)
	case "token":
		err = runToken(os.Args[2:], os.Stdout)
	case "backup":
		err = runBackup(os.Args[2:], os.Stdout)
	case "version":
		fmt.Println("riftbound-companion", version.GetVersion())
		return
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Printf("Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func printUsage() {
	fmt.Println("Riftbound Companion")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  riftbound-companion serve [-config path]")
	fmt.Println("  riftbound-companion migrate up|down|version|force <version>")
	fmt.Println("  riftbound-companion validate <export.json>")
	fmt.Println("  riftbound-companion import -owner <userID> <export.json>")
	fmt.Println("  riftbound-companion export -owner <userID> <deckID>")
	fmt.Println("  riftbound-companion cards import <cards.json>")
	fmt.Println("  riftbound-companion token -user <userID> [-name <displayName>]")
	fmt.Println("  riftbound-companion backup create|list|restore [-dir path] [backup.db]")
	fmt.Println("  riftbound-companion version")
	fmt.Println()
	fmt.Println("Configuration is read from ~/.riftbound-companion/config.toml and the environment.")
}

// loadConfig reads the configuration from path, or the default location when empty.
func loadConfig(path string) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if path == "" {
		cfg, err = config.Load()
	} else {
		cfg, err = config.LoadFrom(path)
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// openServices opens the database and builds the shared facade services.
// The returned function closes the database.
func openServices(cfg *config.Config, logOutput io.Writer) (*facade.Services, func(), error) {
	dbPath, err := cfg.DBPath()
	if err != nil {
		return nil, nil, err
	}

	dbConfig := storage.DefaultConfig(dbPath)
	dbConfig.AutoMigrate = cfg.Storage.AutoMigrate
	db, err := storage.Open(dbConfig)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}

	level := slog.LevelInfo
	if cfg.App.DebugMode {
		level = slog.LevelDebug
	}
	staleAge, err := cfg.GetCatalogMaxStaleAge()
	if err != nil {
		closeDB()
		return nil, nil, err
	}
	cache, err := cards.NewCache(cards.CacheConfig{
		Store:       repository.NewCardRepository(db.Conn()),
		Logger:      slog.New(slog.NewTextHandler(logOutput, &slog.HandlerOptions{Level: level})),
		Size:        cfg.Catalog.CacheSize,
		MaxStaleAge: staleAge,
	})
	if err != nil {
		closeDB()
		return nil, nil, err
	}

	timeout, err := cfg.GetAssistantTimeout()
	if err != nil {
		closeDB()
		return nil, nil, err
	}
	client := assistant.NewClient(assistant.Config{
		BaseURL:           cfg.Assistant.BaseURL,
		RulesEdition:      cfg.Assistant.RulesEdition,
		Timeout:           timeout,
		RequestsPerSecond: cfg.Assistant.RequestsPerSecond,
		MaxRetries:        cfg.Assistant.MaxRetries,
		InitialBackoff:    500 * time.Millisecond,
	})

	services := &facade.Services{
		DB:        db,
		Cards:     cache,
		Assistant: client,
		Rules:     facade.NewRuleSet(cfg.ToRules()),
	}
	return services, closeDB, nil
}
