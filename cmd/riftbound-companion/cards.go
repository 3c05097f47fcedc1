package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ramonehamilton/Riftbound-Companion/internal/facade"
	"github.com/ramonehamilton/Riftbound-Companion/internal/storage/models"
)

// runCards handles "cards import <file>", loading a JSON array of cards into
// the catalog.
func runCards(args []string, out io.Writer) error {
	if len(args) < 1 || args[0] != "import" {
		return fmt.Errorf("usage: riftbound-companion cards import <cards.json>")
	}

	flags := flag.NewFlagSet("cards import", flag.ExitOnError)
	configPath := flags.String("config", "", "Config file")
	if err := flags.Parse(args[1:]); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		return fmt.Errorf("usage: riftbound-companion cards import <cards.json>")
	}

	data, err := os.ReadFile(flags.Arg(0))
	if err != nil {
		return fmt.Errorf("failed to read cards file: %w", err)
	}
	var catalog []*models.Card
	if err := json.Unmarshal(data, &catalog); err != nil {
		return fmt.Errorf("failed to parse cards file: %w", err)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	services, closeDB, err := openServices(cfg, io.Discard)
	if err != nil {
		return err
	}
	defer closeDB()

	n, err := facade.NewCardFacade(services).ImportCatalog(context.Background(), catalog)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Imported %d cards\n", n)
	return nil
}
