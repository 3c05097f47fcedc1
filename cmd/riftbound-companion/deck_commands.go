package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ramonehamilton/Riftbound-Companion/internal/facade"
	"github.com/ramonehamilton/Riftbound-Companion/internal/riftbound/deckimport"
	"github.com/ramonehamilton/Riftbound-Companion/internal/riftbound/validator"
	"github.com/ramonehamilton/Riftbound-Companion/internal/storage/models"
)

// runValidate checks an export file against the configured rules and the
// stored card catalog without saving anything.
func runValidate(args []string, out io.Writer) error {
	flags := flag.NewFlagSet("validate", flag.ExitOnError)
	configPath := flags.String("config", "", "Config file")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		return fmt.Errorf("usage: riftbound-companion validate <export.json>")
	}

	data, err := os.ReadFile(flags.Arg(0))
	if err != nil {
		return fmt.Errorf("failed to read deck file: %w", err)
	}
	deck, items, err := deckimport.Import(string(data), "cli")
	if err != nil {
		return err
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

	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.CardID)
	}
	cardMap, unknown, err := services.Cards.GetMany(context.Background(), ids)
	if err != nil {
		return err
	}

	sections := make(map[models.Section][]models.DeckCard)
	for _, item := range items {
		if card, ok := cardMap[item.CardID]; ok {
			sections[item.Section] = append(sections[item.Section], models.DeckCard{Card: card, Quantity: item.Qty})
		}
	}

	result := validator.New(services.Rules.Rules()).Validate(
		sections[models.SectionMain],
		sections[models.SectionSide],
		sections[models.SectionRune],
		deck.LegendChampionTag,
		deck.LegendDomains,
	)
	printValidation(out, deck, result, unknown)
	if !result.IsValid {
		return fmt.Errorf("deck %q does not meet the construction rules", deck.Title)
	}
	return nil
}

func printValidation(out io.Writer, deck *models.Deck, result *validator.Result, unknown []string) {
	fmt.Fprintf(out, "%s (%s): main %d, sideboard %d, runes %d\n",
		deck.Title, deck.LegendChampionTag, deck.CountMain, deck.CountSide, deck.CountRunes)
	for _, id := range unknown {
		fmt.Fprintf(out, "  ? %s is not in the card catalog and was skipped\n", id)
	}
	for _, e := range result.Errors {
		fmt.Fprintf(out, "  ✗ %s\n", e.Message())
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(out, "  ! %s\n", w.Message())
	}
	if result.IsValid {
		fmt.Fprintln(out, "Deck is valid.")
	} else {
		fmt.Fprintf(out, "Deck is invalid: %d error(s).\n", len(result.Errors))
	}
}

func runImport(args []string, out io.Writer) error {
	flags := flag.NewFlagSet("import", flag.ExitOnError)
	owner := flags.String("owner", "", "Owner user ID")
	configPath := flags.String("config", "", "Config file")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *owner == "" || flags.NArg() != 1 {
		return fmt.Errorf("usage: riftbound-companion import -owner <userID> <export.json>")
	}

	data, err := os.ReadFile(flags.Arg(0))
	if err != nil {
		return fmt.Errorf("failed to read deck file: %w", err)
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

	detail, err := facade.NewDeckFacade(services).Import(context.Background(), *owner, string(data))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Imported %q as %s (%d items)\n", detail.Deck.Title, detail.Deck.ID, len(detail.Items))
	return nil
}

func runExport(args []string, out io.Writer) error {
	flags := flag.NewFlagSet("export", flag.ExitOnError)
	owner := flags.String("owner", "", "Reader user ID")
	configPath := flags.String("config", "", "Config file")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		return fmt.Errorf("usage: riftbound-companion export -owner <userID> <deckID>")
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

	data, err := facade.NewDeckFacade(services).Export(context.Background(), *owner, flags.Arg(0))
	if err != nil {
		return err
	}
	fmt.Fprintln(out, data)
	return nil
}
