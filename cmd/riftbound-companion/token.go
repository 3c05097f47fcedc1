package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/ramonehamilton/Riftbound-Companion/internal/config"
	"github.com/ramonehamilton/Riftbound-Companion/internal/identity"
)

// runToken prints a session token, for scripting against the API.
func runToken(args []string, out io.Writer) error {
	flags := flag.NewFlagSet("token", flag.ExitOnError)
	userID := flags.String("user", "", "User ID")
	name := flags.String("name", "", "Display name")
	configPath := flags.String("config", "", "Config file")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *userID == "" {
		return fmt.Errorf("usage: riftbound-companion token -user <userID> [-name <displayName>]")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret or %s must be set", config.EnvJWTSecret)
	}
	ttl, err := cfg.GetTokenTTL()
	if err != nil {
		return err
	}

	token, err := identity.GenerateToken(*userID, *name, []byte(cfg.Auth.JWTSecret), ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, token)
	return nil
}
