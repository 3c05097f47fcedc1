package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/ramonehamilton/Riftbound-Companion/internal/config"
	"github.com/ramonehamilton/Riftbound-Companion/internal/storage"
)

func runBackup(args []string, out io.Writer) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: backup create|list|restore [-dir path] [-name name] [backup file]")
	}

	flags := flag.NewFlagSet("backup "+args[0], flag.ContinueOnError)
	dir := flags.String("dir", "", "Backup directory (default: storage.backup_dir or <db dir>/backups)")
	name := flags.String("name", "", "Backup name without extension (create only)")
	password := flags.String("password", "", "Encryption password (default: $"+config.EnvBackupPassword+")")
	if err := flags.Parse(args[1:]); err != nil {
		return err
	}

	cfg, err := loadConfig("")
	if err != nil {
		return err
	}
	dbPath, err := cfg.DBPath()
	if err != nil {
		return err
	}
	if *dir == "" {
		*dir = cfg.Storage.BackupDir
	}
	if *password == "" {
		*password = os.Getenv(config.EnvBackupPassword)
	}

	manager := storage.NewBackupManager(dbPath)
	ctx := context.Background()

	switch args[0] {
	case "create":
		path, err := manager.Backup(ctx, storage.BackupOptions{Dir: *dir, Name: *name, Password: *password})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Backup written to %s\n", path)
		return nil

	case "list":
		backups, err := manager.List(*dir)
		if err != nil {
			return err
		}
		printBackups(out, manager.Dir(*dir), backups)
		return nil

	case "restore":
		if flags.NArg() != 1 {
			return fmt.Errorf("usage: backup restore [-password pw] <backup file>")
		}
		if err := manager.Restore(ctx, flags.Arg(0), *password); err != nil {
			return err
		}
		fmt.Fprintf(out, "Database restored from %s\n", flags.Arg(0))
		return nil

	default:
		return fmt.Errorf("unknown backup command %q", args[0])
	}
}

func printBackups(out io.Writer, dir string, backups []storage.BackupInfo) {
	if len(backups) == 0 {
		fmt.Fprintf(out, "No backups in %s\n", dir)
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSIZE\tMODIFIED\tENCRYPTED\tSHA-256")
	for _, b := range backups {
		checksum := b.Checksum
		if len(checksum) > 12 {
			checksum = checksum[:12]
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%v\t%s\n", b.Name, formatSize(b.Size), b.ModTime.Format(time.DateTime), b.Encrypted, checksum)
	}
	_ = w.Flush()
}

func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGT"[exp])
}
