package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"

	"github.com/sundayezeilo/videorecords/internal/config"
	"github.com/sundayezeilo/videorecords/internal/db"
)

const usage = `Usage: migrate [-driver sqlite|postgres] [-dsn dsn] <command>

Without flags the DB_* environment variables are used.

Commands:
  up       Apply all pending migrations
  down     Roll back the most recent migration
  version  Show current migration version
  force N  Force migration version to N`

func main() {
	driver := flag.String("driver", "", "Database driver: sqlite or postgres (default DB_DRIVER)")
	dsn := flag.String("dsn", "", "File path for sqlite, connection string for postgres (default from DB_*)")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Println(usage)
		os.Exit(1)
	}

	if err := run(*driver, *dsn, flag.Args()); err != nil {
		log.Fatal(err)
	}
}

// run executes one command. The migrator is always closed before it returns.
func run(driver, dsn string, args []string) (err error) {
	if driver == "" || dsn == "" {
		cfg, err := config.LoadDatabase()
		if err != nil {
			return fmt.Errorf("failed to load database config: %w", err)
		}
		if driver == "" {
			driver = cfg.Driver
		}
		if dsn == "" {
			dsn = cfg.DSN()
		}
	}

	m, err := db.NewMigrator(driver, dsn)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if err == nil {
			err = errors.Join(srcErr, dbErr)
		}
	}()

	switch command := args[0]; command {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("migration up failed: %w", err)
		}
		fmt.Println("Migrations applied successfully")

	case "down":
		if err := m.Steps(-1); err != nil {
			return fmt.Errorf("migration down failed: %w", err)
		}
		fmt.Println("Rolled back one migration")

	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Println("Version: none")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to get version: %w", err)
		}
		dirtyStr := ""
		if dirty {
			dirtyStr = " (dirty)"
		}
		fmt.Printf("Version: %d%s\n", version, dirtyStr)

	case "force":
		if len(args) < 2 {
			return errors.New("force requires a version number: migrate force N")
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid version number: %w", err)
		}
		if err := m.Force(version); err != nil {
			return fmt.Errorf("force failed: %w", err)
		}
		fmt.Printf("Forced version to %d\n", version)

	default:
		return fmt.Errorf("unknown command: %s\n\n%s", command, usage)
	}
	return nil
}
