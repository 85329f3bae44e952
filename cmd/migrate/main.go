package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"floodsentinel/internal/config"
	"floodsentinel/internal/db"
	"floodsentinel/internal/logging"
	"floodsentinel/internal/migrate"
)

const usage = `usage: %s <command>
  migrate  apply pending schema migrations
  seed     apply migrations, then load demo areas and sensors
`

var version = "dev"

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, usage, os.Args[0])
		os.Exit(1)
	}

	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "env file: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(logging.New(cfg.LogLevel, cfg.AppEnv, version, "floodsentinel-migrate"))

	if err := run(context.Background(), cfg, os.Args[1]); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, command string) error {
	switch command {
	case "migrate", "seed":
	default:
		return fmt.Errorf("unknown command")
	}

	conn, err := db.Open(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(conn); closeErr != nil {
			slog.Error("db close", "err", closeErr)
		}
	}()

	if err := migrate.Run(ctx, conn); err != nil {
		return err
	}
	if command == "seed" {
		if err := migrate.Seed(ctx, conn); err != nil {
			return err
		}
	}
	fmt.Printf("%s done\n", command)
	return nil
}
