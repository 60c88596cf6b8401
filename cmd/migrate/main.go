package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	migrations "github.com/feral-file/ff-bounty-ledger/db"
	"github.com/feral-file/ff-bounty-ledger/internal/config"
	"github.com/feral-file/ff-bounty-ledger/internal/logger"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

const usage = "Usage: migrate [flags] COMMAND\n\nCommands:\n  up\n  down\n  status"

func main() {
	flag.Parse()
	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	command := flag.Arg(0)

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadMigrateConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	err = logger.Initialize(logger.Config{
		Debug:     cfg.Debug,
		Service:   "migrate",
		SentryDSN: cfg.SentryDSN,
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)

	db, err := sql.Open("pgx", cfg.Database.URL())
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err), zap.String("host", cfg.Database.Host))
	}
	defer func() {
		_ = db.Close()
	}()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		logger.Fatal("Failed to set goose dialect", zap.Error(err))
	}

	switch command {
	case "up":
		err = goose.Up(db, migrations.MigrationsDir)
	case "down":
		err = goose.Down(db, migrations.MigrationsDir)
	case "status":
		err = goose.Status(db, migrations.MigrationsDir)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n%s\n", command, usage)
		os.Exit(2)
	}
	if err != nil {
		logger.Fatal("Migration failed", zap.String("command", command), zap.Error(err))
	}

	logger.Info("Migration finished", zap.String("command", command))
}
