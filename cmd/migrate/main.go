package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/santapan/api/internal/config"
	"github.com/santapan/api/internal/database"
	"github.com/santapan/api/internal/logger"
	"go.uber.org/zap"
)

func main() {
	steps := flag.Int("steps", 1, "Number of migrations to roll back with the down command")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: migrate [-steps n] up|down\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg := config.Load()
	log, err := logger.New(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	cmd := flag.Arg(0)
	switch cmd {
	case "", "up":
		err = database.Migrate(cfg.DatabaseURL)
	case "down":
		if *steps < 1 {
			log.Fatal("steps must be at least 1", zap.Int("steps", *steps))
		}
		err = database.MigrateDown(cfg.DatabaseURL, *steps)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal("migration failed", zap.String("command", cmd), zap.Error(err))
	}
	log.Info("migrations finished", zap.String("command", cmd))
}
