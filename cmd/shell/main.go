package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/patternlog/backend/internal/app"
	"github.com/patternlog/backend/internal/session"
	"github.com/patternlog/backend/internal/shell"
	"github.com/patternlog/backend/pkg/config"
	appLogger "github.com/patternlog/backend/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// stdout belongs to the console.
	output := cfg.Logging.OutputPath
	if output == "" || output == "stdout" {
		output = "stderr"
	}
	if err := appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, output); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer a.Close()

	sh := shell.New(os.Stdin, os.Stdout, a.Engine, a.Interactions, a.Analyzer, session.NewHistory(cfg.Session.HistoryLimit))
	if err := sh.Run(ctx); err != nil && ctx.Err() == nil {
		appLogger.Error("Shell stopped", zap.Error(err))
	}
}
