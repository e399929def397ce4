package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Kush-Singh-26/dailypost/builder/config"
	"github.com/Kush-Singh-26/dailypost/builder/feeds"
	"github.com/Kush-Singh-26/dailypost/builder/run"
)

func main() {
	_ = godotenv.Load()

	command := "generate"
	args := os.Args[1:]
	if len(args) > 0 && len(args[0]) > 0 && args[0][0] != '-' {
		command, args = args[0], args[1:]
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch command {
	case "generate":
		err = generate(ctx, args, logger)
	case "list":
		err = list(args, logger)
	case "history":
		err = history(args, logger)
	case "reconcile":
		err = reconcile(ctx, args, logger)
	case "help":
		printUsage()
		return
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		if errors.Is(err, feeds.ErrMissingParser) {
			fmt.Fprintln(os.Stderr, "❌ Feed parsing is not available; nothing was generated")
		}
		fmt.Fprintf(os.Stderr, "❌ %s failed: %v\n", command, err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: dailypost [command] [flags]")
	fmt.Println("\nCommands:")
	fmt.Println("  generate       Write today's post and update posts.json (default)")
	fmt.Println("  list           Print the post catalog")
	fmt.Println("  history [id]   Print journaled runs, or one run in full")
	fmt.Println("  reconcile      Finish runs interrupted between post and catalog writes")
	fmt.Println("  help           Show this help message")
	fmt.Println("\nFlags:")
	fmt.Println("  -config <file>     Config file (default dailypost.yaml)")
	fmt.Println("  -out <dir>         Output directory (default posts)")
	fmt.Println("  -feeds <a,b,c>     Feed URLs in priority order")
	fmt.Println("  -timezone <zone>   IANA time zone for the date stamp")
	fmt.Println("  -compress          Minify generated HTML")
	fmt.Println("  -no-journal        Disable the run journal")
	fmt.Println("\nEnvironment overrides use the DAILYPOST_ prefix and may be set in .env")
}

func newBuilder(args []string, logger *slog.Logger) (*run.Builder, error) {
	cfg, err := config.Load(args)
	if err != nil {
		return nil, err
	}
	if cfg.ConfigPath != "" {
		logger.Debug("Loaded config", "path", cfg.ConfigPath)
	}
	return run.NewBuilder(cfg, run.Options{Logger: logger})
}
