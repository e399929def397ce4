package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/Kush-Singh-26/dailypost/builder/run"
)

func generate(ctx context.Context, args []string, logger *slog.Logger) error {
	b, err := newBuilder(args, logger)
	if err != nil {
		return err
	}
	defer func() { _ = b.Close() }()

	res, err := b.Generate(ctx)
	if err != nil {
		return err
	}

	res.Metrics.Print()
	fmt.Printf("Generated: %s\n", res.Path)
	return nil
}

func list(args []string, logger *slog.Logger) error {
	b, err := newBuilder(append([]string{"-no-journal"}, args...), logger)
	if err != nil {
		return err
	}
	defer func() { _ = b.Close() }()

	c, err := b.Catalog().Load()
	if err != nil {
		return err
	}

	fmt.Printf("📚 %s (%d posts)\n", b.Catalog().Path(), len(c))
	return run.PrintCatalog(os.Stdout, c)
}

func history(args []string, logger *slog.Logger) error {
	b, err := newBuilder(args, logger)
	if err != nil {
		return err
	}
	defer func() { _ = b.Close() }()

	if rest := b.Config().Args; len(rest) > 0 {
		id, err := strconv.ParseUint(rest[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid run id %q: %w", rest[0], err)
		}
		rec, err := b.Run(id)
		if err != nil {
			return err
		}
		return run.PrintRun(os.Stdout, rec, b.Config().Location)
	}

	runs, err := b.Runs()
	if err != nil {
		return err
	}

	fmt.Println("🕘 Run History")
	fmt.Println("════════════════════════════════════════")
	return run.PrintHistory(os.Stdout, runs, b.Config().Location)
}

func reconcile(ctx context.Context, args []string, logger *slog.Logger) error {
	b, err := newBuilder(args, logger)
	if err != nil {
		return err
	}
	defer func() { _ = b.Close() }()

	fmt.Println("🔧 Reconciling pending runs...")
	report, err := b.Reconcile(ctx)
	if report != nil {
		fmt.Printf("   Checked %d, committed %d, aborted %d (restored %d posts, added %d records, pruned %d snapshots)\n",
			report.Checked, report.Committed, report.Aborted, len(report.Restored), len(report.Appended), report.Pruned)
	}
	return err
}
