package run

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/Kush-Singh-26/dailypost/builder/cache"
	"github.com/Kush-Singh-26/dailypost/builder/catalog"
	"github.com/Kush-Singh-26/dailypost/builder/models"
	"github.com/Kush-Singh-26/dailypost/builder/utils"
)

// ErrNoJournal is returned by journal commands when the journal is disabled
var ErrNoJournal = errors.New("run journal is disabled")

// ReconcileReport summarizes a Reconcile pass
type ReconcileReport struct {
	Checked   int
	Restored  []string // post paths rewritten from snapshots
	Appended  []string // files added to a catalog
	Committed int
	Aborted   int
	Pruned    int // snapshots released after their runs finished
}

// Reconcile finishes every run left pending. A missing post is restored from
// its snapshot and a missing catalog record is appended; runs whose snapshot
// is gone are aborted. Snapshots no pending run needs are then pruned.
// Running it twice changes nothing the second time.
func (b *Builder) Reconcile(ctx context.Context) (*ReconcileReport, error) {
	if b.journal == nil {
		return nil, ErrNoJournal
	}

	pending, err := b.journal.Pending()
	if err != nil {
		return nil, err
	}

	report := &ReconcileReport{Checked: len(pending)}
	for _, rec := range pending {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := b.reconcileRun(rec, report); err != nil {
			return report, fmt.Errorf("run %d (%s): %w", rec.ID, rec.File, err)
		}
	}

	pruned, err := b.journal.Prune()
	report.Pruned = pruned
	if err != nil {
		return report, fmt.Errorf("failed to prune snapshots: %w", err)
	}
	return report, nil
}

func (b *Builder) reconcileRun(rec cache.RunRecord, report *ReconcileReport) error {
	postPath := filepath.Join(rec.OutputDir, rec.File)

	exists, err := afero.Exists(b.fs, postPath)
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", postPath, err)
	}

	if !exists {
		html, err := b.journal.Snapshot(rec.HTMLHash)
		if errors.Is(err, cache.ErrNotFound) {
			b.logger.Warn("Snapshot missing, aborting run", "run", rec.ID, "file", rec.File)
			if err := b.journal.Abort(rec.ID); err != nil {
				return err
			}
			report.Aborted++
			return nil
		}
		if err != nil {
			return err
		}
		if err := utils.WriteNewFileAtomic(b.fs, postPath, html, 0644); err != nil {
			return fmt.Errorf("failed to restore post %s: %w", postPath, err)
		}
		report.Restored = append(report.Restored, postPath)
		fmt.Fprintf(b.out, "   ♻️  Restored %s\n", postPath)
	}

	catalogFile := rec.Catalog
	if catalogFile == "" {
		catalogFile = b.cfg.CatalogFile
	}
	store := catalog.NewStore(b.fs, filepath.Join(rec.OutputDir, catalogFile))

	current, err := store.Load()
	if err != nil {
		return err
	}
	if !current.Contains(rec.File) {
		record := models.IndexRecord{Title: rec.Title, Date: rec.Date, File: rec.File}
		if err := store.Save(catalog.Append(current, record)); err != nil {
			return err
		}
		report.Appended = append(report.Appended, rec.File)
		fmt.Fprintf(b.out, "   🗂️  Added %s to %s\n", rec.File, store.Path())
	}

	if err := b.journal.Commit(rec.ID); err != nil {
		return err
	}
	report.Committed++
	return nil
}

// Runs returns the journal history
func (b *Builder) Runs() ([]cache.RunRecord, error) {
	if b.journal == nil {
		return nil, ErrNoJournal
	}
	return b.journal.Runs()
}

// Run returns one journaled run
func (b *Builder) Run(id uint64) (*cache.RunRecord, error) {
	if b.journal == nil {
		return nil, ErrNoJournal
	}
	return b.journal.Get(id)
}
