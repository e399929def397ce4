// Package run drives a generation run: select a topic, write the post, update the catalog.
package run

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/Kush-Singh-26/dailypost/builder/cache"
	"github.com/Kush-Singh-26/dailypost/builder/catalog"
	"github.com/Kush-Singh-26/dailypost/builder/feeds"
	"github.com/Kush-Singh-26/dailypost/builder/metrics"
	"github.com/Kush-Singh-26/dailypost/builder/models"
	"github.com/Kush-Singh-26/dailypost/builder/utils"
)

// Result describes a completed run
type Result struct {
	Path      string // OutputDir joined with File
	File      string
	Record    models.IndexRecord
	Selection feeds.Selection
	RunID     uint64 // 0 without a journal
	Metrics   *metrics.RunMetrics
}

// Generate performs one run. It returns only after the post file and the
// catalog are both on disk; on failure neither is left half-updated.
func (b *Builder) Generate(ctx context.Context) (*Result, error) {
	m := metrics.NewRunMetrics()
	now := b.now()
	date := now.Format(models.DateLayout)
	dir := b.cfg.OutputDir

	fmt.Fprintf(b.out, "📰 Picking today's topic from %d feeds...\n", len(b.sources))
	selectStart := time.Now()
	sel := b.selector.Pick(ctx, b.sources)
	m.RecordSelection(sel.Tried, sel.Index, sel.Fallback, time.Since(selectStart))
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if sel.Fallback {
		fmt.Fprintf(b.out, "   ⚠️  No feed had entries, using the fallback topic\n")
	} else {
		fmt.Fprintf(b.out, "   ✅ %s (from %s)\n", sel.Topic.Title, sel.Source)
	}

	if err := b.fs.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	// A malformed catalog stops the run before anything is written
	current, err := b.catalog.Load()
	if err != nil {
		return nil, err
	}

	slug := utils.BuildSlugLimit(sel.Topic.Title, b.cfg.SlugMaxLen)
	file, probes, err := utils.AllocateFilenameProbes(b.fs, dir, date, slug)
	m.FilenameProbes = probes
	if err != nil {
		return nil, err
	}

	renderStart := time.Now()
	html, err := b.rnd.Render(sel.Topic, now)
	if err != nil {
		return nil, err
	}
	m.RenderTime = time.Since(renderStart)

	record := models.IndexRecord{Title: sel.Topic.Title, Date: date, File: file}
	postPath := filepath.Join(dir, file)

	var runID uint64
	if b.journal != nil {
		runID, err = b.journal.Begin(cache.RunRecord{
			Title:     record.Title,
			Date:      record.Date,
			File:      record.File,
			OutputDir: dir,
			Catalog:   b.cfg.CatalogFile,
			Source:    sel.Source,
			StartedAt: now.Unix(),
		}, html)
		if err != nil {
			return nil, err
		}
	}

	if err := utils.WriteNewFileAtomic(b.fs, postPath, html, 0644); err != nil {
		return nil, errors.Join(fmt.Errorf("failed to write post %s: %w", postPath, err), b.abort(runID))
	}
	m.BytesWritten = len(html)
	fmt.Fprintf(b.out, "   📝 Wrote %s (%d bytes)\n", postPath, len(html))

	updated := catalog.Append(current, record)
	if err := b.catalog.Save(updated); err != nil {
		return nil, b.rollback(postPath, runID, err)
	}
	m.CatalogSize = len(updated)

	if b.journal != nil {
		// Post and catalog are durable; reconcile commits a run left pending here
		if err := b.journal.Commit(runID); err != nil {
			b.logger.Warn("Failed to commit run", "run", runID, "error", err)
		}
	}

	m.RecordEnd()
	fmt.Fprintf(b.out, "   🗂️  Catalog now lists %d posts\n", len(updated))

	return &Result{
		Path:      postPath,
		File:      file,
		Record:    record,
		Selection: sel,
		RunID:     runID,
		Metrics:   m,
	}, nil
}

// rollback removes a post whose catalog update failed and aborts its run.
// The returned error wraps cause plus any rollback failure; a run that could
// not be aborted stays pending and reconcile would restore its post.
func (b *Builder) rollback(postPath string, runID uint64, cause error) error {
	errs := []error{cause}
	if err := b.fs.Remove(postPath); err != nil {
		b.logger.Error("Failed to remove post after catalog failure", "path", postPath, "error", err)
		errs = append(errs, fmt.Errorf("failed to remove post %s: %w", postPath, err))
	} else {
		b.logger.Warn("Removed post after catalog failure", "path", postPath)
	}
	if err := b.abort(runID); err != nil {
		errs = append(errs, fmt.Errorf("%w; run %d is still pending and reconcile will restore %s", err, runID, postPath))
	}
	return errors.Join(errs...)
}

func (b *Builder) abort(runID uint64) error {
	if b.journal == nil || runID == 0 {
		return nil
	}
	if err := b.journal.Abort(runID); err != nil {
		b.logger.Error("Failed to abort run", "run", runID, "error", err)
		return fmt.Errorf("failed to abort run %d: %w", runID, err)
	}
	return nil
}
