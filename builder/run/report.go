package run

import (
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/Kush-Singh-26/dailypost/builder/cache"
	"github.com/Kush-Singh-26/dailypost/builder/models"
)

// PrintCatalog writes one line per record in catalog order
func PrintCatalog(w io.Writer, c models.PostCatalog) error {
	if len(c) == 0 {
		_, err := fmt.Fprintln(w, "No posts yet")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tFILE\tTITLE")
	for _, r := range c {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Date, r.File, r.Title)
	}
	return tw.Flush()
}

// PrintHistory writes one line per journaled run
func PrintHistory(w io.Writer, runs []cache.RunRecord, loc *time.Location) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded")
		return err
	}
	if loc == nil {
		loc = time.Local
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tSTARTED\tFILE\tSOURCE")
	for _, r := range runs {
		source := r.Source
		if source == "" {
			source = "(fallback)"
		}
		started := time.Unix(r.StartedAt, 0).In(loc).Format(time.RFC3339)
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", r.ID, r.Status, started, r.File, source)
	}
	return tw.Flush()
}

// PrintRun writes every field of one journaled run
func PrintRun(w io.Writer, r *cache.RunRecord, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}
	stamp := func(unix int64) string {
		if unix == 0 {
			return "-"
		}
		return time.Unix(unix, 0).In(loc).Format(time.RFC3339)
	}
	source := r.Source
	if source == "" {
		source = "(fallback)"
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Run:\t%d\n", r.ID)
	fmt.Fprintf(tw, "Status:\t%s\n", r.Status)
	fmt.Fprintf(tw, "Title:\t%s\n", r.Title)
	fmt.Fprintf(tw, "Date:\t%s\n", r.Date)
	fmt.Fprintf(tw, "Post:\t%s\n", filepath.Join(r.OutputDir, r.File))
	fmt.Fprintf(tw, "Catalog:\t%s\n", filepath.Join(r.OutputDir, r.Catalog))
	fmt.Fprintf(tw, "Source:\t%s\n", source)
	fmt.Fprintf(tw, "Snapshot:\t%s\n", r.HTMLHash)
	fmt.Fprintf(tw, "Started:\t%s\n", stamp(r.StartedAt))
	fmt.Fprintf(tw, "Finished:\t%s\n", stamp(r.FinishedAt))
	return tw.Flush()
}
