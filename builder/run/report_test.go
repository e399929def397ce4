package run

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/Kush-Singh-26/dailypost/builder/cache"
	"github.com/Kush-Singh-26/dailypost/builder/models"
	"github.com/Kush-Singh-26/dailypost/builder/testutil"
)

func TestPrintCatalog(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintCatalog(&buf, testutil.CreateSampleCatalog()); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header plus 2 records:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "DATE") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "2026-01-13-오늘의-추천-아이템.html") || !strings.Contains(lines[2], "Hello World") {
		t.Errorf("records out of order:\n%s", buf.String())
	}
}

func TestPrintCatalog_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintCatalog(&buf, models.PostCatalog{}); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "No posts yet\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestPrintHistory(t *testing.T) {
	runs := []cache.RunRecord{
		{ID: 1, Status: cache.StatusCommitted, StartedAt: testutil.CreateSampleTime().Unix(), File: "2026-01-15-a-b.html", Source: "https://example.com/rss"},
		{ID: 2, Status: cache.StatusAborted, StartedAt: testutil.CreateSampleTime().Unix(), File: "2026-01-15-post.html"},
	}

	var buf bytes.Buffer
	if err := PrintHistory(&buf, runs, time.UTC); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, want := range []string{"committed", "aborted", "2026-01-15T09:30:00Z", "https://example.com/rss", "(fallback)"} {
		if !strings.Contains(out, want) {
			t.Errorf("history missing %q:\n%s", want, out)
		}
	}
}

func TestPrintHistory_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintHistory(&buf, nil, nil); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "No runs recorded\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestPrintRun(t *testing.T) {
	rec := &cache.RunRecord{
		ID: 3, Status: cache.StatusPending, Title: "A <B>", Date: "2026-01-15",
		File: "2026-01-15-a-b.html", OutputDir: "posts", Catalog: "posts.json",
		StartedAt: testutil.CreateSampleTime().Unix(),
	}

	var buf bytes.Buffer
	if err := PrintRun(&buf, rec, time.UTC); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, want := range []string{"pending", "A <B>", "posts/2026-01-15-a-b.html", "posts/posts.json", "(fallback)", "2026-01-15T09:30:00Z"} {
		if !strings.Contains(out, want) {
			t.Errorf("run output missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "Finished:  -") {
		t.Errorf("unfinished run should show '-':\n%s", out)
	}
}
